package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticRegistry_LiveCountExcludesDoneTasks(t *testing.T) {
	reg := newDiagnosticRegistry()
	live := &Task{id: 1, state: stateReady}
	done := &Task{id: 2, state: stateDone}
	reg.track(live)
	reg.track(done)

	assert.Equal(t, 1, reg.liveCount())
}

func TestDiagnosticRegistry_ScavengeDropsDoneEntries(t *testing.T) {
	reg := newDiagnosticRegistry()
	done := &Task{id: 1, state: stateDone}
	reg.track(done)
	require.Len(t, reg.data, 1)

	reg.scavenge(16)

	assert.Equal(t, 0, reg.liveCount())
	_, ok := reg.data[1]
	assert.False(t, ok, "a Done task's entry must be dropped once scavenged")
}

func TestDiagnosticRegistry_ScavengeBatchesAcrossCalls(t *testing.T) {
	reg := newDiagnosticRegistry()
	for i := uint64(1); i <= 10; i++ {
		reg.track(&Task{id: i, state: stateDone})
	}

	reg.scavenge(3)
	assert.Equal(t, 3, reg.head)

	reg.scavenge(3)
	assert.Equal(t, 6, reg.head)
}
