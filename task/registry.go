package task

import "weak"

// diagnosticRegistry is a side index of live tasks kept purely for
// Executor.LiveTasks() / metrics / leak-visibility purposes. It never participates in
// dispatch (the executor's primary tasks map, which must hold strong
// references so a Task stays reachable for the lifetime its owner expects,
// does that). Using weak pointers here means an executor with a leaked diag
// registry entry never itself prevents a Task from being collected.
//
// Grounded on the predecessor runtime's promise registry: a map keyed by ID
// plus a ring buffer of IDs, scavenged in batches rather than all at once so
// a single Scavenge call has bounded cost regardless of registry size.
type diagnosticRegistry struct {
	data map[uint64]weak.Pointer[Task]
	ring []uint64
	head int
}

func newDiagnosticRegistry() *diagnosticRegistry {
	return &diagnosticRegistry{
		data: make(map[uint64]weak.Pointer[Task]),
		ring: make([]uint64, 0, 256),
	}
}

func (r *diagnosticRegistry) track(t *Task) {
	r.data[t.id] = weak.Make(t)
	r.ring = append(r.ring, t.id)
}

// Scavenge drops up to batchSize ring entries whose task has been collected
// or has finished (Done), compacting the ring once a full cycle completes.
func (r *diagnosticRegistry) scavenge(batchSize int) {
	if batchSize <= 0 || len(r.ring) == 0 {
		return
	}
	start := r.head
	end := min(start+batchSize, len(r.ring))

	for i := start; i < end; i++ {
		id := r.ring[i]
		if id == 0 {
			continue
		}
		wp, ok := r.data[id]
		if !ok {
			r.ring[i] = 0
			continue
		}
		t := wp.Value()
		if t == nil || t.Done() {
			delete(r.data, id)
			r.ring[i] = 0
		}
	}

	r.head = end
	if r.head >= len(r.ring) {
		r.head = 0
		if cap(r.ring) > 256 && len(r.data) < len(r.ring)/4 {
			r.compact()
		}
	}
}

func (r *diagnosticRegistry) compact() {
	newRing := make([]uint64, 0, len(r.data))
	newData := make(map[uint64]weak.Pointer[Task], len(r.data))
	for _, id := range r.ring {
		if id == 0 {
			continue
		}
		if wp, ok := r.data[id]; ok {
			newRing = append(newRing, id)
			newData[id] = wp
		}
	}
	r.ring = newRing
	r.data = newData
	r.head = 0
}

// liveCount returns the number of registry entries that still resolve to a
// live, non-Done task. O(n) — intended for diagnostics, not hot paths.
func (r *diagnosticRegistry) liveCount() int {
	n := 0
	for _, id := range r.ring {
		if id == 0 {
			continue
		}
		wp, ok := r.data[id]
		if !ok {
			continue
		}
		if t := wp.Value(); t != nil && !t.Done() {
			n++
		}
	}
	return n
}
