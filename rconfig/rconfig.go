// Package rconfig is the ambient, file-backed configuration layer: the
// handful of runtime tunables an operator would want to change without a
// recompile, loaded via github.com/BurntSushi/toml. The RPC values map onto
// existing functional options (rpc.WithMaxInFlight, ioframe.WithHighWaterMark)
// rather than replacing them; task.NewExecutor has no option that takes the
// Executor values (see ExecutorConfig).
package rconfig

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root of a goflow TOML configuration file.
type Config struct {
	Executor ExecutorConfig `toml:"executor"`
	RPC      RPCConfig      `toml:"rpc"`
}

// ExecutorConfig holds task.Executor/reactor.Reactor tunables. No
// task.Option accepts them, so loading them does not change an Executor:
// it always uses its own fixed idle cap (250ms) and scavenge batch (64).
type ExecutorConfig struct {
	// IdlePollTimeout is the bound on how long the reactor may block between
	// checks of context cancellation when otherwise idle.
	IdlePollTimeout time.Duration `toml:"idle_poll_timeout"`
	// DiagnosticScavengeBatch is the number of registry entries scavenged
	// per tick.
	DiagnosticScavengeBatch int `toml:"diagnostic_scavenge_batch"`
}

// RPCConfig tunes rpc.Server/rpc.Client behavior.
type RPCConfig struct {
	// MaxInFlight bounds the number of concurrently in-progress service
	// invocations a Server will allow before it stops pulling new requests.
	MaxInFlight int64 `toml:"max_in_flight"`
	// SinkHighWaterMark overrides ioframe.HighWaterMark for this server's
	// response sink — pass it to ioframe.NewFramedSink via
	// ioframe.WithHighWaterMark when constructing the sink.
	SinkHighWaterMark int `toml:"sink_high_water_mark"`
	// OverloadWindow and OverloadThreshold configure the go-catrate limiter
	// used as the server's overload signal: more than OverloadThreshold
	// rejections/retries within OverloadWindow trips OnOverload.
	OverloadWindow    time.Duration `toml:"overload_window"`
	OverloadThreshold int           `toml:"overload_threshold"`
}

// Default returns the configuration this runtime ships with when no file is
// provided.
func Default() Config {
	return Config{
		Executor: ExecutorConfig{
			IdlePollTimeout:         250 * time.Millisecond,
			DiagnosticScavengeBatch: 64,
		},
		RPC: RPCConfig{
			MaxInFlight:       256,
			SinkHighWaterMark: 16 * 1024,
			OverloadWindow:    time.Second,
			OverloadThreshold: 128,
		},
	}
}

// Load reads and decodes a TOML configuration file, overlaying it onto
// Default() so a partial file only overrides what it specifies.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("rconfig: load %s: %w", path, err)
	}
	return cfg, nil
}
