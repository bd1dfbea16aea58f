// Package telemetry wires up the simulation's structured logging and the
// per-tick diagnostic counters the tick pipeline and external boundary
// report through.
package telemetry

import (
	"log/slog"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
)

// NewLogger builds the process-wide structured logger, text-handled at the
// given level, matching the verbosity knobs the rest of the pack's services
// expose on their CLIs.
func NewLogger(level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// Diagnostics accumulates the counters a tick's script-execution phase
// produces, safe for concurrent increments from chunk workers.
type Diagnostics struct {
	mu sync.Mutex

	ScriptsRan      int64
	ScriptsErrored  int64
	IntentsProduced int64
	TicksObserved   int64
	TickOverBudget  int64
}

// NewDiagnostics builds a zeroed Diagnostics.
func NewDiagnostics() *Diagnostics { return &Diagnostics{} }

// RecordScript tallies one script execution's outcome.
func (d *Diagnostics) RecordScript(ran bool, errored bool, intents int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ran {
		d.ScriptsRan++
	}
	if errored {
		d.ScriptsErrored++
	}
	d.IntentsProduced += int64(intents)
}

// RecordTick tallies a completed tick, flagging whether it ran over the
// configured wall-clock target.
func (d *Diagnostics) RecordTick(overBudget bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.TicksObserved++
	if overBudget {
		d.TickOverBudget++
	}
}

// CountersSnapshot is a point-in-time copy of Diagnostics' counters, tagged
// with a compact sortable id so reports (cmd/caolo-bench prints one after
// its run, cmd/caolo-sim logs one at shutdown) can be told apart and ordered
// without pulling in a full UUID for something this ephemeral.
type CountersSnapshot struct {
	ID xid.ID

	ScriptsRan      int64
	ScriptsErrored  int64
	IntentsProduced int64
	TicksObserved   int64
	TickOverBudget  int64
}

// Snapshot returns a tagged copy of the current counters.
func (d *Diagnostics) Snapshot() CountersSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return CountersSnapshot{
		ID:              xid.New(),
		ScriptsRan:      d.ScriptsRan,
		ScriptsErrored:  d.ScriptsErrored,
		IntentsProduced: d.IntentsProduced,
		TicksObserved:   d.TicksObserved,
		TickOverBudget:  d.TickOverBudget,
	}
}

// RegisterComponents plugs every akita component the tick driver owns into
// monitor, the way config.DeviceBuilder registers each tile's core.
func RegisterComponents(monitor *monitoring.Monitor, components ...sim.Component) {
	if monitor == nil {
		return
	}
	for _, c := range components {
		monitor.RegisterComponent(c)
	}
}
