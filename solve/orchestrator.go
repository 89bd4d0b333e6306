package solve

import (
	"sync/atomic"

	"github.com/parametric-cad/sketchsolve/constraint"
	"github.com/parametric-cad/sketchsolve/geom"
)

// State is the orchestrator's coarse lifecycle state (spec.md §4.5, §5).
type State int32

const (
	Idle State = iota
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a solve call hands back to its caller.
type Result struct {
	Geometry   *geom.Geometry
	Success    bool
	Statistics Stats
}

// Orchestrator copies a Geometry snapshot, builds the variable packer,
// runs the gradient-descent driver, and unpacks the solved vector back
// into a fresh Geometry. It serializes calls itself: a Solve invoked
// while another is Running is rejected as a no-op rather than queued or
// blocked (spec.md §5).
//
// This mirrors mp.Engine's role as the single object owning solver state
// across a batch of work (there, a queue of Paths; here, one Geometry),
// generalized with the Idle/Running/Succeeded/Failed bookkeeping spec.md
// §4.5 asks for.
type Orchestrator struct {
	params Params
	busy   atomic.Bool
	state  atomic.Int32
}

// NewOrchestrator builds an Orchestrator with the given driver parameters.
func NewOrchestrator(params Params) *Orchestrator {
	return &Orchestrator{params: params}
}

// State reports the orchestrator's current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Solve runs one solve over g and constraints. The returned bool is false
// only when the call was rejected because another Solve is already
// Running — in every other case it is true, and the Result's Success
// field carries the solver's actual outcome.
func (o *Orchestrator) Solve(g *geom.Geometry, constraints []constraint.Constraint) (Result, bool) {
	if !o.busy.CompareAndSwap(false, true) {
		return Result{}, false
	}
	defer o.busy.Store(false)

	o.state.Store(int32(Running))

	snapshot := g.Clone()

	active := make([]constraint.Constraint, 0, len(constraints))
	for _, c := range constraints {
		if constraint.EvaluateWithEpsilon(c, snapshot, o.params.FeasibilityEpsilon).Valid {
			active = append(active, c)
		}
	}

	if len(active) == 0 {
		result := Result{
			Geometry: snapshot,
			Success:  true,
			Statistics: Stats{
				Iterations:  0,
				Termination: Converged,
				Success:     true,
			},
		}
		o.state.Store(int32(Succeeded))
		return result, true
	}

	packer := NewPacker(snapshot, active)
	objective := NewObjective(packer, active, o.params.FeasibilityEpsilon)
	driver := NewDriver(o.params)

	xFinal, stats := driver.Run(objective, packer.Initial())
	solved := packer.Unpack(xFinal)

	result := Result{
		Geometry:   solved,
		Success:    stats.Success,
		Statistics: stats,
	}
	if stats.Success {
		o.state.Store(int32(Succeeded))
	} else {
		o.state.Store(int32(Failed))
	}
	return result, true
}

// Solve is a convenience entry point that builds an Orchestrator with
// DefaultParams for a single one-off call. Callers solving repeatedly
// should keep their own *Orchestrator instead, since each call here pays
// for a fresh one.
func Solve(g *geom.Geometry, constraints []constraint.Constraint) Result {
	o := NewOrchestrator(DefaultParams())
	result, _ := o.Solve(g, constraints)
	return result
}
