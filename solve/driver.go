package solve

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/parametric-cad/sketchsolve/constraint"
)

// Params holds the gradient-descent driver's tunables, defaulted to the
// values spec.md §4.4 names explicitly.
type Params struct {
	MaxIterations         int
	InitialStep           float64
	Armijo                float64 // c₁
	Backtrack             float64 // β
	MinStep               float64 // α_min
	ObjectiveTolerance    float64 // ε_F
	GradientTolerance     float64 // ε_g
	StagnationWindow      int     // S
	StagnationImprovement float64 // relative improvement floor
	FeasibilityEpsilon    float64 // ε_feas
}

// DefaultParams returns spec.md §4.4's default parameter set.
func DefaultParams() Params {
	return Params{
		MaxIterations:         500,
		InitialStep:           1.0,
		Armijo:                1e-4,
		Backtrack:             0.5,
		MinStep:               1e-12,
		ObjectiveTolerance:    1e-12,
		GradientTolerance:     1e-8,
		StagnationWindow:      20,
		StagnationImprovement: 1e-9,
		FeasibilityEpsilon:    constraint.DefaultFeasibilityEpsilon,
	}
}

// Termination is the driver's exit state (spec.md §4.4).
type Termination int

const (
	Converged Termination = iota
	Stalled
	Exhausted
)

func (t Termination) String() string {
	switch t {
	case Converged:
		return "converged"
	case Stalled:
		return "stalled"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Stats reports a single Run's outcome.
type Stats struct {
	Iterations        int
	FinalObjective    float64
	FinalGradientNorm float64
	Termination       Termination
	// Success is final F ≤ ε_F AND every evaluable residual within
	// ε_feas — spec.md §4.4's full success definition, independent of
	// which termination state was reached.
	Success  bool
	WallTime time.Duration
}

// Driver runs backtracking gradient descent to convergence, stagnation,
// or iteration exhaustion. It mirrors mp.Engine's shape — solver
// parameters fixed at construction, a single entry point that consumes
// and returns geometry-shaped values — generalized from mp.Engine.Solve's
// per-path curve choice algorithm to a single nonlinear least-squares
// minimization.
type Driver struct {
	params Params
}

// NewDriver builds a Driver with the given parameters.
func NewDriver(params Params) *Driver {
	return &Driver{params: params}
}

// Run executes the driver loop of spec.md §4.4 against obj, starting from
// x0, and returns the final iterate and its statistics. x0 is never
// mutated; the returned vector is always a fresh one.
func (d *Driver) Run(obj *Objective, x0 *mat.VecDense) (*mat.VecDense, Stats) {
	start := time.Now()
	p := d.params
	n := x0.Len()

	x := mat.NewVecDense(n, nil)
	x.CopyVec(x0)

	if n == 0 {
		fCur := obj.Value(x)
		return x, Stats{
			Iterations:        0,
			FinalObjective:    fCur,
			FinalGradientNorm: 0,
			Termination:       Converged,
			Success:           fCur <= p.ObjectiveTolerance && obj.AllSatisfied(x),
			WallTime:          time.Since(start),
		}
	}

	fCur := obj.Value(x)
	alpha := p.InitialStep
	stagnation := 0
	iterations := 0
	candidate := mat.NewVecDense(n, nil)

	var term Termination
	var grad *mat.VecDense

	for {
		grad = obj.Gradient(x)
		gNorm := floats.Norm(grad.RawVector().Data, 2)
		if gNorm <= p.GradientTolerance {
			term = Converged
			break
		}

		for {
			candidate.AddScaledVec(x, -alpha, grad)
			fCandidate := obj.Value(candidate)
			threshold := fCur - p.Armijo*alpha*gNorm*gNorm
			if fCandidate <= threshold || alpha < p.MinStep {
				break
			}
			alpha *= p.Backtrack
		}

		if alpha < p.MinStep {
			term = Stalled
			break
		}

		fNew := obj.Value(candidate)
		x.CopyVec(candidate)
		if fCur-fNew < p.StagnationImprovement*math.Max(1, fCur) {
			stagnation++
		} else {
			stagnation = 0
		}
		fCur = fNew
		if stagnation >= p.StagnationWindow {
			term = Stalled
			break
		}

		if fCur <= p.ObjectiveTolerance {
			term = Converged
			break
		}

		iterations++
		if iterations >= p.MaxIterations {
			term = Exhausted
			break
		}

		alpha = math.Min(p.InitialStep, alpha/p.Backtrack)
	}

	finalGrad := obj.Gradient(x)
	finalGradNorm := floats.Norm(finalGrad.RawVector().Data, 2)
	success := fCur <= p.ObjectiveTolerance && obj.AllSatisfied(x)

	return x, Stats{
		Iterations:        iterations,
		FinalObjective:    fCur,
		FinalGradientNorm: finalGradNorm,
		Termination:       term,
		Success:           success,
		WallTime:          time.Since(start),
	}
}
