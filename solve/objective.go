package solve

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/parametric-cad/sketchsolve/constraint"
)

// Objective is F(x) = Σ_c w_c · r_c(unpack(x))² over a fixed set of
// constraints, plus its gradient by central finite differences
// (spec.md §4.3). It is the only place the packed vector and the
// constraint evaluator meet.
type Objective struct {
	packer      *Packer
	constraints []constraint.Constraint
	feasEpsilon float64
}

// NewObjective builds an Objective over packer's variable layout and the
// given constraints. Constraints that turn out to be structurally
// malformed (wrong arity, dangling reference) are skipped at evaluation
// time rather than rejected here, matching spec.md §7's "skipped
// silently" rule.
func NewObjective(packer *Packer, constraints []constraint.Constraint, feasibilityEpsilon float64) *Objective {
	return &Objective{packer: packer, constraints: constraints, feasEpsilon: feasibilityEpsilon}
}

// Dim returns the dimension of the packed vector this objective operates
// over.
func (o *Objective) Dim() int {
	return o.packer.Dim()
}

// Value computes F(x).
func (o *Objective) Value(x *mat.VecDense) float64 {
	g := o.packer.Unpack(x)
	sum := 0.0
	for _, c := range o.constraints {
		res := constraint.EvaluateWithEpsilon(c, g, o.feasEpsilon)
		if !res.Valid {
			continue
		}
		sum += c.Weight() * res.Residual * res.Residual
	}
	return sum
}

// AllSatisfied reports whether every evaluable constraint's residual is
// within ε_feas at x — the second half of spec.md §4.4's success
// definition.
func (o *Objective) AllSatisfied(x *mat.VecDense) bool {
	g := o.packer.Unpack(x)
	for _, c := range o.constraints {
		res := constraint.EvaluateWithEpsilon(c, g, o.feasEpsilon)
		if !res.Valid {
			continue
		}
		if !res.Satisfied {
			return false
		}
	}
	return true
}

// Gradient computes ∇F(x) by central finite differences with step
// h = max(1e-6, 1e-6·|x_i|) per coordinate (spec.md §4.3). Each
// coordinate costs two Value calls; nothing is cached across coordinates.
func (o *Objective) Gradient(x *mat.VecDense) *mat.VecDense {
	n := x.Len()
	grad := mat.NewVecDense(n, nil)
	if n == 0 {
		return grad
	}
	trial := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		xi := x.AtVec(i)
		h := math.Max(1e-6, 1e-6*math.Abs(xi))

		trial.CopyVec(x)
		trial.SetVec(i, xi+h)
		fPlus := o.Value(trial)

		trial.CopyVec(x)
		trial.SetVec(i, xi-h)
		fMinus := o.Value(trial)

		grad.SetVec(i, (fPlus-fMinus)/(2*h))
	}
	return grad
}
