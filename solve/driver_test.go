package solve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/parametric-cad/sketchsolve/constraint"
	"github.com/parametric-cad/sketchsolve/geom"
)

func solveGeometry(t *testing.T, g *geom.Geometry, constraints []constraint.Constraint) (*geom.Geometry, Stats) {
	t.Helper()
	packer := NewPacker(g, constraints)
	obj := NewObjective(packer, constraints, constraint.DefaultFeasibilityEpsilon)
	driver := NewDriver(DefaultParams())
	xFinal, stats := driver.Run(obj, packer.Initial())
	return packer.Unpack(xFinal), stats
}

// S1 — distance between two points.
func TestScenarioDistanceBetweenTwoPoints(t *testing.T) {
	g := geom.New()
	g.AddPoint("a", 200, 200)
	g.AddPoint("b", 300, 300)
	constraints := []constraint.Constraint{
		constraint.New("c1", constraint.Distance, []geom.ID{"a", "b"}, constraint.T(150)),
	}

	solved, _ := solveGeometry(t, g, constraints)
	a, _ := solved.Point("a")
	b, _ := solved.Point("b")
	require.InDelta(t, 150, geom.Distance(a.Vec(), b.Vec()), 1e-2)
}

// S2 — anchor plus directional distances.
func TestScenarioAnchorAndDirectionalDistances(t *testing.T) {
	g := geom.New()
	g.AddPoint("a", 300, 300)
	g.AddPoint("b", 400, 400)
	constraints := []constraint.Constraint{
		constraint.New("fx", constraint.FixX, []geom.ID{"a"}, constraint.T(300)),
		constraint.New("fy", constraint.FixY, []geom.ID{"a"}, constraint.T(300)),
		constraint.New("xd", constraint.XDistance, []geom.ID{"a", "b"}, constraint.T(100)),
		constraint.New("yd", constraint.YDistance, []geom.ID{"a", "b"}, constraint.T(0)),
	}

	solved, stats := solveGeometry(t, g, constraints)
	require.True(t, stats.Success, "expected solve to report success, got termination %s", stats.Termination)

	a, _ := solved.Point("a")
	b, _ := solved.Point("b")
	require.InDelta(t, 300, a.X, 1e-2)
	require.InDelta(t, 300, a.Y, 1e-2)
	require.InDelta(t, 400, b.X, 1e-2)
	require.InDelta(t, 300, b.Y, 1e-2)
}

// S3 — three point alignment.
func TestScenarioThreePointAlignment(t *testing.T) {
	g := geom.New()
	g.AddPoint("a", 200, 200)
	g.AddPoint("b", 300, 250)
	g.AddPoint("c", 400, 300)
	constraints := []constraint.Constraint{
		constraint.New("same-x", constraint.SameX, []geom.ID{"a", "b", "c"}, nil),
	}

	solved, _ := solveGeometry(t, g, constraints)
	a, _ := solved.Point("a")
	b, _ := solved.Point("b")
	c, _ := solved.Point("c")
	require.InDelta(t, a.X, b.X, 1e-2)
	require.InDelta(t, a.X, c.X, 1e-2)
}

// S4 — right angle.
func TestScenarioRightAngle(t *testing.T) {
	g := geom.New()
	g.AddPoint("a", 200, 300)
	g.AddPoint("b", 300, 300)
	g.AddPoint("c", 400, 200)
	constraints := []constraint.Constraint{
		constraint.New("angle", constraint.Angle, []geom.ID{"a", "b", "c"}, constraint.T(90)),
	}

	solved, _ := solveGeometry(t, g, constraints)
	a, _ := solved.Point("a")
	b, _ := solved.Point("b")
	c, _ := solved.Point("c")
	v1 := a.Vec().Sub(b.Vec())
	v2 := c.Vec().Sub(b.Vec())
	cosTheta := v1.Dot(v2) / (v1.Length() * v2.Length())
	degrees := math.Acos(math.Max(-1, math.Min(1, cosTheta))) * 180 / math.Pi
	require.InDelta(t, 90, degrees, 1)
}

// S5 — parallel lines.
func TestScenarioParallelLines(t *testing.T) {
	g := geom.New()
	g.AddPoint("a1", 150, 150)
	g.AddPoint("a2", 250, 200)
	g.AddPoint("b1", 150, 250)
	g.AddPoint("b2", 300, 350)
	g.AddLine("l1", "a1", "a2", false)
	g.AddLine("l2", "b1", "b2", false)
	constraints := []constraint.Constraint{
		constraint.New("par", constraint.Parallel, []geom.ID{"l1", "l2"}, nil),
	}

	solved, _ := solveGeometry(t, g, constraints)
	a1, _ := solved.Point("a1")
	a2, _ := solved.Point("a2")
	b1, _ := solved.Point("b1")
	b2, _ := solved.Point("b2")
	d1 := a2.Vec().Sub(a1.Vec())
	d2 := b2.Vec().Sub(b1.Vec())
	cross := d1.Cross(d2) / (d1.Length() * d2.Length())
	require.LessOrEqual(t, math.Abs(cross), 0.08)
}

// S6 — point on circle.
func TestScenarioPointOnCircle(t *testing.T) {
	g := geom.New()
	g.AddPoint("center", 300, 300)
	g.AddPoint("rp", 350, 300)
	g.AddPoint("free", 400, 400)
	g.AddCircle("circ", "center", "rp")
	constraints := []constraint.Constraint{
		constraint.New("poc", constraint.PointOnCircle, []geom.ID{"free", "circ"}, nil),
	}

	solved, _ := solveGeometry(t, g, constraints)
	center, _ := solved.Point("center")
	free, _ := solved.Point("free")
	require.InDelta(t, 50, geom.Distance(free.Vec(), center.Vec()), 1)
}

// S7 — four-point colinearity.
func TestScenarioColinearFourPoints(t *testing.T) {
	g := geom.New()
	g.AddPoint("a", 0, 0)
	g.AddPoint("b", 100, 10)
	g.AddPoint("c", 50, 40)
	g.AddPoint("d", 75, -20)
	constraints := []constraint.Constraint{
		constraint.New("col", constraint.Colinear, []geom.ID{"a", "b", "c", "d"}, nil),
	}

	solved, _ := solveGeometry(t, g, constraints)
	a, _ := solved.Point("a")
	b, _ := solved.Point("b")
	pts := []string{"c", "d"}
	var maxDist float64
	for _, id := range pts {
		p, _ := solved.Point(geom.ID(id))
		d := dist(a, b, p)
		if d > maxDist {
			maxDist = d
		}
	}
	require.LessOrEqual(t, maxDist, 1e-2)
}

func dist(a, b, p geom.Point) float64 {
	dir := b.Vec().Sub(a.Vec())
	length := dir.Length()
	if length < 1e-12 {
		return 0
	}
	return math.Abs(dir.Cross(p.Vec().Sub(a.Vec()))) / length
}

// Property: idempotence — solving an already-feasible geometry converges
// in at most one iteration.
func TestIdempotenceOnFeasibleGeometry(t *testing.T) {
	g := geom.New()
	g.AddPoint("a", 0, 0)
	g.AddPoint("b", 150, 0)
	constraints := []constraint.Constraint{
		constraint.New("c1", constraint.Distance, []geom.ID{"a", "b"}, constraint.T(150)),
	}

	_, stats := solveGeometry(t, g, constraints)
	require.True(t, stats.Success)
	require.LessOrEqual(t, stats.Iterations, 1)
}

// Property: monotone objective — Driver never reports a final objective
// larger than the objective at the starting point.
func TestMonotoneObjective(t *testing.T) {
	g := geom.New()
	g.AddPoint("a", 200, 200)
	g.AddPoint("b", 300, 300)
	constraints := []constraint.Constraint{
		constraint.New("c1", constraint.Distance, []geom.ID{"a", "b"}, constraint.T(150)),
	}

	packer := NewPacker(g, constraints)
	obj := NewObjective(packer, constraints, constraint.DefaultFeasibilityEpsilon)
	x0 := packer.Initial()
	fStart := obj.Value(x0)

	driver := NewDriver(DefaultParams())
	_, stats := driver.Run(obj, x0)

	require.LessOrEqual(t, stats.FinalObjective, fStart)
}

// Property: gradient agreement — central differences at two step sizes
// agree to within the tolerance spec.md §8 property 5 names.
func TestGradientAgreementAcrossStepSizes(t *testing.T) {
	g := geom.New()
	g.AddPoint("a", 200, 200)
	g.AddPoint("b", 340, 260)
	constraints := []constraint.Constraint{
		constraint.New("c1", constraint.Distance, []geom.ID{"a", "b"}, constraint.T(150)),
	}
	packer := NewPacker(g, constraints)
	obj := NewObjective(packer, constraints, constraint.DefaultFeasibilityEpsilon)
	x := packer.Initial()

	g1 := centralDiffGradient(obj, x, 1e-5)
	g2 := centralDiffGradient(obj, x, 1e-6)

	for i := 0; i < x.Len(); i++ {
		denom := math.Max(1, math.Abs(g2.AtVec(i)))
		require.LessOrEqual(t, math.Abs(g1.AtVec(i)-g2.AtVec(i))/denom, 1e-3)
	}
}

func centralDiffGradient(obj *Objective, x *mat.VecDense, h float64) *mat.VecDense {
	n := x.Len()
	grad := mat.NewVecDense(n, nil)
	trial := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		trial.CopyVec(x)
		trial.SetVec(i, x.AtVec(i)+h)
		fPlus := obj.Value(trial)
		trial.CopyVec(x)
		trial.SetVec(i, x.AtVec(i)-h)
		fMinus := obj.Value(trial)
		grad.SetVec(i, (fPlus-fMinus)/(2*h))
	}
	return grad
}
