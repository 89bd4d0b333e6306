package constraint

import (
	"math"

	"github.com/parametric-cad/sketchsolve/geom"
)

// DefaultFeasibilityEpsilon is ε_feas from spec.md §4.1: a constraint is
// satisfied when its residual's magnitude falls at or below this bound.
const DefaultFeasibilityEpsilon = 1e-6

// degenerateTolerance bounds the denominators (line length, vector norm)
// below which a residual short-circuits to 0 instead of dividing by
// (near) zero. spec.md §4.1 requires the driver never observe a
// non-finite residual; this is the single place that guarantee is kept.
const degenerateTolerance = 1e-12

// Result is the outcome of evaluating one constraint against a Geometry.
type Result struct {
	Residual  float64
	Satisfied bool
	// Valid is false when the constraint is structurally malformed: wrong
	// arity, wrong entity kind, a missing target, or a dangling entity
	// reference. Callers building an objective (package solve) must skip
	// constraints with Valid == false rather than fold them in — spec.md
	// §3 invariant 2 and §7 require malformed constraints to be dropped
	// silently, never surfaced as an error.
	Valid bool
}

func invalid() Result {
	return Result{Residual: 0, Satisfied: true, Valid: false}
}

func ok(residual, eps float64) Result {
	return Result{Residual: residual, Satisfied: math.Abs(residual) <= eps, Valid: true}
}

// Evaluate computes the residual of a constraint against a Geometry using
// DefaultFeasibilityEpsilon. It is pure and total: every Constraint/
// Geometry pair produces a Result, never an error or a panic.
func Evaluate(c Constraint, g *geom.Geometry) Result {
	return EvaluateWithEpsilon(c, g, DefaultFeasibilityEpsilon)
}

// EvaluateWithEpsilon is Evaluate parameterized over ε_feas, so a caller
// (e.g. the solve driver, which already tracks its own tolerances) need
// not duplicate DefaultFeasibilityEpsilon.
func EvaluateWithEpsilon(c Constraint, g *geom.Geometry, eps float64) Result {
	switch c.Kind {
	case Distance:
		return pairDistance(c, g, eps)
	case XDistance:
		return axisDistance(c, g, eps, true)
	case YDistance:
		return axisDistance(c, g, eps, false)
	case FixX:
		return fixAxis(c, g, eps, true)
	case FixY:
		return fixAxis(c, g, eps, false)
	case SameX:
		return samePointAxis(c, g, eps, true)
	case SameY:
		return samePointAxis(c, g, eps, false)
	case HorizontalLine:
		return lineAxisAligned(c, g, eps, false)
	case VerticalLine:
		return lineAxisAligned(c, g, eps, true)
	case Parallel:
		return lineDirectionRelation(c, g, eps, true)
	case Perpendicular:
		return lineDirectionRelation(c, g, eps, false)
	case SameLength:
		return sameLength(c, g, eps)
	case Angle:
		return angle(c, g, eps)
	case Colinear:
		return colinear(c, g, eps)
	case OrthogonalDistance:
		return orthogonalDistance(c, g, eps)
	case PointOnCircle:
		return pointOnCircle(c, g, eps)
	case LineTangentToCircle:
		return lineTangentToCircle(c, g, eps)
	case Radius:
		return radius(c, g, eps)
	case SameRadius:
		return sameRadius(c, g, eps)
	default:
		return invalid()
	}
}

// --- entity resolution helpers ---

func points(g *geom.Geometry, ids []geom.ID) ([]geom.Point, bool) {
	out := make([]geom.Point, len(ids))
	for i, id := range ids {
		p, found := g.Point(id)
		if !found {
			return nil, false
		}
		out[i] = p
	}
	return out, true
}

func lines(g *geom.Geometry, ids []geom.ID) ([][2]geom.Point, bool) {
	out := make([][2]geom.Point, len(ids))
	for i, id := range ids {
		a, b, found := g.LineEndpoints(id)
		if !found {
			return nil, false
		}
		out[i] = [2]geom.Point{a, b}
	}
	return out, true
}

func circles(g *geom.Geometry, ids []geom.ID) ([][2]geom.Point, bool) {
	out := make([][2]geom.Point, len(ids))
	for i, id := range ids {
		center, rp, found := g.CircleGeometry(id)
		if !found {
			return nil, false
		}
		out[i] = [2]geom.Point{center, rp}
	}
	return out, true
}

// orthoDistanceToLine returns the unsigned distance from p to the
// infinite line through a and b, short-circuiting to 0 when a and b
// coincide (spec.md §4.1 degenerate rule).
func orthoDistanceToLine(p, a, b geom.Point) float64 {
	dir := b.Vec().Sub(a.Vec())
	length := dir.Length()
	if length < degenerateTolerance {
		return 0
	}
	return math.Abs(dir.Cross(p.Vec().Sub(a.Vec()))) / length
}

// --- two-point kinds ---

func pairDistance(c Constraint, g *geom.Geometry, eps float64) Result {
	if len(c.Entities) != 2 || c.Target == nil {
		return invalid()
	}
	ps, found := points(g, c.Entities)
	if !found {
		return invalid()
	}
	r := geom.Distance(ps[0].Vec(), ps[1].Vec()) - *c.Target
	return ok(r, eps)
}

func axisDistance(c Constraint, g *geom.Geometry, eps float64, xAxis bool) Result {
	if len(c.Entities) != 2 || c.Target == nil {
		return invalid()
	}
	ps, found := points(g, c.Entities)
	if !found {
		return invalid()
	}
	var r float64
	if xAxis {
		r = (ps[1].X - ps[0].X) - *c.Target
	} else {
		r = (ps[1].Y - ps[0].Y) - *c.Target
	}
	return ok(r, eps)
}

func fixAxis(c Constraint, g *geom.Geometry, eps float64, xAxis bool) Result {
	if len(c.Entities) != 1 || c.Target == nil {
		return invalid()
	}
	ps, found := points(g, c.Entities)
	if !found {
		return invalid()
	}
	var r float64
	if xAxis {
		r = ps[0].X - *c.Target
	} else {
		r = ps[0].Y - *c.Target
	}
	return ok(r, eps)
}

// --- multi-point alignment kinds ---

func samePointAxis(c Constraint, g *geom.Geometry, eps float64, xAxis bool) Result {
	if len(c.Entities) < 2 {
		return invalid()
	}
	ps, found := points(g, c.Entities)
	if !found {
		return invalid()
	}
	sum := 0.0
	for i := 1; i < len(ps); i++ {
		var d float64
		if xAxis {
			d = ps[i].X - ps[0].X
		} else {
			d = ps[i].Y - ps[0].Y
		}
		sum += d * d
	}
	return ok(math.Sqrt(sum), eps)
}

// --- single-line kinds ---

func lineAxisAligned(c Constraint, g *geom.Geometry, eps float64, xAxis bool) Result {
	if len(c.Entities) != 1 {
		return invalid()
	}
	ls, found := lines(g, c.Entities)
	if !found {
		return invalid()
	}
	a, b := ls[0][0], ls[0][1]
	var r float64
	if xAxis {
		r = a.X - b.X // "vertical": L1.a.x - L1.b.x
	} else {
		r = a.Y - b.Y // "horizontal": L1.a.y - L1.b.y
	}
	return ok(r, eps)
}

// --- two-line kinds ---

func lineDirectionRelation(c Constraint, g *geom.Geometry, eps float64, parallel bool) Result {
	if len(c.Entities) != 2 {
		return invalid()
	}
	ls, found := lines(g, c.Entities)
	if !found {
		return invalid()
	}
	d1 := ls[0][1].Vec().Sub(ls[0][0].Vec())
	d2 := ls[1][1].Vec().Sub(ls[1][0].Vec())
	denom := d1.Length() * d2.Length()
	if denom < degenerateTolerance {
		return ok(0, eps)
	}
	if parallel {
		return ok(d1.Cross(d2)/denom, eps)
	}
	return ok(d1.Dot(d2)/denom, eps)
}

func sameLength(c Constraint, g *geom.Geometry, eps float64) Result {
	if len(c.Entities) < 2 {
		return invalid()
	}
	ls, found := lines(g, c.Entities)
	if !found {
		return invalid()
	}
	lengths := make([]float64, len(ls))
	for i, l := range ls {
		lengths[i] = geom.Distance(l[0].Vec(), l[1].Vec())
	}
	sum := 0.0
	for i := 1; i < len(lengths); i++ {
		d := lengths[i] - lengths[0]
		sum += d * d
	}
	return ok(math.Sqrt(sum), eps)
}

// --- angle ---

func angle(c Constraint, g *geom.Geometry, eps float64) Result {
	if len(c.Entities) != 3 || c.Target == nil {
		return invalid()
	}
	ps, found := points(g, c.Entities)
	if !found {
		return invalid()
	}
	vertex := ps[1].Vec()
	v1 := ps[0].Vec().Sub(vertex)
	v2 := ps[2].Vec().Sub(vertex)
	denom := v1.Length() * v2.Length()
	if denom < degenerateTolerance {
		return ok(0, eps)
	}
	cosTheta := v1.Dot(v2) / denom
	cosTheta = math.Max(-1, math.Min(1, cosTheta))
	degrees := math.Acos(cosTheta) * 180 / math.Pi
	return ok(degrees-*c.Target, eps)
}

// --- colinear ---

func colinear(c Constraint, g *geom.Geometry, eps float64) Result {
	if len(c.Entities) < 3 {
		return invalid()
	}
	ps, found := points(g, c.Entities)
	if !found {
		return invalid()
	}
	a, b := ps[0], ps[1]
	if geom.Distance(a.Vec(), b.Vec()) < degenerateTolerance {
		return ok(0, eps)
	}
	sum := 0.0
	for i := 2; i < len(ps); i++ {
		d := orthoDistanceToLine(ps[i], a, b)
		sum += d * d
	}
	return ok(math.Sqrt(sum), eps)
}

// --- point/line/circle mixed kinds ---

func orthogonalDistance(c Constraint, g *geom.Geometry, eps float64) Result {
	if len(c.Entities) != 2 || c.Target == nil {
		return invalid()
	}
	ps, found := points(g, c.Entities[:1])
	if !found {
		return invalid()
	}
	ls, found := lines(g, c.Entities[1:])
	if !found {
		return invalid()
	}
	d := orthoDistanceToLine(ps[0], ls[0][0], ls[0][1])
	return ok(d-*c.Target, eps)
}

func pointOnCircle(c Constraint, g *geom.Geometry, eps float64) Result {
	if len(c.Entities) != 2 {
		return invalid()
	}
	ps, found := points(g, c.Entities[:1])
	if !found {
		return invalid()
	}
	cs, found := circles(g, c.Entities[1:])
	if !found {
		return invalid()
	}
	center, rp := cs[0][0], cs[0][1]
	r := geom.Distance(ps[0].Vec(), center.Vec()) - geom.Distance(rp.Vec(), center.Vec())
	return ok(r, eps)
}

func lineTangentToCircle(c Constraint, g *geom.Geometry, eps float64) Result {
	if len(c.Entities) != 2 {
		return invalid()
	}
	ls, found := lines(g, c.Entities[:1])
	if !found {
		return invalid()
	}
	cs, found := circles(g, c.Entities[1:])
	if !found {
		return invalid()
	}
	center, rp := cs[0][0], cs[0][1]
	d := orthoDistanceToLine(center, ls[0][0], ls[0][1])
	r := d - geom.Distance(rp.Vec(), center.Vec())
	return ok(r, eps)
}

func radius(c Constraint, g *geom.Geometry, eps float64) Result {
	if len(c.Entities) != 1 || c.Target == nil {
		return invalid()
	}
	cs, found := circles(g, c.Entities)
	if !found {
		return invalid()
	}
	center, rp := cs[0][0], cs[0][1]
	r := geom.Distance(rp.Vec(), center.Vec()) - *c.Target
	return ok(r, eps)
}

func sameRadius(c Constraint, g *geom.Geometry, eps float64) Result {
	if len(c.Entities) < 2 {
		return invalid()
	}
	cs, found := circles(g, c.Entities)
	if !found {
		return invalid()
	}
	radii := make([]float64, len(cs))
	for i, cc := range cs {
		radii[i] = geom.Distance(cc[1].Vec(), cc[0].Vec())
	}
	sum := 0.0
	for i := 1; i < len(radii); i++ {
		d := radii[i] - radii[0]
		sum += d * d
	}
	return ok(math.Sqrt(sum), eps)
}
