package solve

import (
	"gonum.org/v1/gonum/mat"

	"github.com/parametric-cad/sketchsolve/constraint"
	"github.com/parametric-cad/sketchsolve/geom"
)

// slot describes where one coordinate of one point lives: either a free
// variable at Index in the packed vector, or a value fixed by a fix-x/
// fix-y constraint and excluded from the vector entirely (spec.md §3
// invariant 4, §4.2, §9's "fixed coordinates are a projection" note).
type slot struct {
	fixed bool
	index int
	value float64
}

// Packer is the deterministic bijection between a Geometry's free point
// coordinates and a dense vector x ∈ ℝⁿ. Iteration order is fixed by
// geom.Geometry.SortedPointIDs, so two Packers built from byte-identical
// Geometry values produce byte-identical vectors (spec.md §4.2, §8
// property 3).
//
// This generalizes draw.Context/draw.Var's index-per-coordinate
// bookkeeping (each Var got a fixed slot at construction time) to a
// Geometry-driven assignment pass that also distinguishes free slots from
// fix-x/fix-y-projected constants.
type Packer struct {
	base   *geom.Geometry
	ids    []geom.ID
	xSlots map[geom.ID]slot
	ySlots map[geom.ID]slot
	dim    int
}

// NewPacker builds a Packer over g's points, treating any point named by a
// valid fix-x/fix-y constraint as fixed to that constraint's target.
// constraints should already be filtered to the ones the caller intends
// to solve with; NewPacker itself re-validates each fix-x/fix-y constraint
// (right arity, existing point, non-nil target) and ignores the rest.
func NewPacker(g *geom.Geometry, constraints []constraint.Constraint) *Packer {
	fixedX := make(map[geom.ID]float64)
	fixedY := make(map[geom.ID]float64)
	for _, c := range constraints {
		if c.Target == nil || len(c.Entities) != 1 {
			continue
		}
		if _, ok := g.Point(c.Entities[0]); !ok {
			continue
		}
		switch c.Kind {
		case constraint.FixX:
			fixedX[c.Entities[0]] = *c.Target
		case constraint.FixY:
			fixedY[c.Entities[0]] = *c.Target
		}
	}

	ids := g.SortedPointIDs()
	p := &Packer{
		base:   g,
		ids:    ids,
		xSlots: make(map[geom.ID]slot, len(ids)),
		ySlots: make(map[geom.ID]slot, len(ids)),
	}

	next := 0
	for _, id := range ids {
		pt := g.Points[id]
		if v, ok := fixedX[id]; ok {
			p.xSlots[id] = slot{fixed: true, value: v}
		} else {
			p.xSlots[id] = slot{index: next, value: pt.X}
			next++
		}
		if v, ok := fixedY[id]; ok {
			p.ySlots[id] = slot{fixed: true, value: v}
		} else {
			p.ySlots[id] = slot{index: next, value: pt.Y}
			next++
		}
	}
	p.dim = next
	return p
}

// Dim returns n, the dimension of the packed vector.
func (p *Packer) Dim() int {
	return p.dim
}

// Initial returns x₀, the packed vector of the base Geometry's current
// unfixed coordinates.
func (p *Packer) Initial() *mat.VecDense {
	x := mat.NewVecDense(p.dim, nil)
	for _, id := range p.ids {
		if s := p.xSlots[id]; !s.fixed {
			x.SetVec(s.index, s.value)
		}
		if s := p.ySlots[id]; !s.fixed {
			x.SetVec(s.index, s.value)
		}
	}
	return x
}

// Unpack writes a solved vector back into a fresh Geometry: unfixed
// coordinates take their value from x, fixed coordinates take their
// fix-x/fix-y target, and every Line and Circle is carried over unchanged
// (spec.md §4.2 item 3).
func (p *Packer) Unpack(x *mat.VecDense) *geom.Geometry {
	out := p.base.Clone()
	for _, id := range p.ids {
		px := p.coordinate(p.xSlots[id], x)
		py := p.coordinate(p.ySlots[id], x)
		out.AddPoint(id, px, py)
	}
	return out
}

func (p *Packer) coordinate(s slot, x *mat.VecDense) float64 {
	if s.fixed {
		return s.value
	}
	return x.AtVec(s.index)
}

// SlotX reports where a point's x-coordinate lives, for tests that need
// to inspect the pack/unpack bijection directly (spec.md §6 item 3).
func (p *Packer) SlotX(id geom.ID) (index int, fixed bool, value float64) {
	s := p.xSlots[id]
	return s.index, s.fixed, s.value
}

// SlotY reports where a point's y-coordinate lives.
func (p *Packer) SlotY(id geom.ID) (index int, fixed bool, value float64) {
	s := p.ySlots[id]
	return s.index, s.fixed, s.value
}
