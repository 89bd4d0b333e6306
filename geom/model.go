package geom

import "sort"

// ID is an opaque, stable entity identifier. The model never interprets
// its contents; it only compares and sorts them, which is what gives the
// variable packer (package solve) a deterministic iteration order.
type ID string

// Point is a single 2D coordinate, addressable by ID. It carries no
// reference to the Lines or Circles that use it — those hold the Point's
// ID instead, per spec.md §3's "opaque identifiers + side tables" design.
type Point struct {
	ID   ID
	X, Y float64
}

// Vec returns the point's coordinates as a Vec for use in vector algebra.
func (p Point) Vec() Vec {
	return Vec{X: p.X, Y: p.Y}
}

// Line is defined by two point identifiers. Infinite marks a construction
// line whose endpoints only fix its direction; residuals that measure
// distance-to-line (orthogonal-distance, line-tangent-to-circle) treat the
// line as infinite regardless of this flag, since spec.md §4.1 always
// measures against "the infinite line through the line's endpoints".
type Line struct {
	ID       ID
	P1, P2   ID
	Infinite bool
}

// Circle is defined by a center point and a second point on its
// circumference; the radius is derived, never stored directly.
type Circle struct {
	ID                 ID
	Center, RadiusPoint ID
}

// Geometry is the immutable-view arena owning all Points, Lines and
// Circles of a sketch. Lines and Circles only ever hold Point IDs, never
// live references, so a Geometry can be cloned cheaply and compared for
// byte-identical equality (spec.md §8 property 2, snapshot isolation).
type Geometry struct {
	Points  map[ID]Point
	Lines   map[ID]Line
	Circles map[ID]Circle
}

// New creates an empty Geometry.
func New() *Geometry {
	return &Geometry{
		Points:  make(map[ID]Point),
		Lines:   make(map[ID]Line),
		Circles: make(map[ID]Circle),
	}
}

// AddPoint inserts or replaces a point.
func (g *Geometry) AddPoint(id ID, x, y float64) {
	g.Points[id] = Point{ID: id, X: x, Y: y}
}

// AddLine inserts or replaces a line. Both endpoints must already exist in
// the Geometry for the line to be usable; a dangling reference is simply
// skipped by consumers (spec.md §7, structural errors are silent).
func (g *Geometry) AddLine(id, p1, p2 ID, infinite bool) {
	g.Lines[id] = Line{ID: id, P1: p1, P2: p2, Infinite: infinite}
}

// AddCircle inserts or replaces a circle.
func (g *Geometry) AddCircle(id, center, radiusPoint ID) {
	g.Circles[id] = Circle{ID: id, Center: center, RadiusPoint: radiusPoint}
}

// Point looks up a point by ID.
func (g *Geometry) Point(id ID) (Point, bool) {
	p, ok := g.Points[id]
	return p, ok
}

// Line looks up a line by ID.
func (g *Geometry) Line(id ID) (Line, bool) {
	l, ok := g.Lines[id]
	return l, ok
}

// Circle looks up a circle by ID.
func (g *Geometry) Circle(id ID) (Circle, bool) {
	c, ok := g.Circles[id]
	return c, ok
}

// LineEndpoints resolves both endpoints of a line, reporting ok=false if
// the line or either endpoint is missing.
func (g *Geometry) LineEndpoints(id ID) (a, b Point, ok bool) {
	l, ok := g.Lines[id]
	if !ok {
		return Point{}, Point{}, false
	}
	a, aok := g.Points[l.P1]
	b, bok := g.Points[l.P2]
	if !aok || !bok {
		return Point{}, Point{}, false
	}
	return a, b, true
}

// CircleGeometry resolves a circle's center and radius point, reporting
// ok=false if the circle or either referenced point is missing.
func (g *Geometry) CircleGeometry(id ID) (center, radiusPoint Point, ok bool) {
	c, ok := g.Circles[id]
	if !ok {
		return Point{}, Point{}, false
	}
	center, cok := g.Points[c.Center]
	radiusPoint, rok := g.Points[c.RadiusPoint]
	if !cok || !rok {
		return Point{}, Point{}, false
	}
	return center, radiusPoint, true
}

// DeletePoint removes a point and cascades the deletion to every Line and
// Circle that references it (spec.md §3 invariant 1). Constraints are not
// owned by Geometry; callers holding a constraint list are responsible for
// dropping constraints that reference the deleted point, which the
// constraint evaluator also does implicitly by treating them as malformed.
func (g *Geometry) DeletePoint(id ID) {
	delete(g.Points, id)
	for lid, l := range g.Lines {
		if l.P1 == id || l.P2 == id {
			delete(g.Lines, lid)
		}
	}
	for cid, c := range g.Circles {
		if c.Center == id || c.RadiusPoint == id {
			delete(g.Circles, cid)
		}
	}
}

// SortedPointIDs returns every point ID in a deterministic (lexical) order.
// This is the iteration order the variable packer relies on to make two
// solves over byte-identical Geometry values produce byte-identical
// results (spec.md §4.2, §8 property 3).
func (g *Geometry) SortedPointIDs() []ID {
	ids := make([]ID, 0, len(g.Points))
	for id := range g.Points {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy of the Geometry. The orchestrator clones its
// input once at entry so the caller's Geometry is never observed to
// change mid-solve (spec.md §3 invariant 3, §8 property 2).
func (g *Geometry) Clone() *Geometry {
	out := New()
	for id, p := range g.Points {
		out.Points[id] = p
	}
	for id, l := range g.Lines {
		out.Lines[id] = l
	}
	for id, c := range g.Circles {
		out.Circles[id] = c
	}
	return out
}
