// Package geom defines the geometry model shared by the constraint
// evaluator and the solver: points, lines, circles, and the Geometry
// arena that owns them.
//
// A Geometry is a snapshot: points, lines and circles are looked up by
// opaque identifier rather than through live pointers, so a solver can
// copy, mutate and discard a Geometry without the caller ever observing
// a partial edit (see the solve package's orchestrator).
package geom
