// Package constraint defines the tagged constraint variants of a
// parametric sketch and the pure residual evaluator over them.
//
// Each [Kind] is a distinct case of a closed sum type; [Evaluate] is the
// single total function that pattern-matches over it, keeping every
// residual definition in one place. This mirrors the teacher engine's
// preference for a small set of tagged cases (mp.KnotType) dispatched by
// a single function, generalized here from curve-segment bookkeeping to
// geometric relations, and generalizes draw.Context's fixed set of linear
// relation methods (EqX, Collinear, Intersection, ...) into the full
// nonlinear residual table a gradient-based solver needs.
package constraint
