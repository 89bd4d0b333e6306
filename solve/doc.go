// Package solve turns a Geometry and a set of constraints into a solved
// Geometry: it packs free point coordinates into a dense vector, builds
// the weighted sum-of-squared-residuals objective with a central-
// difference gradient, runs a backtracking gradient-descent driver to
// convergence or stagnation, and unpacks the result back into a fresh
// Geometry.
//
// This generalizes draw.Context/draw.Context.Solve's linear
// equation-system solve (Gaussian elimination over a fixed relation set)
// into the nonlinear least-squares solve this domain's full constraint
// catalog requires, and follows mp.Engine/mp.NewEngine/mp.Engine.Solve's
// shape for an object that owns solver state and exposes a single Solve
// entry point.
package solve
