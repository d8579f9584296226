// Package solver runs the particle pipeline: forces, wall constraints,
// out-of-bounds culling, grid-accelerated collision relaxation, Verlet
// integration and population control.
//
// A Solver owns every particle. Callers drive it with Update or
// UpdateWithSubsteps once per frame and may rewrite Config between frames;
// SetParam offers the same tunables by name.
//
//	s, _ := solver.New(solver.DefaultConfig())
//	s.SpawnBatch(100)
//	s.UpdateWithSubsteps(1.0/60, 8)
//
// A Solver is not safe for concurrent use. Run independent solvers in
// separate goroutines instead.
package solver
