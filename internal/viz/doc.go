// Package viz renders a running particle solver in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps a [solver.Solver] once per tick at the target SFPS
//   - [Canvas]: braille dot matrix, particles drawn as discs
//   - [HeatRamp]: tints cells from cold to hot by particle temperature
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S / X - Spawn / remove a batch
//	K / A - Shake once / toggle auto-random shake
//	Tab   - Select a solver parameter, Up/Down to tune it
//	?     - Show help overlay
package viz
