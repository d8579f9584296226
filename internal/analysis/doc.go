// Package analysis characterizes recorded run series.
//
//   - [PowerSpectrum] and [DominantPeriod]: oscillation in a series, such
//     as the sloshing of a shaken pool or convection cycles
//   - [Describe]: summary statistics
//   - [Trend]: least-squares slope, e.g. heating or population drift
//   - [SettleTime]: how long a series takes to stay near its final value
//
// Series come from sim.Result.Series or storage frames.
package analysis
