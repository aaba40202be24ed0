// Package sim owns the particle population and advances it frame by frame.
//
// A [Simulator] holds a [Population] (the only place particles are created
// or destroyed) and runs one step per rendered frame:
//
//  1. apply queued population commands
//  2. E pass: force, integrate, clamp each E particle
//  3. MP pass: force, integrate, clamp each MP particle
//
// # Update order
//
// [Sequential] mode updates particles in place, in slice order, so a
// particle's force reads positions already moved earlier in the same pass
// (Gauss–Seidel). The MP pass sees the fully updated E population.
//
// [Snapshot] mode reads every position from a copy taken at the start of
// the step, evaluates forces in parallel and writes the results back
// (Jacobi). Results do not depend on the worker count but differ from
// Sequential mode.
//
// # Thread Safety
//
// Simulator and Population are NOT safe for concurrent use. Drivers that
// receive commands from other goroutines must serialize access themselves.
package sim
