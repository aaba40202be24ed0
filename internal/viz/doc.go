// Package viz is the terminal viewer.
//
// [Model] renders a running simulator on a braille [Canvas] through an
// [OrbitCamera] and takes population commands from the keyboard.
// [RunInteractive] adds a preset picker in front of it.
//
// # Key Bindings
//
//	1 / 2     add an E / MP particle
//	3 / 4     remove an E / MP particle
//	! @ #     +100 E, +10 E, -10 E
//	Ctrl+R    reset the population
//	Space     pause; commands still apply while paused
//	+ / -     zoom, eased with a spring
//	Arrows    pan
//	q / Esc   quit
package viz
