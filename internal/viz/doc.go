// Package viz shows a running swarm in the terminal.
//
// The view is a Bubble Tea program drawing onto a braille [Canvas]: obstacle
// outlines, agent setpoints with short trails, the leader target as a cross
// and the operator with its heading. A side panel charts the leader's
// distance to its target with asciigraph.
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	N       - Single tick while paused
//	WASD    - Move the operator (arrows work too)
//	E/R     - Turn the operator
//	T       - Cycle color themes
//	?       - Show help overlay
package viz
