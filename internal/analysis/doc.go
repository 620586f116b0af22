// Package analysis characterizes recorded signals such as a leader's
// distance to its target.
//
//   - [Spectrum] and [Dominant]: where the energy of an oscillation sits,
//     e.g. ringing from an underdamped impedance mode or dither at the goal
//   - [SettlingTime]: when a signal enters and stays inside a band
//   - [Ripple]: spread of the tail of a signal
package analysis
