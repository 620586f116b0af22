// Package sim is a stand-in for the motion-capture room: a simulated
// operator and point-mass vehicles that track their setpoints.
//
// A [World] is both the pose source and the actuation sink of a swarm loop,
// and advances its own clock as a loop observer, one control period per
// tick.
package sim
