// Package swarm runs the per-tick control loop of a leader-follower swarm.
//
// Every tick the loop:
//
//  1. advances the obstacles toward their goals
//  2. maps operator motion to a leader target
//  3. steps the leader down the potential field toward that target
//  4. clamps the leader setpoint into the safety envelope
//  5. derives the follower formation from the operator heading
//  6. applies the impedance correction to leader and followers
//  7. steps each follower toward its slot, concurrently
//  8. sends the setpoints and notifies observers and metrics
//
// Poses come from a [PoseSource] and setpoints leave through an
// [ActuationSink]; the loop does not know whether they are a motion-capture
// system and radios or the simulated world of package sim.
package swarm
