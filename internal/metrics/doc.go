// Package metrics scores swarm runs. Every metric is a loop observer that
// folds frames into a single number:
//
//   - [PathLength]: distance travelled by the leader setpoint
//   - [Clearance]: smallest gap between any setpoint and an obstacle surface
//   - [FormationError]: mean follower distance to its slot
//   - [GoalDistance]: final leader distance to its target
//   - [Stalls]: planning steps that held position
//   - [ControlEffort]: mean setpoint speed over all agents
package metrics
