// Package control provides batched controllers for plants which implement [sysid.Plant].
//
// Controllers implement the [sysid.Controller] interface. Every row of the state
// batch passed to Control holds one trajectory and every row of the returned input
// batch is the input for that trajectory:
//
//   - [None]: zero input
//   - [Feedback]: static state feedback around a target state, e.g. LQR
//   - [PID]: per axis Proportional-Integral-Derivative position controller
//   - [Open]: replays a precomputed sequence of inputs
//   - [Func]: adapts a function to the Controller interface
//
// # Usage
//
//	pid, _ := control.NewPID(2.0, 0.1, 0.5, 0.05, target)
//	xLog, uLog, err := plant.Rollout(pid, w)
//
// Rollouts reset the controller before the first and after the last step.
package control
