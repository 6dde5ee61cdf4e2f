// Package draw reveals a resolved scope with a debounced, cancellable step
// animation.
//
// A Scheduler owns one AnimationState and one timer handle. All of its
// methods, and every timer callback it arms, run on the loop goroutine, so
// the state needs no locking. Cancellation is a plain comparison of the
// event id captured by a callback against the current one: every request
// bumps the id and stale callbacks do nothing.
//
// The animation starts at the origin line and expands towards both body
// edges in lockstep. Waits between steps come from an easing.Func; waits
// shorter than the clock granularity are merged into the same tick and the
// fractional part of every armed wait is carried into the next step.
package draw
