// Package easing generates animation timing functions.
//
// A Func maps a step number and a total number of steps to the time in
// milliseconds to wait before that step. Profiles are solved in closed form
// so that the waits of an n-step animation add up to a configured total
// duration (or n times a per-step duration) for any n.
//
// Two families are provided:
//
//   - power: waits proportional to k^p for p in 0..3 (linear, quadratic,
//     cubic, quartic)
//   - geometric: waits (d-1)*d^k, solved from the geometric series sum
//
// "in" easing starts slow and accelerates, "out" starts fast and slows
// down, "in-out" is symmetric around the middle step.
package easing
