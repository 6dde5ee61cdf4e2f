// Package scope computes indent scopes.
//
// A scope is the maximal contiguous range of lines around a reference
// position whose indent is at least the reference indent. It consists of a
// body (the range itself plus the minimum indent observed inside it) and an
// optional border (the lines just outside the body with smaller indent).
//
// # Blank lines
//
// Blank lines have no indent of their own. Their indent is derived from the
// nearest non-blank lines above and below, combined according to the active
// BorderPolicy:
//
//	None   -> min(above, below)
//	Top    -> below
//	Bottom -> above
//	Both   -> max(above, below)
//
// This keeps blank lines at the edge of a block inside the body only when
// they are not next to a border under the active policy.
//
// # Imaginary lines
//
// Lines 0 and LineCount()+1 exist for the purpose of computation and always
// have indent -1. They make the ray cast terminate and serve as border lines
// of top-level scopes.
//
// All functions in this package are pure. Resolve never fails.
package scope
