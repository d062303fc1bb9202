// Package assertx carries forward the teacher's Assert() convention: a
// loud, unconditional check for invariants that a caller violating is a
// programmer error, not a runtime condition to recover from.
package assertx

import "fmt"

// Assert panics with a formatted message when cond is false. It is used
// throughout this module for the same class of checks the original C++
// guarded with assert(): out-of-range bit widths, buffer index invariants,
// and other conditions that must never occur if callers respect the
// package contracts.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}
