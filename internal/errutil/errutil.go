// Package errutil gates cheap internal consistency assertions behind a
// debug flag, so release builds pay nothing for them.
package errutil

import "fmt"

// Debug is flipped on by the consuming package's init() reading its own
// environment variable (package zfast's init(), ZFAST_DEBUG); kept as a
// package-level var rather than a constant so tests can toggle it.
var Debug bool

// Bug panics with a formatted message when Debug is enabled.
func Bug(format string, args ...any) {
	if Debug {
		panic(fmt.Sprintf("BUG: "+format, args...))
	}
}

// BugOn panics with a formatted message when cond is true and Debug is
// enabled.
func BugOn(cond bool, format string, args ...any) {
	if cond {
		Bug(format, args...)
	}
}
