// Package leaktest checks that tests do not leave goroutines behind.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const (
	settleDelay  = 10 * time.Millisecond
	drainDelay   = 50 * time.Millisecond
	pollInterval = 10 * time.Millisecond
)

// GoroutineChecker records the goroutine count before a test body runs
type GoroutineChecker struct {
	before int
	t      testing.TB
}

// NewGoroutineChecker creates a new checker and records the current goroutine count
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()

	runtime.Gosched()
	time.Sleep(settleDelay)

	return &GoroutineChecker{
		before: runtime.NumGoroutine(),
		t:      t,
	}
}

// Check waits for stragglers to exit, then fails the test if more than
// tolerance goroutines remain compared to the recorded count.
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()

	deadline := time.Now().Add(drainDelay * 4)
	leaked := runtime.NumGoroutine() - g.before
	for leaked > tolerance && time.Now().Before(deadline) {
		runtime.Gosched()
		runtime.GC()
		time.Sleep(pollInterval)
		leaked = runtime.NumGoroutine() - g.before
	}

	if leaked > tolerance {
		g.t.Errorf("Potential goroutine leak: before=%d, after=%d, leaked=%d (tolerance=%d)",
			g.before, g.before+leaked, leaked, tolerance)
	}
}

// CheckNoGoroutineLeak runs fn and fails the test if it leaks goroutines
func CheckNoGoroutineLeak(t testing.TB, fn func()) {
	t.Helper()

	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}
