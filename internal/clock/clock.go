package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc, truncated to whole seconds because
// token timestamps travel as unix seconds.
func Now() time.Time { return NowFunc().Truncate(time.Second) }

// Freeze pins Now to the supplied instant and returns a restore function.
func Freeze(at time.Time) (restore func()) {
	prev := NowFunc
	NowFunc = func() time.Time { return at }
	return func() { NowFunc = prev }
}
