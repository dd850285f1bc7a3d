// Package query holds the parameter contract and error taxonomy shared by
// every public engine operation.
package query

import "time"

// Parameter bounds enforced by the engine.
const (
	DefaultLimit = 20
	MaxLimit     = 100

	DefaultDaysBack = 7
	MaxDaysBack     = 365
)

// Limit normalizes a caller-supplied result limit. Zero means "use default";
// negative is rejected; values above MaxLimit are clamped.
func Limit(n int) (int, error) {
	switch {
	case n < 0:
		return 0, InvalidArgumentf("limit must be positive, got %d", n)
	case n == 0:
		return DefaultLimit, nil
	case n > MaxLimit:
		return MaxLimit, nil
	default:
		return n, nil
	}
}

// Window is a trailing time range over which analytics are computed.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of whole days the window spans.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start) / (24 * time.Hour))
}

// TrailingWindow normalizes daysBack and returns the [now-days, now] window.
// Zero means "use default"; negative is rejected; values above MaxDaysBack
// are clamped.
func TrailingWindow(daysBack int, now time.Time) (Window, error) {
	switch {
	case daysBack < 0:
		return Window{}, InvalidArgumentf("daysBack must be positive, got %d", daysBack)
	case daysBack == 0:
		daysBack = DefaultDaysBack
	case daysBack > MaxDaysBack:
		daysBack = MaxDaysBack
	}
	now = now.UTC()
	return Window{Start: now.AddDate(0, 0, -daysBack), End: now}, nil
}
