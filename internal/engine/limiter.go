package engine

import (
	"time"

	"mini-engine/internal/config"
)

// pausedFPS caps the loop while it idles behind the pause gate.
const pausedFPS = 30

// spinWindow is how long before the deadline the limiter stops sleeping
// and busy-waits.
const spinWindow = 200 * time.Microsecond

// FPSLimiter paces the frame loop to the runtime FPS limit.
type FPSLimiter struct {
	next time.Time
	// limit overrides config.GetFPSLimit when set.
	limit func() int
}

// NewFPSLimiter returns a limiter reading the runtime FPS limit.
func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{limit: config.GetFPSLimit}
}

// Wait blocks until the next frame is due. A limit of 0 or less disables
// pacing unless the loop is paused.
func (f *FPSLimiter) Wait(paused bool) {
	limit := f.limit()
	if paused {
		limit = pausedFPS
	}
	if limit <= 0 {
		f.next = time.Time{}
		return
	}

	period := time.Second / time.Duration(limit)
	if f.next.IsZero() {
		f.next = time.Now().Add(period)
	} else {
		f.next = f.next.Add(period)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > spinWindow {
			time.Sleep(remaining - spinWindow)
		}
	}

	// resync after a hitch so late frames do not pile up
	if late := -time.Until(f.next); late > period {
		f.next = time.Now().Add(period)
	}
}
