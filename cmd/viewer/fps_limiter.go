package main

import (
	"time"

	"voxelterrain/internal/config"
)

// idleFPS caps the loop while no build is running and nothing moves.
const idleFPS = 30

// frameLimiter paces the render loop to the configured frame cap.
type frameLimiter struct {
	next time.Time
}

// wait sleeps until the next frame is due. Sleeping stops 200µs short and
// spins the rest, which holds high caps much more precisely.
func (f *frameLimiter) wait(idle bool) {
	limit := config.GetFPSLimit()
	if idle && (limit <= 0 || limit > idleFPS) {
		limit = idleFPS
	}
	if limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(limit)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
	}

	// resync after a hitch instead of racing to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
