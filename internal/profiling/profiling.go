package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Process-wide stage timer. Totals accumulate until Reset, which the world
// calls at the start of every build.

// Stat is the accumulated time and call count for one tracked name.
type Stat struct {
	Total time.Duration
	Calls int
}

// Mean returns the average duration per call
func (s Stat) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

var (
	mu     sync.Mutex
	totals = make(map[string]Stat)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("pipeline.Mesh")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		s := totals[name]
		s.Total += d
		s.Calls++
		totals[name] = s
		mu.Unlock()
	}
}

// Reset clears all totals.
func Reset() {
	mu.Lock()
	clear(totals)
	mu.Unlock()
}

// Snapshot returns a copy of current totals.
func Snapshot() map[string]Stat {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]Stat, len(totals))
	for k, v := range totals {
		out[k] = v
	}
	return out
}

// TopN formats the n names with the largest totals.
// Example: "world.Synthesize:42.1ms/8, meshing.Build:12ms/8"
func TopN(n int) string {
	ss := Snapshot()
	names := make([]string, 0, len(ss))
	for k := range ss {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if ss[names[i]].Total == ss[names[j]].Total {
			return names[i] < names[j]
		}
		return ss[names[i]].Total > ss[names[j]].Total
	})
	n = min(n, len(names))
	parts := make([]string, 0, n)
	for _, name := range names[:n] {
		s := ss[name]
		parts = append(parts, fmt.Sprintf("%s:%s/%d", name, formatMs(s.Total), s.Calls))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0"
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("%.1f", ms)
	return strings.TrimSuffix(s, ".0") + "ms"
}
