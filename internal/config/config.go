package config

import (
	"runtime"
	"sync"
)

// PoolSettings holds worker pool configuration
type PoolSettings struct {
	mu      sync.RWMutex
	workers int
}

var globalPoolSettings = &PoolSettings{
	workers: defaultWorkers(),
}

func defaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// GetWorkers returns the number of background workers used for CPU-bound stages
func GetWorkers() int {
	globalPoolSettings.mu.RLock()
	defer globalPoolSettings.mu.RUnlock()
	return globalPoolSettings.workers
}

// SetWorkers sets the worker count. Non-positive values restore the default.
func SetWorkers(n int) {
	globalPoolSettings.mu.Lock()
	defer globalPoolSettings.mu.Unlock()

	if n <= 0 {
		n = defaultWorkers()
	}
	// Clamp to reasonable values
	if n > 256 {
		n = 256
	}

	globalPoolSettings.workers = n
}
