package config

import "sync"

// RenderSettings holds viewer configuration
type RenderSettings struct {
	mu       sync.RWMutex
	fpsLimit int
	fov      float32
}

var globalRenderSettings = &RenderSettings{
	fpsLimit: 120,
	fov:      60,
}

// GetFPSLimit returns the frame cap; 0 means uncapped
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap. Negative values mean uncapped.
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	if limit > 1000 {
		limit = 1000
	}

	globalRenderSettings.fpsLimit = limit
}

// GetFOV returns the vertical field of view in degrees
func GetFOV() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fov
}

// SetFOV sets the vertical field of view, clamped to 30..110 degrees
func SetFOV(fov float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.fov = min(max(fov, 30), 110)
}
