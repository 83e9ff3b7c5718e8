package config

import "sync"

// WorldGenSettings holds world generation configuration
type WorldGenSettings struct {
	mu           sync.RWMutex
	seaLevel     int
	caves        bool
	dirtPatches  bool
	noiseBackend string
}

const DefaultSeaLevel = 16

var globalWorldGenSettings = &WorldGenSettings{
	seaLevel:     DefaultSeaLevel,
	caves:        true,
	dirtPatches:  true,
	noiseBackend: "perlin",
}

// GetSeaLevel returns the configured sea level
func GetSeaLevel() int {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.seaLevel
}

// SetSeaLevel sets the sea level
func SetSeaLevel(level int) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	if level < 0 {
		level = 0
	}
	globalWorldGenSettings.seaLevel = level
}

// GetCaves returns whether caves are enabled
func GetCaves() bool {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.caves
}

// SetCaves sets whether caves are enabled
func SetCaves(enabled bool) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.caves = enabled
}

// GetDirtPatches returns whether dirt patches are scattered through stone
func GetDirtPatches() bool {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.dirtPatches
}

// SetDirtPatches sets whether dirt patches are scattered through stone
func SetDirtPatches(enabled bool) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.dirtPatches = enabled
}

// GetNoiseBackend returns the configured noise backend name
func GetNoiseBackend() string {
	globalWorldGenSettings.mu.RLock()
	defer globalWorldGenSettings.mu.RUnlock()
	return globalWorldGenSettings.noiseBackend
}

// SetNoiseBackend sets the noise backend name ("perlin" or "simplex")
func SetNoiseBackend(name string) {
	globalWorldGenSettings.mu.Lock()
	defer globalWorldGenSettings.mu.Unlock()
	globalWorldGenSettings.noiseBackend = name
}
