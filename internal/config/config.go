package config

import "sync"

// RenderSettings holds runtime render configuration
type RenderSettings struct {
	mu         sync.RWMutex
	fpsLimit   int     // frames per second, 0 = unlimited
	cullMargin float32 // world units added around the ortho camera bounds
	wireframe  bool
}

var globalRenderSettings = &RenderSettings{
	fpsLimit:   120,
	cullMargin: 0,
}

// GetFPSLimit returns the current frame cap
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap. Values below zero disable the cap.
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if limit < 0 {
		limit = 0
	}
	// Clamp to reasonable values
	if limit > 1000 {
		limit = 1000
	}

	globalRenderSettings.fpsLimit = limit
}

// GetCullMargin returns the margin used by the coarse visibility test
func GetCullMargin() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.cullMargin
}

// SetCullMargin sets the margin used by the coarse visibility test
func SetCullMargin(margin float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if margin < 0 {
		margin = 0
	}
	globalRenderSettings.cullMargin = margin
}

// GetWireframeMode returns whether meshes are drawn as lines
func GetWireframeMode() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.wireframe
}

// SetWireframeMode enables or disables line rendering
func SetWireframeMode(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.wireframe = enabled
}

// ToggleWireframeMode flips line rendering
func ToggleWireframeMode() {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.wireframe = !globalRenderSettings.wireframe
}
