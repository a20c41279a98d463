// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend selects the render pool implementation behind the density
// pipeline. Pools register themselves by name; callers pick one explicitly
// or take the best available via Default.
package backend

import (
	"errors"

	"github.com/gogpu/densityfield/render"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Registered backend names.
const (
	// BackendSoftware is the CPU reference pool. Always available.
	BackendSoftware = "software"

	// BackendWGPU is the WebGPU pool. Registered by callers holding a
	// device, since pool construction needs one.
	BackendWGPU = "wgpu"
)

// PoolFactory creates a render pool instance.
type PoolFactory func() (render.Pool, error)
