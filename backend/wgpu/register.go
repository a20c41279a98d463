// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"github.com/gogpu/densityfield/backend"
	"github.com/gogpu/densityfield/render"
)

func init() {
	backend.Register(backend.BackendWGPU, func() (render.Pool, error) {
		dev, err := OpenDevice()
		if err != nil {
			return nil, err
		}
		return NewPoolFromDevice(dev)
	})
}
