// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import df "github.com/gogpu/densityfield"

// Uniforms is the structured bundle of named shader bindings shared by all
// passes. Each field is a versioned cell so implementations can diff partial
// updates cheaply: per-slice renders touch only CurrentSlice and TileOffset,
// and a backend that remembers the versions it last flushed uploads nothing
// else.
type Uniforms struct {
	// CurrentSlice selects the world-space Z plane being rendered.
	CurrentSlice *df.Cell[int]

	// TileOffset is the pixel origin of the current slice's tile inside a
	// 2D-packed target. Always (0,0) for 3D targets.
	TileOffset *df.Cell[[2]int]

	// GridDim is the sample grid dimension (dx, dy, dz).
	GridDim *df.Cell[[3]int]

	// GridMin is the world-space corner of the expanded box.
	GridMin *df.Cell[df.Vec3]

	// Resolution is the world-space size of one grid cell.
	Resolution *df.Cell[float32]

	// Alpha is the Gaussian falloff exponent (smoothness).
	Alpha *df.Cell[float32]

	// DistNorm normalizes surface distances for the min-distance and
	// group-id variants; both must use the same normalizer or ownership
	// comparisons misfire.
	DistNorm *df.Cell[float32]

	// GridTexScale is carried for shader compatibility and is always
	// (1, 1) with the current layout math.
	GridTexScale *df.Cell[[2]float32]
}

// NewUniforms creates a uniform bundle with zeroed values.
func NewUniforms() *Uniforms {
	return &Uniforms{
		CurrentSlice: df.NewCell(0),
		TileOffset:   df.NewCell([2]int{}),
		GridDim:      df.NewCell([3]int{}),
		GridMin:      df.NewCell(df.Vec3{}),
		Resolution:   df.NewCell(float32(1)),
		Alpha:        df.NewCell(float32(1)),
		DistNorm:     df.NewCell(float32(1)),
		GridTexScale: df.NewCell([2]float32{1, 1}),
	}
}
