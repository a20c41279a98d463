// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package field computes Gaussian density fields over point sets by driving
// the render capabilities: a three-pass accumulation (density, minimum
// surface distance, group ownership) into RGBA textures followed by a single
// readback and decode.
package field

import (
	df "github.com/gogpu/densityfield"
)

// Transform maps grid indices back to world space:
// world = Translation + index * Scale (per axis, at cell corners).
type Transform struct {
	Translation df.Vec3
	Scale       df.Vec3
}

// Field is an extracted density field. Density and GroupID are indexed
// [z][y][x] flattened: i = (z*Dim[1] + y)*Dim[0] + x.
type Field struct {
	// Dim is the grid cell count per axis.
	Dim [3]int

	// Density holds the accumulated Gaussian density per cell in [0, 1].
	Density []float32

	// GroupID holds the id of the nearest point per cell. Cells outside
	// every point's footprint hold 0; use Density to tell an untouched
	// cell from one owned by group 0.
	GroupID []uint32

	// Transform places the grid in world space.
	Transform Transform
}

// Index returns the flat index of cell (x, y, z).
func (f *Field) Index(x, y, z int) int {
	return (z*f.Dim[1]+y)*f.Dim[0] + x
}

// At returns the density of cell (x, y, z).
func (f *Field) At(x, y, z int) float32 {
	return f.Density[f.Index(x, y, z)]
}

// GroupAt returns the group id of cell (x, y, z).
func (f *Field) GroupAt(x, y, z int) uint32 {
	return f.GroupID[f.Index(x, y, z)]
}

// CellCenter returns the world-space center of cell (x, y, z).
func (f *Field) CellCenter(x, y, z int) df.Vec3 {
	return df.Vec3{
		X: f.Transform.Translation.X + (float32(x)+0.5)*f.Transform.Scale.X,
		Y: f.Transform.Translation.Y + (float32(y)+0.5)*f.Transform.Scale.Y,
		Z: f.Transform.Translation.Z + (float32(z)+0.5)*f.Transform.Scale.Z,
	}
}
