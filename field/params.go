// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package field

import (
	"fmt"
	"math"

	df "github.com/gogpu/densityfield"
	"github.com/gogpu/densityfield/geometry"
)

// Default sampling parameters.
const (
	DefaultResolution float32 = 1
	DefaultSmoothness float32 = 1.5
)

// Params controls the sampling of the density field.
type Params struct {
	// Resolution is the world-space edge length of one grid cell.
	Resolution float32

	// Smoothness is the Gaussian falloff exponent. Larger values
	// concentrate density near point centers.
	Smoothness float32

	// RadiusOffset is added to every point radius before accumulation.
	RadiusOffset float32
}

// DefaultParams returns the standard sampling parameters.
func DefaultParams() Params {
	return Params{
		Resolution:   DefaultResolution,
		Smoothness:   DefaultSmoothness,
		RadiusOffset: 0,
	}
}

func (p Params) validate() error {
	if p.Resolution <= 0 {
		return fmt.Errorf("%w: resolution %v", df.ErrBadParams, p.Resolution)
	}
	if p.Smoothness <= 0 {
		return fmt.Errorf("%w: smoothness %v", df.ErrBadParams, p.Smoothness)
	}
	return nil
}

// grid is the derived sampling domain: the boundary box padded so every
// point's full footprint lies inside, discretized at the resolution.
type grid struct {
	min       df.Vec3
	dim       [3]int
	maxRadius float32
}

// deriveGrid expands the data box by the largest effective radius plus two
// cells of slack and computes the cell counts. Every axis gets at least one
// cell so degenerate (flat) data still produces a field.
func deriveGrid(box geometry.Box3, maxRadius float32, p Params) (grid, error) {
	if box.IsEmpty() {
		return grid{}, df.ErrNoPositions
	}
	pad := maxRadius + 2*p.Resolution

	var expanded geometry.Box3
	box.ExpandInto(&expanded, pad)

	size := expanded.Size()
	g := grid{min: expanded.Min, maxRadius: maxRadius}
	g.dim[0] = cellCount(size.X, p.Resolution)
	g.dim[1] = cellCount(size.Y, p.Resolution)
	g.dim[2] = cellCount(size.Z, p.Resolution)
	return g, nil
}

func cellCount(span, res float32) int {
	n := int(math.Ceil(float64(span / res)))
	if n < 1 {
		n = 1
	}
	return n
}
