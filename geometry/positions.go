// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geometry

import (
	"fmt"

	"github.com/gogpu/densityfield"
)

// RadiusFunc returns the influence radius of the point at index i.
// The density engine and the boundary fitter both consume radii through this
// function so callers can derive radii from element type, b-factor, or a
// constant without materializing a slice.
type RadiusFunc func(i int32) float32

// ConstantRadius returns a RadiusFunc that yields r for every index.
func ConstantRadius(r float32) RadiusFunc {
	return func(int32) float32 { return r }
}

// PositionData is an ordered subset of points stored in parallel arrays.
//
// Indices defines both the iteration order and the active subset: only
// indices listed there participate in fitting and density accumulation.
// All parallel arrays must be at least maxIndex+1 long. Radius and Group
// are optional; absent slices fall back to caller-supplied defaults.
type PositionData struct {
	Indices []int32

	X, Y, Z []float32

	// Radius holds per-point influence radii. Optional.
	Radius []float32

	// Group holds per-point group identifiers packed into the group-id
	// pass. Optional; absent means every point owns group id equal to its
	// index.
	Group []int32
}

// NewPositionData wraps parallel coordinate arrays with all indices active,
// in array order.
func NewPositionData(x, y, z []float32) *PositionData {
	n := len(x)
	indices := make([]int32, n)
	for i := range indices {
		indices[i] = int32(i)
	}
	return &PositionData{Indices: indices, X: x, Y: y, Z: z}
}

// Count returns the number of active points.
func (p *PositionData) Count() int {
	return len(p.Indices)
}

// Position returns the coordinates of the point at index i.
func (p *PositionData) Position(i int32) densityfield.Vec3 {
	return densityfield.V3(p.X[i], p.Y[i], p.Z[i])
}

// GroupOf returns the group id of the point at index i.
// Without a Group array the point's own index serves as its id.
func (p *PositionData) GroupOf(i int32) int32 {
	if p.Group == nil {
		return i
	}
	return p.Group[i]
}

// RadiusFn returns a RadiusFunc backed by the Radius array, or a constant
// fallback when no radii are stored.
func (p *PositionData) RadiusFn(fallback float32) RadiusFunc {
	if p.Radius == nil {
		return ConstantRadius(fallback)
	}
	return func(i int32) float32 { return p.Radius[i] }
}

// Validate checks the parallel-array invariant: every array must cover the
// maximum active index.
func (p *PositionData) Validate() error {
	var maxIdx int32 = -1
	for _, i := range p.Indices {
		if i < 0 {
			return fmt.Errorf("geometry: negative index %d", i)
		}
		if i > maxIdx {
			maxIdx = i
		}
	}
	need := int(maxIdx) + 1
	if len(p.X) < need || len(p.Y) < need || len(p.Z) < need {
		return fmt.Errorf("geometry: coordinate arrays shorter than max index %d", maxIdx)
	}
	if p.Radius != nil && len(p.Radius) < need {
		return fmt.Errorf("geometry: radius array shorter than max index %d", maxIdx)
	}
	if p.Group != nil && len(p.Group) < need {
		return fmt.Errorf("geometry: group array shorter than max index %d", maxIdx)
	}
	return nil
}
