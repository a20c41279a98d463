// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geometry

import (
	"math"

	"github.com/gogpu/densityfield"
)

// Box3 is an axis-aligned bounding box. It is a mutable value type: the
// accumulation methods write in place and several operations accept a
// caller-supplied output box so hot loops can avoid allocation.
type Box3 struct {
	Min, Max densityfield.Vec3
}

// EmptyBox3 returns an inverted box that absorbs the first added point.
func EmptyBox3() Box3 {
	inf := float32(math.Inf(1))
	return Box3{
		Min: densityfield.V3(inf, inf, inf),
		Max: densityfield.V3(-inf, -inf, -inf),
	}
}

// SetEmpty resets the box to the inverted empty state.
func (b *Box3) SetEmpty() {
	*b = EmptyBox3()
}

// IsEmpty reports whether the box has absorbed no points yet.
func (b *Box3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// AddPoint grows the box to include p.
func (b *Box3) AddPoint(p densityfield.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// AddSphere grows the box to include the sphere at center with radius r.
func (b *Box3) AddSphere(center densityfield.Vec3, r float32) {
	b.Min = b.Min.Min(center.Sub(densityfield.V3(r, r, r)))
	b.Max = b.Max.Max(center.Add(densityfield.V3(r, r, r)))
}

// ExpandInto writes a copy of b grown by pad on every side into out.
func (b Box3) ExpandInto(out *Box3, pad float32) {
	out.Min = b.Min.Sub(densityfield.V3(pad, pad, pad))
	out.Max = b.Max.Add(densityfield.V3(pad, pad, pad))
}

// Size returns the extent of the box along each axis.
func (b Box3) Size() densityfield.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Box3) Center() densityfield.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether p lies inside the box, boundary included.
func (b Box3) Contains(p densityfield.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// BoxFromSphere writes the tight box around s into out.
func BoxFromSphere(out *Box3, s Sphere3) {
	r := s.Radius
	out.Min = s.Center.Sub(densityfield.V3(r, r, r))
	out.Max = s.Center.Add(densityfield.V3(r, r, r))
}
