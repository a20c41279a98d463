// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geometry

import "github.com/gogpu/densityfield"

// Sphere3 is a bounding sphere. Extrema optionally retains input points that
// lie on the fitted surface; the incremental boundary adjustment uses them to
// decide whether a new farthest point belongs to the same geometric feature
// the sphere was fitted to.
type Sphere3 struct {
	Center  densityfield.Vec3
	Radius  float32
	Extrema []densityfield.Vec3
}

// ContainsPoint reports whether the sphere of radius r at p lies within s,
// allowing tolerance eps on the comparison.
func (s Sphere3) ContainsPoint(p densityfield.Vec3, r, eps float32) bool {
	return s.Center.Distance(p)+r <= s.Radius+eps
}

// ExpandBy grows the sphere radius by delta in place, pushing each retained
// extremum outward along its direction from the center so the extrema stay on
// the surface.
func (s *Sphere3) ExpandBy(delta float32) {
	if delta <= 0 {
		return
	}
	for i, e := range s.Extrema {
		dir := e.Sub(s.Center).Normalize()
		if dir.IsZero() {
			continue
		}
		s.Extrema[i] = e.Add(dir.Mul(delta))
	}
	s.Radius += delta
}
