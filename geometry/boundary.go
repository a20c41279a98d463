// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geometry

import (
	"math"

	"github.com/gogpu/densityfield"
)

// CoarseFitThreshold is the point count above which FitBoundary switches from
// the 98-extrema direction set to the cheaper 14-extrema set.
const CoarseFitThreshold = 10000

// boundaryEpsilon is the relative tolerance used when comparing a candidate
// radius against an existing one.
const boundaryEpsilon = 1e-3

// Boundary bundles the fitted bounding sphere and box of a point set.
type Boundary struct {
	Sphere Sphere3
	Box    Box3
}

// Extremal direction sets. Directions come in antipodal pairs, so 7
// directions track 14 extremal points and 49 track 98. The 49-direction set
// adds edge diagonals and the {0,1,2}/{1,1,2}/{1,2,2} component patterns to
// the axes and body diagonals of the coarse set.
var (
	dirsCoarse = normalizeDirs([][3]float32{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
	})

	dirsFine = normalizeDirs([][3]float32{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
		{1, 1, 0}, {1, -1, 0}, {1, 0, 1}, {1, 0, -1}, {0, 1, 1}, {0, 1, -1},
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {2, 0, 1}, {1, 2, 0}, {2, 1, 0},
		{0, 1, -2}, {0, 2, -1}, {1, 0, -2}, {2, 0, -1}, {1, -2, 0}, {2, -1, 0},
		{1, 1, 2}, {2, 1, 1}, {1, 2, 1}, {1, -1, 2}, {1, 1, -2}, {1, -1, -2},
		{2, -1, 1}, {2, 1, -1}, {2, -1, -1}, {1, -2, 1}, {1, 2, -1}, {1, -2, -1},
		{2, 2, 1}, {1, 2, 2}, {2, 1, 2}, {2, -2, 1}, {2, 2, -1}, {2, -2, -1},
		{1, -2, 2}, {1, 2, -2}, {1, -2, -2}, {2, -1, 2}, {2, 1, -2}, {2, -1, -2},
	})
)

func normalizeDirs(raw [][3]float32) []densityfield.Vec3 {
	dirs := make([]densityfield.Vec3, len(raw))
	for i, d := range raw {
		dirs[i] = densityfield.V3(d[0], d[1], d[2]).Normalize()
	}
	return dirs
}

// extremaAccum tracks, per candidate direction, the extreme projections of
// the included spheres and the points achieving them.
type extremaAccum struct {
	dirs []densityfield.Vec3

	minProj, maxProj []float32
	minPt, maxPt     []densityfield.Vec3
	minR, maxR       []float32

	box Box3
}

func newExtremaAccum(dirs []densityfield.Vec3) *extremaAccum {
	n := len(dirs)
	a := &extremaAccum{
		dirs:    dirs,
		minProj: make([]float32, n),
		maxProj: make([]float32, n),
		minPt:   make([]densityfield.Vec3, n),
		maxPt:   make([]densityfield.Vec3, n),
		minR:    make([]float32, n),
		maxR:    make([]float32, n),
		box:     EmptyBox3(),
	}
	for i := range a.minProj {
		a.minProj[i] = float32(math.Inf(1))
		a.maxProj[i] = float32(math.Inf(-1))
	}
	return a
}

// include feeds one weighted point into the accumulator.
func (a *extremaAccum) include(p densityfield.Vec3, r float32) {
	for i, d := range a.dirs {
		proj := p.Dot(d)
		if proj-r < a.minProj[i] {
			a.minProj[i] = proj - r
			a.minPt[i] = p
			a.minR[i] = r
		}
		if proj+r > a.maxProj[i] {
			a.maxProj[i] = proj + r
			a.maxPt[i] = p
			a.maxR[i] = r
		}
	}
	a.box.AddSphere(p, r)
}

// finish selects the widest direction pair as the sphere axis and returns
// the candidate center together with the deduplicated achieving points and
// their radii.
func (a *extremaAccum) finish() (center densityfield.Vec3, extrema []densityfield.Vec3, extremaR []float32) {
	best := 0
	bestSpan := float32(math.Inf(-1))
	for i := range a.dirs {
		span := a.maxProj[i] - a.minProj[i]
		if span > bestSpan {
			bestSpan = span
			best = i
		}
	}
	center = a.minPt[best].Add(a.maxPt[best]).Mul(0.5)

	for i := range a.dirs {
		extrema, extremaR = appendUniquePoint(extrema, extremaR, a.minPt[i], a.minR[i])
		extrema, extremaR = appendUniquePoint(extrema, extremaR, a.maxPt[i], a.maxR[i])
	}
	return center, extrema, extremaR
}

func appendUniquePoint(pts []densityfield.Vec3, radii []float32, p densityfield.Vec3, r float32) ([]densityfield.Vec3, []float32) {
	for _, q := range pts {
		if q == p {
			return pts, radii
		}
	}
	return append(pts, p), append(radii, r)
}

// FitBoundary computes a bounding sphere and box enclosing every point of
// pos inflated by its radius.
//
// The fit runs in two passes. The include pass feeds all points into an
// extremal-direction accumulator (14 directions above CoarseFitThreshold
// points, 98 below) which yields a candidate center, the box, and the
// achieving extremal points. The radius-refine pass then re-walks all points
// and takes the true maximum of distance-to-center plus radius as the final
// radius, so no point ever ends up outside the sphere regardless of how
// coarse the direction set was. Extremal points still on the final surface
// are retained on the sphere for incremental adjustment.
func FitBoundary(pos *PositionData, radius RadiusFunc) Boundary {
	if pos.Count() == 0 {
		return Boundary{Box: EmptyBox3()}
	}
	if radius == nil {
		radius = ConstantRadius(0)
	}

	dirs := dirsFine
	if pos.Count() > CoarseFitThreshold {
		dirs = dirsCoarse
	}

	// Include pass.
	accum := newExtremaAccum(dirs)
	for _, i := range pos.Indices {
		accum.include(pos.Position(i), radius(i))
	}
	center, extrema, extremaR := accum.finish()

	// Radius-refine pass: the directional estimate is only a lower bound.
	var maxDist float32
	for _, i := range pos.Indices {
		if d := center.Distance(pos.Position(i)) + radius(i); d > maxDist {
			maxDist = d
		}
	}

	sphere := Sphere3{Center: center, Radius: maxDist}
	surfaceTol := maxDist * boundaryEpsilon
	for k, e := range extrema {
		if center.Distance(e)+extremaR[k] >= maxDist-surfaceTol {
			sphere.Extrema = append(sphere.Extrema, e)
		}
	}

	return Boundary{Sphere: sphere, Box: accum.box}
}

// TryAdjustBoundary re-validates a previously fitted boundary against a
// possibly perturbed point set without the full directional refit.
//
// It runs a single O(n) scan. Any point escaping the sphere by more than 5%
// of its radius aborts immediately with ok=false, signalling that the caller
// must refit from scratch; this is an expected, non-exceptional outcome. If
// the scan's maximum distance stays within a tight epsilon of the old radius
// the boundary is returned unchanged. Within the 5% band, the adjustment is
// accepted only when the new farthest point lies near one of the sphere's
// tracked extrema; otherwise an unrelated point has become the new extreme
// and a full refit is the safer answer. On acceptance the sphere expands by
// the radius delta and the box is recomputed from the expanded sphere.
func TryAdjustBoundary(b Boundary, pos *PositionData, radius RadiusFunc) (Boundary, bool) {
	if pos.Count() == 0 || b.Sphere.Radius <= 0 {
		return Boundary{}, false
	}
	if radius == nil {
		radius = ConstantRadius(0)
	}

	threshold := b.Sphere.Radius / 100 * 5
	limit := b.Sphere.Radius + threshold

	var (
		maxDist float32
		maxPt   densityfield.Vec3
	)
	for _, i := range pos.Indices {
		p := pos.Position(i)
		d := b.Sphere.Center.Distance(p) + radius(i)
		if d > limit {
			return Boundary{}, false
		}
		if d > maxDist {
			maxDist = d
			maxPt = p
		}
	}

	eps := b.Sphere.Radius * boundaryEpsilon
	if maxDist <= b.Sphere.Radius+eps {
		// Still valid as-is.
		return b, true
	}

	// The sphere must grow. Only accept when the new extreme point belongs
	// to a feature the fit already anchored on; drifting the center's
	// support to an unrelated point silently is worse than refitting.
	if !nearAnyExtrema(maxPt, b.Sphere.Extrema, 2*threshold) {
		return Boundary{}, false
	}

	adjusted := Boundary{Sphere: b.Sphere}
	adjusted.Sphere.Extrema = append([]densityfield.Vec3(nil), b.Sphere.Extrema...)
	adjusted.Sphere.ExpandBy(maxDist - b.Sphere.Radius)
	BoxFromSphere(&adjusted.Box, adjusted.Sphere)
	return adjusted, true
}

func nearAnyExtrema(p densityfield.Vec3, extrema []densityfield.Vec3, tol float32) bool {
	tolSq := tol * tol
	for _, e := range extrema {
		if p.DistanceSq(e) <= tolSq {
			return true
		}
	}
	return false
}
