// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geometry

// BoundaryCache memoizes an expensive boundary fit behind an explicit
// generation counter. The caller bumps its own generation whenever the
// underlying positions change; Get recomputes only on a generation mismatch,
// first attempting the cheap incremental adjustment before falling back to a
// full refit.
//
// The cost of the recompute stays visible at call sites: Get is a method,
// not a transparent property.
type BoundaryCache struct {
	generation uint64
	cached     Boundary
	valid      bool
}

// Get returns the boundary for the given generation of pos, recomputing it
// if the generation moved since the last call.
func (c *BoundaryCache) Get(generation uint64, pos *PositionData, radius RadiusFunc) Boundary {
	if c.valid && c.generation == generation {
		return c.cached
	}

	if c.valid {
		if adjusted, ok := TryAdjustBoundary(c.cached, pos, radius); ok {
			c.cached = adjusted
			c.generation = generation
			return adjusted
		}
	}

	c.cached = FitBoundary(pos, radius)
	c.generation = generation
	c.valid = true
	return c.cached
}

// Invalidate drops the cached boundary; the next Get performs a full refit.
func (c *BoundaryCache) Invalidate() {
	c.valid = false
}
