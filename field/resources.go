// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package field

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/densityfield/render"
	"github.com/gogpu/gputypes"
)

// Texture roles within the pipeline.
const (
	roleMain    = "density-main"
	roleMinDist = "density-mindist"
)

// Resources caches the pipeline's render targets across Compute calls.
// Texture allocation dominates setup cost on GPU pools, so targets are kept
// and resized in place when the grid changes instead of reallocated.
type Resources struct {
	mu       sync.Mutex
	pool     render.Pool
	textures map[string]render.Texture

	hits    atomic.Int64
	resizes atomic.Int64
	allocs  atomic.Int64
}

// ResourceStats is a snapshot of cache behavior.
type ResourceStats struct {
	Hits    int64
	Resizes int64
	Allocs  int64
}

// NewResources creates a texture cache backed by the given pool.
func NewResources(pool render.Pool) *Resources {
	return &Resources{
		pool:     pool,
		textures: make(map[string]render.Texture),
	}
}

// Acquire returns a texture of exactly the requested size for the given
// role, reusing and resizing the cached one when possible.
func (r *Resources) Acquire(role string, width, height, depth int) (render.Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tex, ok := r.textures[role]; ok {
		if tex.Width() == width && tex.Height() == height && tex.Depth() == depth {
			r.hits.Add(1)
			return tex, nil
		}
		if err := tex.Resize(width, height, depth); err != nil {
			return nil, err
		}
		r.resizes.Add(1)
		return tex, nil
	}

	tex, err := r.pool.AcquireTexture(render.TextureDescriptor{
		Label:  role,
		Width:  width,
		Height: height,
		Depth:  depth,
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		return nil, err
	}
	r.allocs.Add(1)
	r.textures[role] = tex
	return tex, nil
}

// Stats returns a snapshot of the cache counters.
func (r *Resources) Stats() ResourceStats {
	return ResourceStats{
		Hits:    r.hits.Load(),
		Resizes: r.resizes.Load(),
		Allocs:  r.allocs.Load(),
	}
}

// Close destroys all cached textures. The Resources is reusable afterwards;
// the next Acquire allocates fresh.
func (r *Resources) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for role, tex := range r.textures {
		tex.Destroy()
		delete(r.textures, role)
	}
}
