// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package field

import (
	"context"
	"fmt"
	"sync"

	df "github.com/gogpu/densityfield"
	"github.com/gogpu/densityfield/geometry"
	"github.com/gogpu/densityfield/render"
)

// Engine computes density fields over a render pool. It owns the texture
// cache and the shared uniform bundle; one Engine serves many Compute calls
// and callers may share it across goroutines.
type Engine struct {
	pool render.Pool
	res  *Resources
	uni  *render.Uniforms

	// mu serializes render sections: the engine shares one uniform bundle
	// and one texture cache across Compute calls. Each Compute acquires
	// its own renderable from the pool.
	mu sync.Mutex
}

// NewEngine creates an engine on the given pool.
func NewEngine(pool render.Pool) *Engine {
	return &Engine{
		pool: pool,
		res:  NewResources(pool),
		uni:  render.NewUniforms(),
	}
}

// Stats returns the texture cache counters.
func (e *Engine) Stats() ResourceStats { return e.res.Stats() }

// Close releases the cached render targets. The engine is reusable after
// Close; the next Compute reallocates.
func (e *Engine) Close() { e.res.Close() }

// Compute samples the Gaussian density field of the active points in pos
// over the boundary box. The radius function supplies per-point influence
// radii; nil falls back to the position data's stored radii (or 1).
//
// The field covers box expanded by the largest effective radius plus two
// cells, discretized at params.Resolution. Group ids ride along in the color
// channels and must fit the 24-bit codec domain.
func (e *Engine) Compute(
	ctx context.Context,
	pos *geometry.PositionData,
	radius geometry.RadiusFunc,
	box geometry.Box3,
	params Params,
) (*Field, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if pos == nil || pos.Count() == 0 {
		return nil, df.ErrNoPositions
	}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", df.ErrBadParams, err)
	}
	if !e.pool.SupportsBlendMinMax() {
		return nil, df.ErrBlendMinMax
	}
	if radius == nil {
		radius = pos.RadiusFn(1)
	}

	inst, maxRadius, err := buildInstances(pos, radius, params.RadiusOffset)
	if err != nil {
		return nil, err
	}

	g, err := deriveGrid(box, maxRadius, params)
	if err != nil {
		return nil, err
	}
	layout, err := df.PlanLayout(g.dim[0], g.dim[1], g.dim[2], e.pool.Supports3D())
	if err != nil {
		return nil, err
	}

	df.Logger().Debug("density compute",
		"points", inst.Count,
		"dim", g.dim,
		"texture", fmt.Sprintf("%dx%d", layout.TexDimX, layout.TexDimY),
		"is3D", layout.Is3D)

	e.mu.Lock()
	defer e.mu.Unlock()

	depth := 1
	if layout.Is3D {
		depth = g.dim[2]
	}
	main, err := e.res.Acquire(roleMain, layout.TexDimX, layout.TexDimY, depth)
	if err != nil {
		return nil, err
	}
	minDist, err := e.res.Acquire(roleMinDist, layout.TexDimX, layout.TexDimY, depth)
	if err != nil {
		return nil, err
	}

	r := e.pool.Renderable()
	if err := r.Upload(inst); err != nil {
		return nil, err
	}

	main.Clear(0, 0, 0, 0)
	minDist.Clear(0, 0, 0, 0)

	e.uni.GridDim.Set(g.dim)
	e.uni.GridMin.Set(g.min)
	e.uni.Resolution.Set(params.Resolution)
	e.uni.Alpha.Set(params.Smoothness)
	e.uni.DistNorm.Set(maxRadius * render.InfluenceFactor)

	// Pass order matters: group ownership reads the completed min-distance
	// texture, so a sync point separates the first two batches from the
	// third.
	if err := e.runBatch(ctx, r, render.Pass{Config: render.DensityPass, Target: main}, g, layout); err != nil {
		return nil, err
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	if err := e.runBatch(ctx, r, render.Pass{Config: render.MinDistancePass, Target: minDist}, g, layout); err != nil {
		return nil, err
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	if err := e.runBatch(ctx, r, render.Pass{Config: render.GroupIDPass, Target: main, MinDist: minDist}, g, layout); err != nil {
		return nil, err
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}

	pix, err := main.ReadPixels()
	if err != nil {
		return nil, err
	}
	return extractField(pix, g, layout, params), nil
}

// runBatch replays the pass over every Z-slice, advancing the per-slice
// uniforms through the same tile cursor the extractor walks.
func (e *Engine) runBatch(
	ctx context.Context,
	r render.Renderable,
	pass render.Pass,
	g grid,
	layout df.Layout,
) error {
	for z := 0; z < g.dim[2]; z++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ox, oy := layout.SliceOffset(g.dim[0], g.dim[1], z)
		e.uni.CurrentSlice.Set(z)
		e.uni.TileOffset.Set([2]int{ox, oy})
		if err := r.RunPass(pass, z, e.uni); err != nil {
			return fmt.Errorf("pass %v slice %d: %w", pass.Config.Variant, z, err)
		}
	}
	return nil
}

// buildInstances flattens the active points into the per-instance arrays and
// returns the largest effective radius. Group ids outside the codec domain
// fail loud here, before any GPU work.
func buildInstances(pos *geometry.PositionData, radius geometry.RadiusFunc, radiusOffset float32) (*render.Instances, float32, error) {
	n := pos.Count()
	inst := &render.Instances{
		Centers: make([]float32, 0, n*3),
		Radii:   make([]float32, 0, n),
		Groups:  make([]uint32, 0, n),
		Count:   n,
	}
	var maxRadius float32
	for _, i := range pos.Indices {
		r := radius(i) + radiusOffset
		if r <= 0 {
			return nil, 0, fmt.Errorf("%w: non-positive radius %v at index %d", df.ErrBadParams, r, i)
		}
		if r > maxRadius {
			maxRadius = r
		}
		group := pos.GroupOf(i)
		if group < 0 || uint32(group) > df.CodecMax {
			return nil, 0, fmt.Errorf("%w: group id %d at index %d", df.ErrCodecRange, group, i)
		}
		inst.Centers = append(inst.Centers, pos.X[i], pos.Y[i], pos.Z[i])
		inst.Radii = append(inst.Radii, r)
		inst.Groups = append(inst.Groups, uint32(group))
	}
	return inst, maxRadius, nil
}
