// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"math"

	df "github.com/gogpu/densityfield"
	"github.com/gogpu/gputypes"
)

// InfluenceFactor is the extent of a point's rendered footprint in units of
// its radius. Matches the instanced quad size of the GPU path: contributions
// beyond 3 radii are below the 8-bit quantization floor.
const InfluenceFactor = 3.0

// groupTolerance absorbs 8-bit quantization when comparing a fragment's own
// inverted distance against the min-distance texture during ownership tests.
const groupTolerance = 2

// SoftPool is the CPU implementation of the render capabilities. It executes
// the exact blend semantics of the three density passes on byte textures and
// serves as the reference implementation for GPU backends, mirroring the
// shader math operation for operation.
//
// SoftPool always reports MIN/MAX blend support; 3D texture support is
// configurable so the 2D tile packing path can be exercised.
type SoftPool struct {
	native3D    bool
	blendMinMax bool
}

// SoftPoolOption configures a SoftPool.
type SoftPoolOption func(*SoftPool)

// WithNative3D makes the pool report native 3D texture support, so the
// pipeline skips 2D tile packing.
func WithNative3D() SoftPoolOption {
	return func(p *SoftPool) { p.native3D = true }
}

// WithoutBlendMinMax makes the pool report the MIN/MAX blend equation as
// unavailable. Only useful for exercising the capability-missing error path.
func WithoutBlendMinMax() SoftPoolOption {
	return func(p *SoftPool) { p.blendMinMax = false }
}

// NewSoftPool creates a software pool. By default it packs slices into 2D
// tiles and supports MIN/MAX blending.
func NewSoftPool(opts ...SoftPoolOption) *SoftPool {
	p := &SoftPool{blendMinMax: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AcquireTexture allocates a CPU-backed RGBA texture.
func (p *SoftPool) AcquireTexture(desc TextureDescriptor) (Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 || desc.Depth <= 0 {
		return nil, fmt.Errorf("render: invalid texture dimensions %dx%dx%d",
			desc.Width, desc.Height, desc.Depth)
	}
	t := &softTexture{format: desc.Format}
	if t.format == 0 {
		t.format = gputypes.TextureFormatRGBA8Unorm
	}
	if err := t.Resize(desc.Width, desc.Height, desc.Depth); err != nil {
		return nil, err
	}
	return t, nil
}

// Renderable returns a new software instanced point renderable. Each
// renderable carries its own instance set, so independent pipeline
// invocations over one pool do not interfere.
func (p *SoftPool) Renderable() Renderable { return &softRenderable{} }

// Supports3D reports whether the pool was configured with native 3D targets.
func (p *SoftPool) Supports3D() bool { return p.native3D }

// SupportsBlendMinMax reports MIN/MAX blend equation availability.
func (p *SoftPool) SupportsBlendMinMax() bool { return p.blendMinMax }

// Ensure SoftPool implements Pool.
var _ Pool = (*SoftPool)(nil)

// softTexture is a CPU-backed RGBA8 texture. Pixel (x, y, z) lives at
// ((z*height+y)*width+x)*4.
type softTexture struct {
	width, height, depth int
	format               gputypes.TextureFormat
	pix                  []byte
}

func (t *softTexture) Width() int                     { return t.width }
func (t *softTexture) Height() int                    { return t.height }
func (t *softTexture) Depth() int                     { return t.depth }
func (t *softTexture) Format() gputypes.TextureFormat { return t.format }

func (t *softTexture) Resize(width, height, depth int) error {
	if width <= 0 || height <= 0 || depth <= 0 {
		return fmt.Errorf("render: invalid resize to %dx%dx%d", width, height, depth)
	}
	t.width, t.height, t.depth = width, height, depth
	t.pix = make([]byte, width*height*depth*4)
	return nil
}

func (t *softTexture) Clear(r, g, b, a uint8) {
	for i := 0; i < len(t.pix); i += 4 {
		t.pix[i] = r
		t.pix[i+1] = g
		t.pix[i+2] = b
		t.pix[i+3] = a
	}
}

func (t *softTexture) ReadPixels() ([]byte, error) {
	out := make([]byte, len(t.pix))
	copy(out, t.pix)
	return out, nil
}

func (t *softTexture) Destroy() { t.pix = nil }

func (t *softTexture) pixelOffset(x, y, z int) int {
	return ((z*t.height+y)*t.width + x) * 4
}

// softRenderable rasterizes the instanced point spheres on the CPU with the
// blend semantics given by each pass configuration. It is the reference for
// the WGSL shader in backend/wgpu: both must produce identical fields up to
// quantization.
type softRenderable struct {
	inst Instances
}

func (r *softRenderable) Upload(inst *Instances) error {
	if inst == nil {
		r.inst = Instances{}
		return nil
	}
	if len(inst.Centers) < inst.Count*3 || len(inst.Radii) < inst.Count {
		return fmt.Errorf("render: instance arrays shorter than count %d", inst.Count)
	}
	if inst.Groups != nil && len(inst.Groups) < inst.Count {
		return fmt.Errorf("render: group array shorter than count %d", inst.Count)
	}
	r.inst = *inst
	return nil
}

// Finish is a no-op: the software renderable executes synchronously.
func (r *softRenderable) Finish() error { return nil }

func (r *softRenderable) RunPass(pass Pass, z int, u *Uniforms) error {
	target, ok := pass.Target.(*softTexture)
	if !ok {
		return fmt.Errorf("render: pass target is not a software texture")
	}
	var minDist *softTexture
	if pass.MinDist != nil {
		minDist, ok = pass.MinDist.(*softTexture)
		if !ok {
			return fmt.Errorf("render: min-distance texture is not a software texture")
		}
	}
	if pass.Config.Variant == PassGroupID && minDist == nil {
		return fmt.Errorf("render: group-id pass requires a populated min-distance texture")
	}

	dim := u.GridDim.Get()
	dx, dy := dim[0], dim[1]
	gridMin := u.GridMin.Get()
	res := u.Resolution.Get()
	alpha := u.Alpha.Get()
	distNorm := u.DistNorm.Get()
	tile := u.TileOffset.Get()

	// For 3D targets the slice is a texture layer at origin; for 2D-packed
	// targets the tile offset positions the viewport inside the image.
	layer := 0
	ox, oy := tile[0], tile[1]
	if target.depth > 1 {
		layer = z
		ox, oy = 0, 0
	}

	wz := gridMin.Z + (float32(z)+0.5)*res

	n := r.inst.Count
	for i := 0; i < n; i++ {
		cx := r.inst.Centers[i*3]
		cy := r.inst.Centers[i*3+1]
		cz := r.inst.Centers[i*3+2]
		radius := r.inst.Radii[i]

		cutoff := radius * InfluenceFactor
		dzw := wz - cz
		if dzw > cutoff || dzw < -cutoff {
			continue
		}

		x0, x1 := cellRange(cx, cutoff, gridMin.X, res, dx)
		y0, y1 := cellRange(cy, cutoff, gridMin.Y, res, dy)

		for gy := y0; gy < y1; gy++ {
			wy := gridMin.Y + (float32(gy)+0.5)*res
			dyw := wy - cy
			for gx := x0; gx < x1; gx++ {
				wx := gridMin.X + (float32(gx)+0.5)*res
				dxw := wx - cx

				distSq := dxw*dxw + dyw*dyw + dzw*dzw
				if distSq > cutoff*cutoff {
					continue
				}
				dist := float32(math.Sqrt(float64(distSq)))

				off := target.pixelOffset(ox+gx, oy+gy, layer)
				src, write := r.fragment(pass.Config.Variant, i, dist, radius, alpha, distNorm, minDist, off)
				if !write {
					continue
				}
				blendPixel(target.pix, off, src, pass.Config)
			}
		}
	}
	return nil
}

// fragment evaluates the per-pixel value of one instance under the given
// variant. Returns write=false when the fragment is discarded (group-id
// ownership lost to a nearer point).
func (r *softRenderable) fragment(
	variant PassVariant,
	i int,
	dist, radius, alpha, distNorm float32,
	minDist *softTexture,
	off int,
) (src [4]uint8, write bool) {
	switch variant {
	case PassDensity:
		v := float32(math.Exp(float64(-alpha * (dist * dist) / (radius * radius))))
		return [4]uint8{0, 0, 0, quantize(v)}, true

	case PassMinDistance:
		return [4]uint8{0, 0, 0, quantize(invertedSurfaceDistance(dist, radius, distNorm))}, true

	case PassGroupID:
		v := quantize(invertedSurfaceDistance(dist, radius, distNorm))
		stored := minDist.pix[off+3]
		// Nearest point wins: only fragments matching the recorded
		// minimum (up to quantization) keep their id.
		if int(v)+groupTolerance < int(stored) {
			return [4]uint8{}, false
		}
		var group uint32
		if r.inst.Groups != nil {
			group = r.inst.Groups[i]
		} else {
			group = uint32(i)
		}
		cr, cg, cb, err := df.EncodeRGB(group)
		if err != nil {
			// Upload validated the domain; reaching this is a bug.
			return [4]uint8{}, false
		}
		return [4]uint8{cr, cg, cb, 0}, true
	}
	return [4]uint8{}, false
}

// invertedSurfaceDistance maps the distance from a cell to a point's surface
// into [0,1] with 1 at the surface (or inside) and 0 at distNorm away. MAX
// blending over these values yields the minimum distance across points.
func invertedSurfaceDistance(dist, radius, distNorm float32) float32 {
	d := (dist - radius) / distNorm
	if d < 0 {
		d = 0
	} else if d > 1 {
		d = 1
	}
	return 1 - d
}

// blendPixel applies the fixed-function blend of cfg to one pixel.
// Only the three factor/equation combinations of the density pipeline are
// meaningful, but the implementation honors the config record generally.
func blendPixel(pix []byte, off int, src [4]uint8, cfg PassConfig) {
	for c := 0; c < 4; c++ {
		if cfg.Mask&(1<<c) == 0 {
			continue
		}
		s := int(src[c])
		d := int(pix[off+c])
		if cfg.SrcFactor == BlendZero {
			s = 0
		}
		if cfg.DstFactor == BlendZero {
			d = 0
		}
		var out int
		switch cfg.Equation {
		case BlendEqMax:
			out = s
			if d > out {
				out = d
			}
		default:
			out = s + d
			if out > 255 {
				out = 255
			}
		}
		pix[off+c] = uint8(out)
	}
}

// cellRange returns the clamped half-open grid index range touched by a
// point's footprint along one axis.
func cellRange(center, cutoff, gridMin, res float32, dim int) (int, int) {
	lo := int(math.Floor(float64((center - cutoff - gridMin) / res)))
	hi := int(math.Ceil(float64((center+cutoff-gridMin)/res))) + 1
	if lo < 0 {
		lo = 0
	}
	if hi > dim {
		hi = dim
	}
	return lo, hi
}

// quantize maps a [0,1] float to its 8-bit channel value.
func quantize(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
