// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/gputypes"
)

// TextureDescriptor describes a texture allocation request.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width, Height and Depth are the texture dimensions in pixels.
	// Depth > 1 requests a 3D texture (or layered target).
	Width, Height, Depth int

	// Format is the pixel format. The density pipeline uses RGBA8.
	Format gputypes.TextureFormat
}

// Texture is a pool-owned render target.
//
// ReadPixels is the single expensive synchronization point of the pipeline:
// it must block until all previously submitted draws into the texture have
// completed, then return the raw pixel bytes of the whole target (RGBA,
// 4 bytes per pixel, row-major, slices in Z order for 3D textures).
type Texture interface {
	Width() int
	Height() int
	Depth() int
	Format() gputypes.TextureFormat

	// Resize reallocates the texture storage in place. Contents after a
	// resize are undefined; callers clear before rendering.
	Resize(width, height, depth int) error

	// Clear fills every pixel with the given channel values.
	Clear(r, g, b, a uint8)

	// ReadPixels performs the full readback. One call per extraction.
	ReadPixels() ([]byte, error)

	// Destroy releases the underlying storage.
	Destroy()
}

// Instances is the per-draw-call instance data of the density pipeline: one
// point sphere per instance. It is uploaded once per three-pass invocation;
// only small per-slice uniforms change between slice renders.
type Instances struct {
	Centers []float32 // xyz triplets, world space
	Radii   []float32
	Groups  []uint32 // codec-domain group ids
	Count   int
}

// Renderable issues the shared instanced point draw under a given pass
// configuration. One Renderable instance is replayed for every Z-slice of
// every pass; implementations must not retain per-pass state beyond the
// arguments of RunPass.
type Renderable interface {
	// Upload replaces the instance set drawn by subsequent RunPass calls.
	Upload(inst *Instances) error

	// RunPass renders all uploaded instances into slice z of pass.Target
	// under the fixed-function state of pass.Config, using the per-slice
	// values in u. For 2D-packed targets the tile offset in u positions
	// the viewport; for 3D targets the slice is attached as a layer at
	// origin.
	RunPass(pass Pass, z int, u *Uniforms) error

	// Finish blocks until all submitted slice renders have completed.
	// Called once after each multi-slice pass batch; consuming the target
	// before Finish returns may observe partial writes.
	Finish() error
}

// Pass binds a pass configuration to its render target. MinDist carries the
// populated min-distance texture for the group-id pass and is nil otherwise.
type Pass struct {
	Config  PassConfig
	Target  Texture
	MinDist Texture
}

// Pool allocates textures and exposes the renderable plus the capability
// flags the pipeline needs to plan its work.
type Pool interface {
	// AcquireTexture allocates a texture for the given descriptor.
	AcquireTexture(desc TextureDescriptor) (Texture, error)

	// Renderable returns a new instanced point-sphere renderable. Each
	// renderable owns its uploaded instance set; callers run one
	// renderable per pipeline invocation.
	Renderable() Renderable

	// Supports3D reports whether native 3D texture targets are available.
	// Without it the pipeline packs Z-slices into a 2D tile layout.
	Supports3D() bool

	// SupportsBlendMinMax reports whether the MIN/MAX blend equation is
	// available. Its absence is fatal for the min-distance pass: the
	// pipeline aborts rather than degrade.
	SupportsBlendMinMax() bool
}
