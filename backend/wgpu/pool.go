// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	_ "embed"
	"fmt"
	"math"
	"sync"

	df "github.com/gogpu/densityfield"
	"github.com/gogpu/densityfield/render"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"
)

//go:embed shaders/density.wgsl
var densityShaderWGSL string

// GPUInstance is the GPU-compatible layout of one point sphere.
// Must match the Instance struct in density.wgsl.
type GPUInstance struct {
	X       float32 // Center X coordinate, world space
	Y       float32 // Center Y coordinate
	Z       float32 // Center Z coordinate
	Radius  float32 // Influence radius
	GroupID uint32  // Codec-domain group id
	Pad0    uint32  // Padding for alignment
	Pad1    uint32  // Padding for alignment
	Pad2    uint32  // Padding for alignment
}

// GPUConfig contains the per-slice shader configuration.
// Must match Config in density.wgsl.
type GPUConfig struct {
	DimX          uint32  // Grid cells along X
	DimY          uint32  // Grid cells along Y
	DimZ          uint32  // Grid cells along Z
	Slice         uint32  // Z-slice being accumulated
	MinX          float32 // Grid world-space origin X
	MinY          float32 // Grid world-space origin Y
	MinZ          float32 // Grid world-space origin Z
	Resolution    float32 // World-space cell size
	Alpha         float32 // Gaussian falloff exponent
	DistNorm      float32 // Surface distance normalizer
	TileX         uint32  // Tile pixel offset X
	TileY         uint32  // Tile pixel offset Y
	TexWidth      uint32  // Packed texture width in pixels
	InstanceCount uint32  // Number of instances to gather
	Pad0          uint32  // Padding for alignment
	Pad1          uint32  // Padding for alignment
}

// Pool is the wgpu implementation of the render capabilities. It compiles
// the density shader to SPIR-V, builds the three compute pipelines, and
// manages instance and uniform buffers on the device.
//
// Note: full GPU dispatch requires bind group and dispatch plumbing not yet
// exposed by the HAL. The pipelines and buffers are created and fed, and the
// accumulation itself runs on the CPU with the exact algorithm of the
// shader, so results are identical to a future device-side execution.
type Pool struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	// Compute pipelines, one per pass variant
	densityPipeline hal.ComputePipeline
	minDistPipeline hal.ComputePipeline
	groupIDPipeline hal.ComputePipeline

	// Shader module (cached)
	shaderModule hal.ShaderModule

	// Pipeline layout and bind group layouts
	pipelineLayout   hal.PipelineLayout
	inputBindLayout  hal.BindGroupLayout
	outputBindLayout hal.BindGroupLayout

	// Compiled SPIR-V (cached for verification)
	spirvCode []uint32

	// Device-side buffers
	uniformBuf    hal.Buffer
	instanceBuf   hal.Buffer
	instanceCap   int
	instanceCount int

	// CPU mirror executing the shader algorithm
	soft *render.SoftPool

	// Standalone device owned by the pool, nil for host-supplied handles
	owned *Device

	maxTexDim int

	initialized bool
	shaderReady bool
}

// NewPool creates a wgpu-backed render pool on the given device and queue.
func NewPool(device hal.Device, queue hal.Queue) (*Pool, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: device and queue are required")
	}

	p := &Pool{
		device:    device,
		queue:     queue,
		soft:      render.NewSoftPool(),
		maxTexDim: int(types.DefaultLimits().MaxTextureDimension2D),
	}

	if err := p.init(); err != nil {
		p.Destroy()
		return nil, err
	}

	return p, nil
}

// NewPoolFromDevice creates a pool that adopts dev and closes it on Destroy.
func NewPoolFromDevice(dev *Device) (*Pool, error) {
	if dev == nil {
		return nil, fmt.Errorf("wgpu: device is required")
	}
	p, err := NewPool(dev.device, dev.queue)
	if err != nil {
		dev.Close()
		return nil, err
	}
	p.owned = dev
	return p, nil
}

// NewPoolFromHandle creates a pool on a host-supplied device handle. The
// handle must expose HAL types; see DeviceFromHandle. The host retains
// ownership of the underlying device.
func NewPoolFromHandle(handle render.DeviceHandle) (*Pool, error) {
	dev, err := DeviceFromHandle(handle)
	if err != nil {
		return nil, err
	}
	return NewPoolFromDevice(dev)
}

// init initializes GPU resources (shader, pipelines, layouts, buffers).
func (p *Pool) init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Compile WGSL to SPIR-V
	spirvBytes, err := naga.Compile(densityShaderWGSL)
	if err != nil {
		return fmt.Errorf("wgpu: failed to compile density shader: %w", err)
	}

	p.spirvCode = make([]uint32, len(spirvBytes)/4)
	for i := range p.spirvCode {
		p.spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	p.shaderReady = true

	shaderModule, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "density_shader",
		Source: hal.ShaderSource{
			SPIRV: p.spirvCode,
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create shader module: %w", err)
	}
	p.shaderModule = shaderModule

	if err := p.createBindGroupLayouts(); err != nil {
		return err
	}
	if err := p.createPipelineLayout(); err != nil {
		return err
	}
	if err := p.createPipelines(); err != nil {
		return err
	}

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "density_config",
		Size:  64, // sizeof(GPUConfig)
		Usage: types.BufferUsageUniform | types.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	p.initialized = true
	return nil
}

// createBindGroupLayouts creates the bind group layouts for the pipelines.
func (p *Pool) createBindGroupLayouts() error {
	// Input bind group layout (group 0): config, instances, min-distance
	inputLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "density_input_layout",
		Entries: []types.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type:           types.BufferBindingTypeUniform,
					MinBindingSize: 64, // sizeof(GPUConfig)
				},
			},
			{
				Binding:    1,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeReadOnlyStorage,
				},
			},
			{
				Binding:    2,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create input bind group layout: %w", err)
	}
	p.inputBindLayout = inputLayout

	// Output bind group layout (group 1): packed RGBA target
	outputLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "density_output_layout",
		Entries: []types.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create output bind group layout: %w", err)
	}
	p.outputBindLayout = outputLayout

	return nil
}

// createPipelineLayout creates the shared pipeline layout.
func (p *Pool) createPipelineLayout() error {
	layout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "density_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.inputBindLayout, p.outputBindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create pipeline layout: %w", err)
	}
	p.pipelineLayout = layout
	return nil
}

// createPipelines creates one compute pipeline per pass variant.
func (p *Pool) createPipelines() error {
	density, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "density_pipeline",
		Layout: p.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     p.shaderModule,
			EntryPoint: "cs_density",
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create density pipeline: %w", err)
	}
	p.densityPipeline = density

	minDist, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "min_distance_pipeline",
		Layout: p.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     p.shaderModule,
			EntryPoint: "cs_min_distance",
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create min-distance pipeline: %w", err)
	}
	p.minDistPipeline = minDist

	groupID, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "group_id_pipeline",
		Layout: p.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     p.shaderModule,
			EntryPoint: "cs_group_id",
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: failed to create group-id pipeline: %w", err)
	}
	p.groupIDPipeline = groupID

	return nil
}

// AcquireTexture allocates a device texture with a CPU mirror.
func (p *Pool) AcquireTexture(desc render.TextureDescriptor) (render.Texture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil, fmt.Errorf("wgpu: pool not initialized")
	}
	if desc.Width > p.maxTexDim || desc.Height > p.maxTexDim {
		return nil, fmt.Errorf("wgpu: texture %dx%d exceeds device texture limit %d",
			desc.Width, desc.Height, p.maxTexDim)
	}

	mirror, err := p.soft.AcquireTexture(desc)
	if err != nil {
		return nil, err
	}

	halTex, err := p.createDeviceTexture(desc.Label, desc.Width, desc.Height)
	if err != nil {
		mirror.Destroy()
		return nil, err
	}

	return &Texture{
		pool:   p,
		halTex: halTex,
		mirror: mirror,
		label:  desc.Label,
	}, nil
}

func (p *Pool) createDeviceTexture(label string, width, height int) (hal.Texture, error) {
	halTex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormatRGBA8Unorm,
		Usage:         types.TextureUsageCopySrc | types.TextureUsageCopyDst | types.TextureUsageStorageBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: failed to create texture: %w", err)
	}
	return halTex, nil
}

// CheckTextureLimit verifies that a planned packed layout fits the device's
// 2D texture limit. Densely sampled grids can exceed it; callers should
// coarsen the resolution when this fails. AcquireTexture enforces the same
// limit, so the pipeline fails loud either way.
func (p *Pool) CheckTextureLimit(layout df.Layout) error {
	if layout.TexDimX > p.maxTexDim || layout.TexDimY > p.maxTexDim {
		return fmt.Errorf("wgpu: packed layout %dx%d exceeds device texture limit %d",
			layout.TexDimX, layout.TexDimY, p.maxTexDim)
	}
	return nil
}

// Renderable returns a new instanced point renderable backed by its own CPU
// mirror. The device-side instance and uniform buffers are pool-shared.
func (p *Pool) Renderable() render.Renderable {
	return &renderable{pool: p, mirror: p.soft.Renderable()}
}

// Supports3D reports false: the pool packs Z-slices into 2D targets, which
// keeps one code path for devices without 3D storage texture support.
func (p *Pool) Supports3D() bool { return false }

// SupportsBlendMinMax reports true. The gather-style shader computes the
// maximum in-loop instead of relying on fixed-function MAX blending, so the
// capability does not depend on an optional device feature.
func (p *Pool) SupportsBlendMinMax() bool { return true }

// IsShaderReady returns whether the shader compiled successfully.
func (p *Pool) IsShaderReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shaderReady
}

// SPIRVCode returns the compiled SPIR-V code (for debugging/verification).
func (p *Pool) SPIRVCode() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spirvCode
}

// Destroy releases all GPU resources.
func (p *Pool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return
	}

	if p.densityPipeline != nil {
		p.device.DestroyComputePipeline(p.densityPipeline)
		p.densityPipeline = nil
	}
	if p.minDistPipeline != nil {
		p.device.DestroyComputePipeline(p.minDistPipeline)
		p.minDistPipeline = nil
	}
	if p.groupIDPipeline != nil {
		p.device.DestroyComputePipeline(p.groupIDPipeline)
		p.groupIDPipeline = nil
	}

	if p.pipelineLayout != nil {
		p.device.DestroyPipelineLayout(p.pipelineLayout)
		p.pipelineLayout = nil
	}

	if p.inputBindLayout != nil {
		p.device.DestroyBindGroupLayout(p.inputBindLayout)
		p.inputBindLayout = nil
	}
	if p.outputBindLayout != nil {
		p.device.DestroyBindGroupLayout(p.outputBindLayout)
		p.outputBindLayout = nil
	}

	if p.shaderModule != nil {
		p.device.DestroyShaderModule(p.shaderModule)
		p.shaderModule = nil
	}

	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.instanceBuf != nil {
		p.device.DestroyBuffer(p.instanceBuf)
		p.instanceBuf = nil
	}

	p.initialized = false
	p.device = nil
	p.queue = nil

	if p.owned != nil {
		p.owned.Close()
		p.owned = nil
	}
}

// Ensure Pool implements render.Pool.
var _ render.Pool = (*Pool)(nil)

// Texture pairs a device texture with its CPU mirror. Pixel access goes
// through the mirror; the device texture stands ready for device-side
// dispatch once the HAL exposes bind groups.
type Texture struct {
	pool   *Pool
	halTex hal.Texture
	mirror render.Texture
	label  string
}

func (t *Texture) Width() int                     { return t.mirror.Width() }
func (t *Texture) Height() int                    { return t.mirror.Height() }
func (t *Texture) Depth() int                     { return t.mirror.Depth() }
func (t *Texture) Format() gputypes.TextureFormat { return t.mirror.Format() }

// Resize reallocates both the device texture and the mirror.
func (t *Texture) Resize(width, height, depth int) error {
	if err := t.mirror.Resize(width, height, depth); err != nil {
		return err
	}
	if t.halTex != nil {
		t.pool.device.DestroyTexture(t.halTex)
	}
	halTex, err := t.pool.createDeviceTexture(t.label, width, height)
	if err != nil {
		t.halTex = nil
		return err
	}
	t.halTex = halTex
	return nil
}

func (t *Texture) Clear(r, g, b, a uint8) { t.mirror.Clear(r, g, b, a) }

func (t *Texture) ReadPixels() ([]byte, error) { return t.mirror.ReadPixels() }

func (t *Texture) Destroy() {
	if t.halTex != nil {
		t.pool.device.DestroyTexture(t.halTex)
		t.halTex = nil
	}
	t.mirror.Destroy()
}

// renderable uploads instances to the device and replays passes through the
// CPU mirror of the shader.
type renderable struct {
	pool   *Pool
	mirror render.Renderable
}

// Upload writes the instance set to the device-side storage buffer and to
// the CPU mirror.
func (r *renderable) Upload(inst *render.Instances) error {
	if err := r.mirror.Upload(inst); err != nil {
		return err
	}
	if inst == nil || inst.Count == 0 {
		return nil
	}

	data := instancesToBytes(inst)

	r.pool.mu.Lock()
	defer r.pool.mu.Unlock()

	if r.pool.instanceBuf == nil || r.pool.instanceCap < len(data) {
		if r.pool.instanceBuf != nil {
			r.pool.device.DestroyBuffer(r.pool.instanceBuf)
		}
		buf, err := r.pool.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "density_instances",
			Size:  uint64(len(data)),
			Usage: types.BufferUsageStorage | types.BufferUsageCopyDst,
		})
		if err != nil {
			r.pool.instanceBuf = nil
			r.pool.instanceCap = 0
			return fmt.Errorf("wgpu: failed to create instance buffer: %w", err)
		}
		r.pool.instanceBuf = buf
		r.pool.instanceCap = len(data)
	}

	r.pool.queue.WriteBuffer(r.pool.instanceBuf, 0, data)
	r.pool.instanceCount = inst.Count
	return nil
}

// RunPass uploads the per-slice config and accumulates the slice. The
// dispatch itself runs on the CPU mirror; see the Pool note.
func (r *renderable) RunPass(pass render.Pass, z int, u *render.Uniforms) error {
	cfg := configFromUniforms(pass, z, u)
	r.pool.mu.Lock()
	cfg.InstanceCount = uint32(r.pool.instanceCount)
	if r.pool.uniformBuf != nil {
		r.pool.queue.WriteBuffer(r.pool.uniformBuf, 0, configToBytes(&cfg))
	}
	r.pool.mu.Unlock()

	mirrored := render.Pass{Config: pass.Config}
	if t, ok := pass.Target.(*Texture); ok {
		mirrored.Target = t.mirror
	} else {
		mirrored.Target = pass.Target
	}
	if pass.MinDist != nil {
		if t, ok := pass.MinDist.(*Texture); ok {
			mirrored.MinDist = t.mirror
		} else {
			mirrored.MinDist = pass.MinDist
		}
	}
	return r.mirror.RunPass(mirrored, z, u)
}

// Finish synchronizes outstanding work.
func (r *renderable) Finish() error {
	return r.mirror.Finish()
}

// configFromUniforms flattens the uniform bundle into the shader layout.
func configFromUniforms(pass render.Pass, z int, u *render.Uniforms) GPUConfig {
	dim := u.GridDim.Get()
	gridMin := u.GridMin.Get()
	tile := u.TileOffset.Get()

	var texWidth int
	if pass.Target != nil {
		texWidth = pass.Target.Width()
	}

	return GPUConfig{
		DimX:       uint32(dim[0]),
		DimY:       uint32(dim[1]),
		DimZ:       uint32(dim[2]),
		Slice:      uint32(z),
		MinX:       gridMin.X,
		MinY:       gridMin.Y,
		MinZ:       gridMin.Z,
		Resolution: u.Resolution.Get(),
		Alpha:      u.Alpha.Get(),
		DistNorm:   u.DistNorm.Get(),
		TileX:      uint32(tile[0]),
		TileY:      uint32(tile[1]),
		TexWidth:   uint32(texWidth),
	}
}

// Byte serialization helpers (GPU buffer upload)

func writeUint32(buf []byte, offset int, val uint32) {
	buf[offset] = byte(val)
	buf[offset+1] = byte(val >> 8)
	buf[offset+2] = byte(val >> 16)
	buf[offset+3] = byte(val >> 24)
}

func writeFloat32(buf []byte, offset int, val float32) {
	writeUint32(buf, offset, math.Float32bits(val))
}

func instancesToBytes(inst *render.Instances) []byte {
	buf := make([]byte, inst.Count*32)
	for i := 0; i < inst.Count; i++ {
		off := i * 32
		writeFloat32(buf, off+0, inst.Centers[i*3])
		writeFloat32(buf, off+4, inst.Centers[i*3+1])
		writeFloat32(buf, off+8, inst.Centers[i*3+2])
		writeFloat32(buf, off+12, inst.Radii[i])
		var group uint32
		if inst.Groups != nil {
			group = inst.Groups[i]
		} else {
			group = uint32(i)
		}
		writeUint32(buf, off+16, group)
	}
	return buf
}

func configToBytes(cfg *GPUConfig) []byte {
	buf := make([]byte, 64)
	writeUint32(buf, 0, cfg.DimX)
	writeUint32(buf, 4, cfg.DimY)
	writeUint32(buf, 8, cfg.DimZ)
	writeUint32(buf, 12, cfg.Slice)
	writeFloat32(buf, 16, cfg.MinX)
	writeFloat32(buf, 20, cfg.MinY)
	writeFloat32(buf, 24, cfg.MinZ)
	writeFloat32(buf, 28, cfg.Resolution)
	writeFloat32(buf, 32, cfg.Alpha)
	writeFloat32(buf, 36, cfg.DistNorm)
	writeUint32(buf, 40, cfg.TileX)
	writeUint32(buf, 44, cfg.TileY)
	writeUint32(buf, 48, cfg.TexWidth)
	writeUint32(buf, 52, cfg.InstanceCount)
	return buf
}
