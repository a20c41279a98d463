// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	df "github.com/gogpu/densityfield"
	"github.com/gogpu/densityfield/render"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// GPUInfo describes the adapter backing a Device.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Backend is the graphics API in use.
	Backend gputypes.Backend
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%v, %v)", g.Name, g.DeviceType, g.Backend)
}

// Device bundles the HAL handles a Pool renders with. It is produced either
// by OpenDevice, which opens a standalone compute device and owns it, or by
// DeviceFromHandle, which adopts handles from a host application and leaves
// their lifetime to the host.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	info     GPUInfo
	external bool
}

// OpenDevice opens a standalone compute device on the Vulkan backend,
// preferring discrete over integrated GPUs.
func OpenDevice() (*Device, error) {
	gpuBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := gpuBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: failed to create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: failed to open device: %w", err)
	}

	d := &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		info: GPUInfo{
			Name:       selected.Info.Name,
			DeviceType: selected.Info.DeviceType,
			Backend:    gputypes.BackendVulkan,
		},
	}
	df.Logger().Info("wgpu: selected GPU", "gpu", d.info.String())
	return d, nil
}

// DeviceFromHandle adapts a host-supplied device handle. The handle must
// expose its HAL types through HalDevice() any and HalQueue() any, as gogpu
// application contexts do; handles without HAL access cannot back the
// compute pipelines.
func DeviceFromHandle(handle render.DeviceHandle) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := handle.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: device handle does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("wgpu: device handle HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: device handle HalQueue is not hal.Queue")
	}
	return &Device{device: device, queue: queue, external: true}, nil
}

// Info returns information about the adapter. Empty for adopted handles;
// the host already knows its device.
func (d *Device) Info() GPUInfo { return d.info }

// Close releases the device and instance. Adopted handles are left alone.
func (d *Device) Close() {
	if !d.external && d.device != nil {
		d.device.Destroy()
	}
	d.device = nil
	d.queue = nil
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
