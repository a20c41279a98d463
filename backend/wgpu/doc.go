// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides the WebGPU-backed render pool for the density
// pipeline.
//
// The pool compiles the density accumulation shader (three compute entry
// points, one per pass variant) from WGSL to SPIR-V with naga, builds the
// pipelines and device buffers over the wgpu HAL, and pairs every render
// target with a CPU mirror that executes the shader's exact algorithm. The
// mirror keeps results bit-identical between environments while device-side
// dispatch plumbing matures in the HAL.
package wgpu
