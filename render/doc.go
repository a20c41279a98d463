// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render defines the GPU capabilities the density pipeline consumes:
// a texture pool, fixed-function blend state expressed as per-pass
// configuration records, and an instanced point renderable.
//
// The pipeline itself never talks to a GPU API directly. It drives these
// interfaces, which are satisfied by the built-in software pool (the
// reference implementation, exact blend semantics on CPU) and by the wgpu
// backend in backend/wgpu.
package render
