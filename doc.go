// Package densityfield computes Gaussian density fields from weighted point
// sets and tight bounding volumes for them.
//
// # Overview
//
// densityfield is a Pure Go library for the GoGPU ecosystem. Given a set of
// point positions with per-point radii (for example atoms of a molecule), it
// rasterizes a continuous scalar density field into a texture using three
// blend-based accumulation passes (Gaussian density, minimum distance, group
// ownership), then unpacks the result into a dense CPU-side tensor. A
// separate, fully independent boundary fitter produces minimal enclosing
// spheres and boxes for point sets, with a cheap incremental re-validation
// path for lightly perturbed inputs.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/densityfield/field"
//	    "github.com/gogpu/densityfield/geometry"
//	    "github.com/gogpu/densityfield/render"
//	)
//
//	pos := geometry.NewPositionData(xs, ys, zs)
//	boundary := geometry.FitBoundary(pos, radius)
//
//	eng := field.NewEngine(render.NewSoftPool())
//	f, err := eng.Compute(ctx, pos, radius, boundary.Box, field.DefaultParams())
//
// # Architecture
//
// The library is organized into:
//   - Root package: float-channel codec, texture layout planner, Vec3, Cell
//   - geometry: position data, Box3, Sphere3, boundary fitting
//   - render: consumed GPU capabilities (pool, blend state, renderable)
//   - field: accumulation engine, field extraction, cached resources
//   - backend/wgpu: device bootstrap and shader pipelines via gogpu/wgpu
//
// The render interfaces are satisfied both by the built-in software pool
// (reference implementation, usable in tests and headless environments) and
// by the wgpu backend.
package densityfield
