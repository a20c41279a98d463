// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package field

import (
	df "github.com/gogpu/densityfield"
)

// extractField decodes the readback pixels into a Field. It walks the grid
// with the same slice cursor the render batches used; the alpha channel
// carries density, the color channels carry the codec-packed group id.
func extractField(pix []byte, g grid, layout df.Layout, params Params) *Field {
	dx, dy, dz := g.dim[0], g.dim[1], g.dim[2]
	cells := dx * dy * dz

	f := &Field{
		Dim:     g.dim,
		Density: make([]float32, cells),
		GroupID: make([]uint32, cells),
		Transform: Transform{
			Translation: g.min,
			Scale:       df.V3(params.Resolution, params.Resolution, params.Resolution),
		},
	}

	w, h := layout.TexDimX, layout.TexDimY
	out := 0
	for z := 0; z < dz; z++ {
		ox, oy := layout.SliceOffset(dx, dy, z)
		layer := 0
		if layout.Is3D {
			layer = z
		}
		for y := 0; y < dy; y++ {
			row := ((layer*h+oy+y)*w + ox) * 4
			for x := 0; x < dx; x++ {
				off := row + x*4
				f.Density[out] = float32(pix[off+3]) / 255
				f.GroupID[out] = df.DecodeRGB(pix[off], pix[off+1], pix[off+2])
				out++
			}
		}
	}
	return f
}
