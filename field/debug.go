// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package field

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// SliceImage renders one Z-slice of the density field as a grayscale image,
// white at density 1. Useful for eyeballing accumulation output.
func (f *Field) SliceImage(z int) (*image.Gray, error) {
	if z < 0 || z >= f.Dim[2] {
		return nil, fmt.Errorf("field: slice %d out of range [0, %d)", z, f.Dim[2])
	}
	img := image.NewGray(image.Rect(0, 0, f.Dim[0], f.Dim[1]))
	for y := 0; y < f.Dim[1]; y++ {
		for x := 0; x < f.Dim[0]; x++ {
			v := f.At(x, y, z)
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			img.Pix[img.PixOffset(x, y)] = uint8(v*255 + 0.5)
		}
	}
	return img, nil
}

// WriteSlicePNG writes a Z-slice preview scaled to the given width with
// bilinear filtering. A width of zero keeps the native resolution.
func (f *Field) WriteSlicePNG(w io.Writer, z, width int) error {
	img, err := f.SliceImage(z)
	if err != nil {
		return err
	}
	if width > 0 && width != f.Dim[0] {
		height := width * f.Dim[1] / f.Dim[0]
		if height < 1 {
			height = 1
		}
		scaled := image.NewGray(image.Rect(0, 0, width, height))
		draw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = scaled
	}
	return png.Encode(w, img)
}
