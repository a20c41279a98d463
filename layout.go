package densityfield

import (
	"errors"
	"math"
)

// ErrEmptyGrid indicates a grid dimension with a zero or negative extent.
// Layout planning rejects empty grids before any texture allocation happens.
var ErrEmptyGrid = errors.New("densityfield: grid dimensions must be positive")

// Layout describes how the Z-slices of a 3D grid are placed in a texture.
//
// For native 3D textures the layout is the identity: texture dimensions equal
// grid dimensions and TexCols/TexRows are 1/dz (one slice per layer). For
// 2D-only targets the dz slices of size dx by dy are tiled into one larger 2D
// image, TexCols slices per row.
type Layout struct {
	// TexDimX and TexDimY are the texture dimensions in pixels.
	TexDimX, TexDimY int

	// TexCols is the number of slices per tile row; TexRows is the number
	// of tile rows. TexCols*TexRows >= dz always holds.
	TexCols, TexRows int

	// Is3D reports whether the layout targets a native 3D texture.
	Is3D bool
}

// PlanLayout computes the packed texture layout for a dx by dy by dz grid.
//
// When use3D is true the target is a native 3D texture and the layout is the
// identity. Otherwise the slices are tiled into a 2D image sized to the next
// power-of-two-bounded square: if that square cannot hold all slices in one
// row, slices wrap into multiple rows.
//
// PlanLayout is a pure function of its inputs. Grids with any non-positive
// extent are rejected with ErrEmptyGrid.
func PlanLayout(dx, dy, dz int, use3D bool) (Layout, error) {
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return Layout{}, ErrEmptyGrid
	}

	if use3D {
		return Layout{
			TexDimX: dx,
			TexDimY: dy,
			TexCols: 1,
			TexRows: dz,
			Is3D:    true,
		}, nil
	}

	area := dx * dy * dz
	squareDim := math.Sqrt(float64(area))
	powerOfTwoSize := nextPowerOfTwo(int(math.Ceil(squareDim)))

	if powerOfTwoSize < dx*dz {
		texCols := powerOfTwoSize / dx
		if texCols < 1 {
			texCols = 1
		}
		texRows := (dz + texCols - 1) / texCols
		return Layout{
			TexDimX: texCols * dx,
			TexDimY: texRows * dy,
			TexCols: texCols,
			TexRows: texRows,
		}, nil
	}

	// All slices fit in a single row.
	return Layout{
		TexDimX: dx * dz,
		TexDimY: dy,
		TexCols: dz,
		TexRows: 1,
	}, nil
}

// SliceOffset returns the pixel offset of the origin of slice z within the
// packed texture. Slices fill column-major: the column advances with each
// slice and wraps to the next row after TexCols slices. Extraction must use
// the same cursor math as accumulation or the tiles misalign.
func (l Layout) SliceOffset(dx, dy, z int) (x, y int) {
	if l.Is3D {
		return 0, 0
	}
	col := z % l.TexCols
	row := z / l.TexCols
	return col * dx, row * dy
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
