// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package field

import (
	"bytes"
	"context"
	"errors"
	"testing"

	df "github.com/gogpu/densityfield"
	"github.com/gogpu/densityfield/geometry"
	"github.com/gogpu/densityfield/render"
)

func boxOf(pos *geometry.PositionData, radius geometry.RadiusFunc) geometry.Box3 {
	box := geometry.EmptyBox3()
	for _, i := range pos.Indices {
		box.AddSphere(pos.Position(i), radius(i))
	}
	return box
}

func computeField(t *testing.T, pool render.Pool, pos *geometry.PositionData, radius geometry.RadiusFunc, params Params) *Field {
	t.Helper()
	e := NewEngine(pool)
	defer e.Close()
	f, err := e.Compute(context.Background(), pos, radius, boxOf(pos, radius), params)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return f
}

// nearestCell returns the grid cell whose center is closest to p.
func nearestCell(f *Field, p df.Vec3) (x, y, z int) {
	cell := func(world, origin, scale float32, dim int) int {
		i := int((world - origin) / scale)
		if i < 0 {
			i = 0
		}
		if i >= dim {
			i = dim - 1
		}
		return i
	}
	x = cell(p.X, f.Transform.Translation.X, f.Transform.Scale.X, f.Dim[0])
	y = cell(p.Y, f.Transform.Translation.Y, f.Transform.Scale.Y, f.Dim[1])
	z = cell(p.Z, f.Transform.Translation.Z, f.Transform.Scale.Z, f.Dim[2])
	return x, y, z
}

func TestComputeSinglePoint(t *testing.T) {
	pos := geometry.NewPositionData([]float32{0}, []float32{0}, []float32{0})
	radius := geometry.ConstantRadius(2)
	params := DefaultParams()

	f := computeField(t, render.NewSoftPool(), pos, radius, params)

	// Box [-2,2]^3 padded by maxRadius + 2*resolution = 4 gives 12 cells
	// per axis starting at -6.
	if f.Dim != [3]int{12, 12, 12} {
		t.Fatalf("Dim = %v, want [12 12 12]", f.Dim)
	}
	if f.Transform.Translation != df.V3(-6, -6, -6) {
		t.Errorf("Translation = %v, want (-6,-6,-6)", f.Transform.Translation)
	}
	if f.Transform.Scale != df.V3(1, 1, 1) {
		t.Errorf("Scale = %v, want (1,1,1)", f.Transform.Scale)
	}

	for i, d := range f.Density {
		if d < 0 || d > 1 {
			t.Fatalf("density[%d] = %v outside [0,1]", i, d)
		}
	}

	cx, cy, cz := nearestCell(f, df.V3(0, 0, 0))
	center := f.At(cx, cy, cz)
	if center <= 0.5 {
		t.Errorf("density near point = %v, want > 0.5", center)
	}
	// Two cells out along X the density must have dropped.
	if off := f.At(cx+2, cy, cz); off >= center {
		t.Errorf("no falloff: center %v, offset %v", center, off)
	}
	// Grid corners are beyond the influence cutoff.
	if d := f.At(0, 0, 0); d != 0 {
		t.Errorf("corner density = %v, want 0", d)
	}
	if g := f.GroupAt(0, 0, 0); g != 0 {
		t.Errorf("corner group = %d, want 0", g)
	}
}

func TestComputeGroupIDs(t *testing.T) {
	pos := geometry.NewPositionData(
		[]float32{0, 20},
		[]float32{0, 0},
		[]float32{0, 0},
	)
	pos.Group = []int32{5, 200}
	radius := geometry.ConstantRadius(1)

	f := computeField(t, render.NewSoftPool(), pos, radius, DefaultParams())

	ax, ay, az := nearestCell(f, df.V3(0, 0, 0))
	if g := f.GroupAt(ax, ay, az); g != 5 {
		t.Errorf("group near first point = %d, want 5", g)
	}
	if d := f.At(ax, ay, az); d <= 0 {
		t.Errorf("density near first point = %v, want > 0", d)
	}

	bx, by, bz := nearestCell(f, df.V3(20, 0, 0))
	if g := f.GroupAt(bx, by, bz); g != 200 {
		t.Errorf("group near second point = %d, want 200", g)
	}

	// Midway between the points both footprints have ended.
	mx, my, mz := nearestCell(f, df.V3(10, 0, 0))
	if d := f.At(mx, my, mz); d != 0 {
		t.Errorf("midpoint density = %v, want 0", d)
	}
	if g := f.GroupAt(mx, my, mz); g != 0 {
		t.Errorf("midpoint group = %d, want 0", g)
	}
}

func TestComputePacked2DMatches3D(t *testing.T) {
	pos := geometry.NewPositionData(
		[]float32{0, 3, -2},
		[]float32{1, -1, 2},
		[]float32{0, 2, -1},
	)
	pos.Group = []int32{1, 2, 3}
	radius := geometry.ConstantRadius(1.5)
	params := DefaultParams()

	packed := computeField(t, render.NewSoftPool(), pos, radius, params)
	native := computeField(t, render.NewSoftPool(render.WithNative3D()), pos, radius, params)

	if packed.Dim != native.Dim {
		t.Fatalf("dims differ: %v vs %v", packed.Dim, native.Dim)
	}
	for i := range packed.Density {
		if packed.Density[i] != native.Density[i] {
			t.Fatalf("density[%d] differs: %v vs %v", i, packed.Density[i], native.Density[i])
		}
		if packed.GroupID[i] != native.GroupID[i] {
			t.Fatalf("group[%d] differs: %d vs %d", i, packed.GroupID[i], native.GroupID[i])
		}
	}
}

func TestComputeWithFittedBoundary(t *testing.T) {
	pos := geometry.NewPositionData(
		[]float32{0, 10, 5},
		[]float32{0, 0, 8.66},
		[]float32{0, 0, 0},
	)
	radius := geometry.ConstantRadius(1)

	b := geometry.FitBoundary(pos, radius)
	e := NewEngine(render.NewSoftPool())
	defer e.Close()

	f, err := e.Compute(context.Background(), pos, radius, b.Box, DefaultParams())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	x, y, z := nearestCell(f, df.V3(0, 0, 0))
	if d := f.At(x, y, z); d <= 0 {
		t.Errorf("density at fitted vertex = %v, want > 0", d)
	}
}

func TestComputeErrors(t *testing.T) {
	pos := geometry.NewPositionData([]float32{0}, []float32{0}, []float32{0})
	radius := geometry.ConstantRadius(1)
	box := boxOf(pos, radius)
	ctx := context.Background()

	t.Run("bad resolution", func(t *testing.T) {
		e := NewEngine(render.NewSoftPool())
		p := DefaultParams()
		p.Resolution = 0
		_, err := e.Compute(ctx, pos, radius, box, p)
		if !errors.Is(err, df.ErrBadParams) {
			t.Errorf("err = %v, want ErrBadParams", err)
		}
	})

	t.Run("bad smoothness", func(t *testing.T) {
		e := NewEngine(render.NewSoftPool())
		p := DefaultParams()
		p.Smoothness = -1
		_, err := e.Compute(ctx, pos, radius, box, p)
		if !errors.Is(err, df.ErrBadParams) {
			t.Errorf("err = %v, want ErrBadParams", err)
		}
	})

	t.Run("no positions", func(t *testing.T) {
		e := NewEngine(render.NewSoftPool())
		empty := geometry.NewPositionData(nil, nil, nil)
		_, err := e.Compute(ctx, empty, radius, box, DefaultParams())
		if !errors.Is(err, df.ErrNoPositions) {
			t.Errorf("err = %v, want ErrNoPositions", err)
		}
	})

	t.Run("empty box", func(t *testing.T) {
		e := NewEngine(render.NewSoftPool())
		_, err := e.Compute(ctx, pos, radius, geometry.EmptyBox3(), DefaultParams())
		if !errors.Is(err, df.ErrNoPositions) {
			t.Errorf("err = %v, want ErrNoPositions", err)
		}
	})

	t.Run("no min max blending", func(t *testing.T) {
		e := NewEngine(render.NewSoftPool(render.WithoutBlendMinMax()))
		_, err := e.Compute(ctx, pos, radius, box, DefaultParams())
		if !errors.Is(err, df.ErrBlendMinMax) {
			t.Errorf("err = %v, want ErrBlendMinMax", err)
		}
	})

	t.Run("group id out of range", func(t *testing.T) {
		e := NewEngine(render.NewSoftPool())
		bad := geometry.NewPositionData([]float32{0}, []float32{0}, []float32{0})
		bad.Group = []int32{1 << 24}
		_, err := e.Compute(ctx, bad, radius, boxOf(bad, radius), DefaultParams())
		if !errors.Is(err, df.ErrCodecRange) {
			t.Errorf("err = %v, want ErrCodecRange", err)
		}
	})

	t.Run("non-positive radius", func(t *testing.T) {
		e := NewEngine(render.NewSoftPool())
		_, err := e.Compute(ctx, pos, geometry.ConstantRadius(0), box, DefaultParams())
		if !errors.Is(err, df.ErrBadParams) {
			t.Errorf("err = %v, want ErrBadParams", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		e := NewEngine(render.NewSoftPool())
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.Compute(cctx, pos, radius, box, DefaultParams())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestEngineReusesTextures(t *testing.T) {
	pos := geometry.NewPositionData([]float32{0}, []float32{0}, []float32{0})
	radius := geometry.ConstantRadius(1)
	box := boxOf(pos, radius)

	e := NewEngine(render.NewSoftPool())
	defer e.Close()
	ctx := context.Background()

	if _, err := e.Compute(ctx, pos, radius, box, DefaultParams()); err != nil {
		t.Fatalf("first Compute: %v", err)
	}
	if _, err := e.Compute(ctx, pos, radius, box, DefaultParams()); err != nil {
		t.Fatalf("second Compute: %v", err)
	}

	stats := e.Stats()
	if stats.Allocs != 2 {
		t.Errorf("Allocs = %d, want 2 (main and min-distance)", stats.Allocs)
	}
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}

	// A finer resolution changes the grid and forces resizes, not allocs.
	p := DefaultParams()
	p.Resolution = 0.5
	if _, err := e.Compute(ctx, pos, radius, box, p); err != nil {
		t.Fatalf("resized Compute: %v", err)
	}
	stats = e.Stats()
	if stats.Resizes != 2 {
		t.Errorf("Resizes = %d, want 2", stats.Resizes)
	}
	if stats.Allocs != 2 {
		t.Errorf("Allocs after resize = %d, want still 2", stats.Allocs)
	}
}

func TestRadiusOffsetGrowsFootprint(t *testing.T) {
	pos := geometry.NewPositionData([]float32{0}, []float32{0}, []float32{0})
	radius := geometry.ConstantRadius(1)

	base := computeField(t, render.NewSoftPool(), pos, radius, DefaultParams())

	p := DefaultParams()
	p.RadiusOffset = 2
	grown := computeField(t, render.NewSoftPool(), pos, radius, p)

	if grown.Dim[0] <= base.Dim[0] {
		t.Errorf("offset radius did not grow the grid: %v vs %v", grown.Dim, base.Dim)
	}
}

func TestFieldAccessors(t *testing.T) {
	f := &Field{
		Dim:     [3]int{3, 4, 5},
		Density: make([]float32, 60),
		GroupID: make([]uint32, 60),
		Transform: Transform{
			Translation: df.V3(-1, -2, -3),
			Scale:       df.V3(0.5, 0.5, 0.5),
		},
	}
	f.Density[f.Index(2, 3, 4)] = 0.25
	f.GroupID[f.Index(2, 3, 4)] = 9

	if f.Index(2, 3, 4) != (4*4+3)*3+2 {
		t.Errorf("Index(2,3,4) = %d", f.Index(2, 3, 4))
	}
	if f.At(2, 3, 4) != 0.25 {
		t.Errorf("At = %v", f.At(2, 3, 4))
	}
	if f.GroupAt(2, 3, 4) != 9 {
		t.Errorf("GroupAt = %d", f.GroupAt(2, 3, 4))
	}
	c := f.CellCenter(0, 0, 0)
	if c != df.V3(-0.75, -1.75, -2.75) {
		t.Errorf("CellCenter(0,0,0) = %v", c)
	}
}

func BenchmarkCompute(b *testing.B) {
	pos := geometry.NewPositionData(
		[]float32{0, 4, -3, 2, -1},
		[]float32{0, 1, 2, -4, 3},
		[]float32{0, -2, 1, 3, -1},
	)
	radius := geometry.ConstantRadius(1.5)
	box := boxOf(pos, radius)
	e := NewEngine(render.NewSoftPool())
	defer e.Close()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Compute(ctx, pos, radius, box, DefaultParams()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExtractField(b *testing.B) {
	g := grid{min: df.V3(0, 0, 0), dim: [3]int{32, 32, 32}}
	layout, err := df.PlanLayout(32, 32, 32, false)
	if err != nil {
		b.Fatal(err)
	}
	pix := make([]byte, layout.TexDimX*layout.TexDimY*4)
	for i := range pix {
		pix[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		extractField(pix, g, layout, DefaultParams())
	}
}

func TestSlicePNG(t *testing.T) {
	pos := geometry.NewPositionData([]float32{0}, []float32{0}, []float32{0})
	radius := geometry.ConstantRadius(2)
	f := computeField(t, render.NewSoftPool(), pos, radius, DefaultParams())

	if _, err := f.SliceImage(-1); err == nil {
		t.Error("negative slice accepted")
	}
	if _, err := f.SliceImage(f.Dim[2]); err == nil {
		t.Error("out-of-range slice accepted")
	}

	img, err := f.SliceImage(f.Dim[2] / 2)
	if err != nil {
		t.Fatalf("SliceImage: %v", err)
	}
	if img.Bounds().Dx() != f.Dim[0] || img.Bounds().Dy() != f.Dim[1] {
		t.Errorf("image bounds %v, want %dx%d", img.Bounds(), f.Dim[0], f.Dim[1])
	}

	var buf bytes.Buffer
	if err := f.WriteSlicePNG(&buf, f.Dim[2]/2, 64); err != nil {
		t.Fatalf("WriteSlicePNG: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty PNG output")
	}
}
