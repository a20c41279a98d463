// Command densitydemo computes a Gaussian density field over a synthetic
// point cluster and writes one Z-slice as a grayscale PNG.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"math"
	"math/rand"
	"os"

	df "github.com/gogpu/densityfield"
	"github.com/gogpu/densityfield/backend"
	"github.com/gogpu/densityfield/field"
	"github.com/gogpu/densityfield/geometry"
	"github.com/gogpu/densityfield/render"

	// Register the wgpu pool; backend.Default falls back to the software
	// pool when no GPU device can be opened.
	_ "github.com/gogpu/densityfield/backend/wgpu"
)

func main() {
	var (
		points     = flag.Int("points", 200, "number of points in the cluster")
		resolution = flag.Float64("resolution", 0.5, "grid cell size")
		smoothness = flag.Float64("smoothness", 1.5, "Gaussian falloff exponent")
		pool       = flag.String("pool", "", "render pool name (empty = best available)")
		output     = flag.String("output", "density.png", "output file")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		df.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	pos := clusterPositions(*points)
	radius := pos.RadiusFn(1)

	b := geometry.FitBoundary(pos, radius)
	log.Printf("boundary: center %v radius %.2f", b.Sphere.Center, b.Sphere.Radius)

	p, err := pickPool(*pool)
	if err != nil {
		log.Fatalf("Failed to select pool: %v", err)
	}

	engine := field.NewEngine(p)
	defer engine.Close()

	params := field.DefaultParams()
	params.Resolution = float32(*resolution)
	params.Smoothness = float32(*smoothness)

	f, err := engine.Compute(context.Background(), pos, radius, b.Box, params)
	if err != nil {
		log.Fatalf("Failed to compute field: %v", err)
	}
	log.Printf("field: %dx%dx%d cells", f.Dim[0], f.Dim[1], f.Dim[2])

	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	defer out.Close()

	if err := f.WriteSlicePNG(out, f.Dim[2]/2, 512); err != nil {
		log.Fatalf("Failed to write PNG: %v", err)
	}
	log.Printf("Middle slice saved to %s", *output)
}

func pickPool(name string) (render.Pool, error) {
	if name != "" {
		return backend.Get(name)
	}
	return backend.Default()
}

// clusterPositions scatters points over three overlapping blobs with varied
// radii and a group id per blob.
func clusterPositions(n int) *geometry.PositionData {
	rng := rand.New(rand.NewSource(42))

	centers := [][3]float64{
		{0, 0, 0},
		{12, 4, 2},
		{5, 12, -3},
	}

	x := make([]float32, n)
	y := make([]float32, n)
	z := make([]float32, n)
	r := make([]float32, n)
	g := make([]int32, n)

	for i := 0; i < n; i++ {
		blob := i % len(centers)
		c := centers[blob]
		// Gaussian scatter around the blob center.
		x[i] = float32(c[0] + rng.NormFloat64()*3)
		y[i] = float32(c[1] + rng.NormFloat64()*3)
		z[i] = float32(c[2] + rng.NormFloat64()*3)
		r[i] = float32(0.8 + 0.6*math.Abs(rng.NormFloat64()))
		g[i] = int32(blob + 1)
	}

	pos := geometry.NewPositionData(x, y, z)
	pos.Radius = r
	pos.Group = g
	return pos
}
