package main

import (
	"flag"
	"fmt"
	"os"

	"relief3d/internal/depth"
	"relief3d/internal/imageio"
	"relief3d/internal/mesh"
)

func main() {
	maxDim := flag.Int("max", 1024, "Scale inputs down to fit this edge length (0 = keep)")
	sigma := flag.Float64("sigma", depth.DefaultBlurSigma, "Depth smoothing sigma in pixels (0 = off)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-max N] [-sigma S] <image>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	img, err := imageio.Load(path, *maxDim)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var opaque int
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] >= 128 {
			opaque++
		}
	}
	fmt.Printf("Image: %dx%d, opaque %.1f%%\n", img.Width, img.Height,
		100*float64(opaque)/float64(img.Width*img.Height))

	df, err := (&depth.Estimator{BlurSigma: *sigma}).Estimate(img)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	st := df.Stats()
	fmt.Printf("Depth: min=%.4f max=%.4f mean=%.4f stddev=%.4f\n", st.Min, st.Max, st.Mean, st.StdDev)
	fmt.Printf("  center=%.4f corners=[%.4f %.4f %.4f %.4f]\n",
		df.At(df.Width/2, df.Height/2),
		df.At(0, 0), df.At(df.Width-1, 0), df.At(0, df.Height-1), df.At(df.Width-1, df.Height-1))

	m, err := mesh.Build(df, mesh.DefaultOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Mesh: %d vertices, %d triangles, z span %.4f\n",
		len(m.Vertices), m.TriangleCount(), (st.Max-st.Min)*mesh.DefaultDisplacementScale)
}
