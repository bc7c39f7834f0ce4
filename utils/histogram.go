package utils

import (
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/setanarut/texgen"
	"gonum.org/v1/gonum/floats"
)

type ColorCount struct {
	Color  texgen.RGB
	Pixels int
	// Share of all pixels, in [0,1].
	Share float64
}

// Histogram counts every distinct colour of img exactly. Entries are sorted
// by pixel count, most frequent first, ties broken by hex value.
func Histogram(img image.Image) []ColorCount {
	buf, ok := img.(*texgen.ImageBuffer)
	if !ok {
		buf = texgen.FromImage(img)
	}

	counts := make(map[texgen.RGB]int)
	for off := 0; off+2 < len(buf.Pix); off += 3 {
		counts[texgen.RGB{R: buf.Pix[off], G: buf.Pix[off+1], B: buf.Pix[off+2]}]++
	}
	if len(counts) == 0 {
		return nil
	}

	total := float64(buf.W * buf.H)
	out := make([]ColorCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, ColorCount{Color: c, Pixels: n, Share: float64(n) / total})
	}
	slices.SortFunc(out, func(a, b ColorCount) int {
		if a.Pixels != b.Pixels {
			return b.Pixels - a.Pixels
		}
		return strings.Compare(a.Color.Hex(), b.Color.Hex())
	})
	return out
}

// PixelCounts returns how many pixels of a board rendered with opt get
// ColorA and ColorB. Edge tiles cut by the image border count only their
// visible pixels.
func PixelCounts(opt texgen.Options) (a, b int) {
	ex, ox := axisParity(opt.Width, opt.SquareSize)
	ey, oy := axisParity(opt.Height, opt.SquareSize)
	return ex*ey + ox*oy, ex*oy + ox*ey
}

// axisParity splits n pixels along one axis into those lying in even and
// odd tile indices.
func axisParity(n, size int) (even, odd int) {
	full, rem := n/size, n%size
	even = (full + 1) / 2 * size
	odd = full / 2 * size
	if full%2 == 0 {
		even += rem
	} else {
		odd += rem
	}
	return even, odd
}

// ShareVectors returns the observed and expected pixel shares of a board as
// [ColorA, ColorB, other].
func ShareVectors(hist []ColorCount, opt texgen.Options) (observed, expected []float64) {
	observed = make([]float64, 3)
	var others []float64
	for _, cc := range hist {
		switch cc.Color {
		case opt.ColorA:
			observed[0] = cc.Share
			if opt.ColorB == opt.ColorA {
				observed[1] = cc.Share
			}
		case opt.ColorB:
			observed[1] = cc.Share
		default:
			others = append(others, cc.Share)
		}
	}
	observed[2] = floats.Sum(others)

	a, b := PixelCounts(opt)
	total := float64(opt.Width * opt.Height)
	expected = []float64{float64(a) / total, float64(b) / total, 0}
	if opt.ColorA == opt.ColorB {
		expected[0], expected[1] = 1, 1
	}
	return observed, expected
}

// CheckShares verifies that img has the size of opt and that its colour
// shares match the checkerboard layout. It returns the L1 distance between
// the observed and expected share vectors.
func CheckShares(img image.Image, opt texgen.Options) (float64, error) {
	if err := opt.Validate(); err != nil {
		return 0, err
	}
	if size := img.Bounds().Size(); size.X != opt.Width || size.Y != opt.Height {
		return 0, fmt.Errorf("%w: size %dx%d, want %dx%d", ErrMismatch, size.X, size.Y, opt.Width, opt.Height)
	}

	observed, expected := ShareVectors(Histogram(img), opt)
	dev := floats.Distance(observed, expected, 1)
	if !floats.EqualApprox(observed, expected, 1e-9) {
		return dev, fmt.Errorf("%w: colour shares %v, want %v", ErrMismatch, observed, expected)
	}
	return dev, nil
}
