package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/setanarut/texgen"
)

// ErrMismatch is returned when a texture does not contain the colours its
// options describe.
var ErrMismatch = errors.New("utils: texture mismatch")

// DefaultTolerance is the largest Lab distance at which an extracted colour
// still counts as the expected tile colour.
const DefaultTolerance = 0.02

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

// ParsePaletteMethod maps a method name as printed by String back to its value.
func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch s {
	case "dominantcolor", "":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	default:
		return 0, fmt.Errorf("%w: unknown palette method %q", texgen.ErrInvalidParameter, s)
	}
}

// Candidate is a colour found in a texture together with the fraction of
// sampled pixels it stands for.
type Candidate struct {
	Color  colorful.Color
	Weight float64
}

// ExtractPalette returns up to n candidate colours of img, heaviest first.
// The kmeans method falls back to dominantcolor when it finds nothing.
func ExtractPalette(img image.Image, n int, method PaletteMethod) []Candidate {
	if n <= 0 || img.Bounds().Empty() {
		return nil
	}
	var out []Candidate
	if method == PaletteMethodKMeans {
		out = kmeansCandidates(img, n)
		if len(out) == 0 {
			texgen.Logger().Warn("kmeans found no clusters, falling back to dominantcolor")
		}
	}
	if len(out) == 0 {
		out = dominantCandidates(img, n)
	}
	normalize(out)
	return out
}

func dominantCandidates(img image.Image, n int) []Candidate {
	var out []Candidate
	for _, c := range dominantcolor.FindWeight(img, n) {
		if c.Weight <= 0 {
			continue
		}
		col, _ := colorful.MakeColor(c.RGBA)
		out = append(out, Candidate{Color: col.Clamped(), Weight: c.Weight})
	}
	return out
}

// kmeansCandidates clusters a grid sample of at most maxSamples pixels.
func kmeansCandidates(img image.Image, n int) []Candidate {
	const maxSamples = 12000

	b := img.Bounds()
	step := max(1, int(math.Ceil(math.Sqrt(float64(b.Dx()*b.Dy())/maxSamples))))

	var dataset clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			col, _ := colorful.MakeColor(img.At(x, y))
			dataset = append(dataset, clusters.Coordinates{col.R, col.G, col.B})
		}
	}

	cc, err := kmeans.New().Partition(dataset, min(n, len(dataset)))
	if err != nil {
		texgen.Logger().Debug("kmeans partition failed", "err", err)
		return nil
	}

	var out []Candidate
	for _, c := range cc {
		if len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}
		out = append(out, Candidate{Color: col.Clamped(), Weight: float64(len(c.Observations))})
	}
	return out
}

// normalize scales weights to sum to one and sorts heaviest first.
func normalize(cands []Candidate) {
	total := 0.0
	for _, c := range cands {
		total += c.Weight
	}
	for i := range cands {
		cands[i].Weight /= total
	}
	slices.SortStableFunc(cands, func(a, b Candidate) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return 0
	})
}

// PaletteMatch pairs an expected tile colour with the closest extracted one.
type PaletteMatch struct {
	Want     texgen.RGB
	Got      colorful.Color
	Distance float64 // Lab distance, +Inf when nothing was extracted
}

// MatchPalette finds, for every colour in want, the nearest candidate in Lab.
func MatchPalette(cands []Candidate, want ...texgen.RGB) []PaletteMatch {
	out := make([]PaletteMatch, len(want))
	for i, w := range want {
		out[i] = PaletteMatch{Want: w, Distance: math.Inf(1)}
		wc := w.Colorful()
		for _, c := range cands {
			if d := wc.DistanceLab(c.Color); d < out[i].Distance {
				out[i].Got = c.Color
				out[i].Distance = d
			}
		}
	}
	return out
}

// CheckPalette extracts the palette of img and matches it against the two
// tile colours of opt. It fails with ErrMismatch when either colour has no
// candidate within tol.
func CheckPalette(img image.Image, opt texgen.Options, method PaletteMethod, tol float64) ([]PaletteMatch, error) {
	cands := ExtractPalette(img, 4, method)
	matches := MatchPalette(cands, opt.ColorA, opt.ColorB)
	for _, m := range matches {
		if m.Distance > tol {
			return matches, fmt.Errorf("%w: no %s colour within %.3f of %s (closest %.3f)",
				ErrMismatch, method, tol, m.Want.Hex(), m.Distance)
		}
	}
	return matches, nil
}

// SortByLightness orders colours by Lab lightness, darkest first.
func SortByLightness(colors []texgen.RGB) {
	slices.SortStableFunc(colors, func(a, b texgen.RGB) int {
		la, _, _ := a.Colorful().Lab()
		lb, _, _ := b.Colorful().Lab()
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})
}

// SavePalette writes colours as a strip of tileSize squares.
func SavePalette(colors []texgen.RGB, tileSize int, filename string) error {
	if len(colors) == 0 {
		return fmt.Errorf("%w: empty palette", texgen.ErrInvalidParameter)
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(colors), tileSize))
	for i, c := range colors {
		rgba := color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
		for y := range tileSize {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetRGBA(x, y, rgba)
			}
		}
	}
	return texgen.WritePNG(img, filename)
}
