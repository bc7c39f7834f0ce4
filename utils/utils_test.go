package utils

import (
	"image"
	"math"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/setanarut/texgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = texgen.RGB{R: 255, G: 100, B: 100}
	blue = texgen.RGB{R: 100, G: 100, B: 255}
)

func board(t *testing.T, opt texgen.Options) *texgen.ImageBuffer {
	buf, err := texgen.Generate(opt)
	require.NoError(t, err)
	return buf
}

func TestExtractPaletteDefaultBoard(t *testing.T) {
	opt := texgen.DefaultOptions()
	img := board(t, opt)

	for _, method := range []PaletteMethod{PaletteMethodDominantColor, PaletteMethodKMeans} {
		cands := ExtractPalette(img, 4, method)
		require.NotEmpty(t, cands, method.String())

		total := 0.0
		for i, c := range cands {
			total += c.Weight
			if i > 0 {
				assert.GreaterOrEqual(t, cands[i-1].Weight, c.Weight, method.String())
			}
		}
		assert.InDelta(t, 1, total, 1e-9, method.String())

		matches, err := CheckPalette(img, opt, method, DefaultTolerance)
		require.NoError(t, err, method.String())
		require.Len(t, matches, 2)
		assert.Equal(t, red, matches[0].Want)
		assert.Equal(t, blue, matches[1].Want)
		for _, m := range matches {
			assert.Less(t, m.Distance, DefaultTolerance, method.String())
		}
		assert.NotEqual(t, matches[0].Got.Hex(), matches[1].Got.Hex(), method.String())
	}
}

func TestCheckPaletteMismatch(t *testing.T) {
	img := board(t, texgen.Options{
		Width: 64, Height: 64, SquareSize: 8,
		ColorA: texgen.RGB{G: 200},
		ColorB: texgen.RGB{R: 20, G: 20, B: 20},
	})

	for _, method := range []PaletteMethod{PaletteMethodDominantColor, PaletteMethodKMeans} {
		matches, err := CheckPalette(img, texgen.DefaultOptions(), method, DefaultTolerance)
		assert.ErrorIs(t, err, ErrMismatch, method.String())
		require.Len(t, matches, 2)
		assert.Greater(t, matches[0].Distance, DefaultTolerance)
	}
}

func TestMatchPalette(t *testing.T) {
	matches := MatchPalette(nil, red)
	require.Len(t, matches, 1)
	assert.True(t, math.IsInf(matches[0].Distance, 1))

	nearRed := colorful.Color{R: 0.99, G: 100.0 / 255, B: 100.0 / 255}
	matches = MatchPalette([]Candidate{
		{Color: blue.Colorful(), Weight: 0.6},
		{Color: nearRed, Weight: 0.4},
	}, red, blue)
	require.Len(t, matches, 2)
	assert.Equal(t, nearRed, matches[0].Got)
	assert.Greater(t, matches[0].Distance, 0.0)
	assert.Equal(t, blue.Colorful(), matches[1].Got)
	assert.InDelta(t, 0, matches[1].Distance, 1e-9)
}

func TestExtractPaletteEmpty(t *testing.T) {
	assert.Nil(t, ExtractPalette(board(t, texgen.DefaultOptions()), 0, PaletteMethodDominantColor))
	assert.Nil(t, ExtractPalette(image.NewRGBA(image.Rectangle{}), 4, PaletteMethodKMeans))
}

func TestSortByLightness(t *testing.T) {
	colors := []texgen.RGB{{R: 255, G: 255, B: 255}, {}, red, {R: 128, G: 128, B: 128}}
	SortByLightness(colors)
	assert.Equal(t, []texgen.RGB{{}, {R: 128, G: 128, B: 128}, red, {R: 255, G: 255, B: 255}}, colors)
}

func TestSavePalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.png")
	require.NoError(t, SavePalette([]texgen.RGB{red, blue}, 16, path))

	img, err := texgen.ReadPNG(path)
	require.NoError(t, err)
	assert.Equal(t, 32, img.W)
	assert.Equal(t, 16, img.H)
	assert.Equal(t, red, img.RGBAt(0, 0))
	assert.Equal(t, red, img.RGBAt(15, 15))
	assert.Equal(t, blue, img.RGBAt(16, 0))
	assert.Equal(t, blue, img.RGBAt(31, 15))

	err = SavePalette(nil, 16, path)
	assert.ErrorIs(t, err, texgen.ErrInvalidParameter)
}
