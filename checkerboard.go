package texgen

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type Options struct {
	// Image size in pixels. Both must be positive.
	Width  int
	Height int
	// Edge length of one square tile in pixels.
	// Values >= max(Width, Height) give a single ColorA tile.
	SquareSize int
	// ColorA fills tiles whose index sum is even, including tile (0,0).
	ColorA RGB
	// ColorB fills the remaining tiles.
	ColorB RGB
	// Number of goroutines filling row bands.
	// 0 uses GOMAXPROCS, 1 fills serially. Output does not depend on it.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Width:      256,
		Height:     256,
		SquareSize: 32,
		ColorA:     RGB{R: 255, G: 100, B: 100},
		ColorB:     RGB{R: 100, G: 100, B: 255},
	}
}

func (o Options) Validate() error {
	if o.Width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidParameter, o.Width)
	}
	if o.Height <= 0 {
		return fmt.Errorf("%w: height must be positive, got %d", ErrInvalidParameter, o.Height)
	}
	if o.SquareSize <= 0 {
		return fmt.Errorf("%w: square size must be positive, got %d", ErrInvalidParameter, o.SquareSize)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidParameter, o.Workers)
	}
	return nil
}

// ColorAt applies the parity rule to pixel (x, y).
// SquareSize must be positive.
func (o Options) ColorAt(x, y int) RGB {
	if (x/o.SquareSize+y/o.SquareSize)%2 == 0 {
		return o.ColorA
	}
	return o.ColorB
}

// TileGrid returns the number of tile columns and rows, counting partial
// tiles at the right and bottom edges.
func (o Options) TileGrid() (cols, rows int) {
	return ceilDiv(o.Width, o.SquareSize), ceilDiv(o.Height, o.SquareSize)
}

func ceilDiv(n, d int) int {
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}

// TileCounts returns how many tiles get ColorA and ColorB.
func (o Options) TileCounts() (a, b int) {
	cols, rows := o.TileGrid()
	n := cols * rows
	a = (n + 1) / 2
	return a, n - a
}

// Generate renders a checkerboard according to opt.
func Generate(opt Options) (*ImageBuffer, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	buf, err := NewImageBuffer(opt.Width, opt.Height)
	if err != nil {
		return nil, err
	}

	workers := opt.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, opt.Height)

	if workers == 1 {
		fillRows(buf, opt, 0, opt.Height)
	} else {
		var g errgroup.Group
		for _, band := range rowBands(opt.Height, workers) {
			g.Go(func() error {
				fillRows(buf, opt, band[0], band[1])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	Logger().Debug("checkerboard generated",
		"width", opt.Width,
		"height", opt.Height,
		"square", opt.SquareSize,
		"colorA", opt.ColorA.Hex(),
		"colorB", opt.ColorB.Hex(),
		"workers", workers,
	)
	return buf, nil
}

// rowBands splits [0, height) into at most workers contiguous, disjoint
// [y0, y1) ranges of near-equal size.
func rowBands(height, workers int) [][2]int {
	size := (height + workers - 1) / workers
	bands := make([][2]int, 0, workers)
	for y0 := 0; y0 < height; y0 += size {
		bands = append(bands, [2]int{y0, min(y0+size, height)})
	}
	return bands
}

// fillRows fills rows [y0, y1). Within a row the colour only changes at tile
// boundaries, so whole runs are written at once.
func fillRows(buf *ImageBuffer, opt Options, y0, y1 int) {
	w := buf.W
	s := opt.SquareSize
	for y := y0; y < y1; y++ {
		for x0 := 0; x0 < w; x0 += s {
			c := opt.ColorAt(x0, y)
			x1 := min(x0+s, w)
			for off := pixOffset(w, x0, y); off < pixOffset(w, x1, y); off += 3 {
				buf.Pix[off] = c.R
				buf.Pix[off+1] = c.G
				buf.Pix[off+2] = c.B
			}
		}
	}
}
