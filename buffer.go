package texgen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxPixels caps the size of a single buffer. Larger requests fail with
// ErrResourceExhausted instead of attempting the allocation.
const MaxPixels = 1 << 28

// RGB is an opaque 8-bit colour.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Colorful converts c to a go-colorful colour with channels in [0,1].
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Hex returns c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// RGBFromColorful clamps col and rounds it to 8-bit channels.
func RGBFromColorful(col colorful.Color) RGB {
	r, g, b := col.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// ImageBuffer is a width × height grid of RGB pixels.
type ImageBuffer struct {
	W, H int
	Pix  []uint8 // Interleaved RGB, len = W*H*3
}

// NewImageBuffer allocates a zeroed buffer.
func NewImageBuffer(w, h int) (*ImageBuffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: buffer size %dx%d", ErrInvalidParameter, w, h)
	}
	if w > MaxPixels/h || w*h > math.MaxInt/3 {
		return nil, fmt.Errorf("%w: buffer size %dx%d exceeds %d pixels", ErrResourceExhausted, w, h, MaxPixels)
	}
	return &ImageBuffer{
		W:   w,
		H:   h,
		Pix: make([]uint8, w*h*3),
	}, nil
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

func (b *ImageBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.W && y >= 0 && y < b.H
}

// RGBAt returns the pixel at (x, y), or black outside the buffer.
func (b *ImageBuffer) RGBAt(x, y int) RGB {
	if !b.inBounds(x, y) {
		return RGB{}
	}
	off := pixOffset(b.W, x, y)
	return RGB{R: b.Pix[off], G: b.Pix[off+1], B: b.Pix[off+2]}
}

// SetRGB sets the pixel at (x, y). Coordinates outside the buffer are ignored.
func (b *ImageBuffer) SetRGB(x, y int, c RGB) {
	if !b.inBounds(x, y) {
		return
	}
	off := pixOffset(b.W, x, y)
	b.Pix[off] = c.R
	b.Pix[off+1] = c.G
	b.Pix[off+2] = c.B
}

// Bounds implements image.Image.
func (b *ImageBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.W, b.H)
}

// ColorModel implements image.Image.
func (b *ImageBuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// At implements image.Image.
func (b *ImageBuffer) At(x, y int) color.Color {
	c := b.RGBAt(x, y)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// ToRGBA copies the buffer into an opaque *image.RGBA.
func (b *ImageBuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	n := b.W * b.H
	for i := range n {
		src := i * 3
		dst := i * 4
		img.Pix[dst] = b.Pix[src]
		img.Pix[dst+1] = b.Pix[src+1]
		img.Pix[dst+2] = b.Pix[src+2]
		img.Pix[dst+3] = 255
	}
	return img
}

// Equal reports whether both buffers have the same size and pixels.
func (b *ImageBuffer) Equal(other *ImageBuffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.W == other.W && b.H == other.H && bytes.Equal(b.Pix, other.Pix)
}

// FromImage flattens img to 8-bit RGB. Alpha is dropped.
func FromImage(img image.Image) *ImageBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	buf := &ImageBuffer{
		W:   w,
		H:   h,
		Pix: make([]uint8, w*h*3),
	}
	for y := range h {
		for x := range w {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := pixOffset(w, x, y)
			buf.Pix[off] = uint8(r >> 8)
			buf.Pix[off+1] = uint8(g >> 8)
			buf.Pix[off+2] = uint8(b >> 8)
		}
	}
	return buf
}
