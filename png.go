package texgen

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
)

// EncodePNG writes img to w as PNG. An *ImageBuffer is encoded as opaque
// RGBA, which the encoder stores as 24-bit truecolour without alpha.
func EncodePNG(w io.Writer, img image.Image) error {
	if buf, ok := img.(*ImageBuffer); ok {
		img = buf.ToRGBA()
	}
	return png.Encode(w, img)
}

// WritePNG encodes img and stores it at path, replacing any existing file.
// The data goes to a temporary file in the same directory first, so a failed
// write never leaves a partial file at path.
func WritePNG(img image.Image, path string) error {
	f, err := createTemp(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrIO, path, err)
	}
	tmp := f.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmp)
	}()

	if err := EncodePNG(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: encode %s: %w", ErrIO, path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: sync %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrIO, path, err)
	}

	b := img.Bounds()
	Logger().Debug("png written", "path", path, "width", b.Dx(), "height", b.Dy())
	return nil
}

// createTemp opens a new file next to path. Unlike os.CreateTemp it uses mode
// 0666 before umask, so the renamed result has the permissions os.Create
// would give it.
func createTemp(path string) (*os.File, error) {
	dir, base := filepath.Split(path)
	var err error
	for range 100 {
		name := filepath.Join(dir, "."+base+"."+strconv.FormatUint(rand.Uint64(), 36)+".tmp")
		var f *os.File
		f, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
		if !errors.Is(err, fs.ErrExist) {
			return f, err
		}
	}
	return nil, err
}

// ReadPNG decodes the PNG at path into a buffer.
func ReadPNG(path string) (*ImageBuffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrIO, path, err)
	}
	return FromImage(img), nil
}
