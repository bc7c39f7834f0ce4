package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/setanarut/texgen"
	"github.com/setanarut/texgen/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(defaultOutput), 0o755))

	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Created "+defaultOutput+"\n", stdout.String())

	img, err := texgen.ReadPNG(filepath.Join(dir, defaultOutput))
	require.NoError(t, err)
	want, err := texgen.Generate(texgen.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, want.Equal(img))
}

func TestRunMissingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	code := run(nil, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "texgen failed")
}

func TestRunMkdirAndOptions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "b", "tex.png")

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-o", out, "-mkdir",
		"-width", "40", "-height", "20", "-square", "10",
		"-color-a", "0,0,0", "-color-b", "#ffffff",
		"-workers", "3",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	img, err := texgen.ReadPNG(out)
	require.NoError(t, err)
	assert.Equal(t, 40, img.W)
	assert.Equal(t, 20, img.H)
	assert.Equal(t, texgen.RGB{}, img.RGBAt(0, 0))
	assert.Equal(t, texgen.RGB{R: 255, G: 255, B: 255}, img.RGBAt(10, 0))
	assert.Equal(t, texgen.RGB{}, img.RGBAt(39, 19))
}

func TestRunInvalidParameters(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"-width", "0"},
		{"-square", "-1"},
		{"-color-a", "#zzzzzz"},
		{"-palette", "median-cut"},
	} {
		out := filepath.Join(dir, "tex.png")
		var stdout, stderr bytes.Buffer
		code := run(append(args, "-o", out), &stdout, &stderr)
		assert.Equal(t, 1, code, args)
		assert.NoFileExists(t, out)
	}
}

func TestRunBadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-nope"}, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"extra"}, &stdout, &stderr))
	assert.Equal(t, 0, run([]string{"-h"}, &stdout, &stderr))
}

func TestRunInspect(t *testing.T) {
	for _, method := range []string{"dominantcolor", "kmeans"} {
		out := filepath.Join(t.TempDir(), "tex.png")

		var stdout, stderr bytes.Buffer
		code := run([]string{"-o", out, "-inspect", "-palette", method}, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())

		got := stdout.String()
		assert.Contains(t, got, "256x256\n")
		assert.Contains(t, got, "#6464ff (100,100,255) 32768 px (50.0%)")
		assert.Contains(t, got, "#ff6464 (255,100,100) 32768 px (50.0%)")
		assert.Contains(t, got, "tiles: 32 #ff6464, 32 #6464ff (share deviation 0)")
		assert.Contains(t, got, "palette ("+method+"):\n")
		assert.Regexp(t, `#ff6464 -> #[0-9a-f]{6} \(dE 0\.0[01]\d\d\)`, got)
		assert.Regexp(t, `#6464ff -> #[0-9a-f]{6} \(dE 0\.0[01]\d\d\)`, got)
	}
}

func TestInspectMismatch(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tex.png")
	opt := texgen.DefaultOptions()
	buf, err := texgen.Generate(opt)
	require.NoError(t, err)
	require.NoError(t, texgen.WritePNG(buf, out))

	opt.ColorB = texgen.RGB{G: 255}
	var stdout bytes.Buffer
	err = inspect(out, opt, utils.PaletteMethodDominantColor, &stdout)
	assert.ErrorIs(t, err, utils.ErrMismatch)
}
