// Command texgen writes a checkerboard placeholder texture.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/setanarut/texgen"
	"github.com/setanarut/texgen/utils"
)

const defaultOutput = "steps/Step03_Texture/assets/texture.png"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type config struct {
	output  string
	colorA  string
	colorB  string
	mkdir   bool
	inspect bool
	palette string
	verbose bool
	opt     texgen.Options
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	def := texgen.DefaultOptions()
	cfg := &config{opt: def}

	fs := flag.NewFlagSet("texgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.output, "o", defaultOutput, "output PNG path")
	fs.IntVar(&cfg.opt.Width, "width", def.Width, "image width in pixels")
	fs.IntVar(&cfg.opt.Height, "height", def.Height, "image height in pixels")
	fs.IntVar(&cfg.opt.SquareSize, "square", def.SquareSize, "square size in pixels")
	fs.StringVar(&cfg.colorA, "color-a", def.ColorA.Hex(), "color of tile (0,0), as #rrggbb or r,g,b")
	fs.StringVar(&cfg.colorB, "color-b", def.ColorB.Hex(), "alternate tile color, as #rrggbb or r,g,b")
	fs.IntVar(&cfg.opt.Workers, "workers", 0, "fill goroutines (0 = GOMAXPROCS)")
	fs.BoolVar(&cfg.mkdir, "mkdir", false, "create the output directory if missing")
	fs.BoolVar(&cfg.inspect, "inspect", false, "read the written file back and check its colors")
	fs.StringVar(&cfg.palette, "palette", utils.PaletteMethodDominantColor.String(), "palette method for -inspect: dominantcolor or kmeans")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %v", fs.Args())
		fmt.Fprintln(stderr, err)
		return nil, err
	}
	return cfg, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	} else if err != nil {
		return 2
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	texgen.SetLogger(logger)
	defer texgen.SetLogger(nil)

	if err := generate(cfg, stdout); err != nil {
		logger.Error("texgen failed", "err", err)
		return 1
	}
	return 0
}

func generate(cfg *config, stdout io.Writer) error {
	var err error
	if cfg.opt.ColorA, err = utils.ParseColor(cfg.colorA); err != nil {
		return err
	}
	if cfg.opt.ColorB, err = utils.ParseColor(cfg.colorB); err != nil {
		return err
	}
	method, err := utils.ParsePaletteMethod(cfg.palette)
	if err != nil {
		return err
	}

	buf, err := texgen.Generate(cfg.opt)
	if err != nil {
		return err
	}

	if cfg.mkdir {
		if err := os.MkdirAll(filepath.Dir(cfg.output), 0o755); err != nil {
			return fmt.Errorf("%w: mkdir: %w", texgen.ErrIO, err)
		}
	}
	if err := texgen.WritePNG(buf, cfg.output); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Created %s\n", cfg.output)

	if cfg.inspect {
		return inspect(cfg.output, cfg.opt, method, stdout)
	}
	return nil
}

// inspect reads the written file back and checks its size, colour shares and
// extracted palette against opt.
func inspect(path string, opt texgen.Options, method utils.PaletteMethod, stdout io.Writer) error {
	img, err := texgen.ReadPNG(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%dx%d\n", img.W, img.H)
	for _, cc := range utils.Histogram(img) {
		fmt.Fprintf(stdout, "  %s %s %d px (%.1f%%)\n", cc.Color.Hex(), cc.Color, cc.Pixels, cc.Share*100)
	}

	dev, err := utils.CheckShares(img, opt)
	if err != nil {
		return err
	}
	a, b := opt.TileCounts()
	fmt.Fprintf(stdout, "tiles: %d %s, %d %s (share deviation %.3g)\n", a, opt.ColorA.Hex(), b, opt.ColorB.Hex(), dev)

	matches, err := utils.CheckPalette(img, opt, method, utils.DefaultTolerance)
	fmt.Fprintf(stdout, "palette (%s):\n", method)
	for _, m := range matches {
		fmt.Fprintf(stdout, "  %s -> %s (dE %.4f)\n", m.Want.Hex(), m.Got.Hex(), m.Distance)
	}
	return err
}
