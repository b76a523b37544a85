package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chris17453/imagetosvg"
	"github.com/chris17453/imagetosvg/internal/logging"
	"github.com/chris17453/imagetosvg/utils"
	"github.com/rs/zerolog/log"
)

type cliFlags struct {
	configPath    string
	output        string
	colors        int
	minArea       int
	simplify      int
	layer         string
	border        int
	seed          uint64
	seeding       string
	iterations    int
	workers       int
	maxSize       int
	separate      bool
	runs          bool
	jsonPath      string
	palettePath   string
	quantizedPath string
}

func parseFlags(args []string) (cliFlags, map[string]bool, []string, error) {
	def := imagetosvg.DefaultOptions()
	var f cliFlags
	fs := flag.NewFlagSet("imagetosvg", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: imagetosvg [flags] <input image>\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&f.configPath, "config", "", "TOML config file; flags override its keys")
	fs.StringVar(&f.output, "o", "", "output SVG file (default: input name with .svg)")
	fs.IntVar(&f.colors, "c", def.Colors, "number of colors")
	fs.IntVar(&f.minArea, "m", def.MinArea, "minimum area for shapes")
	fs.IntVar(&f.simplify, "s", def.SimplifyFactor, "path simplification factor")
	fs.StringVar(&f.layer, "l", def.LayerMethod.String(), "layering method: dark_first|light_first|area|hue")
	fs.IntVar(&f.border, "b", def.MirrorBorder, "mirror border in pixels")
	fs.Uint64Var(&f.seed, "seed", def.Seed, "k-means seed")
	fs.StringVar(&f.seeding, "seeding", def.Seeding.String(), "centroid seeding: kmeans++|dominant")
	fs.IntVar(&f.iterations, "iterations", def.MaxIterations, "k-means iteration cap")
	fs.IntVar(&f.workers, "workers", def.Workers, "worker goroutines (0 = all CPUs)")
	fs.IntVar(&f.maxSize, "max-size", 0, "downscale so the longest side is at most this (0 = off)")
	fs.BoolVar(&f.separate, "separate", false, "one nonzero path per contour instead of one even-odd path per color (fills holes)")
	fs.BoolVar(&f.runs, "runs", false, "write lossless run rectangles instead of traced paths")
	fs.StringVar(&f.jsonPath, "json", "", "also write the drawing as JSON to this file")
	fs.StringVar(&f.palettePath, "palette", "", "also write a palette swatch PNG to this file")
	fs.StringVar(&f.quantizedPath, "quantized", "", "also write the quantized image PNG to this file")
	if err := fs.Parse(args); err != nil {
		return cliFlags{}, nil, nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, fs.Args(), nil
}

// resolveConfig applies defaults, then the config file, then explicitly set flags.
func resolveConfig(f cliFlags, set map[string]bool) (runConfig, error) {
	cfg := defaultRunConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = loadRunConfig(f.configPath, cfg); err != nil {
			return runConfig{}, err
		}
	}
	if set["c"] {
		cfg.Options.Colors = f.colors
	}
	if set["m"] {
		cfg.Options.MinArea = f.minArea
	}
	if set["s"] {
		cfg.Options.SimplifyFactor = f.simplify
	}
	if set["l"] {
		m, err := imagetosvg.ParseLayerMethod(f.layer)
		if err != nil {
			return runConfig{}, err
		}
		cfg.Options.LayerMethod = m
	}
	if set["b"] {
		cfg.Options.MirrorBorder = f.border
	}
	if set["seed"] {
		cfg.Options.Seed = f.seed
	}
	if set["seeding"] {
		s, err := imagetosvg.ParseSeeding(f.seeding)
		if err != nil {
			return runConfig{}, err
		}
		cfg.Options.Seeding = s
	}
	if set["iterations"] {
		cfg.Options.MaxIterations = f.iterations
	}
	if set["workers"] {
		cfg.Options.Workers = f.workers
	}
	if set["max-size"] {
		cfg.MaxSize = f.maxSize
	}
	if set["separate"] {
		cfg.SeparatePaths = f.separate
	}
	if err := cfg.Options.Validate(); err != nil {
		return runConfig{}, err
	}
	if cfg.MaxSize < 0 {
		return runConfig{}, fmt.Errorf("%w: max size must be >= 0, got %d", imagetosvg.ErrInvalidOptions, cfg.MaxSize)
	}
	return cfg, nil
}

func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func run(args []string) error {
	f, set, rest, err := parseFlags(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("expected one input image, got %d arguments", len(rest))
	}
	input := rest[0]
	cfg, err := resolveConfig(f, set)
	if err != nil {
		return err
	}
	output := f.output
	if output == "" {
		output = defaultOutput(input)
	}

	log.Info().
		Str("input", input).
		Int("colors", cfg.Options.Colors).
		Str("layer", cfg.Options.LayerMethod.String()).
		Msg("converting")

	pixels, err := utils.ReadPixels(input, cfg.MaxSize)
	if err != nil {
		return err
	}
	builder := imagetosvg.NewBuilder(pixels, cfg.Options)
	drawing, err := builder.Build()
	if err != nil {
		return err
	}

	if f.runs {
		err = writeFile(output, func(w *os.File) error {
			return utils.WriteRunsSVG(w, builder.Labels, builder.Palette)
		})
	} else {
		err = writeFile(output, func(w *os.File) error {
			return utils.WriteSVG(w, drawing, utils.SVGOptions{SeparatePaths: cfg.SeparatePaths})
		})
	}
	if err != nil {
		return err
	}
	if f.jsonPath != "" {
		if err := writeFile(f.jsonPath, func(w *os.File) error { return utils.WriteJSON(w, drawing) }); err != nil {
			return err
		}
	}
	if f.palettePath != "" {
		if err := utils.SavePalette(builder.Palette, 64, f.palettePath); err != nil {
			return err
		}
	}
	if f.quantizedPath != "" {
		recon := builder.Reconstruct()
		if recon == nil {
			log.Warn().Msg("quantized image skipped: palette exceeds 256 colors")
		} else if err := utils.SaveImage(recon, f.quantizedPath); err != nil {
			return err
		}
	}

	log.Info().
		Str("output", output).
		Int("groups", len(drawing.Groups)).
		Int("paths", drawing.ContourCount()).
		Msg("SVG saved")
	return nil
}

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("conversion failed")
	}
}
