package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chris17453/imagetosvg"
)

// config.toml key mapping to run settings.
type fileConfig struct {
	Colors         int    `toml:"colors"`
	MinArea        int    `toml:"min_area"`
	SimplifyFactor int    `toml:"simplify_factor"`
	LayerMethod    string `toml:"layer_method"`
	MirrorBorder   int    `toml:"mirror_border"`
	Seed           int64  `toml:"seed"`
	MaxIterations  int    `toml:"max_iterations"`
	Seeding        string `toml:"seeding"`
	Workers        int    `toml:"workers"`
	MaxSize        int    `toml:"max_size"`
	SeparatePaths  bool   `toml:"separate_paths"`
}

type runConfig struct {
	Options imagetosvg.Options
	// Longest image side before quantization. 0 keeps the original size.
	MaxSize int
	// Per-contour SVG paths instead of one even-odd path per color.
	SeparatePaths bool
}

func defaultRunConfig() runConfig {
	return runConfig{Options: imagetosvg.DefaultOptions()}
}

// loadRunConfig overlays the keys present in the TOML file at path onto cfg.
// Validation happens after flags are applied.
func loadRunConfig(path string, cfg runConfig) (runConfig, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runConfig{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return runConfig{}, fmt.Errorf("load config: unknown keys %s", strings.Join(keys, ", "))
	}

	if meta.IsDefined("colors") {
		cfg.Options.Colors = raw.Colors
	}
	if meta.IsDefined("min_area") {
		cfg.Options.MinArea = raw.MinArea
	}
	if meta.IsDefined("simplify_factor") {
		cfg.Options.SimplifyFactor = raw.SimplifyFactor
	}
	if meta.IsDefined("layer_method") {
		m, err := imagetosvg.ParseLayerMethod(raw.LayerMethod)
		if err != nil {
			return runConfig{}, fmt.Errorf("load config: %w", err)
		}
		cfg.Options.LayerMethod = m
	}
	if meta.IsDefined("mirror_border") {
		cfg.Options.MirrorBorder = raw.MirrorBorder
	}
	if meta.IsDefined("seed") {
		if raw.Seed < 0 {
			return runConfig{}, fmt.Errorf("load config: %w: seed must be >= 0", imagetosvg.ErrInvalidOptions)
		}
		cfg.Options.Seed = uint64(raw.Seed)
	}
	if meta.IsDefined("max_iterations") {
		cfg.Options.MaxIterations = raw.MaxIterations
	}
	if meta.IsDefined("seeding") {
		s, err := imagetosvg.ParseSeeding(raw.Seeding)
		if err != nil {
			return runConfig{}, fmt.Errorf("load config: %w", err)
		}
		cfg.Options.Seeding = s
	}
	if meta.IsDefined("workers") {
		cfg.Options.Workers = raw.Workers
	}
	if meta.IsDefined("max_size") {
		cfg.MaxSize = raw.MaxSize
	}
	if meta.IsDefined("separate_paths") {
		cfg.SeparatePaths = raw.SeparatePaths
	}
	return cfg, nil
}
