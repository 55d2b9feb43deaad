// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/atlas"
)

// config is the demo configuration. Values come from defaults, then an
// optional TOML file, then flags set on the command line.
type config struct {
	// Backend names a registered backend; empty selects the best one.
	Backend string `toml:"backend"`

	// Sprites is a directory of PNG files. Empty generates sprites.
	Sprites string `toml:"sprites"`

	// Font is a TTF/OTF file. Empty uses Go Regular.
	Font     string  `toml:"font"`
	Text     string  `toml:"text"`
	FontSize float64 `toml:"font_size"`

	// Frames is the number of simulated frames, each ending in a trim.
	Frames int `toml:"frames"`

	Output  string `toml:"output"`
	Verbose bool   `toml:"verbose"`

	Atlas atlasConfig `toml:"atlas"`
}

type atlasConfig struct {
	TileSize      int `toml:"tile_size"`
	InitialLayers int `toml:"initial_layers"`
	MaxLayers     int `toml:"max_layers"`
	Padding       int `toml:"padding"`
}

func defaultConfig() config {
	return config{
		Text:     "The quick brown fox jumps over the lazy dog",
		FontSize: 24,
		Frames:   4,
		Output:   "atlasdemo-out",
		Atlas: atlasConfig{
			TileSize:      256,
			InitialLayers: 1,
			MaxLayers:     atlas.DefaultMaxLayers,
			Padding:       1,
		},
	}
}

// cacheConfig converts the [atlas] table into an atlas.Config.
func (c atlasConfig) cacheConfig(label string, format atlas.Format) atlas.Config {
	return atlas.Config{
		TileWidth:     c.TileSize,
		TileHeight:    c.TileSize,
		InitialLayers: c.InitialLayers,
		MaxLayers:     c.MaxLayers,
		Padding:       c.Padding,
		Format:        format,
		Label:         label,
	}
}

// loadConfig parses args. A -config file is decoded over the defaults and
// any flag given explicitly overrides the file.
func loadConfig(args []string) (config, error) {
	cfg := defaultConfig()
	def := cfg

	fs := flag.NewFlagSet("atlasdemo", flag.ContinueOnError)
	var (
		path     = fs.String("config", "", "TOML configuration file")
		backend  = fs.String("backend", def.Backend, "backend name (native, soft); empty picks the best")
		sprites  = fs.String("sprites", def.Sprites, "directory of PNG sprites")
		fontPath = fs.String("font", def.Font, "font file (default Go Regular)")
		text     = fs.String("text", def.Text, "text sample")
		size     = fs.Float64("size", def.FontSize, "font size in pixels")
		frames   = fs.Int("frames", def.Frames, "frames to simulate")
		tile     = fs.Int("tile", def.Atlas.TileSize, "atlas layer size")
		output   = fs.String("output", def.Output, "output directory")
		verbose  = fs.Bool("v", def.Verbose, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if *path != "" {
		md, err := toml.DecodeFile(*path, &cfg)
		if err != nil {
			return config{}, fmt.Errorf("read config: %w", err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return config{}, fmt.Errorf("config %s: unknown key %q", *path, keys[0].String())
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "sprites":
			cfg.Sprites = *sprites
		case "font":
			cfg.Font = *fontPath
		case "text":
			cfg.Text = *text
		case "size":
			cfg.FontSize = *size
		case "frames":
			cfg.Frames = *frames
		case "tile":
			cfg.Atlas.TileSize = *tile
		case "output":
			cfg.Output = *output
		case "v":
			cfg.Verbose = *verbose
		}
	})

	if cfg.Frames < 1 {
		return config{}, fmt.Errorf("frames must be at least 1, got %d", cfg.Frames)
	}
	if cfg.FontSize <= 0 {
		return config{}, fmt.Errorf("font size must be positive, got %v", cfg.FontSize)
	}
	return cfg, nil
}
