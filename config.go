// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

// Default configuration values.
const (
	// DefaultTileSize is the default layer width and height.
	DefaultTileSize = 1024

	// MinTileSize is the smallest accepted layer dimension.
	MinTileSize = 16

	// MaxTileSize is the largest accepted layer dimension.
	MaxTileSize = 8192

	// DefaultMaxLayers bounds growth when Config.MaxLayers is zero.
	DefaultMaxLayers = 256
)

// Config holds cache configuration.
type Config struct {
	// TileWidth and TileHeight are the fixed extent of every layer.
	// Default: 1024x1024
	TileWidth  int
	TileHeight int

	// InitialLayers is the layer count of the first texture array.
	// Default: 1
	InitialLayers int

	// MaxLayers limits growth. Default: 256
	MaxLayers int

	// Padding is left empty to the right of and below each packed rect
	// to prevent sampling bleed. Default: 0
	Padding int

	// Format is the pixel format of the texture array.
	// Default: FormatRGBA8
	Format Format

	// Label is an optional debug label for GPU resources.
	Label string
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		TileWidth:     DefaultTileSize,
		TileHeight:    DefaultTileSize,
		InitialLayers: 1,
		MaxLayers:     DefaultMaxLayers,
		Padding:       0,
		Format:        FormatRGBA8,
		Label:         "atlas",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TileWidth == 0 {
		c.TileWidth = d.TileWidth
	}
	if c.TileHeight == 0 {
		c.TileHeight = d.TileHeight
	}
	if c.InitialLayers == 0 {
		c.InitialLayers = d.InitialLayers
	}
	if c.MaxLayers == 0 {
		c.MaxLayers = d.MaxLayers
	}
	if c.Label == "" {
		c.Label = d.Label
	}
	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TileWidth < MinTileSize {
		return &ConfigError{Field: "TileWidth", Reason: "must be at least 16"}
	}
	if c.TileWidth > MaxTileSize {
		return &ConfigError{Field: "TileWidth", Reason: "must be at most 8192"}
	}
	if c.TileHeight < MinTileSize {
		return &ConfigError{Field: "TileHeight", Reason: "must be at least 16"}
	}
	if c.TileHeight > MaxTileSize {
		return &ConfigError{Field: "TileHeight", Reason: "must be at most 8192"}
	}
	if c.InitialLayers < 1 {
		return &ConfigError{Field: "InitialLayers", Reason: "must be at least 1"}
	}
	if c.MaxLayers < c.InitialLayers {
		return &ConfigError{Field: "MaxLayers", Reason: "must be at least InitialLayers"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	if c.Padding >= c.TileWidth/2 || c.Padding >= c.TileHeight/2 {
		return &ConfigError{Field: "Padding", Reason: "must be less than half the tile extent"}
	}
	if c.Format.BytesPerPixel() == 0 {
		return &ConfigError{Field: "Format", Reason: "unknown pixel format"}
	}
	return nil
}
