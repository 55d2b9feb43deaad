// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"errors"
	"math"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/atlas"
	"github.com/gogpu/atlas/internal/lru"
)

// Key identifies a rasterized glyph in the atlas.
type Key struct {
	// FontID is Font.ID of the source font.
	FontID uint64

	// GID is the glyph index within the font.
	GID uint16

	// Size is the font size in whole pixels per em.
	// Sizes above 32K are rejected.
	Size int16
}

// Config holds glyph atlas configuration.
type Config struct {
	// Atlas configures the underlying cache. Format is forced to R8.
	Atlas atlas.Config

	// RunCacheSize bounds the number of memoized shaped runs.
	// Default: 256
	RunCacheSize int

	// BlankCacheSize bounds the number of remembered glyphs without ink,
	// such as spaces, which are never uploaded.
	// Default: 1024
	BlankCacheSize int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	cfg := atlas.DefaultConfig()
	cfg.Label = "glyphs"
	cfg.Padding = 1
	return Config{
		Atlas:          cfg,
		RunCacheSize:   256,
		BlankCacheSize: 1024,
	}
}

// ErrInvalidSize is returned for font sizes outside (0, 32767].
var ErrInvalidSize = errors.New("glyph: font size out of range")

// Quad is one glyph placed on screen and in the atlas.
type Quad struct {
	// X0, Y0, X1, Y1 are the destination rectangle in pixels, y-down.
	X0, Y0, X1, Y1 float32

	// Alloc is the glyph's atlas allocation.
	Alloc atlas.Allocation

	// U0, V0, U1, V1 are normalized texture coordinates within Alloc.Layer.
	U0, V0, U1, V1 float32
}

// Stats holds glyph atlas statistics.
type Stats struct {
	Cache atlas.Stats
	Runs  lru.Stats
	Blank lru.Stats

	// Rasterized counts glyphs rasterized and uploaded.
	Rasterized uint64
	// Skipped counts glyphs too large for a layer, left out of layouts.
	Skipped uint64
}

// Atlas caches rasterized glyphs in a single-channel atlas texture array
// and lays out text as textured quads.
//
// Atlas is not safe for concurrent use.
type Atlas struct {
	cache  *atlas.Cache[Key, Metrics]
	runs   *lru.Cache[runKey, []Positioned]
	shaper shaper

	// blank remembers glyphs without ink, which never enter the cache.
	blank *lru.Cache[Key, Metrics]

	rasterized uint64
	skipped    uint64
}

// New creates a glyph atlas on device.
func New(device atlas.Device, cfg Config) (*Atlas, error) {
	cfg.Atlas.Format = atlas.FormatR8
	if cfg.Atlas.Label == "" {
		cfg.Atlas.Label = "glyphs"
	}
	if cfg.RunCacheSize <= 0 {
		cfg.RunCacheSize = DefaultConfig().RunCacheSize
	}
	if cfg.BlankCacheSize <= 0 {
		cfg.BlankCacheSize = DefaultConfig().BlankCacheSize
	}

	cache, err := atlas.NewCache[Key, Metrics](device, cfg.Atlas)
	if err != nil {
		return nil, err
	}
	return &Atlas{
		cache: cache,
		runs:  lru.New[runKey, []Positioned](cfg.RunCacheSize),
		blank: lru.New[Key, Metrics](cfg.BlankCacheSize),
	}, nil
}

// Cache returns the underlying atlas cache, for binding through a Group.
func (a *Atlas) Cache() *atlas.Cache[Key, Metrics] {
	return a.cache
}

func keyFor(f *Font, gid uint16, size float64) (Key, error) {
	px := math.Round(size)
	if px <= 0 || px > math.MaxInt16 {
		return Key{}, ErrInvalidSize
	}
	return Key{FontID: f.ID(), GID: gid, Size: int16(px)}, nil
}

// Glyph returns the allocation and metrics of a glyph, rasterizing and
// uploading it on first use. The entry is promoted for the current frame.
// ok is false for glyphs without ink, which occupy no atlas space.
func (a *Atlas) Glyph(f *Font, gid uint16, size float64) (alloc atlas.Allocation, m Metrics, ok bool, err error) {
	key, err := keyFor(f, gid, size)
	if err != nil {
		return atlas.Allocation{}, Metrics{}, false, err
	}

	if alloc, ok := a.cache.GetByKey(key); ok {
		m, _ := a.cache.DataByKey(key)
		return alloc, m, true, nil
	}
	if m, ok := a.blank.Get(key); ok {
		return atlas.Allocation{}, m, false, nil
	}

	bm, err := Rasterize(f, gid, float64(key.Size))
	if err != nil {
		return atlas.Allocation{}, Metrics{}, false, err
	}
	if bm.Metrics.Empty() {
		a.blank.Set(key, bm.Metrics)
		return atlas.Allocation{}, bm.Metrics, false, nil
	}

	_, alloc, err = a.cache.Upload(key, bm.Pix, bm.Metrics.Width, bm.Metrics.Height, bm.Metrics)
	if err != nil {
		return atlas.Allocation{}, bm.Metrics, false, err
	}
	a.rasterized++
	return alloc, bm.Metrics, true, nil
}

// Shape returns the shaped glyphs of text at size, from the run cache
// when possible. Text is normalized to NFC first.
func (a *Atlas) Shape(f *Font, text string, size float64) []Positioned {
	text = normalize(text)
	key := runKey{fontID: f.ID(), size: fixed.Int26_6(math.Round(size) * 64), text: text}
	return a.runs.GetOrCreate(key, func() []Positioned {
		return a.shaper.shape(f, text, key.size)
	})
}

// Layout shapes text and returns one quad per inked glyph, with the run
// origin on the baseline at (x, y). Every glyph used is promoted, so it
// survives the next Trim.
//
// Glyphs larger than a layer are skipped. Device errors abort the layout.
func (a *Atlas) Layout(f *Font, text string, size, x, y float64) ([]Quad, error) {
	if _, err := keyFor(f, 0, size); err != nil {
		return nil, err
	}

	glyphs := a.Shape(f, text, size)
	tw, th := a.cache.TileSize()
	quads := make([]Quad, 0, len(glyphs))

	for _, g := range glyphs {
		alloc, m, ok, err := a.Glyph(f, g.GID, size)
		if errors.Is(err, atlas.ErrOversize) {
			a.skipped++
			atlas.Logger().Debug("glyph: skipped oversize glyph", "gid", g.GID, "size", size)
			continue
		}
		if err != nil {
			return quads, err
		}
		if !ok {
			continue
		}

		x0 := float32(x) + g.X + float32(m.BearingX)
		y0 := float32(y) + g.Y + float32(m.BearingY)
		u0, v0, u1, v1 := alloc.UV(tw, th)
		quads = append(quads, Quad{
			X0: x0, Y0: y0,
			X1: x0 + float32(m.Width), Y1: y0 + float32(m.Height),
			Alloc: alloc,
			U0:    u0, V0: v0, U1: u1, V1: v1,
		})
	}
	return quads, nil
}

// Trim evicts glyphs not used since the previous Trim. Call once per frame
// after drawing.
func (a *Atlas) Trim() int {
	return a.cache.Trim()
}

// Clear drops every glyph and memoized run. The texture keeps its layers.
func (a *Atlas) Clear() {
	a.cache.Clear()
	a.runs.Clear()
	a.blank.Clear()
}

// Stats returns glyph atlas statistics.
func (a *Atlas) Stats() Stats {
	return Stats{
		Cache:      a.cache.Stats(),
		Runs:       a.runs.Stats(),
		Blank:      a.blank.Stats(),
		Rasterized: a.rasterized,
		Skipped:    a.skipped,
	}
}
