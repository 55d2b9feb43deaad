// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glyph caches rasterized font glyphs in an atlas texture array.
//
// Text is normalized to NFC, shaped with go-text/typesetting and turned
// into quads whose glyph bitmaps live in a single-channel atlas.Cache.
// Glyph outlines come from x/image/font/sfnt and are rasterized with
// x/image/vector.
//
//	f, _ := glyph.ParseFont(goregular.TTF)
//	ga, _ := glyph.New(dev, glyph.DefaultConfig())
//	quads, err := ga.Layout(f, "Hello", 24, 10, 40)
//	// draw quads, then once per frame:
//	ga.Trim()
package glyph
