// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// Positioned is one shaped glyph with its pen offset from the run origin.
type Positioned struct {
	GID uint16

	// X and Y are the glyph origin relative to the run origin, in pixels.
	X, Y float32

	// Advance is the horizontal advance in pixels.
	Advance float32

	// Cluster is the rune index in the normalized text this glyph maps to.
	Cluster int
}

// runKey identifies a shaped run in the run cache.
type runKey struct {
	fontID uint64
	size   fixed.Int26_6
	text   string
}

// shaper wraps a HarfBuzz shaper. It is not safe for concurrent use.
type shaper struct {
	hb shaping.HarfbuzzShaper
}

// shape converts NFC-normalized text into positioned glyphs, left to right.
func (s *shaper) shape(f *Font, text string, size fixed.Int26_6) []Positioned {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f.shaping),
		Size:      size,
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	out := s.hb.Shape(input)

	glyphs := make([]Positioned, len(out.Glyphs))
	var x float32
	for i, g := range out.Glyphs {
		adv := float32(g.Advance) / 64
		glyphs[i] = Positioned{
			GID:     uint16(g.GlyphID), //nolint:gosec // sfnt glyph indices are 16-bit
			X:       x + float32(g.XOffset)/64,
			Y:       -float32(g.YOffset) / 64,
			Advance: adv,
			Cluster: g.TextIndex(),
		}
		x += adv
	}
	return glyphs
}

// normalize returns text in Unicode NFC so that canonically equivalent
// strings shape, and cache, identically.
func normalize(text string) string {
	return norm.NFC.String(text)
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
