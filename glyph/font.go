// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"bytes"
	"fmt"
	"hash/fnv"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/sfnt"
)

// Font is a parsed TrueType or OpenType font.
//
// The same bytes are parsed twice: go-text/typesetting drives shaping and
// x/image/font/sfnt supplies glyph outlines for rasterization. Glyph IDs
// are shared between the two because both index the font's glyph table.
//
// Font is safe for concurrent use.
type Font struct {
	id      uint64
	shaping *gotext.Font
	outline *sfnt.Font
}

// ParseFont parses font data. The data must not be modified afterwards.
func ParseFont(data []byte) (*Font, error) {
	outline, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse outlines: %w", err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("glyph: parse for shaping: %w", err)
	}

	h := fnv.New64a()
	_, _ = h.Write(data)

	return &Font{
		id:      h.Sum64(),
		shaping: face.Font,
		outline: outline,
	}, nil
}

// ID returns a content hash of the font data. Two fonts parsed from the
// same bytes share an ID and therefore share atlas entries.
func (f *Font) ID() uint64 {
	return f.id
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return f.outline.NumGlyphs()
}

// Name returns the font's full name, or an empty string if it has none.
func (f *Font) Name() string {
	var buf sfnt.Buffer
	name, err := f.outline.Name(&buf, sfnt.NameIDFull)
	if err != nil {
		return ""
	}
	return name
}
