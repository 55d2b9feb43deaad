// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glyph

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Bitmap is a rasterized glyph coverage mask.
type Bitmap struct {
	// Pix holds Width*Height coverage bytes, row-major, no padding.
	Pix []byte

	Metrics Metrics
}

// Metrics positions a glyph bitmap relative to the pen on the baseline.
type Metrics struct {
	// Width and Height are the bitmap size in pixels. Both are zero for
	// glyphs without ink, such as spaces.
	Width, Height int

	// BearingX and BearingY offset the bitmap's top-left corner from the
	// pen position. BearingY is negative for ink above the baseline.
	BearingX, BearingY int

	// Advance is the horizontal pen advance in pixels.
	Advance float32
}

// Empty reports whether the glyph has no ink.
func (m Metrics) Empty() bool {
	return m.Width <= 0 || m.Height <= 0
}

// Rasterize renders glyph gid of f at size pixels per em into a coverage
// mask using x/image/vector.
func Rasterize(f *Font, gid uint16, size float64) (Bitmap, error) {
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(size * 64)
	index := sfnt.GlyphIndex(gid)

	advance, err := f.outline.GlyphAdvance(&buf, index, ppem, font.HintingNone)
	if err != nil {
		return Bitmap{}, fmt.Errorf("glyph: advance of %d: %w", gid, err)
	}
	segments, err := f.outline.LoadGlyph(&buf, index, ppem, nil)
	if err != nil {
		return Bitmap{}, fmt.Errorf("glyph: load %d: %w", gid, err)
	}

	m := Metrics{Advance: float32(advance) / 64}
	if !hasInk(segments) {
		return Bitmap{Metrics: m}, nil
	}

	// sfnt bounds are y-down, like the atlas.
	b := segments.Bounds()
	minX, minY := b.Min.X.Floor(), b.Min.Y.Floor()
	maxX, maxY := b.Max.X.Ceil(), b.Max.Y.Ceil()
	m.Width, m.Height = maxX-minX, maxY-minY
	m.BearingX, m.BearingY = minX, minY
	if m.Empty() {
		m.Width, m.Height = 0, 0
		return Bitmap{Metrics: m}, nil
	}

	r := vector.NewRasterizer(m.Width, m.Height)
	r.DrawOp = draw.Src
	ox, oy := float32(-minX), float32(-minY)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return ox + float32(p.X)/64, oy + float32(p.Y)/64
	}

	started := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				r.ClosePath()
			}
			r.MoveTo(pt(seg.Args[0]))
			started = true
		case sfnt.SegmentOpLineTo:
			r.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			r.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			r.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if started {
		r.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, m.Width, m.Height))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return Bitmap{Pix: mask.Pix, Metrics: m}, nil
}

// hasInk reports whether the outline draws anything beyond pen moves.
func hasInk(segments sfnt.Segments) bool {
	for _, seg := range segments {
		if seg.Op != sfnt.SegmentOpMoveTo {
			return true
		}
	}
	return false
}
