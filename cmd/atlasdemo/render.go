// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/gogpu/atlas"
	"github.com/gogpu/atlas/backend/soft"
	"github.com/gogpu/atlas/glyph"
)

// dumpLayers writes every layer of tex as <dir>/<prefix>-<layer>.png.
func dumpLayers(dir, prefix string, tex *soft.Texture) ([]string, error) {
	var files []string
	for layer := range tex.Layers() {
		img, err := tex.Image(layer)
		if err != nil {
			return files, err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-%d.png", prefix, layer))
		if err := writePNG(path, img); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// preview draws sprites in rows followed by the laid-out text, sampling
// both caches through their soft views.
type preview struct {
	width int

	sprites *soft.View
	glyphs  *soft.View
}

func (p *preview) render(sprites []atlas.Allocation, quads []glyph.Quad, textHeight int) (*image.RGBA, error) {
	const gap = 4

	// Lay sprites out in rows first to size the canvas.
	type placed struct {
		alloc atlas.Allocation
		at    image.Point
	}
	var (
		items     []placed
		x, y, row = gap, gap, 0
	)
	for _, a := range sprites {
		w, h := a.Size()
		if x+w+gap > p.width && x > gap {
			x, y, row = gap, y+row+gap, 0
		}
		items = append(items, placed{alloc: a, at: image.Pt(x, y)})
		x += w + gap
		row = max(row, h)
	}
	textTop := y + row + gap

	canvas := image.NewRGBA(image.Rect(0, 0, p.width, textTop+textHeight+gap))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.RGBA{0xf4, 0xf1, 0xea, 0xff}), image.Point{}, draw.Src)

	for _, it := range items {
		w, h := it.alloc.Size()
		dr := image.Rect(it.at.X, it.at.Y, it.at.X+w, it.at.Y+h)
		if err := p.sprites.Draw(canvas, dr, it.alloc, nil); err != nil {
			return nil, err
		}
	}

	ink := color.RGBA{0x20, 0x24, 0x30, 0xff}
	for _, q := range quads {
		dr := image.Rect(int(q.X0), int(q.Y0)+textTop, int(q.X1), int(q.Y1)+textTop)
		if err := p.glyphs.Draw(canvas, dr, q.Alloc, ink); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}
