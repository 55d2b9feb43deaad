// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/draw"
)

// sprite is a decoded image ready for upload.
type sprite struct {
	name string
	img  *image.RGBA
}

// loadSprites decodes every PNG and JPEG file in dir, sorted by name.
func loadSprites(dir string) ([]sprite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var sprites []sprite
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
		default:
			continue
		}
		img, err := decodeFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		sprites = append(sprites, sprite{name: e.Name(), img: img})
	}
	slices.SortFunc(sprites, func(a, b sprite) int { return strings.Compare(a.name, b.name) })
	return sprites, nil
}

func decodeFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return toRGBA(src), nil
}

// toRGBA returns img as a tightly packed RGBA image with origin (0, 0).
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// generateSprites makes n ringed discs of varying size and hue, so the
// demo runs without a sprite directory.
func generateSprites(n int) []sprite {
	sprites := make([]sprite, n)
	for i := range sprites {
		size := 12 + (i*37)%52
		c := hue(float64(i) / float64(n))
		img := image.NewRGBA(image.Rect(0, 0, size, size))

		r := float64(size) / 2
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
				d := dx*dx + dy*dy
				switch {
				case d > r*r:
				case d > (r-2)*(r-2):
					img.SetRGBA(x, y, color.RGBA{A: 0xff})
				default:
					img.SetRGBA(x, y, c)
				}
			}
		}
		sprites[i] = sprite{name: fmt.Sprintf("disc-%03d", i), img: img}
	}
	return sprites
}

// hue maps t in [0, 1) to a saturated opaque color.
func hue(t float64) color.RGBA {
	h := t * 6
	x := uint8(255 * (1 - abs(mod2(h)-1)))
	switch int(h) {
	case 0:
		return color.RGBA{R: 255, G: x, A: 255}
	case 1:
		return color.RGBA{R: x, G: 255, A: 255}
	case 2:
		return color.RGBA{G: 255, B: x, A: 255}
	case 3:
		return color.RGBA{G: x, B: 255, A: 255}
	case 4:
		return color.RGBA{R: x, B: 255, A: 255}
	default:
		return color.RGBA{R: 255, B: x, A: 255}
	}
}

func mod2(v float64) float64 {
	for v >= 2 {
		v -= 2
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
