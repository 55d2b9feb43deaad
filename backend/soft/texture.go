// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"fmt"
	"image"

	"github.com/gogpu/atlas"
)

// Texture is a host-memory texture array.
type Texture struct {
	desc      atlas.TextureDescriptor
	layers    [][]byte
	size      int64
	destroyed bool
}

// Width returns the layer width in pixels.
func (t *Texture) Width() int { return t.desc.Width }

// Height returns the layer height in pixels.
func (t *Texture) Height() int { return t.desc.Height }

// Layers returns the number of layers.
func (t *Texture) Layers() int { return t.desc.Layers }

// Format returns the pixel format.
func (t *Texture) Format() atlas.Format { return t.desc.Format }

// Label returns the debug label.
func (t *Texture) Label() string { return t.desc.Label }

// Destroyed reports whether the texture has been destroyed.
func (t *Texture) Destroyed() bool { return t.destroyed }

// Pixels returns the raw bytes of one layer, or nil if the layer does not
// exist or the texture was destroyed. The slice aliases texture memory.
func (t *Texture) Pixels(layer int) []byte {
	if layer < 0 || layer >= len(t.layers) {
		return nil
	}
	return t.layers[layer]
}

// Image returns a copy of one layer as an image.
// R8 layers become *image.Gray; RGBA8 and BGRA8 layers become *image.RGBA.
func (t *Texture) Image(layer int) (image.Image, error) {
	pix := t.Pixels(layer)
	if pix == nil {
		return nil, fmt.Errorf("%w: layer %d of %v", ErrOutOfBounds, layer, t)
	}
	bounds := image.Rect(0, 0, t.desc.Width, t.desc.Height)

	switch t.desc.Format {
	case atlas.FormatR8:
		img := image.NewGray(bounds)
		copy(img.Pix, pix)
		return img, nil
	case atlas.FormatRGBA8:
		img := image.NewRGBA(bounds)
		copy(img.Pix, pix)
		return img, nil
	case atlas.FormatBGRA8:
		img := image.NewRGBA(bounds)
		for i := 0; i+3 < len(pix); i += 4 {
			img.Pix[i+0] = pix[i+2]
			img.Pix[i+1] = pix[i+1]
			img.Pix[i+2] = pix[i+0]
			img.Pix[i+3] = pix[i+3]
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: format %v", ErrInvalidDescriptor, t.desc.Format)
	}
}

// SubImage returns a copy of an allocation's pixels.
func (t *Texture) SubImage(a atlas.Allocation) (image.Image, error) {
	img, err := t.Image(a.Layer)
	if err != nil {
		return nil, err
	}
	r := image.Rect(a.Rect.X, a.Rect.Y, a.Rect.X+a.Rect.Width, a.Rect.Y+a.Rect.Height)
	return img.(interface {
		SubImage(image.Rectangle) image.Image
	}).SubImage(r), nil
}

// String returns a string representation of the texture.
func (t *Texture) String() string {
	return fmt.Sprintf("soft.Texture(%q %dx%dx%d %v)",
		t.desc.Label, t.desc.Width, t.desc.Height, t.desc.Layers, t.desc.Format)
}
