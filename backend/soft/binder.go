// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/atlas"
)

// ErrViewReleased is returned when drawing through a released view.
var ErrViewReleased = errors.New("soft: view has been released")

// View is the soft binding of an atlas texture: a sampler over one
// texture array generation.
type View struct {
	tex      *Texture
	released bool
}

// Texture returns the texture the view samples.
func (v *View) Texture() *Texture { return v.tex }

// Released reports whether the view was unbound.
func (v *View) Released() bool { return v.released }

// Draw composites an allocation into dst at dr, scaling with bilinear
// filtering when dr and the allocation differ in size.
//
// R8 allocations are coverage masks painted with src. Color allocations
// are drawn over dst and src is ignored.
func (v *View) Draw(dst draw.Image, dr image.Rectangle, a atlas.Allocation, src color.Color) error {
	if v.released {
		return ErrViewReleased
	}
	if v.tex.destroyed {
		return ErrTextureDestroyed
	}
	img, err := v.tex.SubImage(a)
	if err != nil {
		return err
	}

	sr := img.Bounds()
	if v.tex.desc.Format == atlas.FormatR8 {
		mask := img
		if dr.Dx() != sr.Dx() || dr.Dy() != sr.Dy() {
			scaled := image.NewGray(image.Rect(0, 0, dr.Dx(), dr.Dy()))
			xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, sr, xdraw.Src, nil)
			mask = scaled
		}
		draw.DrawMask(dst, dr, image.NewUniform(src), image.Point{}, mask, mask.Bounds().Min, draw.Over)
		return nil
	}

	xdraw.ApproxBiLinear.Scale(dst, dr, img, sr, xdraw.Over, nil)
	return nil
}

// Binder creates Views for a cache's texture. It implements atlas.Binder.
type Binder struct {
	binds   int
	unbinds int
}

var _ atlas.Binder[*View] = (*Binder)(nil)

// NewBinder creates a binder.
func NewBinder() *Binder { return &Binder{} }

// Bind creates a view over tex.
func (b *Binder) Bind(tex atlas.Texture) (*View, error) {
	t, err := own(tex)
	if err != nil {
		return nil, err
	}
	b.binds++
	return &View{tex: t}, nil
}

// Unbind releases a view.
func (b *Binder) Unbind(v *View) {
	if v == nil || v.released {
		return
	}
	v.released = true
	b.unbinds++
}

// Counts returns the number of Bind and Unbind calls that took effect.
func (b *Binder) Counts() (binds, unbinds int) {
	return b.binds, b.unbinds
}
