// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

// Packer implements online guillotine rectangle packing for one layer.
//
// The packer keeps a list of disjoint free rectangles. Allocate takes the
// first free rectangle large enough for the request, places the request in
// its top-left corner and cuts the remainder into at most two new free
// rectangles (one to the right, one below). Nothing is ever repacked.
//
// Free returns a rectangle to the free list without merging it with its
// neighbours, so fragmentation only grows until the packer is cleared.
// When the last live rectangle is freed the packer resets itself to a
// single free rectangle spanning the layer.
//
// Packer is not safe for concurrent use.
type Packer struct {
	width  int
	height int
	free   []Rect

	// Tracking for utilization
	live     int
	usedArea int
}

// NewPacker creates a packer for a width x height layer.
func NewPacker(width, height int) *Packer {
	p := &Packer{
		width:  width,
		height: height,
		free:   make([]Rect, 0, 16),
	}
	p.Clear()
	return p
}

// Allocate finds space for a w x h rectangle.
// It returns false without mutating the packer if no free region fits.
func (p *Packer) Allocate(w, h int) (Rect, bool) {
	if w <= 0 || h <= 0 || w > p.width || h > p.height {
		return Rect{}, false
	}

	for i, f := range p.free {
		if f.Width < w || f.Height < h {
			continue
		}

		placed := Rect{X: f.X, Y: f.Y, Width: w, Height: h}
		right, below := guillotine(f, w, h)
		p.replace(i, right, below)

		p.live++
		p.usedArea += w * h
		return placed, true
	}

	return Rect{}, false
}

// guillotine splits f after placing a w x h rect in its top-left corner.
// The cut runs along the axis that leaves the larger residual whole.
func guillotine(f Rect, w, h int) (right, below Rect) {
	leftoverW := f.Width - w
	leftoverH := f.Height - h

	if leftoverW > leftoverH {
		// Vertical cut: the right residual keeps the full height.
		right = Rect{X: f.X + w, Y: f.Y, Width: leftoverW, Height: f.Height}
		below = Rect{X: f.X, Y: f.Y + h, Width: w, Height: leftoverH}
		return right, below
	}

	// Horizontal cut: the lower residual keeps the full width.
	right = Rect{X: f.X + w, Y: f.Y, Width: leftoverW, Height: h}
	below = Rect{X: f.X, Y: f.Y + h, Width: f.Width, Height: leftoverH}
	return right, below
}

// replace swaps the consumed free rect at i for the non-empty residuals.
func (p *Packer) replace(i int, right, below Rect) {
	switch {
	case !right.Empty():
		p.free[i] = right
	case !below.Empty():
		p.free[i] = below
		below = Rect{}
	default:
		last := len(p.free) - 1
		p.free[i] = p.free[last]
		p.free = p.free[:last]
	}
	if !below.Empty() {
		p.free = append(p.free, below)
	}
}

// Free returns a previously allocated rectangle to the free list.
// Freeing an empty rectangle, or freeing into an empty packer, is a no-op.
func (p *Packer) Free(r Rect) {
	if r.Empty() || p.live == 0 {
		return
	}

	p.live--
	p.usedArea -= r.Area()
	if p.live == 0 {
		p.Clear()
		return
	}
	p.free = append(p.free, r)
}

// Clear resets the packer to one free rectangle spanning the whole layer.
func (p *Packer) Clear() {
	p.free = append(p.free[:0], Rect{Width: p.width, Height: p.height})
	p.live = 0
	p.usedArea = 0
}

// Live returns the number of allocated rectangles not yet freed.
func (p *Packer) Live() int {
	return p.live
}

// Used returns the total area of live rectangles.
func (p *Packer) Used() int {
	return p.usedArea
}

// Utilization returns the fraction of layer area in use (0.0 to 1.0).
func (p *Packer) Utilization() float64 {
	total := p.width * p.height
	if total <= 0 {
		return 0
	}
	return float64(p.usedArea) / float64(total)
}

// FreeRects returns a copy of the current free list.
func (p *Packer) FreeRects() []Rect {
	out := make([]Rect, len(p.free))
	copy(out, p.free)
	return out
}

// Size returns the layer dimensions the packer manages.
func (p *Packer) Size() (w, h int) {
	return p.width, p.height
}
