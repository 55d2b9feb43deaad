// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import "fmt"

// Rect is an axis-aligned rectangle in layer pixel coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns Width*Height, or 0 for empty rectangles.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Contains returns true if the point (x, y) is inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Overlaps reports whether r and o share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// String returns a string representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("Rect(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Allocation is a sub-region of the atlas texture array.
// It is immutable once returned; callers keep it to avoid re-querying.
type Allocation struct {
	Rect  Rect
	Layer int
}

// Position returns the top-left corner of the allocation.
func (a Allocation) Position() (x, y int) {
	return a.Rect.X, a.Rect.Y
}

// Size returns the allocation width and height.
func (a Allocation) Size() (w, h int) {
	return a.Rect.Width, a.Rect.Height
}

// Bounds returns position and size in one call.
func (a Allocation) Bounds() (x, y, w, h int) {
	return a.Rect.X, a.Rect.Y, a.Rect.Width, a.Rect.Height
}

// UV returns normalized texture coordinates for a layer of the given extent.
func (a Allocation) UV(extentW, extentH int) (u0, v0, u1, v1 float32) {
	if extentW <= 0 || extentH <= 0 {
		return 0, 0, 0, 0
	}
	fw, fh := float32(extentW), float32(extentH)
	u0 = float32(a.Rect.X) / fw
	v0 = float32(a.Rect.Y) / fh
	u1 = float32(a.Rect.X+a.Rect.Width) / fw
	v1 = float32(a.Rect.Y+a.Rect.Height) / fh
	return u0, v0, u1, v1
}

// String returns a string representation of the allocation.
func (a Allocation) String() string {
	return fmt.Sprintf("Allocation(layer %d, %v)", a.Layer, a.Rect)
}

// ID is a stable generational handle to a cache entry.
// An ID whose entry was removed, trimmed or cleared never resolves again,
// even after its slot is reused.
type ID struct {
	index      uint32
	generation uint32
}

// IsZero reports whether id is the zero ID, which never resolves.
func (id ID) IsZero() bool {
	return id.generation == 0
}

// String returns a string representation of the ID.
func (id ID) String() string {
	return fmt.Sprintf("ID(%d#%d)", id.index, id.generation)
}
