// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import "fmt"

// Format represents the pixel format of the atlas texture array.
type Format uint8

const (
	// FormatRGBA8 is the standard RGBA format with 8 bits per channel.
	FormatRGBA8 Format = iota

	// FormatBGRA8 is BGRA format with 8 bits per channel.
	FormatBGRA8

	// FormatR8 is single-channel 8-bit format, used for glyph masks.
	FormatR8
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatR8:
		return "R8"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// BytesPerPixel returns the number of bytes per pixel, or 0 for unknown formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8, FormatBGRA8:
		return 4
	case FormatR8:
		return 1
	default:
		return 0
	}
}

// TextureDescriptor describes a texture array to create.
type TextureDescriptor struct {
	Label  string
	Width  int
	Height int
	Layers int
	Format Format
}

// Texture is a device-owned 2D texture array.
type Texture interface {
	Width() int
	Height() int
	Layers() int
	Format() Format
}

// Device is the GPU boundary the cache drives.
//
// All calls are made from the goroutine that owns the cache. A Device must
// preserve submission order: a CopyLayers issued before DestroyTexture of
// its source completes before the source is released, and WriteRegion into
// a texture is ordered after the copy that populated it.
type Device interface {
	// CreateTexture allocates a texture array with the given extent.
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// CopyLayers copies layers [0, layers) of src into the same
	// indices of dst. Both textures share width, height and format.
	CopyLayers(src, dst Texture, layers int) error

	// WriteRegion writes tightly packed pixels into r on the given layer.
	WriteRegion(dst Texture, layer int, r Rect, pixels []byte) error

	// DestroyTexture releases a texture. It must tolerate textures that
	// still have queued work.
	DestroyTexture(t Texture)
}
