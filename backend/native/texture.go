// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/atlas"
)

// Texture is a GPU texture array created by a native Device.
type Texture struct {
	raw       hal.Texture
	desc      atlas.TextureDescriptor
	destroyed bool
}

// Width returns the layer width in pixels.
func (t *Texture) Width() int { return t.desc.Width }

// Height returns the layer height in pixels.
func (t *Texture) Height() int { return t.desc.Height }

// Layers returns the number of array layers.
func (t *Texture) Layers() int { return t.desc.Layers }

// Format returns the atlas pixel format.
func (t *Texture) Format() atlas.Format { return t.desc.Format }

// Raw returns the underlying HAL texture handle, or nil once destroyed.
func (t *Texture) Raw() hal.Texture {
	if t.destroyed {
		return nil
	}
	return t.raw
}

// String returns a string representation of the texture.
func (t *Texture) String() string {
	return fmt.Sprintf("native.Texture(%q %dx%dx%d %v)",
		t.desc.Label, t.desc.Width, t.desc.Height, t.desc.Layers, t.desc.Format)
}

// TextureFormat converts an atlas format to its WebGPU equivalent.
func TextureFormat(f atlas.Format) (gputypes.TextureFormat, error) {
	switch f {
	case atlas.FormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case atlas.FormatBGRA8:
		return gputypes.TextureFormatBGRA8Unorm, nil
	case atlas.FormatR8:
		return gputypes.TextureFormatR8Unorm, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
}

func own(tex atlas.Texture) (*Texture, error) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return nil, ErrForeignTexture
	}
	if t.destroyed {
		return nil, ErrTextureDestroyed
	}
	return t, nil
}
