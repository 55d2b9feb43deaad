// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Native backend errors.
var (
	// ErrNilHALDevice is returned when wrapping a nil HAL device or queue.
	ErrNilHALDevice = errors.New("native: HAL device is nil")

	// ErrNoAdapter is returned when the HAL instance exposes no adapters.
	ErrNoAdapter = errors.New("native: no GPU adapters found")

	// ErrBackendUnavailable is returned when the requested HAL backend is not compiled in.
	ErrBackendUnavailable = errors.New("native: HAL backend not available")

	// ErrNoHALProvider is returned when a device provider does not expose HAL types.
	ErrNoHALProvider = errors.New("native: provider does not expose HAL types")

	// ErrForeignTexture is returned for textures not created by this package.
	ErrForeignTexture = errors.New("native: texture not created by a native device")

	// ErrTextureDestroyed is returned when operating on a destroyed texture.
	ErrTextureDestroyed = errors.New("native: texture has been destroyed")

	// ErrUnsupportedFormat is returned for atlas formats with no GPU mapping.
	ErrUnsupportedFormat = errors.New("native: unsupported texture format")

	// ErrOutOfBounds is returned for writes or copies outside a texture.
	ErrOutOfBounds = errors.New("native: region out of bounds")

	// ErrDeviceClosed is returned after Close.
	ErrDeviceClosed = errors.New("native: device closed")
)
