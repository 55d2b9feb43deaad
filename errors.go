// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for the atlas package.
var (
	// ErrOversize is matched by errors.Is for every *OversizeError.
	ErrOversize = errors.New("atlas: allocation larger than tile extent")

	// ErrDeviceResource is matched by errors.Is for every *DeviceResourceError.
	ErrDeviceResource = errors.New("atlas: device resource error")

	// ErrKeyAlreadyBound is matched by errors.Is for every *KeyAlreadyBoundError.
	ErrKeyAlreadyBound = errors.New("atlas: key already bound with a different size")

	// ErrInvalidSize is returned for non-positive upload dimensions.
	ErrInvalidSize = errors.New("atlas: width and height must be positive")

	// ErrPixelDataSize is returned when the pixel slice does not match w*h*bpp.
	ErrPixelDataSize = errors.New("atlas: pixel data length does not match size")

	// ErrNilDevice is returned when a cache is created without a device.
	ErrNilDevice = errors.New("atlas: device is nil")
)

// OversizeError reports an upload that can never fit a single layer.
// It is recoverable: the caller may downscale or skip the image.
type OversizeError struct {
	Width, Height         int
	TileWidth, TileHeight int
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("atlas: %dx%d does not fit tile extent %dx%d",
		e.Width, e.Height, e.TileWidth, e.TileHeight)
}

// Is reports whether target is ErrOversize.
func (e *OversizeError) Is(target error) bool { return target == ErrOversize }

// DeviceResourceError reports a failed texture create, copy or write.
// Growth failures are fatal for rendering; the cache stays on its
// last-known-good texture.
type DeviceResourceError struct {
	// Op is one of "create", "copy", "write" or "limit".
	Op string
	// Layers is the layer count the operation targeted.
	Layers int
	Err    error
}

func (e *DeviceResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("atlas: %s failed (%d layers)", e.Op, e.Layers)
	}
	return fmt.Sprintf("atlas: %s failed (%d layers): %v", e.Op, e.Layers, e.Err)
}

func (e *DeviceResourceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDeviceResource.
func (e *DeviceResourceError) Is(target error) bool { return target == ErrDeviceResource }

// KeyAlreadyBoundError reports a re-upload of a live key with a size that
// differs from its original allocation.
type KeyAlreadyBoundError struct {
	Existing  Allocation
	Requested [2]int
}

func (e *KeyAlreadyBoundError) Error() string {
	w, h := e.Existing.Size()
	return fmt.Sprintf("atlas: key bound to %dx%d, re-upload requested %dx%d",
		w, h, e.Requested[0], e.Requested[1])
}

// Is reports whether target is ErrKeyAlreadyBound.
func (e *KeyAlreadyBoundError) Is(target error) bool { return target == ErrKeyAlreadyBound }

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}
