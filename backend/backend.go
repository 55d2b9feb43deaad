// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend selects the device an atlas cache runs on.
//
// Device packages register themselves from init:
//
//	import (
//	    "github.com/gogpu/atlas/backend"
//	    _ "github.com/gogpu/atlas/backend/native"
//	    _ "github.com/gogpu/atlas/backend/soft"
//	)
//
//	b, err := backend.Default()
package backend

import (
	"errors"

	"github.com/gogpu/atlas"
)

// Registered backend names.
const (
	// NameNative is the gogpu/wgpu HAL backend.
	NameNative = "native"

	// NameSoft is the in-memory backend.
	NameSoft = "soft"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered
	// or none of the registered backends could be opened.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend is an atlas device that owns the resources behind it.
type Backend interface {
	atlas.Device

	// Name returns the backend identifier (e.g., "native", "soft").
	Name() string

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()
}
