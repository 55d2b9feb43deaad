// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package soft provides an in-memory atlas device.
//
// Texture arrays live in host memory, one byte slice per layer. The device
// is used for CPU rendering, for headless tools such as atlasdemo and as
// the reference device in tests. It can enforce a memory budget and inject
// one-shot failures to exercise recovery paths.
package soft

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/atlas"
	"github.com/gogpu/atlas/backend"
)

// Device errors.
var (
	// ErrForeignTexture is returned for textures not created by this package.
	ErrForeignTexture = errors.New("soft: texture not created by a soft device")

	// ErrTextureDestroyed is returned when operating on a destroyed texture.
	ErrTextureDestroyed = errors.New("soft: texture has been destroyed")

	// ErrOutOfMemory is returned when a texture would exceed the memory limit.
	ErrOutOfMemory = errors.New("soft: memory limit exceeded")

	// ErrOutOfBounds is returned for writes or copies outside a texture.
	ErrOutOfBounds = errors.New("soft: region out of bounds")

	// ErrInvalidDescriptor is returned for non-positive sizes or unknown formats.
	ErrInvalidDescriptor = errors.New("soft: invalid texture descriptor")
)

func init() {
	backend.Register(backend.NameSoft, func() (backend.Backend, error) {
		return New(), nil
	})
}

// Op identifies a device operation for fault injection.
type Op uint8

const (
	// OpCreate is CreateTexture.
	OpCreate Op = iota
	// OpCopy is CopyLayers.
	OpCopy
	// OpWrite is WriteRegion.
	OpWrite
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpCopy:
		return "copy"
	case OpWrite:
		return "write"
	default:
		return fmt.Sprintf("Op(%d)", o)
	}
}

// Stats holds device counters.
type Stats struct {
	Creates       int
	Copies        int
	Writes        int
	Destroys      int
	LiveTextures  int
	ResidentBytes int64
	BytesWritten  int64
	BytesCopied   int64
}

// Device is an in-memory atlas.Device. It is safe for concurrent use.
type Device struct {
	mu     sync.Mutex
	opts   options
	stats  Stats
	faults map[Op]error
}

var _ backend.Backend = (*Device)(nil)

// New creates an in-memory device.
func New(opts ...Option) *Device {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Device{
		opts:   o,
		faults: make(map[Op]error),
	}
}

// Name returns "soft".
func (d *Device) Name() string { return backend.NameSoft }

// Close is a no-op; host memory is reclaimed by the garbage collector.
func (d *Device) Close() {}

// FailNext makes the next call of op fail with err.
func (d *Device) FailNext(op Op, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[op] = err
}

// fault consumes a pending injected failure. Caller holds d.mu.
func (d *Device) fault(op Op) error {
	err, ok := d.faults[op]
	if !ok {
		return nil
	}
	delete(d.faults, op)
	return fmt.Errorf("soft: injected %s failure: %w", op, err)
}

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// CreateTexture allocates a zeroed texture array.
func (d *Device) CreateTexture(desc atlas.TextureDescriptor) (atlas.Texture, error) {
	bpp := desc.Format.BytesPerPixel()
	if desc.Width <= 0 || desc.Height <= 0 || desc.Layers <= 0 || bpp == 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d %v", ErrInvalidDescriptor,
			desc.Width, desc.Height, desc.Layers, desc.Format)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.fault(OpCreate); err != nil {
		return nil, err
	}

	layerBytes := desc.Width * desc.Height * bpp
	size := int64(layerBytes) * int64(desc.Layers)
	if d.opts.memoryLimit > 0 && d.stats.ResidentBytes+size > d.opts.memoryLimit {
		return nil, fmt.Errorf("%w: need %d bytes, %d of %d resident",
			ErrOutOfMemory, size, d.stats.ResidentBytes, d.opts.memoryLimit)
	}

	t := &Texture{
		desc:   desc,
		layers: make([][]byte, desc.Layers),
		size:   size,
	}
	for i := range t.layers {
		t.layers[i] = make([]byte, layerBytes)
	}

	d.stats.Creates++
	d.stats.LiveTextures++
	d.stats.ResidentBytes += size
	return t, nil
}

// CopyLayers copies layers [0, layers) of src into dst.
func (d *Device) CopyLayers(src, dst atlas.Texture, layers int) error {
	s, err := own(src)
	if err != nil {
		return err
	}
	t, err := own(dst)
	if err != nil {
		return err
	}
	if s.desc.Width != t.desc.Width || s.desc.Height != t.desc.Height || s.desc.Format != t.desc.Format {
		return fmt.Errorf("soft: copy between mismatched textures %v and %v", s, t)
	}
	if layers < 0 || layers > len(s.layers) || layers > len(t.layers) {
		return fmt.Errorf("%w: copy %d layers from %d into %d", ErrOutOfBounds, layers, len(s.layers), len(t.layers))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.fault(OpCopy); err != nil {
		return err
	}
	for i := range layers {
		copy(t.layers[i], s.layers[i])
		d.stats.BytesCopied += int64(len(s.layers[i]))
	}
	d.stats.Copies++
	return nil
}

// WriteRegion writes tightly packed pixels into r of one layer.
func (d *Device) WriteRegion(dst atlas.Texture, layer int, r atlas.Rect, pixels []byte) error {
	t, err := own(dst)
	if err != nil {
		return err
	}
	if layer < 0 || layer >= len(t.layers) ||
		r.X < 0 || r.Y < 0 || r.Empty() ||
		r.X+r.Width > t.desc.Width || r.Y+r.Height > t.desc.Height {
		return fmt.Errorf("%w: %v on layer %d of %v", ErrOutOfBounds, r, layer, t)
	}
	bpp := t.desc.Format.BytesPerPixel()
	rowBytes := r.Width * bpp
	if len(pixels) != rowBytes*r.Height {
		return fmt.Errorf("soft: got %d bytes for %v, want %d", len(pixels), r, rowBytes*r.Height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.fault(OpWrite); err != nil {
		return err
	}
	stride := t.desc.Width * bpp
	dstPix := t.layers[layer]
	for y := range r.Height {
		off := (r.Y+y)*stride + r.X*bpp
		copy(dstPix[off:off+rowBytes], pixels[y*rowBytes:(y+1)*rowBytes])
	}
	d.stats.Writes++
	d.stats.BytesWritten += int64(len(pixels))
	return nil
}

// DestroyTexture releases a texture. Destroying twice is a no-op.
func (d *Device) DestroyTexture(tex atlas.Texture) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if t.destroyed {
		return
	}
	t.destroyed = true
	t.layers = nil
	d.stats.Destroys++
	d.stats.LiveTextures--
	d.stats.ResidentBytes -= t.size
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
