// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native provides an atlas device backed by gogpu/wgpu HAL.
//
// A Device either opens its own GPU (Open) or shares one owned by a host
// application (New, NewFromProvider). Layer copies during atlas growth are
// recorded into a command buffer and waited on until the queue reports the
// submission complete, so the staged texture is whole before the cache
// swaps it in.
package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan HAL backend

	"github.com/gogpu/atlas"
	"github.com/gogpu/atlas/backend"
)

func init() {
	backend.Register(backend.NameNative, func() (backend.Backend, error) {
		return Open()
	})
}

// Device implements atlas.Device on a HAL device and queue.
type Device struct {
	mu sync.Mutex

	device   hal.Device
	queue    hal.Queue
	instance hal.Instance

	// owned is true when Close must destroy the device and instance.
	owned bool
	// adapter is the name of the opened adapter, empty for shared devices.
	adapter string

	label  string
	closed bool
}

var _ backend.Backend = (*Device)(nil)

// Open creates a standalone device on the best available adapter.
// Discrete and integrated GPUs are preferred over software adapters.
func Open(opts ...Option) (*Device, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	api := o.api
	if api == nil {
		b, ok := hal.GetBackend(o.backend)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, o.backend)
		}
		api = b
	}

	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}

	atlas.Logger().Info("native: GPU initialized (standalone)", "adapter", selected.Info.Name)

	return &Device{
		device:   openDev.Device,
		queue:    openDev.Queue,
		instance: instance,
		owned:    true,
		adapter:  selected.Info.Name,
		label:    o.label,
	}, nil
}

// New wraps a device and queue owned by the caller. Close does not destroy them.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilHALDevice
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Device{
		device: device,
		queue:  queue,
		label:  o.label,
	}, nil
}

// NewFromProvider shares the GPU of a host application. The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	return New(device, queue, opts...)
}

// Name returns "native".
func (d *Device) Name() string { return backend.NameNative }

// Adapter returns the adapter name for standalone devices.
func (d *Device) Adapter() string { return d.adapter }

// HAL returns the underlying device and queue, for building pipelines
// that sample the atlas.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	return d.device, d.queue
}

// Close releases the device if it was opened by Open.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	if d.owned {
		d.device.Destroy()
		d.instance.Destroy()
	}
}

// CreateTexture creates a 2D texture array usable as a sampled texture
// and as both source and destination of copies.
func (d *Device) CreateTexture(desc atlas.TextureDescriptor) (atlas.Texture, error) {
	format, err := TextureFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	if desc.Width <= 0 || desc.Height <= 0 || desc.Layers <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrOutOfBounds, desc.Width, desc.Height, desc.Layers)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}

	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),  //nolint:gosec // validated positive
			Height:             uint32(desc.Height), //nolint:gosec // validated positive
			DepthOrArrayLayers: uint32(desc.Layers), //nolint:gosec // validated positive
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage: gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture: %w", err)
	}
	return &Texture{raw: raw, desc: desc}, nil
}

// CopyLayers copies layers [0, layers) of src into dst and waits for the
// GPU to finish, so dst is complete when CopyLayers returns nil.
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
		return fmt.Errorf("native: copy between mismatched textures %v and %v", s, t)
	}
	if layers < 0 || layers > s.desc.Layers || layers > t.desc.Layers {
		return fmt.Errorf("%w: copy %d layers from %v into %v", ErrOutOfBounds, layers, s, t)
	}
	if layers == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}

	label := d.label + "_grow"
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("native: begin encoding: %w", err)
	}

	encoder.CopyTextureToTexture(s.raw, t.raw, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{Texture: s.raw, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		DstBase: hal.ImageCopyTexture{Texture: t.raw, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		Size: hal.Extent3D{
			Width:              uint32(s.desc.Width),  //nolint:gosec // validated positive
			Height:             uint32(s.desc.Height), //nolint:gosec // validated positive
			DepthOrArrayLayers: uint32(layers),        //nolint:gosec // validated positive
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	return d.submitAndWait(cmdBuf)
}

// submitAndWait submits one command buffer and blocks until the GPU has
// completed it. Caller holds d.mu.
func (d *Device) submitAndWait(cmdBuf hal.CommandBuffer) error {
	index, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	if d.queue.PollCompleted() >= index {
		return nil
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("native: wait for GPU: %w", err)
	}
	return nil
}

// WriteRegion uploads tightly packed pixels into r of one layer.
func (d *Device) WriteRegion(dst atlas.Texture, layer int, r atlas.Rect, pixels []byte) error {
	t, err := own(dst)
	if err != nil {
		return err
	}
	if layer < 0 || layer >= t.desc.Layers ||
		r.X < 0 || r.Y < 0 || r.Empty() ||
		r.X+r.Width > t.desc.Width || r.Y+r.Height > t.desc.Height {
		return fmt.Errorf("%w: %v on layer %d of %v", ErrOutOfBounds, r, layer, t)
	}
	rowBytes := r.Width * t.desc.Format.BytesPerPixel()
	if len(pixels) != rowBytes*r.Height {
		return fmt.Errorf("native: got %d bytes for %v, want %d", len(pixels), r, rowBytes*r.Height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}

	//nolint:gosec // all values validated non-negative and within the texture
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.raw,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(r.X), Y: uint32(r.Y), Z: uint32(layer)},
			Aspect:   gputypes.TextureAspectAll,
		},
		pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rowBytes),
			RowsPerImage: uint32(r.Height),
		},
		&hal.Extent3D{Width: uint32(r.Width), Height: uint32(r.Height), DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("native: write texture: %w", err)
	}
	return nil
}

// DestroyTexture releases a texture. Destroying twice is a no-op.
func (d *Device) DestroyTexture(tex atlas.Texture) {
	t, ok := tex.(*Texture)
	if !ok || t == nil || t.destroyed {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	t.destroyed = true
	if d.closed && d.owned {
		return
	}
	d.device.DestroyTexture(t.raw)
}
