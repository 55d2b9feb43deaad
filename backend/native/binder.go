// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/atlas"
)

// Bind group slots used by the atlas shader.
const (
	TextureBinding = 0
	SamplerBinding = 1
)

// BindGroup is the native binding of one atlas texture generation:
// a 2D array view and a bind group over it and the shared sampler.
type BindGroup struct {
	group hal.BindGroup
	view  hal.TextureView
	tex   *Texture
}

// Raw returns the HAL bind group to set on a render pass.
func (g *BindGroup) Raw() hal.BindGroup { return g.group }

// Texture returns the texture the bind group samples.
func (g *BindGroup) Texture() *Texture { return g.tex }

// Binder creates bind groups for atlas textures. It implements
// atlas.Binder and owns the bind group layout and sampler they share.
type Binder struct {
	device  hal.Device
	layout  hal.BindGroupLayout
	sampler hal.Sampler
	label   string
}

var _ atlas.Binder[*BindGroup] = (*Binder)(nil)

// NewBinder creates the bind group layout and a linear clamp-to-edge
// sampler on d.
func NewBinder(d *Device) (*Binder, error) {
	label := d.label
	layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    TextureBinding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    SamplerBinding,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create bind group layout: %w", err)
	}

	sampler, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		d.device.DestroyBindGroupLayout(layout)
		return nil, fmt.Errorf("native: create sampler: %w", err)
	}

	return &Binder{
		device:  d.device,
		layout:  layout,
		sampler: sampler,
		label:   label,
	}, nil
}

// Layout returns the bind group layout for pipeline creation.
func (b *Binder) Layout() hal.BindGroupLayout { return b.layout }

// Bind creates a view over every layer of tex and a bind group using it.
func (b *Binder) Bind(tex atlas.Texture) (*BindGroup, error) {
	t, err := own(tex)
	if err != nil {
		return nil, err
	}
	format, err := TextureFormat(t.desc.Format)
	if err != nil {
		return nil, err
	}

	view, err := b.device.CreateTextureView(t.raw, &hal.TextureViewDescriptor{
		Label:           b.label + "_view",
		Format:          format,
		Dimension:       gputypes.TextureViewDimension2DArray,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: uint32(t.desc.Layers), //nolint:gosec // layer count is positive
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture view: %w", err)
	}

	group, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  b.label + "_bind_group",
		Layout: b.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: TextureBinding, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
			{Binding: SamplerBinding, Resource: gputypes.SamplerBinding{
				Sampler: b.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		b.device.DestroyTextureView(view)
		return nil, fmt.Errorf("native: create bind group: %w", err)
	}

	return &BindGroup{group: group, view: view, tex: t}, nil
}

// Unbind destroys a bind group and its view.
func (b *Binder) Unbind(g *BindGroup) {
	if g == nil {
		return
	}
	if g.group != nil {
		b.device.DestroyBindGroup(g.group)
		g.group = nil
	}
	if g.view != nil {
		b.device.DestroyTextureView(g.view)
		g.view = nil
	}
}

// Destroy releases the layout and sampler. Bind groups created by b must
// be unbound first.
func (b *Binder) Destroy() {
	if b.sampler != nil {
		b.device.DestroySampler(b.sampler)
		b.sampler = nil
	}
	if b.layout != nil {
		b.device.DestroyBindGroupLayout(b.layout)
		b.layout = nil
	}
}
