// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// InstanceFactory creates HAL instances. It is satisfied by the backends
// returned from hal.GetBackend and by noop.API.
type InstanceFactory interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Option configures a standalone Device opened with Open.
type Option func(*options)

type options struct {
	backend gputypes.Backend
	api     InstanceFactory
	label   string
}

func defaultOptions() options {
	return options{
		backend: gputypes.BackendVulkan,
		label:   "atlas",
	}
}

// WithBackend selects the HAL backend looked up through hal.GetBackend.
// Default: Vulkan.
func WithBackend(b gputypes.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithAPI supplies the instance factory directly, bypassing the HAL
// backend registry. Tests use noop.API{}.
func WithAPI(api InstanceFactory) Option {
	return func(o *options) {
		o.api = api
	}
}

// WithLabel sets the debug label prefix for command encoders.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
