// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

// Option configures a Device during creation.
type Option func(*options)

type options struct {
	memoryLimit int64
}

func defaultOptions() options {
	return options{
		memoryLimit: 0, // unlimited
	}
}

// WithMemoryLimit caps the bytes held by live textures. CreateTexture fails
// with ErrOutOfMemory when a new texture would exceed it. Zero means no limit.
//
// During growth the old and the staged texture are both resident, so a
// limit below twice the final texture size makes growth fail.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}
