// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

// Layer is one slice of the atlas texture array with its own packer.
// Layers are appended during growth and never removed. Obtain one with
// Cache.Layer; it is a read-only view that tracks the cache.
type Layer struct {
	index  int
	packer *Packer
}

func newLayer(index, width, height int) *Layer {
	return &Layer{
		index:  index,
		packer: NewPacker(width, height),
	}
}

// Index returns the layer's slice index in the texture array.
func (l *Layer) Index() int {
	return l.index
}

// Live returns the number of entries packed into this layer.
func (l *Layer) Live() int {
	return l.packer.Live()
}

// Utilization returns the fraction of this layer's area in use.
func (l *Layer) Utilization() float64 {
	return l.packer.Utilization()
}

// LayerInfo contains information about a single layer.
type LayerInfo struct {
	Index       int
	Entries     int
	Utilization float64
	FreeRects   int
}

// Info returns a snapshot of the layer.
func (l *Layer) Info() LayerInfo {
	return LayerInfo{
		Index:       l.index,
		Entries:     l.packer.Live(),
		Utilization: l.packer.Utilization(),
		FreeRects:   len(l.packer.free),
	}
}
