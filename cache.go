// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import "fmt"

// entry is one slot of the cache's entry table.
type entry[K comparable, D any] struct {
	key   K
	alloc Allocation
	data  D

	// slot is the padded region handed back to the packer on eviction.
	slot Rect

	// refCount pins the entry against Trim while non-zero.
	refCount uint32

	// lastUsed is the promotion cycle the entry was last promoted in.
	lastUsed uint64

	// generation is bumped every time the slot is reused.
	generation uint32
	live       bool
}

// Cache packs images into a growable texture array and deduplicates them
// by key.
//
// Every layer of the texture array has the same fixed extent. When no
// layer can fit a new image the cache grows by copy: it creates a texture
// array with one more layer, copies every existing layer into it and only
// then swaps it in. A failed growth leaves the cache on its previous
// texture with no layer appended and no entry created.
//
// Entries are evicted by Trim when they are unpinned (see Retain) and were
// not promoted since the previous Trim. Get, GetByKey and Upload promote;
// Peek, PeekByKey and Data do not.
//
// Cache is not safe for concurrent use. It is owned by the goroutine that
// drives the frame loop.
type Cache[K comparable, D any] struct {
	device  Device
	config  Config
	texture Texture
	layers  []*Layer

	entries []entry[K, D]
	free    []uint32
	lookup  map[K]uint32

	// cycle is the current promotion cycle. Trim ends it.
	cycle uint64

	// dirty is set whenever the texture identity changes. Only Group
	// reads and clears it.
	dirty bool

	stats Stats
}

// Stats holds cache statistics.
type Stats struct {
	// Entries is the number of live entries.
	Entries int
	// Layers is the number of layers in the texture array.
	Layers int
	// Hits counts uploads answered by an existing entry.
	Hits uint64
	// Misses counts uploads that created a new entry. Failed uploads are
	// not counted.
	Misses uint64
	// Writes counts region writes issued to the device.
	Writes uint64
	// Evictions counts entries removed by Trim, Remove or RemoveByKey.
	Evictions uint64
	// Growths counts successful grow-by-copy steps.
	Growths uint64
	// Cycle is the current promotion cycle.
	Cycle uint64
}

// NewCache creates a cache and its initial texture array on device.
// Zero fields of config are filled from DefaultConfig.
func NewCache[K comparable, D any](device Device, config Config) (*Cache[K, D], error) {
	if device == nil {
		return nil, ErrNilDevice
	}

	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Cache[K, D]{
		device: device,
		config: config,
		layers: make([]*Layer, 0, config.InitialLayers),
		lookup: make(map[K]uint32),
		cycle:  1,
	}

	tex, err := device.CreateTexture(c.descriptor(config.InitialLayers))
	if err != nil {
		return nil, &DeviceResourceError{Op: "create", Layers: config.InitialLayers, Err: err}
	}
	c.texture = tex
	for i := 0; i < config.InitialLayers; i++ {
		c.layers = append(c.layers, newLayer(i, config.TileWidth, config.TileHeight))
	}
	c.dirty = true

	Logger().Info("atlas: cache created",
		"label", config.Label,
		"tile", fmt.Sprintf("%dx%d", config.TileWidth, config.TileHeight),
		"layers", config.InitialLayers,
		"format", config.Format)

	return c, nil
}

func (c *Cache[K, D]) descriptor(layers int) TextureDescriptor {
	return TextureDescriptor{
		Label:  c.config.Label,
		Width:  c.config.TileWidth,
		Height: c.config.TileHeight,
		Layers: layers,
		Format: c.config.Format,
	}
}

// Upload packs a w x h image under key and writes its pixels to the device.
//
// If key already has a live entry of the same size, its allocation is
// returned unchanged and no write is issued. A live key with a different
// size fails with *KeyAlreadyBoundError. Images larger than the tile extent
// fail with *OversizeError. Both leave the cache untouched.
//
// When no layer has room the cache grows by one layer first; a failed
// growth returns *DeviceResourceError and creates no entry.
func (c *Cache[K, D]) Upload(key K, pixels []byte, w, h int, data D) (ID, Allocation, error) {
	if idx, ok := c.lookup[key]; ok {
		e := &c.entries[idx]
		if e.alloc.Rect.Width != w || e.alloc.Rect.Height != h {
			return ID{}, Allocation{}, &KeyAlreadyBoundError{Existing: e.alloc, Requested: [2]int{w, h}}
		}
		e.lastUsed = c.cycle
		c.stats.Hits++
		return c.idOf(idx), e.alloc, nil
	}

	if w <= 0 || h <= 0 {
		return ID{}, Allocation{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	if w > c.config.TileWidth || h > c.config.TileHeight {
		return ID{}, Allocation{}, &OversizeError{
			Width: w, Height: h,
			TileWidth: c.config.TileWidth, TileHeight: c.config.TileHeight,
		}
	}
	if want := w * h * c.config.Format.BytesPerPixel(); len(pixels) != want {
		return ID{}, Allocation{}, fmt.Errorf("%w: got %d bytes, want %d", ErrPixelDataSize, len(pixels), want)
	}

	layer, slot, ok := c.pack(w, h)
	if !ok {
		if err := c.grow(); err != nil {
			return ID{}, Allocation{}, err
		}
		layer, slot, ok = c.pack(w, h)
		if !ok {
			return ID{}, Allocation{}, fmt.Errorf("atlas: %dx%d did not fit an empty layer", w, h)
		}
	}

	alloc := Allocation{
		Rect:  Rect{X: slot.X, Y: slot.Y, Width: w, Height: h},
		Layer: layer,
	}
	if err := c.device.WriteRegion(c.texture, layer, alloc.Rect, pixels); err != nil {
		c.layers[layer].packer.Free(slot)
		return ID{}, Allocation{}, &DeviceResourceError{Op: "write", Layers: len(c.layers), Err: err}
	}
	c.stats.Writes++
	c.stats.Misses++

	idx := c.insert(key, alloc, slot, data)
	return c.idOf(idx), alloc, nil
}

// pack tries every layer in ascending index order.
func (c *Cache[K, D]) pack(w, h int) (layer int, slot Rect, ok bool) {
	pw := min(w+c.config.Padding, c.config.TileWidth)
	ph := min(h+c.config.Padding, c.config.TileHeight)
	for _, l := range c.layers {
		if r, ok := l.packer.Allocate(pw, ph); ok {
			return l.index, r, true
		}
	}
	return 0, Rect{}, false
}

// grow stages a texture array with one more layer, copies every existing
// layer into it and only then publishes it. Any failure leaves the cache
// on the previous texture.
func (c *Cache[K, D]) grow() error {
	current := len(c.layers)
	next := current + 1

	if next > c.config.MaxLayers {
		err := &DeviceResourceError{
			Op:     "limit",
			Layers: next,
			Err:    fmt.Errorf("max layers %d reached", c.config.MaxLayers),
		}
		Logger().Warn("atlas: growth refused", "label", c.config.Label, "err", err)
		return err
	}

	staged, err := c.device.CreateTexture(c.descriptor(next))
	if err != nil {
		Logger().Warn("atlas: growth failed", "label", c.config.Label, "op", "create", "err", err)
		return &DeviceResourceError{Op: "create", Layers: next, Err: err}
	}

	if err := c.device.CopyLayers(c.texture, staged, current); err != nil {
		c.device.DestroyTexture(staged)
		Logger().Warn("atlas: growth failed", "label", c.config.Label, "op", "copy", "err", err)
		return &DeviceResourceError{Op: "copy", Layers: next, Err: err}
	}

	old := c.texture
	c.texture = staged
	c.layers = append(c.layers, newLayer(current, c.config.TileWidth, c.config.TileHeight))
	c.dirty = true
	c.stats.Growths++
	c.device.DestroyTexture(old)

	Logger().Debug("atlas: grew texture array", "label", c.config.Label, "layers", next)
	return nil
}

// insert stores a new live entry and returns its slot index.
func (c *Cache[K, D]) insert(key K, alloc Allocation, slot Rect, data D) uint32 {
	var idx uint32
	if n := len(c.free); n > 0 {
		idx = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		c.entries = append(c.entries, entry[K, D]{})
		idx = uint32(len(c.entries) - 1) //nolint:gosec // entry count stays far below 2^32
	}

	e := &c.entries[idx]
	e.key = key
	e.alloc = alloc
	e.slot = slot
	e.data = data
	e.refCount = 0
	e.lastUsed = c.cycle
	e.generation++
	e.live = true

	c.lookup[key] = idx
	return idx
}

func (c *Cache[K, D]) idOf(idx uint32) ID {
	return ID{index: idx, generation: c.entries[idx].generation}
}

// resolve returns the live entry id refers to.
func (c *Cache[K, D]) resolve(id ID) (*entry[K, D], bool) {
	if id.IsZero() || int(id.index) >= len(c.entries) {
		return nil, false
	}
	e := &c.entries[id.index]
	if !e.live || e.generation != id.generation {
		return nil, false
	}
	return e, true
}

func (c *Cache[K, D]) resolveKey(key K) (*entry[K, D], bool) {
	idx, ok := c.lookup[key]
	if !ok {
		return nil, false
	}
	return &c.entries[idx], true
}

// UploadData replaces the payload of an existing entry without touching
// its allocation. It returns false if key has no live entry.
func (c *Cache[K, D]) UploadData(key K, data D) bool {
	e, ok := c.resolveKey(key)
	if !ok {
		return false
	}
	e.data = data
	return true
}

// Get returns the allocation for id and promotes the entry.
func (c *Cache[K, D]) Get(id ID) (Allocation, bool) {
	e, ok := c.resolve(id)
	if !ok {
		return Allocation{}, false
	}
	e.lastUsed = c.cycle
	return e.alloc, true
}

// GetByKey returns the allocation for key and promotes the entry.
func (c *Cache[K, D]) GetByKey(key K) (Allocation, bool) {
	e, ok := c.resolveKey(key)
	if !ok {
		return Allocation{}, false
	}
	e.lastUsed = c.cycle
	return e.alloc, true
}

// Peek returns the allocation for id without affecting eviction.
func (c *Cache[K, D]) Peek(id ID) (Allocation, bool) {
	e, ok := c.resolve(id)
	if !ok {
		return Allocation{}, false
	}
	return e.alloc, true
}

// PeekByKey returns the allocation for key without affecting eviction.
func (c *Cache[K, D]) PeekByKey(key K) (Allocation, bool) {
	e, ok := c.resolveKey(key)
	if !ok {
		return Allocation{}, false
	}
	return e.alloc, true
}

// ID returns the current handle for key.
func (c *Cache[K, D]) ID(key K) (ID, bool) {
	idx, ok := c.lookup[key]
	if !ok {
		return ID{}, false
	}
	return c.idOf(idx), true
}

// Data returns the payload stored for id. It does not promote.
func (c *Cache[K, D]) Data(id ID) (D, bool) {
	e, ok := c.resolve(id)
	if !ok {
		var zero D
		return zero, false
	}
	return e.data, true
}

// DataByKey returns the payload stored for key. It does not promote.
func (c *Cache[K, D]) DataByKey(key K) (D, bool) {
	e, ok := c.resolveKey(key)
	if !ok {
		var zero D
		return zero, false
	}
	return e.data, true
}

// Promote marks the entry as used in the current cycle, protecting it
// from the next Trim.
func (c *Cache[K, D]) Promote(id ID) bool {
	e, ok := c.resolve(id)
	if !ok {
		return false
	}
	e.lastUsed = c.cycle
	return true
}

// PromoteByKey is Promote addressed by key.
func (c *Cache[K, D]) PromoteByKey(key K) bool {
	e, ok := c.resolveKey(key)
	if !ok {
		return false
	}
	e.lastUsed = c.cycle
	return true
}

// Retain increments the entry's reference count. Entries with a non-zero
// reference count are never evicted by Trim.
func (c *Cache[K, D]) Retain(id ID) bool {
	e, ok := c.resolve(id)
	if !ok {
		return false
	}
	e.refCount++
	return true
}

// Release decrements the entry's reference count. Releasing an unpinned
// entry is a no-op that still reports true.
func (c *Cache[K, D]) Release(id ID) bool {
	e, ok := c.resolve(id)
	if !ok {
		return false
	}
	if e.refCount > 0 {
		e.refCount--
	}
	return true
}

// Trim evicts every live entry that is unpinned and was not promoted since
// the previous Trim, then starts a new promotion cycle. Freed space is
// reused by later uploads; layers are never removed. It returns the number
// of evicted entries.
func (c *Cache[K, D]) Trim() int {
	evicted := 0
	for i := range c.entries {
		e := &c.entries[i]
		if !e.live || e.refCount > 0 || e.lastUsed >= c.cycle {
			continue
		}
		c.evict(uint32(i)) //nolint:gosec // index comes from the entry table
		evicted++
	}
	c.cycle++

	if evicted > 0 {
		Logger().Debug("atlas: trimmed", "label", c.config.Label, "evicted", evicted, "live", len(c.lookup))
	}
	return evicted
}

// Remove evicts the entry immediately regardless of promotion or pins.
// It returns the layer the entry occupied.
func (c *Cache[K, D]) Remove(id ID) (layer int, ok bool) {
	if _, ok := c.resolve(id); !ok {
		return 0, false
	}
	return c.evict(id.index), true
}

// RemoveByKey is Remove addressed by key.
func (c *Cache[K, D]) RemoveByKey(key K) (layer int, ok bool) {
	idx, ok := c.lookup[key]
	if !ok {
		return 0, false
	}
	return c.evict(idx), true
}

// evict frees the entry's packer space and recycles its slot.
func (c *Cache[K, D]) evict(idx uint32) int {
	e := &c.entries[idx]
	layer := e.alloc.Layer
	c.layers[layer].packer.Free(e.slot)
	delete(c.lookup, e.key)

	var zeroK K
	var zeroD D
	e.key = zeroK
	e.data = zeroD
	e.live = false
	e.refCount = 0
	c.free = append(c.free, idx)

	c.stats.Evictions++
	return layer
}

// Clear drops every entry and resets every layer's packer. The layer count,
// and therefore the texture, is unchanged. Outstanding IDs become stale.
func (c *Cache[K, D]) Clear() {
	c.free = c.free[:0]
	for i := range c.entries {
		e := &c.entries[i]
		var zeroK K
		var zeroD D
		e.key = zeroK
		e.data = zeroD
		e.live = false
		e.refCount = 0
		c.free = append(c.free, uint32(i)) //nolint:gosec // index comes from the entry table
	}
	clear(c.lookup)
	for _, l := range c.layers {
		l.packer.Clear()
	}
	Logger().Debug("atlas: cleared", "label", c.config.Label, "layers", len(c.layers))
}

// Texture returns the current texture array. The value changes on growth;
// renderers should bind it through a Group.
func (c *Cache[K, D]) Texture() Texture {
	return c.texture
}

// textureDirty and markClean are the dirty observation point for Group.
func (c *Cache[K, D]) textureDirty() bool { return c.dirty }
func (c *Cache[K, D]) markClean()         { c.dirty = false }

// Config returns the effective cache configuration.
func (c *Cache[K, D]) Config() Config {
	return c.config
}

// TileSize returns the fixed extent of every layer.
func (c *Cache[K, D]) TileSize() (w, h int) {
	return c.config.TileWidth, c.config.TileHeight
}

// Format returns the pixel format of the texture array.
func (c *Cache[K, D]) Format() Format {
	return c.config.Format
}

// Len returns the number of live entries.
func (c *Cache[K, D]) Len() int {
	return len(c.lookup)
}

// LayerCount returns the number of layers in the texture array.
func (c *Cache[K, D]) LayerCount() int {
	return len(c.layers)
}

// Layer returns the layer at index, or false if the texture array has no
// such slice.
func (c *Cache[K, D]) Layer(index int) (*Layer, bool) {
	if index < 0 || index >= len(c.layers) {
		return nil, false
	}
	return c.layers[index], true
}

// Layers returns information about all layers.
func (c *Cache[K, D]) Layers() []LayerInfo {
	infos := make([]LayerInfo, len(c.layers))
	for i, l := range c.layers {
		infos[i] = l.Info()
	}
	return infos
}

// Stats returns cache statistics.
func (c *Cache[K, D]) Stats() Stats {
	s := c.stats
	s.Entries = len(c.lookup)
	s.Layers = len(c.layers)
	s.Cycle = c.cycle
	return s
}
