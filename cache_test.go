// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
)

// nopBinder hands out increasing integers as bindings.
type nopBinder struct {
	next    int
	bound   []Texture
	unbound []int
	fail    error
}

func (b *nopBinder) Bind(tex Texture) (int, error) {
	if b.fail != nil {
		return 0, b.fail
	}
	b.next++
	b.bound = append(b.bound, tex)
	return b.next, nil
}

func (b *nopBinder) Unbind(binding int) {
	b.unbound = append(b.unbound, binding)
}

func TestNewCache(t *testing.T) {
	dev := newFakeDevice()
	c := mustCache[string, int](t, dev, Config{InitialLayers: 2})

	if got := c.LayerCount(); got != 2 {
		t.Errorf("LayerCount() = %d, want 2", got)
	}
	if w, h := c.TileSize(); w != DefaultTileSize || h != DefaultTileSize {
		t.Errorf("TileSize() = %dx%d, want default", w, h)
	}
	if c.Texture().Layers() != 2 {
		t.Errorf("Texture().Layers() = %d, want 2", c.Texture().Layers())
	}
	if !c.textureDirty() {
		t.Error("new cache should report its texture as dirty")
	}
	if dev.creates != 1 {
		t.Errorf("creates = %d, want 1", dev.creates)
	}
}

func TestNewCacheErrors(t *testing.T) {
	if _, err := NewCache[string, int](nil, Config{}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device: error = %v, want ErrNilDevice", err)
	}

	var cfgErr *ConfigError
	if _, err := NewCache[string, int](newFakeDevice(), Config{TileWidth: 8}); !errors.As(err, &cfgErr) {
		t.Errorf("tiny tile: error = %v, want *ConfigError", err)
	}

	dev := newFakeDevice()
	dev.failCreate = errors.New("out of memory")
	_, err := NewCache[string, int](dev, Config{})
	var devErr *DeviceResourceError
	if !errors.As(err, &devErr) || devErr.Op != "create" {
		t.Errorf("create failure: error = %v, want create DeviceResourceError", err)
	}
}

// Two 200x200 images in a 256x256 layer force exactly one growth.
func TestCacheGrowthScenario(t *testing.T) {
	dev := newFakeDevice()
	c := mustCache[string, int](t, dev, Config{TileWidth: 256, TileHeight: 256})
	binder := &nopBinder{}
	g := NewGroup[int](c, binder)

	if rebuilt, err := g.Update(); err != nil || !rebuilt {
		t.Fatalf("initial Update() = %v, %v; want true, nil", rebuilt, err)
	}
	first := c.Texture()

	idA, a := upload(t, c, "A", 200, 200)
	if a.Layer != 0 || a.Rect.X != 0 || a.Rect.Y != 0 {
		t.Fatalf("A = %v, want layer 0 at origin", a)
	}
	if rebuilt, _ := g.Update(); rebuilt {
		t.Error("Update() rebuilt without growth")
	}

	_, b := upload(t, c, "B", 200, 200)
	if c.LayerCount() != 2 {
		t.Fatalf("LayerCount() = %d, want 2", c.LayerCount())
	}
	if b.Layer != 1 || b.Rect.X != 0 || b.Rect.Y != 0 {
		t.Errorf("B = %v, want layer 1 at origin", b)
	}
	if dev.lastCopyLayers != 1 {
		t.Errorf("copied %d layers, want 1", dev.lastCopyLayers)
	}
	if !first.(*fakeTexture).destroyed {
		t.Error("old texture was not destroyed after growth")
	}
	if dev.alive() != 1 {
		t.Errorf("alive textures = %d, want 1", dev.alive())
	}

	got, ok := c.Peek(idA)
	if !ok || got != a {
		t.Errorf("A after growth = %v, %v; want %v", got, ok, a)
	}

	rebuilt, err := g.Update()
	if err != nil || !rebuilt {
		t.Fatalf("Update() after growth = %v, %v; want true, nil", rebuilt, err)
	}
	if rebuilt, _ := g.Update(); rebuilt {
		t.Error("second Update() rebuilt again")
	}
	if g.Generation() != 2 {
		t.Errorf("Generation() = %d, want 2", g.Generation())
	}
	if binder.bound[len(binder.bound)-1] != c.Texture() {
		t.Error("binding does not reference the grown texture")
	}
	if len(binder.unbound) != 1 || binder.unbound[0] != 1 {
		t.Errorf("unbound = %v, want [1]", binder.unbound)
	}
}

func TestCacheUploadDedup(t *testing.T) {
	dev := newFakeDevice()
	c := mustCache[string, int](t, dev, Config{TileWidth: 64, TileHeight: 64})

	id1, a1 := upload(t, c, "k", 10, 10)
	id2, a2 := upload(t, c, "k", 10, 10)

	if id1 != id2 || a1 != a2 {
		t.Errorf("re-upload returned %v %v, want %v %v", id2, a2, id1, a1)
	}
	if dev.writes != 1 {
		t.Errorf("writes = %d, want 1", dev.writes)
	}
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Entries != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 1 entry", s)
	}
}

func TestCacheUploadKeyAlreadyBound(t *testing.T) {
	dev := newFakeDevice()
	c := mustCache[string, int](t, dev, Config{TileWidth: 64, TileHeight: 64})
	_, a := upload(t, c, "k", 10, 10)

	_, _, err := c.Upload("k", make([]byte, 12*12*4), 12, 12, 0)
	if !errors.Is(err, ErrKeyAlreadyBound) {
		t.Fatalf("error = %v, want ErrKeyAlreadyBound", err)
	}
	var kerr *KeyAlreadyBoundError
	if !errors.As(err, &kerr) || kerr.Existing != a || kerr.Requested != [2]int{12, 12} {
		t.Errorf("error detail = %+v", kerr)
	}
	if got, _ := c.PeekByKey("k"); got != a {
		t.Errorf("entry changed to %v", got)
	}
	if dev.writes != 1 {
		t.Errorf("writes = %d, want 1", dev.writes)
	}
}

func TestCacheUploadValidation(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		pixels int
		want   error
	}{
		{"oversize width", 65, 10, 65 * 10 * 4, ErrOversize},
		{"oversize height", 10, 65, 10 * 65 * 4, ErrOversize},
		{"zero width", 0, 10, 0, ErrInvalidSize},
		{"negative height", 10, -1, 0, ErrInvalidSize},
		{"short pixels", 10, 10, 399, ErrPixelDataSize},
		{"long pixels", 10, 10, 401, ErrPixelDataSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			c := mustCache[string, int](t, dev, Config{TileWidth: 64, TileHeight: 64})

			_, _, err := c.Upload("k", make([]byte, tt.pixels), tt.w, tt.h, 0)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if c.Len() != 0 || c.LayerCount() != 1 || dev.writes != 0 || dev.creates != 1 {
				t.Errorf("cache mutated: len=%d layers=%d writes=%d creates=%d",
					c.Len(), c.LayerCount(), dev.writes, dev.creates)
			}
		})
	}
}

func TestCacheOversizeDetail(t *testing.T) {
	c := mustCache[string, int](t, newFakeDevice(), Config{TileWidth: 256, TileHeight: 256})
	_, _, err := c.Upload("big", make([]byte, 257*10*4), 257, 10, 0)
	var oerr *OversizeError
	if !errors.As(err, &oerr) {
		t.Fatalf("error = %v, want *OversizeError", err)
	}
	if oerr.Width != 257 || oerr.TileWidth != 256 {
		t.Errorf("OversizeError = %+v", oerr)
	}
}

func TestCacheGrowthFailure(t *testing.T) {
	tests := []struct {
		name   string
		inject func(d *fakeDevice)
		op     string
	}{
		{"create", func(d *fakeDevice) { d.failCreate = errors.New("no memory") }, "create"},
		{"copy", func(d *fakeDevice) { d.failCopy = errors.New("device lost") }, "copy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			c := mustCache[string, int](t, dev, Config{TileWidth: 32, TileHeight: 32})
			g := NewGroup[int](c, &nopBinder{})
			if _, err := g.Update(); err != nil {
				t.Fatal(err)
			}
			upload(t, c, "a", 32, 32)
			before := c.Texture()

			tt.inject(dev)
			_, _, err := c.Upload("b", make([]byte, 32*32*4), 32, 32, 0)

			var derr *DeviceResourceError
			if !errors.As(err, &derr) || derr.Op != tt.op || derr.Layers != 2 {
				t.Fatalf("error = %v, want %s DeviceResourceError for 2 layers", err, tt.op)
			}
			if !errors.Is(err, ErrDeviceResource) {
				t.Error("errors.Is(err, ErrDeviceResource) = false")
			}
			if c.Texture() != before {
				t.Error("texture swapped after failed growth")
			}
			if c.LayerCount() != 1 || c.Len() != 1 {
				t.Errorf("layers=%d len=%d, want 1 and 1", c.LayerCount(), c.Len())
			}
			if _, ok := c.PeekByKey("b"); ok {
				t.Error("failed upload created an entry")
			}
			if c.textureDirty() {
				t.Error("failed growth marked the texture dirty")
			}
			if dev.alive() != 1 {
				t.Errorf("alive textures = %d, want 1 (staged texture leaked)", dev.alive())
			}
		})
	}
}

func TestCacheMaxLayers(t *testing.T) {
	dev := newFakeDevice()
	c := mustCache[int, int](t, dev, Config{TileWidth: 16, TileHeight: 16, MaxLayers: 2, Format: FormatR8})
	upload(t, c, 1, 16, 16)
	upload(t, c, 2, 16, 16)

	_, _, err := c.Upload(3, make([]byte, 16*16), 16, 16, 0)
	var derr *DeviceResourceError
	if !errors.As(err, &derr) || derr.Op != "limit" {
		t.Fatalf("error = %v, want limit DeviceResourceError", err)
	}
	if dev.creates != 2 {
		t.Errorf("creates = %d, want 2", dev.creates)
	}
	if st := c.Stats(); st.Misses != 2 {
		t.Errorf("Misses = %d after a failed growth, want 2", st.Misses)
	}

	// Freed space is reused without growing.
	if _, ok := c.RemoveByKey(1); !ok {
		t.Fatal("RemoveByKey(1) = false")
	}
	_, a := upload(t, c, 3, 16, 16)
	if a.Layer != 0 {
		t.Errorf("reused layer = %d, want 0", a.Layer)
	}
}

func TestCacheWriteFailure(t *testing.T) {
	dev := newFakeDevice()
	c := mustCache[string, int](t, dev, Config{TileWidth: 64, TileHeight: 64})
	upload(t, c, "a", 10, 10)
	used := c.layers[0].packer.Used()

	dev.failWrite = errors.New("queue closed")
	_, _, err := c.Upload("b", make([]byte, 10*10*4), 10, 10, 0)
	var derr *DeviceResourceError
	if !errors.As(err, &derr) || derr.Op != "write" {
		t.Fatalf("error = %v, want write DeviceResourceError", err)
	}
	if c.layers[0].packer.Used() != used {
		t.Error("failed write leaked packer space")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if st := c.Stats(); st.Misses != 1 || st.Writes != 1 {
		t.Errorf("Misses = %d, Writes = %d; failed upload must not count", st.Misses, st.Writes)
	}
}

func TestCacheTrim(t *testing.T) {
	c := mustCache[string, int](t, newFakeDevice(), Config{TileWidth: 64, TileHeight: 64})
	upload(t, c, "a", 8, 8)
	upload(t, c, "b", 8, 8)

	// Uploads promote into the current cycle.
	if n := c.Trim(); n != 0 {
		t.Fatalf("first Trim() = %d, want 0", n)
	}

	if _, ok := c.GetByKey("a"); !ok {
		t.Fatal("GetByKey(a) = false")
	}
	if n := c.Trim(); n != 1 {
		t.Fatalf("second Trim() = %d, want 1", n)
	}
	if _, ok := c.PeekByKey("b"); ok {
		t.Error("b survived trim")
	}
	if _, ok := c.PeekByKey("a"); !ok {
		t.Error("promoted a was evicted")
	}

	if n := c.Trim(); n != 1 {
		t.Errorf("third Trim() = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if got := c.Stats().Evictions; got != 2 {
		t.Errorf("Evictions = %d, want 2", got)
	}
}

func TestCacheAccessorsPromotion(t *testing.T) {
	tests := []struct {
		name     string
		access   func(c *Cache[string, int], id ID)
		promotes bool
	}{
		{"Get", func(c *Cache[string, int], id ID) { c.Get(id) }, true},
		{"GetByKey", func(c *Cache[string, int], _ ID) { c.GetByKey("k") }, true},
		{"Promote", func(c *Cache[string, int], id ID) { c.Promote(id) }, true},
		{"PromoteByKey", func(c *Cache[string, int], _ ID) { c.PromoteByKey("k") }, true},
		{"Upload", func(c *Cache[string, int], _ ID) { _, _, _ = c.Upload("k", make([]byte, 64), 4, 4, 0) }, true},
		{"Peek", func(c *Cache[string, int], id ID) { c.Peek(id) }, false},
		{"PeekByKey", func(c *Cache[string, int], _ ID) { c.PeekByKey("k") }, false},
		{"Data", func(c *Cache[string, int], id ID) { c.Data(id) }, false},
		{"DataByKey", func(c *Cache[string, int], _ ID) { c.DataByKey("k") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCache[string, int](t, newFakeDevice(), Config{TileWidth: 64, TileHeight: 64})
			id, _ := upload(t, c, "k", 4, 4)
			c.Trim()

			tt.access(c, id)
			evicted := c.Trim() == 1
			if evicted == tt.promotes {
				t.Errorf("evicted = %v, want %v", evicted, !tt.promotes)
			}
		})
	}
}

func TestCacheRetainRelease(t *testing.T) {
	c := mustCache[string, int](t, newFakeDevice(), Config{TileWidth: 64, TileHeight: 64})
	id, _ := upload(t, c, "k", 4, 4)

	if !c.Retain(id) {
		t.Fatal("Retain() = false")
	}
	for i := range 3 {
		if n := c.Trim(); n != 0 {
			t.Fatalf("Trim() #%d evicted pinned entry", i)
		}
	}

	if !c.Release(id) {
		t.Fatal("Release() = false")
	}
	if n := c.Trim(); n != 1 {
		t.Errorf("Trim() after Release = %d, want 1", n)
	}
	if c.Retain(id) || c.Release(id) {
		t.Error("Retain/Release succeeded on an evicted entry")
	}
}

func TestCacheRemove(t *testing.T) {
	c := mustCache[string, int](t, newFakeDevice(), Config{TileWidth: 16, TileHeight: 16, Format: FormatR8})
	upload(t, c, "a", 16, 16)
	idB, _ := upload(t, c, "b", 16, 16)

	layer, ok := c.Remove(idB)
	if !ok || layer != 1 {
		t.Fatalf("Remove(b) = %d, %v; want 1, true", layer, ok)
	}
	if _, ok := c.Remove(idB); ok {
		t.Error("second Remove(b) = true")
	}
	if layer, ok := c.RemoveByKey("a"); !ok || layer != 0 {
		t.Errorf("RemoveByKey(a) = %d, %v; want 0, true", layer, ok)
	}
	if _, ok := c.RemoveByKey("a"); ok {
		t.Error("second RemoveByKey(a) = true")
	}
	if c.LayerCount() != 2 {
		t.Errorf("LayerCount() = %d, layers must never shrink", c.LayerCount())
	}
}

func TestCacheEvictionFreesCapacity(t *testing.T) {
	keys := []string{"a", "b", "c", "d"}
	evictors := []struct {
		name  string
		evict func(t *testing.T, c *Cache[string, int])
	}{
		{"Remove", func(t *testing.T, c *Cache[string, int]) {
			if _, ok := c.RemoveByKey("a"); !ok {
				t.Fatal("RemoveByKey(a) failed")
			}
		}},
		{"Trim", func(t *testing.T, c *Cache[string, int]) {
			c.Trim()
			for _, k := range keys[1:] {
				c.GetByKey(k)
			}
			if n := c.Trim(); n != 1 {
				t.Fatalf("Trim() evicted %d, want 1", n)
			}
		}},
	}

	for _, padding := range []int{0, 1} {
		for _, ev := range evictors {
			t.Run(fmt.Sprintf("%s/padding=%d", ev.name, padding), func(t *testing.T) {
				c := mustCache[string, int](t, newFakeDevice(), Config{
					TileWidth: 64, TileHeight: 64, MaxLayers: 1, Padding: padding, Format: FormatR8,
				})

				// Four padded 32x32 slots fill the only layer.
				size := 32 - padding
				allocs := make(map[string]Allocation)
				for _, k := range keys {
					_, allocs[k] = upload(t, c, k, size, size)
				}
				px := make([]byte, size*size)
				if _, _, err := c.Upload("full", px, size, size, 0); !errors.Is(err, ErrDeviceResource) {
					t.Fatalf("Upload into a full single-layer cache: error = %v", err)
				}

				ev.evict(t, c)

				_, got := upload(t, c, "e", size, size)
				if got != allocs["a"] {
					t.Errorf("new entry at %v, want the freed slot %v", got, allocs["a"])
				}
				if st := c.Stats(); st.Growths != 0 || c.LayerCount() != 1 {
					t.Errorf("Growths = %d, LayerCount = %d; want no growth", st.Growths, c.LayerCount())
				}
			})
		}
	}
}

func TestCacheStaleID(t *testing.T) {
	c := mustCache[string, int](t, newFakeDevice(), Config{TileWidth: 64, TileHeight: 64})
	old, _ := upload(t, c, "a", 8, 8)
	c.Remove(old)

	fresh, _ := upload(t, c, "b", 8, 8)
	if fresh.index != old.index {
		t.Fatalf("slot not reused: %v vs %v", fresh, old)
	}
	if fresh == old {
		t.Fatal("reused slot returned the same ID")
	}
	if _, ok := c.Get(old); ok {
		t.Error("stale ID resolved")
	}
	if _, ok := c.Data(old); ok {
		t.Error("stale ID returned data")
	}
	if _, ok := c.Get(fresh); !ok {
		t.Error("fresh ID did not resolve")
	}
	if _, ok := c.Get(ID{}); ok {
		t.Error("zero ID resolved")
	}
}

func TestCacheClear(t *testing.T) {
	dev := newFakeDevice()
	c := mustCache[string, int](t, dev, Config{TileWidth: 16, TileHeight: 16, Format: FormatR8})
	idA, _ := upload(t, c, "a", 16, 16)
	upload(t, c, "b", 16, 16)
	tex := c.Texture()

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if c.LayerCount() != 2 || c.Texture() != tex {
		t.Error("Clear() changed the texture array")
	}
	if _, ok := c.Get(idA); ok {
		t.Error("ID resolved after Clear()")
	}
	if _, ok := c.GetByKey("a"); ok {
		t.Error("key resolved after Clear()")
	}

	// Both layers are empty again.
	_, a := upload(t, c, "c", 16, 16)
	_, b := upload(t, c, "d", 16, 16)
	if a.Layer != 0 || b.Layer != 1 || c.LayerCount() != 2 {
		t.Errorf("after Clear(): c=%v d=%v layers=%d", a, b, c.LayerCount())
	}
}

func TestCacheUploadData(t *testing.T) {
	c := mustCache[string, string](t, newFakeDevice(), Config{TileWidth: 64, TileHeight: 64})
	id, _, err := c.Upload("k", make([]byte, 16*4), 4, 4, "first")
	if err != nil {
		t.Fatal(err)
	}
	if !c.UploadData("k", "second") {
		t.Fatal("UploadData() = false")
	}
	if got, _ := c.Data(id); got != "second" {
		t.Errorf("Data() = %q, want second", got)
	}
	if got, _ := c.DataByKey("k"); got != "second" {
		t.Errorf("DataByKey() = %q, want second", got)
	}
	if c.UploadData("missing", "x") {
		t.Error("UploadData(missing) = true")
	}
	if got, ok := c.ID("k"); !ok || got != id {
		t.Errorf("ID(k) = %v, %v; want %v", got, ok, id)
	}
}

func TestCachePadding(t *testing.T) {
	c := mustCache[int, int](t, newFakeDevice(), Config{TileWidth: 64, TileHeight: 64, Padding: 2})
	_, a := upload(t, c, 1, 10, 10)
	_, b := upload(t, c, 2, 10, 10)

	if a.Rect != (Rect{0, 0, 10, 10}) {
		t.Errorf("a = %v", a.Rect)
	}
	if b.Rect != (Rect{12, 0, 10, 10}) {
		t.Errorf("b = %v, want padded placement at x=12", b.Rect)
	}

	// A full-tile image still fits a fresh layer despite padding.
	_, full := upload(t, c, 3, 64, 64)
	if full.Layer != 1 {
		t.Errorf("full = %v, want layer 1", full)
	}
}

func TestCacheAllocationsNeverOverlap(t *testing.T) {
	const tile = 128
	c := mustCache[int, int](t, newFakeDevice(), Config{TileWidth: tile, TileHeight: tile, Format: FormatR8})
	rng := rand.New(rand.NewPCG(1, 2))

	ids := make(map[int]ID)
	for i := range 400 {
		w, h := 1+rng.IntN(40), 1+rng.IntN(40)
		id, _ := upload(t, c, i, w, h)
		ids[i] = id

		// Churn: drop some entries to exercise free-list reuse.
		if rng.IntN(3) == 0 {
			victim := rng.IntN(i + 1)
			if vid, ok := ids[victim]; ok {
				c.Remove(vid)
				delete(ids, victim)
			}
		}
	}

	var allocs []Allocation
	for _, id := range ids {
		a, ok := c.Peek(id)
		if !ok {
			t.Fatalf("live ID %v did not resolve", id)
		}
		if a.Rect.X < 0 || a.Rect.Y < 0 || a.Rect.X+a.Rect.Width > tile || a.Rect.Y+a.Rect.Height > tile {
			t.Fatalf("%v out of layer bounds", a)
		}
		allocs = append(allocs, a)
	}
	for i := range allocs {
		for j := i + 1; j < len(allocs); j++ {
			if allocs[i].Layer == allocs[j].Layer && allocs[i].Rect.Overlaps(allocs[j].Rect) {
				t.Fatalf("overlap: %v and %v", allocs[i], allocs[j])
			}
		}
	}
	if c.Len() != len(ids) {
		t.Errorf("Len() = %d, want %d", c.Len(), len(ids))
	}
}

func TestCacheLayers(t *testing.T) {
	c := mustCache[string, int](t, newFakeDevice(), Config{TileWidth: 32, TileHeight: 32, Format: FormatR8})
	upload(t, c, "a", 16, 16)

	infos := c.Layers()
	if len(infos) != 1 {
		t.Fatalf("len(Layers()) = %d, want 1", len(infos))
	}
	if infos[0].Entries != 1 || infos[0].Utilization != 0.25 {
		t.Errorf("Layers()[0] = %+v", infos[0])
	}
	if s := c.Stats(); s.Layers != 1 || s.Writes != 1 || s.Cycle != 1 {
		t.Errorf("Stats() = %+v", s)
	}

	l, ok := c.Layer(0)
	if !ok {
		t.Fatal("Layer(0) not found")
	}
	if l.Index() != 0 || l.Live() != 1 || l.Utilization() != 0.25 {
		t.Errorf("Layer(0): index=%d live=%d util=%v", l.Index(), l.Live(), l.Utilization())
	}
	if l.Info() != infos[0] {
		t.Errorf("Layer(0).Info() = %+v, want %+v", l.Info(), infos[0])
	}
	for _, i := range []int{-1, 1} {
		if _, ok := c.Layer(i); ok {
			t.Errorf("Layer(%d) found", i)
		}
	}

	// The view tracks the cache after growth and eviction.
	upload(t, c, "b", 32, 32)
	if l.Live() != 1 {
		t.Errorf("layer 0 Live() = %d after growth, want 1", l.Live())
	}
	c.RemoveByKey("a")
	if l.Live() != 0 {
		t.Errorf("layer 0 Live() = %d after remove, want 0", l.Live())
	}
	if l1, ok := c.Layer(1); !ok || l1.Index() != 1 || l1.Live() != 1 {
		t.Errorf("Layer(1) = %v, %v", l1, ok)
	}
}

func BenchmarkCacheUploadTrim(b *testing.B) {
	c, err := NewCache[string, int](newFakeDevice(), Config{TileWidth: 512, TileHeight: 512, Format: FormatR8})
	if err != nil {
		b.Fatal(err)
	}
	px := make([]byte, 16*16)
	keys := make([]string, 256)
	for i := range keys {
		keys[i] = fmt.Sprintf("glyph-%d", i)
	}

	b.ReportAllocs()
	for b.Loop() {
		for _, k := range keys {
			if _, _, err := c.Upload(k, px, 16, 16, 0); err != nil {
				b.Fatal(err)
			}
		}
		c.Trim()
	}
}
