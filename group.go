// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

// Bindable is a texture source whose identity may change over time.
// It is implemented by *Cache; the dirty observation methods are
// unexported so that only Group can consume them.
type Bindable interface {
	Texture() Texture
	textureDirty() bool
	markClean()
}

// Binder builds and releases backend bindings for a texture.
// B is the backend's bind handle, for example a hal.BindGroup.
type Binder[B any] interface {
	Bind(tex Texture) (B, error)
	Unbind(binding B)
}

// Group wraps a backend binding to a cache's texture array and rebuilds it
// when the cache grows.
//
// Group is the single observer of the cache's dirty flag: create exactly
// one Group per cache. Call Update once per frame before issuing draws.
type Group[B any] struct {
	source Bindable
	binder Binder[B]

	binding    B
	bound      bool
	generation uint64
}

// NewGroup creates a group for source. No binding is built until Update.
func NewGroup[B any](source Bindable, binder Binder[B]) *Group[B] {
	return &Group[B]{source: source, binder: binder}
}

// Update rebuilds the binding if there is none yet or the source texture
// changed since the last successful Update. It reports whether a new
// binding was built.
//
// On failure the previous binding stays current and the source stays
// dirty, so the next Update retries.
func (g *Group[B]) Update() (bool, error) {
	if g.bound && !g.source.textureDirty() {
		return false, nil
	}

	b, err := g.binder.Bind(g.source.Texture())
	if err != nil {
		Logger().Warn("atlas: bind group rebuild failed", "generation", g.generation, "err", err)
		return false, err
	}

	if g.bound {
		g.binder.Unbind(g.binding)
	}
	g.binding = b
	g.bound = true
	g.generation++
	g.source.markClean()

	Logger().Debug("atlas: bind group rebuilt", "generation", g.generation)
	return true, nil
}

// Binding returns the current binding. The second result is false until
// the first successful Update.
func (g *Group[B]) Binding() (B, bool) {
	return g.binding, g.bound
}

// Generation counts successful rebuilds.
func (g *Group[B]) Generation() uint64 {
	return g.generation
}

// Release unbinds the current binding. A later Update builds a new one.
func (g *Group[B]) Release() {
	if !g.bound {
		return
	}
	g.binder.Unbind(g.binding)
	var zero B
	g.binding = zero
	g.bound = false
}
