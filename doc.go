// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package atlas provides a GPU texture atlas cache.
//
// # Overview
//
// A Cache packs many small images (glyphs, icons, sprites) into a 2D
// texture array. Every layer of the array has the same fixed extent and
// owns a guillotine Packer. Images are deduplicated by a caller-chosen
// comparable key and addressed by a generational ID that never resolves
// after its entry is gone.
//
//	dev := soft.New()
//	c, err := atlas.NewCache[string, struct{}](dev, atlas.Config{
//	    TileWidth: 512, TileHeight: 512,
//	})
//	id, alloc, err := c.Upload("icon/save", pixels, 24, 24, struct{}{})
//
// # Growth
//
// When no layer can fit a new image the cache grows by copy. It creates a
// texture array with one more layer, copies every existing layer into it
// and only then swaps it in and destroys the old one. A failed create or
// copy leaves the cache on its previous texture with nothing changed.
//
// Because the texture identity changes on growth, renderers bind the
// atlas through a Group, which rebuilds its backend binding when the cache
// reports a new texture.
//
// # Eviction
//
// Get, GetByKey, Promote and Upload mark an entry as used in the current
// promotion cycle. Trim evicts every unpinned entry that was not marked
// since the previous Trim and starts a new cycle; call it once per frame.
// Retain pins an entry until the matching Release.
//
// # Backends
//
// The cache talks to the GPU through the small Device interface:
//   - backend/soft: in-memory texture arrays for tests and CPU rendering
//   - backend/native: gogpu/wgpu HAL textures, copies and bind groups
//
// # Concurrency
//
// Cache, Packer and Group are not safe for concurrent use. SetLogger and
// Logger are.
package atlas
