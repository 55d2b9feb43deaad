// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command atlasdemo packs sprites and a text sample into atlas texture
// arrays, runs a few frames of promote-and-trim, and reports what happened.
//
// With the soft backend every layer is written out as PNG together with a
// preview composed by sampling the atlases:
//
//	atlasdemo -backend soft -sprites ./icons -text "Hello, atlas" -output out
//
// Settings may also come from a TOML file given with -config:
//
//	backend = "soft"
//	text = "Hello, atlas"
//	font_size = 32.0
//
//	[atlas]
//	tile_size = 512
//	padding = 2
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/atlas"
	"github.com/gogpu/atlas/backend"
	_ "github.com/gogpu/atlas/backend/native"
	"github.com/gogpu/atlas/backend/soft"
	"github.com/gogpu/atlas/glyph"
)

const generatedSprites = 64

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "atlasdemo:", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	atlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg, os.Stdout); err != nil {
		atlas.Logger().Error("atlasdemo failed", "err", err)
		os.Exit(1)
	}
}

func openBackend(name string) (backend.Backend, error) {
	if name == "" {
		return backend.Default()
	}
	return backend.Open(name)
}

// demo holds the caches built by run.
type demo struct {
	sprites *atlas.Cache[string, spriteInfo]
	glyphs  *glyph.Atlas
}

// spriteInfo is the payload stored with each sprite.
type spriteInfo struct{ W, H int }

func run(cfg config, out io.Writer) error {
	log := atlas.Logger()

	b, err := openBackend(cfg.Backend)
	if err != nil {
		return err
	}
	defer b.Close()
	log.Info("backend opened", "name", b.Name())

	sprites, err := spriteSet(cfg.Sprites)
	if err != nil {
		return err
	}
	font, err := loadFont(cfg.Font)
	if err != nil {
		return err
	}

	var d demo
	d.sprites, err = atlas.NewCache[string, spriteInfo](b, cfg.Atlas.cacheConfig("sprites", atlas.FormatRGBA8))
	if err != nil {
		return err
	}
	gcfg := glyph.DefaultConfig()
	gcfg.Atlas = cfg.Atlas.cacheConfig("glyphs", atlas.FormatR8)
	d.glyphs, err = glyph.New(b, gcfg)
	if err != nil {
		return err
	}

	var (
		drawn []atlas.Allocation
		quads []glyph.Quad
	)
	for frame := range cfg.Frames {
		// Each frame draws a shrinking prefix of the sprites, so the
		// rest are trimmed at the end of the frame.
		visible := sprites[:len(sprites)/(frame+1)]
		drawn, err = d.drawSprites(visible)
		if err != nil {
			return err
		}
		quads, err = d.glyphs.Layout(font, cfg.Text, cfg.FontSize, 4, cfg.FontSize)
		if err != nil {
			return err
		}

		evicted := d.sprites.Trim()
		evictedGlyphs := d.glyphs.Trim()
		log.Debug("frame done", "frame", frame, "sprites", len(drawn), "quads", len(quads),
			"evicted", evicted, "evicted_glyphs", evictedGlyphs)
	}

	printStats(out, "sprites", d.sprites.Stats(), d.sprites.Layers())
	gs := d.glyphs.Stats()
	printStats(out, "glyphs", gs.Cache, d.glyphs.Cache().Layers())
	fmt.Fprintf(out, "  rasterized %d, skipped %d, shaped runs %d (hit rate %.2f)\n",
		gs.Rasterized, gs.Skipped, gs.Runs.Len, gs.Runs.HitRate)

	if _, ok := b.(*soft.Device); !ok {
		log.Info("layer dump needs the soft backend; skipped", "backend", b.Name())
		return nil
	}
	return d.write(cfg, out, drawn, quads)
}

func spriteSet(dir string) ([]sprite, error) {
	if dir == "" {
		return generateSprites(generatedSprites), nil
	}
	sprites, err := loadSprites(dir)
	if err != nil {
		return nil, err
	}
	if len(sprites) == 0 {
		return nil, fmt.Errorf("no images in %s", dir)
	}
	return sprites, nil
}

func loadFont(path string) (*glyph.Font, error) {
	data := goregular.TTF
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	return glyph.ParseFont(data)
}

// drawSprites makes sure every sprite is resident and promoted. Sprites
// larger than a layer are logged and left out.
func (d *demo) drawSprites(sprites []sprite) ([]atlas.Allocation, error) {
	allocs := make([]atlas.Allocation, 0, len(sprites))
	for _, s := range sprites {
		if a, ok := d.sprites.GetByKey(s.name); ok {
			allocs = append(allocs, a)
			continue
		}
		w, h := s.img.Bounds().Dx(), s.img.Bounds().Dy()
		_, a, err := d.sprites.Upload(s.name, s.img.Pix, w, h, spriteInfo{W: w, H: h})
		if errors.Is(err, atlas.ErrOversize) {
			atlas.Logger().Warn("sprite too large for a layer", "name", s.name, "err", err)
			continue
		}
		if err != nil {
			return allocs, fmt.Errorf("upload %s: %w", s.name, err)
		}
		allocs = append(allocs, a)
	}
	return allocs, nil
}

func (d *demo) write(cfg config, out io.Writer, drawn []atlas.Allocation, quads []glyph.Quad) error {
	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return err
	}

	spriteViews := atlas.NewGroup[*soft.View](d.sprites, soft.NewBinder())
	defer spriteViews.Release()
	glyphViews := atlas.NewGroup[*soft.View](d.glyphs.Cache(), soft.NewBinder())
	defer glyphViews.Release()
	if _, err := spriteViews.Update(); err != nil {
		return err
	}
	if _, err := glyphViews.Update(); err != nil {
		return err
	}
	sv, _ := spriteViews.Binding()
	gv, _ := glyphViews.Binding()

	var files []string
	for _, layers := range []struct {
		prefix string
		tex    *soft.Texture
	}{
		{"sprites", sv.Texture()},
		{"glyphs", gv.Texture()},
	} {
		written, err := dumpLayers(cfg.Output, layers.prefix, layers.tex)
		files = append(files, written...)
		if err != nil {
			return err
		}
	}

	p := preview{width: max(512, cfg.Atlas.TileSize), sprites: sv, glyphs: gv}
	img, err := p.render(drawn, quads, int(math.Ceil(cfg.FontSize*1.5)))
	if err != nil {
		return err
	}
	path := filepath.Join(cfg.Output, "preview.png")
	if err := writePNG(path, img); err != nil {
		return err
	}
	files = append(files, path)

	for _, f := range files {
		fmt.Fprintln(out, "wrote", f)
	}
	return nil
}

func printStats(out io.Writer, name string, st atlas.Stats, layers []atlas.LayerInfo) {
	fmt.Fprintf(out, "%s: %d entries in %d layer(s), %d growth(s), %d eviction(s), %d write(s), hits %d, misses %d\n",
		name, st.Entries, st.Layers, st.Growths, st.Evictions, st.Writes, st.Hits, st.Misses)
	for _, l := range layers {
		fmt.Fprintf(out, "  layer %d: %d entries, %.1f%% used, %d free rects\n",
			l.Index, l.Entries, l.Utilization*100, l.FreeRects)
	}
}
