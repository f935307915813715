package vgcanvas

import (
	"path/filepath"
	"testing"
)

func TestNewConfigAppliesOptionsOverDefaults(t *testing.T) {
	cfg := NewConfig(
		WithTessTolerance(0.5),
		WithStackDepthLimit(8),
		WithGlyphCacheCapacity(128),
	)
	if cfg.TessTolerance != 0.5 {
		t.Errorf("TessTolerance = %v, want 0.5", cfg.TessTolerance)
	}
	if cfg.StackDepthLimit != 8 {
		t.Errorf("StackDepthLimit = %v, want 8", cfg.StackDepthLimit)
	}
	if cfg.GlyphCacheCapacity != 128 {
		t.Errorf("GlyphCacheCapacity = %v, want 128", cfg.GlyphCacheCapacity)
	}
	// Untouched fields keep their default.
	if cfg.FringeWidth != DefaultConfig().FringeWidth {
		t.Errorf("FringeWidth = %v, want default unchanged", cfg.FringeWidth)
	}
}

func TestWithImageAtlasPageSizeSetsBothFields(t *testing.T) {
	cfg := NewConfig(WithImageAtlasPageSize(2048, 16))
	if cfg.ImageAtlasPageSize != 2048 || cfg.ImageAtlasMaxPages != 16 {
		t.Errorf("cfg = %+v, want page size 2048 / max pages 16", cfg)
	}
}

func TestWriteAndLoadConfigFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vgcanvas.toml")
	original := NewConfig(WithTessTolerance(0.75), WithGlyphAtlasPageSize(256, 2))

	if err := WriteConfigFile(path, original); err != nil {
		t.Fatalf("WriteConfigFile: %v", err)
	}

	loaded, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if loaded.TessTolerance != original.TessTolerance {
		t.Errorf("TessTolerance = %v, want %v", loaded.TessTolerance, original.TessTolerance)
	}
	if loaded.GlyphAtlasPageSize != original.GlyphAtlasPageSize || loaded.GlyphAtlasMaxPages != original.GlyphAtlasMaxPages {
		t.Errorf("glyph atlas sizing = %v/%v, want %v/%v",
			loaded.GlyphAtlasPageSize, loaded.GlyphAtlasMaxPages,
			original.GlyphAtlasPageSize, original.GlyphAtlasMaxPages)
	}
	// StackDepthLimit isn't part of the TOML schema; it must survive as the
	// default rather than being zeroed.
	if loaded.StackDepthLimit != DefaultConfig().StackDepthLimit {
		t.Errorf("StackDepthLimit = %v, want default (not part of the file schema)", loaded.StackDepthLimit)
	}
}

func TestLoadConfigFileMissingFile(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err == nil {
		t.Error("expected an error reading a nonexistent config file")
	}
}
