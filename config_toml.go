package vgcanvas

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// tomlConfig mirrors the subset of Config that makes sense to tune from a
// file rather than a call site: geometry/atlas tunables, not stack depth
// (a programmer constant, not deployment-time tuning).
type tomlConfig struct {
	TessTolerance          float32 `toml:"tess_tolerance"`
	MinPointDistance       float32 `toml:"min_point_distance"`
	MaxSubdivisionDepth    int     `toml:"max_subdivision_depth"`
	FringeWidth            float32 `toml:"fringe_width"`
	ImageAtlasPageSize     int     `toml:"image_atlas_page_size"`
	GlyphAtlasPageSize     int     `toml:"glyph_atlas_page_size"`
	ImageAtlasMaxPages     int     `toml:"image_atlas_max_pages"`
	GlyphAtlasMaxPages     int     `toml:"glyph_atlas_max_pages"`
	BakedGeometryCacheSize int     `toml:"baked_geometry_cache_size"`
}

// LoadConfigFile reads tunables from a TOML file, starting from
// DefaultConfig and overriding only the fields present in the file. Fields
// absent from the file (zero value after decode) are left at their default
// rather than being zeroed out, since a partially-specified tuning file is
// the common case (spec.md carries no file-format requirement of its own;
// this is the A2 ambient-config convenience the teacher pack's NoiseTorch
// example establishes the pattern for).
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("vgcanvas: read config file: %w", err)
	}

	var tc tomlConfig
	if _, err := toml.Decode(string(data), &tc); err != nil {
		return cfg, fmt.Errorf("vgcanvas: decode config file: %w", err)
	}

	if tc.TessTolerance != 0 {
		cfg.TessTolerance = tc.TessTolerance
	}
	if tc.MinPointDistance != 0 {
		cfg.MinPointDistance = tc.MinPointDistance
	}
	if tc.MaxSubdivisionDepth != 0 {
		cfg.MaxSubdivisionDepth = tc.MaxSubdivisionDepth
	}
	if tc.FringeWidth != 0 {
		cfg.FringeWidth = tc.FringeWidth
	}
	if tc.ImageAtlasPageSize != 0 {
		cfg.ImageAtlasPageSize = tc.ImageAtlasPageSize
	}
	if tc.GlyphAtlasPageSize != 0 {
		cfg.GlyphAtlasPageSize = tc.GlyphAtlasPageSize
	}
	if tc.ImageAtlasMaxPages != 0 {
		cfg.ImageAtlasMaxPages = tc.ImageAtlasMaxPages
	}
	if tc.GlyphAtlasMaxPages != 0 {
		cfg.GlyphAtlasMaxPages = tc.GlyphAtlasMaxPages
	}
	if tc.BakedGeometryCacheSize != 0 {
		cfg.BakedGeometryCacheSize = tc.BakedGeometryCacheSize
	}

	return cfg, nil
}

// WriteConfigFile writes cfg out as TOML, for callers that want to
// externalize a tuned configuration (e.g. after an offline benchmarking
// pass). Mirrors NoiseTorch's writeConfig/toml.NewEncoder usage.
func WriteConfigFile(path string, cfg Config) error {
	tc := tomlConfig{
		TessTolerance:          cfg.TessTolerance,
		MinPointDistance:       cfg.MinPointDistance,
		MaxSubdivisionDepth:    cfg.MaxSubdivisionDepth,
		FringeWidth:            cfg.FringeWidth,
		ImageAtlasPageSize:     cfg.ImageAtlasPageSize,
		GlyphAtlasPageSize:     cfg.GlyphAtlasPageSize,
		ImageAtlasMaxPages:     cfg.ImageAtlasMaxPages,
		GlyphAtlasMaxPages:     cfg.GlyphAtlasMaxPages,
		BakedGeometryCacheSize: cfg.BakedGeometryCacheSize,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vgcanvas: create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(tc); err != nil {
		return fmt.Errorf("vgcanvas: encode config file: %w", err)
	}
	return nil
}
