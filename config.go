package vgcanvas

// Config holds the tunables that spec.md leaves as implementation
// parameters: tessellation tolerance, cache/atlas sizing, and stack depth
// caps. A zero Config is invalid; use DefaultConfig or NewConfig.
type Config struct {
	// TessTolerance bounds adaptive Bézier subdivision error (spec.md §4.4,
	// §8 "Hausdorff distance ... ≤ tessTolerance").
	TessTolerance float32

	// MinPointDistance merges flattened points closer than this, avoiding
	// degenerate zero-length segments feeding the join classifier.
	MinPointDistance float32

	// MaxSubdivisionDepth caps the Bézier recursion (spec.md §8 mentions a
	// cap of 10).
	MaxSubdivisionDepth int

	// FringeWidth is the default antialiasing fringe width in pixels when a
	// RenderState doesn't override it.
	FringeWidth float32

	// StackDepthLimit bounds the transform/render-state/style-pivot/custom-
	// renderer stacks (spec.md §4.5: "depth ≤ 32 in practice").
	StackDepthLimit int

	// ImageAtlasPageSize is the width and height, in pixels, of one image
	// atlas page.
	ImageAtlasPageSize int

	// GlyphAtlasPageSize is the width and height, in pixels, of one glyph
	// atlas page.
	GlyphAtlasPageSize int

	// ImageAtlasMaxPages and GlyphAtlasMaxPages cap how many pages an atlas
	// grows to. Past the cap the glyph atlas rebuilds to make room, while
	// image registration fails with ErrOutOfAtlasSpace.
	ImageAtlasMaxPages int
	GlyphAtlasMaxPages int

	// GlyphCacheCapacity bounds how many resident glyph entries the glyph
	// atlas keeps before evicting the least-recently-used ones (spec.md
	// §4.3 "Glyph atlas").
	GlyphCacheCapacity int

	// BakedGeometryCacheSize bounds the storage facade's baked-geometry
	// cache (C10), backed by cache.ShardedCache.
	BakedGeometryCacheSize int
}

// DefaultConfig returns the tunables used when no Config is supplied.
func DefaultConfig() Config {
	return Config{
		TessTolerance:          0.25,
		MinPointDistance:       0.01,
		MaxSubdivisionDepth:    10,
		FringeWidth:            1.0,
		StackDepthLimit:        32,
		ImageAtlasPageSize:     1024,
		GlyphAtlasPageSize:     512,
		ImageAtlasMaxPages:     8,
		GlyphAtlasMaxPages:     4,
		GlyphCacheCapacity:     4096,
		BakedGeometryCacheSize: 256,
	}
}

// ConfigOption mutates a Config under construction. Grounded on the
// teacher's functional ContextOption pattern (options.go, since deleted),
// generalized from a single Context receiver to a plain Config value so it
// can seed both Canvas and Storage construction.
type ConfigOption func(*Config)

// WithTessTolerance overrides the adaptive subdivision tolerance.
func WithTessTolerance(tol float32) ConfigOption {
	return func(c *Config) { c.TessTolerance = tol }
}

// WithFringeWidth overrides the default antialiasing fringe width.
func WithFringeWidth(w float32) ConfigOption {
	return func(c *Config) { c.FringeWidth = w }
}

// WithStackDepthLimit overrides the builder stack depth cap.
func WithStackDepthLimit(depth int) ConfigOption {
	return func(c *Config) { c.StackDepthLimit = depth }
}

// WithImageAtlasPageSize overrides the image atlas page dimension and page
// count cap.
func WithImageAtlasPageSize(pageSize, maxPages int) ConfigOption {
	return func(c *Config) {
		c.ImageAtlasPageSize = pageSize
		c.ImageAtlasMaxPages = maxPages
	}
}

// WithGlyphAtlasPageSize overrides the glyph atlas page dimension and page
// count cap.
func WithGlyphAtlasPageSize(pageSize, maxPages int) ConfigOption {
	return func(c *Config) {
		c.GlyphAtlasPageSize = pageSize
		c.GlyphAtlasMaxPages = maxPages
	}
}

// WithBakedGeometryCacheSize overrides the storage facade's baked-geometry
// cache capacity.
func WithBakedGeometryCacheSize(n int) ConfigOption {
	return func(c *Config) { c.BakedGeometryCacheSize = n }
}

// WithGlyphCacheCapacity overrides the glyph atlas's resident-entry cap.
func WithGlyphCacheCapacity(n int) ConfigOption {
	return func(c *Config) { c.GlyphCacheCapacity = n }
}

// NewConfig builds a Config starting from DefaultConfig and applying opts
// in order.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
