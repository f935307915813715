package vgcanvas

import (
	"sync"
	"unsafe"

	"github.com/gogpu/vgcanvas/cache"
	"github.com/gogpu/vgcanvas/glyphatlas"
	"github.com/gogpu/vgcanvas/imageatlas"
	"github.com/gogpu/vgcanvas/internal/atlaspage"
)

// ImageFormat names the pixel layout of a decoded image source buffer
// (spec.md §6 "Image source"). The core never decodes compressed image
// data itself; callers supply already-decoded buffers.
type ImageFormat uint8

const (
	ImageFormatRGBA8 ImageFormat = iota
	ImageFormatRGB8
)

// ImageSource is a decoded image buffer as described by spec.md §6:
// "{ width, height, format, pixels }".
type ImageSource struct {
	Width, Height int
	Format        ImageFormat
	Pixels        []byte
}

// Font is the external text subsystem's opaque interface (spec.md §6
// "Font interface"). font.Face (package font) implements it structurally.
type Font interface {
	Rasterize(sizePx float32, glyphIndex uint32, styleFlags uint32) (alpha []byte, width, height int, bearingX, bearingY, advance float32, ok bool)
	ShapeText(sizePx float32, text string) []TextGlyph
}

// TextGlyph is one shaped glyph's pen-relative position (spec.md §6
// "shapeText(...) -> [{glyph, x, y}]").
type TextGlyph struct {
	GlyphIndex uint32
	X, Y       float32
}

// Storage is the facade owning both atlases and the baked-geometry cache
// (spec.md §4.7, component C10). It is the shared, long-lived object a
// set of Canvases and GeometryBuilders register images and fonts against
// and bake Geometry values through.
type Storage struct {
	imageAtlas *imageatlas.Atlas
	glyphAtlas *glyphatlas.Atlas

	mu    sync.RWMutex
	fonts map[FontHandle]Font

	bakedCache *cache.ShardedCache[bakeKey, *BakedGeometry]

	scratchCanvas *Canvas
}

type bakeKey struct {
	geom      *Geometry
	placement Transform2D
	alpha     float32
}

// NewStorage constructs a Storage with fresh, empty atlases sized per cfg.
func NewStorage(cfg Config) *Storage {
	s := &Storage{
		imageAtlas: imageatlas.New(cfg.ImageAtlasPageSize, cfg.ImageAtlasMaxPages, "vgcanvas-image-atlas"),
		glyphAtlas: glyphatlas.New(cfg.GlyphAtlasPageSize, cfg.GlyphAtlasMaxPages, cfg.GlyphCacheCapacity),
		fonts:      make(map[FontHandle]Font),
		bakedCache: cache.NewSharded[bakeKey, *BakedGeometry](cfg.BakedGeometryCacheSize, bakeKeyHash),
	}
	s.scratchCanvas = NewCanvas(0, 0, s.glyphAtlas, fontRasterizer{s}, Vec2{}, 1)
	return s
}

func bakeKeyHash(k bakeKey) uint64 {
	// Pointer identity plus the affine translation is enough entropy for
	// shard selection; collisions are resolved by the map underneath, not
	// by this hash (cache.ShardedCache only uses it to pick a shard).
	ptr := uint64(uintptr(unsafe.Pointer(k.geom)))
	return cache.Uint64Hasher(ptr) ^ uint64(k.placement.E*1000) ^ uint64(k.placement.F*1000)
}

// RegisterImage registers a decoded image with the image atlas, returning
// a borrowed ImageRef valid until the atlas rebuilds (spec.md §3
// "Lifecycles", §4.3 "Image atlas"). wrapEligible requests placement on a
// dedicated page so repeat/mirror sampling never bleeds into a neighbor.
func (s *Storage) RegisterImage(src ImageSource, wrapEligible bool) (ImageRef, error) {
	format := atlaspage.FormatRGBA8
	stride := src.Width * 4
	pixels := src.Pixels
	if src.Format == ImageFormatRGB8 {
		format = atlaspage.FormatRGBA8
		pixels = expandRGB8ToRGBA8(src.Pixels, src.Width, src.Height)
		stride = src.Width * 4
	}

	buf, err := atlaspage.FromRaw(pixels, src.Width, src.Height, format, stride)
	if err != nil {
		return ImageRef{}, err
	}

	placement, err := s.imageAtlas.RegisterImage(buf, wrapEligible, 0)
	if err != nil {
		return ImageRef{}, ErrOutOfAtlasSpace
	}

	return ImageRef{
		Page:         int32(placement.Page),
		UVMin:        Vec2{X: placement.UVMin.X, Y: placement.UVMin.Y},
		UVMax:        Vec2{X: placement.UVMax.X, Y: placement.UVMax.Y},
		WrapEligible: placement.WrapEligible,
	}, nil
}

func expandRGB8ToRGBA8(src []byte, w, h int) []byte {
	out := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		out[i*4+0] = src[i*3+0]
		out[i*4+1] = src[i*3+1]
		out[i*4+2] = src[i*3+2]
		out[i*4+3] = 255
	}
	return out
}

// RegisterFont associates handle with a Font implementation so the glyph
// atlas can rasterize on demand (spec.md §6 "Font interface").
func (s *Storage) RegisterFont(handle FontHandle, f Font) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fonts[handle] = f
}

// fontRasterizer adapts Storage's font registry to glyphatlas.Rasterizer,
// letting imageatlas/glyphatlas stay independent of the root package's
// Font type while still servicing its Lookup misses (spec.md §4.3 import
// cycle note, see glyphatlas package doc).
type fontRasterizer struct{ s *Storage }

func (r fontRasterizer) Rasterize(key glyphatlas.Key) (*atlaspage.Page, float32, float32, bool) {
	r.s.mu.RLock()
	f, ok := r.s.fonts[FontHandle(key.Font)]
	r.s.mu.RUnlock()
	if !ok {
		return nil, 0, 0, false
	}

	alpha, w, h, bx, by, _, ok := f.Rasterize(key.SizePx, key.GlyphIndex, key.StyleFlags)
	if !ok || w == 0 || h == 0 {
		return nil, 0, 0, false
	}
	buf, err := atlaspage.FromRaw(alpha, w, h, atlaspage.FormatGray8, w)
	if err != nil {
		return nil, 0, 0, false
	}
	return buf, bx, by, true
}

// ConditionalRebuild reports whether the glyph atlas version has moved
// past callerVersion, acquiring and releasing the atlas's update lock for
// the duration of the check (spec.md §5 "two phase update": "beginUpdate
// ... returns true if the caller's cached version is stale"). Callers must
// re-bake any BakedGeometry on rebuilt == true (spec.md §4.7).
func (s *Storage) ConditionalRebuild(callerVersion uint32) (version uint32, rebuilt bool) {
	if !s.glyphAtlas.BeginUpdate(callerVersion) {
		return s.glyphAtlas.Version(), false
	}
	defer s.glyphAtlas.EndUpdate()
	return s.glyphAtlas.Version(), true
}

// Bake flattens geom at the given placement and alpha into a
// BakedGeometry, reusing a cached result from earlier this atlas version
// if one exists (spec.md §4.7, §8 "Paint interning" extended to baking).
func (s *Storage) Bake(geom *Geometry, placement Transform2D, alpha float32) *BakedGeometry {
	key := bakeKey{geom: geom, placement: placement, alpha: alpha}
	if cached, ok := s.bakedCache.Get(key); ok && !cached.Stale() {
		return cached
	}
	baked := bake(s, geom, placement, alpha)
	s.bakedCache.Set(key, baked)
	return baked
}

// BakedCacheStats reports the baked-geometry cache's occupancy and
// hit-rate counters, for periodic diagnostics housekeeping.
func (s *Storage) BakedCacheStats() cache.Stats { return s.bakedCache.Stats() }

// ImageAtlasPage returns the backing pixel buffer for an image atlas page,
// for renderer upload.
func (s *Storage) ImageAtlasPage(index int) *atlaspage.Page { return s.imageAtlas.Page(index) }

// GlyphAtlasPage returns the backing pixel buffer for a glyph atlas page,
// for renderer upload.
func (s *Storage) GlyphAtlasPage(index int) *atlaspage.Page { return s.glyphAtlas.Page(index) }
