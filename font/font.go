// Package font is a reference implementation of the external Font
// interface the core consumes opaquely (spec.md §6 "Font interface").
// It shapes text with go-text/typesetting's HarfBuzz port and
// rasterizes individual glyphs with golang.org/x/image/font/opentype,
// grounded on the teacher's text/shaper_gotext.go and text/rasterize.go.
// Independent of the root vgcanvas package: callers adapt its output to
// glyphatlas.Rasterizer at the wiring site (see storage.go).
package font

import (
	"bytes"
	"image"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// ShapedGlyph is one positioned glyph produced by ShapeText, in local
// pen-advance space before any layout offset is applied.
type ShapedGlyph struct {
	GlyphIndex uint32
	Cluster    int
	X, Y       float32
	XAdvance   float32
	YAdvance   float32
}

// RasterizedGlyph is one glyph's alpha-only bitmap plus the metrics
// needed to place it on the baseline.
type RasterizedGlyph struct {
	Alpha              []byte
	Width, Height      int
	BearingX, BearingY float32
	Advance            float32
}

// Face wraps one font file's shaping and rasterization state. Shaping
// uses go-text/typesetting (HarfBuzz-level); rasterization uses
// x/image/font/opentype, matching the teacher's dual-library split: one
// for correctness-critical shaping, one for CPU mask rendering.
type Face struct {
	shapingFont *gotext.Font

	otFont *opentype.Font

	// shaperPool pools HarfbuzzShaper instances, which hold mutable
	// per-call state and are not safe for concurrent use (mirrors the
	// teacher's GoTextShaper.shaperPool).
	shaperPool sync.Pool

	// faceCache memoizes opentype.Face instances per pixel size, since
	// constructing one re-hints the whole font (mirrors the teacher's
	// per-call rasterize path, generalized with a cache since this
	// reference implementation is meant to back a hot glyph atlas).
	mu        sync.Mutex
	faceCache map[float32]xfont.Face
}

// Load parses font file data, preparing both the shaping and
// rasterization representations.
func Load(data []byte) (*Face, error) {
	gotextFace, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	otFont, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return &Face{
		shapingFont: gotextFace.Font,
		otFont:      otFont,
		shaperPool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
		faceCache: make(map[float32]xfont.Face),
	}, nil
}

// ShapeText runs HarfBuzz-level shaping over text (kerning, ligatures,
// complex scripts), normalizing to NFC first so combining sequences the
// caller typed in a decomposed form still shape correctly (spec.md §6;
// normalization grounded on golang.org/x/text/unicode/norm, adopted
// from the wider corpus since the teacher shapes raw runes unnormalized).
func (f *Face) ShapeText(sizePx float32, text string) []ShapedGlyph {
	if text == "" {
		return nil
	}
	text = norm.NFC.String(text)
	runes := []rune(text)

	face := gotext.NewFace(f.shapingFont)
	script := detectScript(runes)

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      floatToFixed(sizePx),
		Script:    script,
		Language:  language.NewLanguage("en"),
	}

	shaper := f.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := shaper.Shape(input)
	f.shaperPool.Put(shaper)

	return convertGlyphs(output.Glyphs)
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func convertGlyphs(glyphs []shaping.Glyph) []ShapedGlyph {
	if len(glyphs) == 0 {
		return nil
	}
	out := make([]ShapedGlyph, len(glyphs))
	var x, y float32
	for i, g := range glyphs {
		xOff := fixedToFloat(g.XOffset)
		yOff := fixedToFloat(g.YOffset)
		adv := fixedToFloat(g.Advance)
		out[i] = ShapedGlyph{
			GlyphIndex: uint32(g.GlyphID),
			Cluster:    g.TextIndex(),
			X:          x + xOff,
			Y:          y + yOff,
			XAdvance:   adv,
		}
		x += adv
	}
	return out
}

// Rasterize renders one glyph to an alpha-only bitmap at sizePx,
// grounded on the teacher's RasterizeGlyph (font.Drawer over an
// image.Alpha mask). styleFlags is reserved for future synthetic
// bold/italic and currently unused, matching the Font interface's
// opaque styleFlags parameter (spec.md §6).
func (f *Face) Rasterize(sizePx float32, glyphIndex uint32, styleFlags uint32) (RasterizedGlyph, bool) {
	otFace := f.faceFor(sizePx)
	if otFace == nil {
		return RasterizedGlyph{}, false
	}

	r := rune(glyphIndex)
	bounds, advance, ok := otFace.GlyphBounds(r)
	if !ok {
		return RasterizedGlyph{}, false
	}

	minX := int(bounds.Min.X) >> 6
	minY := int(bounds.Min.Y) >> 6
	maxX := int(bounds.Max.X+63) >> 6
	maxY := int(bounds.Max.Y+63) >> 6
	if maxX <= minX || maxY <= minY {
		return RasterizedGlyph{Advance: fixedToFloat(advance)}, true
	}

	rect := image.Rect(minX, minY, maxX, maxY)
	mask := image.NewAlpha(rect)
	drawer := &xfont.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: otFace,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	drawer.DrawString(string(r))

	w := maxX - minX
	h := maxY - minY
	alpha := make([]byte, w*h)
	for row := 0; row < h; row++ {
		copy(alpha[row*w:(row+1)*w], mask.Pix[row*mask.Stride:row*mask.Stride+w])
	}

	return RasterizedGlyph{
		Alpha:    alpha,
		Width:    w,
		Height:   h,
		BearingX: float32(minX),
		BearingY: float32(minY),
		Advance:  fixedToFloat(advance),
	}, true
}

func (f *Face) faceFor(sizePx float32) xfont.Face {
	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faceCache[sizePx]; ok {
		return face
	}
	face, err := opentype.NewFace(f.otFont, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil
	}
	f.faceCache[sizePx] = face
	return face
}

func floatToFixed(v float32) fixed.Int26_6 { return fixed.Int26_6(v * 64) }
func fixedToFloat(v fixed.Int26_6) float32 { return float32(v) / 64 }
