package atlaspage

import "github.com/gogpu/vgcanvas/internal/color"

// Rect is a destination rectangle in page pixel coordinates.
type Rect struct {
	X, Y, Width, Height int
}

// Blit copies src into dst at rect's origin, source-over compositing any
// partially transparent pixel in linear light rather than
// naively in the gamma-encoded space the bytes are stored in — blending
// sRGB bytes directly darkens the seam, the failure mode the original
// engine's color-space regression test exists to catch. Fully opaque and
// fully transparent pixels take a direct-copy / skip fast path.
func Blit(dst, src *Page, rect Rect) {
	w, h := src.Bounds()
	for y := 0; y < h; y++ {
		dy := rect.Y + y
		if dy < 0 || dy >= dst.height {
			continue
		}
		for x := 0; x < w; x++ {
			dx := rect.X + x
			if dx < 0 || dx >= dst.width {
				continue
			}
			sr, sg, sb, sa := src.getRGBA(x, y)
			switch sa {
			case 0:
				continue
			case 255:
				dst.setRGBA(dx, dy, sr, sg, sb, sa)
			default:
				dr, dg, db, da := dst.getRGBA(dx, dy)
				r, g, b, a := blendOver(sr, sg, sb, sa, dr, dg, db, da)
				dst.setRGBA(dx, dy, r, g, b, a)
			}
		}
	}
}

func blendOver(sr, sg, sb, sa uint8, dr, dg, db, da uint8) (r, g, b, a uint8) {
	srcA := float32(sa) / 255
	dstA := float32(da) / 255
	outA := srcA + dstA*(1-srcA)
	if outA <= 0 {
		return 0, 0, 0, 0
	}
	r = blendChannel(sr, dr, srcA, dstA, outA)
	g = blendChannel(sg, dg, srcA, dstA, outA)
	b = blendChannel(sb, db, srcA, dstA, outA)
	// Alpha is always linear (spec.md §3), so it is scaled directly rather
	// than routed through the sRGB OETF the color channels need.
	a = uint8(outA*255 + 0.5)
	return r, g, b, a
}

func blendChannel(srcByte, dstByte uint8, srcA, dstA, outA float32) uint8 {
	sl := color.ToLinear(srcByte)
	dl := color.ToLinear(dstByte)
	out := (sl*srcA + dl*dstA*(1-srcA)) / outA
	return color.FromLinear(out)
}
