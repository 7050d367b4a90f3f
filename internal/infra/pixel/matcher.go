// Package pixel implements the template-matching fallback detector: a
// lower-fidelity alternative to the accessibility backend that locates
// buttons by their pixels. It has no structural view of the UI, so the
// only activation channel it offers is a physical click.
package pixel

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Match is a template hit on the screen, in unscaled screen coordinates.
type Match struct {
	Template string
	Bounds   image.Rectangle
	Score    float64
}

// Center returns the click point of the match.
func (m Match) Center() image.Point {
	return image.Point{
		X: m.Bounds.Min.X + m.Bounds.Dx()/2,
		Y: m.Bounds.Min.Y + m.Bounds.Dy()/2,
	}
}

// toRGBA normalizes any image to RGBA for direct pixel access.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

// scaleRGBA downscales an image by factor (0 < factor < 1) to cut the
// cost of the sliding-window search.
func scaleRGBA(img *image.RGBA, factor float64) *image.RGBA {
	if factor >= 1 {
		return img
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// scoreAt returns a similarity score in [0,1] for the template laid over
// the screen at offset (ox,oy): 1 minus the mean absolute channel
// difference. 1.0 is a pixel-perfect match.
func scoreAt(screen, tmpl *image.RGBA, ox, oy int) float64 {
	tb := tmpl.Bounds()
	var total int64
	for y := 0; y < tb.Dy(); y++ {
		srow := screen.PixOffset(screen.Bounds().Min.X+ox, screen.Bounds().Min.Y+oy+y)
		trow := tmpl.PixOffset(tb.Min.X, tb.Min.Y+y)
		for x := 0; x < tb.Dx(); x++ {
			si := srow + x*4
			ti := trow + x*4
			// RGB only; alpha carries no signal in screenshots.
			for c := 0; c < 3; c++ {
				d := int64(screen.Pix[si+c]) - int64(tmpl.Pix[ti+c])
				if d < 0 {
					d = -d
				}
				total += d
			}
		}
	}
	n := int64(tb.Dx()) * int64(tb.Dy()) * 3
	if n == 0 {
		return 0
	}
	return 1 - float64(total)/float64(n*255)
}

// locate slides the template over the screen and returns the offset of
// the best score. Exhaustive search; callers downscale first to keep
// this affordable.
func locate(screen, tmpl *image.RGBA) (image.Point, float64) {
	sb := screen.Bounds()
	tb := tmpl.Bounds()
	maxX := sb.Dx() - tb.Dx()
	maxY := sb.Dy() - tb.Dy()
	if maxX < 0 || maxY < 0 {
		return image.Point{}, 0
	}

	best := image.Point{}
	bestScore := -1.0
	for y := 0; y <= maxY; y++ {
		for x := 0; x <= maxX; x++ {
			s := scoreAt(screen, tmpl, x, y)
			if s > bestScore {
				bestScore = s
				best = image.Point{X: x, Y: y}
			}
		}
	}
	return best, bestScore
}
