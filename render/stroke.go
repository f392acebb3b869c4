package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/viant/imgsim/feature"
	"golang.org/x/image/vector"
)

type point struct{ x, y float32 }

// stroke draws an open polyline of the given width. Each segment becomes a
// quad with the same winding, so overlapping joints do not cancel out.
func stroke(dst draw.Image, pts []point, width float32, c color.Color) {
	if len(pts) < 2 {
		return
	}
	half := width / 2
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, p := range pts {
		minX, minY = min(minX, p.x), min(minY, p.y)
		maxX, maxY = max(maxX, p.x), max(maxY, p.y)
	}
	area := image.Rect(
		int(math.Floor(float64(minX-half-1))), int(math.Floor(float64(minY-half-1))),
		int(math.Ceil(float64(maxX+half+1))), int(math.Ceil(float64(maxY+half+1))),
	)
	clip := area.Intersect(dst.Bounds())
	if clip.Empty() {
		return
	}
	ox, oy := float32(area.Min.X), float32(area.Min.Y)
	z := vector.NewRasterizer(area.Dx(), area.Dy())
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.x-a.x, b.y-a.y
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		z.MoveTo(a.x+nx-ox, a.y+ny-oy)
		z.LineTo(b.x+nx-ox, b.y+ny-oy)
		z.LineTo(b.x-nx-ox, b.y-ny-oy)
		z.LineTo(a.x-nx-ox, a.y-ny-oy)
		z.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, area.Dx(), area.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(dst, clip, image.NewUniform(c), image.Point{}, mask, clip.Min.Sub(area.Min), draw.Over)
}

// drawKeypoint draws a circle of the keypoint size and a tick along its
// orientation. dx shifts the keypoint horizontally.
func drawKeypoint(dst draw.Image, kp feature.Keypoint, dx float32, width float32, c color.Color) {
	cx, cy := float32(kp.X)+dx, float32(kp.Y)
	r := float32(math.Min(math.Max(kp.Size/2, 3), 40))
	const segments = 24
	ring := make([]point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := 2 * math.Pi * float64(i) / segments
		ring = append(ring, point{cx + r*float32(math.Cos(t)), cy + r*float32(math.Sin(t))})
	}
	stroke(dst, ring, width, c)
	t := kp.Angle * math.Pi / 180
	stroke(dst, []point{{cx, cy}, {cx + r*float32(math.Cos(t)), cy - r*float32(math.Sin(t))}}, width, c)
}
