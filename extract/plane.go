package extract

import (
	"image"
	"math"
)

// plane is a single-channel float32 raster.
type plane struct {
	w, h int
	pix  []float32
}

func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, pix: make([]float32, w*h)}
}

func (p *plane) at(x, y int) float32 { return p.pix[y*p.w+x] }

func fromGray(img *image.Gray) *plane {
	b := img.Bounds()
	p := newPlane(b.Dx(), b.Dy())
	for y := 0; y < p.h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < p.w; x++ {
			p.pix[y*p.w+x] = float32(row[x]) / 255
		}
	}
	return p
}

func gaussianKernel(sigma float64) []float32 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	k := make([]float32, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+radius] = float32(v)
		sum += v
	}
	for i := range k {
		k[i] = float32(float64(k[i]) / sum)
	}
	return k
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// blur applies a separable Gaussian with edge replication.
func (p *plane) blur(sigma float64) *plane {
	if sigma <= 0 {
		out := newPlane(p.w, p.h)
		copy(out.pix, p.pix)
		return out
	}
	k := gaussianKernel(sigma)
	r := len(k) / 2
	tmp := newPlane(p.w, p.h)
	for y := 0; y < p.h; y++ {
		row := p.pix[y*p.w : (y+1)*p.w]
		for x := 0; x < p.w; x++ {
			var s float32
			for i, kv := range k {
				s += kv * row[clamp(x+i-r, 0, p.w-1)]
			}
			tmp.pix[y*p.w+x] = s
		}
	}
	out := newPlane(p.w, p.h)
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			var s float32
			for i, kv := range k {
				s += kv * tmp.pix[clamp(y+i-r, 0, p.h-1)*p.w+x]
			}
			out.pix[y*p.w+x] = s
		}
	}
	return out
}

// half keeps every second pixel in both directions.
func (p *plane) half() *plane {
	out := newPlane(p.w/2, p.h/2)
	for y := 0; y < out.h; y++ {
		for x := 0; x < out.w; x++ {
			out.pix[y*out.w+x] = p.pix[2*y*p.w+2*x]
		}
	}
	return out
}

func subtract(a, b *plane) *plane {
	out := newPlane(a.w, a.h)
	for i := range out.pix {
		out.pix[i] = a.pix[i] - b.pix[i]
	}
	return out
}
