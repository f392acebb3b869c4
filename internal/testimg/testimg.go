// Package testimg generates deterministic grayscale rasters for tests.
package testimg

import (
	"image"
	"math"
	"math/rand"
)

// Blobs draws n Gaussian blobs of random position, radius and polarity on a
// mid-gray background. The same seed always yields the same image.
func Blobs(w, h, n int, seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	acc := make([]float64, w*h)
	for i := range acc {
		acc[i] = 128
	}
	for b := 0; b < n; b++ {
		cx := 8 + rng.Float64()*float64(w-16)
		cy := 8 + rng.Float64()*float64(h-16)
		sigma := 2 + rng.Float64()*6
		amp := 60 + rng.Float64()*60
		if rng.Intn(2) == 0 {
			amp = -amp
		}
		reach := int(3 * sigma)
		for y := max(0, int(cy)-reach); y < min(h, int(cy)+reach+1); y++ {
			for x := max(0, int(cx)-reach); x < min(w, int(cx)+reach+1); x++ {
				dx, dy := float64(x)-cx, float64(y)-cy
				acc[y*w+x] += amp * math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma))
			}
		}
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range acc {
		img.Pix[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return img
}

// Flat returns a w x h raster filled with a single value.
func Flat(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}
