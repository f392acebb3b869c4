package extract

import "math"

// orientations returns the dominant gradient directions around c in degrees.
// Every histogram peak within oriPeakRatio of the highest one yields an
// angle, so a keypoint may be reported more than once.
func orientations(g *plane, c candidate) []float64 {
	sigma := oriSigFactor * c.octSigma
	radius := int(math.Round(oriRadius * c.octSigma))
	expScale := -1 / (2 * sigma * sigma)

	var raw [oriHistBins]float64
	for i := -radius; i <= radius; i++ {
		y := c.r + i
		if y <= 0 || y >= g.h-1 {
			continue
		}
		for j := -radius; j <= radius; j++ {
			x := c.c + j
			if x <= 0 || x >= g.w-1 {
				continue
			}
			dx := float64(g.at(x+1, y) - g.at(x-1, y))
			dy := float64(g.at(x, y-1) - g.at(x, y+1))
			weight := math.Exp(float64(i*i+j*j) * expScale)
			mag := math.Hypot(dx, dy)
			ori := math.Atan2(dy, dx) * 180 / math.Pi
			bin := int(math.Round(oriHistBins / 360.0 * ori))
			bin = ((bin % oriHistBins) + oriHistBins) % oriHistBins
			raw[bin] += weight * mag
		}
	}

	// circular [1 4 6 4 1] smoothing
	var hist [oriHistBins]float64
	n := oriHistBins
	for i := 0; i < n; i++ {
		hist[i] = (raw[(i+n-2)%n]+raw[(i+2)%n])*(1.0/16) +
			(raw[(i+n-1)%n]+raw[(i+1)%n])*(4.0/16) +
			raw[i]*(6.0/16)
	}
	maxVal := 0.0
	for _, v := range hist {
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == 0 {
		return nil
	}

	var angles []float64
	threshold := maxVal * oriPeakRatio
	for i := 0; i < n; i++ {
		l, r := hist[(i+n-1)%n], hist[(i+1)%n]
		if hist[i] > l && hist[i] > r && hist[i] >= threshold {
			bin := float64(i) + 0.5*(l-r)/(l-2*hist[i]+r)
			if bin < 0 {
				bin += float64(n)
			} else if bin >= float64(n) {
				bin -= float64(n)
			}
			angle := 360 - 360/float64(n)*bin
			if math.Abs(angle-360) < 1e-6 || angle >= 360 {
				angle = 0
			}
			angles = append(angles, angle)
		}
	}
	return angles
}
