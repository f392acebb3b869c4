package extract

import (
	"math"

	"github.com/viant/imgsim/feature"
)

// descriptor computes a 4x4x8 gradient histogram around c rotated by angle
// degrees. Samples are distributed with trilinear interpolation over row,
// column and orientation bins. It returns nil for a flat neighbourhood.
func descriptor(g *plane, c candidate, angle float64) feature.Descriptor {
	ori := 360 - angle
	if math.Abs(ori-360) < 1e-6 {
		ori = 0
	}
	rad := ori * math.Pi / 180
	cosT, sinT := math.Cos(rad), math.Sin(rad)
	binsPerDeg := descHistBins / 360.0
	expScale := -1 / (descWidth * descWidth * 0.5)
	histWidth := descSclFactor * c.octSigma
	radius := int(math.Round(histWidth * math.Sqrt2 * (descWidth + 1) * 0.5))
	if maxR := int(math.Sqrt(float64(g.w*g.w + g.h*g.h))); radius > maxR {
		radius = maxR
	}
	cosT /= histWidth
	sinT /= histWidth

	var hist [descWidth][descWidth][descHistBins]float64
	for i := -radius; i <= radius; i++ {
		for j := -radius; j <= radius; j++ {
			cRot := float64(j)*cosT - float64(i)*sinT
			rRot := float64(j)*sinT + float64(i)*cosT
			rbin := rRot + descWidth/2 - 0.5
			cbin := cRot + descWidth/2 - 0.5
			y, x := c.r+i, c.c+j
			if rbin <= -1 || rbin >= descWidth || cbin <= -1 || cbin >= descWidth ||
				y <= 0 || y >= g.h-1 || x <= 0 || x >= g.w-1 {
				continue
			}
			dx := float64(g.at(x+1, y) - g.at(x-1, y))
			dy := float64(g.at(x, y-1) - g.at(x, y+1))
			mag := math.Hypot(dx, dy) * math.Exp((cRot*cRot+rRot*rRot)*expScale)
			gradOri := math.Atan2(dy, dx) * 180 / math.Pi
			obin := (gradOri - ori) * binsPerDeg
			addTrilinear(&hist, rbin, cbin, obin, mag)
		}
	}

	desc := make(feature.Descriptor, 0, descWidth*descWidth*descHistBins)
	var norm float64
	for r := range hist {
		for cc := range hist[r] {
			for _, v := range hist[r][cc] {
				norm += v * v
				desc = append(desc, float32(v))
			}
		}
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	thr := norm * descMagThr
	norm = 0
	for i, v := range desc {
		fv := math.Min(float64(v), thr)
		desc[i] = float32(fv)
		norm += fv * fv
	}
	norm = math.Sqrt(norm)
	for i := range desc {
		desc[i] = float32(float64(desc[i]) / norm)
	}
	return desc
}

func addTrilinear(hist *[descWidth][descWidth][descHistBins]float64, rbin, cbin, obin, mag float64) {
	r0 := int(math.Floor(rbin))
	c0 := int(math.Floor(cbin))
	o0 := int(math.Floor(obin))
	dr, dc, do := rbin-float64(r0), cbin-float64(c0), obin-float64(o0)
	for ri := 0; ri <= 1; ri++ {
		r := r0 + ri
		if r < 0 || r >= descWidth {
			continue
		}
		wr := mag * lerpWeight(dr, ri)
		for ci := 0; ci <= 1; ci++ {
			cc := c0 + ci
			if cc < 0 || cc >= descWidth {
				continue
			}
			wc := wr * lerpWeight(dc, ci)
			for oi := 0; oi <= 1; oi++ {
				o := ((o0+oi)%descHistBins + descHistBins) % descHistBins
				hist[r][cc][o] += wc * lerpWeight(do, oi)
			}
		}
	}
}

func lerpWeight(frac float64, upper int) float64 {
	if upper == 1 {
		return frac
	}
	return 1 - frac
}
