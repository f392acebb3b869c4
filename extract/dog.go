package extract

import (
	"errors"
	"image"
	"math"
	"sort"

	"github.com/viant/imgsim/feature"
)

const (
	// assumed blur of the input image
	initSigma = 0.5
	// pixels skipped at each border during extrema detection
	imgBorder = 5
	// refinement steps before a drifting extremum is dropped
	maxInterpSteps = 5

	oriHistBins   = 36
	oriSigFactor  = 1.5
	oriRadius     = 3 * oriSigFactor
	oriPeakRatio  = 0.8
	descWidth     = 4
	descHistBins  = 8
	descSclFactor = 3.0
	descMagThr    = 0.2
)

// DoG is a pure-Go SIFT-style extractor.
type DoG struct {
	opts Options
}

// NewDoG creates a DoG extractor.
func NewDoG(opts Options) (*DoG, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &DoG{opts: opts}, nil
}

// scaleSpace holds the Gaussian and DoG pyramids.
type scaleSpace struct {
	gauss [][]*plane // [octave][intervals+3]
	dog   [][]*plane // [octave][intervals+2]
}

// candidate is a refined extremum before orientation assignment.
type candidate struct {
	octave, layer int
	r, c          int     // integer position in the octave
	xi            float64 // sub-layer offset
	x, y          float64 // position in input pixels
	octSigma      float64 // scale relative to the octave
	response      float64
}

// Extract detects keypoints and computes one descriptor per keypoint.
// Images smaller than 16 pixels on either side yield an empty set.
func (d *DoG) Extract(img *image.Gray) (*feature.Set, error) {
	if img == nil {
		return nil, errors.New("extract: nil image")
	}
	b := img.Bounds()
	if b.Dx() < 16 || b.Dy() < 16 {
		return &feature.Set{}, nil
	}
	ss := d.buildScaleSpace(fromGray(img))
	cands := d.detect(ss)

	set := &feature.Set{}
	for _, c := range cands {
		gp := ss.gauss[c.octave][c.layer]
		for _, angle := range orientations(gp, c) {
			desc := descriptor(gp, c, angle)
			if desc == nil {
				continue
			}
			scale := float64(int(1) << c.octave)
			set.Keypoints = append(set.Keypoints, feature.Keypoint{
				X:        c.x,
				Y:        c.y,
				Size:     c.octSigma * scale * 2,
				Angle:    angle,
				Response: c.response,
				Octave:   c.octave,
			})
			set.Descriptors = append(set.Descriptors, desc)
		}
	}
	if d.opts.MaxFeatures > 0 && set.Len() > d.opts.MaxFeatures {
		retainBest(set, d.opts.MaxFeatures)
	}
	return set, nil
}

func (d *DoG) buildScaleSpace(base *plane) *scaleSpace {
	s := d.opts.Intervals
	minSide := min(base.w, base.h)
	octaves := int(math.Log2(float64(minSide))) - 3
	if octaves < 1 {
		octaves = 1
	}

	// incremental blur between consecutive scales of an octave
	sig := make([]float64, s+3)
	k := math.Pow(2, 1/float64(s))
	sig[0] = math.Sqrt(math.Max(d.opts.Sigma*d.opts.Sigma-initSigma*initSigma, 0.01))
	for i := 1; i < s+3; i++ {
		prev := math.Pow(k, float64(i-1)) * d.opts.Sigma
		total := prev * k
		sig[i] = math.Sqrt(total*total - prev*prev)
	}

	ss := &scaleSpace{
		gauss: make([][]*plane, octaves),
		dog:   make([][]*plane, octaves),
	}
	for o := 0; o < octaves; o++ {
		layers := make([]*plane, s+3)
		if o == 0 {
			layers[0] = base.blur(sig[0])
		} else {
			layers[0] = ss.gauss[o-1][s].half()
		}
		for i := 1; i < s+3; i++ {
			layers[i] = layers[i-1].blur(sig[i])
		}
		ss.gauss[o] = layers
		dogs := make([]*plane, s+2)
		for i := 0; i < s+2; i++ {
			dogs[i] = subtract(layers[i+1], layers[i])
		}
		ss.dog[o] = dogs
	}
	return ss
}

type posKey struct{ octave, layer, r, c int }

func (d *DoG) detect(ss *scaleSpace) []candidate {
	s := d.opts.Intervals
	threshold := float32(0.5 * d.opts.ContrastThreshold / float64(s))
	seen := map[posKey]bool{}
	var out []candidate
	for o := range ss.dog {
		dogs := ss.dog[o]
		w, h := dogs[0].w, dogs[0].h
		for i := 1; i <= s; i++ {
			for r := imgBorder; r < h-imgBorder; r++ {
				for c := imgBorder; c < w-imgBorder; c++ {
					v := dogs[i].at(c, r)
					if float32(math.Abs(float64(v))) <= threshold || !isExtremum(dogs, i, r, c, v) {
						continue
					}
					cand, ok := d.refine(dogs, o, i, r, c)
					if !ok {
						continue
					}
					key := posKey{cand.octave, cand.layer, cand.r, cand.c}
					if seen[key] {
						continue
					}
					seen[key] = true
					out = append(out, cand)
				}
			}
		}
	}
	return out
}

func isExtremum(dogs []*plane, i, r, c int, v float32) bool {
	for di := -1; di <= 1; di++ {
		p := dogs[i+di]
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if di == 0 && dr == 0 && dc == 0 {
					continue
				}
				n := p.at(c+dc, r+dr)
				if v > 0 && n > v || v < 0 && n < v {
					return false
				}
			}
		}
	}
	return true
}

// refine fits a 3D quadratic around (layer, r, c), moving the sample point
// until the offset is below half a pixel, then applies the contrast and edge
// tests.
func (d *DoG) refine(dogs []*plane, octave, layer, r, c int) (candidate, bool) {
	s := d.opts.Intervals
	w, h := dogs[0].w, dogs[0].h
	var xi, xr, xc float64
	var g [3]float64
	converged := false
	for step := 0; step < maxInterpSteps; step++ {
		prev, cur, next := dogs[layer-1], dogs[layer], dogs[layer+1]
		g = [3]float64{
			float64(cur.at(c+1, r)-cur.at(c-1, r)) * 0.5,
			float64(cur.at(c, r+1)-cur.at(c, r-1)) * 0.5,
			float64(next.at(c, r)-prev.at(c, r)) * 0.5,
		}
		v2 := 2 * float64(cur.at(c, r))
		dxx := float64(cur.at(c+1, r)+cur.at(c-1, r)) - v2
		dyy := float64(cur.at(c, r+1)+cur.at(c, r-1)) - v2
		dss := float64(next.at(c, r)+prev.at(c, r)) - v2
		dxy := float64(cur.at(c+1, r+1)-cur.at(c-1, r+1)-cur.at(c+1, r-1)+cur.at(c-1, r-1)) * 0.25
		dxs := float64(next.at(c+1, r)-next.at(c-1, r)-prev.at(c+1, r)+prev.at(c-1, r)) * 0.25
		dys := float64(next.at(c, r+1)-next.at(c, r-1)-prev.at(c, r+1)+prev.at(c, r-1)) * 0.25
		hess := [3][3]float64{
			{dxx, dxy, dxs},
			{dxy, dyy, dys},
			{dxs, dys, dss},
		}
		off, ok := solve3(hess, [3]float64{-g[0], -g[1], -g[2]})
		if !ok {
			return candidate{}, false
		}
		xc, xr, xi = off[0], off[1], off[2]
		if math.Abs(xc) < 0.5 && math.Abs(xr) < 0.5 && math.Abs(xi) < 0.5 {
			converged = true
			break
		}
		if math.Abs(xc) > float64(math.MaxInt32/3) || math.Abs(xr) > float64(math.MaxInt32/3) || math.Abs(xi) > float64(math.MaxInt32/3) {
			return candidate{}, false
		}
		c += int(math.Round(xc))
		r += int(math.Round(xr))
		layer += int(math.Round(xi))
		if layer < 1 || layer > s || c < imgBorder || c >= w-imgBorder || r < imgBorder || r >= h-imgBorder {
			return candidate{}, false
		}
	}
	if !converged {
		return candidate{}, false
	}

	cur := dogs[layer]
	contrast := float64(cur.at(c, r)) + 0.5*(g[0]*xc+g[1]*xr+g[2]*xi)
	if math.Abs(contrast)*float64(s) < d.opts.ContrastThreshold {
		return candidate{}, false
	}

	v2 := 2 * float64(cur.at(c, r))
	dxx := float64(cur.at(c+1, r)+cur.at(c-1, r)) - v2
	dyy := float64(cur.at(c, r+1)+cur.at(c, r-1)) - v2
	dxy := float64(cur.at(c+1, r+1)-cur.at(c-1, r+1)-cur.at(c+1, r-1)+cur.at(c-1, r-1)) * 0.25
	tr := dxx + dyy
	det := dxx*dyy - dxy*dxy
	edge := d.opts.EdgeThreshold
	if det <= 0 || tr*tr*edge >= (edge+1)*(edge+1)*det {
		return candidate{}, false
	}

	scale := float64(int(1) << octave)
	return candidate{
		octave:   octave,
		layer:    layer,
		r:        r,
		c:        c,
		xi:       xi,
		x:        (float64(c) + xc) * scale,
		y:        (float64(r) + xr) * scale,
		octSigma: d.opts.Sigma * math.Pow(2, (float64(layer)+xi)/float64(s)),
		response: math.Abs(contrast),
	}, true
}

// solve3 solves a*x = b with Cramer's rule.
func solve3(a [3][3]float64, b [3]float64) ([3]float64, bool) {
	det := a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
	if math.Abs(det) < 1e-12 {
		return [3]float64{}, false
	}
	var x [3]float64
	for col := 0; col < 3; col++ {
		m := a
		for row := 0; row < 3; row++ {
			m[row][col] = b[row]
		}
		x[col] = (m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
			m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
			m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])) / det
	}
	return x, true
}

// retainBest keeps the n strongest keypoints, preserving detection order
// among the survivors.
func retainBest(set *feature.Set, n int) {
	order := make([]int, set.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return set.Keypoints[order[a]].Response > set.Keypoints[order[b]].Response
	})
	keep := order[:n]
	sort.Ints(keep)
	kps := make([]feature.Keypoint, 0, n)
	descs := make([]feature.Descriptor, 0, n)
	for _, i := range keep {
		kps = append(kps, set.Keypoints[i])
		descs = append(descs, set.Descriptors[i])
	}
	set.Keypoints, set.Descriptors = kps, descs
}
