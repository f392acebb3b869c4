package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/viant/imgsim/feature"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options controls what is drawn.
type Options struct {
	// Keypoints draws every keypoint, not only the matched ones.
	Keypoints bool
	// LineWidth is the stroke width in pixels; 0 means 1.5.
	LineWidth float32
	// Caption is written in the top-left corner when not empty.
	Caption string
}

var keypointColor = color.RGBA{R: 255, G: 200, A: 255}

// Compose draws imgA on the left and imgB on the right. Every match links
// setA.Keypoints[QueryIdx] to setB.Keypoints[TrainIdx].
func Compose(imgA *image.Gray, setA *feature.Set, imgB *image.Gray, setB *feature.Set, matches []feature.Match, opts Options) (*image.RGBA, error) {
	if imgA == nil || imgB == nil {
		return nil, fmt.Errorf("render: nil image")
	}
	ba, bb := imgA.Bounds(), imgB.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, ba.Dx()+bb.Dx(), max(ba.Dy(), bb.Dy())))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, ba.Dx(), ba.Dy()), imgA, ba.Min, draw.Src)
	offset := float32(ba.Dx())
	draw.Draw(canvas, image.Rect(ba.Dx(), 0, canvas.Bounds().Dx(), bb.Dy()), imgB, bb.Min, draw.Src)

	width := opts.LineWidth
	if width <= 0 {
		width = 1.5
	}
	if opts.Keypoints {
		for _, kp := range keypoints(setA) {
			drawKeypoint(canvas, kp, 0, width, keypointColor)
		}
		for _, kp := range keypoints(setB) {
			drawKeypoint(canvas, kp, offset, width, keypointColor)
		}
	}
	for i, m := range matches {
		if m.QueryIdx < 0 || m.QueryIdx >= setA.Len() || m.TrainIdx < 0 || m.TrainIdx >= setB.Len() {
			return nil, fmt.Errorf("render: match %d (%d -> %d) out of range", i, m.QueryIdx, m.TrainIdx)
		}
		c := palette(i)
		a, b := setA.Keypoints[m.QueryIdx], setB.Keypoints[m.TrainIdx]
		drawKeypoint(canvas, a, 0, width, c)
		drawKeypoint(canvas, b, offset, width, c)
		stroke(canvas, []point{{float32(a.X), float32(a.Y)}, {float32(b.X) + offset, float32(b.Y)}}, width, c)
	}
	if opts.Caption != "" {
		caption(canvas, opts.Caption)
	}
	return canvas, nil
}

// Render composes the visualization and writes it to w as PNG.
func Render(w io.Writer, imgA *image.Gray, setA *feature.Set, imgB *image.Gray, setB *feature.Set, matches []feature.Match, opts Options) error {
	canvas, err := Compose(imgA, setA, imgB, setB, matches, opts)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := png.Encode(bw, canvas); err != nil {
		return fmt.Errorf("render: encode: %w", err)
	}
	return bw.Flush()
}

// RenderFile writes the visualization to path on fs.
func RenderFile(fs afero.Fs, path string, imgA *image.Gray, setA *feature.Set, imgB *image.Gray, setB *feature.Set, matches []feature.Match, opts Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := Render(f, imgA, setA, imgB, setB, matches, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func keypoints(set *feature.Set) []feature.Keypoint {
	if set == nil {
		return nil
	}
	return set.Keypoints
}

// palette returns a saturated color with hues spread by the golden angle.
func palette(i int) color.RGBA {
	h := math.Mod(float64(i)*137.508, 360) / 60
	x := 1 - math.Abs(math.Mod(h, 2)-1)
	var r, g, b float64
	switch int(h) {
	case 0:
		r, g = 1, x
	case 1:
		r, g = x, 1
	case 2:
		g, b = 1, x
	case 3:
		g, b = x, 1
	case 4:
		r, b = x, 1
	default:
		r, b = 1, x
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

func caption(dst draw.Image, text string) {
	face := basicfont.Face7x13
	bg := image.Rect(0, 0, len(text)*face.Advance+8, face.Height+6)
	draw.Draw(dst, bg.Intersect(dst.Bounds()), &image.Uniform{C: color.RGBA{A: 200}}, image.Point{}, draw.Over)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(4, face.Ascent+3),
	}
	d.DrawString(text)
}
