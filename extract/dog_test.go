package extract

import (
	"math"
	"testing"

	"github.com/viant/imgsim/internal/testimg"
)

func newDoG(t *testing.T, opts Options) *DoG {
	t.Helper()
	d, err := NewDoG(opts)
	if err != nil {
		t.Fatalf("NewDoG failed: %v", err)
	}
	return d
}

func TestDoG_FlatImage(t *testing.T) {
	d := newDoG(t, DefaultOptions())
	set, err := d.Extract(testimg.Flat(64, 64, 90))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("flat image produced %d keypoints, want 0", set.Len())
	}
}

func TestDoG_TinyImage(t *testing.T) {
	d := newDoG(t, DefaultOptions())
	set, err := d.Extract(testimg.Blobs(12, 40, 3, 1))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("tiny image produced %d keypoints, want 0", set.Len())
	}
}

func TestDoG_NilImage(t *testing.T) {
	d := newDoG(t, DefaultOptions())
	if _, err := d.Extract(nil); err == nil {
		t.Fatal("expected error for nil image")
	}
}

func TestDoG_Blobs(t *testing.T) {
	d := newDoG(t, DefaultOptions())
	img := testimg.Blobs(128, 128, 24, 7)
	set, err := d.Extract(img)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if set.Len() == 0 {
		t.Fatal("expected keypoints on a textured image")
	}
	if err := set.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if set.Dim() != descWidth*descWidth*descHistBins {
		t.Fatalf("descriptor dim = %d, want 128", set.Dim())
	}
	for i, kp := range set.Keypoints {
		if kp.Angle < 0 || kp.Angle >= 360 {
			t.Fatalf("keypoint %d angle %v out of [0,360)", i, kp.Angle)
		}
		if kp.X < 0 || kp.Y < 0 || kp.X >= 128 || kp.Y >= 128 {
			t.Fatalf("keypoint %d at (%v,%v) outside the image", i, kp.X, kp.Y)
		}
		if kp.Size <= 0 {
			t.Fatalf("keypoint %d size %v, want > 0", i, kp.Size)
		}
		var norm float64
		for _, v := range set.Descriptors[i] {
			if v < 0 {
				t.Fatalf("descriptor %d has negative bin %v", i, v)
			}
			norm += float64(v) * float64(v)
		}
		if math.Abs(math.Sqrt(norm)-1) > 1e-3 {
			t.Fatalf("descriptor %d norm = %v, want 1", i, math.Sqrt(norm))
		}
	}
}

func TestDoG_Deterministic(t *testing.T) {
	d := newDoG(t, DefaultOptions())
	img := testimg.Blobs(96, 96, 16, 3)
	a, err := d.Extract(img)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	b, err := d.Extract(img)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if a.Len() != b.Len() {
		t.Fatalf("runs differ in size: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Keypoints {
		if a.Keypoints[i] != b.Keypoints[i] {
			t.Fatalf("keypoint %d differs: %+v vs %+v", i, a.Keypoints[i], b.Keypoints[i])
		}
		for j := range a.Descriptors[i] {
			if a.Descriptors[i][j] != b.Descriptors[i][j] {
				t.Fatalf("descriptor %d differs at %d", i, j)
			}
		}
	}
}

func TestDoG_MaxFeatures(t *testing.T) {
	img := testimg.Blobs(128, 128, 32, 11)
	all, err := newDoG(t, DefaultOptions()).Extract(img)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if all.Len() < 6 {
		t.Fatalf("need at least 6 keypoints for this test, got %d", all.Len())
	}
	opts := DefaultOptions()
	opts.MaxFeatures = 5
	capped, err := newDoG(t, opts).Extract(img)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if capped.Len() != 5 {
		t.Fatalf("MaxFeatures=5 kept %d keypoints", capped.Len())
	}
	if err := capped.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestOptions_Validate(t *testing.T) {
	bad := []Options{
		{MaxFeatures: -1, EdgeThreshold: 10, Sigma: 1.6, Intervals: 3},
		{EdgeThreshold: 0, Sigma: 1.6, Intervals: 3},
		{EdgeThreshold: 10, Sigma: 0, Intervals: 3},
		{EdgeThreshold: 10, Sigma: 1.6, Intervals: 0},
		{ContrastThreshold: -0.1, EdgeThreshold: 10, Sigma: 1.6, Intervals: 3},
	}
	for i, opts := range bad {
		if err := opts.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, opts)
		}
	}
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestNew_Kinds(t *testing.T) {
	ext, err := New("", DefaultOptions())
	if err != nil {
		t.Fatalf("New(\"\") failed: %v", err)
	}
	if _, ok := ext.(*DoG); !ok {
		t.Fatalf("default extractor is %T, want *DoG", ext)
	}
	if _, err := New("nope", DefaultOptions()); err == nil {
		t.Fatal("expected error for unknown extractor")
	}
}

func TestPlane_Blur(t *testing.T) {
	p := newPlane(9, 9)
	p.pix[4*9+4] = 1
	b := p.blur(1.0)
	var sum float64
	for _, v := range b.pix {
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-3 {
		t.Fatalf("blur changed mass: %v", sum)
	}
	if b.at(4, 4) <= b.at(3, 4) || b.at(3, 4) <= b.at(2, 4) {
		t.Fatal("blurred impulse should decay away from the center")
	}
}
