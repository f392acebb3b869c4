package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WEBP decoder
)

var (
	// ErrInputNotFound is returned when the image path does not exist.
	ErrInputNotFound = errors.New("imageio: input not found")

	// ErrDecodeFailure is returned when the content is not a decodable image.
	ErrDecodeFailure = errors.New("imageio: decode failure")
)

// Loader decodes an image file into a grayscale raster.
type Loader interface {
	Load(path string) (*image.Gray, error)
}

// FileLoader loads images from a filesystem.
type FileLoader struct {
	// Fs is the filesystem to read from; nil means the OS filesystem.
	Fs afero.Fs

	// MaxDimension, when non-zero, bounds the larger image side. Bigger
	// images are downscaled keeping their aspect ratio.
	MaxDimension uint
}

// NewFileLoader returns a loader reading from fs.
func NewFileLoader(fs afero.Fs, maxDimension uint) *FileLoader {
	return &FileLoader{Fs: fs, MaxDimension: maxDimension}
}

// Load opens and decodes path.
func (l *FileLoader) Load(path string) (*image.Gray, error) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecodeFailure, path, err)
	}
	if l.MaxDimension > 0 {
		img = Downscale(img, l.MaxDimension)
	}
	return img, nil
}

// Decode reads an image from r and converts it to grayscale.
func Decode(r io.Reader) (*image.Gray, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return Grayscale(img), nil
}

// Grayscale converts img to an 8-bit grayscale raster whose bounds start at
// the origin. Conversion uses the ITU-R 601 luma weights of color.GrayModel.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Downscale shrinks img so that neither side exceeds maxDimension. Smaller
// images are returned unchanged.
func Downscale(img *image.Gray, maxDimension uint) *image.Gray {
	b := img.Bounds()
	if uint(b.Dx()) <= maxDimension && uint(b.Dy()) <= maxDimension {
		return img
	}
	return Grayscale(resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3))
}

// Extensions lists the file extensions treated as images when scanning
// directories.
var Extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// IsImage reports whether path has a recognized image extension.
func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
