package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png" // PNG decoder
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/mrjoshuak/go-openexr/exr"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Load reads an image written by Save back into a frame of linear colors.
// 8-bit formats are decoded with the inverse of the gamma 2 encoding, EXR
// values are taken as stored.
func Load(path string) (*renderer.Frame, error) {
	format, compressed, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if compressed {
		zr, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	switch format {
	case FormatEXR:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		img, err := readEXR(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode exr: %w", err)
		}
		return frameFromEXR(img), nil
	case FormatPPM:
		return ReadPPM(r)
	default:
		img, _, err := image.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		return frameFromImage(img), nil
	}
}

func gammaToLinear(v uint32) float64 {
	// RGBA returns uint32 in [0, 65535]
	g := float64(v) / 65535.0
	return g * g
}

func frameFromImage(img image.Image) *renderer.Frame {
	bounds := img.Bounds()
	frame := renderer.NewFrame(bounds.Dx(), bounds.Dy())

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			frame.Set(x, y, core.NewColor(gammaToLinear(r), gammaToLinear(g), gammaToLinear(b)))
		}
	}
	return frame
}

func frameFromEXR(img *exr.RGBAImage) *renderer.Frame {
	bounds := img.Bounds()
	frame := renderer.NewFrame(bounds.Dx(), bounds.Dy())

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			r, g, b, _ := img.RGBA(x+bounds.Min.X, y+bounds.Min.Y)
			frame.Set(x, y, core.NewColor(float64(r), float64(g), float64(b)))
		}
	}
	return frame
}

// ReadPPM parses a P3 pixmap with a maximum value of 255
func ReadPPM(r io.Reader) (*renderer.Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	in := bytes.NewReader(data)

	var magic string
	var width, height, maxVal int
	if _, err := fmt.Fscan(in, &magic, &width, &height, &maxVal); err != nil {
		return nil, fmt.Errorf("failed to read ppm header: %w", err)
	}
	if magic != "P3" || maxVal != 255 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("unsupported ppm header %s %d %d %d", magic, width, height, maxVal)
	}

	frame := renderer.NewFrame(width, height)
	for i := range frame.Pixels {
		var rgb [3]uint32
		if _, err := fmt.Fscan(in, &rgb[0], &rgb[1], &rgb[2]); err != nil {
			return nil, fmt.Errorf("failed to read pixel %d: %w", i, err)
		}
		// Scale 8-bit to the 16-bit range used by image.Color
		frame.Pixels[i] = core.NewColor(gammaToLinear(rgb[0]*257), gammaToLinear(rgb[1]*257), gammaToLinear(rgb[2]*257))
	}
	return frame, nil
}
