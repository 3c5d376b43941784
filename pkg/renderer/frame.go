package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

const (
	// IntensityMax is the upper clamp applied to gamma-encoded components so
	// that a full-intensity channel maps to 255 rather than 256
	IntensityMax = 0.999
	// ByteScale converts a clamped gamma component to an 8-bit value
	ByteScale = 256
)

// Intensity is the range gamma-encoded components are clamped to
var Intensity = core.NewInterval(0.000, IntensityMax)

// LinearToGamma applies gamma 2 encoding
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// ComponentToByte gamma-encodes one linear component and quantizes it
func ComponentToByte(linear float64) uint8 {
	return uint8(int(ByteScale * Intensity.Clamp(LinearToGamma(linear))))
}

// ColorToRGB quantizes a linear color to 8-bit gamma-encoded RGB
func ColorToRGB(c core.Color) [3]uint8 {
	return [3]uint8{ComponentToByte(c.X), ComponentToByte(c.Y), ComponentToByte(c.Z)}
}

// Frame holds the averaged linear color of every pixel, row-major from the top row
type Frame struct {
	Width  int
	Height int
	Pixels []core.Color
}

// NewFrame allocates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]core.Color, width*height),
	}
}

// Set stores the linear color of pixel (x, y)
func (f *Frame) Set(x, y int, c core.Color) {
	f.Pixels[y*f.Width+x] = c
}

// At returns the linear color of pixel (x, y)
func (f *Frame) At(x, y int) core.Color {
	return f.Pixels[y*f.Width+x]
}

// RGB returns Width*Height gamma-encoded RGB triples, row-major from the top row
func (f *Frame) RGB() []byte {
	out := make([]byte, 0, 3*len(f.Pixels))
	for _, c := range f.Pixels {
		rgb := ColorToRGB(c)
		out = append(out, rgb[0], rgb[1], rgb[2])
	}
	return out
}

// Image converts the frame to an opaque 8-bit image for the standard encoders
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			rgb := ColorToRGB(f.At(x, y))
			img.SetRGBA(x, y, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255})
		}
	}
	return img
}

// AverageLuminance returns the mean Rec. 709 luminance of the linear pixels
func (f *Frame) AverageLuminance() float64 {
	if len(f.Pixels) == 0 {
		return 0
	}
	var total float64
	for _, c := range f.Pixels {
		total += 0.2126*c.X + 0.7152*c.Y + 0.0722*c.Z
	}
	return total / float64(len(f.Pixels))
}
