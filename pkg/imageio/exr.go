package imageio

import (
	"bytes"
	"errors"
	"image"
	"io"

	"github.com/mrjoshuak/go-openexr/exr"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// NewEXRImage copies the linear frame colors into an opaque float image
func NewEXRImage(frame *renderer.Frame) *exr.RGBAImage {
	img := exr.NewRGBAImage(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := frame.At(x, y)
			img.SetRGBA(x, y, float32(c.X), float32(c.Y), float32(c.Z), 1)
		}
	}
	return img
}

// WriteEXR writes the linear frame as a ZIP-compressed half-float OpenEXR file.
// Writers that cannot seek are fed through an in-memory buffer.
func WriteEXR(w io.Writer, frame *renderer.Frame) error {
	img := NewEXRImage(frame)

	if ws, ok := w.(io.WriteSeeker); ok {
		return exr.Encode(ws, img)
	}

	buf := &seekBuffer{}
	if err := exr.Encode(buf, img); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// seekBuffer is an in-memory io.WriteSeeker
type seekBuffer struct {
	data []byte
	pos  int64
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		b.data = append(b.data, make([]byte, end-int64(len(b.data)))...)
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = b.pos + offset
	case io.SeekEnd:
		next = int64(len(b.data)) + offset
	default:
		return 0, errors.New("seekBuffer: invalid whence")
	}
	if next < 0 {
		return 0, errors.New("seekBuffer: negative position")
	}
	b.pos = next
	return next, nil
}

func (b *seekBuffer) Bytes() []byte {
	return b.data
}

// readEXR decodes an EXR stream that is already in memory
func readEXR(data []byte) (*exr.RGBAImage, error) {
	return exr.Decode(bytes.NewReader(data), int64(len(data)))
}
