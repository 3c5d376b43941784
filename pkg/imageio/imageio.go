package imageio

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Encode writes frame to w in the given format
func Encode(w io.Writer, frame *renderer.Frame, format Format) error {
	switch format {
	case FormatPPM:
		return WritePPM(w, frame)
	case FormatPNG:
		return png.Encode(w, frame.Image())
	case FormatBMP:
		return bmp.Encode(w, frame.Image())
	case FormatTIFF:
		return tiff.Encode(w, frame.Image(), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatEXR:
		return WriteEXR(w, frame)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// Save writes frame to path, creating parent directories as needed. The
// format comes from the extension; a ".gz" suffix gzips the output.
func Save(path string, frame *renderer.Frame) (err error) {
	format, compressed, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	if !compressed {
		// EXR needs to seek back into the file, so it bypasses the buffer
		if format == FormatEXR {
			return Encode(file, frame, format)
		}
		bw := bufio.NewWriter(file)
		if err := Encode(bw, frame, format); err != nil {
			return fmt.Errorf("failed to encode %s: %w", format, err)
		}
		return bw.Flush()
	}

	zw, err := gzip.NewWriterLevel(file, gzip.BestCompression)
	if err != nil {
		return err
	}
	zw.Name = filepath.Base(path[:len(path)-len(filepath.Ext(path))])
	if err := Encode(zw, frame, format); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	if err := zw.Close(); err != nil {
		return err
	}

	core.Logger().Debug("compressed output", "path", path, "format", format.String())
	return nil
}
