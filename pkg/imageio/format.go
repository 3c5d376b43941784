// Package imageio encodes rendered frames to image files.
package imageio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for output paths with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format identifies an output encoding
type Format int

const (
	FormatPPM Format = iota // Plain-text P3 portable pixmap
	FormatPNG
	FormatBMP
	FormatTIFF
	FormatEXR // Linear half-float OpenEXR, no gamma applied
)

var formatNames = map[Format]string{
	FormatPPM:  "ppm",
	FormatPNG:  "png",
	FormatBMP:  "bmp",
	FormatTIFF: "tiff",
	FormatEXR:  "exr",
}

var extensions = map[string]Format{
	".ppm":  FormatPPM,
	".png":  FormatPNG,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".exr":  FormatEXR,
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromPath picks the encoding from the file extension. A trailing
// ".gz" selects gzip compression of the inner format.
func FormatFromPath(path string) (format Format, compressed bool, err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".gz" {
		compressed = true
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}

	format, ok := extensions[ext]
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	return format, compressed, nil
}

// ParseFormat looks up a format by its short name, e.g. "png" or "exr"
func ParseFormat(name string) (Format, error) {
	format, ok := extensions["."+strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return format, nil
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatPPM:
		return "image/x-portable-pixmap"
	case FormatPNG:
		return "image/png"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	case FormatEXR:
		return "image/x-exr"
	default:
		return "application/octet-stream"
	}
}
