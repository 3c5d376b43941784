package imageio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// WritePPM writes frame as a plain-text P3 pixmap with one pixel per line,
// top row first
func WritePPM(w io.Writer, frame *renderer.Frame) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", frame.Width, frame.Height); err != nil {
		return err
	}

	rgb := frame.RGB()
	for i := 0; i < len(rgb); i += 3 {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", rgb[i], rgb[i+1], rgb[i+2]); err != nil {
			return err
		}
	}

	return bw.Flush()
}
