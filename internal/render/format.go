// Package render draws a scene view into an image for export and encodes
// it as PNG or WebP.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"github.com/ayusman/handsculpt/internal/shape"
)

var (
	// ErrNothingToExport is returned when the view has no solids.
	ErrNothingToExport = errors.New("nothing to export")
	// ErrUnsupportedFormat is returned for unknown image formats.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Format is an export image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat converts a name or extension such as ".WebP" into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatPNG, FormatWebP:
		return f, nil
	case "":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	return string(f)
}

// FileName returns the export file name for a solid of kind saved at t,
// e.g. "cube_1700000000000.png".
func FileName(kind shape.Kind, t time.Time, f Format) string {
	return fmt.Sprintf("%s_%d.%s", kind, t.UnixMilli(), f.Ext())
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// WriteFile encodes img into a new file at path.
func WriteFile(path string, img image.Image, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return out.Close()
}
