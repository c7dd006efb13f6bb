// Package palette draws the colour wheel shown next to the sculpting view
// and maps picked pixels back to hex colours.
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is the fill colour of a new session.
const DefaultColor = "#ff00ff"

// ErrInvalidColor is returned for strings that are not hex colours.
var ErrInvalidColor = errors.New("invalid color")

// Wheel is a hue wheel of 360 one-degree wedges at full saturation and 50%
// lightness, drawn on a square canvas. Pixels outside the disc are
// transparent.
type Wheel struct {
	size int
	img  *image.NRGBA
}

// NewWheel renders a wheel on a size by size canvas.
func NewWheel(size int) *Wheel {
	if size < 1 {
		size = 1
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - c
			dy := float64(y) + 0.5 - c
			if math.Hypot(dx, dy) > c {
				continue
			}
			r, g, b := Hue(wedge(dx, dy)).RGB255()
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return &Wheel{size: size, img: img}
}

// wedge returns the one-degree wedge containing the offset (dx, dy), with Y
// growing downwards as on a canvas.
func wedge(dx, dy float64) float64 {
	deg := math.Atan2(dy, dx) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return math.Floor(deg)
}

// Hue returns the wheel colour for hue degrees.
func Hue(deg float64) colorful.Color {
	return colorful.Hsl(math.Mod(deg, 360), 1, 0.5)
}

// Size returns the edge length of the wheel canvas.
func (w *Wheel) Size() int {
	return w.size
}

// Image returns the rendered wheel.
func (w *Wheel) Image() image.Image {
	return w.img
}

// Sample returns the hex colour at the canvas pixel (x, y). It reports false
// outside the canvas and on transparent pixels.
func (w *Wheel) Sample(x, y float64) (string, bool) {
	px, py := int(math.Floor(x)), int(math.Floor(y))
	if px < 0 || py < 0 || px >= w.size || py >= w.size {
		return "", false
	}
	c := w.img.NRGBAAt(px, py)
	if c.A == 0 {
		return "", false
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), true
}

// SampleScaled samples the wheel when it is displayed in a rectangle of
// width by height pixels, with (x, y) relative to the rectangle's top-left.
func (w *Wheel) SampleScaled(x, y, width, height float64) (string, bool) {
	if width <= 0 || height <= 0 {
		return "", false
	}
	return w.Sample(x*float64(w.size)/width, y*float64(w.size)/height)
}

// Normalize validates a "#rgb" or "#rrggbb" colour and returns it in
// lowercase six-digit form.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c.Hex(), nil
}

// NRGBA parses a hex colour into an image colour with alpha a. Invalid
// input yields the default colour.
func NRGBA(hex string, a uint8) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(DefaultColor)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
