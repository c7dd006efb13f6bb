package render

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"

	"github.com/ayusman/handsculpt/internal/gesture"
	"github.com/ayusman/handsculpt/internal/palette"
	"github.com/ayusman/handsculpt/internal/scene"
	"github.com/ayusman/handsculpt/internal/shape"
)

// Options controls export rendering.
type Options struct {
	Width  int
	Height int
	// Supersample renders at this multiple of the output size and filters
	// down. Values below 1 mean 1.
	Supersample int
	// FillOpacity is the alpha of solid fills.
	FillOpacity float64
	// Wire is the colour of placed solids' wireframes.
	Wire color.NRGBA
}

// DefaultOptions renders at the viewport size with 2x supersampling.
func DefaultOptions(vp gesture.Viewport) Options {
	return Options{
		Width:       int(vp.Width),
		Height:      int(vp.Height),
		Supersample: 2,
		FillOpacity: 0.5,
		Wire:        color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// Renderer draws unlit, half-transparent solids on a transparent
// background. Markers and the editing shape's wireframe are never drawn.
type Renderer struct {
	opts Options
}

// NewRenderer creates a Renderer.
func NewRenderer(opts Options) *Renderer {
	if opts.Width < 1 {
		opts.Width = 1
	}
	if opts.Height < 1 {
		opts.Height = 1
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.FillOpacity <= 0 || opts.FillOpacity > 1 {
		opts.FillOpacity = 0.5
	}
	return &Renderer{opts: opts}
}

// Options returns the effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

// triangle is a projected fill triangle ready for painter's ordering.
type triangle struct {
	x, y  [3]float64
	depth float64
	fill  color.NRGBA
}

// Render draws v. It returns ErrNothingToExport when there is no solid.
func (r *Renderer) Render(v scene.View) (*image.NRGBA, error) {
	if !v.HasContent() {
		return nil, ErrNothingToExport
	}

	ss := r.opts.Supersample
	w, h := r.opts.Width*ss, r.opts.Height*ss
	cam := v.Camera.WithViewport(gesture.Viewport{Width: float64(w), Height: float64(h)})
	fb := newFrameBuffer(w, h)
	alpha := uint8(math.Round(r.opts.FillOpacity * 255))

	var tris []triangle
	if v.Editing != nil {
		tris = appendSolid(tris, cam, v.Editing, mgl64.Vec3{}, alpha)
	}
	for i := range v.Placed {
		p := &v.Placed[i]
		tris = appendSolid(tris, cam, &p.Solid, p.Position, alpha)
	}

	// Far to near so that nearer translucent faces blend over farther ones.
	sort.SliceStable(tris, func(i, j int) bool { return tris[i].depth > tris[j].depth })
	for _, t := range tris {
		fb.fillTriangle(t)
	}

	for i := range v.Placed {
		p := &v.Placed[i]
		for _, e := range p.Solid.Wireframe {
			a, okA := project(cam, p.Solid.Mesh.Vertex(e[0]).Add(p.Position))
			b, okB := project(cam, p.Solid.Mesh.Vertex(e[1]).Add(p.Position))
			if okA && okB {
				fb.line(a, b, float64(ss), r.opts.Wire)
			}
		}
	}

	img := fb.image()
	if ss == 1 {
		return img, nil
	}
	return downsample(img, r.opts.Width, r.opts.Height), nil
}

// projected is a screen-space vertex with its distance from the eye.
type projected struct {
	x, y, dist float64
}

// project maps p to pixels. It reports false for points behind the camera.
func project(cam scene.Camera, p mgl64.Vec3) (projected, bool) {
	if p.Sub(cam.Eye).Dot(cam.Forward()) <= cam.Near {
		return projected{}, false
	}
	x, y, _ := cam.Project(p)
	return projected{x: x, y: y, dist: p.Sub(cam.Eye).Len()}, true
}

func appendSolid(tris []triangle, cam scene.Camera, s *shape.Solid, offset mgl64.Vec3, alpha uint8) []triangle {
	fill := palette.NRGBA(s.Color, alpha)
	pts := make([]projected, len(s.Mesh.Vertices))
	ok := make([]bool, len(s.Mesh.Vertices))
	for i := range s.Mesh.Vertices {
		pts[i], ok[i] = project(cam, s.Mesh.Vertex(i).Add(offset))
	}
	for _, idx := range s.Mesh.Triangles {
		if !ok[idx[0]] || !ok[idx[1]] || !ok[idx[2]] {
			continue
		}
		a, b, c := pts[idx[0]], pts[idx[1]], pts[idx[2]]
		tris = append(tris, triangle{
			x:     [3]float64{a.x, b.x, c.x},
			y:     [3]float64{a.y, b.y, c.y},
			depth: (a.dist + b.dist + c.dist) / 3,
			fill:  fill,
		})
	}
	return tris
}

// frameBuffer is a straight-alpha RGBA canvas, cleared to transparent.
type frameBuffer struct {
	width, height int
	pix           []uint8
}

func newFrameBuffer(w, h int) *frameBuffer {
	return &frameBuffer{width: w, height: h, pix: make([]uint8, w*h*4)}
}

// blend composites c over the pixel at (x, y).
func (fb *frameBuffer) blend(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height || c.A == 0 {
		return
	}
	i := (y*fb.width + x) * 4
	sa := float64(c.A) / 255
	da := float64(fb.pix[i+3]) / 255
	oa := sa + da*(1-sa)
	if oa <= 0 {
		return
	}
	mix := func(s, d uint8) uint8 {
		v := (float64(s)*sa + float64(d)*da*(1-sa)) / oa
		return uint8(math.Min(255, math.Round(v)))
	}
	fb.pix[i] = mix(c.R, fb.pix[i])
	fb.pix[i+1] = mix(c.G, fb.pix[i+1])
	fb.pix[i+2] = mix(c.B, fb.pix[i+2])
	fb.pix[i+3] = uint8(math.Round(oa * 255))
}

// fillTriangle rasterises t at pixel centres, either winding.
func (fb *frameBuffer) fillTriangle(t triangle) {
	x0, y0 := t.x[0], t.y[0]
	x1, y1 := t.x[1], t.y[1]
	x2, y2 := t.x[2], t.y[2]

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if math.Abs(det) < 1e-9 {
		return
	}
	inv := 1 / det

	minX := int(math.Max(0, math.Floor(math.Min(x0, math.Min(x1, x2)))))
	maxX := int(math.Min(float64(fb.width-1), math.Ceil(math.Max(x0, math.Max(x1, x2)))))
	minY := int(math.Max(0, math.Floor(math.Min(y0, math.Min(y1, y2)))))
	maxY := int(math.Min(float64(fb.height-1), math.Ceil(math.Max(y0, math.Max(y1, y2)))))

	for py := minY; py <= maxY; py++ {
		cy := float64(py) + 0.5
		for px := minX; px <= maxX; px++ {
			cx := float64(px) + 0.5
			w0 := ((y1-y2)*(cx-x2) + (x2-x1)*(cy-y2)) * inv
			w1 := ((y2-y0)*(cx-x2) + (x0-x2)*(cy-y2)) * inv
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			fb.blend(px, py, t.fill)
		}
	}
}

// line draws a segment of the given width.
func (fb *frameBuffer) line(a, b projected, width float64, c color.NRGBA) {
	dx, dy := b.x-a.x, b.y-a.y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	half := int(math.Max(0, width/2))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Floor(a.x + dx*t))
		y := int(math.Floor(a.y + dy*t))
		for oy := -half; oy <= half; oy++ {
			for ox := -half; ox <= half; ox++ {
				fb.set(x+ox, y+oy, c)
			}
		}
	}
}

func (fb *frameBuffer) set(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return
	}
	i := (y*fb.width + x) * 4
	fb.pix[i], fb.pix[i+1], fb.pix[i+2], fb.pix[i+3] = c.R, c.G, c.B, c.A
}

func (fb *frameBuffer) image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    fb.pix,
		Stride: fb.width * 4,
		Rect:   image.Rect(0, 0, fb.width, fb.height),
	}
}

// downsample filters img to w by h in premultiplied space so transparent
// edges do not darken.
func downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	premul := image.NewRGBA(img.Bounds())
	draw.Draw(premul, premul.Bounds(), img, image.Point{}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	out := image.NewNRGBA(dst.Bounds())
	for i := 0; i < len(dst.Pix); i += 4 {
		a := float64(dst.Pix[i+3])
		if a > 0 {
			inv := 255 / a
			out.Pix[i] = clamp8(float64(dst.Pix[i]) * inv)
			out.Pix[i+1] = clamp8(float64(dst.Pix[i+1]) * inv)
			out.Pix[i+2] = clamp8(float64(dst.Pix[i+2]) * inv)
		}
		out.Pix[i+3] = dst.Pix[i+3]
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
