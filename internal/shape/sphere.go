package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SphereSegments is the number of width and height segments of the UV sphere.
const SphereSegments = 16

// sphereFamily keeps its 8 control points on a common sphere around the
// origin. The points are handles only; they are not mesh vertices.
type sphereFamily struct{}

var sphereCanonical = []mgl64.Vec3{
	{0, 1, 0}, {1, 0, 0}, {0, 0, 1}, {-1, 0, 0},
	{0, 0, -1}, {0, -1, 0}, {0.7, 0.7, 0}, {0.7, -0.7, 0},
}

func (sphereFamily) Kind() Kind       { return KindSphere }
func (sphereFamily) MarkerCount() int { return len(sphereCanonical) }

func (sphereFamily) InitialMarkers() []mgl64.Vec3 {
	return cloneVecs(sphereCanonical)
}

func (sphereFamily) BuildMesh(markers []mgl64.Vec3) Mesh {
	r := clampExtent(meanLength(markers))
	m := uvSphere(r, SphereSegments, SphereSegments)
	m.Dimensions = Dimensions{Radius: r}
	return m
}

// Reproject rescales every control point along its own direction so that all
// of them sit at the mean radius.
func (sphereFamily) Reproject(markers []mgl64.Vec3, moved int) {
	r := meanLength(markers)
	for i, p := range markers {
		dir := p
		if dir.Len() < 1e-12 {
			dir = sphereCanonical[i%len(sphereCanonical)]
		}
		markers[i] = dir.Normalize().Mul(r)
	}
}

func meanLength(points []mgl64.Vec3) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Len()
	}
	return sum / float64(len(points))
}

// uvSphere builds a latitude/longitude sphere centred on the origin with
// (width+1)*(height+1) vertices. Pole rows produce one triangle per segment.
func uvSphere(radius float64, width, height int) Mesh {
	verts := make([]mgl64.Vec3, 0, (width+1)*(height+1))
	grid := make([][]int, height+1)
	for iy := 0; iy <= height; iy++ {
		v := float64(iy) / float64(height)
		grid[iy] = make([]int, width+1)
		for ix := 0; ix <= width; ix++ {
			u := float64(ix) / float64(width)
			theta := u * 2 * math.Pi
			phi := v * math.Pi
			verts = append(verts, mgl64.Vec3{
				-radius * math.Cos(theta) * math.Sin(phi),
				radius * math.Cos(phi),
				radius * math.Sin(theta) * math.Sin(phi),
			})
			grid[iy][ix] = len(verts) - 1
		}
	}

	tris := make([][3]int, 0, 2*width*(height-1))
	for iy := 0; iy < height; iy++ {
		for ix := 0; ix < width; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				tris = append(tris, [3]int{a, b, d})
			}
			if iy != height-1 {
				tris = append(tris, [3]int{b, c, d})
			}
		}
	}
	return Mesh{Vertices: verts, Triangles: tris}
}
