package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MinExtent is the smallest radius or height a rebuilt solid may have.
// Collapsed dimensions are clamped to it silently.
const MinExtent = 0.001

// Edge is an undirected wireframe edge between two vertex indices.
type Edge [2]int

// Dimensions records the parameters a parametric mesh was generated from.
// Zero for the rigid polyhedra.
type Dimensions struct {
	Radius       float64 `json:"radius,omitempty"`
	RadiusTop    float64 `json:"radius_top,omitempty"`
	RadiusBottom float64 `json:"radius_bottom,omitempty"`
	Height       float64 `json:"height,omitempty"`
}

// Mesh is an indexed triangle mesh. Vertices are local; Offset moves them
// into shape space.
type Mesh struct {
	Vertices   []mgl64.Vec3 `json:"vertices"`
	Triangles  [][3]int     `json:"triangles"`
	Offset     mgl64.Vec3   `json:"offset"`
	Dimensions Dimensions   `json:"dimensions"`
}

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Vertex returns vertex i in shape space.
func (m Mesh) Vertex(i int) mgl64.Vec3 {
	return m.Vertices[i].Add(m.Offset)
}

// Bounds returns the axis-aligned bounds of the mesh in shape space.
func (m Mesh) Bounds() (lo, hi mgl64.Vec3) {
	if len(m.Vertices) == 0 {
		return m.Offset, m.Offset
	}
	lo = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := range m.Vertices {
		v := m.Vertex(i)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	return lo, hi
}

// Recentered returns a copy of m whose bounds are centred on the local
// origin, together with the former centre.
func (m Mesh) Recentered() (Mesh, mgl64.Vec3) {
	lo, hi := m.Bounds()
	center := lo.Add(hi).Mul(0.5)
	out := m.clone()
	out.Offset = m.Offset.Sub(center)
	return out, center
}

func (m Mesh) clone() Mesh {
	out := Mesh{
		Vertices:   make([]mgl64.Vec3, len(m.Vertices)),
		Triangles:  make([][3]int, len(m.Triangles)),
		Offset:     m.Offset,
		Dimensions: m.Dimensions,
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Triangles, m.Triangles)
	return out
}

// Solid is a filled mesh plus its wireframe twin, as shown on screen.
type Solid struct {
	Kind      Kind   `json:"kind"`
	Color     string `json:"color"`
	Mesh      Mesh   `json:"mesh"`
	Wireframe []Edge `json:"wireframe"`
}

// Clone returns a deep copy of the solid.
func (s Solid) Clone() Solid {
	out := s
	out.Mesh = s.Mesh.clone()
	out.Wireframe = make([]Edge, len(s.Wireframe))
	copy(out.Wireframe, s.Wireframe)
	return out
}

// wireframe collects the unique undirected edges of tris in first-seen order.
func wireframe(tris [][3]int) []Edge {
	seen := make(map[Edge]bool, len(tris)*3)
	edges := make([]Edge, 0, len(tris)*3/2)
	for _, t := range tris {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			e := Edge{a, b}
			if seen[e] {
				continue
			}
			seen[e] = true
			edges = append(edges, e)
		}
	}
	return edges
}

// clampExtent floors v at MinExtent.
func clampExtent(v float64) float64 {
	if math.IsNaN(v) || v < MinExtent {
		return MinExtent
	}
	return v
}
