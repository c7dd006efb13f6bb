package shape

import "github.com/go-gl/mathgl/mgl64"

// polyhedron is a rigid family whose markers are the mesh vertices and whose
// face list never changes.
type polyhedron struct {
	kind      Kind
	canonical []mgl64.Vec3
	triangles [][3]int
}

var cube = polyhedron{
	kind: KindCube,
	canonical: []mgl64.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {-1, 1, 1}, {1, 1, 1},
	},
	triangles: [][3]int{
		{0, 1, 3}, {0, 3, 2},
		{1, 5, 7}, {1, 7, 3},
		{5, 4, 6}, {5, 6, 7},
		{4, 0, 2}, {4, 2, 6},
		{2, 3, 7}, {2, 7, 6},
		{4, 5, 1}, {4, 1, 0},
	},
}

var pyramid = polyhedron{
	kind: KindPyramid,
	canonical: []mgl64.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1},
		{0, 1, 0},
	},
	triangles: [][3]int{
		{0, 1, 2}, {0, 2, 3},
		{0, 4, 1}, {1, 4, 2}, {2, 4, 3}, {3, 4, 0},
	},
}

func (p polyhedron) Kind() Kind       { return p.kind }
func (p polyhedron) MarkerCount() int { return len(p.canonical) }

func (p polyhedron) InitialMarkers() []mgl64.Vec3 {
	return cloneVecs(p.canonical)
}

func (p polyhedron) BuildMesh(markers []mgl64.Vec3) Mesh {
	tris := make([][3]int, len(p.triangles))
	copy(tris, p.triangles)
	return Mesh{
		Vertices:  cloneVecs(markers),
		Triangles: tris,
	}
}

// Reproject is a no-op: every corner of a polyhedron moves freely.
func (p polyhedron) Reproject(markers []mgl64.Vec3, moved int) {}

func cloneVecs(in []mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(in))
	copy(out, in)
	return out
}
