package shape

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// RadialSegments is the number of sides used to tessellate cylinder and cone
// walls.
const RadialSegments = 16

// ringSize is the number of markers in one ring.
const ringSize = 4

var ringCanonical = []mgl64.Vec3{{-1, 0, 0}, {0, 0, -1}, {1, 0, 0}, {0, 0, 1}}

func canonicalRing(y float64) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(ringCanonical))
	for i, p := range ringCanonical {
		out[i] = mgl64.Vec3{p.X(), y, p.Z()}
	}
	return out
}

// ring summarises a group of markers sharing a plane.
type ring struct {
	Center mgl64.Vec3 // centroid, Y is the ring's mean Y
	Radius float64    // mean XZ distance from the centroid
}

func measureRing(points []mgl64.Vec3) ring {
	var c mgl64.Vec3
	for _, p := range points {
		c = c.Add(p)
	}
	c = c.Mul(1 / float64(len(points)))
	var r float64
	for _, p := range points {
		r += math.Hypot(p.X()-c.X(), p.Z()-c.Z())
	}
	return ring{Center: c, Radius: r / float64(len(points))}
}

// snapRing moves the points onto one horizontal circle about their
// centroid, at the ring's mean Y and mean radius. In angular order each
// point is paired with the one half a turn further round, and the pair is
// set diametrically opposite, so the snapped points keep the circle's centre
// as their centroid and a second snap changes nothing. A pair holding moved
// keeps moved's angle; any other pair takes the mean of its two directions.
// The number of points must be even.
func snapRing(points []mgl64.Vec3, moved int) ring {
	rg := measureRing(points)
	angle := make([]float64, len(points))
	order := make([]int, len(points))
	for i, p := range points {
		angle[i] = math.Atan2(p.Z()-rg.Center.Z(), p.X()-rg.Center.X())
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return angle[order[a]] < angle[order[b]] })

	half := len(order) / 2
	for k := 0; k < half; k++ {
		a, b := order[k], order[k+half]
		axis := angle[a]
		switch {
		case a == moved:
		case b == moved:
			axis = angle[b] + math.Pi
		default:
			x := math.Cos(angle[a]) - math.Cos(angle[b])
			z := math.Sin(angle[a]) - math.Sin(angle[b])
			if math.Hypot(x, z) > 1e-12 {
				axis = math.Atan2(z, x)
			}
		}
		points[a] = rg.at(axis)
		points[b] = rg.at(axis + math.Pi)
	}
	return rg
}

// at returns the point of the ring at angle theta about the Y axis.
func (rg ring) at(theta float64) mgl64.Vec3 {
	return mgl64.Vec3{
		rg.Center.X() + rg.Radius*math.Cos(theta),
		rg.Center.Y(),
		rg.Center.Z() + rg.Radius*math.Sin(theta),
	}
}

// ringMoved maps a marker index to an index within the ring starting at
// first, or -1 when the marker is not in that ring.
func ringMoved(moved, first int) int {
	if moved < first || moved >= first+ringSize {
		return -1
	}
	return moved - first
}

// cylinderFamily is a frustum with independent top and bottom rings.
// Markers 0-3 are the bottom ring and 4-7 the top ring.
type cylinderFamily struct{}

func (cylinderFamily) Kind() Kind       { return KindCylinder }
func (cylinderFamily) MarkerCount() int { return 2 * ringSize }

func (cylinderFamily) InitialMarkers() []mgl64.Vec3 {
	return append(canonicalRing(-1), canonicalRing(1)...)
}

func (cylinderFamily) BuildMesh(markers []mgl64.Vec3) Mesh {
	bottom := measureRing(markers[:ringSize])
	top := measureRing(markers[ringSize:])
	center := bottom.Center.Add(top.Center).Mul(0.5)

	m := frustum(
		clampExtent(bottom.Radius), bottom.Center.Y()-center.Y(),
		clampExtent(top.Radius), top.Center.Y()-center.Y(),
	)
	m.Offset = center
	m.Dimensions = Dimensions{
		RadiusTop:    clampExtent(top.Radius),
		RadiusBottom: clampExtent(bottom.Radius),
		Height:       clampExtent(math.Abs(top.Center.Y() - bottom.Center.Y())),
	}
	return m
}

func (cylinderFamily) Reproject(markers []mgl64.Vec3, moved int) {
	snapRing(markers[:ringSize], ringMoved(moved, 0))
	snapRing(markers[ringSize:], ringMoved(moved, ringSize))
}

// coneFamily is a base ring (markers 0-3) plus an apex (marker 4) that only
// moves vertically relative to the ring.
type coneFamily struct{}

const apexIndex = ringSize

func (coneFamily) Kind() Kind       { return KindCone }
func (coneFamily) MarkerCount() int { return ringSize + 1 }

func (coneFamily) InitialMarkers() []mgl64.Vec3 {
	return append(canonicalRing(-1), mgl64.Vec3{0, 1, 0})
}

func (coneFamily) BuildMesh(markers []mgl64.Vec3) Mesh {
	base := measureRing(markers[:ringSize])
	apexY := markers[apexIndex].Y()
	midY := (base.Center.Y() + apexY) / 2

	m := frustum(clampExtent(base.Radius), base.Center.Y()-midY, 0, apexY-midY)
	m.Offset = mgl64.Vec3{base.Center.X(), midY, base.Center.Z()}
	m.Dimensions = Dimensions{
		RadiusBottom: clampExtent(base.Radius),
		Height:       clampExtent(math.Abs(apexY - base.Center.Y())),
	}
	return m
}

func (coneFamily) Reproject(markers []mgl64.Vec3, moved int) {
	base := snapRing(markers[:ringSize], ringMoved(moved, 0))
	apex := markers[apexIndex]
	markers[apexIndex] = mgl64.Vec3{base.Center.X(), apex.Y(), base.Center.Z()}
}

// frustum tessellates a capped truncated cone between a ring of radius rA at
// local height yA and one of radius rB at yB. A zero radius collapses that
// end to a single vertex with no cap. The two ends are kept at least
// MinExtent apart.
func frustum(rA, yA, rB, yB float64) Mesh {
	if math.Abs(yB-yA) < MinExtent {
		mid := (yA + yB) / 2
		if yB >= yA {
			yA, yB = mid-MinExtent/2, mid+MinExtent/2
		} else {
			yA, yB = mid+MinExtent/2, mid-MinExtent/2
		}
	}

	var m Mesh
	ringA := m.addRing(rA, yA)
	ringB := m.addRing(rB, yB)

	for i := 0; i < RadialSegments; i++ {
		j := (i + 1) % RadialSegments
		a0, a1 := ringA[i], ringA[j]
		b0, b1 := ringB[i], ringB[j]
		if a0 != a1 {
			m.Triangles = append(m.Triangles, [3]int{a0, a1, b0})
		}
		if b0 != b1 {
			m.Triangles = append(m.Triangles, [3]int{a1, b1, b0})
		}
	}
	m.addCap(ringA, rA, yA)
	m.addCap(ringB, rB, yB)
	return m
}

// addRing appends the vertices of a ring and returns their indices. A
// zero-radius ring is a single shared vertex.
func (m *Mesh) addRing(radius, y float64) []int {
	idx := make([]int, RadialSegments)
	if radius == 0 {
		m.Vertices = append(m.Vertices, mgl64.Vec3{0, y, 0})
		for i := range idx {
			idx[i] = len(m.Vertices) - 1
		}
		return idx
	}
	for i := range idx {
		theta := float64(i) / RadialSegments * 2 * math.Pi
		m.Vertices = append(m.Vertices, mgl64.Vec3{radius * math.Sin(theta), y, radius * math.Cos(theta)})
		idx[i] = len(m.Vertices) - 1
	}
	return idx
}

func (m *Mesh) addCap(ringIdx []int, radius, y float64) {
	if radius == 0 {
		return
	}
	m.Vertices = append(m.Vertices, mgl64.Vec3{0, y, 0})
	center := len(m.Vertices) - 1
	for i := 0; i < RadialSegments; i++ {
		m.Triangles = append(m.Triangles, [3]int{center, ringIdx[i], ringIdx[(i+1)%RadialSegments]})
	}
}
