package shape

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrMarkerCount is returned when a marker set does not match its family.
var ErrMarkerCount = errors.New("wrong marker count")

// Family is one parametric shape kind: its canonical markers, its mesh
// generator and its marker constraint.
type Family interface {
	// Kind returns the family's kind.
	Kind() Kind

	// MarkerCount returns the fixed number of markers.
	MarkerCount() int

	// InitialMarkers returns fresh canonical marker positions.
	InitialMarkers() []mgl64.Vec3

	// BuildMesh generates a new mesh from markers. Markers are read only.
	BuildMesh(markers []mgl64.Vec3) Mesh

	// Reproject restores the family constraint in place after marker
	// moved has been displaced.
	Reproject(markers []mgl64.Vec3, moved int)
}

var families = map[Kind]Family{
	KindCube:     cube,
	KindPyramid:  pyramid,
	KindSphere:   sphereFamily{},
	KindCylinder: cylinderFamily{},
	KindCone:     coneFamily{},
}

// Lookup returns the family for kind.
func Lookup(kind Kind) (Family, error) {
	f, ok := families[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return f, nil
}

// InitialMarkers returns the canonical markers for kind.
func InitialMarkers(kind Kind) ([]mgl64.Vec3, error) {
	f, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	return f.InitialMarkers(), nil
}

// Build rebuilds the solid for kind from markers. An empty marker set is
// replaced by the canonical markers; the markers actually used are returned.
// The result never shares memory with markers.
func Build(kind Kind, color string, markers []mgl64.Vec3) (Solid, []mgl64.Vec3, error) {
	f, err := Lookup(kind)
	if err != nil {
		return Solid{}, nil, err
	}

	if len(markers) == 0 {
		markers = f.InitialMarkers()
	} else if len(markers) != f.MarkerCount() {
		return Solid{}, nil, fmt.Errorf("%w: %s needs %d, got %d", ErrMarkerCount, kind, f.MarkerCount(), len(markers))
	} else {
		markers = cloneVecs(markers)
	}

	mesh := f.BuildMesh(markers)
	return Solid{
		Kind:      kind,
		Color:     color,
		Mesh:      mesh,
		Wireframe: wireframe(mesh.Triangles),
	}, markers, nil
}

// Reproject applies kind's constraint to markers in place.
func Reproject(kind Kind, markers []mgl64.Vec3, moved int) error {
	f, err := Lookup(kind)
	if err != nil {
		return err
	}
	if len(markers) != f.MarkerCount() {
		return fmt.Errorf("%w: %s needs %d, got %d", ErrMarkerCount, kind, f.MarkerCount(), len(markers))
	}
	f.Reproject(markers, moved)
	return nil
}
