// Package shape rebuilds renderable solids from ordered corner markers and
// keeps each shape family's geometric constraints after a marker moves.
package shape

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a shape kind is not one of the supported families.
var ErrUnknownKind = errors.New("unknown shape kind")

// Kind identifies a parametric shape family.
type Kind string

const (
	// KindCube is a rigid hexahedron driven by its 8 corners.
	KindCube Kind = "cube"
	// KindPyramid is a rigid square pyramid: 4 base corners plus an apex.
	KindPyramid Kind = "pyramid"
	// KindSphere is driven by 8 control points kept on a common sphere.
	KindSphere Kind = "sphere"
	// KindCylinder is a frustum driven by two rings of 4 markers.
	KindCylinder Kind = "cylinder"
	// KindCone is a base ring of 4 markers plus an apex.
	KindCone Kind = "cone"
)

// kinds is the shape selector's cycle order.
var kinds = []Kind{KindCube, KindPyramid, KindSphere, KindCylinder, KindCone}

// Kinds returns all supported kinds in selector order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind converts a name such as "Cube" into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Next returns the kind following k in selector order, wrapping around.
// Unknown kinds map to the first kind.
func (k Kind) Next() Kind {
	for i, known := range kinds {
		if k == known {
			return kinds[(i+1)%len(kinds)]
		}
	}
	return kinds[0]
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}
