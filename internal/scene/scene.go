package scene

import (
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/ayusman/handsculpt/internal/gesture"
	"github.com/ayusman/handsculpt/internal/shape"
)

// Placed is a committed solid. Its mesh is centred on the local origin and
// Position moves it into the world.
type Placed struct {
	ID        string      `json:"id"`
	Solid     shape.Solid `json:"solid"`
	Position  mgl64.Vec3  `json:"position"`
	CreatedAt time.Time   `json:"created_at"`
}

// Vertex returns mesh vertex i in world space.
func (p Placed) Vertex(i int) mgl64.Vec3 {
	return p.Solid.Mesh.Vertex(i).Add(p.Position)
}

// Hit is a ray intersection with a placed solid.
type Hit struct {
	ID       string
	Distance float64
	Point    mgl64.Vec3
}

// View is a consistent copy of everything a renderer needs.
type View struct {
	Camera  Camera       `json:"camera"`
	Editing *shape.Solid `json:"editing,omitempty"`
	Markers []mgl64.Vec3 `json:"markers,omitempty"`
	Placed  []Placed     `json:"placed"`
}

// HasContent reports whether the view has anything besides markers to draw.
func (v View) HasContent() bool {
	return v.Editing != nil || len(v.Placed) > 0
}

// Scene is the retained set of solids plus the camera. It is safe for
// concurrent use; every accessor returns copies.
type Scene struct {
	mu      sync.RWMutex
	camera  Camera
	editing *shape.Solid
	markers []mgl64.Vec3
	placed  []*Placed
}

// New creates an empty scene viewed through camera.
func New(camera Camera) *Scene {
	return &Scene{camera: camera}
}

// SetEditing swaps in the solid under construction and its marker positions.
func (s *Scene) SetEditing(solid shape.Solid, markers []mgl64.Vec3) {
	solid = solid.Clone()
	m := make([]mgl64.Vec3, len(markers))
	copy(m, markers)

	s.mu.Lock()
	s.editing = &solid
	s.markers = m
	s.mu.Unlock()
}

// ClearEditing removes the solid under construction.
func (s *Scene) ClearEditing() {
	s.mu.Lock()
	s.editing = nil
	s.markers = nil
	s.mu.Unlock()
}

// Editing returns the solid under construction.
func (s *Scene) Editing() (shape.Solid, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.editing == nil {
		return shape.Solid{}, false
	}
	return s.editing.Clone(), true
}

// Add places solid in the world. The stored mesh is recentred on its bounds
// so that Position is the solid's visual centre.
func (s *Scene) Add(solid shape.Solid) Placed {
	solid = solid.Clone()
	mesh, center := solid.Mesh.Recentered()
	solid.Mesh = mesh

	p := &Placed{
		ID:        uuid.New().String(),
		Solid:     solid,
		Position:  center,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.placed = append(s.placed, p)
	s.mu.Unlock()
	return clonePlaced(p)
}

// Remove deletes a placed solid. It reports false when id is unknown.
func (s *Scene) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.placed {
		if p.ID == id {
			s.placed = append(s.placed[:i], s.placed[i+1:]...)
			return true
		}
	}
	return false
}

// Move sets the world position of a placed solid.
func (s *Scene) Move(id string, pos mgl64.Vec3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.placed {
		if p.ID == id {
			p.Position = pos
			return true
		}
	}
	return false
}

// Get returns the placed solid with id.
func (s *Scene) Get(id string) (Placed, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.placed {
		if p.ID == id {
			return clonePlaced(p), true
		}
	}
	return Placed{}, false
}

// Placed returns the placed solids in insertion order.
func (s *Scene) Placed() []Placed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Placed, len(s.placed))
	for i, p := range s.placed {
		out[i] = clonePlaced(p)
	}
	return out
}

// Len returns the number of placed solids.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.placed)
}

// Clear removes every placed solid.
func (s *Scene) Clear() {
	s.mu.Lock()
	s.placed = nil
	s.mu.Unlock()
}

// Intersect returns the nearest placed solid hit by ray.
func (s *Scene) Intersect(ray Ray) (Hit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := Hit{Distance: math.Inf(1)}
	for _, p := range s.placed {
		for _, tri := range p.Solid.Mesh.Triangles {
			t, ok := ray.IntersectTriangle(p.Vertex(tri[0]), p.Vertex(tri[1]), p.Vertex(tri[2]))
			if ok && t < best.Distance {
				best = Hit{ID: p.ID, Distance: t, Point: ray.At(t)}
			}
		}
	}
	if best.ID == "" {
		return Hit{}, false
	}
	return best, true
}

// HasContent reports whether there is anything to export.
func (s *Scene) HasContent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editing != nil || len(s.placed) > 0
}

// Camera returns a copy of the camera.
func (s *Scene) Camera() Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

// SetCamera replaces the camera.
func (s *Scene) SetCamera(c Camera) {
	s.mu.Lock()
	s.camera = c
	s.mu.Unlock()
}

// SetViewport resizes the camera's viewport.
func (s *Scene) SetViewport(vp gesture.Viewport) {
	s.mu.Lock()
	s.camera.Viewport = vp
	s.mu.Unlock()
}

// Orbit rotates the camera around its target.
func (s *Scene) Orbit(dx, dy, sensitivity float64) {
	s.mu.Lock()
	s.camera.Orbit(dx, dy, sensitivity)
	s.mu.Unlock()
}

// View returns a snapshot for rendering.
func (s *Scene) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{Camera: s.camera, Placed: make([]Placed, len(s.placed))}
	if s.editing != nil {
		e := s.editing.Clone()
		v.Editing = &e
		v.Markers = make([]mgl64.Vec3, len(s.markers))
		copy(v.Markers, s.markers)
	}
	for i, p := range s.placed {
		v.Placed[i] = clonePlaced(p)
	}
	return v
}

func clonePlaced(p *Placed) Placed {
	out := *p
	out.Solid = p.Solid.Clone()
	return out
}
