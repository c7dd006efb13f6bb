package scene

import (
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/handsculpt/internal/gesture"
	"github.com/ayusman/handsculpt/internal/shape"
)

var testViewport = gesture.Viewport{Width: 1280, Height: 720}

func near(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() < eps
}

func TestCamera_ProjectUnproject(t *testing.T) {
	c := DefaultCamera(testViewport)

	t.Run("origin projects to viewport centre", func(t *testing.T) {
		x, y, _ := c.Project(mgl64.Vec3{})
		if math.Abs(x-640) > 1e-6 || math.Abs(y-360) > 1e-6 {
			t.Errorf("expected (640, 360), got (%f, %f)", x, y)
		}
	})

	t.Run("up is up on screen", func(t *testing.T) {
		_, y, _ := c.Project(mgl64.Vec3{0, 1, 0})
		if y >= 360 {
			t.Errorf("expected +Y above centre, got y=%f", y)
		}
		x, _, _ := c.Project(mgl64.Vec3{1, 0, 0})
		if x <= 640 {
			t.Errorf("expected +X right of centre, got x=%f", x)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		points := []mgl64.Vec3{{1, 1, -1}, {-1, 0.5, 1}, {0.3, -0.7, 0.2}}
		for _, p := range points {
			x, y, d := c.Project(p)
			back := c.Unproject(x, y, d)
			if !near(back, p, 1e-6) {
				t.Errorf("round trip of %v gave %v", p, back)
			}
		}
	})

	t.Run("ray through centre points at target", func(t *testing.T) {
		r := c.Ray(640, 360)
		if !near(r.Dir, mgl64.Vec3{0, 0, -1}, 1e-6) {
			t.Errorf("expected -Z direction, got %v", r.Dir)
		}
		if !near(r.Origin, c.Eye, 1e-12) {
			t.Errorf("expected ray from eye, got %v", r.Origin)
		}
	})
}

func TestCamera_Orbit(t *testing.T) {
	t.Run("keeps distance", func(t *testing.T) {
		c := DefaultCamera(testViewport)
		c.Orbit(100, -40, DefaultOrbitSensitivity)
		if math.Abs(c.Eye.Len()-DefaultDistance) > 1e-9 {
			t.Errorf("expected distance %f, got %f", DefaultDistance, c.Eye.Len())
		}
	})

	t.Run("hand right swings camera left", func(t *testing.T) {
		c := DefaultCamera(testViewport)
		c.Orbit(100, 0, DefaultOrbitSensitivity)
		az, _ := c.Angles()
		if math.Abs(az+0.5) > 1e-9 {
			t.Errorf("expected azimuth -0.5, got %f", az)
		}
	})

	t.Run("elevation is clamped", func(t *testing.T) {
		c := DefaultCamera(testViewport)
		c.Orbit(0, 10000, DefaultOrbitSensitivity)
		_, el := c.Angles()
		if math.Abs(el-elevationLimit) > 1e-9 {
			t.Errorf("expected elevation %f, got %f", elevationLimit, el)
		}
		c.Orbit(0, -100000, DefaultOrbitSensitivity)
		_, el = c.Angles()
		if math.Abs(el+elevationLimit) > 1e-9 {
			t.Errorf("expected elevation %f, got %f", -elevationLimit, el)
		}
	})
}

func TestRay_Intersections(t *testing.T) {
	r := Ray{Origin: mgl64.Vec3{0, 0, 5}, Dir: mgl64.Vec3{0, 0, -1}}

	t.Run("plane", func(t *testing.T) {
		d, ok := r.IntersectPlane(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 0, 1})
		if !ok || math.Abs(d-4) > 1e-12 {
			t.Errorf("expected hit at 4, got %f %v", d, ok)
		}
		if _, ok := r.IntersectPlane(mgl64.Vec3{0, 0, 6}, mgl64.Vec3{0, 0, 1}); ok {
			t.Error("expected plane behind origin to miss")
		}
		if _, ok := r.IntersectPlane(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}); ok {
			t.Error("expected parallel plane to miss")
		}
	})

	t.Run("triangle both faces", func(t *testing.T) {
		a, b, c := mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{1, -1, 0}, mgl64.Vec3{0, 1, 0}
		if d, ok := r.IntersectTriangle(a, b, c); !ok || math.Abs(d-5) > 1e-12 {
			t.Errorf("expected hit at 5, got %f %v", d, ok)
		}
		if _, ok := r.IntersectTriangle(a, c, b); !ok {
			t.Error("expected back face hit")
		}
		miss := Ray{Origin: mgl64.Vec3{3, 3, 5}, Dir: mgl64.Vec3{0, 0, -1}}
		if _, ok := miss.IntersectTriangle(a, b, c); ok {
			t.Error("expected miss outside the triangle")
		}
	})
}

func TestScene_Placed(t *testing.T) {
	s := New(DefaultCamera(testViewport))

	markers, _ := shape.InitialMarkers(shape.KindCube)
	for i := range markers {
		markers[i] = markers[i].Add(mgl64.Vec3{2, 0, 0})
	}
	solid, _, err := shape.Build(shape.KindCube, "#ff00ff", markers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := s.Add(solid)
	if p.ID == "" {
		t.Fatal("expected an ID")
	}
	if !near(p.Position, mgl64.Vec3{2, 0, 0}, 1e-9) {
		t.Errorf("expected position (2,0,0), got %v", p.Position)
	}
	if !near(p.Vertex(0), mgl64.Vec3{1, -1, -1}, 1e-9) {
		t.Errorf("expected world vertex unchanged, got %v", p.Vertex(0))
	}

	t.Run("intersect", func(t *testing.T) {
		ray := Ray{Origin: mgl64.Vec3{2, 0, 5}, Dir: mgl64.Vec3{0, 0, -1}}
		hit, ok := s.Intersect(ray)
		if !ok || hit.ID != p.ID {
			t.Fatalf("expected hit on %s, got %+v", p.ID, hit)
		}
		if math.Abs(hit.Distance-4) > 1e-9 {
			t.Errorf("expected nearest face at 4, got %f", hit.Distance)
		}
		if _, ok := s.Intersect(Ray{Origin: mgl64.Vec3{-2, 0, 5}, Dir: mgl64.Vec3{0, 0, -1}}); ok {
			t.Error("expected miss")
		}
	})

	t.Run("move", func(t *testing.T) {
		if !s.Move(p.ID, mgl64.Vec3{0, 1, 0}) {
			t.Fatal("expected move to succeed")
		}
		got, _ := s.Get(p.ID)
		if got.Position != (mgl64.Vec3{0, 1, 0}) {
			t.Errorf("expected moved position, got %v", got.Position)
		}
		if s.Move("missing", mgl64.Vec3{}) {
			t.Error("expected move of unknown id to fail")
		}
	})

	t.Run("copies", func(t *testing.T) {
		list := s.Placed()
		list[0].Solid.Mesh.Vertices[0] = mgl64.Vec3{99, 99, 99}
		again, _ := s.Get(p.ID)
		if again.Solid.Mesh.Vertices[0].X() == 99 {
			t.Error("Placed returned shared mesh memory")
		}
	})

	t.Run("remove", func(t *testing.T) {
		if !s.Remove(p.ID) {
			t.Fatal("expected remove to succeed")
		}
		if s.Len() != 0 {
			t.Errorf("expected empty scene, got %d", s.Len())
		}
		if s.Remove(p.ID) {
			t.Error("expected second remove to fail")
		}
	})
}

func TestScene_View(t *testing.T) {
	s := New(DefaultCamera(testViewport))
	if s.HasContent() || s.View().HasContent() {
		t.Fatal("expected empty scene to have no content")
	}

	solid, markers, _ := shape.Build(shape.KindPyramid, "#00ff00", nil)
	s.SetEditing(solid, markers)

	v := s.View()
	if v.Editing == nil || v.Editing.Kind != shape.KindPyramid {
		t.Fatalf("expected editing pyramid, got %+v", v.Editing)
	}
	if len(v.Markers) != 5 {
		t.Errorf("expected 5 markers, got %d", len(v.Markers))
	}
	if !s.HasContent() {
		t.Error("expected content with an editing solid")
	}

	s.ClearEditing()
	if _, ok := s.Editing(); ok {
		t.Error("expected no editing solid after clear")
	}
}

func TestScene_ConcurrentAccess(t *testing.T) {
	s := New(DefaultCamera(testViewport))
	solid, markers, _ := shape.Build(shape.KindCube, "#fff", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.SetEditing(solid, markers)
				p := s.Add(solid)
				s.Orbit(1, 1, DefaultOrbitSensitivity)
				_ = s.View()
				s.Remove(p.ID)
			}
		}()
	}
	wg.Wait()

	if s.Len() != 0 {
		t.Errorf("expected all placed solids removed, got %d", s.Len())
	}
}
