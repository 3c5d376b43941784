package scene

import (
	"errors"
	"reflect"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

func spheres(t *testing.T, sc *Scene) []*geometry.Sphere {
	t.Helper()
	var out []*geometry.Sphere
	for _, obj := range sc.World.Objects() {
		s, ok := obj.(*geometry.Sphere)
		if !ok {
			t.Fatalf("Expected only spheres, got %T", obj)
		}
		out = append(out, s)
	}
	return out
}

func TestNames(t *testing.T) {
	expected := []string{"defocus", "materials", "weekend"}
	if got := Names(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestBuiltin_AllScenesHaveValidCameras(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			sc, err := Builtin(name, 42)
			if err != nil {
				t.Fatalf("Builtin(%q) failed: %v", name, err)
			}
			if sc.Name != name {
				t.Errorf("Expected scene name %q, got %q", name, sc.Name)
			}
			if sc.World.Len() == 0 {
				t.Error("Scene has no objects")
			}
			if _, err := renderer.NewCamera(sc.Camera); err != nil {
				t.Errorf("Scene camera is invalid: %v", err)
			}
		})
	}
}

func TestBuiltin_Unknown(t *testing.T) {
	if _, err := Builtin("cornell", 1); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
	if _, err := Load("cornell", 1); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected Load to report ErrUnknownScene, got %v", err)
	}
}

func TestWeekendScene_Layout(t *testing.T) {
	all := spheres(t, NewWeekendScene(7))

	// Ground, small spheres, three feature spheres
	if len(all) < 4 || len(all) > 1+22*22+3 {
		t.Fatalf("Unexpected sphere count %d", len(all))
	}
	if all[0].Radius != 1000 || all[0].Center != core.NewVec3(0, -1000, 0) {
		t.Errorf("First sphere should be the ground, got %+v", all[0])
	}

	kinds := map[string]int{}
	clearance := core.NewVec3(4, 0.2, 0)
	for _, s := range all[1 : len(all)-3] {
		if s.Radius != 0.2 || s.Center.Y != 0.2 {
			t.Fatalf("Small sphere has unexpected placement %+v", s)
		}
		if s.Center.Subtract(clearance).Length() <= 0.9 {
			t.Fatalf("Small sphere at %v overlaps the metal feature sphere", s.Center)
		}
		switch s.Material.(type) {
		case *material.Lambertian:
			kinds["lambertian"]++
		case *material.Metal:
			kinds["metal"]++
		case *material.Dielectric:
			kinds["dielectric"]++
		}
	}
	for _, kind := range []string{"lambertian", "metal", "dielectric"} {
		if kinds[kind] == 0 {
			t.Errorf("Expected at least one %s small sphere, got %v", kind, kinds)
		}
	}
	if kinds["lambertian"] < kinds["metal"] || kinds["metal"] < kinds["dielectric"] {
		t.Errorf("Expected diffuse > metal > glass frequency, got %v", kinds)
	}

	glass, ok := all[len(all)-3].Material.(*material.Dielectric)
	if !ok || glass.RefractiveIndex != 1.5 {
		t.Errorf("Expected central glass feature sphere, got %+v", all[len(all)-3])
	}
}

func TestWeekendScene_Seeded(t *testing.T) {
	a := spheres(t, NewWeekendScene(1))
	b := spheres(t, NewWeekendScene(1))
	c := spheres(t, NewWeekendScene(2))

	if len(a) != len(b) {
		t.Fatalf("Same seed produced %d and %d spheres", len(a), len(b))
	}
	for i := range a {
		if a[i].Center != b[i].Center {
			t.Fatalf("Same seed differs at sphere %d: %v vs %v", i, a[i].Center, b[i].Center)
		}
	}

	differs := len(a) != len(c)
	for i := 0; !differs && i < len(a); i++ {
		differs = a[i].Center != c[i].Center
	}
	if !differs {
		t.Error("Different seeds should place spheres differently")
	}
}

func TestMaterialsScene(t *testing.T) {
	all := spheres(t, NewMaterialsScene(0))
	if len(all) != 5 {
		t.Fatalf("Expected 5 spheres, got %d", len(all))
	}

	bubble, ok := all[3].Material.(*material.Dielectric)
	if !ok || all[3].Radius != 0.4 || bubble.RefractiveIndex != 1.0/1.5 {
		t.Errorf("Expected an air bubble of radius 0.4 inside the glass sphere, got %+v", all[3])
	}
	if all[3].Center != all[2].Center {
		t.Error("Bubble should share the glass sphere center")
	}
}

func TestDefocusScene_Camera(t *testing.T) {
	sc := NewDefocusScene(0)

	if sc.Camera.LookFrom != core.NewVec3(-2, 2, 1) || sc.Camera.LookAt != core.NewVec3(0, 0, -1) {
		t.Errorf("Unexpected camera pose %v -> %v", sc.Camera.LookFrom, sc.Camera.LookAt)
	}
	if sc.Camera.DefocusAngle != 10 || sc.Camera.FocusDist != 3.4 || sc.Camera.VFov != 20 {
		t.Errorf("Unexpected lens settings %+v", sc.Camera)
	}
	if sc.World.Len() != 5 {
		t.Errorf("Expected the materials world, got %d objects", sc.World.Len())
	}
}
