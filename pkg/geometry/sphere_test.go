package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

var defaultRayT = core.NewInterval(0.001, math.Inf(1))

func vecNear(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name   string
		origin core.Vec3
		dir    core.Vec3
	}{
		{"parallel offset beyond radius", core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0)},
		{"perpendicular offset 1.01", core.NewVec3(1.01, 0, 5), core.NewVec3(0, 0, -1)},
		{"pointing away", core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(core.NewRay(tt.origin, tt.dir), defaultRayT)
			if isHit {
				t.Errorf("Expected miss, but got hit at t=%f", hit.T)
			}
		})
	}
}

func TestSphere_Hit_AimedAtCenter(t *testing.T) {
	center := core.NewVec3(1, -2, 3)
	radius := 0.75
	sphere := NewSphere(center, radius, nil)
	sampler := core.NewSeededSampler(99)

	for i := 0; i < 200; i++ {
		// Random origin outside the sphere, aimed at the center with a random scale
		offset := core.RandomUnitVector(sampler).Multiply(core.RandomFloat(sampler, 1.5, 20))
		origin := center.Add(offset)
		direction := center.Subtract(origin).Multiply(core.RandomFloat(sampler, 0.1, 3))
		ray := core.NewRay(origin, direction)

		hit, isHit := sphere.Hit(ray, defaultRayT)
		if !isHit {
			t.Fatalf("Ray from %v aimed at center missed", origin)
		}

		// t is measured in units of the direction length
		expectedT := (offset.Length() - radius) / direction.Length()
		if math.Abs(hit.T-expectedT) > 1e-9 {
			t.Fatalf("Expected t=%f, got t=%f", expectedT, hit.T)
		}

		expectedNormal := hit.Point.Subtract(center).Divide(radius)
		if !vecNear(hit.Normal, expectedNormal, 1e-9) {
			t.Fatalf("Expected normal %v, got %v", expectedNormal, hit.Normal)
		}
		if math.Abs(hit.Normal.Length()-1) > 1e-9 {
			t.Fatalf("Normal should be unit length, got %f", hit.Normal.Length())
		}
		if hit.Normal.Dot(direction) >= 0 {
			t.Fatalf("Normal %v should oppose ray direction %v", hit.Normal, direction)
		}
		if !hit.FrontFace {
			t.Fatal("Hit from outside should be a front face")
		}
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, defaultRayT)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if !vecNear(hit.Normal, tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	// Both roots (1 and 3) lie beyond the max bound
	if hit, isHit := sphere.Hit(ray, core.NewInterval(0.001, 0.5)); isHit {
		t.Errorf("Expected miss due to max bound, but got hit at t=%f", hit.T)
	}

	// Near root excluded, far root accepted
	hit, isHit := sphere.Hit(ray, core.NewInterval(1.5, 1000))
	if !isHit || math.Abs(hit.T-3) > 1e-9 {
		t.Errorf("Expected far root t=3, got hit=%t", isHit)
	}

	// Both roots excluded by the min bound
	if hit, isHit := sphere.Hit(ray, core.NewInterval(3.5, 1000.0)); isHit {
		t.Errorf("Expected miss due to min bound, but got hit at t=%f", hit.T)
	}

	// Surrounds is open: a root exactly on the bound is rejected
	if hit, isHit := sphere.Hit(ray, core.NewInterval(0.5, 1.0)); isHit {
		t.Errorf("Expected miss for root on the open upper bound, got t=%f", hit.T)
	}
}

func TestSphere_NegativeRadiusClamped(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), -2, nil)
	if sphere.Radius != 0 {
		t.Fatalf("Expected radius clamped to 0, got %f", sphere.Radius)
	}

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	if _, isHit := sphere.Hit(ray, defaultRayT); isHit {
		t.Error("Zero radius sphere should not be hit")
	}
}

func TestSphere_HitCarriesMaterial(t *testing.T) {
	mat := material.NewLambertian(core.NewColor(0.1, 0.2, 0.3))
	sphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, mat)

	hit, isHit := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), defaultRayT)
	if !isHit {
		t.Fatal("Expected hit")
	}
	if hit.Material != mat {
		t.Error("Hit record should reference the sphere's material")
	}
}
