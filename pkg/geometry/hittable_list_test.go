package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// closestByMin is the min-by-t formulation of the nearest hit search
func closestByMin(objects []Hittable, ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	var best *material.HitRecord
	for _, object := range objects {
		if hit, ok := object.Hit(ray, rayT); ok && (best == nil || hit.T < best.T) {
			best = hit
		}
	}
	return best, best != nil
}

func TestHittableList_Empty(t *testing.T) {
	list := NewHittableList()

	hit, isHit := list.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), defaultRayT)
	if isHit || hit != nil {
		t.Error("Empty list should never be hit")
	}
}

func TestHittableList_ReturnsNearest(t *testing.T) {
	near := material.NewLambertian(core.NewColor(1, 0, 0))
	far := material.NewLambertian(core.NewColor(0, 0, 1))

	nearSphere := NewSphere(core.NewVec3(0, 0, -2), 0.5, near)
	farSphere := NewSphere(core.NewVec3(0, 0, -6), 0.5, far)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	// Insertion order must not matter
	orders := map[string]*HittableList{
		"near first": NewHittableList(nearSphere, farSphere),
		"far first":  NewHittableList(farSphere, nearSphere),
	}

	for name, list := range orders {
		t.Run(name, func(t *testing.T) {
			hit, isHit := list.Hit(ray, defaultRayT)
			if !isHit {
				t.Fatal("Expected hit")
			}
			if hit.Material != near {
				t.Error("Expected the nearer sphere's material")
			}
			if math.Abs(hit.T-1.5) > 1e-9 {
				t.Errorf("Expected t=1.5, got %f", hit.T)
			}
		})
	}
}

func TestHittableList_MatchesMinByT(t *testing.T) {
	sampler := core.NewSeededSampler(2024)
	list := NewHittableList()

	// Non-overlapping spheres spread along -z
	for i := 0; i < 12; i++ {
		center := core.NewVec3(core.RandomFloat(sampler, -2, 2), core.RandomFloat(sampler, -2, 2), -3*float64(i+1))
		list.Add(NewSphere(center, core.RandomFloat(sampler, 0.3, 1.2), material.NewLambertian(core.NewColor(1, 1, 1))))
	}

	hits := 0
	for i := 0; i < 2000; i++ {
		direction := core.NewVec3(core.RandomFloat(sampler, -0.2, 0.2), core.RandomFloat(sampler, -0.2, 0.2), -1)
		ray := core.NewRay(core.NewVec3(0, 0, 0), direction)

		got, gotHit := list.Hit(ray, defaultRayT)
		want, wantHit := closestByMin(list.Objects(), ray, defaultRayT)

		if gotHit != wantHit {
			t.Fatalf("Hit mismatch for %v: list=%t min=%t", direction, gotHit, wantHit)
		}
		if gotHit {
			hits++
			if got.T != want.T || got.Point != want.Point {
				t.Fatalf("Nearest hit mismatch: list t=%f min t=%f", got.T, want.T)
			}
		}
	}

	if hits == 0 {
		t.Fatal("Test setup error: no rays hit any sphere")
	}
}

func TestHittableList_AddClear(t *testing.T) {
	list := NewHittableList(NewSphere(core.NewVec3(0, 0, -1), 0.5, nil))
	list.Add(NewSphere(core.NewVec3(0, 0, -3), 0.5, nil))

	if list.Len() != 2 {
		t.Fatalf("Expected 2 objects, got %d", list.Len())
	}

	list.Clear()
	if list.Len() != 0 {
		t.Fatalf("Expected empty list after Clear, got %d", list.Len())
	}
}

func TestHittableList_Nested(t *testing.T) {
	inner := NewHittableList(NewSphere(core.NewVec3(0, 0, -2), 0.5, nil))
	outer := NewHittableList(inner, NewSphere(core.NewVec3(0, 0, -5), 0.5, nil))

	hit, isHit := outer.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), defaultRayT)
	if !isHit || math.Abs(hit.T-1.5) > 1e-9 {
		t.Errorf("Expected nested sphere at t=1.5, got hit=%t", isHit)
	}
}
