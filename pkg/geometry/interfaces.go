package geometry

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// Hittable interface for objects that can be hit by rays.
// Implementations are read-only during a render and shared across workers.
type Hittable interface {
	// Hit returns the nearest intersection with t strictly inside rayT
	Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool)
}
