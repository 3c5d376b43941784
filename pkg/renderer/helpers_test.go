package renderer

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// constantSampler always returns the same value
type constantSampler struct {
	value float64
}

func (c constantSampler) Get1D() float64 { return c.value }
func (c constantSampler) Get2D() core.Vec2 {
	return core.NewVec2(c.value, c.value)
}
func (c constantSampler) Get3D() core.Vec3 {
	return core.NewVec3(c.value, c.value, c.value)
}

func vecNear(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// absorber swallows every ray
type absorber struct{}

func (absorber) Scatter(core.Ray, material.HitRecord, core.Sampler) (material.ScatterResult, bool) {
	return material.ScatterResult{}, false
}

// fixedScatter sends every ray off in one direction
type fixedScatter struct {
	direction   core.Vec3
	attenuation core.Color
}

func (f fixedScatter) Scatter(_ core.Ray, hit material.HitRecord, _ core.Sampler) (material.ScatterResult, bool) {
	return material.ScatterResult{
		Scattered:   core.NewRay(hit.Point, f.direction),
		Attenuation: f.attenuation,
	}, true
}
