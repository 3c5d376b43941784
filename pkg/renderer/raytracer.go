package renderer

import (
	"fmt"
	"image"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
)

// MinHitDistance is the lower bound of the hit interval for every traced ray.
// Scattered rays start on a surface and must not re-hit it at t≈0.
const MinHitDistance = 0.001

var (
	skyHorizon = core.NewColor(1.0, 1.0, 1.0)
	skyZenith  = core.NewColor(0.5, 0.7, 1.0)
)

// Mode selects the per-ray shading function
type Mode int

const (
	// ModePath is full path tracing with material scattering
	ModePath Mode = iota
	// ModeNormals shades hits by their surface normal (debug view)
	ModeNormals
)

func (m Mode) String() string {
	switch m {
	case ModePath:
		return "path"
	case ModeNormals:
		return "normals"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name to a Mode
func ParseMode(name string) (Mode, error) {
	switch name {
	case "path", "":
		return ModePath, nil
	case "normals":
		return ModeNormals, nil
	default:
		return ModePath, fmt.Errorf("unknown render mode %q (want path or normals)", name)
	}
}

func hitInterval() core.Interval {
	return core.NewInterval(MinHitDistance, math.Inf(1))
}

// SkyColor returns the vertical white to blue background gradient for a ray
func SkyColor(r core.Ray) core.Color {
	unitDirection := r.Direction.UnitVector()
	a := 0.5 * (unitDirection.Y + 1.0)
	return skyHorizon.Multiply(1.0 - a).Add(skyZenith.Multiply(a))
}

// RayColor estimates the radiance arriving along r with at most depth bounces.
// Each scatter multiplies the path throughput by the material attenuation; an
// absorbed path or an exhausted bounce budget contributes black, and a path
// that escapes the world picks up the sky color.
func RayColor(r core.Ray, world geometry.Hittable, depth int, sampler core.Sampler) core.Color {
	throughput := core.NewColor(1, 1, 1)
	rayT := hitInterval()

	for ; depth > 0; depth-- {
		hit, isHit := world.Hit(r, rayT)
		if !isHit {
			return throughput.MultiplyVec(SkyColor(r))
		}
		if hit.Material == nil {
			return core.Color{}
		}

		scatter, didScatter := hit.Material.Scatter(r, *hit, sampler)
		if !didScatter {
			return core.Color{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		r = scatter.Scattered
	}

	return core.Color{}
}

// ShadeNormals maps the surface normal of the nearest hit to a color, or
// returns the sky for a miss
func ShadeNormals(r core.Ray, world geometry.Hittable) core.Color {
	hit, isHit := world.Hit(r, hitInterval())
	if !isHit {
		return SkyColor(r)
	}
	return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
}

// Raytracer renders pixels of a world through a camera. The world and camera
// are only read, so one Raytracer is shared by all workers.
type Raytracer struct {
	world  geometry.Hittable
	camera *Camera
	mode   Mode
}

// NewRaytracer creates a raytracer for the given world and camera
func NewRaytracer(world geometry.Hittable, camera *Camera, mode Mode) *Raytracer {
	return &Raytracer{
		world:  world,
		camera: camera,
		mode:   mode,
	}
}

// SamplePixel traces SamplesPerPixel jittered rays through pixel (i, j)
func (rt *Raytracer) SamplePixel(i, j int, sampler core.Sampler) PixelStats {
	config := rt.camera.Config()

	var ps PixelStats
	for s := 0; s < config.SamplesPerPixel; s++ {
		ray := rt.camera.GetRay(i, j, sampler)
		ps.AddSample(rt.shade(ray, config.MaxDepth, sampler))
	}
	return ps
}

func (rt *Raytracer) shade(ray core.Ray, depth int, sampler core.Sampler) core.Color {
	if rt.mode == ModeNormals {
		return ShadeNormals(ray, rt.world)
	}
	return RayColor(ray, rt.world, depth, sampler)
}

// RenderBounds renders the pixels within bounds into frame using sampler.
// Concurrent calls must use non-overlapping bounds.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, frame *Frame, sampler core.Sampler) RenderStats {
	stats := RenderStats{
		TotalPixels:     bounds.Dx() * bounds.Dy(),
		SamplesPerPixel: rt.camera.Config().SamplesPerPixel,
	}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ps := rt.SamplePixel(i, j, sampler)
			frame.Set(i, j, ps.GetColor())
			stats.TotalSamples += ps.SampleCount
		}
	}

	return stats
}
