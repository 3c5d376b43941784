package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// newMaterialsWorld builds a ground, a diffuse center sphere, a hollow glass
// bubble on the left and a fuzzed metal sphere on the right
func newMaterialsWorld() *geometry.HittableList {
	ground := material.NewLambertian(core.NewColor(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewColor(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.50)
	bubble := material.NewDielectric(1.00 / 1.50) // Air inside glass
	metal := material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 1.0)

	return geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0.0, -100.5, -1.0), 100.0, ground),
		geometry.NewSphere(core.NewVec3(0.0, 0.0, -1.2), 0.5, center),
		geometry.NewSphere(core.NewVec3(-1.0, 0.0, -1.0), 0.5, glass),
		geometry.NewSphere(core.NewVec3(-1.0, 0.0, -1.0), 0.4, bubble),
		geometry.NewSphere(core.NewVec3(1.0, 0.0, -1.0), 0.5, metal),
	)
}

// NewMaterialsScene shows one sphere of every material from the front
func NewMaterialsScene(int64) *Scene {
	return newScene("materials", newMaterialsWorld(), renderer.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		VUp:             core.NewVec3(0, 1, 0),
	})
}

// NewDefocusScene views the materials scene from above and to the left with
// a wide aperture focused on the center sphere
func NewDefocusScene(int64) *Scene {
	return newScene("defocus", newMaterialsWorld(), renderer.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		VFov:            20,
		LookFrom:        core.NewVec3(-2, 2, 1),
		LookAt:          core.NewVec3(0, 0, -1),
		VUp:             core.NewVec3(0, 1, 0),
		DefocusAngle:    10.0,
		FocusDist:       3.4,
	})
}
