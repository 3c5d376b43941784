package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// ErrUnknownMaterial is returned when a sphere references an undefined material
var ErrUnknownMaterial = errors.New("unknown material")

// FileError reports a scene file that could not be read or parsed
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("scene file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Vec is a JSON [x, y, z] triple
type Vec [3]float64

func (v Vec) toVec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// FileCamera holds camera overrides; zero fields keep the renderer defaults.
// MaxDepth is a pointer so an explicit 0 is kept.
type FileCamera struct {
	AspectRatio     float64 `json:"aspectRatio,omitempty"`
	ImageWidth      int     `json:"imageWidth,omitempty"`
	ImageHeight     int     `json:"imageHeight,omitempty"`
	SamplesPerPixel int     `json:"samplesPerPixel,omitempty"`
	MaxDepth        *int    `json:"maxDepth,omitempty"`
	VFov            float64 `json:"vfov,omitempty"`
	LookFrom        Vec     `json:"lookFrom"`
	LookAt          Vec     `json:"lookAt"`
	VUp             Vec     `json:"vup"`
	DefocusAngle    float64 `json:"defocusAngle,omitempty"`
	FocusDist       float64 `json:"focusDist,omitempty"`
}

// FileMaterial describes one named material
type FileMaterial struct {
	Type   string  `json:"type"` // lambertian, metal or dielectric
	Albedo Vec     `json:"albedo"`
	Fuzz   float64 `json:"fuzz,omitempty"`
	IOR    float64 `json:"ior,omitempty"`
}

// FileSphere places a sphere with a material referenced by name
type FileSphere struct {
	Center   Vec     `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// File is the JSON scene description
type File struct {
	Name        string                  `json:"name,omitempty"`
	Description string                  `json:"description,omitempty"`
	Camera      FileCamera              `json:"camera"`
	Materials   map[string]FileMaterial `json:"materials"`
	Spheres     []FileSphere            `json:"spheres"`
}

// Config converts the overrides to a camera configuration
func (c FileCamera) Config() renderer.CameraConfig {
	var maxDepth int
	if c.MaxDepth != nil {
		maxDepth = *c.MaxDepth
	}
	return renderer.CameraConfig{
		AspectRatio:     c.AspectRatio,
		ImageWidth:      c.ImageWidth,
		ImageHeight:     c.ImageHeight,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        maxDepth,
		VFov:            c.VFov,
		LookFrom:        c.LookFrom.toVec3(),
		LookAt:          c.LookAt.toVec3(),
		VUp:             c.VUp.toVec3(),
		DefocusAngle:    c.DefocusAngle,
		FocusDist:       c.FocusDist,
	}
}

// Build validates and constructs the runtime material
func (m FileMaterial) Build() (material.Material, error) {
	switch strings.ToLower(m.Type) {
	case "lambertian":
		return material.NewLambertian(m.Albedo.toVec3()), nil
	case "metal":
		return material.NewMetal(m.Albedo.toVec3(), m.Fuzz), nil
	case "dielectric":
		if !(m.IOR > 0) {
			return nil, fmt.Errorf("dielectric ior must be > 0, got %g", m.IOR)
		}
		return material.NewDielectric(m.IOR), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", m.Type)
	}
}

// Build resolves material references and constructs the scene. Spheres that
// name the same material share one instance.
func (f File) Build() (*Scene, error) {
	materials := make(map[string]material.Material, len(f.Materials))
	for name, m := range f.Materials {
		built, err := m.Build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = built
	}

	world := geometry.NewHittableList()
	for i, s := range f.Spheres {
		mat, ok := materials[s.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: %w %q", i, ErrUnknownMaterial, s.Material)
		}
		world.Add(geometry.NewSphere(s.Center.toVec3(), s.Radius, mat))
	}

	sc := newScene(f.Name, world, f.Camera.Config())
	if f.Camera.MaxDepth != nil {
		sc.Camera.MaxDepth = *f.Camera.MaxDepth
	}
	if err := sc.Camera.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Parse decodes a JSON scene description
func Parse(r io.Reader) (*Scene, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid scene json: %w", err)
	}
	return f.Build()
}

// LoadFile reads and parses a JSON scene file. The scene is named after the
// file when the description does not set a name.
func LoadFile(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer file.Close()

	sc, err := Parse(file)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	core.Logger().Debug("loaded scene file", "path", path, "objects", sc.World.Len())
	return sc, nil
}
