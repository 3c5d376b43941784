package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// ErrUnknownScene is returned for a scene name that is neither built in nor a file
var ErrUnknownScene = errors.New("unknown scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Name   string
	World  *geometry.HittableList // Objects in the scene
	Camera renderer.CameraConfig  // Fully resolved camera configuration
}

// builder constructs a built-in scene; random placement is derived from seed
type builder func(seed int64) *Scene

var builtins = map[string]struct {
	build       builder
	description string
}{
	"weekend":   {NewWeekendScene, "Random sphere field with three feature spheres"},
	"materials": {NewMaterialsScene, "Diffuse, glass bubble and fuzzed metal spheres"},
	"defocus":   {NewDefocusScene, "Materials scene with a shallow depth of field"},
}

// Names returns the built-in scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin constructs the named built-in scene
func Builtin(name string, seed int64) (*Scene, error) {
	entry, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
	}
	return entry.build(seed), nil
}

// Load resolves a built-in scene name or a path to a JSON scene file
func Load(nameOrPath string, seed int64) (*Scene, error) {
	if strings.EqualFold(filepath.Ext(nameOrPath), ".json") {
		return LoadFile(nameOrPath)
	}
	return Builtin(nameOrPath, seed)
}

// newScene applies the scene camera on top of the renderer defaults
func newScene(name string, world *geometry.HittableList, camera renderer.CameraConfig) *Scene {
	return &Scene{
		Name:   name,
		World:  world,
		Camera: renderer.MergeCameraConfig(renderer.DefaultCameraConfig(), camera),
	}
}
