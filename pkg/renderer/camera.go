package renderer

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// CameraConfig contains all parameters needed to construct a camera
type CameraConfig struct {
	AspectRatio     float64   // Width / height; 0 derives it from an explicit ImageHeight
	ImageWidth      int       // Rendered image width in pixels
	ImageHeight     int       // Rendered image height in pixels; 0 derives it from AspectRatio
	SamplesPerPixel int       // Jittered rays per pixel
	MaxDepth        int       // Maximum ray bounces
	VFov            float64   // Vertical field of view in degrees
	LookFrom        core.Vec3 // Camera position
	LookAt          core.Vec3 // Point the camera looks at
	VUp             core.Vec3 // Camera-relative up direction
	DefocusAngle    float64   // Aperture cone angle in degrees, 0 for a pinhole
	FocusDist       float64   // Distance from LookFrom to the plane of perfect focus
}

// DefaultCameraConfig returns the configuration used when nothing is overridden
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     1.0,
		ImageWidth:      100,
		ImageHeight:     0,
		SamplesPerPixel: 10,
		MaxDepth:        10,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		VUp:             core.NewVec3(0, 1, 0),
		DefocusAngle:    0,
		FocusDist:       10,
	}
}

// WithImageWidth returns c resized to width, keeping its aspect ratio. The
// height is derived again from the aspect ratio.
func (c CameraConfig) WithImageWidth(width int) CameraConfig {
	if c.AspectRatio == 0 && c.ImageWidth > 0 && c.ImageHeight > 0 {
		c.AspectRatio = float64(c.ImageWidth) / float64(c.ImageHeight)
	}
	c.ImageWidth = width
	c.ImageHeight = 0
	return c
}

// MergeCameraConfig returns base with every non-zero field of override applied.
// An override height without an aspect ratio clears the base aspect ratio.
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base

	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.ImageWidth != 0 {
		result.ImageWidth = override.ImageWidth
	}
	if override.ImageHeight != 0 {
		result.ImageHeight = override.ImageHeight
		if override.AspectRatio == 0 {
			// An explicit width and height define the shape on their own
			result.AspectRatio = 0
		}
	}
	if override.SamplesPerPixel != 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.LookFrom != (core.Vec3{}) {
		result.LookFrom = override.LookFrom
	}
	if override.LookAt != (core.Vec3{}) {
		result.LookAt = override.LookAt
	}
	if override.VUp != (core.Vec3{}) {
		result.VUp = override.VUp
	}
	if override.DefocusAngle != 0 {
		result.DefocusAngle = override.DefocusAngle
	}
	if override.FocusDist != 0 {
		result.FocusDist = override.FocusDist
	}

	return result
}

// ImageSize resolves the output dimensions, deriving whichever of height or
// aspect ratio was left at zero
func (c CameraConfig) ImageSize() (width, height int, err error) {
	if c.ImageWidth <= 0 {
		return 0, 0, configErrorf("ImageWidth", "must be positive, got %d", c.ImageWidth)
	}
	if c.ImageHeight < 0 {
		return 0, 0, configErrorf("ImageHeight", "must not be negative, got %d", c.ImageHeight)
	}

	if c.ImageHeight == 0 {
		if !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0) {
			return 0, 0, configErrorf("AspectRatio", "must be positive and finite when ImageHeight is not set, got %g", c.AspectRatio)
		}
		return c.ImageWidth, max(1, int(float64(c.ImageWidth)/c.AspectRatio)), nil
	}

	if c.AspectRatio == 0 {
		return c.ImageWidth, c.ImageHeight, nil
	}
	if !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0) {
		return 0, 0, configErrorf("AspectRatio", "must be positive and finite, got %g", c.AspectRatio)
	}
	if derived := max(1, int(float64(c.ImageWidth)/c.AspectRatio)); derived != c.ImageHeight {
		return 0, 0, configErrorf("ImageHeight", "%d does not match width %d at aspect ratio %g (expected %d)",
			c.ImageHeight, c.ImageWidth, c.AspectRatio, derived)
	}
	return c.ImageWidth, c.ImageHeight, nil
}

// Validate checks every field and returns a *ConfigError for the first failure
func (c CameraConfig) Validate() error {
	if _, _, err := c.ImageSize(); err != nil {
		return err
	}
	if c.SamplesPerPixel <= 0 {
		return configErrorf("SamplesPerPixel", "must be positive, got %d", c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		return configErrorf("MaxDepth", "must not be negative, got %d", c.MaxDepth)
	}
	if !(c.VFov > 0 && c.VFov < 180) {
		return configErrorf("VFov", "must be in (0, 180) degrees, got %g", c.VFov)
	}
	if !(c.DefocusAngle >= 0 && c.DefocusAngle < 180) {
		return configErrorf("DefocusAngle", "must be in [0, 180) degrees, got %g", c.DefocusAngle)
	}
	if !(c.FocusDist > 0) || math.IsInf(c.FocusDist, 0) {
		return configErrorf("FocusDist", "must be positive and finite, got %g", c.FocusDist)
	}

	view := c.LookFrom.Subtract(c.LookAt)
	if view.LengthSquared() == 0 {
		return configErrorf("LookAt", "must differ from LookFrom %v", c.LookFrom)
	}
	// vup × w vanishes when vup is zero or parallel to the view axis
	if c.VUp.Cross(view).LengthSquared() <= 1e-12*c.VUp.LengthSquared()*view.LengthSquared() {
		return configErrorf("VUp", "%v must not be parallel to the view direction %v", c.VUp, view.Negate())
	}

	return nil
}

// Camera generates primary rays. It is immutable after construction and safe
// to share between render workers.
type Camera struct {
	config        CameraConfig
	imageWidth    int
	imageHeight   int
	center        core.Point3
	pixel00       core.Point3 // Center of pixel (0, 0), the top-left pixel
	pixelDeltaU   core.Vec3   // Offset to the pixel to the right
	pixelDeltaV   core.Vec3   // Offset to the pixel below
	u, v, w       core.Vec3   // Camera frame basis vectors
	defocusDiskU  core.Vec3
	defocusDiskV  core.Vec3
	defocusRadius float64
}

// NewCamera validates config and derives the viewport geometry
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	width, height, _ := config.ImageSize()

	center := config.LookFrom

	// Viewport dimensions at the focus plane
	theta := core.DegreesToRadians(config.VFov)
	viewportHeight := 2 * math.Tan(theta/2) * config.FocusDist
	viewportWidth := viewportHeight * (float64(width) / float64(height))

	w := config.LookFrom.Subtract(config.LookAt).UnitVector()
	u := config.VUp.Cross(w).UnitVector()
	v := w.Cross(u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Negate().Multiply(viewportHeight)

	pixelDeltaU := viewportU.Divide(float64(width))
	pixelDeltaV := viewportV.Divide(float64(height))

	viewportUpperLeft := center.
		Subtract(w.Multiply(config.FocusDist)).
		Subtract(viewportU.Divide(2)).
		Subtract(viewportV.Divide(2))
	pixel00 := viewportUpperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5))

	defocusRadius := config.FocusDist * math.Tan(core.DegreesToRadians(config.DefocusAngle/2))

	return &Camera{
		config:        config,
		imageWidth:    width,
		imageHeight:   height,
		center:        center,
		pixel00:       pixel00,
		pixelDeltaU:   pixelDeltaU,
		pixelDeltaV:   pixelDeltaV,
		u:             u,
		v:             v,
		w:             w,
		defocusDiskU:  u.Multiply(defocusRadius),
		defocusDiskV:  v.Multiply(defocusRadius),
		defocusRadius: defocusRadius,
	}, nil
}

// GetRay returns a ray through a random point inside pixel (i, j). The origin
// is the camera center, or a point on the defocus disk when defocus is enabled.
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offset := sampler.Get2D()
	pixelSample := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X - 0.5)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y - 0.5))

	origin := c.center
	if c.config.DefocusAngle > 0 {
		origin = c.DefocusDiskSample(sampler)
	}

	return core.NewRay(origin, pixelSample.Subtract(origin))
}

// DefocusDiskSample returns a random point on the camera defocus disk
func (c *Camera) DefocusDiskSample(sampler core.Sampler) core.Point3 {
	p := core.RandomInUnitDisk(sampler)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}

// PixelCenter returns the world-space center of pixel (i, j) on the focus plane
func (c *Camera) PixelCenter(i, j int) core.Point3 {
	return c.pixel00.Add(c.pixelDeltaU.Multiply(float64(i))).Add(c.pixelDeltaV.Multiply(float64(j)))
}

// Width returns the image width in pixels
func (c *Camera) Width() int { return c.imageWidth }

// Height returns the image height in pixels
func (c *Camera) Height() int { return c.imageHeight }

// Config returns the validated configuration the camera was built from
func (c *Camera) Config() CameraConfig { return c.config }

// Center returns the camera position
func (c *Camera) Center() core.Point3 { return c.center }

// Forward returns the unit viewing direction
func (c *Camera) Forward() core.Vec3 { return c.w.Negate() }

// DefocusRadius returns the radius of the defocus disk, 0 for a pinhole camera
func (c *Camera) DefocusRadius() float64 { return c.defocusRadius }
