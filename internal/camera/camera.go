// Package camera implements the pinhole camera model: basis construction,
// forward projection, inverse ray casting and floor-plane intersection.
package camera

import (
	"errors"
	"math"

	"github.com/fieldvector/cuboidlift/internal/geom"
)

// ErrInvalidPosition is returned when a camera's planPositionM field is
// missing or not a 2-element numeric pair.
var ErrInvalidPosition = errors.New("camera.planPositionM invalid; expected [x, z]")

// Camera is a fully-resolved, immutable-per-frame pinhole camera.
type Camera struct {
	PositionX, PositionZ      float64
	HeightM                   float64
	YawDeg, PitchDeg, RollDeg float64
	FovDeg                    float64
	AspectRatio               float64
}

const (
	defaultHeightM      = 2.7
	defaultPitchDeg     = -35.0
	defaultFovDeg       = 65.0
	defaultAspectRatio  = 16.0 / 9.0
	behindCameraEpsilon = 1e-5
	floorParallelEpsilon = 1e-9
	rollSkipEpsilon     = 1e-7
)

// Parse builds a Camera from a JSON-decoded object, applying the documented
// key aliases and defaults. raw["planPositionM"] must be a 2-element
// numeric array; everything else falls back to the spec's defaults.
func Parse(raw map[string]interface{}) (Camera, error) {
	posRaw, ok := raw["planPositionM"]
	if !ok {
		return Camera{}, ErrInvalidPosition
	}
	posSlice, ok := posRaw.([]interface{})
	if !ok || len(posSlice) != 2 {
		return Camera{}, ErrInvalidPosition
	}
	x, xok := toFloat(posSlice[0])
	z, zok := toFloat(posSlice[1])
	if !xok || !zok {
		return Camera{}, ErrInvalidPosition
	}

	return Camera{
		PositionX:   x,
		PositionZ:   z,
		HeightM:     geom.GetNumber(raw, []string{"heightM", "height", "mountHeightM"}, defaultHeightM),
		YawDeg:      geom.GetNumber(raw, []string{"yawDeg", "yaw"}, 0.0),
		PitchDeg:    geom.GetNumber(raw, []string{"pitchDeg", "pitch"}, defaultPitchDeg),
		RollDeg:     geom.GetNumber(raw, []string{"rollDeg", "roll"}, 0.0),
		FovDeg:      geom.GetNumber(raw, []string{"fovDeg", "fov", "verticalFovDeg"}, defaultFovDeg),
		AspectRatio: geom.GetNumber(raw, []string{"aspectRatio", "aspect"}, defaultAspectRatio),
	}, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}

// Origin returns the camera's world-space position.
func (c Camera) Origin() geom.Vec3 {
	return geom.Vec3{X: c.PositionX, Y: c.HeightM, Z: c.PositionZ}
}

// Basis returns the camera's (right, up, forward) orthonormal frame. Yaw and
// pitch are applied analytically; roll rotates right/up around forward via
// Rodrigues only when non-negligible.
func (c Camera) Basis() (right, up, forward geom.Vec3) {
	yaw := geom.DegToRad(c.YawDeg)
	pitch := geom.DegToRad(c.PitchDeg)

	forward = geom.Vec3{
		X: math.Sin(yaw) * math.Cos(pitch),
		Y: math.Sin(pitch),
		Z: math.Cos(yaw) * math.Cos(pitch),
	}.Normalize()
	right = geom.Vec3{X: math.Cos(yaw), Y: 0, Z: -math.Sin(yaw)}.Normalize()
	up = forward.Cross(right).Normalize()

	if math.Abs(c.RollDeg) > rollSkipEpsilon {
		roll := geom.DegToRad(c.RollDeg)
		right = geom.RotateAroundAxis(right, forward, roll).Normalize()
		up = geom.RotateAroundAxis(up, forward, roll).Normalize()
	}
	return right, up, forward
}

func (c Camera) tanHalfFov() float64 {
	return math.Tan(geom.DegToRad(c.FovDeg) * 0.5)
}

// Project maps a world point to normalized image coordinates. ok is false
// when the point is behind the camera (z_c <= 1e-5); callers must not treat
// that as an error, merely as "not visible".
func (c Camera) Project(p geom.Vec3) (u, v float64, ok bool) {
	right, up, forward := c.Basis()
	origin := c.Origin()
	rel := p.Sub(origin)

	xCam := rel.Dot(right)
	yCam := rel.Dot(up)
	zCam := rel.Dot(forward)
	if zCam <= behindCameraEpsilon {
		return 0, 0, false
	}

	t := c.tanHalfFov()
	xNdc := xCam / (zCam * t * c.AspectRatio)
	yNdc := yCam / (zCam * t)
	u = (xNdc + 1.0) * 0.5
	v = (1.0 - yNdc) * 0.5
	return u, v, true
}

// Ray returns the world-space origin and normalized direction of the ray
// through normalized image coordinates (u, v), clamped into [0, 1] first.
func (c Camera) Ray(u, v float64) (origin, direction geom.Vec3) {
	right, up, forward := c.Basis()
	origin = c.Origin()
	t := c.tanHalfFov()

	xNdc := geom.Clamp01(u)*2.0 - 1.0
	yNdc := 1.0 - geom.Clamp01(v)*2.0

	xCam := xNdc * t * c.AspectRatio
	yCam := yNdc * t
	zCam := 1.0

	direction = geom.Vec3{
		X: right.X*xCam + up.X*yCam + forward.X*zCam,
		Y: right.Y*xCam + up.Y*yCam + forward.Y*zCam,
		Z: right.Z*xCam + up.Z*yCam + forward.Z*zCam,
	}.Normalize()
	return origin, direction
}

// IntersectFloor intersects a ray with the horizontal plane y = floorY. ok
// is false when the ray is parallel to the floor or points away from it.
func IntersectFloor(origin, direction geom.Vec3, floorY float64) (point geom.Vec3, ok bool) {
	if math.Abs(direction.Y) <= floorParallelEpsilon {
		return geom.Vec3{}, false
	}
	t := (floorY - origin.Y) / direction.Y
	if t <= 0.0 {
		return geom.Vec3{}, false
	}
	return origin.Add(direction.Scale(t)), true
}
