package camera

import (
	"math"
	"testing"

	"github.com/fieldvector/cuboidlift/internal/geom"
)

func mustParse(t *testing.T, raw map[string]interface{}) Camera {
	t.Helper()
	c, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return c
}

func TestParseMissingPosition(t *testing.T) {
	if _, err := Parse(map[string]interface{}{}); err != ErrInvalidPosition {
		t.Errorf("Parse with no planPositionM = %v, want ErrInvalidPosition", err)
	}
}

func TestParseDefaults(t *testing.T) {
	c := mustParse(t, map[string]interface{}{
		"planPositionM": []interface{}{1.0, 2.0},
	})
	if c.HeightM != defaultHeightM || c.PitchDeg != defaultPitchDeg ||
		c.FovDeg != defaultFovDeg || c.AspectRatio != defaultAspectRatio || c.YawDeg != 0 || c.RollDeg != 0 {
		t.Errorf("defaults not applied: %+v", c)
	}
}

func TestBasisOrthonormal(t *testing.T) {
	yaws := []float64{-170, -90, -37, 0, 12, 90, 170}
	pitches := []float64{-80, -35, 0, 10, 45}
	rolls := []float64{0, 5, -12, 90}
	for _, yaw := range yaws {
		for _, pitch := range pitches {
			for _, roll := range rolls {
				c := Camera{PositionX: 0, PositionZ: 0, HeightM: 1, YawDeg: yaw, PitchDeg: pitch, RollDeg: roll, FovDeg: 65, AspectRatio: 16.0 / 9.0}
				right, up, forward := c.Basis()
				if d := right.Dot(up); math.Abs(d) > 1e-6 {
					t.Errorf("yaw=%v pitch=%v roll=%v: right.up=%v", yaw, pitch, roll, d)
				}
				if d := right.Dot(forward); math.Abs(d) > 1e-6 {
					t.Errorf("yaw=%v pitch=%v roll=%v: right.forward=%v", yaw, pitch, roll, d)
				}
				if d := up.Dot(forward); math.Abs(d) > 1e-6 {
					t.Errorf("yaw=%v pitch=%v roll=%v: up.forward=%v", yaw, pitch, roll, d)
				}
				for _, v := range []geom.Vec3{right, up, forward} {
					if l := v.Length(); math.Abs(l-1) > 1e-6 {
						t.Errorf("yaw=%v pitch=%v roll=%v: basis vector length=%v", yaw, pitch, roll, l)
					}
				}
			}
		}
	}
}

func TestProjectThenRayConsistency(t *testing.T) {
	c := Camera{PositionX: 0, PositionZ: 0, HeightM: 5, YawDeg: 12, PitchDeg: -20, RollDeg: 3, FovDeg: 70, AspectRatio: 1.5}
	p := geom.Vec3{X: 2, Y: 0, Z: 8}
	u, v, ok := c.Project(p)
	if !ok {
		t.Fatalf("Project reported not-ok for a point in front of the camera")
	}
	origin, dir := c.Ray(u, v)
	// Scale the ray until it reaches p.Y, and confirm it lands on p.
	if math.Abs(dir.Y) < 1e-9 {
		t.Fatalf("ray direction has ~zero Y component, cannot test by Y-scaling")
	}
	scale := (p.Y - origin.Y) / dir.Y
	hit := origin.Add(dir.Scale(scale))
	if math.Abs(hit.X-p.X) > 1e-4 || math.Abs(hit.Y-p.Y) > 1e-4 || math.Abs(hit.Z-p.Z) > 1e-4 {
		t.Errorf("round trip landed at %+v, want %+v", hit, p)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	c := Camera{PositionX: 0, PositionZ: 0, HeightM: 1, YawDeg: 0, PitchDeg: 0, RollDeg: 0, FovDeg: 65, AspectRatio: 1}
	_, _, ok := c.Project(geom.Vec3{X: 0, Y: 1, Z: -10})
	if ok {
		t.Errorf("Project of a point behind the camera reported ok")
	}
}

func TestIntersectFloorParallel(t *testing.T) {
	_, ok := IntersectFloor(geom.Vec3{Y: 1}, geom.Vec3{X: 1, Y: 0, Z: 0}, 0)
	if ok {
		t.Errorf("IntersectFloor with a horizontal ray reported ok")
	}
}

func TestIntersectFloorBehind(t *testing.T) {
	// direction points up and away from the floor below the camera.
	_, ok := IntersectFloor(geom.Vec3{Y: 1}, geom.Vec3{X: 0, Y: 1, Z: 0}, 0)
	if ok {
		t.Errorf("IntersectFloor that requires negative t reported ok")
	}
}

func TestIntersectFloorHit(t *testing.T) {
	p, ok := IntersectFloor(geom.Vec3{Y: 5}, geom.Vec3{X: 0, Y: -1, Z: 0}, 0)
	if !ok {
		t.Fatalf("expected a hit")
	}
	if p.Y != 0 {
		t.Errorf("hit point y = %v, want 0", p.Y)
	}
}
