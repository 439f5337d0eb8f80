package geom

import (
	"math"
	"testing"
)

func TestNormalizeZeroVector(t *testing.T) {
	got := Vec3{}.Normalize()
	if got != (Vec3{}) {
		t.Errorf("Normalize of zero vector = %+v, want zero vector", got)
	}
}

func TestDotCross(t *testing.T) {
	a := Vec3{1, 0, 0}
	b := Vec3{0, 1, 0}
	if got := a.Dot(b); got != 0 {
		t.Errorf("Dot = %v, want 0", got)
	}
	got := a.Cross(b)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Cross = %+v, want %+v", got, want)
	}
}

func TestRotateAroundAxisIdentity(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := RotateAroundAxis(v, Vec3{0, 1, 0}, 0)
	if math.Abs(got.X-v.X) > 1e-9 || math.Abs(got.Y-v.Y) > 1e-9 || math.Abs(got.Z-v.Z) > 1e-9 {
		t.Errorf("zero-angle rotation changed vector: got %+v want %+v", got, v)
	}
}

func TestRotateAroundAxisQuarterTurn(t *testing.T) {
	// Rotating +X by +90deg around +Y should land on -Z (right-handed).
	got := RotateAroundAxis(Vec3{1, 0, 0}, Vec3{0, 1, 0}, math.Pi/2)
	if math.Abs(got.X) > 1e-9 || math.Abs(got.Y) > 1e-9 || math.Abs(got.Z-(-1)) > 1e-9 {
		t.Errorf("got %+v, want approximately (0,0,-1)", got)
	}
}

func TestNormalizeAngleDegRange(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{181, -179},
		{-181, 179},
		{360, 0},
		{540, 180},
		{37, 37},
	}
	for _, c := range cases {
		got := NormalizeAngleDeg(c.in)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("NormalizeAngleDeg(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAngleDeltaDeg(t *testing.T) {
	if got := AngleDeltaDeg(170, -170); math.Abs(got-20) > 1e-9 {
		t.Errorf("AngleDeltaDeg(170,-170) = %v, want 20", got)
	}
}

func TestLerpAngleDegShortestArc(t *testing.T) {
	got := LerpAngleDeg(170, -170, 0.5)
	if got < 175 && got > -175 {
		t.Errorf("LerpAngleDeg(170,-170,0.5) = %v, want near +/-180 (shortest arc), not near 0", got)
	}
}

func TestLerpScalarPassthroughAtAlphaOne(t *testing.T) {
	if got := LerpScalar(1, 5, 1); got != 5 {
		t.Errorf("LerpScalar(.. , alpha=1) = %v, want 5", got)
	}
	if got := LerpScalar(1, 5, 0); got != 1 {
		t.Errorf("LerpScalar(.., alpha=0) = %v, want 1", got)
	}
}

func TestSafeFloat(t *testing.T) {
	if got := SafeFloat(math.NaN(), 3.5); got != 3.5 {
		t.Errorf("SafeFloat(NaN, 3.5) = %v, want 3.5", got)
	}
	if got := SafeFloat(math.Inf(1), 3.5); got != 3.5 {
		t.Errorf("SafeFloat(+Inf, 3.5) = %v, want 3.5", got)
	}
	if got := SafeFloat(2.0, 3.5); got != 2.0 {
		t.Errorf("SafeFloat(2.0, 3.5) = %v, want 2.0", got)
	}
}

func TestGetNumberAliasAndFallback(t *testing.T) {
	source := map[string]interface{}{"yawDeg": 12.5}
	if got := GetNumber(source, []string{"yaw", "yawDeg"}, 0); got != 12.5 {
		t.Errorf("GetNumber alias lookup = %v, want 12.5", got)
	}
	if got := GetNumber(map[string]interface{}{}, []string{"yaw", "yawDeg"}, 7); got != 7 {
		t.Errorf("GetNumber with no keys present = %v, want default 7", got)
	}
	nonFinite := map[string]interface{}{"yaw": math.NaN()}
	if got := GetNumber(nonFinite, []string{"yaw"}, 9); got != 9 {
		t.Errorf("GetNumber with NaN value = %v, want default 9", got)
	}
}

func TestGetNumberPtrPresence(t *testing.T) {
	if _, ok := GetNumberPtr(map[string]interface{}{}, []string{"yawDeg"}); ok {
		t.Errorf("GetNumberPtr on empty map reported present")
	}
	v, ok := GetNumberPtr(map[string]interface{}{"yawDeg": 4.0}, []string{"yaw", "yawDeg"})
	if !ok || v != 4.0 {
		t.Errorf("GetNumberPtr = (%v, %v), want (4.0, true)", v, ok)
	}
}
