// Package cuboid implements the oriented-box corner enumeration, reprojected
// bounding-box error and the two grid-search pose solver variants.
package cuboid

import (
	"math"

	"github.com/fieldvector/cuboidlift/internal/camera"
	"github.com/fieldvector/cuboidlift/internal/geom"
)

// BBox is an axis-aligned box in normalized image coordinates.
type BBox struct {
	X, Y, Width, Height float64
}

func (b BBox) CenterX() float64 { return b.X + b.Width*0.5 }
func (b BBox) CenterY() float64 { return b.Y + b.Height*0.5 }

// Size holds a target object's physical dimensions in meters.
type Size struct {
	Width, Depth, Height float64
}

const (
	minYawCoarseStepDeg   = 0.25
	minYawFineStepDeg     = 0.1
	minOffsetCoarseStepM  = 0.02
	minOffsetFineStepM    = 0.01
)

// Corners returns the eight corners of an oriented box at (centerX, centerZ)
// with the given size, yaw and base elevation, interleaved base/top per
// footprint corner: even indices are base corners (y=baseY), odd indices are
// top corners (y=baseY+height).
func Corners(centerX, centerZ float64, size Size, yawDeg, baseY float64) [8]geom.Vec3 {
	halfW := size.Width * 0.5
	halfD := size.Depth * 0.5
	yaw := geom.DegToRad(yawDeg)
	c := math.Cos(yaw)
	s := math.Sin(yaw)

	local := [4][2]float64{
		{-halfW, -halfD},
		{halfW, -halfD},
		{halfW, halfD},
		{-halfW, halfD},
	}

	var out [8]geom.Vec3
	for i, lp := range local {
		lx, lz := lp[0], lp[1]
		wx := centerX + lx*c - lz*s
		wz := centerZ + lx*s + lz*c
		out[2*i] = geom.Vec3{X: wx, Y: baseY, Z: wz}
		out[2*i+1] = geom.Vec3{X: wx, Y: baseY + size.Height, Z: wz}
	}
	return out
}

// Footprint extracts the four base corners (even indices) in world XZ.
func Footprint(corners [8]geom.Vec3) [4][2]float64 {
	var fp [4][2]float64
	for i := 0; i < 4; i++ {
		c := corners[2*i]
		fp[i] = [2]float64{c.X, c.Z}
	}
	return fp
}

// ProjectedBBox projects all eight corners and returns the clamped AABB of
// the ones in front of the camera. ok is false if none are visible or the
// resulting box is degenerate.
func ProjectedBBox(corners [8]geom.Vec3, cam camera.Camera) (BBox, bool) {
	var us, vs []float64
	for _, c := range corners {
		u, v, ok := cam.Project(c)
		if !ok {
			continue
		}
		us = append(us, u)
		vs = append(vs, v)
	}
	if len(us) == 0 {
		return BBox{}, false
	}

	minU, maxU := minMax(us)
	minV, maxV := minMax(vs)
	minU, maxU = geom.Clamp01(minU), geom.Clamp01(maxU)
	minV, maxV = geom.Clamp01(minV), geom.Clamp01(maxV)
	if maxU <= minU || maxV <= minV {
		return BBox{}, false
	}
	return BBox{X: minU, Y: minV, Width: maxU - minU, Height: maxV - minV}, true
}

func minMax(xs []float64) (min, max float64) {
	min, max = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}

// FitErrorL1 computes the observed-vs-predicted L1 bbox error: twice the
// center-distance plus the size difference.
func FitErrorL1(observed, predicted BBox) float64 {
	eCenter := math.Abs(observed.CenterX()-predicted.CenterX()) + math.Abs(observed.CenterY()-predicted.CenterY())
	eSize := math.Abs(observed.Width-predicted.Width) + math.Abs(observed.Height-predicted.Height)
	return eCenter*2.0 + eSize
}

// YawFitResult is the outcome of the yaw-only solver (Variant A).
type YawFitResult struct {
	YawDeg    float64
	ErrorL1   float64
	Predicted BBox
	HasBBox   bool
}

// FitYawFromBBox implements Variant A: a coarse 360-degree yaw grid search
// followed by a local refinement pass, centered at (centerX, centerZ).
// yawHintDeg, if present, seeds the initial best-so-far candidate.
func FitYawFromBBox(cam camera.Camera, observed BBox, centerX, centerZ float64, size Size, baseY float64, coarseStepDeg float64, yawHintDeg *float64) YawFitResult {
	evalYaw := func(yawDeg float64) (float64, BBox, bool) {
		corners := Corners(centerX, centerZ, size, yawDeg, baseY)
		predicted, ok := ProjectedBBox(corners, cam)
		if !ok {
			return math.Inf(1), BBox{}, false
		}
		return FitErrorL1(observed, predicted), predicted, true
	}

	bestYaw := 0.0
	if yawHintDeg != nil {
		bestYaw = *yawHintDeg
	}
	bestError, bestBBox, bestHas := evalYaw(bestYaw)

	step := math.Max(minYawCoarseStepDeg, coarseStepDeg)
	turns := int(math.Ceil(360.0 / step))
	for i := 0; i < turns; i++ {
		yaw := -180.0 + float64(i)*step
		e, bbox, has := evalYaw(yaw)
		if e < bestError {
			bestError, bestYaw, bestBBox, bestHas = e, yaw, bbox, has
		}
	}

	fineSpan := math.Max(1.0, step*2.0)
	fineStep := math.Max(minYawFineStepDeg, step/8.0)
	fineCount := int(math.Ceil((fineSpan*2.0)/fineStep)) + 1
	for i := 0; i < fineCount; i++ {
		yaw := bestYaw - fineSpan + float64(i)*fineStep
		e, bbox, has := evalYaw(yaw)
		if e < bestError {
			bestError, bestYaw, bestBBox, bestHas = e, yaw, bbox, has
		}
	}

	return YawFitResult{
		YawDeg:    geom.NormalizeAngleDeg(bestYaw),
		ErrorL1:   bestError,
		Predicted: bestBBox,
		HasBBox:   bestHas,
	}
}

// OffsetFitResult is the outcome of the yaw+offset solver (Variant B).
type OffsetFitResult struct {
	YawDeg       float64
	ErrorL1      float64
	Predicted    BBox
	HasBBox      bool
	OffsetM      float64
	CenterX      float64
	CenterZ      float64
}

// FitCenterOffsetAndYawFromBBox implements Variant B: a combined yaw x
// along-ray-offset grid search, evaluated with an error term that adds
// twice the L1 distance between the predicted and observed anchor points to
// the plain bbox fit error, so the solver cannot trade anchor alignment for
// size match.
func FitCenterOffsetAndYawFromBBox(cam camera.Camera, observed BBox, anchorWorld geom.Vec3, size Size, baseY float64, coarseStepDeg float64, yawHintDeg *float64, offsetMinM, offsetMaxM, offsetStepM float64) OffsetFitResult {
	origin := cam.Origin()
	away := geom.Vec3{X: anchorWorld.X - origin.X, Y: 0, Z: anchorWorld.Z - origin.Z}
	awayLen := math.Sqrt(away.X*away.X + away.Z*away.Z)
	awayDir := geom.Vec3{X: 0, Y: 0, Z: 1}
	if awayLen > 1e-7 {
		awayDir = geom.Vec3{X: away.X / awayLen, Y: 0, Z: away.Z / awayLen}
	}

	centerFromOffset := func(offsetM float64) (float64, float64) {
		return anchorWorld.X + awayDir.X*offsetM, anchorWorld.Z + awayDir.Z*offsetM
	}

	evalPose := func(yawDeg, offsetM float64) (float64, BBox, bool) {
		cx, cz := centerFromOffset(offsetM)
		corners := Corners(cx, cz, size, yawDeg, baseY)
		predicted, ok := ProjectedBBox(corners, cam)
		if !ok {
			return math.Inf(1), BBox{}, false
		}
		predictedAnchorX := predicted.X + predicted.Width*0.5
		predictedAnchorY := predicted.Y + predicted.Height
		observedAnchorX := observed.X + observed.Width*0.5
		observedAnchorY := observed.Y + observed.Height
		anchorError := math.Abs(predictedAnchorX-observedAnchorX) + math.Abs(predictedAnchorY-observedAnchorY)
		bboxError := FitErrorL1(observed, predicted)
		return bboxError + anchorError*2.0, predicted, true
	}

	stepDeg := math.Max(minYawCoarseStepDeg, coarseStepDeg)
	stepOffset := math.Max(minOffsetCoarseStepM, offsetStepM)
	yawCandidates := int(math.Ceil(360.0 / stepDeg))
	offsetCount := int(math.Floor((offsetMaxM-offsetMinM)/stepOffset)) + 1

	bestYaw := 0.0
	if yawHintDeg != nil {
		bestYaw = *yawHintDeg
	}
	bestOffset := 0.0
	bestError, bestBBox, bestHas := evalPose(bestYaw, bestOffset)

	for oi := 0; oi < offsetCount; oi++ {
		offsetM := offsetMinM + float64(oi)*stepOffset
		for yi := 0; yi < yawCandidates; yi++ {
			yaw := -180.0 + float64(yi)*stepDeg
			e, bbox, has := evalPose(yaw, offsetM)
			if e < bestError {
				bestError, bestYaw, bestOffset, bestBBox, bestHas = e, yaw, offsetM, bbox, has
			}
		}
	}

	fineYawSpan := math.Max(2.0, stepDeg*2.0)
	fineYawStep := math.Max(minYawFineStepDeg, stepDeg/8.0)
	fineOffsetSpan := math.Max(0.08, stepOffset*2.0)
	fineOffsetStep := math.Max(minOffsetFineStepM, stepOffset/8.0)

	fineYawCount := int(math.Ceil((fineYawSpan*2.0)/fineYawStep)) + 1
	fineOffsetCount := int(math.Ceil((fineOffsetSpan*2.0)/fineOffsetStep)) + 1
	for oi := 0; oi < fineOffsetCount; oi++ {
		offsetM := bestOffset - fineOffsetSpan + float64(oi)*fineOffsetStep
		for yi := 0; yi < fineYawCount; yi++ {
			yaw := bestYaw - fineYawSpan + float64(yi)*fineYawStep
			e, bbox, has := evalPose(yaw, offsetM)
			if e < bestError {
				bestError, bestYaw, bestOffset, bestBBox, bestHas = e, yaw, offsetM, bbox, has
			}
		}
	}

	finalCX, finalCZ := centerFromOffset(bestOffset)
	return OffsetFitResult{
		YawDeg:    geom.NormalizeAngleDeg(bestYaw),
		ErrorL1:   bestError,
		Predicted: bestBBox,
		HasBBox:   bestHas,
		OffsetM:   bestOffset,
		CenterX:   finalCX,
		CenterZ:   finalCZ,
	}
}
