// Package lift implements the sequence driver (L4): the public entry
// points LiftSingle and LiftSequence, tolerant JSON payload parsing, and
// the exponential-smoothing sequence pipeline built on top of
// internal/camera and internal/cuboid.
package lift

import (
	"github.com/fieldvector/cuboidlift/internal/camera"
	"github.com/fieldvector/cuboidlift/internal/cuboid"
	"github.com/fieldvector/cuboidlift/internal/geom"
)

// LiftSingle validates payload.camera/detection/object/config and produces
// a single PoseReport.
func LiftSingle(payload map[string]interface{}) (*PoseReport, error) {
	cameraRaw, detectionRaw, objectRaw, configRaw, err := parseInputPayload(payload)
	if err != nil {
		return nil, err
	}
	return liftCuboid(cameraRaw, detectionRaw, objectRaw, configRaw)
}

// liftCuboid is the shared single-frame core used directly by LiftSingle
// and, per-frame, by LiftSequence.
func liftCuboid(cameraRaw, detectionRaw, objectRaw, configRaw map[string]interface{}) (*PoseReport, error) {
	cam, err := camera.Parse(cameraRaw)
	if err != nil {
		return nil, wrapError(KindInvalidCameraPosition, "camera.planPositionM invalid", err)
	}

	bbox := parseBBox(detectionRaw)
	anchorU, anchorV := parseAnchorUV(detectionRaw)
	size, err := parseObjectSize(objectRaw)
	if err != nil {
		return nil, err
	}

	floorY := geom.GetNumber(configRaw, []string{"floorY", "floor_y"}, 0.0)
	elevationM := geom.GetNumber(objectRaw, []string{"elevationM", "elevation"}, 0.0)
	baseY := floorY + elevationM

	origin, direction := cam.Ray(anchorU, anchorV)
	anchorWorld, ok := camera.IntersectFloor(origin, direction, baseY)
	if !ok {
		return nil, newError(KindRayMissesFloor, "anchor ray did not intersect the floor plane")
	}

	var yawHint *float64
	if hint, ok := geom.GetNumberPtr(objectRaw, []string{"yawDeg", "rotationDeg", "yaw"}); ok {
		yawHint = &hint
	}
	fitYaw, _ := configRaw["fitYawFromBBox"].(bool)
	fitCenterOffset, _ := configRaw["fitCenterOffsetFromBBox"].(bool)
	coarseStep := geom.GetNumber(configRaw, []string{"yawSearchStepDeg", "yaw_step_deg"}, 2.0)
	offsetMin := geom.GetNumber(configRaw, []string{"centerOffsetMinM"}, -size.Depth*0.5)
	offsetMax := geom.GetNumber(configRaw, []string{"centerOffsetMaxM"}, size.Depth*0.5)
	offsetStep := geom.GetNumber(configRaw, []string{"centerOffsetStepM"}, 0.08)

	centerX, centerZ := anchorWorld.X, anchorWorld.Z
	centerOffsetM := 0.0
	var yawDeg float64
	var fitError *float64
	var predicted cuboid.BBox
	var hasPredicted bool

	switch {
	case fitYaw && fitCenterOffset:
		result := cuboid.FitCenterOffsetAndYawFromBBox(cam, bbox, anchorWorld, size, baseY, coarseStep, yawHint, offsetMin, offsetMax, offsetStep)
		yawDeg = result.YawDeg
		e := result.ErrorL1
		fitError = &e
		predicted = result.Predicted
		hasPredicted = result.HasBBox
		centerOffsetM = result.OffsetM
		centerX, centerZ = result.CenterX, result.CenterZ
	case fitYaw:
		result := cuboid.FitYawFromBBox(cam, bbox, centerX, centerZ, size, baseY, coarseStep, yawHint)
		yawDeg = result.YawDeg
		e := result.ErrorL1
		fitError = &e
		predicted = result.Predicted
		hasPredicted = result.HasBBox
	default:
		if yawHint != nil {
			yawDeg = *yawHint
		}
		yawDeg = geom.NormalizeAngleDeg(yawDeg)
		corners := cuboid.Corners(centerX, centerZ, size, yawDeg, baseY)
		predicted, hasPredicted = cuboid.ProjectedBBox(corners, cam)
		if hasPredicted {
			e := cuboid.FitErrorL1(bbox, predicted)
			fitError = &e
		}
	}

	centerWorld := geom.Vec3{X: centerX, Y: baseY + size.Height*0.5, Z: centerZ}
	corners := cuboid.Corners(centerX, centerZ, size, yawDeg, baseY)
	footprint := cuboid.Footprint(corners)

	var reprojected *BBoxJSON
	if hasPredicted {
		reprojected = &BBoxJSON{X: predicted.X, Y: predicted.Y, Width: predicted.Width, Height: predicted.Height}
	}

	var fitCenterOffsetField *bool
	var coarseStepField *float64
	var offsetRangeField *[2]float64
	var offsetStepField *float64
	if fitYaw {
		fco := fitCenterOffset
		fitCenterOffsetField = &fco
		cs := coarseStep
		coarseStepField = &cs
		if fitCenterOffset {
			rng := [2]float64{offsetMin, offsetMax}
			offsetRangeField = &rng
			os := offsetStep
			offsetStepField = &os
		}
	}

	footprintXZ := make([][2]float64, len(footprint))
	for i, p := range footprint {
		footprintXZ[i] = p
	}
	cornersWorld := make([][3]float64, len(corners))
	for i, c := range corners {
		cornersWorld[i] = [3]float64{c.X, c.Y, c.Z}
	}

	return &PoseReport{
		Status:      "ok",
		Assumptions: assumptions,
		InputEcho: InputEcho{
			AnchorUV: [2]float64{anchorU, anchorV},
			BBox:     BBoxJSON{X: bbox.X, Y: bbox.Y, Width: bbox.Width, Height: bbox.Height},
			SizeM:    SizeJSON{Width: size.Width, Depth: size.Depth, Height: size.Height},
		},
		Result: PoseResult{
			AnchorWorld:             [3]float64{anchorWorld.X, anchorWorld.Y, anchorWorld.Z},
			BaseCenterWorld:         [3]float64{centerX, baseY, centerZ},
			CenterWorld:             [3]float64{centerWorld.X, centerWorld.Y, centerWorld.Z},
			FootprintXZ:             footprintXZ,
			CenterOffsetFromAnchorM: centerOffsetM,
			YawDeg:                  yawDeg,
			ReprojectedBBox:         reprojected,
			Fit: FitInfo{
				Enabled:         fitYaw,
				FitCenterOffset: fitCenterOffsetField,
				ErrorL1:         fitError,
				CoarseStepDeg:   coarseStepField,
				OffsetRangeM:    offsetRangeField,
				OffsetStepM:     offsetStepField,
			},
			CornersWorld: cornersWorld,
		},
	}, nil
}
