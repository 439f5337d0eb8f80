package lift

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/fieldvector/cuboidlift/internal/geom"
)

type smoothedCarry struct {
	centerX, centerZ, yawDeg float64
}

func smoothPoseStep(previous *smoothedCarry, currentX, currentZ, currentYaw, alphaCenter, alphaYaw float64) smoothedCarry {
	if previous == nil {
		return smoothedCarry{centerX: currentX, centerZ: currentZ, yawDeg: geom.NormalizeAngleDeg(currentYaw)}
	}
	return smoothedCarry{
		centerX: geom.LerpScalar(previous.centerX, currentX, alphaCenter),
		centerZ: geom.LerpScalar(previous.centerZ, currentZ, alphaCenter),
		yawDeg:  geom.LerpAngleDeg(previous.yawDeg, currentYaw, alphaYaw),
	}
}

// LiftSequence processes an ordered batch of per-frame detection records
// against a shared camera/object/config, applying exponential smoothing to
// the stream of per-frame poses.
func LiftSequence(payload map[string]interface{}) (*SequenceReport, error) {
	cameraRaw, err := asObject(payload, "camera", KindMissingCamera)
	if err != nil {
		return nil, err
	}
	objectRaw, err := asObject(payload, "object", KindMissingObject)
	if err != nil {
		return nil, err
	}
	configRaw, _ := payload["config"].(map[string]interface{})
	if configRaw == nil {
		configRaw = map[string]interface{}{}
	}
	framesRaw, ok := payload["frames"].([]interface{})
	if !ok || len(framesRaw) == 0 {
		return nil, newError(KindEmptyBatch, "payload.frames must be a non-empty list")
	}

	alphaCenter := geom.Clamp01(geom.GetNumber(configRaw, []string{"smoothCenterAlpha", "smoothingAlpha"}, 1.0))
	alphaYaw := geom.Clamp01(geom.GetNumber(configRaw, []string{"smoothYawAlpha"}, alphaCenter))

	var outputFrames []FrameResult
	var previous *smoothedCarry
	var fitErrors []float64

	for index, rawFrame := range framesRaw {
		frame, ok := rawFrame.(map[string]interface{})
		if !ok {
			continue
		}
		detection, ok := frameDetection(frame, index)
		if !ok {
			continue
		}

		frameCamera := cameraRaw
		if override, ok := frame["camera"].(map[string]interface{}); ok {
			frameCamera = mergeShallow(cameraRaw, override)
		}
		frameObject := objectRaw
		if override, ok := frame["object"].(map[string]interface{}); ok {
			frameObject = mergeObject(objectRaw, override)
		}
		frameConfig := configRaw
		if override, ok := frame["config"].(map[string]interface{}); ok {
			frameConfig = mergeShallow(configRaw, override)
		}

		raw, err := liftCuboid(frameCamera, detection, frameObject, frameConfig)
		if err != nil {
			return nil, err
		}

		rawResult := raw.Result
		smoothed := smoothPoseStep(previous, rawResult.BaseCenterWorld[0], rawResult.BaseCenterWorld[2], rawResult.YawDeg, alphaCenter, alphaYaw)
		carry := smoothed
		previous = &carry

		if rawResult.Fit.ErrorL1 != nil {
			fitErrors = append(fitErrors, *rawResult.Fit.ErrorL1)
		}

		outputFrames = append(outputFrames, FrameResult{
			Index:     index,
			Timestamp: frameTimestamp(frame, index),
			TrackID:   detection["trackId"],
			ObjectID:  detection["objectId"],
			Raw:       rawResult,
			SmoothedPose: SmoothedPose{
				BaseCenterWorld: [3]float64{smoothed.centerX, rawResult.BaseCenterWorld[1], smoothed.centerZ},
				CenterWorld:     [3]float64{smoothed.centerX, rawResult.CenterWorld[1], smoothed.centerZ},
				PlanPositionM:   [2]float64{smoothed.centerX, smoothed.centerZ},
				YawDeg:          smoothed.yawDeg,
			},
		})
	}

	if len(outputFrames) == 0 {
		return nil, newError(KindEmptyBatch, "no valid frames in payload.frames")
	}

	var meanPtr, maxPtr *float64
	if len(fitErrors) > 0 {
		mean := stat.Mean(fitErrors, nil)
		max := floats.Max(fitErrors)
		meanPtr, maxPtr = &mean, &max
	}

	return &SequenceReport{
		Status:      "ok",
		Mode:        "batch",
		Assumptions: assumptions,
		Smoothing: SmoothingInfo{
			SmoothCenterAlpha: alphaCenter,
			SmoothYawAlpha:    alphaYaw,
			Enabled:           alphaCenter < 0.999 || alphaYaw < 0.999,
		},
		Summary: SummaryInfo{
			FrameCount:     len(outputFrames),
			FitErrorMeanL1: meanPtr,
			FitErrorMaxL1:  maxPtr,
		},
		Frames: outputFrames,
	}, nil
}
