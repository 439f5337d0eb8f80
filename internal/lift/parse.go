package lift

import (
	"fmt"

	"github.com/fieldvector/cuboidlift/internal/cuboid"
	"github.com/fieldvector/cuboidlift/internal/geom"
)

// parseInputPayload validates and extracts the four top-level sections of a
// single-frame payload: camera, detection, object and config.
func parseInputPayload(payload map[string]interface{}) (camera, detection, object, config map[string]interface{}, err error) {
	camera, err = asObject(payload, "camera", KindMissingCamera)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	detection, err = asObject(payload, "detection", KindMissingDetection)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	object, err = asObject(payload, "object", KindMissingObject)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	config, _ = payload["config"].(map[string]interface{})
	if config == nil {
		config = map[string]interface{}{}
	}
	return camera, detection, object, config, nil
}

func asObject(payload map[string]interface{}, key string, kind ErrorKind) (map[string]interface{}, error) {
	raw, ok := payload[key]
	if !ok {
		return nil, newError(kind, fmt.Sprintf("payload.%s is required", key))
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, newError(kind, fmt.Sprintf("payload.%s must be an object", key))
	}
	return obj, nil
}

// parseBBox extracts and independently clamps the four bbox fields,
// accepting the documented key aliases. It does not additionally constrain
// x+width or y+height (spec.md Open Question #1: lenient behavior kept).
func parseBBox(detection map[string]interface{}) cuboid.BBox {
	return cuboid.BBox{
		X:      geom.Clamp01(geom.GetNumber(detection, []string{"x", "left"}, 0.0)),
		Y:      geom.Clamp01(geom.GetNumber(detection, []string{"y", "top"}, 0.0)),
		Width:  geom.Clamp01(geom.GetNumber(detection, []string{"width", "w"}, 0.0)),
		Height: geom.Clamp01(geom.GetNumber(detection, []string{"height", "h"}, 0.0)),
	}
}

// parseAnchorUV resolves the detection's ground-contact point: an explicit
// anchorUV (list or {u,v}/{x,y} object) under any of its aliased keys, or
// else the bottom-center of the bbox.
func parseAnchorUV(detection map[string]interface{}) (u, v float64) {
	for _, key := range []string{"anchorUV", "anchor_uv", "footpointUV", "footpoint_uv"} {
		raw, ok := detection[key]
		if !ok {
			continue
		}
		if list, ok := raw.([]interface{}); ok && len(list) >= 2 {
			u0, ok0 := asFinite(list[0])
			v0, ok1 := asFinite(list[1])
			if ok0 && ok1 {
				return geom.Clamp01(u0), geom.Clamp01(v0)
			}
			continue
		}
		if obj, ok := raw.(map[string]interface{}); ok {
			u0, ok0 := geom.GetNumberPtr(obj, []string{"u", "x"})
			v0, ok1 := geom.GetNumberPtr(obj, []string{"v", "y"})
			if ok0 && ok1 {
				return geom.Clamp01(u0), geom.Clamp01(v0)
			}
		}
	}

	x := geom.GetNumber(detection, []string{"x", "left"}, 0.0)
	y := geom.GetNumber(detection, []string{"y", "top"}, 0.0)
	width := geom.GetNumber(detection, []string{"width", "w"}, 0.0)
	height := geom.GetNumber(detection, []string{"height", "h"}, 0.0)
	return geom.Clamp01(x + width*0.5), geom.Clamp01(y + height)
}

// asFinite converts a JSON-decoded scalar to a finite float64.
func asFinite(v interface{}) (float64, bool) {
	return geom.GetNumberPtr(map[string]interface{}{"v": v}, []string{"v"})
}

// parseObjectSize extracts object.sizeM.width/depth/height, requiring all
// three to be present, finite and strictly positive.
func parseObjectSize(object map[string]interface{}) (cuboid.Size, error) {
	sizeRaw, _ := object["sizeM"].(map[string]interface{})
	if sizeRaw == nil {
		sizeRaw = map[string]interface{}{}
	}
	width, widthOK := geom.GetNumberPtr(sizeRaw, []string{"width", "x"})
	depth, depthOK := geom.GetNumberPtr(sizeRaw, []string{"depth", "z"})
	height, heightOK := geom.GetNumberPtr(sizeRaw, []string{"height", "y"})
	if !widthOK || !depthOK || !heightOK {
		return cuboid.Size{}, newError(KindInvalidObjectSize, "object.sizeM requires width, depth, height")
	}
	if width <= 0 || depth <= 0 || height <= 0 {
		return cuboid.Size{}, newError(KindInvalidObjectSize, "object.sizeM dimensions must be positive")
	}
	return cuboid.Size{Width: width, Depth: depth, Height: height}, nil
}

// mergeObject shallow-merges override into base, except sizeM which is
// merged one level deep (so a per-frame override can tweak a single
// dimension without restating the whole sizeM object).
func mergeObject(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		if k == "sizeM" {
			baseSize, baseIsMap := merged["sizeM"].(map[string]interface{})
			overrideSize, overrideIsMap := v.(map[string]interface{})
			if baseIsMap && overrideIsMap {
				sizeMerged := make(map[string]interface{}, len(baseSize)+len(overrideSize))
				for sk, sv := range baseSize {
					sizeMerged[sk] = sv
				}
				for sk, sv := range overrideSize {
					sizeMerged[sk] = sv
				}
				merged["sizeM"] = sizeMerged
				continue
			}
		}
		merged[k] = v
	}
	return merged
}

// mergeShallow performs a plain one-level dict.update, used for camera and
// config frame-level overrides.
func mergeShallow(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// frameDetection extracts a per-frame detection either directly from
// frame.detection, or synthesized from top-level x/y/width/height fields.
func frameDetection(frame map[string]interface{}, index int) (map[string]interface{}, bool) {
	if det, ok := frame["detection"].(map[string]interface{}); ok {
		return det, true
	}
	required := []string{"x", "y", "width", "height"}
	for _, key := range required {
		if _, ok := frame[key]; !ok {
			return nil, false
		}
	}
	id := frame["id"]
	if id == nil {
		id = fmt.Sprintf("frame-det-%d", index)
	}
	det := map[string]interface{}{
		"id":         id,
		"trackId":    frame["trackId"],
		"objectId":   frame["objectId"],
		"x":          frame["x"],
		"y":          frame["y"],
		"width":      frame["width"],
		"height":     frame["height"],
		"anchorMode": firstNonNil(frame["anchorMode"], frame["anchor_mode"]),
	}
	if anchor := firstNonNil(frame["anchorUV"], frame["anchor_uv"]); anchor != nil {
		det["anchorUV"] = anchor
	}
	return det, true
}

func firstNonNil(values ...interface{}) interface{} {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// frameTimestamp returns the first present, non-empty string timestamp
// field, or a positional fallback "frame-{index+1}".
func frameTimestamp(frame map[string]interface{}, index int) string {
	for _, key := range []string{"timestamp", "time", "sentAt"} {
		if s, ok := frame[key].(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("frame-%d", index+1)
}
