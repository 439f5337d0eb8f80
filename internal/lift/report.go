package lift

// assumptions is the fixed list of simplifying assumptions echoed on every
// successful result, single-frame or batch.
var assumptions = []string{
	"single_camera",
	"floor_plane_support",
	"object_pitch_roll_fixed_zero",
	"anchor_uv_bottom_center_default",
}

// BBoxJSON is the wire shape of a normalized-image-space bounding box.
type BBoxJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SizeJSON is the wire shape of an object's physical dimensions.
type SizeJSON struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

// InputEcho reflects the normalized detection and object size back to the
// caller for debugging/traceability.
type InputEcho struct {
	AnchorUV [2]float64 `json:"anchorUV"`
	BBox     BBoxJSON   `json:"bbox"`
	SizeM    SizeJSON   `json:"sizeM"`
}

// FitInfo describes which solver variant ran and its outcome. Fields that
// don't apply to the chosen variant are left nil so they serialize as null.
type FitInfo struct {
	Enabled         bool       `json:"enabled"`
	FitCenterOffset *bool      `json:"fitCenterOffset"`
	ErrorL1         *float64   `json:"errorL1"`
	CoarseStepDeg   *float64   `json:"coarseStepDeg"`
	OffsetRangeM    *[2]float64 `json:"offsetRangeM"`
	OffsetStepM     *float64   `json:"offsetStepM"`
}

// PoseResult is the geometric payload of a single-frame lift.
type PoseResult struct {
	AnchorWorld             [3]float64   `json:"anchorWorld"`
	BaseCenterWorld         [3]float64   `json:"baseCenterWorld"`
	CenterWorld             [3]float64   `json:"centerWorld"`
	FootprintXZ             [][2]float64 `json:"footprintXZ"`
	CenterOffsetFromAnchorM float64      `json:"centerOffsetFromAnchorM"`
	YawDeg                  float64      `json:"yawDeg"`
	ReprojectedBBox         *BBoxJSON    `json:"reprojectedBBox"`
	Fit                     FitInfo      `json:"fit"`
	CornersWorld            [][3]float64 `json:"cornersWorld"`
}

// PoseReport is the full result of LiftSingle.
type PoseReport struct {
	Status      string     `json:"status"`
	Assumptions []string   `json:"assumptions"`
	InputEcho   InputEcho  `json:"inputEcho"`
	Result      PoseResult `json:"result"`
}

// SmoothingInfo echoes the smoothing configuration used for a sequence.
type SmoothingInfo struct {
	SmoothCenterAlpha float64 `json:"smoothCenterAlpha"`
	SmoothYawAlpha    float64 `json:"smoothYawAlpha"`
	Enabled           bool    `json:"enabled"`
}

// SummaryInfo aggregates fit error across all valid frames in a sequence.
type SummaryInfo struct {
	FrameCount     int      `json:"frameCount"`
	FitErrorMeanL1 *float64 `json:"fitErrorMeanL1"`
	FitErrorMaxL1  *float64 `json:"fitErrorMaxL1"`
}

// SmoothedPose is a frame's pose after exponential smoothing.
type SmoothedPose struct {
	BaseCenterWorld [3]float64 `json:"baseCenterWorld"`
	CenterWorld     [3]float64 `json:"centerWorld"`
	PlanPositionM   [2]float64 `json:"planPositionM"`
	YawDeg          float64    `json:"yawDeg"`
}

// FrameResult is one frame's raw and smoothed pose within a SequenceReport.
type FrameResult struct {
	Index        int          `json:"index"`
	Timestamp    string       `json:"timestamp"`
	TrackID      interface{}  `json:"trackId"`
	ObjectID     interface{}  `json:"objectId"`
	Raw          PoseResult   `json:"raw"`
	SmoothedPose SmoothedPose `json:"smoothedPose"`
}

// SequenceReport is the full result of LiftSequence.
type SequenceReport struct {
	Status      string        `json:"status"`
	Mode        string        `json:"mode"`
	Assumptions []string      `json:"assumptions"`
	Smoothing   SmoothingInfo `json:"smoothing"`
	Summary     SummaryInfo   `json:"summary"`
	Frames      []FrameResult `json:"frames"`
}
