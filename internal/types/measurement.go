package types

// Named body dimensions. Height anchors every other dimension.
const (
	DimHeight        = "height"
	DimShoulderWidth = "shoulder_width"
	DimChest         = "chest"
	DimWaist         = "waist"
	DimHip           = "hip"
	DimTorsoLength   = "torso_length"
	DimArmLength     = "arm_length"
	DimInseam        = "inseam"
)

// MeasurementSet maps a named body dimension to centimeters.
type MeasurementSet map[string]float64

// Body shapes the vision model may return.
const (
	ShapeHourglass        = "hourglass"
	ShapeRectangle        = "rectangle"
	ShapeTriangle         = "triangle"
	ShapeInvertedTriangle = "inverted_triangle"
	ShapeOval             = "oval"
)

// Skin tone buckets in ITA order, lightest first.
const (
	ToneVeryLight    = "very_light"
	ToneLight        = "light"
	ToneIntermediate = "intermediate"
	ToneTan          = "tan"
	ToneDark         = "dark"
)

const (
	UndertoneWarm = "warm"
	UndertoneCool = "cool"
)

const (
	FitSlim     = "slim"
	FitRegular  = "regular"
	FitOversize = "oversize"
)

const (
	GenderMen    = "men"
	GenderWomen  = "women"
	GenderUnisex = "unisex"
)

// BodyAnalysis is the structured result of one vision-model extraction.
type BodyAnalysis struct {
	Measurements MeasurementSet `json:"measurements"`
	BodyShape    string         `json:"body_shape"`
	SkinTone     string         `json:"skin_tone"`
	Undertone    string         `json:"undertone"`
	Confidence   float64        `json:"confidence"`
}

// SizeRecommendation is the structured result of one sizing decision.
type SizeRecommendation struct {
	RecommendedSize string `json:"recommended_size"`
	FitType         string `json:"fit_type"`
	Reasoning       string `json:"reasoning"`
}

// PoseLandmark is a normalized landmark position as produced by the pose
// overlay running on the capture device. X and Y are in [0,1] frame space.
type PoseLandmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NormalizedRect is an axis-aligned box in [0,1] frame space, as reported
// by the capture client's face/pose overlay.
type NormalizedRect struct {
	XMin   float64 `json:"x_min"`
	YMin   float64 `json:"y_min"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Frame feedback statuses, in rough order of severity.
const (
	FrameStatusReady   = "ready"
	FrameStatusGood    = "good"
	FrameStatusWarning = "warning"
	FrameStatusBad     = "bad"
	FrameStatusError   = "error"
)

// FrameFeedback is the real-time framing guidance for one camera frame.
type FrameFeedback struct {
	Detected bool    `json:"detected"`
	Message  string  `json:"message"`
	Status   string  `json:"status"`
	Quality  float64 `json:"quality"`
}

// SkinToneResult is the output of the deterministic ITA classifier.
type SkinToneResult struct {
	SkinTone   string  `json:"skin_tone"`
	Undertone  string  `json:"undertone"`
	ITAValue   float64 `json:"ita_value"`
	LStar      float64 `json:"l_star"`
	BStar      float64 `json:"b_star"`
	Confidence float64 `json:"confidence"`
}
