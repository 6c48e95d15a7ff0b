package services

import (
	"math"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

// Pose landmark indices used for framing feedback (pose landmarker layout).
const (
	landmarkNose       = 0
	landmarkLeftAnkle  = 27
	landmarkRightAnkle = 28

	minLandmarkCount = 29
)

const defaultHeightCM = 175.0

// proportionBand is the realistic range of a dimension as a fraction of
// height. A range rather than a fixed multiplier: an athletic person must
// not be clamped into a rectangle shape.
type proportionBand struct {
	minRatio float64
	maxRatio float64
}

var heightProportions = map[string]proportionBand{
	types.DimShoulderWidth: {0.20, 0.35},
	types.DimChest:         {0.45, 0.75},
	types.DimWaist:         {0.35, 0.70},
	types.DimHip:           {0.45, 0.75},
	types.DimTorsoLength:   {0.25, 0.35},
	types.DimArmLength:     {0.30, 0.40},
	types.DimInseam:        {0.40, 0.50},
}

type MeasurementService struct {
	log *logger.Logger
}

func NewMeasurementService(log *logger.Logger) *MeasurementService {
	return &MeasurementService{log: log.With("service", "MeasurementService")}
}

// ValidateMeasurements clamps raw vision-model measurements into
// physiologically plausible, height-anchored ranges. It is a total function:
// any input produces a complete measurement set. A supplied reference height
// is a hard override of whatever the model estimated.
func (ms *MeasurementService) ValidateMeasurements(raw types.MeasurementSet, referenceHeightCM float64) types.MeasurementSet {
	height := defaultHeightCM
	if h, ok := raw[types.DimHeight]; ok && h > 0 {
		height = h
	}
	if referenceHeightCM > 0 {
		height = referenceHeightCM
	}
	height = roundHalf(height)

	validated := types.MeasurementSet{types.DimHeight: height}
	for dim, band := range heightProportions {
		lower := height * band.minRatio
		upper := height * band.maxRatio

		val, ok := raw[dim]
		if !ok || val <= 0 {
			val = height * (band.minRatio + band.maxRatio) / 2
		}

		val = math.Max(lower, math.Min(upper, val))
		validated[dim] = roundHalfWithin(val, lower, upper)
	}
	return validated
}

func roundHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

// roundHalfWithin rounds to the nearest 0.5 cm without letting the rounded
// value escape the clamp bounds.
func roundHalfWithin(v, lower, upper float64) float64 {
	r := roundHalf(v)
	if r > upper {
		r -= 0.5
	}
	if r < lower {
		r += 0.5
	}
	return r
}

// AnalyzeFrame produces real-time framing guidance from the pose landmarks
// of one camera frame. Pure function, no I/O; it never panics outward, any
// processing fault degrades to an error-status feedback.
func (ms *MeasurementService) AnalyzeFrame(landmarks []types.PoseLandmark) (feedback types.FrameFeedback) {
	defer func() {
		if r := recover(); r != nil {
			ms.log.Error("Frame analysis panicked", "recovered", r)
			feedback = types.FrameFeedback{
				Detected: false,
				Message:  "Analysis failed",
				Status:   types.FrameStatusError,
				Quality:  0.0,
			}
		}
	}()

	if len(landmarks) == 0 {
		return types.FrameFeedback{
			Detected: false,
			Message:  "No person detected",
			Status:   types.FrameStatusBad,
			Quality:  0.0,
		}
	}
	if len(landmarks) < minLandmarkCount {
		return types.FrameFeedback{
			Detected: false,
			Message:  "Analysis failed",
			Status:   types.FrameStatusError,
			Quality:  0.0,
		}
	}

	nose := landmarks[landmarkNose]
	lAnkle := landmarks[landmarkLeftAnkle]
	rAnkle := landmarks[landmarkRightAnkle]

	message := "Perfect! Hold still..."
	status := types.FrameStatusGood
	quality := 0.95

	switch {
	case lAnkle.Y > 0.95 || rAnkle.Y > 0.95:
		message = "Feet not visible - Step Back"
		status = types.FrameStatusWarning
		quality = 0.5
	case nose.Y < 0.05:
		message = "Head cut off - Adjust Camera"
		status = types.FrameStatusWarning
		quality = 0.5
	default:
		personHeight := (lAnkle.Y+rAnkle.Y)/2 - nose.Y
		if personHeight < 0.4 {
			message = "Too far - Come Closer"
			status = types.FrameStatusWarning
			quality = 0.6
		}
	}

	return types.FrameFeedback{
		Detected: true,
		Message:  message,
		Status:   status,
		Quality:  quality,
	}
}

// SelectBestFrame picks the frame to send to the vision model from a burst
// capture. The middle frame is usually the steadiest; averaging multiple
// extractions would waste vision-model calls.
func (ms *MeasurementService) SelectBestFrame(frames [][]byte) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	return frames[len(frames)/2], nil
}
