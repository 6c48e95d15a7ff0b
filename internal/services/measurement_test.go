package services

import (
	"errors"
	"math"
	"testing"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger init failed: %v", err)
	}
	return log
}

func TestValidateMeasurements_ClampsIntoHeightBands(t *testing.T) {
	svc := NewMeasurementService(testLogger(t))

	raw := types.MeasurementSet{
		types.DimHeight:        175,
		types.DimShoulderWidth: 90,  // way above 0.35*175
		types.DimChest:         20,  // way below 0.45*175
		types.DimWaist:         80,  // plausible, inside band
		types.DimHip:           300, // above band
		types.DimTorsoLength:   50,  // inside band
		types.DimArmLength:     75,  // inside band
		types.DimInseam:        82,  // inside band
	}

	got := svc.ValidateMeasurements(raw, 0)

	for dim, band := range heightProportions {
		lower := 175 * band.minRatio
		upper := 175 * band.maxRatio
		v, ok := got[dim]
		if !ok {
			t.Fatalf("missing dimension %q", dim)
		}
		if v < lower || v > upper {
			t.Fatalf("%s = %v outside [%v, %v]", dim, v, lower, upper)
		}
		if rem := math.Mod(v*2, 1); rem != 0 {
			t.Fatalf("%s = %v not a multiple of 0.5", dim, v)
		}
	}
	if got[types.DimHeight] != 175 {
		t.Fatalf("height = %v, want 175", got[types.DimHeight])
	}
}

func TestValidateMeasurements_ReferenceHeightOverridesEstimate(t *testing.T) {
	svc := NewMeasurementService(testLogger(t))

	raw := types.MeasurementSet{
		types.DimHeight: 165, // model estimate, should lose to the reference
		types.DimChest:  95,
	}
	got := svc.ValidateMeasurements(raw, 180)

	if got[types.DimHeight] != 180 {
		t.Fatalf("height = %v, want reference 180", got[types.DimHeight])
	}
	// Bands must be anchored to the reference height, not the estimate.
	lower := 180 * heightProportions[types.DimInseam].minRatio
	upper := 180 * heightProportions[types.DimInseam].maxRatio
	if v := got[types.DimInseam]; v < lower || v > upper {
		t.Fatalf("inseam = %v outside reference-anchored [%v, %v]", v, lower, upper)
	}
}

func TestValidateMeasurements_MissingDimensionsGetBandMidpoint(t *testing.T) {
	svc := NewMeasurementService(testLogger(t))

	got := svc.ValidateMeasurements(types.MeasurementSet{}, 0)

	if got[types.DimHeight] != defaultHeightCM {
		t.Fatalf("height = %v, want default %v", got[types.DimHeight], defaultHeightCM)
	}
	band := heightProportions[types.DimChest]
	mid := defaultHeightCM * (band.minRatio + band.maxRatio) / 2
	if v := got[types.DimChest]; math.Abs(v-mid) > 0.5 {
		t.Fatalf("chest = %v, want near band midpoint %v", v, mid)
	}
	if len(got) != len(heightProportions)+1 {
		t.Fatalf("expected complete measurement set, got %d entries", len(got))
	}
}

func TestValidateMeasurements_Idempotent(t *testing.T) {
	svc := NewMeasurementService(testLogger(t))

	raw := types.MeasurementSet{
		types.DimHeight: 172.3,
		types.DimChest:  96.7,
		types.DimWaist:  81.2,
	}
	once := svc.ValidateMeasurements(raw, 0)
	twice := svc.ValidateMeasurements(once, 0)

	for dim, v := range once {
		if twice[dim] != v {
			t.Fatalf("%s changed on re-validation: %v -> %v", dim, v, twice[dim])
		}
	}
}

func frameLandmarks(noseY, ankleY float64) []types.PoseLandmark {
	landmarks := make([]types.PoseLandmark, 33)
	landmarks[landmarkNose] = types.PoseLandmark{X: 0.5, Y: noseY}
	landmarks[landmarkLeftAnkle] = types.PoseLandmark{X: 0.45, Y: ankleY}
	landmarks[landmarkRightAnkle] = types.PoseLandmark{X: 0.55, Y: ankleY}
	return landmarks
}

func TestAnalyzeFrame_Feedback(t *testing.T) {
	svc := NewMeasurementService(testLogger(t))

	tests := []struct {
		name        string
		landmarks   []types.PoseLandmark
		wantStatus  string
		wantMessage string
		wantQuality float64
	}{
		{
			name:        "no landmarks",
			landmarks:   nil,
			wantStatus:  types.FrameStatusBad,
			wantMessage: "No person detected",
			wantQuality: 0.0,
		},
		{
			name:        "truncated landmark list",
			landmarks:   make([]types.PoseLandmark, 10),
			wantStatus:  types.FrameStatusError,
			wantMessage: "Analysis failed",
			wantQuality: 0.0,
		},
		{
			name:        "feet below frame",
			landmarks:   frameLandmarks(0.10, 0.97),
			wantStatus:  types.FrameStatusWarning,
			wantMessage: "Feet not visible - Step Back",
			wantQuality: 0.5,
		},
		{
			name:        "head cut off",
			landmarks:   frameLandmarks(0.02, 0.90),
			wantStatus:  types.FrameStatusWarning,
			wantMessage: "Head cut off - Adjust Camera",
			wantQuality: 0.5,
		},
		{
			name:        "person too small",
			landmarks:   frameLandmarks(0.30, 0.60),
			wantStatus:  types.FrameStatusWarning,
			wantMessage: "Too far - Come Closer",
			wantQuality: 0.6,
		},
		{
			name:        "well framed",
			landmarks:   frameLandmarks(0.10, 0.90),
			wantStatus:  types.FrameStatusGood,
			wantMessage: "Perfect! Hold still...",
			wantQuality: 0.95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.AnalyzeFrame(tt.landmarks)
			if got.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.Message != tt.wantMessage {
				t.Fatalf("message = %q, want %q", got.Message, tt.wantMessage)
			}
			if got.Quality != tt.wantQuality {
				t.Fatalf("quality = %v, want %v", got.Quality, tt.wantQuality)
			}
		})
	}
}

func TestAnalyzeFrame_FeetRuleWinsOverHeadRule(t *testing.T) {
	svc := NewMeasurementService(testLogger(t))

	// Both conditions hold; feet visibility is checked first.
	got := svc.AnalyzeFrame(frameLandmarks(0.01, 0.99))
	if got.Message != "Feet not visible - Step Back" {
		t.Fatalf("message = %q, want feet warning", got.Message)
	}
}

func TestSelectBestFrame(t *testing.T) {
	svc := NewMeasurementService(testLogger(t))

	if _, err := svc.SelectBestFrame(nil); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("expected ErrNoFrames, got %v", err)
	}

	frames := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	got, err := svc.SelectBestFrame(frames)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "b" {
		t.Fatalf("selected frame = %q, want middle frame %q", got, "b")
	}
}
