package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/repos"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

const (
	// Frames are downscaled before the vision call; anything larger buys no
	// accuracy and slows the round trip.
	visionMaxDimension = 1024
	visionJPEGQuality  = 85
)

// ScanResult is the user-facing outcome of one processed capture session.
type ScanResult struct {
	SessionID       uuid.UUID               `json:"session_id"`
	Measurements    types.MeasurementSet    `json:"measurements"`
	BodyShape       string                  `json:"body_shape"`
	SkinTone        string                  `json:"skin_tone"`
	Undertone       string                  `json:"undertone"`
	Confidence      float64                 `json:"confidence"`
	SkinToneDetail  types.SkinToneResult    `json:"skin_tone_detail"`
	Recommendations []*types.Recommendation `json:"recommendations"`
}

type ScanService interface {
	ProcessScan(ctx context.Context, frontImage []byte, sideImage []byte, referenceHeightCM float64, faceBox *types.NormalizedRect) (*ScanResult, error)
	AnalyzeFrame(landmarks []types.PoseLandmark) types.FrameFeedback
	GetScanBySession(ctx context.Context, sessionID uuid.UUID) (*types.BodyScan, []*types.Recommendation, error)
}

type scanService struct {
	db             *gorm.DB
	log            *logger.Logger
	gemini         GeminiClient
	measurementSvc *MeasurementService
	skinToneSvc    *SkinToneService
	recService     RecommendationService
	bodyScanRepo   repos.BodyScanRepo
	recRepo        repos.RecommendationRepo
}

func NewScanService(
	db *gorm.DB,
	log *logger.Logger,
	gemini GeminiClient,
	measurementSvc *MeasurementService,
	skinToneSvc *SkinToneService,
	recService RecommendationService,
	bodyScanRepo repos.BodyScanRepo,
	recRepo repos.RecommendationRepo,
) ScanService {
	return &scanService{
		db:             db,
		log:            log.With("service", "ScanService"),
		gemini:         gemini,
		measurementSvc: measurementSvc,
		skinToneSvc:    skinToneSvc,
		recService:     recService,
		bodyScanRepo:   bodyScanRepo,
		recRepo:        recRepo,
	}
}

func validBodyShape(shape string) string {
	switch shape {
	case types.ShapeHourglass, types.ShapeRectangle, types.ShapeTriangle,
		types.ShapeInvertedTriangle, types.ShapeOval:
		return shape
	default:
		return types.ShapeRectangle
	}
}

// ProcessScan runs the full measurement pipeline on one capture session:
// vision-model extraction, measurement validation, skin-tone classification,
// scan persistence and recommendation generation.
func (ss *scanService) ProcessScan(ctx context.Context, frontImage []byte, sideImage []byte, referenceHeightCM float64, faceBox *types.NormalizedRect) (*ScanResult, error) {
	if len(frontImage) == 0 {
		return nil, fmt.Errorf("front image is required: %w", ErrNoFrames)
	}

	frontImg, _, err := image.Decode(bytes.NewReader(frontImage))
	if err != nil {
		return nil, fmt.Errorf("decoding front image: %w", err)
	}

	frontForVision, err := encodeForVision(frontImg)
	if err != nil {
		return nil, fmt.Errorf("preparing front image: %w", err)
	}

	var sideForVision []byte
	if len(sideImage) > 0 {
		sideImg, _, err := image.Decode(bytes.NewReader(sideImage))
		if err != nil {
			return nil, fmt.Errorf("decoding side image: %w", err)
		}
		sideForVision, err = encodeForVision(sideImg)
		if err != nil {
			return nil, fmt.Errorf("preparing side image: %w", err)
		}
	}

	analysis, err := ss.gemini.AnalyzeBody(ctx, frontForVision, sideForVision, referenceHeightCM)
	if err != nil {
		return nil, err
	}

	measurements := ss.measurementSvc.ValidateMeasurements(analysis.Measurements, referenceHeightCM)

	toneResult := ss.skinToneSvc.ClassifyImage(frontImg, faceSampleRegions(frontImg, faceBox))

	scan := &types.BodyScan{
		SessionID:     uuid.New(),
		Height:        measurements[types.DimHeight],
		ShoulderWidth: measurements[types.DimShoulderWidth],
		Chest:         measurements[types.DimChest],
		Waist:         measurements[types.DimWaist],
		Hip:           measurements[types.DimHip],
		TorsoLength:   measurements[types.DimTorsoLength],
		ArmLength:     measurements[types.DimArmLength],
		Inseam:        measurements[types.DimInseam],
		BodyShape:     validBodyShape(analysis.BodyShape),
		SkinTone:      toneResult.SkinTone,
		Undertone:     toneResult.Undertone,
		Confidence:    analysis.Confidence,
	}
	if _, err := ss.bodyScanRepo.Create(ctx, nil, []*types.BodyScan{scan}); err != nil {
		return nil, fmt.Errorf("persisting body scan: %w", err)
	}

	recs, err := ss.recService.GenerateRecommendationsForScan(ctx, scan)
	if err != nil {
		return nil, err
	}

	ss.log.Info("Scan processed",
		"session_id", scan.SessionID,
		"body_shape", scan.BodyShape,
		"skin_tone", scan.SkinTone,
		"recommendations", len(recs),
	)

	return &ScanResult{
		SessionID:       scan.SessionID,
		Measurements:    measurements,
		BodyShape:       scan.BodyShape,
		SkinTone:        scan.SkinTone,
		Undertone:       scan.Undertone,
		Confidence:      scan.Confidence,
		SkinToneDetail:  toneResult,
		Recommendations: recs,
	}, nil
}

func (ss *scanService) AnalyzeFrame(landmarks []types.PoseLandmark) types.FrameFeedback {
	return ss.measurementSvc.AnalyzeFrame(landmarks)
}

func (ss *scanService) GetScanBySession(ctx context.Context, sessionID uuid.UUID) (*types.BodyScan, []*types.Recommendation, error) {
	scan, err := ss.bodyScanRepo.GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, nil, err
	}
	recs, err := ss.recRepo.ListByScanID(ctx, nil, scan.ID)
	if err != nil {
		return nil, nil, err
	}
	return scan, recs, nil
}

// faceSampleRegions converts the client-reported face box to a pixel region,
// shrunk to its center half to avoid hair and background bleeding into the
// sample. Nil when no face box was reported; the classifier then falls back
// to its center-of-image sample.
func faceSampleRegions(img image.Image, faceBox *types.NormalizedRect) []image.Rectangle {
	if faceBox == nil || faceBox.Width <= 0 || faceBox.Height <= 0 {
		return nil
	}
	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	x := float64(bounds.Min.X) + faceBox.XMin*w
	y := float64(bounds.Min.Y) + faceBox.YMin*h
	bw := faceBox.Width * w
	bh := faceBox.Height * h

	center := image.Rect(
		int(x+bw/4),
		int(y+bh/4),
		int(x+bw/4+bw/2),
		int(y+bh/4+bh/2),
	)
	return []image.Rectangle{center}
}

// encodeForVision downscales a frame to the vision call's working resolution
// and re-encodes it as JPEG.
func encodeForVision(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > visionMaxDimension || h > visionMaxDimension {
		scale := float64(visionMaxDimension) / float64(w)
		if h > w {
			scale = float64(visionMaxDimension) / float64(h)
		}
		dstW := int(float64(w) * scale)
		dstH := int(float64(h) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: visionJPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
