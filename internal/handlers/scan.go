package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/services"
	"github.com/fitmirror/fitmirror-backend/internal/types"
)

type ScanHandler struct {
	log     *logger.Logger
	scanSvc services.ScanService
}

func NewScanHandler(log *logger.Logger, scanSvc services.ScanService) *ScanHandler {
	return &ScanHandler{
		log:     log.With("handler", "ScanHandler"),
		scanSvc: scanSvc,
	}
}

type processScanRequest struct {
	FrontImage        string                `json:"front_image" binding:"required"`
	SideImage         string                `json:"side_image"`
	ReferenceHeightCM float64               `json:"reference_height_cm"`
	FaceBox           *types.NormalizedRect `json:"face_box"`
}

// POST /api/scan
// Processes a completed capture session and returns the scan result.
func (h *ScanHandler) ProcessScan(c *gin.Context) {
	var req processScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	frontImage, err := decodeBase64Image(req.FrontImage)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_front_image", err)
		return
	}

	var sideImage []byte
	if req.SideImage != "" {
		sideImage, err = decodeBase64Image(req.SideImage)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_side_image", err)
			return
		}
	}

	result, err := h.scanSvc.ProcessScan(c.Request.Context(), frontImage, sideImage, req.ReferenceHeightCM, req.FaceBox)
	if err != nil {
		h.log.Error("Scan processing failed", "error", err)
		RespondPipelineError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"success":          true,
		"session_id":       result.SessionID,
		"measurements":     result.Measurements,
		"body_shape":       result.BodyShape,
		"skin_tone":        result.SkinTone,
		"undertone":        result.Undertone,
		"confidence":       result.Confidence,
		"skin_tone_detail": result.SkinToneDetail,
	})
}

type analyzeFrameRequest struct {
	Landmarks []types.PoseLandmark `json:"landmarks"`
}

// POST /api/scan/frame
// Real-time framing feedback during capture. Runs at interactive cadence:
// no external calls, no persistence.
func (h *ScanHandler) AnalyzeFrame(c *gin.Context) {
	var req analyzeFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	RespondOK(c, h.scanSvc.AnalyzeFrame(req.Landmarks))
}

// decodeBase64Image tolerates data-URL prefixed payloads from browsers.
func decodeBase64Image(encoded string) ([]byte, error) {
	if idx := strings.IndexByte(encoded, ','); idx >= 0 {
		encoded = encoded[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return raw, nil
}
