package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/services"
)

type RecommendationHandler struct {
	log     *logger.Logger
	scanSvc services.ScanService
	recSvc  services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, scanSvc services.ScanService, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:     log.With("handler", "RecommendationHandler"),
		scanSvc: scanSvc,
		recSvc:  recSvc,
	}
}

// GET /api/recommendations/:session_id
// The persisted recommendation batch for a scan, plus its color palette.
func (h *RecommendationHandler) GetForSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	scan, recs, err := h.scanSvc.GetScanBySession(c.Request.Context(), sessionID)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}

	colors, err := h.recSvc.RecommendColors(scan.SkinTone, scan.Undertone)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}
	if len(colors) > 5 {
		colors = colors[:5]
	}

	recommendedSize := ""
	recommendedFit := ""
	if len(recs) > 0 {
		recommendedSize = recs[0].RecommendedSize
		recommendedFit = recs[0].RecommendedFit
	}

	RespondOK(c, gin.H{
		"body_scan":          scan,
		"recommendations":    recs,
		"recommended_colors": colors,
		"recommended_size":   recommendedSize,
		"recommended_fit":    recommendedFit,
	})
}

// GET /api/recommendations/:session_id/variants?gender=&limit=
// Live variant matching against current inventory.
func (h *RecommendationHandler) GetMatchingVariants(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	limit := 10
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	gender := c.Query("gender")

	scan, _, err := h.scanSvc.GetScanBySession(c.Request.Context(), sessionID)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}

	matches, err := h.recSvc.GetMatchingProductVariants(c.Request.Context(), scan, gender, limit)
	if err != nil {
		h.log.Error("Variant matching failed", "session_id", sessionID, "error", err)
		RespondPipelineError(c, err)
		return
	}

	RespondOK(c, gin.H{"session_id": sessionID, "matches": matches})
}

// GET /api/recommendations/:session_id/styling
// Free-form styling advice from the vision service.
func (h *RecommendationHandler) GetStylingAdvice(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}

	scan, _, err := h.scanSvc.GetScanBySession(c.Request.Context(), sessionID)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}

	advice, err := h.recSvc.StylingAdvice(c.Request.Context(), scan)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}
	RespondOK(c, gin.H{"session_id": sessionID, "advice": advice})
}
