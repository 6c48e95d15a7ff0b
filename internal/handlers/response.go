package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fitmirror/fitmirror-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondPipelineError maps the pipeline failure taxonomy onto HTTP statuses.
func RespondPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoFrames):
		RespondError(c, http.StatusBadRequest, "no_frames", err)
	case errors.Is(err, services.ErrServiceUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "service_unavailable", err)
	case errors.Is(err, services.ErrMalformedResponse):
		RespondError(c, http.StatusBadGateway, "malformed_response", err)
	case errors.Is(err, services.ErrInvalidSelection):
		RespondError(c, http.StatusBadGateway, "invalid_selection", err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
