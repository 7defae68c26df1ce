package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/brightstudy/internal/client/tutor"
	"github.com/dmitrijs2005/brightstudy/internal/common"
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

// respondServiceError maps the sync and tutor sentinels to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrSyncInProgress):
		RespondError(c, http.StatusConflict, "sync_in_progress", err)
	case errors.Is(err, common.ErrDiscoveryFailed):
		RespondError(c, http.StatusBadGateway, "discovery_failed", err)
	case errors.Is(err, common.ErrUnknownKind):
		RespondError(c, http.StatusBadRequest, "unknown_kind", err)
	case errors.Is(err, common.ErrInvalidPayload):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, common.ErrorNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, tutor.ErrNotConfigured):
		RespondError(c, http.StatusServiceUnavailable, "ai_not_configured", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
