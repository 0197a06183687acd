package api

import (
	"errors"
	"net/http"

	"ecofix/backend/go/internal/geocoding"
	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/internal/scoring"
	"ecofix/backend/go/internal/tracker_service/service"
	"ecofix/backend/go/pkg/circuitbreaker"

	"github.com/gin-gonic/gin"
)

// respondError 把业务错误映射为 HTTP 状态码，并记录 5xx 错误。
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		verr *service.ValidationError
		perr *scoring.ParseError
		merr *scoring.ModelError
	)
	status, kind := http.StatusInternalServerError, "internal_error"
	body := gin.H{"error": "internal server error"}

	switch {
	case errors.As(err, &verr):
		status, kind = http.StatusBadRequest, "validation_error"
		body = gin.H{"error": verr.Message, "field": verr.Field}
	case errors.As(err, &perr):
		status, kind = http.StatusUnprocessableEntity, "parse_error"
		body = gin.H{"error": "could not compute"}
	case errors.Is(err, service.ErrUserExists):
		status, kind = http.StatusConflict, "conflict"
		body = gin.H{"error": err.Error()}
	case errors.Is(err, service.ErrInvalidCredentials):
		status, kind = http.StatusUnauthorized, "auth_error"
		body = gin.H{"error": err.Error()}
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
		status, kind = http.StatusUnauthorized, "auth_error"
		body = gin.H{"error": err.Error()}
	case errors.Is(err, service.ErrAccountDisabled):
		status, kind = http.StatusForbidden, "auth_error"
		body = gin.H{"error": err.Error()}
	case errors.Is(err, circuitbreaker.ErrCircuitOpen),
		errors.Is(err, geocoding.ErrUnavailable),
		errors.Is(err, service.ErrPhotoStorageDisabled):
		status, kind = http.StatusServiceUnavailable, "unavailable"
		body = gin.H{"error": err.Error()}
	case errors.As(err, &merr), errors.Is(err, geocoding.ErrUpstream):
		// 上游失败返回 502，服务端熔断不计入
		status, kind = http.StatusBadGateway, "upstream_error"
		body = gin.H{"error": "upstream service failed"}
	}

	log := h.log.WithField("trace_id", c.GetString("traceID")).
		WithError(models.NewErrorInfo(err, kind, status))
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}
	c.AbortWithStatusJSON(status, body)
}
