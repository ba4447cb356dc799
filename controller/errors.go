package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github/itish2003/meetingcanvas/models"
	"github/itish2003/meetingcanvas/services"
)

// statusFor maps a service error to its HTTP status and error kind.
func statusFor(err error) (int, string) {
	var (
		validation *services.ValidationError
		config     *services.ConfigurationError
		upstream   *services.UpstreamError
		document   *services.DocumentError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "validation"
	case errors.As(err, &config):
		return http.StatusUnauthorized, "configuration"
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrCardNotFound),
		errors.Is(err, services.ErrInboxEntryNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "upstream"
	case errors.As(err, &document):
		return http.StatusUnprocessableEntity, "document"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// respondError writes one user-facing message for err. Internal errors are
// logged and hidden.
func respondError(ctx *gin.Context, logger *zap.Logger, err error) {
	status, kind := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		msg = "Internal server error"
	}
	ctx.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg, Kind: kind})
}

func respondBindError(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
		Error: "Invalid request body: " + err.Error(),
		Kind:  "validation",
	})
}
