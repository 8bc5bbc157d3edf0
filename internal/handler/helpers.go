package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/portfolio/internal/middleware"
	appErr "github.com/xxxsen/portfolio/internal/pkg/errors"
	"github.com/xxxsen/portfolio/internal/pkg/response"
)

func getUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}

// handleError writes the response for err. fallback is the message used for
// unexpected failures.
func handleError(c *gin.Context, err error, fallback string) {
	if err == nil {
		return
	}
	status, message, detail := classify(err, fallback)
	fields := []zap.Field{
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Int("status", status),
		zap.Error(err),
	}
	logger := logutil.GetLogger(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}
	response.Error(c, status, message, detail)
}

func classify(err error, fallback string) (int, string, string) {
	switch {
	case errors.Is(err, appErr.ErrTooMany):
		return http.StatusTooManyRequests, "Too many requests, please try again later", ""
	case errors.Is(err, appErr.ErrConflict):
		return http.StatusBadRequest, "User with this email or username already exists", ""
	case errors.Is(err, appErr.ErrAuthFailed):
		return http.StatusUnauthorized, "Invalid email or password", ""
	case errors.Is(err, appErr.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token", ""
	case errors.Is(err, appErr.ErrUnauthorized):
		return http.StatusUnauthorized, "No token provided", ""
	case errors.Is(err, appErr.ErrNoCode):
		return http.StatusBadRequest, "No verification code found", ""
	case errors.Is(err, appErr.ErrExpired):
		return http.StatusBadRequest, "Verification code expired", ""
	case errors.Is(err, appErr.ErrMismatch):
		return http.StatusBadRequest, "Invalid verification code", ""
	case errors.Is(err, appErr.ErrInvalid):
		return http.StatusBadRequest, "Invalid request", ""
	case errors.Is(err, appErr.ErrNotFound):
		return http.StatusNotFound, "User not found", ""
	case errors.Is(err, appErr.ErrNotification):
		return http.StatusInternalServerError, "Error sending email", err.Error()
	default:
		return http.StatusInternalServerError, fallback, err.Error()
	}
}
