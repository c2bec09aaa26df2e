package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Allono07/live-event-validation-netcore/internal/errors"
)

// isNotFound reports whether err is a not-found application error.
func isNotFound(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.StatusCode == http.StatusNotFound
}

// errMessage returns the user-facing message for an error.
func errMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// respondError maps service errors to the API's error envelope.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, gin.H{
			"error":  appErr.Message,
			"status": appErr.StatusCode,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":  "Internal server error",
		"status": http.StatusInternalServerError,
	})
}
