package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/gallon_backend/models"
)

// httpStatusForError is the single mapping from domain errors to responses.
func httpStatusForError(err error) (int, gin.H) {
	var insufficient *models.InsufficientAllowanceError
	var invalid *models.ValidationError

	switch {
	case errors.Is(err, models.ErrEmployeeNotFound):
		return http.StatusNotFound, gin.H{"error": "Employee not found or inactive."}
	case errors.Is(err, models.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity, gin.H{
			"error":  err.Error(),
			"fields": gin.H{"quantity": "between"},
		}
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity, gin.H{
			"error":     insufficient.Error(),
			"remaining": insufficient.Remaining,
		}
	case errors.Is(err, models.ErrDuplicateExternalId):
		return http.StatusConflict, gin.H{
			"error":  err.Error(),
			"fields": gin.H{"employee_id": "unique"},
		}
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"fields": invalid.Fields,
		}
	case errors.Is(err, models.ErrInvalidCredentials), errors.Is(err, models.ErrUserDisabled):
		return http.StatusUnauthorized, gin.H{"error": err.Error()}
	case errors.Is(err, models.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}
	}
}

// respondError writes the mapped response and records the error for customErrorLogger
// when it is not a client mistake.
func respondError(c *gin.Context, err error) {
	status, body := httpStatusForError(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
