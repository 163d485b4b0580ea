package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/hackcampus/apply-backend/internal/apperrors"
)

// respondError translates a service error into an HTTP response. Validation
// failures expose the offending field names and nothing else; storage
// failures collapse to a generic server error so internals never leak.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	status := apperrors.HTTPStatus(appErr)
	switch {
	case appErr.Code == apperrors.CodeValidation && len(appErr.Fields) > 0:
		c.JSON(status, gin.H{"errors": appErr.Fields})
	case appErr.Reason != "":
		c.JSON(status, gin.H{"error": appErr.Reason, "message": appErr.Message})
	case appErr.Code == apperrors.CodeStorage:
		c.JSON(status, gin.H{"error": "internal server error"})
	default:
		c.JSON(status, gin.H{"error": appErr.Message})
	}
}

// bindingFields pulls the wire-format field names out of a gin binding
// failure. Malformed JSON has no fields to report.
func bindingFields(err error) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fieldErr := range verrs {
			fields = append(fields, fieldErr.Field())
		}
		return fields
	}
	return nil
}

func respondBindingError(c *gin.Context, err error) {
	fields := bindingFields(err)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
