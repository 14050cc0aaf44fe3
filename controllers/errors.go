package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"field-booking/models"
	"field-booking/services"
)

func respondError(c *gin.Context, status int, code, message string, details any) {
	body := gin.H{"code": code, "message": message}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{"error": body})
}

func respondInvalidPayload(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "error.invalidPayload", "invalid request payload", gin.H{"reason": err.Error()})
}

// respondServiceError maps the booking engine's typed errors onto HTTP.
func respondServiceError(c *gin.Context, err error) {
	var (
		validation *services.ValidationError
		notFound   *services.NotFoundError
		conflict   *services.ConflictError
		guard      *services.GuardFailedError
		invalid    *services.InvalidStateError
	)

	switch {
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, "error.validation", validation.Error(), gin.H{"field": validation.Field})

	case errors.As(err, &notFound):
		respondError(c, http.StatusNotFound, "error."+notFound.Kind+"NotFound", notFound.Error(), gin.H{"id": notFound.ID})

	case errors.As(err, &conflict):
		first := conflict.First()
		respondError(c, http.StatusConflict, "error.slotConflict", conflict.Error(), gin.H{
			"resourceId":    conflict.ResourceID,
			"date":          conflict.Date,
			"requested":     models.FormatHourRange(conflict.StartHour, conflict.EndHour),
			"conflictId":    first.ID,
			"holderName":    first.HolderName,
			"holderContact": first.HolderContact,
			"timeRange":     first.TimeRange(),
		})

	case errors.As(err, &guard):
		respondError(c, http.StatusUnprocessableEntity, "error.guardFailed", guard.Error(), gin.H{
			"op":     guard.Op,
			"reason": guard.Reason,
		})

	case errors.As(err, &invalid):
		respondError(c, http.StatusConflict, "error.invalidState", invalid.Error(), gin.H{
			"status":        invalid.Status,
			"paymentStatus": invalid.PaymentStatus,
		})

	default:
		log.Printf("[http] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		respondError(c, http.StatusInternalServerError, "error.internal", "internal server error", gin.H{"reason": err.Error()})
	}
}
