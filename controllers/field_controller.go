package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"field-booking/services"
	"field-booking/utils"
)

type FieldController struct {
	BookingSvc *services.BookingService
}

func NewFieldController(s *services.BookingService) *FieldController {
	return &FieldController{BookingSvc: s}
}

// GET /api/fields
func (ctrl *FieldController) GetFields(c *gin.Context) {
	fields, err := ctrl.BookingSvc.ListResources(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, fields)
}

// GET /api/fields/:id
func (ctrl *FieldController) GetField(c *gin.Context) {
	field, err := ctrl.BookingSvc.GetResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, field)
}

// GET /api/fields/:id/availability?date=YYYY-MM-DD&exclude=<reservationId>
func (ctrl *FieldController) GetAvailability(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		respondError(c, http.StatusBadRequest, "error.missingDate", "query parameter date is required", nil)
		return
	}

	id := c.Param("id")
	slots, err := ctrl.BookingSvc.AvailableSlots(c.Request.Context(), id, date, c.Query("exclude"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"resourceId":     id,
		"date":           date,
		"operatingHours": services.OperatingHours(),
		"availableSlots": slots,
	})
}
