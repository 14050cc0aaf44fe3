// controllers/reservation_controller.go
package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"field-booking/services"
	"field-booking/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateReservationPayload struct {
	ResourceID    string `json:"resourceId" binding:"required"`
	Date          string `json:"date" binding:"required"`
	StartHour     int    `json:"startHour" binding:"required"`
	DurationHours int    `json:"durationHours" binding:"required"`
	HolderName    string `json:"holderName" binding:"required"`
	HolderContact string `json:"holderContact" binding:"required"`
}

type ReschedulePayload struct {
	Date      string `json:"date" binding:"required"`
	StartHour int    `json:"startHour" binding:"required"`
}

type ReservationController struct {
	BookingSvc *services.BookingService
}

func NewReservationController(s *services.BookingService) *ReservationController {
	return &ReservationController{BookingSvc: s}
}

// GET /api/reservations?holder=
func (ctrl *ReservationController) ListReservations(c *gin.Context) {
	holder := strings.TrimSpace(c.Query("holder"))
	list, err := ctrl.BookingSvc.ListReservations(c.Request.Context(), holder)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.BookingSvc.Views(list))
}

// POST /api/reservations
func (ctrl *ReservationController) CreateReservation(c *gin.Context) {
	var payload CreateReservationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	res, err := ctrl.BookingSvc.CreateReservation(c.Request.Context(), services.BookingRequest{
		ResourceID:    payload.ResourceID,
		Date:          payload.Date,
		StartHour:     payload.StartHour,
		DurationHours: payload.DurationHours,
		HolderName:    payload.HolderName,
		HolderContact: payload.HolderContact,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, ctrl.BookingSvc.View(*res))
}

// GET /api/reservations/:id
func (ctrl *ReservationController) GetReservation(c *gin.Context) {
	res, err := ctrl.BookingSvc.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.BookingSvc.View(*res))
}

// POST /api/reservations/:id/pay
func (ctrl *ReservationController) PayReservation(c *gin.Context) {
	res, err := ctrl.BookingSvc.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.BookingSvc.View(*res))
}

// POST /api/reservations/:id/cancel
func (ctrl *ReservationController) CancelReservation(c *gin.Context) {
	res, err := ctrl.BookingSvc.CancelReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.BookingSvc.View(*res))
}

// POST /api/reservations/:id/complete
func (ctrl *ReservationController) CompleteReservation(c *gin.Context) {
	res, err := ctrl.BookingSvc.CompleteReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.BookingSvc.View(*res))
}

// POST /api/reservations/:id/reschedule/proposal
func (ctrl *ReservationController) ProposeReschedule(c *gin.Context) {
	var payload ReschedulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	proposal, err := ctrl.BookingSvc.ProposeReschedule(c.Request.Context(), c.Param("id"), payload.Date, payload.StartHour)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"reservation":    ctrl.BookingSvc.View(proposal.Reservation),
		"newDate":        proposal.NewDate,
		"newStartHour":   proposal.NewStartHour,
		"newTimeRange":   proposal.NewTimeRange(),
		"availableSlots": proposal.AvailableSlots,
		"slotAvailable":  proposal.SlotAvailable,
		"conflicts":      proposal.Conflicts,
	})
}

// POST /api/reservations/:id/reschedule
func (ctrl *ReservationController) ConfirmReschedule(c *gin.Context) {
	var payload ReschedulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondInvalidPayload(c, err)
		return
	}

	res, err := ctrl.BookingSvc.ConfirmReschedule(c.Request.Context(), c.Param("id"), payload.Date, payload.StartHour)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, ctrl.BookingSvc.View(*res))
}

// GET /api/reservations/:id/reschedules
func (ctrl *ReservationController) RescheduleHistory(c *gin.Context) {
	logs, err := ctrl.BookingSvc.RescheduleHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, logs)
}
