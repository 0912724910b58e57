package handlers

import (
	"net/http"
	"strconv"

	"courtside/services/booking"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler serves the read-only availability views.
type AvailabilityHandler struct {
	Service booking.BookingService
}

func NewAvailabilityHandler(svc booking.BookingService) *AvailabilityHandler {
	return &AvailabilityHandler{Service: svc}
}

func dateQuery(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if date == "" {
		invalidParam(c, "date query parameter is required (YYYY-MM-DD)")
		return "", false
	}
	return date, true
}

// GetAvailabilityHandler handles GET /api/courts/:courtID/availability?date=.
func (h *AvailabilityHandler) GetAvailabilityHandler(c *gin.Context) {
	date, ok := dateQuery(c)
	if !ok {
		return
	}
	resp, err := h.Service.Availability(c.Request.Context(), c.Param("courtID"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTimeSlotsHandler handles GET /api/courts/:courtID/slots?date=&available=.
func (h *AvailabilityHandler) GetTimeSlotsHandler(c *gin.Context) {
	date, ok := dateQuery(c)
	if !ok {
		return
	}
	availableOnly := false
	if raw := c.Query("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalidParam(c, "available must be true or false")
			return
		}
		availableOnly = v
	}

	slots, err := h.Service.TimeSlots(c.Request.Context(), c.Param("courtID"), date, availableOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courtId": c.Param("courtID"), "date": date, "slots": slots})
}
