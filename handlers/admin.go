package handlers

import (
	"net/http"

	"courtside/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes maintenance operations to administrators.
type AdminHandler struct {
	Service booking.BookingService
}

func NewAdminHandler(svc booking.BookingService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

// ReconcileHandler recomputes one court day of the index from the ledger and blocks.
func (ah *AdminHandler) ReconcileHandler(c *gin.Context) {
	var input struct {
		CourtID string `json:"courtId" binding:"required"`
		Date    string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	warnings, err := ah.Service.Reconcile(c.Request.Context(), input.CourtID, input.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(warnings) > 0 {
		zap.L().Warn("Reconcile reported inconsistencies",
			zap.String("courtID", input.CourtID),
			zap.String("date", input.Date),
			zap.Strings("warnings", warnings),
		)
	}
	c.JSON(http.StatusOK, gin.H{"courtId": input.CourtID, "date": input.Date, "warnings": warnings})
}
