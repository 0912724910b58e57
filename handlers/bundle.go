package handlers

import (
	courtRepo "courtside/database/repository/court"
	"courtside/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Availability endpoints
	GetAvailabilityHandler gin.HandlerFunc
	GetTimeSlotsHandler    gin.HandlerFunc

	// Booking endpoints
	ReserveHandler              gin.HandlerFunc
	CancelHandler               gin.HandlerFunc
	GetBookingHandler           gin.HandlerFunc
	ListMyBookingsHandler       gin.HandlerFunc
	ListFacilityBookingsHandler gin.HandlerFunc
	UpdatePaymentStatusHandler  gin.HandlerFunc

	// Court endpoints
	CreateCourtHandler gin.HandlerFunc
	GetCourtHandler    gin.HandlerFunc
	UpdateCourtHandler gin.HandlerFunc
	DeleteCourtHandler gin.HandlerFunc
	BlockHandler       gin.HandlerFunc
	UnblockHandler     gin.HandlerFunc

	// Admin endpoints
	ReconcileHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle assembles every handler around one booking service.
func NewHandlerBundle(svc booking.BookingService, facilities courtRepo.FacilityRepository, logger *zap.Logger) *HandlerBundle {
	if logger == nil {
		logger = zap.NewNop()
	}
	access := &Access{Facilities: facilities, Service: svc}
	bookingHandler := NewBookingHandler(svc, access, logger)
	availabilityHandler := NewAvailabilityHandler(svc)
	courtHandler := NewCourtHandler(svc, access)
	adminHandler := NewAdminHandler(svc)

	return &HandlerBundle{
		GetAvailabilityHandler: availabilityHandler.GetAvailabilityHandler,
		GetTimeSlotsHandler:    availabilityHandler.GetTimeSlotsHandler,

		ReserveHandler:              bookingHandler.ReserveHandler,
		CancelHandler:               bookingHandler.CancelHandler,
		GetBookingHandler:           bookingHandler.GetBookingHandler,
		ListMyBookingsHandler:       bookingHandler.ListMyBookingsHandler,
		ListFacilityBookingsHandler: bookingHandler.ListFacilityBookingsHandler,
		UpdatePaymentStatusHandler:  bookingHandler.UpdatePaymentStatusHandler,

		CreateCourtHandler: courtHandler.CreateCourtHandler,
		GetCourtHandler:    courtHandler.GetCourtHandler,
		UpdateCourtHandler: courtHandler.UpdateCourtHandler,
		DeleteCourtHandler: courtHandler.DeleteCourtHandler,
		BlockHandler:       courtHandler.BlockHandler,
		UnblockHandler:     courtHandler.UnblockHandler,

		ReconcileHandler: adminHandler.ReconcileHandler,

		HealthHandler: HealthHandler,
	}
}
