package routes

import (
	"time"

	"courtside/handlers"
	"courtside/middleware"
	"courtside/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCourtRoutes registers the public availability views and court management.
func RegisterCourtRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/courts")
	{
		api.GET("/:courtID", hb.GetCourtHandler)
		api.GET("/:courtID/availability", hb.GetAvailabilityHandler)
		api.GET("/:courtID/slots", hb.GetTimeSlotsHandler)

		// Facility owners and admins only; ownership is checked per court.
		managed := api.Group("")
		managed.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleFacilityOwner, models.RoleAdmin))
		managed.PATCH("/:courtID", hb.UpdateCourtHandler)
		managed.DELETE("/:courtID", hb.DeleteCourtHandler)
		managed.POST("/:courtID/blocks", hb.BlockHandler)
		managed.DELETE("/:courtID/blocks", hb.UnblockHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.ReserveHandler)
		api.GET("/:bookingID", hb.GetBookingHandler)
		api.POST("/:bookingID/cancel", hb.CancelHandler)
		api.PATCH("/:bookingID/payment", middleware.RequireRole(models.RoleFacilityOwner, models.RoleAdmin), hb.UpdatePaymentStatusHandler)
	}

	me := r.Group("/api/users/me")
	{
		me.Use(middleware.JWTAuthMiddleware())
		me.GET("/bookings", hb.ListMyBookingsHandler)
	}
}

// RegisterFacilityRoutes registers endpoints scoped to one facility.
func RegisterFacilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/facilities/:facilityID")
	{
		api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleFacilityOwner, models.RoleAdmin))
		api.GET("/bookings", hb.ListFacilityBookingsHandler)
		api.POST("/courts", hb.CreateCourtHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
		adminGroup.POST("/reconcile", hb.ReconcileHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterCourtRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterFacilityRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
