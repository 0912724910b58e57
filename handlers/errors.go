package handlers

import (
	"errors"
	"net/http"

	"courtside/services/booking"
	"courtside/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var reasonStatus = map[booking.Reason]int{
	booking.ReasonInvalidWindow:     http.StatusBadRequest,
	booking.ReasonOutOfWindow:       http.StatusBadRequest,
	booking.ReasonPastOrTooSoon:     http.StatusBadRequest,
	booking.ReasonInvalidTransition: http.StatusBadRequest,
	booking.ReasonNotOwner:          http.StatusForbidden,
	booking.ReasonNotFound:          http.StatusNotFound,
	booking.ReasonConflict:          http.StatusConflict,
	booking.ReasonAlreadyTerminal:   http.StatusConflict,
	booking.ReasonTooLate:           http.StatusConflict,
	booking.ReasonCourtInactive:     http.StatusConflict,
}

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	if re, ok := booking.AsRejected(err); ok {
		status, known := reasonStatus[re.Reason]
		if !known {
			status = http.StatusBadRequest
		}
		utils.JSONError(c, status, string(re.Reason), re.Message)
		return
	}
	if errors.Is(err, booking.ErrUnavailable) {
		zap.L().Error("Booking storage unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusServiceUnavailable, "Unavailable", "Booking storage is temporarily unavailable, try again later")
		return
	}
	zap.L().Error("Unexpected handler error", zap.String("path", c.FullPath()), zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "Internal", "Internal Server Error")
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "BadRequest", "invalid input: "+err.Error())
}

func forbidden(c *gin.Context) {
	utils.JSONError(c, http.StatusForbidden, string(booking.ReasonNotOwner), "You do not manage this resource")
}

func invalidParam(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusBadRequest, "BadRequest", message)
}
