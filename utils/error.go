package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler recovers from panics in later handlers and answers 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", rec),
					zap.String("method", c.Request.Method),
					zap.String("path", c.FullPath()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError aborts the request with a structured error body. 5xx responses
// are logged at error level, everything else at debug.
func JSONError(c *gin.Context, status int, code, message string) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("code", code),
		zap.String("path", c.FullPath()),
	}
	if status >= http.StatusInternalServerError {
		GetLogger().Error(message, fields...)
	} else {
		GetLogger().Debug(message, fields...)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}
