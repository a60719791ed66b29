package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope is the response wrapper the mobile and web clients expect.
// Status mirrors the HTTP status so clients can branch on the body alone.
type Envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSONData sends a success envelope with the given payload.
func JSONData(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Status: status, Data: data})
}

// JSONError sends a standardized JSON error envelope.
func JSONError(c *gin.Context, status int, message string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.Int("status", status))
	c.JSON(status, Envelope{Status: status, Message: message})
}

// ErrorHandler is a middleware to catch panics and return structured errors.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, Envelope{
					Status:  http.StatusInternalServerError,
					Message: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
