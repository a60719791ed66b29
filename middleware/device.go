package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DeviceDetailsMiddleware extracts the device identity headers every
// authenticated request must carry; tokens are bound to a device.
func DeviceDetailsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetHeader("X-Device-ID")
		deviceName := c.GetHeader("X-Device-Name")
		if deviceID == "" || deviceName == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"status":  http.StatusBadRequest,
				"message": "Missing required device details: X-Device-ID and X-Device-Name",
			})
			return
		}

		c.Set("deviceID", deviceID)
		c.Set("deviceName", deviceName)
		c.Set("deviceIP", getClientIP(c))
		c.Next()
	}
}
