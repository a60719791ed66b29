package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	userRepo "waymate/database/repository/user"
	"waymate/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
)

// JWTAuthUserMiddleware authenticates a user+device bound token, consulting
// the Redis auth cache before falling back to the user document.
func JWTAuthUserMiddleware(userRepo userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Recover from unexpected panics.
		defer func() {
			if r := recover(); r != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"status":  http.StatusInternalServerError,
					"message": "Internal server error",
				})
			}
		}()

		ctx := context.Background()

		// Retrieve token from header.
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			abortUnauthorized(c)
			return
		}

		// Extract both user ID and device ID from the token.
		userID, tokenDeviceID, err := utils.ExtractIDsFromToken(tokenString)
		if err != nil || userID == "" || tokenDeviceID == "" {
			abortUnauthorized(c)
			return
		}

		// Retrieve device ID from context (set by DeviceDetailsMiddleware).
		ctxDeviceID := c.GetString("deviceID")
		if ctxDeviceID == "" || tokenDeviceID != ctxDeviceID {
			abortUnauthorized(c)
			return
		}

		computedHash := utils.HashToken(tokenString)

		// Build composite cache key using userID and deviceID.
		cacheKey := utils.AuthCachePrefix + userID + ":" + tokenDeviceID

		authCache := utils.GetAuthCacheClient()
		cacheEnabled := authCache != nil

		// Attempt to retrieve the token hash from Redis if cache is enabled.
		if cacheEnabled {
			cachedHash, err := authCache.Get(ctx, cacheKey).Result()
			if err == nil {
				if cachedHash == computedHash {
					_ = authCache.Expire(ctx, cacheKey, utils.AuthCacheTTL).Err()
					c.Set("userID", userID)
					c.Next()
					return
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"status":  http.StatusUnauthorized,
					"message": "Token mismatch",
				})
				return
			} else if err != redis.Nil {
				log.Printf("WARNING: Error retrieving auth cache key: %v. Falling back to DB lookup.", err)
			}
		}

		// Cache miss: Query the database.
		proj := bson.M{"id": 1, "devices": 1}
		usr, err := userRepo.GetByIDWithProjection(userID, proj)
		if err != nil || usr == nil {
			abortUnauthorized(c)
			return
		}

		// Find the device with the matching deviceID in the user's devices.
		var deviceTokenHash string
		for _, d := range usr.Devices {
			if d.DeviceID == tokenDeviceID {
				deviceTokenHash = d.TokenHash
				break
			}
		}

		if deviceTokenHash == "" || deviceTokenHash != computedHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  http.StatusUnauthorized,
				"message": "Token mismatch",
			})
			return
		}

		if cacheEnabled {
			_ = authCache.Set(ctx, cacheKey, computedHash, utils.AuthCacheTTL).Err()
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  http.StatusUnauthorized,
		"message": "Insufficient authorization",
	})
}
