package middleware

import (
	"net/http"

	userRepo "waymate/database/repository/user"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// SupporterOnlyMiddleware gates endpoints to accounts flagged as supporters.
// Must run after JWTAuthUserMiddleware.
func SupporterOnlyMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  http.StatusUnauthorized,
				"message": "Insufficient authorization",
			})
			return
		}

		proj := bson.M{"id": 1, "is_supporter": 1}
		u, err := users.GetByIDWithProjection(userID, proj)
		if err != nil || u == nil || !u.IsSupporter {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  http.StatusForbidden,
				"message": "Supporter access required",
			})
			return
		}

		c.Set("isSupporter", true)
		c.Next()
	}
}
