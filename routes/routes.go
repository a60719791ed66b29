package routes

import (
	"net/http"
	"time"

	"waymate/handlers"
	"waymate/middleware"
	"waymate/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers account and session endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	api.Use(middleware.DeviceDetailsMiddleware())
	{
		api.POST("/register", hb.User.RegisterUserHandler)
		api.POST("/login", hb.User.AuthenticateUserHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.GET("/me", hb.User.GetMeHandler)
		api.GET("/me/actor", hb.User.GetActorHandler)
		api.GET("/id/:id", hb.User.GetUserByIDHandler)
		api.POST("/fcm-token", hb.User.UpdateFCMTokenHandler)
		api.POST("/revoke", hb.User.RevokeUserAuthTokenHandler)
	}
}

// RegisterTravellerRoutes registers the emergency-record endpoints used by
// the traveler screen and the supporter feed.
func RegisterTravellerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/travellers")
	api.Use(middleware.DeviceDetailsMiddleware())
	api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
	{
		api.POST("", hb.Traveller.CreateTravellerHandler)
		api.GET("/id/:id", hb.Traveller.GetTravellerHandler)
		api.PATCH("/id/:id", hb.Traveller.UpdateTravellerHandler)

		api.POST("/id/:id/activate", hb.Traveller.ActivateSOSHandler)
		api.POST("/id/:id/resolve", hb.Traveller.ResolveSOSHandler)

		// Assignment endpoints are supporter-gated; the store-level add and
		// remove keep concurrent responders from clobbering each other.
		supporter := api.Group("")
		supporter.Use(middleware.SupporterOnlyMiddleware(hb.UserRepo))
		supporter.POST("/id/:id/contacts", hb.Traveller.AssignContactHandler)
		supporter.DELETE("/id/:id/contacts/:supporterId", hb.Traveller.RemoveContactHandler)
		supporter.GET("/sos/supporter/:id", hb.Traveller.GetSupporterFeedHandler)
	}

	// Console-token alias for the full emergency list.
	r.GET("/api/travellers/sos/all", middleware.AdminAuthMiddleware(), hb.Traveller.GetAllSOSHandler)
}

// RegisterSupporterRoutes registers roster management endpoints.
func RegisterSupporterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/supporters")
	api.Use(middleware.DeviceDetailsMiddleware())
	api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
	{
		api.POST("", hb.Supporter.EnrollHandler)
		api.GET("", hb.Supporter.ListHandler)
		api.GET("/with-user-info", hb.Supporter.ListWithUserInfoHandler)
		api.PATCH("/:id/availability", hb.Supporter.SetAvailabilityHandler)
		api.DELETE("/:id", hb.Supporter.WithdrawHandler)
	}
}

// RegisterStorageRoutes registers avatar upload endpoints.
func RegisterStorageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/storage")
	api.Use(middleware.DeviceDetailsMiddleware())
	api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
	{
		api.POST("/avatar", hb.Storage.UploadAvatarHandler)
		api.GET("/avatar/:publicId", hb.Storage.GetAvatarURLHandler)
	}
}

// RegisterAdminRoutes sets up the SOS console endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminAuthMiddleware())
		adminGroup.GET("/sos", hb.Traveller.GetAllSOSHandler)
		adminGroup.POST("/sos/:id/resolve", hb.Traveller.ResolveSOSHandler)
		adminGroup.POST("/sos/:id/contacts", hb.Traveller.AssignContactHandler)
		adminGroup.DELETE("/sos/:id/contacts/:supporterId", hb.Traveller.RemoveContactHandler)
		adminGroup.GET("/users", hb.User.GetAllUsersHandler)
		adminGroup.GET("/supporters", hb.Supporter.ListWithUserInfoHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Hi, I'm Waymate",
			"deps":    utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Device-ID", "X-Device-Name"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterUserRoutes(r, hb)
	RegisterTravellerRoutes(r, hb)
	RegisterSupporterRoutes(r, hb)
	RegisterStorageRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
