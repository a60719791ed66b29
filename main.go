// File: waymate/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waymate/config"
	"waymate/cron"
	"waymate/database"
	supporterRepoPkg "waymate/database/repository/supporter"
	travellerRepoPkg "waymate/database/repository/traveller"
	userRepoPkg "waymate/database/repository/user"
	"waymate/handlers"
	"waymate/routes"
	"waymate/services/notification"
	"waymate/services/sos"
	"waymate/services/supporter"
	"waymate/services/tasks"
	"waymate/services/user"
	"waymate/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	travellerRepo := travellerRepoPkg.NewMongoTravellerRepo()
	supporterRepo := supporterRepoPkg.NewMongoSupporterRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// services.
	notificationService, err := notification.NewDefaultNotificationService(userRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	escalator := tasks.NewEscalationScheduler()
	defer escalator.Close()

	sosService := &sos.DefaultSOSService{
		Travellers: travellerRepo,
		Supporters: supporterRepo,
		Notifier:   notificationService,
		Escalator:  escalator,
	}

	supporterService := &supporter.DefaultSupporterService{
		Repo:  supporterRepo,
		Users: userRepo,
	}

	userService := &user.DefaultUserService{
		Repo:       userRepo,
		Travellers: travellerRepo,
	}

	// Assemble the handler bundle.
	handlerBundle := handlers.NewHandlerBundle(
		travellerRepo,
		userRepo,
		sosService,
		supporterService,
		userService,
		cloudinaryStorageService,
	)

	routes.RegisterRoutes(router, handlerBundle)

	// Background escalation worker and health monitor.
	cron.InitEscalationWorker(sosService)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.CacheClient, utils.AuthCacheClient},
		database.MongoClient,
	)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("main: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
}
