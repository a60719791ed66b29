package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"waymate/config"
	sosSvc "waymate/services/sos"
	"waymate/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitEscalationWorker runs the async worker in background. It consumes the
// delayed escalation checks the SOS service enqueues at activation time.
func InitEscalationWorker(sos sosSvc.SOSService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSOSQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSOSEscalate, handleEscalationTask(sos))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[EscalationWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[EscalationWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[EscalationWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleEscalationTask(sos sosSvc.SOSService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.EscalationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[EscalationHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		log.Printf("[EscalationHandler] ⏰ Checking SOS for traveller %s (raised %s)",
			p.UserID, p.ActivatedAt.Format(time.RFC3339))

		// EscalatePending is a no-op when the SOS was assigned or resolved
		// between activation and now.
		if err := sos.EscalatePending(ctx, p.UserID); err != nil {
			log.Printf("[EscalationHandler] ❌ Escalation check failed: %v", err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSOSQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[EscalationWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
