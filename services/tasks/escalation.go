package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"waymate/config"

	"github.com/hibiken/asynq"
)

const TypeSOSEscalate = "sos:escalate"

// EscalationPayload identifies the emergency to re-check when the delayed
// task fires.
type EscalationPayload struct {
	UserID      string    `json:"userId"`
	ActivatedAt time.Time `json:"activatedAt"`
}

// NewEscalationTask builds a delayed task that re-pings supporters if the
// emergency is still unassigned when it fires.
func NewEscalationTask(payload EscalationPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSOSEscalate, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// EscalationScheduler enqueues escalation tasks onto the SOS queue.
type EscalationScheduler struct {
	client *asynq.Client
}

// NewEscalationScheduler creates a scheduler backed by the configured Redis queue.
func NewEscalationScheduler() *EscalationScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSOSQueueDB,
	})
	return &EscalationScheduler{client: client}
}

// Schedule enqueues an escalation check for the given traveller.
func (s *EscalationScheduler) Schedule(userID string, activatedAt time.Time, delay time.Duration) error {
	task, opts, err := NewEscalationTask(EscalationPayload{
		UserID:      userID,
		ActivatedAt: activatedAt,
	}, activatedAt.Add(delay))
	if err != nil {
		return fmt.Errorf("failed to build escalation task: %w", err)
	}
	if _, err := s.client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue escalation task: %w", err)
	}
	return nil
}

// Close releases the underlying asynq client.
func (s *EscalationScheduler) Close() error {
	return s.client.Close()
}
