package sos

import (
	"context"

	supporterRepo "waymate/database/repository/supporter"
	travellerRepo "waymate/database/repository/traveller"
	"waymate/models"
	"waymate/services/notification"
	"waymate/services/tasks"
)

// SOSService defines the emergency coordination business logic shared by the
// traveler, supporter and admin surfaces.
type SOSService interface {
	// Activate starts an emergency for the traveler at the given position,
	// fans pushes out to available supporters and schedules an escalation
	// check. A fresh emergency always starts with an empty assignment list.
	Activate(ctx context.Context, userID string, lat, lng float64) (*models.Traveller, error)
	// Resolve retires the emergency: safety flag, sharing flag and
	// assignment list are cleared in one atomic write. resolvedBy is the
	// acting supporter or admin, empty for a traveler self-cancel.
	Resolve(ctx context.Context, userID, resolvedBy string) (*models.Traveller, error)
	// AssignSupporter adds a supporter to an active emergency. Duplicate
	// assignments are refused with ErrAlreadyAssigned and no write.
	AssignSupporter(ctx context.Context, userID, supporterID string) (*models.Traveller, error)
	// RemoveSupporter takes a supporter off an emergency.
	RemoveSupporter(ctx context.Context, userID, supporterID string) (*models.Traveller, error)
	// ListAll returns all active-or-recent emergencies for the admin console.
	ListAll() ([]models.SOSRecord, error)
	// ListForSupporter returns the emergencies one supporter can act on.
	ListForSupporter(supporterID string) ([]models.SOSRecord, error)
	// EscalatePending re-pings available supporters when the emergency is
	// still unassigned; a resolved or assigned case drops silently.
	EscalatePending(ctx context.Context, userID string) error
}

// DefaultSOSService is the production implementation.
type DefaultSOSService struct {
	Travellers travellerRepo.TravellerRepository
	Supporters supporterRepo.SupporterRepository
	Notifier   notification.NotificationService
	Escalator  *tasks.EscalationScheduler
}
