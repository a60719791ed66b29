package sos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waymate/config"
	travellerRepo "waymate/database/repository/traveller"
	"waymate/models"
	"waymate/utils"

	"go.uber.org/zap"
)

// Activate starts an emergency. The store write is atomic; push fan-out and
// escalation scheduling are best effort and never fail the activation.
func (s *DefaultSOSService) Activate(ctx context.Context, userID string, lat, lng float64) (*models.Traveller, error) {
	t, err := s.Travellers.Activate(userID, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("sos: failed to activate emergency for %s: %w", userID, err)
	}

	s.notifySupporters(ctx, t, "SOS alert", "A traveler nearby needs help. Open Waymate to respond.")

	if s.Escalator != nil {
		if err := s.Escalator.Schedule(userID, t.UpdatedAt, config.SOSEscalationDelay()); err != nil {
			utils.GetLogger().Warn("sos: failed to schedule escalation", zap.String("userId", userID), zap.Error(err))
		}
	}

	return t, nil
}

// Resolve retires the emergency and tells the traveler who resolved it.
func (s *DefaultSOSService) Resolve(ctx context.Context, userID, resolvedBy string) (*models.Traveller, error) {
	t, err := s.Travellers.Resolve(userID)
	if err != nil {
		return nil, fmt.Errorf("sos: failed to resolve emergency for %s: %w", userID, err)
	}

	// A self-cancel needs no push; the traveler already knows.
	if resolvedBy != "" && resolvedBy != userID {
		s.push(ctx, userID, "You have been marked safe",
			"A supporter closed your SOS. Reach out again any time you need help.",
			map[string]string{"type": "sos_resolved", "resolved_by": resolvedBy})
	}

	return t, nil
}

// AssignSupporter adds a supporter to the emergency's contact list. The
// duplicate check is advisory; the store-level $addToSet is what guarantees
// uniqueness under concurrent assignment.
func (s *DefaultSOSService) AssignSupporter(ctx context.Context, userID, supporterID string) (*models.Traveller, error) {
	sup, err := s.Supporters.GetByID(supporterID)
	if err != nil {
		return nil, fmt.Errorf("sos: failed to look up supporter %s: %w", supporterID, err)
	}
	if sup == nil {
		return nil, ErrNotSupporter
	}

	t, added, err := s.Travellers.AddContact(userID, supporterID)
	if err != nil {
		if errors.Is(err, travellerRepo.ErrNoActiveEmergency) {
			return nil, ErrNoActiveEmergency
		}
		return nil, fmt.Errorf("sos: failed to assign supporter: %w", err)
	}
	if !added {
		return nil, ErrAlreadyAssigned
	}

	s.push(ctx, supporterID, "You have been assigned to an SOS",
		"A traveler is counting on you. Open Waymate for their location.",
		map[string]string{"type": "sos_assigned", "traveller_id": userID})

	return t, nil
}

// RemoveSupporter takes a supporter off the emergency.
func (s *DefaultSOSService) RemoveSupporter(ctx context.Context, userID, supporterID string) (*models.Traveller, error) {
	t, err := s.Travellers.RemoveContact(userID, supporterID)
	if err != nil {
		return nil, fmt.Errorf("sos: failed to remove supporter: %w", err)
	}
	return t, nil
}

// ListAll returns all active-or-recent emergencies.
func (s *DefaultSOSService) ListAll() ([]models.SOSRecord, error) {
	return s.Travellers.GetAllSOS()
}

// ListForSupporter returns emergencies relevant to one supporter.
func (s *DefaultSOSService) ListForSupporter(supporterID string) ([]models.SOSRecord, error) {
	return s.Travellers.GetSOSForSupporter(supporterID)
}

// EscalatePending re-pings available supporters if the emergency is still
// unassigned when the delayed escalation task fires.
func (s *DefaultSOSService) EscalatePending(ctx context.Context, userID string) error {
	t, err := s.Travellers.GetByID(userID)
	if err != nil {
		return fmt.Errorf("sos: escalation lookup failed for %s: %w", userID, err)
	}

	if models.DeriveStatus(t) != models.StatusPending {
		return nil
	}

	s.notifySupporters(ctx, t, "SOS still unanswered",
		"An emergency has had no response yet. Please check if you can help.")
	return nil
}

// notifySupporters pushes to every available supporter. Individual push
// failures are logged, not propagated: one stale token must not silence the
// rest of the fan-out.
func (s *DefaultSOSService) notifySupporters(ctx context.Context, t *models.Traveller, title, body string) {
	logger := utils.GetLogger()

	supporters, err := s.Supporters.GetAvailable()
	if err != nil {
		logger.Error("sos: failed to list available supporters", zap.Error(err))
		return
	}

	data := map[string]string{
		"type":         "sos_alert",
		"traveller_id": t.UserID,
		"latitude":     fmt.Sprintf("%f", t.Latitude),
		"longitude":    fmt.Sprintf("%f", t.Longitude),
		"raised_at":    t.UpdatedAt.Format(time.RFC3339),
	}

	for _, sup := range supporters {
		if sup.UserID == t.UserID {
			continue
		}
		if err := s.Notifier.SendEmergencyPush(ctx, sup.UserID, title, body, data); err != nil {
			logger.Warn("sos: push to supporter failed",
				zap.String("supporterId", sup.UserID), zap.Error(err))
		}
	}
}

func (s *DefaultSOSService) push(ctx context.Context, userID, title, body string, data map[string]string) {
	if err := s.Notifier.SendEmergencyPush(ctx, userID, title, body, data); err != nil {
		utils.GetLogger().Warn("sos: push failed", zap.String("userId", userID), zap.Error(err))
	}
}
