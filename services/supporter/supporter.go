package supporter

import (
	"fmt"

	"waymate/models"
)

// Enroll puts the user on the roster, available by default, and flips the
// account's supporter flag so the feed starts polling for them.
func (s *DefaultSupporterService) Enroll(userID string) (*models.Supporter, error) {
	u, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("supporter: cannot enroll unknown user %s: %w", userID, err)
	}

	sup := &models.Supporter{UserID: userID, IsAvailable: true}
	if err := s.Repo.Upsert(sup); err != nil {
		return nil, fmt.Errorf("supporter: failed to enroll %s: %w", userID, err)
	}

	if !u.IsSupporter {
		u.IsSupporter = true
		if err := s.Users.Update(u); err != nil {
			return nil, fmt.Errorf("supporter: failed to flag user %s: %w", userID, err)
		}
	}

	return sup, nil
}

// Withdraw removes the user from the roster and clears the account flag.
func (s *DefaultSupporterService) Withdraw(userID string) error {
	if err := s.Repo.Delete(userID); err != nil {
		return fmt.Errorf("supporter: failed to withdraw %s: %w", userID, err)
	}

	u, err := s.Users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("supporter: failed to load user %s: %w", userID, err)
	}
	if u.IsSupporter {
		u.IsSupporter = false
		if err := s.Users.Update(u); err != nil {
			return fmt.Errorf("supporter: failed to unflag user %s: %w", userID, err)
		}
	}
	return nil
}

// SetAvailability toggles whether the supporter receives SOS fan-out.
func (s *DefaultSupporterService) SetAvailability(userID string, available bool) error {
	return s.Repo.SetAvailability(userID, available)
}

// List returns the raw roster.
func (s *DefaultSupporterService) List() ([]models.Supporter, error) {
	return s.Repo.GetAll()
}

// ListWithUserInfo returns the roster joined with display fields.
func (s *DefaultSupporterService) ListWithUserInfo() ([]models.SupporterInfo, error) {
	return s.Repo.GetAllWithUserInfo()
}
