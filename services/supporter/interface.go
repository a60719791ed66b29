package supporter

import (
	supporterRepo "waymate/database/repository/supporter"
	userRepo "waymate/database/repository/user"
	"waymate/models"
)

// SupporterService defines roster management for SOS responders.
type SupporterService interface {
	// Enroll puts a user on the supporter roster and flags the account.
	Enroll(userID string) (*models.Supporter, error)
	// Withdraw removes a user from the roster and clears the flag.
	Withdraw(userID string) error
	// SetAvailability toggles whether the supporter receives SOS fan-out.
	SetAvailability(userID string, available bool) error
	// List returns the raw roster.
	List() ([]models.Supporter, error)
	// ListWithUserInfo returns the roster joined with display fields.
	ListWithUserInfo() ([]models.SupporterInfo, error)
}

// DefaultSupporterService is the production implementation.
type DefaultSupporterService struct {
	Repo  supporterRepo.SupporterRepository
	Users userRepo.UserRepository
}
