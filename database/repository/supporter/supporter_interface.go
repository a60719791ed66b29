package supporterRepo

import "waymate/models"

// SupporterRepository defines methods for supporter roster access.
type SupporterRepository interface {
	// Upsert creates or replaces a supporter row.
	Upsert(s *models.Supporter) error
	// GetByID retrieves a supporter by user ID, or nil when absent.
	GetByID(userID string) (*models.Supporter, error)
	// GetAll retrieves the full roster.
	GetAll() ([]models.Supporter, error)
	// GetAvailable retrieves supporters currently flagged available.
	GetAvailable() ([]models.Supporter, error)
	// GetAllWithUserInfo retrieves the roster pre-joined with display fields.
	GetAllWithUserInfo() ([]models.SupporterInfo, error)
	// SetAvailability toggles the availability flag.
	SetAvailability(userID string, available bool) error
	// Delete removes a supporter row.
	Delete(userID string) error
}
