package travellerRepo

import (
	"errors"

	"waymate/models"
)

// ErrNoActiveEmergency is returned when assignment targets a record that is
// marked safe (or does not exist).
var ErrNoActiveEmergency = errors.New("traveller has no active emergency")

// TravellerRepository defines methods for emergency-record data access.
//
// Assignment and resolution are single-document atomic operations so that
// two supporters acting on the same record at once can never lose each
// other's writes.
type TravellerRepository interface {
	// Create inserts a new traveller record (profile bootstrap).
	Create(t *models.Traveller) error
	// GetByID retrieves a traveller record by its user ID.
	GetByID(id string) (*models.Traveller, error)
	// Update applies a partial update. A full-replacement contact list is
	// deduplicated before it is written.
	Update(id string, upd models.TravellerUpdate) (*models.Traveller, error)
	// Activate atomically starts an emergency: is_safe=false,
	// is_shared_location=true, contacts reset to empty, coordinates set.
	Activate(id string, lat, lng float64) (*models.Traveller, error)
	// Resolve atomically retires an emergency: is_safe=true,
	// is_shared_location=false, contacts cleared. Never applies half.
	Resolve(id string) (*models.Traveller, error)
	// AddContact appends a supporter via $addToSet on an unsafe record.
	// Returns added=false when the supporter was already assigned.
	AddContact(id, supporterID string) (t *models.Traveller, added bool, err error)
	// RemoveContact removes a supporter via $pull.
	RemoveContact(id, supporterID string) (*models.Traveller, error)
	// GetAllSOS retrieves all active-or-recent emergency records with the
	// owner's display profile joined in.
	GetAllSOS() ([]models.SOSRecord, error)
	// GetSOSForSupporter retrieves active emergencies relevant to one
	// supporter: unassigned ones plus those the supporter is assigned to.
	GetSOSForSupporter(supporterID string) ([]models.SOSRecord, error)
}
