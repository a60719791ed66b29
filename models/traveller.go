// File: waymate/models/traveller.go
package models

import "time"

// Traveller is the per-user emergency record. It doubles as the traveler's
// profile row: the safety fields cycle between safe and unsafe for the
// lifetime of the account and the row is never hard-deleted.
type Traveller struct {
	UserID            string      `bson:"user_id" json:"user_id"`
	Bio               string      `bson:"bio" json:"bio"`
	Latitude          float64     `bson:"latitude" json:"latitude"`
	Longitude         float64     `bson:"longitude" json:"longitude"`
	IsSafe            bool        `bson:"is_safe" json:"is_safe"`
	IsSharedLocation  bool        `bson:"is_shared_location" json:"is_shared_location"`
	EmergencyContacts ContactList `bson:"emergency_contacts" json:"emergency_contacts"`
	CreatedAt         time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `bson:"updated_at" json:"updated_at"`
}

// PrimaryContact returns the first assigned supporter, which the traveler's
// own emergency view presents as the direct responder. Other views treat
// the contact list as a flat set.
func (t *Traveller) PrimaryContact() string {
	if len(t.EmergencyContacts) == 0 {
		return ""
	}
	return t.EmergencyContacts[0]
}

// TravellerUpdate is a partial PATCH body for a traveller record. Nil fields
// are left untouched.
type TravellerUpdate struct {
	Bio               *string      `json:"bio,omitempty"`
	Latitude          *float64     `json:"latitude,omitempty"`
	Longitude         *float64     `json:"longitude,omitempty"`
	IsSafe            *bool        `json:"is_safe,omitempty"`
	IsSharedLocation  *bool        `json:"is_shared_location,omitempty"`
	EmergencyContacts *ContactList `json:"emergency_contacts,omitempty"`
}

// SOSRecord is a traveller record denormalized with the owner's display
// profile, as served to the supporter feed and the admin console.
type SOSRecord struct {
	Traveller `bson:",inline"`
	User      UserProfile `bson:"user" json:"user"`
}
