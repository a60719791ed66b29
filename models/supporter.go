package models

// Supporter marks a user as available to respond to SOS alerts. Display
// fields live on the user document and are joined at read time.
type Supporter struct {
	UserID      string `bson:"user_id" json:"user_id"`
	IsAvailable bool   `bson:"is_available" json:"is_available"`
}

// SupporterInfo is a supporter row pre-joined with the user's display
// profile, as served to the admin console.
type SupporterInfo struct {
	Supporter `bson:",inline"`
	User      UserProfile `bson:"user" json:"user"`
}
