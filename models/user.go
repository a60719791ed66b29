// File: waymate/models/user.go
package models

import "time"

// User represents a platform account.
type User struct {
	ID           string    `bson:"id" json:"id"`
	FullName     string    `bson:"full_name" json:"full_name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone" json:"phone"`
	AvatarURL    string    `bson:"avatar_url" json:"avatar_url"`
	IsSupporter  bool      `bson:"is_supporter" json:"is_supporter"`
	IsAdmin      bool      `bson:"is_admin" json:"is_admin"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	FCMToken     string    `bson:"fcm_token" json:"-"`
	Devices      []Device  `bson:"devices" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Profile returns the public display view of the user.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		FullName:  u.FullName,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
	}
}

// UserProfile is the display projection joined into supporter and SOS reads.
type UserProfile struct {
	ID        string `bson:"id" json:"id"`
	FullName  string `bson:"full_name" json:"full_name"`
	Phone     string `bson:"phone" json:"phone"`
	AvatarURL string `bson:"avatar_url" json:"avatar_url"`
}

// Actor is the current caller identity as resolved by the auth middleware.
type Actor struct {
	ID          string `json:"id"`
	IsSupporter bool   `json:"is_supporter"`
	IsAdmin     bool   `json:"is_admin"`
}
