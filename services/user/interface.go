package user

import (
	travellerRepo "waymate/database/repository/traveller"
	userRepo "waymate/database/repository/user"
	"waymate/models"
)

// UserService defines the identity capability the SOS surfaces consume:
// who is calling, and are they a supporter or an admin.
type UserService interface {
	// RegisterUser creates the account and bootstraps the traveller row
	// (safe, not sharing location, no contacts).
	RegisterUser(reg RegistrationRequest, device models.Device) (*AuthResponse, error)
	// AuthenticateUser verifies credentials and returns a device-bound token.
	AuthenticateUser(email, password string, device models.Device) (*AuthResponse, error)
	// GetUserByID retrieves a user by its unique ID.
	GetUserByID(userID string) (*models.User, error)
	// GetActor resolves the caller's coordination identity.
	GetActor(userID string) (*models.Actor, error)
	// UpdateFCMToken stores the push token for the user's current device.
	UpdateFCMToken(userID, token string) error
	// RevokeUserAuthToken revokes the device's token (logout).
	RevokeUserAuthToken(userID, deviceID string) error
	// GetAllUsers is the admin roster view.
	GetAllUsers() ([]models.User, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo       userRepo.UserRepository
	Travellers travellerRepo.TravellerRepository
}

// RegistrationRequest carries the fields collected at signup.
type RegistrationRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
	Bio      string `json:"bio"`
}

// AuthResponse contains the user's ID, token, and additional details.
type AuthResponse struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	FullName    string `json:"full_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsSupporter bool   `json:"is_supporter"`
	IsAdmin     bool   `json:"is_admin"`
}
