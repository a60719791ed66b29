package user

import (
	"context"
	"fmt"
	"time"

	"waymate/models"
	"waymate/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 30 * 24 * time.Hour

// RegisterUser creates the account and bootstraps the traveller row. The
// traveller record starts safe with location sharing off; it cycles between
// safe and unsafe for the life of the account.
func (s *DefaultUserService) RegisterUser(reg RegistrationRequest, device models.Device) (*AuthResponse, error) {
	existing, err := s.Repo.GetByEmail(reg.Email)
	if err != nil {
		return nil, fmt.Errorf("user: failed to check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user: email %s is already registered", reg.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("user: failed to hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		FullName:     reg.FullName,
		Email:        reg.Email,
		Phone:        reg.Phone,
		PasswordHash: string(hash),
	}

	token, err := s.bindDevice(u, &device)
	if err != nil {
		return nil, err
	}
	u.Devices = []models.Device{device}

	if err := s.Repo.Create(u); err != nil {
		return nil, err
	}

	traveller := &models.Traveller{
		UserID:            u.ID,
		Bio:               reg.Bio,
		IsSafe:            true,
		IsSharedLocation:  false,
		EmergencyContacts: models.ContactList{},
	}
	if err := s.Travellers.Create(traveller); err != nil {
		return nil, fmt.Errorf("user: failed to bootstrap traveller record: %w", err)
	}

	return s.authResponse(u, token), nil
}

// AuthenticateUser verifies credentials and returns a device-bound token.
func (s *DefaultUserService) AuthenticateUser(email, password string, device models.Device) (*AuthResponse, error) {
	u, err := s.Repo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("user: failed to fetch account: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user: invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("user: invalid email or password")
	}

	token, err := s.bindDevice(u, &device)
	if err != nil {
		return nil, err
	}

	// Replace any previous session for the same device.
	devices := make([]models.Device, 0, len(u.Devices)+1)
	for _, d := range u.Devices {
		if d.DeviceID != device.DeviceID {
			devices = append(devices, d)
		}
	}
	u.Devices = append(devices, device)

	if err := s.Repo.Update(u); err != nil {
		return nil, fmt.Errorf("user: failed to persist device session: %w", err)
	}

	return s.authResponse(u, token), nil
}

// bindDevice issues a JWT for the user+device pair and stamps the device
// with its hash and login time. The auth cache is primed so the next
// request skips the DB lookup.
func (s *DefaultUserService) bindDevice(u *models.User, device *models.Device) (string, error) {
	if device.DeviceID == "" {
		device.DeviceID = uuid.NewString()
	}

	token, err := utils.GenerateToken(u.ID, device.DeviceID, tokenTTL)
	if err != nil {
		return "", fmt.Errorf("user: failed to generate token: %w", err)
	}
	device.TokenHash = utils.HashToken(token)
	device.LastLogin = time.Now()

	cacheKey := utils.AuthCachePrefix + u.ID + ":" + device.DeviceID
	if err := utils.GetAuthCacheClient().Set(context.Background(), cacheKey, device.TokenHash, utils.AuthCacheTTL).Err(); err != nil {
		// Cache priming is an optimization; auth falls back to the DB.
		utils.GetLogger().Sugar().Warnf("user: failed to prime auth cache: %v", err)
	}

	return token, nil
}

// GetUserByID retrieves a user by its unique ID.
func (s *DefaultUserService) GetUserByID(userID string) (*models.User, error) {
	return s.Repo.GetByID(userID)
}

// GetActor resolves the caller's coordination identity.
func (s *DefaultUserService) GetActor(userID string) (*models.Actor, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return &models.Actor{
		ID:          u.ID,
		IsSupporter: u.IsSupporter,
		IsAdmin:     u.IsAdmin,
	}, nil
}

// UpdateFCMToken stores the push token for the user's current device.
func (s *DefaultUserService) UpdateFCMToken(userID, token string) error {
	return s.Repo.SetFCMToken(userID, token)
}

// RevokeUserAuthToken drops the device session and its cache entry.
func (s *DefaultUserService) RevokeUserAuthToken(userID, deviceID string) error {
	u, err := s.Repo.GetByID(userID)
	if err != nil {
		return err
	}

	devices := make([]models.Device, 0, len(u.Devices))
	for _, d := range u.Devices {
		if d.DeviceID != deviceID {
			devices = append(devices, d)
		}
	}
	u.Devices = devices

	if err := s.Repo.Update(u); err != nil {
		return fmt.Errorf("user: failed to revoke device session: %w", err)
	}

	cacheKey := utils.AuthCachePrefix + userID + ":" + deviceID
	if err := utils.GetAuthCacheClient().Del(context.Background(), cacheKey).Err(); err != nil {
		utils.GetLogger().Sugar().Warnf("user: failed to drop auth cache entry: %v", err)
	}
	return nil
}

// GetAllUsers is the admin roster view.
func (s *DefaultUserService) GetAllUsers() ([]models.User, error) {
	return s.Repo.GetAll()
}

func (s *DefaultUserService) authResponse(u *models.User, token string) *AuthResponse {
	return &AuthResponse{
		ID:          u.ID,
		Token:       token,
		FullName:    u.FullName,
		Email:       u.Email,
		Phone:       u.Phone,
		AvatarURL:   u.AvatarURL,
		IsSupporter: u.IsSupporter,
		IsAdmin:     u.IsAdmin,
	}
}
