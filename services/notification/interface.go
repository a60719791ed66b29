package notification

import (
	"context"
	"fmt"

	userRepo "waymate/database/repository/user"
	"waymate/utils"

	"firebase.google.com/go/v4/messaging"
)

// NotificationService defines methods for sending FCM pushes.
type NotificationService interface {
	// SendUserPush sends a normal-priority push to one user.
	SendUserPush(ctx context.Context, userID, title, body string, data map[string]string) error
	// SendEmergencyPush sends a high-priority push that breaks through
	// silenced notification channels. Used for SOS fan-out and assignment.
	SendEmergencyPush(ctx context.Context, userID, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users userRepo.UserRepository
}

func NewDefaultNotificationService(users userRepo.UserRepository) (*DefaultNotificationService, error) {
	if users == nil {
		return nil, fmt.Errorf("notification service initialization error: user repository is nil")
	}
	return &DefaultNotificationService{Users: users}, nil
}

// SendUserPush looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) SendUserPush(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	token, err := s.tokenFor(userID)
	if err != nil {
		return err
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendUserPush: failed to send FCM message: %w", err)
	}
	return nil
}

// SendEmergencyPush sends a push on the high-priority channel with sound,
// so supporters notice an SOS even with the app backgrounded.
func (s *DefaultNotificationService) SendEmergencyPush(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	token, err := s.tokenFor(userID)
	if err != nil {
		return err
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "sos_alerts",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendEmergencyPush: failed to send FCM message: %w", err)
	}
	return nil
}

func (s *DefaultNotificationService) tokenFor(userID string) (string, error) {
	u, err := s.Users.GetByID(userID)
	if err != nil {
		return "", fmt.Errorf("notification: could not find user %s: %w", userID, err)
	}
	if u.FCMToken == "" {
		return "", fmt.Errorf("notification: user %s has no FCM token", userID)
	}
	return u.FCMToken, nil
}
