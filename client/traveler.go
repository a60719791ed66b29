// File: waymate/client/traveler.go
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"waymate/models"
)

// SOSState is the traveler screen's activation lifecycle.
type SOSState string

const (
	// StateIdle means no emergency is running.
	StateIdle SOSState = "idle"
	// StateActivating means the SOS request is in flight. The button is
	// disabled so a panicked double-tap cannot raise two emergencies.
	StateActivating SOSState = "activating"
	// StateActive means the emergency is live and being polled.
	StateActive SOSState = "active"
)

// Notifier surfaces a local, user-facing notification on the device.
type Notifier interface {
	Notify(title, message string)
}

var (
	// ErrSOSInProgress is returned when activation is attempted while an
	// emergency is already running or being raised.
	ErrSOSInProgress = errors.New("an SOS is already in progress")
	// ErrNoActiveSOS is returned for actions that need a live emergency.
	ErrNoActiveSOS = errors.New("no active SOS")
)

// travelerPollInterval is how often the traveler screen refreshes its own
// emergency record while an SOS is live.
const travelerPollInterval = 5 * time.Second

// TravelerController drives the traveler's SOS screen: raising the alarm,
// watching the record for a resolution, and picking a trusted supporter.
type TravelerController struct {
	API      *Client
	Repo     *Repository
	Locator  Locator
	Notifier Notifier
	UserID   string

	// OnUpdate, when set, receives every fresh snapshot of the record.
	OnUpdate func(t *models.Traveller)

	mu          sync.Mutex
	state       SOSState
	current     *models.Traveller
	unsubscribe func()
	notified    bool
}

// NewTravelerController creates an idle controller for the given user.
func NewTravelerController(api *Client, repo *Repository, userID string) *TravelerController {
	return &TravelerController{
		API:    api,
		Repo:   repo,
		UserID: userID,
		state:  StateIdle,
	}
}

// State returns the current activation state.
func (tc *TravelerController) State() SOSState {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.state
}

// Current returns the latest snapshot of the traveler's record.
func (tc *TravelerController) Current() *models.Traveller {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.current
}

// Activate raises the SOS. The state moves to activating immediately so the
// UI can lock the button; if the server call fails the state rolls back to
// idle and the error is returned.
func (tc *TravelerController) Activate(ctx context.Context) (*models.Traveller, error) {
	tc.mu.Lock()
	if tc.state != StateIdle {
		tc.mu.Unlock()
		return nil, ErrSOSInProgress
	}
	tc.state = StateActivating
	tc.mu.Unlock()

	lat, lng := locate(ctx, tc.Locator)

	t, err := tc.API.Activate(ctx, tc.UserID, lat, lng)
	if err != nil {
		tc.mu.Lock()
		tc.state = StateIdle
		tc.mu.Unlock()
		return nil, fmt.Errorf("failed to raise SOS: %w", err)
	}

	tc.mu.Lock()
	tc.state = StateActive
	tc.current = t
	tc.notified = false
	tc.unsubscribe = tc.Repo.Subscribe(tc.UserID, travelerPollInterval, tc.fetch, tc.onSnapshot)
	tc.mu.Unlock()

	return t, nil
}

// Resolve cancels the traveler's own SOS. The screen returns to idle either
// way: a traveler who pressed "I'm safe" is not held hostage by a flaky
// network, but a failed cancel is surfaced so they can try again.
func (tc *TravelerController) Resolve(ctx context.Context) error {
	tc.mu.Lock()
	if tc.state != StateActive {
		tc.mu.Unlock()
		return ErrNoActiveSOS
	}
	tc.mu.Unlock()

	t, err := tc.API.Resolve(ctx, tc.UserID)
	if err != nil {
		tc.mu.Lock()
		tc.notified = true
		cur := tc.current
		tc.mu.Unlock()
		tc.finish(cur)
		if tc.Notifier != nil {
			tc.Notifier.Notify("Could not cancel your SOS", "The cancel did not reach the server. Please try again.")
		}
		return fmt.Errorf("failed to resolve SOS: %w", err)
	}
	tc.finish(t)
	return nil
}

// SelectSupporter asks a specific supporter for help. A supporter who is
// already assigned is fine; the server's refusal of the duplicate means
// someone else got there first and nothing is lost.
func (tc *TravelerController) SelectSupporter(ctx context.Context, supporterID string) error {
	tc.mu.Lock()
	if tc.state != StateActive {
		tc.mu.Unlock()
		return ErrNoActiveSOS
	}
	tc.mu.Unlock()

	t, err := tc.API.AssignContact(ctx, tc.UserID, supporterID)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			tc.Repo.Refresh(tc.UserID)
			return nil
		}
		return fmt.Errorf("failed to select supporter: %w", err)
	}

	tc.mu.Lock()
	tc.current = t
	tc.mu.Unlock()
	return nil
}

func (tc *TravelerController) fetch(ctx context.Context) (any, error) {
	return tc.API.GetTraveller(ctx, tc.UserID)
}

// onSnapshot applies each polled snapshot. When the record comes back
// resolved the emergency is over: the poll stops and the traveler is told
// exactly once, no matter how many more snapshots arrive.
func (tc *TravelerController) onSnapshot(snapshot any) {
	t, ok := snapshot.(*models.Traveller)
	if !ok || t == nil {
		return
	}

	tc.mu.Lock()
	tc.current = t
	ended := tc.state == StateActive && (t.IsSafe || !t.IsSharedLocation)
	tc.mu.Unlock()

	if tc.OnUpdate != nil {
		tc.OnUpdate(t)
	}
	if ended {
		tc.finish(t)
	}
}

// finish retires the local emergency and fires the one-shot notification.
func (tc *TravelerController) finish(t *models.Traveller) {
	tc.mu.Lock()
	unsub := tc.unsubscribe
	tc.unsubscribe = nil
	tc.state = StateIdle
	tc.current = t
	shouldNotify := !tc.notified
	tc.notified = true
	tc.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if shouldNotify && tc.Notifier != nil {
		tc.Notifier.Notify("You are marked safe", "Your SOS has been resolved.")
	}
}
