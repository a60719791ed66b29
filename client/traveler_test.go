package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"waymate/config"
	"waymate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTraveler(t *testing.T, backend *fakeBackend, userID string) (*TravelerController, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	tc := NewTravelerController(backend.client(), NewRepository(), userID)
	tc.Notifier = notifier
	tc.Locator = LocatorFunc(func(ctx context.Context) (float64, float64, error) {
		return 48.8566, 2.3522, nil
	})
	return tc, notifier
}

func TestTravelerActivate(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: true})
	tc, _ := newTestTraveler(t, backend, "trav-1")

	require.Equal(t, StateIdle, tc.State())

	rec, err := tc.Activate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateActive, tc.State())
	assert.False(t, rec.IsSafe)
	assert.True(t, rec.IsSharedLocation)
	assert.Empty(t, rec.EmergencyContacts)
	assert.Equal(t, 48.8566, rec.Latitude)

	stored := backend.snapshot("trav-1")
	assert.False(t, stored.IsSafe)

	require.NoError(t, tc.Resolve(context.Background()))
	assert.Equal(t, StateIdle, tc.State())
}

func TestTravelerActivateRefusedWhileRunning(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: true})
	tc, _ := newTestTraveler(t, backend, "trav-1")

	_, err := tc.Activate(context.Background())
	require.NoError(t, err)
	defer tc.Resolve(context.Background())

	_, err = tc.Activate(context.Background())
	assert.ErrorIs(t, err, ErrSOSInProgress)
}

func TestTravelerActivateRollsBackOnFailure(t *testing.T) {
	backend := newFakeBackend(t)
	// No record seeded: the server answers 404.
	tc, _ := newTestTraveler(t, backend, "ghost")

	_, err := tc.Activate(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateIdle, tc.State(), "failed activation must unlock the button")

	// The rollback leaves the controller usable.
	backend.seedTraveller(&models.Traveller{UserID: "ghost", IsSafe: true})
	_, err = tc.Activate(context.Background())
	require.NoError(t, err)
	defer tc.Resolve(context.Background())
	assert.Equal(t, StateActive, tc.State())
}

func TestTravelerActivateUsesFallbackPosition(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: true})

	prevLat, prevLng := config.AppConfig.DefaultLatitude, config.AppConfig.DefaultLongitude
	config.AppConfig.DefaultLatitude = 21.0285
	config.AppConfig.DefaultLongitude = 105.8542
	defer func() {
		config.AppConfig.DefaultLatitude, config.AppConfig.DefaultLongitude = prevLat, prevLng
	}()

	tc, _ := newTestTraveler(t, backend, "trav-1")
	tc.Locator = LocatorFunc(func(ctx context.Context) (float64, float64, error) {
		return 0, 0, errors.New("gps unavailable")
	})

	rec, err := tc.Activate(context.Background())
	require.NoError(t, err)
	defer tc.Resolve(context.Background())

	// A dead GPS must not block the SOS; the configured fallback goes out.
	assert.Equal(t, 21.0285, rec.Latitude)
	assert.Equal(t, 105.8542, rec.Longitude)
}

func TestTravelerNotifiedOnceWhenResolvedRemotely(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: true})
	tc, notifier := newTestTraveler(t, backend, "trav-1")

	_, err := tc.Activate(context.Background())
	require.NoError(t, err)

	// A supporter resolves the SOS out of band.
	_, err = backend.client().Resolve(context.Background(), "trav-1")
	require.NoError(t, err)

	tc.Repo.Refresh("trav-1")
	require.Eventually(t, func() bool {
		return tc.State() == StateIdle
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, notifier.count())

	// Later snapshots of the safe record must not notify again.
	tc.onSnapshot(&models.Traveller{UserID: "trav-1", IsSafe: true})
	tc.finish(&models.Traveller{UserID: "trav-1", IsSafe: true})
	assert.Equal(t, 1, notifier.count())
}

func TestTravelerSharingStoppedEndsEmergency(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: true})
	tc, _ := newTestTraveler(t, backend, "trav-1")

	_, err := tc.Activate(context.Background())
	require.NoError(t, err)

	// A record that stopped sharing location reads as no longer active even
	// if the safety flag lags behind.
	tc.onSnapshot(&models.Traveller{UserID: "trav-1", IsSafe: false, IsSharedLocation: false})
	assert.Equal(t, StateIdle, tc.State())
}

func TestTravelerCancelFailureStillReturnsToIdle(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: true})
	tc, notifier := newTestTraveler(t, backend, "trav-1")

	_, err := tc.Activate(context.Background())
	require.NoError(t, err)

	// The cancel request never reaches the server.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	err = tc.Resolve(canceled)
	require.Error(t, err)

	assert.Equal(t, StateIdle, tc.State(), "the screen must not stay locked on a failed cancel")
	assert.Equal(t, 1, notifier.count(), "the failure is surfaced, not silently dropped")
}

func TestTravelerSelectSupporter(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: true})
	tc, _ := newTestTraveler(t, backend, "trav-1")

	require.ErrorIs(t, tc.SelectSupporter(context.Background(), "sup-1"), ErrNoActiveSOS)

	_, err := tc.Activate(context.Background())
	require.NoError(t, err)
	defer tc.Resolve(context.Background())

	require.NoError(t, tc.SelectSupporter(context.Background(), "sup-1"))
	assert.Equal(t, models.ContactList{"sup-1"}, tc.Current().EmergencyContacts)

	// Selecting a supporter who is already assigned is not an error: the
	// outcome the traveler wanted already holds.
	require.NoError(t, tc.SelectSupporter(context.Background(), "sup-1"))

	stored := backend.snapshot("trav-1")
	assert.Equal(t, models.ContactList{"sup-1"}, stored.EmergencyContacts)
}
