package client

import (
	"context"
	"testing"
	"time"

	"waymate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedConsole(t *testing.T, backend *fakeBackend) *AdminConsole {
	t.Helper()
	console := NewAdminConsole(backend.client(), NewRepository())
	require.NoError(t, console.Start(context.Background()))
	t.Cleanup(console.Stop)

	require.Eventually(t, func() bool {
		return len(console.Visible()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	return console
}

func seedConsoleBackend(backend *fakeBackend) {
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: false, IsSharedLocation: true})
	backend.seedTraveller(&models.Traveller{
		UserID: "trav-2", IsSafe: false, IsSharedLocation: true,
		EmergencyContacts: models.ContactList{"sup-1"},
	})
	backend.seedUser(models.UserProfile{ID: "trav-1", FullName: "Linh Nguyen"})
	backend.seedUser(models.UserProfile{ID: "trav-2", FullName: "Marco Rossi"})
	backend.seedSupporter(models.SupporterInfo{
		Supporter: models.Supporter{UserID: "sup-1", IsAvailable: true},
		User:      models.UserProfile{ID: "sup-1", FullName: "Sam Porter"},
	})
	backend.seedSupporter(models.SupporterInfo{
		Supporter: models.Supporter{UserID: "sup-2", IsAvailable: true},
		User:      models.UserProfile{ID: "sup-2", FullName: "Dana Cole"},
	})
}

func TestConsoleStartLoadsRosterAndEmergencies(t *testing.T) {
	backend := newFakeBackend(t)
	seedConsoleBackend(backend)
	console := newStartedConsole(t, backend)

	assert.Len(t, console.Roster(), 2)
	assert.Len(t, console.Visible(), 2)
}

func TestConsoleFilter(t *testing.T) {
	backend := newFakeBackend(t)
	seedConsoleBackend(backend)
	console := newStartedConsole(t, backend)

	console.SetFilter("linh")
	visible := console.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "trav-1", visible[0].UserID)

	// Matching by ID works too, and the filter never narrows server state.
	console.SetFilter("TRAV-2")
	require.Len(t, console.Visible(), 1)

	console.SetFilter("")
	assert.Len(t, console.Visible(), 2)
}

func TestConsoleStatusFilter(t *testing.T) {
	backend := newFakeBackend(t)
	seedConsoleBackend(backend)
	backend.seedTraveller(&models.Traveller{UserID: "trav-3", IsSafe: true})
	backend.seedUser(models.UserProfile{ID: "trav-3", FullName: "Aya Tanaka"})
	console := newStartedConsole(t, backend)

	require.Eventually(t, func() bool {
		return len(console.Visible()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	// Each derived status narrows to exactly its records, locally.
	console.SetStatusFilter(models.StatusPending)
	visible := console.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "trav-1", visible[0].UserID)

	console.SetStatusFilter(models.StatusInProgress)
	visible = console.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "trav-2", visible[0].UserID)

	console.SetStatusFilter(models.StatusCompleted)
	visible = console.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "trav-3", visible[0].UserID)

	// Status and name filters compose.
	console.SetFilter("marco")
	assert.Empty(t, console.Visible())
	console.SetStatusFilter(models.StatusInProgress)
	require.Len(t, console.Visible(), 1)

	// Switching filters takes effect immediately, well inside one poll tick,
	// because the predicate runs over the records already in hand.
	console.SetFilter("")
	console.SetStatusFilter("")
	assert.Len(t, console.Visible(), 3)
}

func TestConsoleSelectionIsUnified(t *testing.T) {
	backend := newFakeBackend(t)
	seedConsoleBackend(backend)
	console := newStartedConsole(t, backend)

	console.Select("trav-1")
	require.NotNil(t, console.Selected())
	assert.Equal(t, "trav-1", console.Selected().UserID)

	// Selecting an unknown marker clears rather than pointing at nothing.
	console.Select("missing")
	assert.Nil(t, console.Selected())
}

func TestConsoleAssignGuards(t *testing.T) {
	backend := newFakeBackend(t)
	seedConsoleBackend(backend)
	console := newStartedConsole(t, backend)

	// No selection yet.
	assert.ErrorIs(t, console.AssignSelected(context.Background(), "sup-2"), ErrNoSelection)

	console.Select("trav-1")
	assert.ErrorIs(t, console.AssignSelected(context.Background(), ""), ErrNoSupporterChosen)

	// Duplicate assignment is refused before any request goes out.
	console.Select("trav-2")
	assert.ErrorIs(t, console.AssignSelected(context.Background(), "sup-1"), ErrSupporterAlreadyAssigned)

	stored := backend.snapshot("trav-2")
	assert.Equal(t, models.ContactList{"sup-1"}, stored.EmergencyContacts)
}

func TestConsoleAssignSuccess(t *testing.T) {
	backend := newFakeBackend(t)
	seedConsoleBackend(backend)
	console := newStartedConsole(t, backend)

	console.Select("trav-1")
	require.NoError(t, console.AssignSelected(context.Background(), "sup-2"))

	stored := backend.snapshot("trav-1")
	assert.Equal(t, models.ContactList{"sup-2"}, stored.EmergencyContacts)

	// The forced refresh reconciles the console with the server.
	require.Eventually(t, func() bool {
		sel := console.Selected()
		return sel != nil && sel.EmergencyContacts.Contains("sup-2")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsoleAssignLosesRaceGracefully(t *testing.T) {
	backend := newFakeBackend(t)
	seedConsoleBackend(backend)
	console := newStartedConsole(t, backend)

	console.Select("trav-1")

	// Another responder assigns sup-2 between the console's poll and the
	// operator's click.
	_, err := backend.client().AssignContact(context.Background(), "trav-1", "sup-2")
	require.NoError(t, err)

	err = console.AssignSelected(context.Background(), "sup-2")
	assert.ErrorIs(t, err, ErrSupporterAlreadyAssigned)

	// The refresh brings in the truth; the earlier assignment survives.
	require.Eventually(t, func() bool {
		sel := console.Selected()
		return sel != nil && sel.EmergencyContacts.Contains("sup-2")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConsoleRemoveFromSelected(t *testing.T) {
	backend := newFakeBackend(t)
	seedConsoleBackend(backend)
	console := newStartedConsole(t, backend)

	assert.ErrorIs(t, console.RemoveFromSelected(context.Background(), "sup-1"), ErrNoSelection)

	console.Select("trav-2")
	assert.ErrorIs(t, console.RemoveFromSelected(context.Background(), ""), ErrNoSupporterChosen)

	require.NoError(t, console.RemoveFromSelected(context.Background(), "sup-1"))
	stored := backend.snapshot("trav-2")
	assert.Empty(t, stored.EmergencyContacts)
}

func TestConsoleResolveSelected(t *testing.T) {
	backend := newFakeBackend(t)
	seedConsoleBackend(backend)
	console := newStartedConsole(t, backend)

	assert.ErrorIs(t, console.ResolveSelected(context.Background()), ErrNoSelection)

	console.Select("trav-2")
	require.NoError(t, console.ResolveSelected(context.Background()))

	stored := backend.snapshot("trav-2")
	assert.True(t, stored.IsSafe)
	assert.Empty(t, stored.EmergencyContacts)

	// Resolving again is refused locally once the refresh lands.
	require.Eventually(t, func() bool {
		sel := console.Selected()
		return sel != nil && sel.IsSafe
	}, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, console.ResolveSelected(context.Background()), ErrEmergencyResolved)
}
