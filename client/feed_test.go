package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"waymate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionFeed(t *testing.T) {
	records := []models.SOSRecord{
		{Traveller: models.Traveller{UserID: "trav-1", IsSafe: false}},
		{Traveller: models.Traveller{UserID: "trav-2", IsSafe: false, EmergencyContacts: models.ContactList{"sup-1"}}},
		{Traveller: models.Traveller{UserID: "trav-3", IsSafe: false, EmergencyContacts: models.ContactList{"sup-1", "sup-2"}}},
	}

	snap := PartitionFeed(records, "sup-1")
	require.Len(t, snap.Urgent, 2)
	require.Len(t, snap.Pending, 1)
	assert.Equal(t, "trav-1", snap.Pending[0].UserID)

	// The same records partition differently for another viewer.
	other := PartitionFeed(records, "sup-9")
	assert.Empty(t, other.Urgent)
	assert.Len(t, other.Pending, 3)
}

func TestPartitionFeedDropsSafeRecords(t *testing.T) {
	// A resolved record is not actionable even when the supporter is still
	// listed on it, so it never reaches either section.
	records := []models.SOSRecord{
		{Traveller: models.Traveller{UserID: "trav-1", IsSafe: true}},
		{Traveller: models.Traveller{UserID: "trav-2", IsSafe: true, EmergencyContacts: models.ContactList{"sup-1"}}},
		{Traveller: models.Traveller{UserID: "trav-3", IsSafe: false}},
	}

	snap := PartitionFeed(records, "sup-1")
	assert.Empty(t, snap.Urgent)
	require.Len(t, snap.Pending, 1)
	assert.Equal(t, "trav-3", snap.Pending[0].UserID)
}

func TestSupporterFeedPollsAndPartitions(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: false, IsSharedLocation: true})
	backend.seedTraveller(&models.Traveller{
		UserID: "trav-2", IsSafe: false, IsSharedLocation: true,
		EmergencyContacts: models.ContactList{"sup-1"},
	})
	backend.seedTraveller(&models.Traveller{UserID: "trav-3", IsSafe: true})
	backend.seedUser(models.UserProfile{ID: "trav-1", FullName: "Anh Tran", Phone: "+84 90 000 0001"})

	var mu sync.Mutex
	var snaps []FeedSnapshot
	feed := NewSupporterFeed(backend.client(), NewRepository(), "sup-1")
	feed.OnUpdate = func(s FeedSnapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	}

	feed.Start()
	defer feed.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snaps) > 0
	}, 2*time.Second, 10*time.Millisecond)

	snap := feed.Latest()
	require.Len(t, snap.Pending, 1)
	require.Len(t, snap.Urgent, 1)
	assert.Equal(t, "trav-1", snap.Pending[0].UserID)
	assert.Equal(t, "Anh Tran", snap.Pending[0].User.FullName)
	assert.Equal(t, "trav-2", snap.Urgent[0].UserID)
}

func TestSupporterFeedAccept(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{UserID: "trav-1", IsSafe: false, IsSharedLocation: true})

	feed := NewSupporterFeed(backend.client(), NewRepository(), "sup-1")
	feed.Start()
	defer feed.Stop()

	require.NoError(t, feed.Accept(context.Background(), "trav-1"))
	stored := backend.snapshot("trav-1")
	assert.Equal(t, models.ContactList{"sup-1"}, stored.EmergencyContacts)

	// Accepting again races gracefully: the server refuses the duplicate
	// and the feed treats it as already done.
	require.NoError(t, feed.Accept(context.Background(), "trav-1"))
	stored = backend.snapshot("trav-1")
	assert.Equal(t, models.ContactList{"sup-1"}, stored.EmergencyContacts)
}

func TestSupporterFeedResolveRefreshesImmediately(t *testing.T) {
	backend := newFakeBackend(t)
	backend.seedTraveller(&models.Traveller{
		UserID: "trav-1", IsSafe: false, IsSharedLocation: true,
		EmergencyContacts: models.ContactList{"sup-1"},
	})

	feed := NewSupporterFeed(backend.client(), NewRepository(), "sup-1")
	feed.Start()
	defer feed.Stop()

	require.Eventually(t, func() bool {
		return len(feed.Latest().Urgent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, feed.Resolve(context.Background(), "trav-1"))

	// The resolved case disappears well before the next scheduled tick.
	require.Eventually(t, func() bool {
		snap := feed.Latest()
		return len(snap.Urgent) == 0 && len(snap.Pending) == 0
	}, 2*time.Second, 10*time.Millisecond)

	stored := backend.snapshot("trav-1")
	assert.True(t, stored.IsSafe)
}

func TestNavigateAndCallLinks(t *testing.T) {
	tr := &models.Traveller{Latitude: 21.028500, Longitude: 105.854200}
	assert.Equal(t,
		"https://www.google.com/maps/dir/?api=1&destination=21.028500,105.854200",
		NavigateURL(tr))

	assert.Equal(t, "tel:+84900000001", CallURI("+84900000001"))
	assert.Equal(t, "", CallURI("   "))
}
