// File: waymate/client/feed.go
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"waymate/models"
)

// feedPollInterval is how often the supporter feed refreshes.
const feedPollInterval = 10 * time.Second

// FeedSnapshot is one refresh of the supporter's notification feed, split
// into the two sections the screen renders.
type FeedSnapshot struct {
	// Urgent holds emergencies this supporter is assigned to.
	Urgent []models.SOSRecord
	// Pending holds unassigned emergencies awaiting any responder.
	Pending []models.SOSRecord
	// FetchedAt is when this snapshot was pulled.
	FetchedAt time.Time
}

// SupporterFeed drives the responder's notification screen: a polled list of
// emergencies they can act on, with accept and resolve actions.
type SupporterFeed struct {
	API         *Client
	Repo        *Repository
	SupporterID string

	// OnUpdate, when set, receives every fresh snapshot.
	OnUpdate func(FeedSnapshot)

	mu          sync.Mutex
	latest      FeedSnapshot
	unsubscribe func()
}

// NewSupporterFeed creates a feed for the given supporter.
func NewSupporterFeed(api *Client, repo *Repository, supporterID string) *SupporterFeed {
	return &SupporterFeed{API: api, Repo: repo, SupporterID: supporterID}
}

// Start begins polling. Safe to call once per screen mount.
func (f *SupporterFeed) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsubscribe != nil {
		return
	}
	f.unsubscribe = f.Repo.Subscribe("feed:"+f.SupporterID, feedPollInterval, f.fetch, f.onSnapshot)
}

// Stop ends polling.
func (f *SupporterFeed) Stop() {
	f.mu.Lock()
	unsub := f.unsubscribe
	f.unsubscribe = nil
	f.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Latest returns the most recent snapshot.
func (f *SupporterFeed) Latest() FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

// Accept assigns the supporter to the emergency. Losing the race to another
// responder is not an error; the refreshed feed shows who got it.
func (f *SupporterFeed) Accept(ctx context.Context, travellerID string) error {
	_, err := f.API.AssignContact(ctx, travellerID, f.SupporterID)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsConflict() {
			return fmt.Errorf("failed to accept SOS: %w", err)
		}
	}
	f.Repo.Refresh("feed:" + f.SupporterID)
	return nil
}

// Resolve marks the traveler safe and refreshes the feed immediately so the
// resolved case disappears without waiting for the next tick.
func (f *SupporterFeed) Resolve(ctx context.Context, travellerID string) error {
	if _, err := f.API.Resolve(ctx, travellerID); err != nil {
		return fmt.Errorf("failed to resolve SOS: %w", err)
	}
	f.Repo.Refresh("feed:" + f.SupporterID)
	return nil
}

func (f *SupporterFeed) fetch(ctx context.Context) (any, error) {
	return f.API.SupporterFeed(ctx, f.SupporterID)
}

func (f *SupporterFeed) onSnapshot(snapshot any) {
	records, ok := snapshot.([]models.SOSRecord)
	if !ok {
		return
	}

	snap := PartitionFeed(records, f.SupporterID)

	f.mu.Lock()
	f.latest = snap
	f.mu.Unlock()

	if f.OnUpdate != nil {
		f.OnUpdate(snap)
	}
}

// PartitionFeed splits feed records into the assigned-to-me section and the
// awaiting-response section. Records already marked safe are not actionable
// and never appear in either section, whatever the endpoint returned.
func PartitionFeed(records []models.SOSRecord, supporterID string) FeedSnapshot {
	snap := FeedSnapshot{FetchedAt: time.Now()}
	for _, rec := range records {
		if rec.IsSafe {
			continue
		}
		if rec.EmergencyContacts.Contains(supporterID) {
			snap.Urgent = append(snap.Urgent, rec)
		} else {
			snap.Pending = append(snap.Pending, rec)
		}
	}
	return snap
}
