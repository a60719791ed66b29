// File: waymate/client/admin.go
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"waymate/models"
)

// consolePollInterval is how often the console refreshes the emergency list.
const consolePollInterval = 10 * time.Second

var (
	// ErrNoSelection is returned when an assignment is attempted with no
	// emergency selected on the list or the map.
	ErrNoSelection = errors.New("no emergency selected")
	// ErrNoSupporterChosen is returned when no supporter was picked.
	ErrNoSupporterChosen = errors.New("no supporter chosen")
	// ErrSupporterAlreadyAssigned is returned when the chosen supporter is
	// already on the selected emergency.
	ErrSupporterAlreadyAssigned = errors.New("supporter is already assigned")
	// ErrEmergencyResolved is returned when acting on an emergency that has
	// already been marked safe.
	ErrEmergencyResolved = errors.New("emergency is already resolved")
)

// AdminConsole drives the SOS management screen: a polled emergency list
// with a map view, a supporter roster, and guarded assignment.
//
// The list and the map share one selection. Selecting a row highlights the
// marker and vice versa, so the operator always acts on the record they are
// looking at.
type AdminConsole struct {
	API  *Client
	Repo *Repository

	// OnUpdate, when set, receives the reconciled emergency list after
	// every poll and after every mutation.
	OnUpdate func(records []models.SOSRecord)

	mu           sync.Mutex
	records      []models.SOSRecord
	roster       []models.SupporterInfo
	selectedID   string
	filter       string
	statusFilter models.EmergencyStatus
	unsubscribe  func()
}

// NewAdminConsole creates a console bound to the API client.
func NewAdminConsole(api *Client, repo *Repository) *AdminConsole {
	return &AdminConsole{API: api, Repo: repo}
}

// Start loads the supporter roster once and begins polling emergencies.
func (a *AdminConsole) Start(ctx context.Context) error {
	roster, err := a.API.Supporters(ctx)
	if err != nil {
		return fmt.Errorf("failed to load supporter roster: %w", err)
	}

	a.mu.Lock()
	a.roster = roster
	if a.unsubscribe == nil {
		a.unsubscribe = a.Repo.Subscribe("admin:sos", consolePollInterval, a.fetch, a.onSnapshot)
	}
	a.mu.Unlock()
	return nil
}

// Stop ends polling.
func (a *AdminConsole) Stop() {
	a.mu.Lock()
	unsub := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Roster returns the supporter roster loaded at start.
func (a *AdminConsole) Roster() []models.SupporterInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.roster
}

// SetFilter narrows the visible list by traveler name or ID. Filtering is
// purely client-side; the full list keeps arriving with every poll.
func (a *AdminConsole) SetFilter(query string) {
	a.mu.Lock()
	a.filter = strings.ToLower(strings.TrimSpace(query))
	a.mu.Unlock()
}

// SetStatusFilter narrows the visible list to one derived status
// (pending, in_progress or completed); the zero value shows everything.
// Like the name filter this is a local predicate over the records already
// in hand, so switching status never triggers a fetch.
func (a *AdminConsole) SetStatusFilter(status models.EmergencyStatus) {
	a.mu.Lock()
	a.statusFilter = status
	a.mu.Unlock()
}

// Visible returns the emergencies matching the current filters.
func (a *AdminConsole) Visible() []models.SOSRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return filterRecords(a.records, a.filter, a.statusFilter)
}

// Select marks one emergency as the acted-on record, whether the operator
// clicked the list row or the map marker. An unknown ID clears the selection.
func (a *AdminConsole) Select(travellerID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, rec := range a.records {
		if rec.UserID == travellerID {
			a.selectedID = travellerID
			return
		}
	}
	a.selectedID = ""
}

// Selected returns the currently selected emergency, or nil.
func (a *AdminConsole) Selected() *models.SOSRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.findLocked(a.selectedID)
}

// AssignSelected assigns the chosen supporter to the selected emergency.
// Every precondition is checked before the request goes out: a selection
// must exist, a supporter must be chosen, the emergency must still be
// active, and the supporter must not already be on it.
func (a *AdminConsole) AssignSelected(ctx context.Context, supporterID string) error {
	a.mu.Lock()
	rec := a.findLocked(a.selectedID)
	if rec == nil {
		a.mu.Unlock()
		return ErrNoSelection
	}
	if supporterID == "" {
		a.mu.Unlock()
		return ErrNoSupporterChosen
	}
	if rec.IsSafe {
		a.mu.Unlock()
		return ErrEmergencyResolved
	}
	if rec.EmergencyContacts.Contains(supporterID) {
		a.mu.Unlock()
		return ErrSupporterAlreadyAssigned
	}
	travellerID := rec.UserID
	a.mu.Unlock()

	_, err := a.API.AdminAssign(ctx, travellerID, supporterID)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsConflict() {
			// Someone else assigned or resolved first. Pull the fresh list
			// so the console shows what actually happened.
			a.Repo.Refresh("admin:sos")
			return ErrSupporterAlreadyAssigned
		}
		return fmt.Errorf("failed to assign supporter: %w", err)
	}

	a.Repo.Refresh("admin:sos")
	return nil
}

// RemoveFromSelected takes a supporter off the selected emergency.
func (a *AdminConsole) RemoveFromSelected(ctx context.Context, supporterID string) error {
	a.mu.Lock()
	rec := a.findLocked(a.selectedID)
	if rec == nil {
		a.mu.Unlock()
		return ErrNoSelection
	}
	if supporterID == "" {
		a.mu.Unlock()
		return ErrNoSupporterChosen
	}
	travellerID := rec.UserID
	a.mu.Unlock()

	if _, err := a.API.AdminRemoveContact(ctx, travellerID, supporterID); err != nil {
		return fmt.Errorf("failed to remove supporter: %w", err)
	}
	a.Repo.Refresh("admin:sos")
	return nil
}

// ResolveSelected marks the selected emergency safe.
func (a *AdminConsole) ResolveSelected(ctx context.Context) error {
	a.mu.Lock()
	rec := a.findLocked(a.selectedID)
	if rec == nil {
		a.mu.Unlock()
		return ErrNoSelection
	}
	if rec.IsSafe {
		a.mu.Unlock()
		return ErrEmergencyResolved
	}
	travellerID := rec.UserID
	a.mu.Unlock()

	if _, err := a.API.AdminResolve(ctx, travellerID); err != nil {
		return fmt.Errorf("failed to resolve SOS: %w", err)
	}
	a.Repo.Refresh("admin:sos")
	return nil
}

func (a *AdminConsole) fetch(ctx context.Context) (any, error) {
	return a.API.AllSOS(ctx)
}

// onSnapshot reconciles console state with the server's list: stale
// selections are dropped rather than pointing at a record that no longer
// exists.
func (a *AdminConsole) onSnapshot(snapshot any) {
	records, ok := snapshot.([]models.SOSRecord)
	if !ok {
		return
	}

	a.mu.Lock()
	a.records = records
	if a.selectedID != "" && a.findLocked(a.selectedID) == nil {
		a.selectedID = ""
	}
	visible := filterRecords(a.records, a.filter, a.statusFilter)
	a.mu.Unlock()

	if a.OnUpdate != nil {
		a.OnUpdate(visible)
	}
}

func (a *AdminConsole) findLocked(travellerID string) *models.SOSRecord {
	if travellerID == "" {
		return nil
	}
	for i := range a.records {
		if a.records[i].UserID == travellerID {
			return &a.records[i]
		}
	}
	return nil
}

func filterRecords(records []models.SOSRecord, filter string, status models.EmergencyStatus) []models.SOSRecord {
	out := make([]models.SOSRecord, 0, len(records))
	for _, rec := range records {
		if status != "" && models.DeriveStatus(&rec.Traveller) != status {
			continue
		}
		if filter != "" &&
			!strings.Contains(strings.ToLower(rec.User.FullName), filter) &&
			!strings.Contains(strings.ToLower(rec.UserID), filter) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
