package models

// EmergencyStatus is the derived classification of an emergency record.
// It is computed from the record on every read and never stored.
type EmergencyStatus string

const (
	// StatusPending: active emergency, nobody assigned yet.
	StatusPending EmergencyStatus = "pending"
	// StatusInProgress: active emergency with at least one supporter assigned.
	StatusInProgress EmergencyStatus = "in_progress"
	// StatusCompleted: the traveler is marked safe; contacts are ignored.
	StatusCompleted EmergencyStatus = "completed"
)

// DeriveStatus maps a raw emergency record to its displayable status.
// Every consumer (traveler modal, supporter feed, admin console) must derive
// status through this function so the same record never reads two ways.
func DeriveStatus(t *Traveller) EmergencyStatus {
	if t.IsSafe {
		return StatusCompleted
	}
	if len(t.EmergencyContacts) > 0 {
		return StatusInProgress
	}
	return StatusPending
}

// ColorFor returns the presentation color token for a record as seen by
// viewerID. A viewer who is personally assigned sees red regardless of how
// many other supporters are on the case; that highlight is presentational
// only and does not introduce a fourth status.
func ColorFor(status EmergencyStatus, viewerID string, t *Traveller) string {
	if status == StatusCompleted {
		return "green"
	}
	if viewerID != "" && t.EmergencyContacts.Contains(viewerID) {
		return "red"
	}
	if status == StatusInProgress {
		return "orange"
	}
	return "amber"
}

// LabelFor returns the display label for a record as seen by viewerID.
func LabelFor(status EmergencyStatus, viewerID string, t *Traveller) string {
	if status == StatusCompleted {
		return "Marked safe"
	}
	if viewerID != "" && t.EmergencyContacts.Contains(viewerID) {
		return "Assigned to you"
	}
	if status == StatusInProgress {
		return "Being assisted"
	}
	return "Awaiting response"
}
