package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		record   Traveller
		expected EmergencyStatus
	}{
		{
			name:     "safe with no contacts is completed",
			record:   Traveller{IsSafe: true},
			expected: StatusCompleted,
		},
		{
			name:     "safe with contacts is still completed",
			record:   Traveller{IsSafe: true, EmergencyContacts: ContactList{"sup-1"}},
			expected: StatusCompleted,
		},
		{
			name:     "unsafe with no contacts is pending",
			record:   Traveller{IsSafe: false, EmergencyContacts: ContactList{}},
			expected: StatusPending,
		},
		{
			name:     "unsafe with nil contacts is pending",
			record:   Traveller{IsSafe: false},
			expected: StatusPending,
		},
		{
			name:     "unsafe with one contact is in progress",
			record:   Traveller{IsSafe: false, EmergencyContacts: ContactList{"sup-1"}},
			expected: StatusInProgress,
		},
		{
			name:     "unsafe with several contacts is in progress",
			record:   Traveller{IsSafe: false, EmergencyContacts: ContactList{"sup-1", "sup-2", "sup-3"}},
			expected: StatusInProgress,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DeriveStatus(&tc.record))
		})
	}
}

func TestColorForViewerHighlight(t *testing.T) {
	rec := &Traveller{IsSafe: false, EmergencyContacts: ContactList{"sup-1", "sup-2"}}
	status := DeriveStatus(rec)

	// The assigned viewer sees red even though the shared status is in_progress.
	assert.Equal(t, "red", ColorFor(status, "sup-1", rec))
	// Everyone else sees the shared in-progress color.
	assert.Equal(t, "orange", ColorFor(status, "sup-9", rec))
	assert.Equal(t, "orange", ColorFor(status, "", rec))
}

func TestColorForSharedStates(t *testing.T) {
	pending := &Traveller{IsSafe: false}
	assert.Equal(t, "amber", ColorFor(DeriveStatus(pending), "sup-1", pending))

	// Resolution wins over assignment: a resolved record is green even for
	// the supporter still listed on it.
	resolved := &Traveller{IsSafe: true, EmergencyContacts: ContactList{"sup-1"}}
	assert.Equal(t, "green", ColorFor(DeriveStatus(resolved), "sup-1", resolved))
}

func TestLabelFor(t *testing.T) {
	assigned := &Traveller{IsSafe: false, EmergencyContacts: ContactList{"sup-1"}}
	assert.Equal(t, "Assigned to you", LabelFor(DeriveStatus(assigned), "sup-1", assigned))
	assert.Equal(t, "Being assisted", LabelFor(DeriveStatus(assigned), "sup-2", assigned))

	pending := &Traveller{IsSafe: false}
	assert.Equal(t, "Awaiting response", LabelFor(DeriveStatus(pending), "sup-1", pending))

	safe := &Traveller{IsSafe: true}
	assert.Equal(t, "Marked safe", LabelFor(DeriveStatus(safe), "", safe))
}
