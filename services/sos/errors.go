package sos

import "errors"

var (
	// ErrAlreadyAssigned is returned when a supporter is assigned to an
	// emergency they are already on. No write happens.
	ErrAlreadyAssigned = errors.New("supporter is already assigned to this emergency")
	// ErrNotSupporter is returned when the assignee is not on the roster.
	ErrNotSupporter = errors.New("user is not a registered supporter")
	// ErrNoActiveEmergency is returned when acting on a record that is
	// marked safe.
	ErrNoActiveEmergency = errors.New("traveller has no active emergency")
)
