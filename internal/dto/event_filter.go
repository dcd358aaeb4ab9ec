package dto

import "time"

// EventFilters describe user-provided filters to narrow detection events.
// Zero values impose no constraint.
type EventFilters struct {
	Search    string    // substring match against the detected_objects summary
	Status    string    // exact status match
	StartDate time.Time // inclusive date-only lower bound
	EndDate   time.Time // inclusive date-only upper bound
}
