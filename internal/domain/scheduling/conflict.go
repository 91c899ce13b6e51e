package scheduling

import "time"

// ConflictType classifies a scheduling conflict.
type ConflictType string

const (
	ConflictDoubleBooking ConflictType = "double-booking"
	ConflictUnavailable   ConflictType = "unavailable-time"
	ConflictOutsideHours  ConflictType = "outside-business-hours"
	ConflictTooShort      ConflictType = "too-short"
	ConflictTooLong       ConflictType = "too-long"
	ConflictOverlap       ConflictType = "overlap"
	ConflictHoliday       ConflictType = "holiday"
	ConflictOther         ConflictType = "other"
)

// ScheduleConflict describes one reason a proposed appointment cannot be
// booked as requested. CanOverride marks conflicts that are policy signals
// the caller may choose to accept anyway; the core never overrides them
// itself.
type ScheduleConflict struct {
	Type                ConflictType  `json:"type"`
	Description         string        `json:"description"`
	ConflictingInterval *TimeInterval `json:"conflicting_interval,omitempty"`
	CanOverride         bool          `json:"can_override"`
}

// TimeSlotSuggestion is an alternative slot proposed when a requested
// booking cannot be honored.
type TimeSlotSuggestion struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
}

// ConflictCheckResult aggregates everything the rule pipeline found for one
// proposed appointment.
type ConflictCheckResult struct {
	Appointment  *Appointment         `json:"appointment"`
	HasConflicts bool                 `json:"has_conflicts"`
	Conflicts    []ScheduleConflict   `json:"conflicts,omitempty"`
	Suggestions  []TimeSlotSuggestion `json:"suggestions,omitempty"`
}
