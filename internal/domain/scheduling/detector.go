package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment duration policy enforced by the conflict pipeline. The TooLong
// ceiling is deliberately stricter than the generic interval maximum in
// interval.go: exceeding it is an overridable policy signal, not a
// structural defect.
const (
	minAppointmentDuration = 15 * time.Minute
	maxAppointmentDuration = 3 * time.Hour
)

// Business hours used by the outside-hours rule and the default booking
// strategy.
const (
	businessDayStart = 8 * time.Hour
	businessDayEnd   = 17 * time.Hour
)

// ConflictDetector is one independently-correct rule. Every detector
// receives the same inputs and returns zero or more conflicts; no detector
// depends on another having run. excludeID skips a specific appointment so
// an update or reschedule does not conflict with its own prior occurrence.
type ConflictDetector interface {
	Detect(proposed *Appointment, schedule *PhysicianSchedule, facilityBlocks []*UnavailableBlock, excludeID uuid.UUID) []ScheduleConflict
}

// DoubleBookingDetector flags overlaps with the physician's other scheduled
// appointments.
type DoubleBookingDetector struct{}

func (DoubleBookingDetector) Detect(proposed *Appointment, schedule *PhysicianSchedule, _ []*UnavailableBlock, excludeID uuid.UUID) []ScheduleConflict {
	var conflicts []ScheduleConflict
	for _, existing := range schedule.appointments {
		if existing.ID == excludeID || existing.ID == proposed.ID {
			continue
		}
		if existing.Status != StatusScheduled {
			continue
		}
		if existing.Overlaps(proposed.TimeInterval) {
			iv := existing.TimeInterval
			conflicts = append(conflicts, ScheduleConflict{
				Type: ConflictDoubleBooking,
				Description: fmt.Sprintf("physician already has an appointment from %s to %s",
					existing.Start.Format(time.RFC3339), existing.End.Format(time.RFC3339)),
				ConflictingInterval: &iv,
				CanOverride:         false,
			})
		}
	}
	return conflicts
}

// UnavailableTimeDetector flags overlaps with the physician's own blocks and
// with facility-wide blocks.
type UnavailableTimeDetector struct{}

func (UnavailableTimeDetector) Detect(proposed *Appointment, schedule *PhysicianSchedule, facilityBlocks []*UnavailableBlock, _ uuid.UUID) []ScheduleConflict {
	var conflicts []ScheduleConflict
	check := func(block *UnavailableBlock) {
		if !block.AppliesTo(proposed.PhysicianID) {
			return
		}
		if block.Overlaps(proposed.TimeInterval) {
			iv := block.TimeInterval
			scope := "physician"
			if block.IsFacilityWide() {
				scope = "facility"
			}
			conflicts = append(conflicts, ScheduleConflict{
				Type:                ConflictUnavailable,
				Description:         fmt.Sprintf("%s unavailable: %s", scope, block.Reason),
				ConflictingInterval: &iv,
				CanOverride:         false,
			})
		}
	}
	for _, block := range schedule.unavailableBlocks {
		check(block)
	}
	for _, block := range facilityBlocks {
		check(block)
	}
	return conflicts
}

// InvalidDurationDetector enforces the appointment duration policy. Too
// short is fatal; too long is overridable at the caller's discretion.
type InvalidDurationDetector struct{}

func (InvalidDurationDetector) Detect(proposed *Appointment, _ *PhysicianSchedule, _ []*UnavailableBlock, _ uuid.UUID) []ScheduleConflict {
	d := proposed.Duration()
	if d < minAppointmentDuration {
		return []ScheduleConflict{{
			Type:        ConflictTooShort,
			Description: fmt.Sprintf("appointment duration %s is below the %s minimum", d, minAppointmentDuration),
			CanOverride: false,
		}}
	}
	if d > maxAppointmentDuration {
		return []ScheduleConflict{{
			Type:        ConflictTooLong,
			Description: fmt.Sprintf("appointment duration %s exceeds the %s maximum", d, maxAppointmentDuration),
			CanOverride: true,
		}}
	}
	return nil
}

// OutsideHoursDetector flags intervals not fully inside Mon-Fri business
// hours on a single day. Available but not part of the default pipeline.
type OutsideHoursDetector struct{}

func (OutsideHoursDetector) Detect(proposed *Appointment, _ *PhysicianSchedule, _ []*UnavailableBlock, _ uuid.UUID) []ScheduleConflict {
	if withinBusinessHours(proposed.Start, proposed.End) {
		return nil
	}
	return []ScheduleConflict{{
		Type:        ConflictOutsideHours,
		Description: "appointment must fall within business hours (Mon-Fri 08:00-17:00)",
		CanOverride: false,
	}}
}

// withinBusinessHours reports whether [start, end) sits entirely inside one
// weekday's business window.
func withinBusinessHours(start, end time.Time) bool {
	if start.Weekday() == time.Saturday || start.Weekday() == time.Sunday {
		return false
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return false
	}
	midnight := time.Date(sy, sm, sd, 0, 0, 0, 0, start.Location())
	return start.Sub(midnight) >= businessDayStart && end.Sub(midnight) <= businessDayEnd
}

// ScheduleConflictDetector runs an ordered pipeline of rules and aggregates
// every conflict they raise. A single proposal can trigger several rules at
// once.
type ScheduleConflictDetector struct {
	detectors []ConflictDetector
	strategy  BookingStrategy
}

// NewConflictDetector builds a detector with the default pipeline:
// double-booking, unavailable-time, invalid-duration.
func NewConflictDetector(strategy BookingStrategy) *ScheduleConflictDetector {
	return &ScheduleConflictDetector{
		detectors: []ConflictDetector{
			DoubleBookingDetector{},
			UnavailableTimeDetector{},
			InvalidDurationDetector{},
		},
		strategy: strategy,
	}
}

// NewConflictDetectorWithRules builds a detector with a caller-supplied
// pipeline, preserving order.
func NewConflictDetectorWithRules(strategy BookingStrategy, detectors ...ConflictDetector) *ScheduleConflictDetector {
	return &ScheduleConflictDetector{detectors: detectors, strategy: strategy}
}

// CheckForConflicts runs every rule against the proposal and aggregates the
// results. Conflicts are returned as data; nothing here is an error.
func (d *ScheduleConflictDetector) CheckForConflicts(proposed *Appointment, schedule *PhysicianSchedule, facilityBlocks []*UnavailableBlock, excludeID uuid.UUID) ConflictCheckResult {
	result := ConflictCheckResult{Appointment: proposed}
	for _, det := range d.detectors {
		result.Conflicts = append(result.Conflicts, det.Detect(proposed, schedule, facilityBlocks, excludeID)...)
	}
	result.HasConflicts = len(result.Conflicts) > 0
	return result
}

// FindAlternative asks the booking strategy for the first feasible slot at
// or after the original requested start. It proposes at most one slot.
func (d *ScheduleConflictDetector) FindAlternative(proposed *Appointment, schedule *PhysicianSchedule, facilityBlocks []*UnavailableBlock) []TimeSlotSuggestion {
	if d.strategy == nil {
		return nil
	}
	slot, ok := d.strategy.FindNextAvailableSlot(schedule, proposed.Duration(), proposed.Start, facilityBlocks)
	if !ok {
		return nil
	}
	return []TimeSlotSuggestion{{Start: slot.Start, End: slot.End, Reason: "First available"}}
}
