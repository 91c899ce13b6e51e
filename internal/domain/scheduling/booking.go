package scheduling

import (
	"sort"
	"time"
)

// TimeSlot is a candidate booking window returned by a BookingStrategy.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BookingStrategy locates the next open slot for the given duration at or
// after the given time, honoring scheduled appointments, physician and
// facility blocks, and business hours.
type BookingStrategy interface {
	FindNextAvailableSlot(schedule *PhysicianSchedule, duration time.Duration, after time.Time, facilityBlocks []*UnavailableBlock) (TimeSlot, bool)
}

// Search parameters of the default strategy: candidates snap to 15-minute
// boundaries and the scan gives up after 90 days.
const (
	slotStep      = 15 * time.Minute
	searchHorizon = 90 * 24 * time.Hour
)

// FirstAvailableStrategy performs a deterministic forward scan: starting
// from max(after, next business-day open), it walks 15-minute-aligned
// candidates within Mon-Fri 08:00-17:00 and returns the first window of the
// requested duration that clears every busy interval.
type FirstAvailableStrategy struct{}

func (FirstAvailableStrategy) FindNextAvailableSlot(schedule *PhysicianSchedule, duration time.Duration, after time.Time, facilityBlocks []*UnavailableBlock) (TimeSlot, bool) {
	if duration <= 0 {
		return TimeSlot{}, false
	}

	busy := collectBusy(schedule, facilityBlocks)
	horizon := after.Add(searchHorizon)

	t := snapToStep(after)
	for t.Before(horizon) {
		// Jump non-business days and out-of-window times to the next open.
		if adjusted, moved := nextBusinessInstant(t); moved {
			t = adjusted
			continue
		}
		end := t.Add(duration)
		if !withinBusinessHours(t, end) {
			// Slot runs past closing; try the next day's open.
			t = nextDayOpen(t)
			continue
		}
		if blocker, ok := firstOverlap(t, end, busy); ok {
			// Resume at the end of the blocking interval, re-snapped.
			t = snapToStep(blocker.End)
			continue
		}
		return TimeSlot{Start: t, End: end}, true
	}
	return TimeSlot{}, false
}

// collectBusy gathers every interval that excludes a candidate slot:
// scheduled appointments, the physician's blocks, and facility-wide blocks.
func collectBusy(schedule *PhysicianSchedule, facilityBlocks []*UnavailableBlock) []TimeInterval {
	var busy []TimeInterval
	for _, appt := range schedule.appointments {
		if appt.Status == StatusScheduled {
			busy = append(busy, appt.TimeInterval)
		}
	}
	for _, block := range schedule.unavailableBlocks {
		busy = append(busy, block.TimeInterval)
	}
	for _, block := range facilityBlocks {
		if block.AppliesTo(schedule.PhysicianID) {
			busy = append(busy, block.TimeInterval)
		}
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy
}

// firstOverlap returns the earliest busy interval overlapping [start, end).
func firstOverlap(start, end time.Time, busy []TimeInterval) (TimeInterval, bool) {
	candidate := TimeInterval{Start: start, End: end}
	for _, b := range busy {
		if b.Overlaps(candidate) {
			return b, true
		}
	}
	return TimeInterval{}, false
}

// snapToStep rounds t up to the next 15-minute boundary.
func snapToStep(t time.Time) time.Time {
	snapped := t.Truncate(slotStep)
	if snapped.Before(t) {
		snapped = snapped.Add(slotStep)
	}
	return snapped
}

// nextBusinessInstant moves t forward to the next moment inside a weekday
// business window. The second return is false when t is already inside one.
func nextBusinessInstant(t time.Time) (time.Time, bool) {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)

	switch {
	case t.Weekday() == time.Saturday || t.Weekday() == time.Sunday:
		return nextDayOpen(t), true
	case offset < businessDayStart:
		return midnight.Add(businessDayStart), true
	case offset >= businessDayEnd:
		return nextDayOpen(t), true
	}
	return t, false
}

// nextDayOpen returns the opening time of the next business day after t's day.
func nextDayOpen(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day.Add(businessDayStart)
}

// dailySlots steps through a single day's business window and returns every
// slot of the given duration that no busy interval overlaps.
func dailySlots(date time.Time, duration time.Duration, busy []TimeInterval) []TimeSlot {
	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, date.Location())

	var slots []TimeSlot
	for t := midnight.Add(businessDayStart); !t.Add(duration).After(midnight.Add(businessDayEnd)); t = t.Add(slotStep) {
		candidate := TimeInterval{Start: t, End: t.Add(duration)}
		free := true
		for _, b := range busy {
			if b.Overlaps(candidate) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, TimeSlot{Start: candidate.Start, End: candidate.End})
		}
	}
	return slots
}
