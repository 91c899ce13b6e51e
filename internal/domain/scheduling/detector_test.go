package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// ---------- Detector Tests ----------

func TestDoubleBookingDetector(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	existing := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	sched.TryAddAppointment(existing)

	var det DoubleBookingDetector

	overlapping := apptFor(t, physicianID, day.Add(9*time.Hour+30*time.Minute), day.Add(10*time.Hour+30*time.Minute))
	conflicts := det.Detect(overlapping, sched, nil, uuid.Nil)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].Type != ConflictDoubleBooking {
		t.Errorf("expected double-booking conflict, got %s", conflicts[0].Type)
	}
	if conflicts[0].CanOverride {
		t.Error("double-booking must not be overridable")
	}
	if conflicts[0].ConflictingInterval == nil || !conflicts[0].ConflictingInterval.Start.Equal(existing.Start) {
		t.Error("expected conflicting interval to identify the existing appointment")
	}

	// Back-to-back is not a conflict.
	adjacent := apptFor(t, physicianID, day.Add(10*time.Hour), day.Add(11*time.Hour))
	if got := det.Detect(adjacent, sched, nil, uuid.Nil); len(got) != 0 {
		t.Errorf("expected no conflict for adjacent appointment, got %d", len(got))
	}

	// Excluding the existing appointment suppresses the conflict, so an
	// appointment never conflicts with its own prior occurrence.
	if got := det.Detect(overlapping, sched, nil, existing.ID); len(got) != 0 {
		t.Errorf("expected no conflict with excludeID set, got %d", len(got))
	}
}

func TestDoubleBookingDetector_IgnoresTerminalAppointments(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	cancelled := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	cancelled.Cancel("patient request")
	sched.TryAddAppointment(cancelled)

	var det DoubleBookingDetector
	proposed := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	if got := det.Detect(proposed, sched, nil, uuid.Nil); len(got) != 0 {
		t.Errorf("cancelled appointment should not block the slot, got %d conflicts", len(got))
	}
}

func TestUnavailableTimeDetector(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	pid := physicianID
	block, err := NewUnavailableBlock(&pid, day.Add(12*time.Hour), day.Add(13*time.Hour), ReasonPersonalLeave, "lunch")
	if err != nil {
		t.Fatalf("NewUnavailableBlock: %v", err)
	}
	sched.AddUnavailableBlock(block)

	var det UnavailableTimeDetector

	proposed := apptFor(t, physicianID, day.Add(12*time.Hour+30*time.Minute), day.Add(13*time.Hour+30*time.Minute))
	conflicts := det.Detect(proposed, sched, nil, uuid.Nil)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].Type != ConflictUnavailable {
		t.Errorf("expected unavailable-time conflict, got %s", conflicts[0].Type)
	}

	// A block for some other physician does not apply.
	otherSched := NewPhysicianSchedule(uuid.New())
	otherAppt := apptFor(t, otherSched.PhysicianID, day.Add(12*time.Hour), day.Add(13*time.Hour))
	if got := det.Detect(otherAppt, otherSched, nil, uuid.Nil); len(got) != 0 {
		t.Errorf("expected no conflict for unblocked physician, got %d", len(got))
	}
}

func TestUnavailableTimeDetector_FacilityWide(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	// Saturday March 7 2026: facility closed all day.
	saturday := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)

	closure, err := NewFacilityBlock(saturday, saturday.AddDate(0, 0, 1), ReasonNonBusinessHours, "weekend")
	if err != nil {
		t.Fatalf("NewFacilityBlock: %v", err)
	}

	var det UnavailableTimeDetector
	proposed := apptFor(t, physicianID, saturday.Add(10*time.Hour), saturday.Add(11*time.Hour))
	conflicts := det.Detect(proposed, sched, []*UnavailableBlock{closure}, uuid.Nil)
	if len(conflicts) != 1 {
		t.Fatalf("expected facility closure conflict, got %d", len(conflicts))
	}
	if conflicts[0].Type != ConflictUnavailable {
		t.Errorf("expected unavailable-time conflict, got %s", conflicts[0].Type)
	}
}

func TestInvalidDurationDetector(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	var det InvalidDurationDetector

	// 10 minutes: below the floor, not overridable.
	short := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(9*time.Hour+10*time.Minute))
	conflicts := det.Detect(short, sched, nil, uuid.Nil)
	if len(conflicts) != 1 || conflicts[0].Type != ConflictTooShort {
		t.Fatalf("expected too-short conflict, got %v", conflicts)
	}
	if conflicts[0].CanOverride {
		t.Error("too-short must not be overridable")
	}

	// 4 hours: above the ceiling, overridable.
	long := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(13*time.Hour))
	conflicts = det.Detect(long, sched, nil, uuid.Nil)
	if len(conflicts) != 1 || conflicts[0].Type != ConflictTooLong {
		t.Fatalf("expected too-long conflict, got %v", conflicts)
	}
	if !conflicts[0].CanOverride {
		t.Error("too-long must be overridable")
	}

	// Exactly at the bounds passes.
	atFloor := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(9*time.Hour+15*time.Minute))
	if got := det.Detect(atFloor, sched, nil, uuid.Nil); len(got) != 0 {
		t.Errorf("expected 15m appointment to pass, got %v", got)
	}
	atCeiling := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(12*time.Hour))
	if got := det.Detect(atCeiling, sched, nil, uuid.Nil); len(got) != 0 {
		t.Errorf("expected 3h appointment to pass, got %v", got)
	}
}

func TestOutsideHoursDetector(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)

	var det OutsideHoursDetector

	inside := apptFor(t, physicianID, monday.Add(9*time.Hour), monday.Add(10*time.Hour))
	if got := det.Detect(inside, sched, nil, uuid.Nil); len(got) != 0 {
		t.Errorf("expected weekday business hours to pass, got %v", got)
	}

	early := apptFor(t, physicianID, monday.Add(7*time.Hour), monday.Add(8*time.Hour))
	if got := det.Detect(early, sched, nil, uuid.Nil); len(got) != 1 {
		t.Errorf("expected before-hours conflict, got %v", got)
	}

	weekend := apptFor(t, physicianID, saturday.Add(10*time.Hour), saturday.Add(11*time.Hour))
	if got := det.Detect(weekend, sched, nil, uuid.Nil); len(got) != 1 {
		t.Errorf("expected weekend conflict, got %v", got)
	}

	// Ending exactly at close is inside the window.
	untilClose := apptFor(t, physicianID, monday.Add(16*time.Hour), monday.Add(17*time.Hour))
	if got := det.Detect(untilClose, sched, nil, uuid.Nil); len(got) != 0 {
		t.Errorf("expected appointment ending at 17:00 to pass, got %v", got)
	}
}

func TestScheduleConflictDetector_Aggregates(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	existing := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	sched.TryAddAppointment(existing)

	pid := physicianID
	block, _ := NewUnavailableBlock(&pid, day.Add(9*time.Hour), day.Add(11*time.Hour), ReasonPersonalLeave, "")
	sched.AddUnavailableBlock(block)

	det := NewConflictDetector(FirstAvailableStrategy{})

	// Overlaps the appointment, overlaps the block, and is too short: all
	// three rules fire on one proposal.
	proposed := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(9*time.Hour+10*time.Minute))
	result := det.CheckForConflicts(proposed, sched, nil, uuid.Nil)
	if !result.HasConflicts {
		t.Fatal("expected conflicts")
	}
	if len(result.Conflicts) != 3 {
		t.Errorf("expected 3 conflicts, got %d: %v", len(result.Conflicts), result.Conflicts)
	}
}

func TestScheduleConflictDetector_CustomPipeline(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	det := NewConflictDetectorWithRules(nil, OutsideHoursDetector{})

	early := apptFor(t, physicianID, monday.Add(6*time.Hour), monday.Add(7*time.Hour))
	result := det.CheckForConflicts(early, sched, nil, uuid.Nil)
	if len(result.Conflicts) != 1 || result.Conflicts[0].Type != ConflictOutsideHours {
		t.Errorf("expected only the outside-hours rule to run, got %v", result.Conflicts)
	}
}

func TestScheduleConflictDetector_FindAlternative(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	existing := apptFor(t, physicianID, monday.Add(9*time.Hour), monday.Add(10*time.Hour))
	sched.TryAddAppointment(existing)

	det := NewConflictDetector(FirstAvailableStrategy{})

	proposed := apptFor(t, physicianID, monday.Add(9*time.Hour), monday.Add(10*time.Hour))
	suggestions := det.FindAlternative(proposed, sched, nil)
	if len(suggestions) != 1 {
		t.Fatalf("expected exactly 1 suggestion, got %d", len(suggestions))
	}
	s := suggestions[0]
	if !s.Start.Equal(monday.Add(10 * time.Hour)) {
		t.Errorf("expected first free slot at 10:00, got %v", s.Start)
	}
	if s.Reason != "First available" {
		t.Errorf("unexpected suggestion reason %q", s.Reason)
	}

	// Without a strategy there are no suggestions.
	bare := NewConflictDetectorWithRules(nil, DoubleBookingDetector{})
	if got := bare.FindAlternative(proposed, sched, nil); got != nil {
		t.Errorf("expected nil suggestions without a strategy, got %v", got)
	}
}
