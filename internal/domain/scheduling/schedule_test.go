package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func apptFor(t *testing.T, physicianID uuid.UUID, start, end time.Time) *Appointment {
	t.Helper()
	appt, err := NewAppointment(uuid.New(), physicianID, start, end, "checkup", "")
	if err != nil {
		t.Fatalf("NewAppointment: %v", err)
	}
	return appt
}

func TestPhysicianSchedule_TryAddAppointment(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	// Insert out of order; the schedule keeps start-time order.
	late := apptFor(t, physicianID, day.Add(14*time.Hour), day.Add(15*time.Hour))
	early := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	mid := apptFor(t, physicianID, day.Add(11*time.Hour), day.Add(12*time.Hour))

	for _, a := range []*Appointment{late, early, mid} {
		if !sched.TryAddAppointment(a) {
			t.Fatalf("TryAddAppointment failed for %v", a.Start)
		}
	}

	got := sched.Appointments()
	if len(got) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start.Before(got[i-1].Start) {
			t.Errorf("appointments out of order at %d: %v before %v", i, got[i].Start, got[i-1].Start)
		}
	}

	if sched.TryAddAppointment(nil) {
		t.Error("expected false for nil appointment")
	}
	if sched.TryAddAppointment(early) {
		t.Error("expected false for duplicate id")
	}
	other := apptFor(t, uuid.New(), day.Add(16*time.Hour), day.Add(17*time.Hour))
	if sched.TryAddAppointment(other) {
		t.Error("expected false for physician mismatch")
	}
}

func TestPhysicianSchedule_RemoveAppointment(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	appt := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	sched.TryAddAppointment(appt)

	if !sched.RemoveAppointment(appt.ID) {
		t.Error("expected removal to succeed")
	}
	if sched.RemoveAppointment(appt.ID) {
		t.Error("expected second removal to fail")
	}
	if len(sched.Appointments()) != 0 {
		t.Error("expected empty schedule after removal")
	}
}

func TestPhysicianSchedule_AppointmentsOn(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	sched.TryAddAppointment(apptFor(t, physicianID, monday.Add(9*time.Hour), monday.Add(10*time.Hour)))
	sched.TryAddAppointment(apptFor(t, physicianID, monday.Add(11*time.Hour), monday.Add(12*time.Hour)))
	sched.TryAddAppointment(apptFor(t, physicianID, tuesday.Add(9*time.Hour), tuesday.Add(10*time.Hour)))

	if got := sched.AppointmentsOn(monday); len(got) != 2 {
		t.Errorf("expected 2 appointments on Monday, got %d", len(got))
	}
	if got := sched.AppointmentsOn(tuesday); len(got) != 1 {
		t.Errorf("expected 1 appointment on Tuesday, got %d", len(got))
	}
	if got := sched.AppointmentsOn(monday.AddDate(0, 0, 7)); len(got) != 0 {
		t.Errorf("expected no appointments next week, got %d", len(got))
	}
}

func TestPhysicianSchedule_AppointmentsInRange(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	sched.TryAddAppointment(apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour)))
	sched.TryAddAppointment(apptFor(t, physicianID, day.Add(12*time.Hour), day.Add(13*time.Hour)))

	// Range touching only the boundary of the first appointment excludes it.
	got := sched.AppointmentsInRange(day.Add(10*time.Hour), day.Add(14*time.Hour))
	if len(got) != 1 {
		t.Errorf("expected 1 appointment in range, got %d", len(got))
	}

	got = sched.AppointmentsInRange(day.Add(8*time.Hour), day.Add(14*time.Hour))
	if len(got) != 2 {
		t.Errorf("expected 2 appointments in range, got %d", len(got))
	}
}

func TestPhysicianSchedule_CopyingAccessors(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	appt := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	sched.TryAddAppointment(appt)

	got := sched.Appointments()
	got[0].Notes = "mutated"
	if sched.FindAppointment(appt.ID).Notes == "mutated" {
		t.Error("expected accessor to return copies")
	}
}

func TestPhysicianSchedule_ClearOldAppointments(t *testing.T) {
	physicianID := uuid.New()
	sched := NewPhysicianSchedule(physicianID)
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	old := apptFor(t, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour))
	recent := apptFor(t, physicianID, day.AddDate(0, 1, 0).Add(9*time.Hour), day.AddDate(0, 1, 0).Add(10*time.Hour))
	sched.TryAddAppointment(old)
	sched.TryAddAppointment(recent)

	removed := sched.ClearOldAppointments(day.AddDate(0, 0, 7))
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if sched.FindAppointment(old.ID) != nil {
		t.Error("expected old appointment to be gone")
	}
	if sched.FindAppointment(recent.ID) == nil {
		t.Error("expected recent appointment to survive")
	}
}

func TestDefaultAvailability(t *testing.T) {
	avail := DefaultAvailability()
	if len(avail) != 5 {
		t.Fatalf("expected 5 working days, got %d", len(avail))
	}
	if _, ok := avail[time.Saturday]; ok {
		t.Error("did not expect Saturday availability")
	}
	mon := avail[time.Monday]
	if mon.Start != 8*time.Hour || mon.End != 17*time.Hour {
		t.Errorf("expected Monday 08:00-17:00, got %v-%v", mon.Start, mon.End)
	}
}
