package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// ---------- In-Memory Repository Tests ----------

func TestApptRepoMem_CRUD(t *testing.T) {
	repo := NewAppointmentRepoMem()
	ctx := context.Background()
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	appt := newTestAppointment(t, monday.Add(9*time.Hour), monday.Add(10*time.Hour))
	if err := repo.Add(ctx, appt); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Add(ctx, appt); err == nil {
		t.Error("expected error adding duplicate id")
	}

	got, err := repo.GetByID(ctx, appt.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == appt {
		t.Error("expected repository to return a copy")
	}
	if got.ID != appt.ID {
		t.Errorf("expected id %s, got %s", appt.ID, got.ID)
	}

	got.Notes = "updated remotely"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := repo.GetByID(ctx, appt.ID)
	if again.Notes != "updated remotely" {
		t.Error("expected update to persist")
	}

	if err := repo.Delete(ctx, appt.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, appt.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, appt.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound on second delete, got %v", err)
	}
	if err := repo.Update(ctx, appt); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound updating deleted, got %v", err)
	}
}

func TestApptRepoMem_Search(t *testing.T) {
	repo := NewAppointmentRepoMem()
	ctx := context.Background()
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	patientID, physicianID := uuid.New(), uuid.New()

	a, _ := NewAppointment(patientID, physicianID, monday.Add(9*time.Hour), monday.Add(10*time.Hour), "checkup", "")
	b, _ := NewAppointment(patientID, uuid.New(), monday.Add(11*time.Hour), monday.Add(12*time.Hour), "followup", "")
	c, _ := NewAppointment(uuid.New(), physicianID, monday.AddDate(0, 0, 1).Add(9*time.Hour), monday.AddDate(0, 0, 1).Add(10*time.Hour), "checkup", "")
	c.Cancel("x")
	for _, appt := range []*Appointment{a, b, c} {
		if err := repo.Add(ctx, appt); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got, err := repo.Search(ctx, AppointmentSearch{PatientID: patientID})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 by patient, got %d", len(got))
	}

	got, _ = repo.Search(ctx, AppointmentSearch{PhysicianID: physicianID, Status: StatusScheduled})
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("expected only the scheduled appointment for the physician, got %d", len(got))
	}

	got, _ = repo.Search(ctx, AppointmentSearch{From: monday.Add(10*time.Hour + 30*time.Minute)})
	if len(got) != 2 {
		t.Errorf("expected 2 appointments ending after 10:30, got %d", len(got))
	}

	got, _ = repo.Search(ctx, AppointmentSearch{})
	if len(got) != 3 {
		t.Errorf("expected all 3 with empty filter, got %d", len(got))
	}
	// Results come back ordered by start time.
	for i := 1; i < len(got); i++ {
		if got[i].Start.Before(got[i-1].Start) {
			t.Error("expected results ordered by start time")
		}
	}
}

func TestApptRepoMem_GetByDate(t *testing.T) {
	repo := NewAppointmentRepoMem()
	ctx := context.Background()
	physicianID := uuid.New()
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	a, _ := NewAppointment(uuid.New(), physicianID, monday.Add(9*time.Hour), monday.Add(10*time.Hour), "", "")
	b, _ := NewAppointment(uuid.New(), physicianID, monday.AddDate(0, 0, 1).Add(9*time.Hour), monday.AddDate(0, 0, 1).Add(10*time.Hour), "", "")
	repo.Add(ctx, a)
	repo.Add(ctx, b)

	got, err := repo.GetByDate(ctx, physicianID, monday)
	if err != nil {
		t.Fatalf("GetByDate: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("expected only Monday's appointment, got %d", len(got))
	}
}

func TestApptRepoMem_HasConflict(t *testing.T) {
	repo := NewAppointmentRepoMem()
	ctx := context.Background()
	physicianID := uuid.New()
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	appt, _ := NewAppointment(uuid.New(), physicianID, monday.Add(9*time.Hour), monday.Add(10*time.Hour), "", "")
	repo.Add(ctx, appt)

	conflict, err := repo.HasConflict(ctx, physicianID, monday.Add(9*time.Hour+30*time.Minute), monday.Add(10*time.Hour+30*time.Minute), uuid.Nil)
	if err != nil {
		t.Fatalf("HasConflict: %v", err)
	}
	if !conflict {
		t.Error("expected overlap to conflict")
	}

	// Adjacent slot does not conflict.
	conflict, _ = repo.HasConflict(ctx, physicianID, monday.Add(10*time.Hour), monday.Add(11*time.Hour), uuid.Nil)
	if conflict {
		t.Error("did not expect adjacent slot to conflict")
	}

	// Excluding the appointment suppresses its own conflict.
	conflict, _ = repo.HasConflict(ctx, physicianID, monday.Add(9*time.Hour), monday.Add(10*time.Hour), appt.ID)
	if conflict {
		t.Error("did not expect conflict with excludeID set")
	}

	// Other physicians are unaffected.
	conflict, _ = repo.HasConflict(ctx, uuid.New(), monday.Add(9*time.Hour), monday.Add(10*time.Hour), uuid.Nil)
	if conflict {
		t.Error("did not expect conflict for another physician")
	}
}

func TestApptRepoMem_GetAvailableSlots(t *testing.T) {
	repo := NewAppointmentRepoMem()
	ctx := context.Background()
	physicianID := uuid.New()
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	appt, _ := NewAppointment(uuid.New(), physicianID, monday.Add(8*time.Hour), monday.Add(16*time.Hour+30*time.Minute), "", "")
	// Bypass policy bounds; the repository does not enforce them.
	repo.Add(ctx, appt)

	slots, err := repo.GetAvailableSlots(ctx, physicianID, monday, 30*time.Minute)
	if err != nil {
		t.Fatalf("GetAvailableSlots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected exactly 1 slot (16:30), got %d", len(slots))
	}
	if !slots[0].Start.Equal(monday.Add(16*time.Hour + 30*time.Minute)) {
		t.Errorf("expected 16:30, got %v", slots[0].Start)
	}

	if _, err := repo.GetAvailableSlots(ctx, physicianID, monday, 0); err == nil {
		t.Error("expected error for zero duration")
	}
}

func TestBlockRepoMem(t *testing.T) {
	repo := NewBlockRepoMem()
	ctx := context.Background()
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	physicianID := uuid.New()
	pid := physicianID
	personal, _ := NewUnavailableBlock(&pid, monday.Add(12*time.Hour), monday.Add(13*time.Hour), ReasonPersonalLeave, "")
	facility, _ := NewFacilityBlock(monday.Add(17*time.Hour), monday.Add(24*time.Hour), ReasonNonBusinessHours, "")

	if err := repo.Add(ctx, personal); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Add(ctx, facility); err != nil {
		t.Fatalf("Add: %v", err)
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(all))
	}

	byPhysician, _ := repo.GetByPhysician(ctx, physicianID)
	if len(byPhysician) != 1 || byPhysician[0].ID != personal.ID {
		t.Errorf("expected just the personal block, got %d", len(byPhysician))
	}

	facilityWide, _ := repo.GetFacilityWide(ctx)
	if len(facilityWide) != 1 || facilityWide[0].ID != facility.ID {
		t.Errorf("expected just the facility block, got %d", len(facilityWide))
	}

	if err := repo.Delete(ctx, personal.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, personal.ID); err == nil {
		t.Error("expected error deleting twice")
	}
}
