package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestAppointment(t *testing.T, start, end time.Time) *Appointment {
	t.Helper()
	appt, err := NewAppointment(uuid.New(), uuid.New(), start, end, "checkup", "annual physical")
	if err != nil {
		t.Fatalf("NewAppointment: %v", err)
	}
	return appt
}

func TestNewAppointment(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	appt := newTestAppointment(t, start, start.Add(30*time.Minute))

	if appt.Status != StatusScheduled {
		t.Errorf("expected status scheduled, got %s", appt.Status)
	}
	if appt.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if appt.CreatedAt.IsZero() || appt.ModifiedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestNewAppointment_Validation(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	if _, err := NewAppointment(uuid.Nil, uuid.New(), start, start.Add(time.Hour), "", ""); err == nil {
		t.Error("expected error for nil patient id")
	}
	if _, err := NewAppointment(uuid.New(), uuid.Nil, start, start.Add(time.Hour), "", ""); err == nil {
		t.Error("expected error for nil physician id")
	}
	if _, err := NewAppointment(uuid.New(), uuid.New(), start, start, "", ""); err == nil {
		t.Error("expected error for zero-length interval")
	}
}

func TestAppointment_Transitions(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	t.Run("complete", func(t *testing.T) {
		appt := newTestAppointment(t, start, start.Add(time.Hour))
		if err := appt.Complete(); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if appt.Status != StatusCompleted {
			t.Errorf("expected completed, got %s", appt.Status)
		}
		if !appt.IsTerminal() {
			t.Error("expected completed appointment to be terminal")
		}
		if err := appt.Cancel("x"); err == nil {
			t.Error("expected error cancelling a completed appointment")
		}
	})

	t.Run("cancel", func(t *testing.T) {
		appt := newTestAppointment(t, start, start.Add(time.Hour))
		if err := appt.Cancel("patient request"); err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		if appt.Status != StatusCancelled {
			t.Errorf("expected cancelled, got %s", appt.Status)
		}
		if appt.CancellationReason != "patient request" {
			t.Errorf("expected cancellation reason to be recorded, got %q", appt.CancellationReason)
		}
		if err := appt.Complete(); err == nil {
			t.Error("expected error completing a cancelled appointment")
		}
	})

	t.Run("no-show", func(t *testing.T) {
		appt := newTestAppointment(t, start, start.Add(time.Hour))
		if err := appt.MarkNoShow(); err != nil {
			t.Fatalf("MarkNoShow: %v", err)
		}
		if appt.Status != StatusNoShow {
			t.Errorf("expected no-show, got %s", appt.Status)
		}
		if err := appt.MarkNoShow(); err == nil {
			t.Error("expected error marking no-show twice")
		}
	})
}

func TestAppointment_Reschedule(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	appt := newTestAppointment(t, start, start.Add(time.Hour))

	newStart := start.Add(24 * time.Hour)
	next, err := appt.Reschedule(newStart, newStart.Add(time.Hour))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if next.ID == appt.ID {
		t.Error("expected successor to have a new id")
	}
	if next.RescheduledFromID == nil || *next.RescheduledFromID != appt.ID {
		t.Error("expected successor to link back to the original")
	}
	if next.PatientID != appt.PatientID || next.PhysicianID != appt.PhysicianID {
		t.Error("expected successor to keep patient and physician")
	}
	if !next.Start.Equal(newStart) {
		t.Errorf("expected successor start %v, got %v", newStart, next.Start)
	}

	// Terminal appointments cannot be rescheduled.
	appt.Cancel("done")
	if _, err := appt.Reschedule(newStart, newStart.Add(time.Hour)); err == nil {
		t.Error("expected error rescheduling a cancelled appointment")
	}
}

func TestAppointment_AttachClinicalDocument(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	appt := newTestAppointment(t, start, start.Add(time.Hour))

	docID := uuid.New()
	if err := appt.AttachClinicalDocument(docID); err != nil {
		t.Fatalf("AttachClinicalDocument: %v", err)
	}
	if appt.ClinicalDocumentID == nil || *appt.ClinicalDocumentID != docID {
		t.Error("expected document id to be recorded")
	}
	if err := appt.AttachClinicalDocument(uuid.New()); err == nil {
		t.Error("expected error attaching a second document")
	}
}

func TestAppointment_MergeWith(t *testing.T) {
	day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	patientID, physicianID := uuid.New(), uuid.New()

	a, _ := NewAppointment(patientID, physicianID, day.Add(9*time.Hour), day.Add(10*time.Hour), "checkup", "")
	b, _ := NewAppointment(patientID, physicianID, day.Add(10*time.Hour), day.Add(11*time.Hour), "checkup", "")

	merged, ok := a.MergeWith(b)
	if !ok {
		t.Fatal("expected adjacent appointments for the same pair to merge")
	}
	if !merged.Start.Equal(a.Start) || !merged.End.Equal(b.End) {
		t.Errorf("expected merged span 9:00-11:00, got %v-%v", merged.Start, merged.End)
	}

	// Different patient blocks the merge.
	c, _ := NewAppointment(uuid.New(), physicianID, day.Add(10*time.Hour), day.Add(11*time.Hour), "checkup", "")
	if _, ok := a.MergeWith(c); ok {
		t.Error("did not expect merge across patients")
	}

	// Disjoint intervals block the merge.
	d, _ := NewAppointment(patientID, physicianID, day.Add(14*time.Hour), day.Add(15*time.Hour), "checkup", "")
	if _, ok := a.MergeWith(d); ok {
		t.Error("did not expect merge of disjoint appointments")
	}
}

func TestAppointment_Clone(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	appt := newTestAppointment(t, start, start.Add(time.Hour))
	docID := uuid.New()
	appt.AttachClinicalDocument(docID)

	cp := appt.Clone()
	if cp == appt {
		t.Fatal("expected a distinct copy")
	}
	*cp.ClinicalDocumentID = uuid.New()
	if *appt.ClinicalDocumentID != docID {
		t.Error("expected clone's document pointer to be independent")
	}
}

func TestRehydrateAppointment(t *testing.T) {
	id := uuid.New()
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	created := start.Add(-48 * time.Hour)

	appt, err := RehydrateAppointment(id, uuid.New(), uuid.New(), start, start.Add(time.Hour), StatusCompleted, created, created)
	if err != nil {
		t.Fatalf("RehydrateAppointment: %v", err)
	}
	if appt.ID != id {
		t.Errorf("expected id %s preserved, got %s", id, appt.ID)
	}
	if appt.Status != StatusCompleted {
		t.Errorf("expected status preserved, got %s", appt.Status)
	}
	if !appt.CreatedAt.Equal(created) {
		t.Error("expected created timestamp preserved")
	}

	if _, err := RehydrateAppointment(id, uuid.New(), uuid.New(), start, start.Add(time.Hour), "pending", created, created); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := RehydrateAppointment(id, uuid.New(), uuid.New(), start, start, StatusScheduled, created, created); err == nil {
		t.Error("expected error for inverted bounds")
	}
}
