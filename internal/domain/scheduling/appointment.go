package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of a booked appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

var validAppointmentStatuses = map[AppointmentStatus]bool{
	StatusScheduled: true, StatusCompleted: true,
	StatusCancelled: true, StatusNoShow: true,
}

// Appointment is a booked time interval for a patient with a physician.
// Completed, cancelled and no-show are terminal; a reschedule produces a new
// appointment linked back through RescheduledFromID.
type Appointment struct {
	TimeInterval
	PatientID          uuid.UUID         `json:"patient_id"`
	PhysicianID        uuid.UUID         `json:"physician_id"`
	Status             AppointmentStatus `json:"status"`
	Type               string            `json:"type,omitempty"`
	ReasonForVisit     string            `json:"reason_for_visit,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	ClinicalDocumentID *uuid.UUID        `json:"clinical_document_id,omitempty"`
	RescheduledFromID  *uuid.UUID        `json:"rescheduled_from_id,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	RoomNumber         string            `json:"room_number,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	ModifiedAt         time.Time         `json:"modified_at"`
}

// NewAppointment creates an appointment in the scheduled state.
func NewAppointment(patientID, physicianID uuid.UUID, start, end time.Time, apptType, reason string) (*Appointment, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if physicianID == uuid.Nil {
		return nil, fmt.Errorf("physician_id is required")
	}
	iv, err := NewTimeInterval(start, end, reason)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Appointment{
		TimeInterval:   iv,
		PatientID:      patientID,
		PhysicianID:    physicianID,
		Status:         StatusScheduled,
		Type:           apptType,
		ReasonForVisit: reason,
		CreatedAt:      now,
		ModifiedAt:     now,
	}, nil
}

// RehydrateAppointment rebuilds a persisted appointment with its original
// identity and timestamps. Repositories use this instead of mutating
// read-only fields after construction.
func RehydrateAppointment(id, patientID, physicianID uuid.UUID, start, end time.Time, status AppointmentStatus, createdAt, modifiedAt time.Time) (*Appointment, error) {
	iv, err := rehydrateInterval(id, start, end, "")
	if err != nil {
		return nil, err
	}
	if !validAppointmentStatuses[status] {
		return nil, fmt.Errorf("invalid appointment status: %s", status)
	}
	return &Appointment{
		TimeInterval: iv,
		PatientID:    patientID,
		PhysicianID:  physicianID,
		Status:       status,
		CreatedAt:    createdAt,
		ModifiedAt:   modifiedAt,
	}, nil
}

// IsTerminal reports whether the appointment can no longer change state.
func (a *Appointment) IsTerminal() bool {
	return a.Status != StatusScheduled
}

// Complete transitions scheduled -> completed.
func (a *Appointment) Complete() error {
	if a.Status != StatusScheduled {
		return fmt.Errorf("cannot complete appointment in status %s", a.Status)
	}
	a.Status = StatusCompleted
	a.ModifiedAt = time.Now().UTC()
	return nil
}

// Cancel transitions scheduled -> cancelled, recording the reason.
func (a *Appointment) Cancel(reason string) error {
	if a.Status != StatusScheduled {
		return fmt.Errorf("cannot cancel appointment in status %s", a.Status)
	}
	a.Status = StatusCancelled
	a.CancellationReason = reason
	a.ModifiedAt = time.Now().UTC()
	return nil
}

// MarkNoShow transitions scheduled -> no-show.
func (a *Appointment) MarkNoShow() error {
	if a.Status != StatusScheduled {
		return fmt.Errorf("cannot mark no-show for appointment in status %s", a.Status)
	}
	a.Status = StatusNoShow
	a.ModifiedAt = time.Now().UTC()
	return nil
}

// restoreScheduled undoes a cancellation, used by the manager when a
// reschedule fails and the original booking must stand.
func (a *Appointment) restoreScheduled() {
	a.Status = StatusScheduled
	a.CancellationReason = ""
	a.ModifiedAt = time.Now().UTC()
}

// Reschedule produces a successor appointment at the new time, linked back
// to this one. The caller cancels the original only after the successor is
// successfully booked.
func (a *Appointment) Reschedule(newStart, newEnd time.Time) (*Appointment, error) {
	if a.Status != StatusScheduled {
		return nil, fmt.Errorf("cannot reschedule appointment in status %s", a.Status)
	}
	next, err := NewAppointment(a.PatientID, a.PhysicianID, newStart, newEnd, a.Type, a.ReasonForVisit)
	if err != nil {
		return nil, err
	}
	from := a.ID
	next.RescheduledFromID = &from
	next.Notes = a.Notes
	next.RoomNumber = a.RoomNumber
	return next, nil
}

// AttachClinicalDocument records the document id produced once the encounter
// is documented. Set once; the document itself belongs to another subsystem.
func (a *Appointment) AttachClinicalDocument(docID uuid.UUID) error {
	if a.ClinicalDocumentID != nil {
		return fmt.Errorf("appointment already has clinical document %s", *a.ClinicalDocumentID)
	}
	a.ClinicalDocumentID = &docID
	a.ModifiedAt = time.Now().UTC()
	return nil
}

// MergeWith combines two overlapping or adjacent appointments for the same
// patient and physician into one spanning interval. Returns false when no
// merge is possible; it never fails loudly.
func (a *Appointment) MergeWith(other *Appointment) (*Appointment, bool) {
	if other == nil || !a.canMergeWith(other.TimeInterval) {
		return nil, false
	}
	if a.PatientID != other.PatientID || a.PhysicianID != other.PhysicianID {
		return nil, false
	}
	start, end := a.mergeSpan(other.TimeInterval)
	merged, err := NewAppointment(a.PatientID, a.PhysicianID, start, end, a.Type, a.ReasonForVisit)
	if err != nil {
		return nil, false
	}
	return merged, true
}

// Clone returns a deep copy so reads outside the manager's locks never
// observe concurrent mutation.
func (a *Appointment) Clone() *Appointment {
	cp := *a
	if a.ClinicalDocumentID != nil {
		id := *a.ClinicalDocumentID
		cp.ClinicalDocumentID = &id
	}
	if a.RescheduledFromID != nil {
		id := *a.RescheduledFromID
		cp.RescheduledFromID = &id
	}
	return &cp
}
