package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentSearch holds the optional filters of a repository search. Zero
// values mean "no filter".
type AppointmentSearch struct {
	PatientID   uuid.UUID
	PhysicianID uuid.UUID
	Status      AppointmentStatus
	From        time.Time
	To          time.Time
}

// AppointmentRepository persists appointments. The scheduling core never
// calls it directly; the service rehydrates schedules from it at startup and
// writes accepted bookings back through it.
type AppointmentRepository interface {
	Add(ctx context.Context, appt *Appointment) error
	Update(ctx context.Context, appt *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAll(ctx context.Context) ([]*Appointment, error)
	Search(ctx context.Context, q AppointmentSearch) ([]*Appointment, error)
	GetByDate(ctx context.Context, physicianID uuid.UUID, date time.Time) ([]*Appointment, error)
	GetByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*Appointment, error)
	GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	GetByStatus(ctx context.Context, status AppointmentStatus) ([]*Appointment, error)
	HasConflict(ctx context.Context, physicianID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error)
	GetAvailableSlots(ctx context.Context, physicianID uuid.UUID, date time.Time, duration time.Duration) ([]TimeSlot, error)
}

// UnavailableBlockRepository persists physician and facility blocks.
type UnavailableBlockRepository interface {
	Add(ctx context.Context, block *UnavailableBlock) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetAll(ctx context.Context) ([]*UnavailableBlock, error)
	GetByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*UnavailableBlock, error)
	GetFacilityWide(ctx context.Context) ([]*UnavailableBlock, error)
}
