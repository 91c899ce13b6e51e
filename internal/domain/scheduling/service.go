package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service coordinates the in-memory schedule manager with the persistence
// layer. The manager holds the working copy of every schedule and decides
// conflicts; the repositories record accepted changes.
type Service struct {
	manager *ScheduleManager
	appts   AppointmentRepository
	blocks  UnavailableBlockRepository
	inTx    TxRunner
}

// TxRunner executes fn atomically against the backing store. Backends
// without transactions run fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

func NewService(manager *ScheduleManager, appts AppointmentRepository, blocks UnavailableBlockRepository) *Service {
	return &Service{
		manager: manager,
		appts:   appts,
		blocks:  blocks,
		inTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

// UseTx installs a transaction runner. Multi-write operations such as
// Reschedule run their repository calls through it.
func (s *Service) UseTx(run TxRunner) {
	s.inTx = run
}

// Manager exposes the underlying schedule manager for callers that only
// need read access, such as statistics endpoints.
func (s *Service) Manager() *ScheduleManager {
	return s.manager
}

// LoadSchedules rebuilds every physician schedule from the repositories.
// Called once at startup before the server accepts traffic. Returns the
// number of appointments and blocks restored.
func (s *Service) LoadSchedules(ctx context.Context) (int, int, error) {
	appts, err := s.appts.GetAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load appointments: %w", err)
	}
	restored := 0
	for _, a := range appts {
		if s.manager.RestoreAppointment(a) {
			restored++
		}
	}

	blocks, err := s.blocks.GetAll(ctx)
	if err != nil {
		return restored, 0, fmt.Errorf("load unavailable blocks: %w", err)
	}
	for _, b := range blocks {
		if b.IsFacilityWide() {
			s.manager.AddFacilityUnavailableBlock(b)
		} else {
			s.manager.AddPhysicianUnavailableBlock(*b.PhysicianID, b)
		}
	}
	return restored, len(blocks), nil
}

// BookingRequest carries the fields a caller supplies when scheduling.
type BookingRequest struct {
	PatientID      uuid.UUID
	PhysicianID    uuid.UUID
	Start          time.Time
	End            time.Time
	Type           string
	ReasonForVisit string
	Notes          string
	RoomNumber     string
}

// Book creates an appointment from the request and runs it through the
// manager. The appointment is persisted only when booking succeeds;
// conflict outcomes come back as data on the result.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*ScheduleResult, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if req.PhysicianID == uuid.Nil {
		return nil, fmt.Errorf("physician_id is required")
	}
	appt, err := NewAppointment(req.PatientID, req.PhysicianID, req.Start, req.End, req.Type, req.ReasonForVisit)
	if err != nil {
		return nil, err
	}
	appt.Notes = req.Notes
	appt.RoomNumber = req.RoomNumber

	result, err := s.manager.ScheduleAppointment(appt)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return result, nil
	}
	if err := s.appts.Add(ctx, appt); err != nil {
		// Keep memory and store consistent when the write fails.
		s.manager.DeleteAppointment(appt.PhysicianID, appt.ID)
		return nil, fmt.Errorf("persist appointment: %w", err)
	}
	return result, nil
}

// Cancel marks the appointment cancelled and persists the transition.
func (s *Service) Cancel(ctx context.Context, physicianID, appointmentID uuid.UUID, reason string) error {
	if !s.manager.CancelAppointment(physicianID, appointmentID, reason) {
		return ErrAppointmentNotFound
	}
	appt := s.manager.FindAppointmentByID(appointmentID)
	if appt == nil {
		return ErrAppointmentNotFound
	}
	return s.appts.Update(ctx, appt)
}

// MarkNoShow marks a scheduled appointment as a no-show.
func (s *Service) MarkNoShow(ctx context.Context, appointmentID uuid.UUID) error {
	appt := s.manager.FindAppointmentByID(appointmentID)
	if appt == nil {
		return ErrAppointmentNotFound
	}
	sched, lock, ok := s.manager.lookupSchedule(appt.PhysicianID)
	if !ok {
		return ErrPhysicianNotFound
	}
	lock.Lock()
	live := sched.FindAppointment(appointmentID)
	if live == nil {
		lock.Unlock()
		return ErrAppointmentNotFound
	}
	if err := live.MarkNoShow(); err != nil {
		lock.Unlock()
		return err
	}
	updated := live.Clone()
	lock.Unlock()
	return s.appts.Update(ctx, updated)
}

// Complete marks a scheduled appointment as completed.
func (s *Service) Complete(ctx context.Context, appointmentID uuid.UUID) error {
	appt := s.manager.FindAppointmentByID(appointmentID)
	if appt == nil {
		return ErrAppointmentNotFound
	}
	sched, lock, ok := s.manager.lookupSchedule(appt.PhysicianID)
	if !ok {
		return ErrPhysicianNotFound
	}
	lock.Lock()
	live := sched.FindAppointment(appointmentID)
	if live == nil {
		lock.Unlock()
		return ErrAppointmentNotFound
	}
	if err := live.Complete(); err != nil {
		lock.Unlock()
		return err
	}
	updated := live.Clone()
	lock.Unlock()
	return s.appts.Update(ctx, updated)
}

// Reschedule moves an appointment to a new time. On success the original
// is persisted as cancelled and the successor as scheduled.
func (s *Service) Reschedule(ctx context.Context, physicianID, appointmentID uuid.UUID, newStart, newEnd time.Time) (*ScheduleResult, error) {
	result, err := s.manager.RescheduleAppointment(physicianID, appointmentID, newStart, newEnd)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return result, nil
	}
	// The cancelled original and its successor are written together so a
	// transactional backend never stores one without the other.
	original := s.manager.FindAppointmentByID(appointmentID)
	err = s.inTx(ctx, func(ctx context.Context) error {
		if original != nil {
			if err := s.appts.Update(ctx, original); err != nil {
				return fmt.Errorf("persist cancelled original: %w", err)
			}
		}
		if err := s.appts.Add(ctx, result.Appointment); err != nil {
			return fmt.Errorf("persist rescheduled appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the appointment from both the schedule and the store.
func (s *Service) Delete(ctx context.Context, physicianID, appointmentID uuid.UUID) error {
	if !s.manager.DeleteAppointment(physicianID, appointmentID) {
		return ErrAppointmentNotFound
	}
	return s.appts.Delete(ctx, appointmentID)
}

// GetAppointment returns a single appointment by ID, or nil when unknown.
func (s *Service) GetAppointment(_ context.Context, appointmentID uuid.UUID) *Appointment {
	return s.manager.FindAppointmentByID(appointmentID)
}

// AttachDocument links a clinical document to an appointment and persists
// the association.
func (s *Service) AttachDocument(ctx context.Context, appointmentID, documentID uuid.UUID) error {
	appt := s.manager.FindAppointmentByID(appointmentID)
	if appt == nil {
		return ErrAppointmentNotFound
	}
	sched, lock, ok := s.manager.lookupSchedule(appt.PhysicianID)
	if !ok {
		return ErrPhysicianNotFound
	}
	lock.Lock()
	live := sched.FindAppointment(appointmentID)
	if live == nil {
		lock.Unlock()
		return ErrAppointmentNotFound
	}
	if err := live.AttachClinicalDocument(documentID); err != nil {
		lock.Unlock()
		return err
	}
	updated := live.Clone()
	lock.Unlock()
	return s.appts.Update(ctx, updated)
}

// NextAvailableSlot finds the first bookable slot for the physician.
func (s *Service) NextAvailableSlot(_ context.Context, physicianID uuid.UUID, duration time.Duration, after time.Time) (TimeSlot, bool) {
	return s.manager.FindNextAvailableSlot(physicianID, duration, after)
}

// AvailableSlotsOn lists every open slot of the given duration on a date.
func (s *Service) AvailableSlotsOn(ctx context.Context, physicianID uuid.UUID, date time.Time, duration time.Duration) ([]TimeSlot, error) {
	return s.appts.GetAvailableSlots(ctx, physicianID, date, duration)
}

// DailySchedule returns the physician's appointments on the given date.
func (s *Service) DailySchedule(_ context.Context, physicianID uuid.UUID, date time.Time) []*Appointment {
	return s.manager.GetDailySchedule(physicianID, date)
}

// ScheduleInRange returns the physician's appointments overlapping [from, to).
func (s *Service) ScheduleInRange(_ context.Context, physicianID uuid.UUID, from, to time.Time) []*Appointment {
	return s.manager.GetScheduleInRange(physicianID, from, to)
}

// PatientAppointments returns every appointment for the patient across
// all physicians.
func (s *Service) PatientAppointments(_ context.Context, patientID uuid.UUID) []*Appointment {
	return s.manager.GetPatientAppointments(patientID)
}

// SearchAppointments queries the repository with the given filters.
func (s *Service) SearchAppointments(ctx context.Context, q AppointmentSearch) ([]*Appointment, error) {
	return s.appts.Search(ctx, q)
}

// AddUnavailableBlock registers a block on a physician's schedule or, when
// the block is facility-wide, on every schedule, and persists it.
func (s *Service) AddUnavailableBlock(ctx context.Context, block *UnavailableBlock) error {
	if block == nil {
		return fmt.Errorf("block is required")
	}
	if block.IsFacilityWide() {
		s.manager.AddFacilityUnavailableBlock(block)
	} else {
		s.manager.AddPhysicianUnavailableBlock(*block.PhysicianID, block)
	}
	return s.blocks.Add(ctx, block)
}

// Statistics computes appointment outcome rates for a physician.
func (s *Service) Statistics(_ context.Context, physicianID uuid.UUID, from, to time.Time) PhysicianStatistics {
	return s.manager.GetPhysicianStatistics(physicianID, from, to)
}

// PurgeOldAppointments drops appointments that ended before the cutoff
// from memory and the store. Returns the number removed from memory.
func (s *Service) PurgeOldAppointments(ctx context.Context, before time.Time) (int, error) {
	old, err := s.appts.Search(ctx, AppointmentSearch{To: before})
	if err != nil {
		return 0, err
	}
	for _, a := range old {
		if !a.End.After(before) {
			if err := s.appts.Delete(ctx, a.ID); err != nil {
				return 0, err
			}
		}
	}
	return s.manager.CleanupOldAppointments(before), nil
}
