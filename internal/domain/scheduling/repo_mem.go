package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// apptRepoMem is the in-memory appointment backend, used in tests and
// single-node deployments without a database.
type apptRepoMem struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Appointment
}

// NewAppointmentRepoMem creates an empty in-memory repository.
func NewAppointmentRepoMem() AppointmentRepository {
	return &apptRepoMem{items: make(map[uuid.UUID]*Appointment)}
}

func (r *apptRepoMem) Add(_ context.Context, appt *Appointment) error {
	if appt == nil {
		return ErrNilAppointment
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[appt.ID]; exists {
		return fmt.Errorf("appointment %s already exists", appt.ID)
	}
	r.items[appt.ID] = appt.Clone()
	return nil
}

func (r *apptRepoMem) Update(_ context.Context, appt *Appointment) error {
	if appt == nil {
		return ErrNilAppointment
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[appt.ID]; !exists {
		return ErrAppointmentNotFound
	}
	r.items[appt.ID] = appt.Clone()
	return nil
}

func (r *apptRepoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[id]; !exists {
		return ErrAppointmentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *apptRepoMem) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appt, ok := r.items[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return appt.Clone(), nil
}

func (r *apptRepoMem) GetAll(_ context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*Appointment) bool { return true }), nil
}

func (r *apptRepoMem) Search(_ context.Context, q AppointmentSearch) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *Appointment) bool {
		if q.PatientID != uuid.Nil && a.PatientID != q.PatientID {
			return false
		}
		if q.PhysicianID != uuid.Nil && a.PhysicianID != q.PhysicianID {
			return false
		}
		if q.Status != "" && a.Status != q.Status {
			return false
		}
		if !q.From.IsZero() && a.End.Before(q.From) {
			return false
		}
		if !q.To.IsZero() && !a.Start.Before(q.To) {
			return false
		}
		return true
	}), nil
}

func (r *apptRepoMem) GetByDate(_ context.Context, physicianID uuid.UUID, date time.Time) ([]*Appointment, error) {
	y, m, d := date.Date()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *Appointment) bool {
		ay, am, ad := a.Start.Date()
		return a.PhysicianID == physicianID && ay == y && am == m && ad == d
	}), nil
}

func (r *apptRepoMem) GetByPhysician(_ context.Context, physicianID uuid.UUID) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *Appointment) bool { return a.PhysicianID == physicianID }), nil
}

func (r *apptRepoMem) GetByPatient(_ context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *apptRepoMem) GetByStatus(_ context.Context, status AppointmentStatus) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *Appointment) bool { return a.Status == status }), nil
}

func (r *apptRepoMem) HasConflict(_ context.Context, physicianID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	probe := TimeInterval{Start: start, End: end}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.items {
		if a.ID == excludeID || a.PhysicianID != physicianID || a.Status != StatusScheduled {
			continue
		}
		if a.Overlaps(probe) {
			return true, nil
		}
	}
	return false, nil
}

func (r *apptRepoMem) GetAvailableSlots(_ context.Context, physicianID uuid.UUID, date time.Time, duration time.Duration) ([]TimeSlot, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	r.mu.RLock()
	var busy []TimeInterval
	for _, a := range r.items {
		if a.PhysicianID == physicianID && a.Status == StatusScheduled &&
			a.Start.Before(dayEnd) && dayStart.Before(a.End) {
			busy = append(busy, a.TimeInterval)
		}
	}
	r.mu.RUnlock()

	return dailySlots(date, duration, busy), nil
}

// collect copies matching appointments sorted by start time. Callers hold
// the read lock.
func (r *apptRepoMem) collect(match func(*Appointment) bool) []*Appointment {
	var out []*Appointment
	for _, a := range r.items {
		if match(a) {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// blockRepoMem is the in-memory unavailable-block backend.
type blockRepoMem struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*UnavailableBlock
}

// NewBlockRepoMem creates an empty in-memory block repository.
func NewBlockRepoMem() UnavailableBlockRepository {
	return &blockRepoMem{items: make(map[uuid.UUID]*UnavailableBlock)}
}

func (r *blockRepoMem) Add(_ context.Context, block *UnavailableBlock) error {
	if block == nil {
		return fmt.Errorf("block is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[block.ID]; exists {
		return fmt.Errorf("block %s already exists", block.ID)
	}
	r.items[block.ID] = block.Clone()
	return nil
}

func (r *blockRepoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[id]; !exists {
		return fmt.Errorf("block %s not found", id)
	}
	delete(r.items, id)
	return nil
}

func (r *blockRepoMem) GetAll(_ context.Context) ([]*UnavailableBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectBlocks(func(*UnavailableBlock) bool { return true }), nil
}

func (r *blockRepoMem) GetByPhysician(_ context.Context, physicianID uuid.UUID) ([]*UnavailableBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectBlocks(func(b *UnavailableBlock) bool {
		return b.PhysicianID != nil && *b.PhysicianID == physicianID
	}), nil
}

func (r *blockRepoMem) GetFacilityWide(_ context.Context) ([]*UnavailableBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectBlocks(func(b *UnavailableBlock) bool { return b.IsFacilityWide() }), nil
}

func (r *blockRepoMem) collectBlocks(match func(*UnavailableBlock) bool) []*UnavailableBlock {
	var out []*UnavailableBlock
	for _, b := range r.items {
		if match(b) {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
