package scheduling

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors returned by the schedule manager.
var (
	ErrNilAppointment      = errors.New("appointment is required")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPhysicianNotFound   = errors.New("physician has no schedule")
)

// ScheduleResult is the outcome of a booking attempt. Conflicts and
// suggestions are data for the caller to branch on, never errors.
type ScheduleResult struct {
	Success     bool                 `json:"success"`
	Appointment *Appointment         `json:"appointment,omitempty"`
	Conflicts   []ScheduleConflict   `json:"conflicts,omitempty"`
	Suggestions []TimeSlotSuggestion `json:"suggestions,omitempty"`
	Message     string               `json:"message,omitempty"`
}

// PhysicianStatistics summarizes appointment outcomes for one physician
// over a range.
type PhysicianStatistics struct {
	PhysicianID      uuid.UUID `json:"physician_id"`
	Total            int       `json:"total"`
	Scheduled        int       `json:"scheduled"`
	Completed        int       `json:"completed"`
	Cancelled        int       `json:"cancelled"`
	NoShow           int       `json:"no_show"`
	CompletionRate   float64   `json:"completion_rate"`
	CancellationRate float64   `json:"cancellation_rate"`
	NoShowRate       float64   `json:"no_show_rate"`
}

// ScheduleManager orchestrates every physician schedule and the facility
// block list. It is constructed explicitly and injected where needed; there
// is no package-level instance.
//
// Locking is sharded per physician: mu guards the schedule map, the lock
// map and the facility block list, while each physician's mutex serializes
// operations against that physician's schedule. Booking for one physician
// never blocks booking for another.
type ScheduleManager struct {
	mu             sync.RWMutex
	schedules      map[uuid.UUID]*PhysicianSchedule
	locks          map[uuid.UUID]*sync.Mutex
	facilityBlocks []*UnavailableBlock

	detector *ScheduleConflictDetector
	strategy BookingStrategy
}

// NewScheduleManager creates a manager using the given booking strategy for
// alternative-slot proposals. A nil strategy defaults to the first-available
// forward scan.
func NewScheduleManager(strategy BookingStrategy) *ScheduleManager {
	if strategy == nil {
		strategy = FirstAvailableStrategy{}
	}
	return &ScheduleManager{
		schedules: make(map[uuid.UUID]*PhysicianSchedule),
		locks:     make(map[uuid.UUID]*sync.Mutex),
		detector:  NewConflictDetector(strategy),
		strategy:  strategy,
	}
}

// scheduleFor returns the physician's schedule and its mutex, creating both
// on first access, along with a snapshot of the facility block list.
func (m *ScheduleManager) scheduleFor(physicianID uuid.UUID) (*PhysicianSchedule, *sync.Mutex, []*UnavailableBlock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sched, ok := m.schedules[physicianID]
	if !ok {
		sched = NewPhysicianSchedule(physicianID)
		m.schedules[physicianID] = sched
		m.locks[physicianID] = &sync.Mutex{}
	}
	blocks := make([]*UnavailableBlock, len(m.facilityBlocks))
	copy(blocks, m.facilityBlocks)
	return sched, m.locks[physicianID], blocks
}

// lookupSchedule is like scheduleFor but does not create missing schedules.
func (m *ScheduleManager) lookupSchedule(physicianID uuid.UUID) (*PhysicianSchedule, *sync.Mutex, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sched, ok := m.schedules[physicianID]
	if !ok {
		return nil, nil, false
	}
	return sched, m.locks[physicianID], true
}

// snapshotSchedules returns the current schedule/lock pairs for operations
// that scan every physician.
func (m *ScheduleManager) snapshotSchedules() []scheduleRef {
	m.mu.RLock()
	defer m.mu.RUnlock()
	refs := make([]scheduleRef, 0, len(m.schedules))
	for id, sched := range m.schedules {
		refs = append(refs, scheduleRef{sched: sched, lock: m.locks[id]})
	}
	return refs
}

type scheduleRef struct {
	sched *PhysicianSchedule
	lock  *sync.Mutex
}

// ScheduleAppointment books the appointment if the conflict pipeline passes.
// On conflicts it returns them together with at most one alternative slot,
// and leaves all state untouched.
func (m *ScheduleManager) ScheduleAppointment(appt *Appointment) (*ScheduleResult, error) {
	if appt == nil {
		return nil, ErrNilAppointment
	}
	sched, lock, facilityBlocks := m.scheduleFor(appt.PhysicianID)
	lock.Lock()
	defer lock.Unlock()
	return m.scheduleLocked(appt, sched, facilityBlocks), nil
}

// scheduleLocked runs the check-then-add sequence. The caller holds the
// physician's lock.
func (m *ScheduleManager) scheduleLocked(appt *Appointment, sched *PhysicianSchedule, facilityBlocks []*UnavailableBlock) *ScheduleResult {
	check := m.detector.CheckForConflicts(appt, sched, facilityBlocks, uuid.Nil)
	if check.HasConflicts {
		return &ScheduleResult{
			Success:     false,
			Appointment: appt.Clone(),
			Conflicts:   check.Conflicts,
			Suggestions: m.detector.FindAlternative(appt, sched, facilityBlocks),
			Message:     fmt.Sprintf("appointment conflicts with %d existing constraint(s)", len(check.Conflicts)),
		}
	}
	if !sched.TryAddAppointment(appt) {
		return &ScheduleResult{
			Success:     false,
			Appointment: appt.Clone(),
			Message:     "appointment could not be added to the schedule",
		}
	}
	return &ScheduleResult{Success: true, Appointment: appt.Clone()}
}

// RestoreAppointment places a persisted appointment back on its physician's
// schedule without running the conflict pipeline. Used when rebuilding
// schedules from a repository at startup, where the stored state is taken
// as authoritative.
func (m *ScheduleManager) RestoreAppointment(appt *Appointment) bool {
	if appt == nil {
		return false
	}
	sched, lock, _ := m.scheduleFor(appt.PhysicianID)
	lock.Lock()
	defer lock.Unlock()
	return sched.TryAddAppointment(appt)
}

// CancelAppointment transitions the appointment to cancelled, preserving it
// on the schedule as history. Returns false when the physician or
// appointment is unknown, or the appointment is already terminal.
func (m *ScheduleManager) CancelAppointment(physicianID, appointmentID uuid.UUID, reason string) bool {
	sched, lock, ok := m.lookupSchedule(physicianID)
	if !ok {
		return false
	}
	lock.Lock()
	defer lock.Unlock()
	appt := sched.FindAppointment(appointmentID)
	if appt == nil {
		return false
	}
	return appt.Cancel(reason) == nil
}

// DeleteAppointment hard-removes the appointment. Distinct from
// cancellation, which preserves history.
func (m *ScheduleManager) DeleteAppointment(physicianID, appointmentID uuid.UUID) bool {
	sched, lock, ok := m.lookupSchedule(physicianID)
	if !ok {
		return false
	}
	lock.Lock()
	defer lock.Unlock()
	return sched.RemoveAppointment(appointmentID)
}

// RescheduleAppointment books a successor interval and cancels the original
// only once the successor is safely on the schedule. On any failure the
// original keeps (or regains) its scheduled status so a failed reschedule
// never strands the patient without a booking.
func (m *ScheduleManager) RescheduleAppointment(physicianID, appointmentID uuid.UUID, newStart, newEnd time.Time) (*ScheduleResult, error) {
	sched, lock, ok := m.lookupSchedule(physicianID)
	if !ok {
		return nil, ErrPhysicianNotFound
	}
	m.mu.RLock()
	facilityBlocks := make([]*UnavailableBlock, len(m.facilityBlocks))
	copy(facilityBlocks, m.facilityBlocks)
	m.mu.RUnlock()

	lock.Lock()
	defer lock.Unlock()

	original := sched.FindAppointment(appointmentID)
	if original == nil {
		return nil, ErrAppointmentNotFound
	}
	successor, err := original.Reschedule(newStart, newEnd)
	if err != nil {
		return nil, err
	}

	check := m.detector.CheckForConflicts(successor, sched, facilityBlocks, original.ID)
	if check.HasConflicts {
		return &ScheduleResult{
			Success:     false,
			Appointment: successor.Clone(),
			Conflicts:   check.Conflicts,
			Suggestions: m.detector.FindAlternative(successor, sched, facilityBlocks),
			Message:     "reschedule target conflicts with existing constraints; original booking unchanged",
		}, nil
	}

	if err := original.Cancel("rescheduled"); err != nil {
		return nil, err
	}
	if !sched.TryAddAppointment(successor) {
		original.restoreScheduled()
		return &ScheduleResult{
			Success:     false,
			Appointment: successor.Clone(),
			Message:     "successor appointment could not be added; original booking restored",
		}, nil
	}
	return &ScheduleResult{Success: true, Appointment: successor.Clone()}, nil
}

// FindNextAvailableSlot runs the booking strategy for the physician.
func (m *ScheduleManager) FindNextAvailableSlot(physicianID uuid.UUID, duration time.Duration, after time.Time) (TimeSlot, bool) {
	sched, lock, facilityBlocks := m.scheduleFor(physicianID)
	lock.Lock()
	defer lock.Unlock()
	return m.strategy.FindNextAvailableSlot(sched, duration, after, facilityBlocks)
}

// GetDailySchedule returns copies of the physician's appointments on a date.
func (m *ScheduleManager) GetDailySchedule(physicianID uuid.UUID, date time.Time) []*Appointment {
	sched, lock, ok := m.lookupSchedule(physicianID)
	if !ok {
		return nil
	}
	lock.Lock()
	defer lock.Unlock()
	return sched.AppointmentsOn(date)
}

// GetScheduleInRange returns copies of appointments overlapping [from, to).
func (m *ScheduleManager) GetScheduleInRange(physicianID uuid.UUID, from, to time.Time) []*Appointment {
	sched, lock, ok := m.lookupSchedule(physicianID)
	if !ok {
		return nil
	}
	lock.Lock()
	defer lock.Unlock()
	return sched.AppointmentsInRange(from, to)
}

// GetPatientAppointments scans every physician's schedule for the patient.
// Linear in the number of physicians.
func (m *ScheduleManager) GetPatientAppointments(patientID uuid.UUID) []*Appointment {
	var out []*Appointment
	for _, ref := range m.snapshotSchedules() {
		ref.lock.Lock()
		for _, appt := range ref.sched.appointments {
			if appt.PatientID == patientID {
				out = append(out, appt.Clone())
			}
		}
		ref.lock.Unlock()
	}
	return out
}

// GetAllAppointments returns copies of every appointment across physicians.
func (m *ScheduleManager) GetAllAppointments() []*Appointment {
	var out []*Appointment
	for _, ref := range m.snapshotSchedules() {
		ref.lock.Lock()
		out = append(out, ref.sched.Appointments()...)
		ref.lock.Unlock()
	}
	return out
}

// FindAppointmentByID scans all schedules for the appointment. Returns nil
// when not found.
func (m *ScheduleManager) FindAppointmentByID(appointmentID uuid.UUID) *Appointment {
	for _, ref := range m.snapshotSchedules() {
		ref.lock.Lock()
		if appt := ref.sched.FindAppointment(appointmentID); appt != nil {
			cp := appt.Clone()
			ref.lock.Unlock()
			return cp
		}
		ref.lock.Unlock()
	}
	return nil
}

// AddFacilityUnavailableBlock registers a block applying to every physician.
func (m *ScheduleManager) AddFacilityUnavailableBlock(block *UnavailableBlock) {
	if block == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facilityBlocks = append(m.facilityBlocks, block)
}

// FacilityUnavailableBlocks returns a copy of the facility-wide block list.
func (m *ScheduleManager) FacilityUnavailableBlocks() []*UnavailableBlock {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*UnavailableBlock, 0, len(m.facilityBlocks))
	for _, b := range m.facilityBlocks {
		out = append(out, b.Clone())
	}
	return out
}

// AddPhysicianUnavailableBlock records a block on one physician's schedule.
func (m *ScheduleManager) AddPhysicianUnavailableBlock(physicianID uuid.UUID, block *UnavailableBlock) {
	if block == nil {
		return
	}
	sched, lock, _ := m.scheduleFor(physicianID)
	lock.Lock()
	defer lock.Unlock()
	sched.AddUnavailableBlock(block)
}

// SetPhysicianAvailability replaces the physician's standard weekly windows.
func (m *ScheduleManager) SetPhysicianAvailability(physicianID uuid.UUID, availability map[time.Weekday]DayWindow) {
	sched, lock, _ := m.scheduleFor(physicianID)
	lock.Lock()
	defer lock.Unlock()
	windows := make(map[time.Weekday]DayWindow, len(availability))
	for day, w := range availability {
		windows[day] = w
	}
	sched.StandardAvailability = windows
}

// GetPhysicianStatistics counts appointment outcomes within [from, to) and
// derives completion, cancellation and no-show rates.
func (m *ScheduleManager) GetPhysicianStatistics(physicianID uuid.UUID, from, to time.Time) PhysicianStatistics {
	stats := PhysicianStatistics{PhysicianID: physicianID}
	sched, lock, ok := m.lookupSchedule(physicianID)
	if !ok {
		return stats
	}
	lock.Lock()
	defer lock.Unlock()
	for _, appt := range sched.appointments {
		if !appt.Start.Before(to) || !from.Before(appt.End) {
			continue
		}
		stats.Total++
		switch appt.Status {
		case StatusScheduled:
			stats.Scheduled++
		case StatusCompleted:
			stats.Completed++
		case StatusCancelled:
			stats.Cancelled++
		case StatusNoShow:
			stats.NoShow++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
		stats.CancellationRate = float64(stats.Cancelled) / float64(stats.Total) * 100
		stats.NoShowRate = float64(stats.NoShow) / float64(stats.Total) * 100
	}
	return stats
}

// CleanupOldAppointments removes appointments ending before the cutoff from
// every schedule and returns the total removed.
func (m *ScheduleManager) CleanupOldAppointments(before time.Time) int {
	total := 0
	for _, ref := range m.snapshotSchedules() {
		ref.lock.Lock()
		total += ref.sched.ClearOldAppointments(before)
		ref.lock.Unlock()
	}
	return total
}

// SeedFacilityClosures registers facility-wide blocks for weekends and
// out-of-hours time over a rolling horizon starting at from.
func (m *ScheduleManager) SeedFacilityClosures(from time.Time, days int) {
	y, mo, d := from.Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, from.Location())
	var blocks []*UnavailableBlock
	for i := 0; i < days; i++ {
		current := day.AddDate(0, 0, i)
		next := current.AddDate(0, 0, 1)
		if current.Weekday() == time.Saturday || current.Weekday() == time.Sunday {
			if b, err := NewFacilityBlock(current, next, ReasonNonBusinessHours, "weekend"); err == nil {
				blocks = append(blocks, b)
			}
			continue
		}
		if b, err := NewFacilityBlock(current, current.Add(businessDayStart), ReasonNonBusinessHours, "before opening"); err == nil {
			blocks = append(blocks, b)
		}
		if b, err := NewFacilityBlock(current.Add(businessDayEnd), next, ReasonNonBusinessHours, "after closing"); err == nil {
			blocks = append(blocks, b)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facilityBlocks = append(m.facilityBlocks, blocks...)
}
