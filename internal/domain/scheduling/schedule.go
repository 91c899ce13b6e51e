package scheduling

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DayWindow is a working window within one day, e.g. 08:00-17:00.
type DayWindow struct {
	Start time.Duration `json:"start"` // offset from midnight
	End   time.Duration `json:"end"`
}

// DefaultAvailability is the standard Mon-Fri 08:00-17:00 working week.
func DefaultAvailability() map[time.Weekday]DayWindow {
	window := DayWindow{Start: 8 * time.Hour, End: 17 * time.Hour}
	return map[time.Weekday]DayWindow{
		time.Monday:    window,
		time.Tuesday:   window,
		time.Wednesday: window,
		time.Thursday:  window,
		time.Friday:    window,
	}
}

// PhysicianSchedule aggregates one physician's appointments, personal
// unavailable blocks and standard weekly availability. It is owned by the
// ScheduleManager, which serializes all access; the schedule itself performs
// no locking and no conflict checking.
type PhysicianSchedule struct {
	PhysicianID          uuid.UUID
	appointments         []*Appointment
	unavailableBlocks    []*UnavailableBlock
	StandardAvailability map[time.Weekday]DayWindow
}

// NewPhysicianSchedule creates an empty schedule with default availability.
func NewPhysicianSchedule(physicianID uuid.UUID) *PhysicianSchedule {
	return &PhysicianSchedule{
		PhysicianID:          physicianID,
		StandardAvailability: DefaultAvailability(),
	}
}

// TryAddAppointment appends an appointment, keeping the collection ordered
// by start time. It assumes the caller has already established
// conflict-freedom and returns false only on structural failure: a nil
// appointment, a physician mismatch, or a duplicate id.
func (s *PhysicianSchedule) TryAddAppointment(appt *Appointment) bool {
	if appt == nil || appt.PhysicianID != s.PhysicianID {
		return false
	}
	for _, existing := range s.appointments {
		if existing.ID == appt.ID {
			return false
		}
	}
	idx := sort.Search(len(s.appointments), func(i int) bool {
		return s.appointments[i].Start.After(appt.Start)
	})
	s.appointments = append(s.appointments, nil)
	copy(s.appointments[idx+1:], s.appointments[idx:])
	s.appointments[idx] = appt
	return true
}

// RemoveAppointment hard-removes the appointment with the given id.
func (s *PhysicianSchedule) RemoveAppointment(id uuid.UUID) bool {
	for i, appt := range s.appointments {
		if appt.ID == id {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			return true
		}
	}
	return false
}

// FindAppointment returns the live appointment with the given id, or nil.
// Only the manager may call this; external reads go through the copying
// accessors.
func (s *PhysicianSchedule) FindAppointment(id uuid.UUID) *Appointment {
	for _, appt := range s.appointments {
		if appt.ID == id {
			return appt
		}
	}
	return nil
}

// AddUnavailableBlock records a physician-scoped blocked range.
func (s *PhysicianSchedule) AddUnavailableBlock(block *UnavailableBlock) {
	if block == nil {
		return
	}
	s.unavailableBlocks = append(s.unavailableBlocks, block)
}

// Appointments returns a copy of all appointments ordered by start time.
func (s *PhysicianSchedule) Appointments() []*Appointment {
	out := make([]*Appointment, 0, len(s.appointments))
	for _, appt := range s.appointments {
		out = append(out, appt.Clone())
	}
	return out
}

// UnavailableBlocks returns a copy of the physician's blocked ranges.
func (s *PhysicianSchedule) UnavailableBlocks() []*UnavailableBlock {
	out := make([]*UnavailableBlock, 0, len(s.unavailableBlocks))
	for _, b := range s.unavailableBlocks {
		out = append(out, b.Clone())
	}
	return out
}

// AppointmentsOn returns copies of appointments starting on the given date.
func (s *PhysicianSchedule) AppointmentsOn(date time.Time) []*Appointment {
	y, m, d := date.Date()
	var out []*Appointment
	for _, appt := range s.appointments {
		ay, am, ad := appt.Start.Date()
		if ay == y && am == m && ad == d {
			out = append(out, appt.Clone())
		}
	}
	return out
}

// AppointmentsInRange returns copies of appointments overlapping [from, to).
func (s *PhysicianSchedule) AppointmentsInRange(from, to time.Time) []*Appointment {
	var out []*Appointment
	for _, appt := range s.appointments {
		if appt.Start.Before(to) && from.Before(appt.End) {
			out = append(out, appt.Clone())
		}
	}
	return out
}

// ClearOldAppointments removes appointments that ended before the cutoff and
// returns how many were removed. Retention cleanup only; cancellation
// history younger than the cutoff is preserved.
func (s *PhysicianSchedule) ClearOldAppointments(before time.Time) int {
	kept := s.appointments[:0]
	removed := 0
	for _, appt := range s.appointments {
		if appt.End.Before(before) {
			removed++
			continue
		}
		kept = append(kept, appt)
	}
	s.appointments = kept
	return removed
}
