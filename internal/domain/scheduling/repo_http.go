package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// apptRepoHTTP talks to a remote scheduling service exposing the same
// appointment resource over JSON. Used when this instance is deployed as
// a thin front for a central scheduler.
type apptRepoHTTP struct {
	baseURL string
	client  *http.Client
}

// NewAppointmentRepoHTTP creates an appointment repository backed by a
// remote HTTP service rooted at baseURL.
func NewAppointmentRepoHTTP(baseURL string) AppointmentRepository {
	return &apptRepoHTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *apptRepoHTTP) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("scheduling service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrAppointmentNotFound
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("scheduling service: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (r *apptRepoHTTP) Add(ctx context.Context, a *Appointment) error {
	if a == nil {
		return ErrNilAppointment
	}
	return r.do(ctx, http.MethodPost, "/appointments", a, nil)
}

func (r *apptRepoHTTP) Update(ctx context.Context, a *Appointment) error {
	if a == nil {
		return ErrNilAppointment
	}
	return r.do(ctx, http.MethodPut, "/appointments/"+a.ID.String(), a, nil)
}

func (r *apptRepoHTTP) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do(ctx, http.MethodDelete, "/appointments/"+id.String(), nil, nil)
}

// fromWire validates an appointment decoded off the wire. The remote
// service is trusted no further than a database row: a payload with an
// inverted interval or an unknown status is rejected here instead of
// being restored onto a schedule.
func fromWire(w *Appointment) (*Appointment, error) {
	a, err := RehydrateAppointment(w.ID, w.PatientID, w.PhysicianID, w.Start, w.End, w.Status, w.CreatedAt, w.ModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("remote appointment %s: %w", w.ID, err)
	}
	a.Description = w.Description
	a.Type = w.Type
	a.ReasonForVisit = w.ReasonForVisit
	a.Notes = w.Notes
	a.ClinicalDocumentID = w.ClinicalDocumentID
	a.RescheduledFromID = w.RescheduledFromID
	a.CancellationReason = w.CancellationReason
	a.RoomNumber = w.RoomNumber
	return a, nil
}

func fromWireList(items []*Appointment) ([]*Appointment, error) {
	out := make([]*Appointment, 0, len(items))
	for _, w := range items {
		a, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *apptRepoHTTP) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	if err := r.do(ctx, http.MethodGet, "/appointments/"+id.String(), nil, &a); err != nil {
		return nil, err
	}
	return fromWire(&a)
}

func (r *apptRepoHTTP) GetAll(ctx context.Context) ([]*Appointment, error) {
	var items []*Appointment
	if err := r.do(ctx, http.MethodGet, "/appointments", nil, &items); err != nil {
		return nil, err
	}
	return fromWireList(items)
}

func (r *apptRepoHTTP) Search(ctx context.Context, q AppointmentSearch) ([]*Appointment, error) {
	params := url.Values{}
	if q.PatientID != uuid.Nil {
		params.Set("patient_id", q.PatientID.String())
	}
	if q.PhysicianID != uuid.Nil {
		params.Set("physician_id", q.PhysicianID.String())
	}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	if !q.From.IsZero() {
		params.Set("from", q.From.Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		params.Set("to", q.To.Format(time.RFC3339))
	}

	path := "/appointments"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var items []*Appointment
	if err := r.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return fromWireList(items)
}

func (r *apptRepoHTTP) GetByDate(ctx context.Context, physicianID uuid.UUID, date time.Time) ([]*Appointment, error) {
	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return r.Search(ctx, AppointmentSearch{
		PhysicianID: physicianID,
		From:        dayStart,
		To:          dayStart.AddDate(0, 0, 1),
	})
}

func (r *apptRepoHTTP) GetByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*Appointment, error) {
	return r.Search(ctx, AppointmentSearch{PhysicianID: physicianID})
}

func (r *apptRepoHTTP) GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.Search(ctx, AppointmentSearch{PatientID: patientID})
}

func (r *apptRepoHTTP) GetByStatus(ctx context.Context, status AppointmentStatus) ([]*Appointment, error) {
	return r.Search(ctx, AppointmentSearch{Status: status})
}

func (r *apptRepoHTTP) HasConflict(ctx context.Context, physicianID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	booked, err := r.Search(ctx, AppointmentSearch{
		PhysicianID: physicianID,
		Status:      StatusScheduled,
		From:        start,
		To:          end,
	})
	if err != nil {
		return false, err
	}
	window := TimeInterval{Start: start, End: end}
	for _, a := range booked {
		if a.ID == excludeID {
			continue
		}
		if a.Overlaps(window) {
			return true, nil
		}
	}
	return false, nil
}

func (r *apptRepoHTTP) GetAvailableSlots(ctx context.Context, physicianID uuid.UUID, date time.Time, duration time.Duration) ([]TimeSlot, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	booked, err := r.GetByDate(ctx, physicianID, date)
	if err != nil {
		return nil, err
	}
	var busy []TimeInterval
	for _, a := range booked {
		if a.Status == StatusScheduled {
			busy = append(busy, a.TimeInterval)
		}
	}
	return dailySlots(date, duration, busy), nil
}
