package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Appointment Repository ===========

type apptRepoPG struct{ pool *pgxpool.Pool }

// NewAppointmentRepoPG creates the PostgreSQL-backed appointment repository.
func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &apptRepoPG{pool: pool}
}

func (r *apptRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const apptCols = `id, patient_id, physician_id, start_time, end_time, status, appointment_type,
	reason_for_visit, notes, clinical_document_id, rescheduled_from_id,
	cancellation_reason, room_number, created_at, modified_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		id, patientID, physicianID uuid.UUID
		start, end                 time.Time
		status                     AppointmentStatus
		createdAt, modifiedAt      time.Time
		docID, reschedFromID       *uuid.UUID
		notes                      *string
		reason                     *string
		cancel                     *string
		room                       *string
		apptType                   *string
	)
	err := row.Scan(&id, &patientID, &physicianID, &start, &end, &status, &apptType,
		&reason, &notes, &docID, &reschedFromID,
		&cancel, &room, &createdAt, &modifiedAt)
	if err != nil {
		return nil, err
	}
	a, err := RehydrateAppointment(id, patientID, physicianID, start, end, status, createdAt, modifiedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt appointment row %s: %w", id, err)
	}
	a.ClinicalDocumentID = docID
	a.RescheduledFromID = reschedFromID
	if apptType != nil {
		a.Type = *apptType
	}
	if reason != nil {
		a.ReasonForVisit = *reason
	}
	if notes != nil {
		a.Notes = *notes
	}
	if cancel != nil {
		a.CancellationReason = *cancel
	}
	if room != nil {
		a.RoomNumber = *room
	}
	return a, nil
}

func (r *apptRepoPG) Add(ctx context.Context, a *Appointment) error {
	if a == nil {
		return ErrNilAppointment
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, physician_id, start_time, end_time, status,
			appointment_type, reason_for_visit, notes, clinical_document_id,
			rescheduled_from_id, cancellation_reason, room_number, created_at, modified_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		a.ID, a.PatientID, a.PhysicianID, a.Start, a.End, a.Status,
		a.Type, a.ReasonForVisit, a.Notes, a.ClinicalDocumentID,
		a.RescheduledFromID, a.CancellationReason, a.RoomNumber, a.CreatedAt, a.ModifiedAt)
	return err
}

func (r *apptRepoPG) Update(ctx context.Context, a *Appointment) error {
	if a == nil {
		return ErrNilAppointment
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET start_time=$2, end_time=$3, status=$4, appointment_type=$5,
			reason_for_visit=$6, notes=$7, clinical_document_id=$8, rescheduled_from_id=$9,
			cancellation_reason=$10, room_number=$11, modified_at=$12
		WHERE id = $1`,
		a.ID, a.Start, a.End, a.Status, a.Type,
		a.ReasonForVisit, a.Notes, a.ClinicalDocumentID, a.RescheduledFromID,
		a.CancellationReason, a.RoomNumber, a.ModifiedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *apptRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *apptRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	return a, err
}

func (r *apptRepoPG) GetAll(ctx context.Context) ([]*Appointment, error) {
	return r.query(ctx, `SELECT `+apptCols+` FROM appointment ORDER BY start_time`)
}

func (r *apptRepoPG) Search(ctx context.Context, q AppointmentSearch) ([]*Appointment, error) {
	query := `SELECT ` + apptCols + ` FROM appointment WHERE 1=1`
	var args []interface{}
	idx := 1
	if q.PatientID != uuid.Nil {
		query += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, q.PatientID)
		idx++
	}
	if q.PhysicianID != uuid.Nil {
		query += fmt.Sprintf(` AND physician_id = $%d`, idx)
		args = append(args, q.PhysicianID)
		idx++
	}
	if q.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, q.Status)
		idx++
	}
	if !q.From.IsZero() {
		query += fmt.Sprintf(` AND end_time > $%d`, idx)
		args = append(args, q.From)
		idx++
	}
	if !q.To.IsZero() {
		query += fmt.Sprintf(` AND start_time < $%d`, idx)
		args = append(args, q.To)
		idx++
	}
	query += ` ORDER BY start_time`
	return r.query(ctx, query, args...)
}

func (r *apptRepoPG) GetByDate(ctx context.Context, physicianID uuid.UUID, date time.Time) ([]*Appointment, error) {
	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return r.query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE physician_id = $1 AND start_time >= $2 AND start_time < $3 ORDER BY start_time`,
		physicianID, dayStart, dayStart.AddDate(0, 0, 1))
}

func (r *apptRepoPG) GetByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*Appointment, error) {
	return r.query(ctx, `SELECT `+apptCols+` FROM appointment WHERE physician_id = $1 ORDER BY start_time`, physicianID)
}

func (r *apptRepoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.query(ctx, `SELECT `+apptCols+` FROM appointment WHERE patient_id = $1 ORDER BY start_time`, patientID)
}

func (r *apptRepoPG) GetByStatus(ctx context.Context, status AppointmentStatus) ([]*Appointment, error) {
	return r.query(ctx, `SELECT `+apptCols+` FROM appointment WHERE status = $1 ORDER BY start_time`, status)
}

func (r *apptRepoPG) HasConflict(ctx context.Context, physicianID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment
		WHERE physician_id = $1 AND status = $2 AND id <> $3
		  AND start_time < $4 AND $5 < end_time`,
		physicianID, StatusScheduled, excludeID, end, start).Scan(&count)
	return count > 0, err
}

func (r *apptRepoPG) GetAvailableSlots(ctx context.Context, physicianID uuid.UUID, date time.Time, duration time.Duration) ([]TimeSlot, error) {
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

func (r *apptRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// =========== Unavailable Block Repository ===========

type blockRepoPG struct{ pool *pgxpool.Pool }

// NewBlockRepoPG creates the PostgreSQL-backed block repository.
func NewBlockRepoPG(pool *pgxpool.Pool) UnavailableBlockRepository {
	return &blockRepoPG{pool: pool}
}

func (r *blockRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const blockCols = `id, physician_id, start_time, end_time, reason, description`

func scanBlock(row pgx.Row) (*UnavailableBlock, error) {
	var (
		id          uuid.UUID
		physicianID *uuid.UUID
		start, end  time.Time
		reason      UnavailabilityReason
		desc        *string
	)
	err := row.Scan(&id, &physicianID, &start, &end, &reason, &desc)
	if err != nil {
		return nil, err
	}
	description := ""
	if desc != nil {
		description = *desc
	}
	b, err := RehydrateUnavailableBlock(id, physicianID, start, end, reason, description)
	if err != nil {
		return nil, fmt.Errorf("corrupt unavailable block row %s: %w", id, err)
	}
	return b, nil
}

func (r *blockRepoPG) Add(ctx context.Context, block *UnavailableBlock) error {
	if block == nil {
		return fmt.Errorf("block is required")
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO unavailable_block (id, physician_id, start_time, end_time, reason, description)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		block.ID, block.PhysicianID, block.Start, block.End, block.Reason, block.Description)
	return err
}

func (r *blockRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM unavailable_block WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("block %s not found", id)
	}
	return nil
}

func (r *blockRepoPG) GetAll(ctx context.Context) ([]*UnavailableBlock, error) {
	return r.queryBlocks(ctx, `SELECT `+blockCols+` FROM unavailable_block ORDER BY start_time`)
}

func (r *blockRepoPG) GetByPhysician(ctx context.Context, physicianID uuid.UUID) ([]*UnavailableBlock, error) {
	return r.queryBlocks(ctx, `SELECT `+blockCols+` FROM unavailable_block WHERE physician_id = $1 ORDER BY start_time`, physicianID)
}

func (r *blockRepoPG) GetFacilityWide(ctx context.Context) ([]*UnavailableBlock, error) {
	return r.queryBlocks(ctx, `SELECT `+blockCols+` FROM unavailable_block WHERE physician_id IS NULL ORDER BY start_time`)
}

func (r *blockRepoPG) queryBlocks(ctx context.Context, sql string, args ...interface{}) ([]*UnavailableBlock, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*UnavailableBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
