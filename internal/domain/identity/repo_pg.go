package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// -- Patient repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const patientCols = `id, active, mrn, first_name, middle_name, last_name,
	birth_date, gender, phone, email,
	address_line1, address_line2, city, state, postal_code, country,
	preferred_language, emergency_contact_name, emergency_contact_phone,
	insurance_provider, insurance_member_id, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	p := &Patient{}
	err := row.Scan(
		&p.ID, &p.Active, &p.MRN, &p.FirstName, &p.MiddleName, &p.LastName,
		&p.BirthDate, &p.Gender, &p.Phone, &p.Email,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.PostalCode, &p.Country,
		&p.PreferredLanguage, &p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.InsuranceProvider, &p.InsuranceMemberID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (
			id, active, mrn, first_name, middle_name, last_name,
			birth_date, gender, phone, email,
			address_line1, address_line2, city, state, postal_code, country,
			preferred_language, emergency_contact_name, emergency_contact_phone,
			insurance_provider, insurance_member_id
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10,
			$11,$12,$13,$14,$15,$16,
			$17,$18,$19,
			$20,$21
		)`,
		p.ID, p.Active, p.MRN, p.FirstName, p.MiddleName, p.LastName,
		p.BirthDate, p.Gender, p.Phone, p.Email,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.PostalCode, p.Country,
		p.PreferredLanguage, p.EmergencyContactName, p.EmergencyContactPhone,
		p.InsuranceProvider, p.InsuranceMemberID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateMRN
		}
		return err
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE mrn = $1`, mrn))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			active=$2, mrn=$3, first_name=$4, middle_name=$5, last_name=$6,
			birth_date=$7, gender=$8, phone=$9, email=$10,
			address_line1=$11, address_line2=$12, city=$13, state=$14, postal_code=$15, country=$16,
			preferred_language=$17, emergency_contact_name=$18, emergency_contact_phone=$19,
			insurance_provider=$20, insurance_member_id=$21, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Active, p.MRN, p.FirstName, p.MiddleName, p.LastName,
		p.BirthDate, p.Gender, p.Phone, p.Email,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.PostalCode, p.Country,
		p.PreferredLanguage, p.EmergencyContactName, p.EmergencyContactPhone,
		p.InsuranceProvider, p.InsuranceMemberID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *patientRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	idx := 1

	if name, ok := params["name"]; ok && name != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d)", idx, idx)
		args = append(args, "%"+name+"%")
		idx++
	}
	if mrn, ok := params["mrn"]; ok && mrn != "" {
		where += fmt.Sprintf(" AND mrn = $%d", idx)
		args = append(args, mrn)
		idx++
	}
	if gender, ok := params["gender"]; ok && gender != "" {
		where += fmt.Sprintf(" AND gender = $%d", idx)
		args = append(args, gender)
		idx++
	}
	if active, ok := params["active"]; ok && active != "" {
		where += fmt.Sprintf(" AND active = $%d", idx)
		args = append(args, active == "true")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient`+where+
			fmt.Sprintf(` ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`, idx, idx+1),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

// -- Physician repository --

type physicianRepoPG struct {
	pool *pgxpool.Pool
}

func NewPhysicianRepo(pool *pgxpool.Pool) PhysicianRepository {
	return &physicianRepoPG{pool: pool}
}

func (r *physicianRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const physicianCols = `id, active, first_name, last_name, specialty,
	npi_number, license_number, license_state, phone, email, hire_date,
	created_at, updated_at`

func scanPhysician(row pgx.Row) (*Physician, error) {
	p := &Physician{}
	err := row.Scan(
		&p.ID, &p.Active, &p.FirstName, &p.LastName, &p.Specialty,
		&p.NPINumber, &p.LicenseNumber, &p.LicenseState, &p.Phone, &p.Email, &p.HireDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPhysicianNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *physicianRepoPG) Create(ctx context.Context, p *Physician) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO physician (
			id, active, first_name, last_name, specialty,
			npi_number, license_number, license_state, phone, email, hire_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.Active, p.FirstName, p.LastName, p.Specialty,
		p.NPINumber, p.LicenseNumber, p.LicenseState, p.Phone, p.Email, p.HireDate,
	)
	return err
}

func (r *physicianRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Physician, error) {
	return scanPhysician(r.conn(ctx).QueryRow(ctx, `SELECT `+physicianCols+` FROM physician WHERE id = $1`, id))
}

func (r *physicianRepoPG) GetByNPI(ctx context.Context, npi string) (*Physician, error) {
	return scanPhysician(r.conn(ctx).QueryRow(ctx, `SELECT `+physicianCols+` FROM physician WHERE npi_number = $1`, npi))
}

func (r *physicianRepoPG) Update(ctx context.Context, p *Physician) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE physician SET
			active=$2, first_name=$3, last_name=$4, specialty=$5,
			npi_number=$6, license_number=$7, license_state=$8, phone=$9, email=$10, hire_date=$11,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Active, p.FirstName, p.LastName, p.Specialty,
		p.NPINumber, p.LicenseNumber, p.LicenseState, p.Phone, p.Email, p.HireDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPhysicianNotFound
	}
	return nil
}

func (r *physicianRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM physician WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPhysicianNotFound
	}
	return nil
}

func (r *physicianRepoPG) List(ctx context.Context, limit, offset int) ([]*Physician, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM physician`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+physicianCols+` FROM physician ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var physicians []*Physician
	for rows.Next() {
		p, err := scanPhysician(rows)
		if err != nil {
			return nil, 0, err
		}
		physicians = append(physicians, p)
	}
	return physicians, total, rows.Err()
}

func (r *physicianRepoPG) ListBySpecialty(ctx context.Context, specialty string) ([]*Physician, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+physicianCols+` FROM physician WHERE specialty = $1 AND active ORDER BY last_name, first_name`,
		specialty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var physicians []*Physician
	for rows.Next() {
		p, err := scanPhysician(rows)
		if err != nil {
			return nil, err
		}
		physicians = append(physicians, p)
	}
	return physicians, rows.Err()
}
