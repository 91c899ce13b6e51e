package documents

import (
	"context"
	"errors"

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

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const documentCols = `id, patient_id, author_id, appointment_id, document_type, status, title,
	subjective, objective, assessment, plan, note_text,
	finalized_by, finalized_at, amended_by, amended_at, amended_reason,
	created_at, updated_at`

func scanDocument(row pgx.Row) (*ClinicalDocument, error) {
	d := &ClinicalDocument{}
	err := row.Scan(
		&d.ID, &d.PatientID, &d.AuthorID, &d.AppointmentID, &d.DocumentType, &d.Status, &d.Title,
		&d.Subjective, &d.Objective, &d.Assessment, &d.Plan, &d.NoteText,
		&d.FinalizedBy, &d.FinalizedAt, &d.AmendedBy, &d.AmendedAt, &d.AmendedReason,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *repoPG) Create(ctx context.Context, d *ClinicalDocument) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinical_document (
			id, patient_id, author_id, appointment_id, document_type, status, title,
			subjective, objective, assessment, plan, note_text,
			finalized_by, finalized_at, amended_by, amended_at, amended_reason
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,
			$8,$9,$10,$11,$12,
			$13,$14,$15,$16,$17
		)`,
		d.ID, d.PatientID, d.AuthorID, d.AppointmentID, d.DocumentType, d.Status, d.Title,
		d.Subjective, d.Objective, d.Assessment, d.Plan, d.NoteText,
		d.FinalizedBy, d.FinalizedAt, d.AmendedBy, d.AmendedAt, d.AmendedReason,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ClinicalDocument, error) {
	return scanDocument(r.conn(ctx).QueryRow(ctx, `SELECT `+documentCols+` FROM clinical_document WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *ClinicalDocument) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinical_document SET
			patient_id=$2, author_id=$3, appointment_id=$4, document_type=$5, status=$6, title=$7,
			subjective=$8, objective=$9, assessment=$10, plan=$11, note_text=$12,
			finalized_by=$13, finalized_at=$14, amended_by=$15, amended_at=$16, amended_reason=$17,
			updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.PatientID, d.AuthorID, d.AppointmentID, d.DocumentType, d.Status, d.Title,
		d.Subjective, d.Objective, d.Assessment, d.Plan, d.NoteText,
		d.FinalizedBy, d.FinalizedAt, d.AmendedBy, d.AmendedAt, d.AmendedReason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM clinical_document WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*ClinicalDocument, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM clinical_document`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+documentCols+` FROM clinical_document ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *repoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*ClinicalDocument, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+documentCols+` FROM clinical_document WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *repoPG) GetByAuthor(ctx context.Context, authorID uuid.UUID) ([]*ClinicalDocument, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+documentCols+` FROM clinical_document WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*ClinicalDocument, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+documentCols+` FROM clinical_document WHERE appointment_id = $1 ORDER BY created_at DESC`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func collectDocuments(rows pgx.Rows) ([]*ClinicalDocument, error) {
	var docs []*ClinicalDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
