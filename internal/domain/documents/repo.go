package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrDocumentNotFound = errors.New("clinical document not found")

type Repository interface {
	Create(ctx context.Context, d *ClinicalDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClinicalDocument, error)
	Update(ctx context.Context, d *ClinicalDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*ClinicalDocument, int, error)
	GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*ClinicalDocument, error)
	GetByAuthor(ctx context.Context, authorID uuid.UUID) ([]*ClinicalDocument, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*ClinicalDocument, error)
}
