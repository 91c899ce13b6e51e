package documents

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateRequest carries the fields accepted when drafting a document.
type CreateRequest struct {
	PatientID     uuid.UUID  `json:"patient_id"`
	AuthorID      uuid.UUID  `json:"author_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	DocumentType  string     `json:"document_type"`
	Title         string     `json:"title"`
	Subjective    *string    `json:"subjective,omitempty"`
	Objective     *string    `json:"objective,omitempty"`
	Assessment    *string    `json:"assessment,omitempty"`
	Plan          *string    `json:"plan,omitempty"`
	NoteText      *string    `json:"note_text,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*ClinicalDocument, error) {
	d, err := NewClinicalDocument(req.PatientID, req.AuthorID, req.DocumentType, req.Title)
	if err != nil {
		return nil, err
	}
	d.AppointmentID = req.AppointmentID
	d.Subjective = req.Subjective
	d.Objective = req.Objective
	d.Assessment = req.Assessment
	d.Plan = req.Plan
	d.NoteText = req.NoteText

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("persisting document: %w", err)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ClinicalDocument, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateContent replaces the content sections of a draft. Finalized documents
// must be amended instead.
func (s *Service) UpdateContent(ctx context.Context, id uuid.UUID, req CreateRequest) (*ClinicalDocument, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsEditable() {
		return nil, ErrNotDraft
	}
	if req.Title != "" {
		d.Title = req.Title
	}
	d.Subjective = req.Subjective
	d.Objective = req.Objective
	d.Assessment = req.Assessment
	d.Plan = req.Plan
	d.NoteText = req.NoteText

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Finalize(ctx context.Context, id, signedBy uuid.UUID) (*ClinicalDocument, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Finalize(signedBy); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Amend(ctx context.Context, id, amendedBy uuid.UUID, reason string) (*ClinicalDocument, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.Amend(amendedBy, reason); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) MarkEnteredInError(ctx context.Context, id uuid.UUID) (*ClinicalDocument, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.MarkEnteredInError(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*ClinicalDocument, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*ClinicalDocument, error) {
	return s.repo.GetByPatient(ctx, patientID)
}

func (s *Service) GetByAuthor(ctx context.Context, authorID uuid.UUID) ([]*ClinicalDocument, error) {
	return s.repo.GetByAuthor(ctx, authorID)
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*ClinicalDocument, error) {
	return s.repo.GetByAppointment(ctx, appointmentID)
}
