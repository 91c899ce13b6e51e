package documents

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus is the lifecycle state of a clinical document.
type DocumentStatus string

const (
	StatusDraft          DocumentStatus = "draft"
	StatusFinal          DocumentStatus = "final"
	StatusAmended        DocumentStatus = "amended"
	StatusEnteredInError DocumentStatus = "entered-in-error"
)

// Valid reports whether s is a known document status.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusFinal, StatusAmended, StatusEnteredInError:
		return true
	}
	return false
}

var (
	ErrNotDraft         = errors.New("document is not a draft")
	ErrNotFinalized     = errors.New("document has not been finalized")
	ErrDocumentRetired  = errors.New("document is entered-in-error")
	ErrAmendReasonBlank = errors.New("amendment reason is required")
)

// ClinicalDocument maps to the clinical_document table. Documents follow a
// draft → final → amended lifecycle; entered-in-error retires a document at
// any point.
type ClinicalDocument struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	PatientID     uuid.UUID      `db:"patient_id" json:"patient_id"`
	AuthorID      uuid.UUID      `db:"author_id" json:"author_id"`
	AppointmentID *uuid.UUID     `db:"appointment_id" json:"appointment_id,omitempty"`
	DocumentType  string         `db:"document_type" json:"document_type"`
	Status        DocumentStatus `db:"status" json:"status"`
	Title         string         `db:"title" json:"title"`
	Subjective    *string        `db:"subjective" json:"subjective,omitempty"`
	Objective     *string        `db:"objective" json:"objective,omitempty"`
	Assessment    *string        `db:"assessment" json:"assessment,omitempty"`
	Plan          *string        `db:"plan" json:"plan,omitempty"`
	NoteText      *string        `db:"note_text" json:"note_text,omitempty"`
	FinalizedBy   *uuid.UUID     `db:"finalized_by" json:"finalized_by,omitempty"`
	FinalizedAt   *time.Time     `db:"finalized_at" json:"finalized_at,omitempty"`
	AmendedBy     *uuid.UUID     `db:"amended_by" json:"amended_by,omitempty"`
	AmendedAt     *time.Time     `db:"amended_at" json:"amended_at,omitempty"`
	AmendedReason *string        `db:"amended_reason" json:"amended_reason,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// NewClinicalDocument creates a draft document.
func NewClinicalDocument(patientID, authorID uuid.UUID, docType, title string) (*ClinicalDocument, error) {
	if patientID == uuid.Nil || authorID == uuid.Nil {
		return nil, fmt.Errorf("patient_id and author_id are required")
	}
	if docType == "" || title == "" {
		return nil, fmt.Errorf("document_type and title are required")
	}
	now := time.Now()
	return &ClinicalDocument{
		ID:           uuid.New(),
		PatientID:    patientID,
		AuthorID:     authorID,
		DocumentType: docType,
		Status:       StatusDraft,
		Title:        title,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Finalize moves a draft to final and records who signed it.
func (d *ClinicalDocument) Finalize(signedBy uuid.UUID) error {
	if d.Status == StatusEnteredInError {
		return ErrDocumentRetired
	}
	if d.Status != StatusDraft {
		return ErrNotDraft
	}
	now := time.Now()
	d.Status = StatusFinal
	d.FinalizedBy = &signedBy
	d.FinalizedAt = &now
	d.UpdatedAt = now
	return nil
}

// Amend marks a finalized document as amended. Amended documents can be
// amended again.
func (d *ClinicalDocument) Amend(amendedBy uuid.UUID, reason string) error {
	if d.Status == StatusEnteredInError {
		return ErrDocumentRetired
	}
	if d.Status != StatusFinal && d.Status != StatusAmended {
		return ErrNotFinalized
	}
	if reason == "" {
		return ErrAmendReasonBlank
	}
	now := time.Now()
	d.Status = StatusAmended
	d.AmendedBy = &amendedBy
	d.AmendedAt = &now
	d.AmendedReason = &reason
	d.UpdatedAt = now
	return nil
}

// MarkEnteredInError retires the document. This is terminal.
func (d *ClinicalDocument) MarkEnteredInError() error {
	if d.Status == StatusEnteredInError {
		return ErrDocumentRetired
	}
	d.Status = StatusEnteredInError
	d.UpdatedAt = time.Now()
	return nil
}

// IsEditable reports whether the document content can still be changed.
func (d *ClinicalDocument) IsEditable() bool {
	return d.Status == StatusDraft
}
