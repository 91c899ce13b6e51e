package documents

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// repoMem is an in-memory Repository for tests and the memory storage backend.
type repoMem struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*ClinicalDocument
}

func NewRepoMem() Repository {
	return &repoMem{docs: make(map[uuid.UUID]*ClinicalDocument)}
}

func (r *repoMem) Create(_ context.Context, d *ClinicalDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *repoMem) GetByID(_ context.Context, id uuid.UUID) (*ClinicalDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *repoMem) Update(_ context.Context, d *ClinicalDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[d.ID]; !ok {
		return ErrDocumentNotFound
	}
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *repoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *repoMem) List(_ context.Context, limit, offset int) ([]*ClinicalDocument, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sorted(func(*ClinicalDocument) bool { return true })
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (r *repoMem) GetByPatient(_ context.Context, patientID uuid.UUID) ([]*ClinicalDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(d *ClinicalDocument) bool { return d.PatientID == patientID }), nil
}

func (r *repoMem) GetByAuthor(_ context.Context, authorID uuid.UUID) ([]*ClinicalDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(d *ClinicalDocument) bool { return d.AuthorID == authorID }), nil
}

func (r *repoMem) GetByAppointment(_ context.Context, appointmentID uuid.UUID) ([]*ClinicalDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(d *ClinicalDocument) bool {
		return d.AppointmentID != nil && *d.AppointmentID == appointmentID
	}), nil
}

// sorted returns copies of matching documents, newest first.
func (r *repoMem) sorted(match func(*ClinicalDocument) bool) []*ClinicalDocument {
	var docs []*ClinicalDocument
	for _, d := range r.docs {
		if match(d) {
			cp := *d
			docs = append(docs, &cp)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs
}
