package identity

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// patientRepoMem is an in-memory PatientRepository for tests and the
// memory storage backend.
type patientRepoMem struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*Patient
}

func NewPatientRepoMem() PatientRepository {
	return &patientRepoMem{patients: make(map[uuid.UUID]*Patient)}
}

func (r *patientRepoMem) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existing := range r.patients {
		if existing.MRN == p.MRN {
			return ErrDuplicateMRN
		}
	}
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *patientRepoMem) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *patientRepoMem) GetByMRN(_ context.Context, mrn string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.MRN == mrn {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *patientRepoMem) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *patientRepoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return ErrPatientNotFound
	}
	delete(r.patients, id)
	return nil
}

func (r *patientRepoMem) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sortedPatients()
	return pagePatients(all, limit, offset), len(all), nil
}

func (r *patientRepoMem) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Patient
	for _, p := range r.sortedPatients() {
		if name, ok := params["name"]; ok && name != "" {
			lower := strings.ToLower(name)
			if !strings.Contains(strings.ToLower(p.FirstName), lower) &&
				!strings.Contains(strings.ToLower(p.LastName), lower) {
				continue
			}
		}
		if mrn, ok := params["mrn"]; ok && mrn != "" && p.MRN != mrn {
			continue
		}
		if gender, ok := params["gender"]; ok && gender != "" {
			if p.Gender == nil || *p.Gender != gender {
				continue
			}
		}
		if active, ok := params["active"]; ok && active != "" {
			if p.Active != (active == "true") {
				continue
			}
		}
		matched = append(matched, p)
	}
	return pagePatients(matched, limit, offset), len(matched), nil
}

func (r *patientRepoMem) sortedPatients() []*Patient {
	all := make([]*Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].FirstName < all[j].FirstName
	})
	return all
}

func pagePatients(all []*Patient, limit, offset int) []*Patient {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// physicianRepoMem is an in-memory PhysicianRepository.
type physicianRepoMem struct {
	mu         sync.RWMutex
	physicians map[uuid.UUID]*Physician
}

func NewPhysicianRepoMem() PhysicianRepository {
	return &physicianRepoMem{physicians: make(map[uuid.UUID]*Physician)}
}

func (r *physicianRepoMem) Create(_ context.Context, p *Physician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.physicians[p.ID] = &cp
	return nil
}

func (r *physicianRepoMem) GetByID(_ context.Context, id uuid.UUID) (*Physician, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.physicians[id]
	if !ok {
		return nil, ErrPhysicianNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *physicianRepoMem) GetByNPI(_ context.Context, npi string) (*Physician, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.physicians {
		if p.NPINumber != nil && *p.NPINumber == npi {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPhysicianNotFound
}

func (r *physicianRepoMem) Update(_ context.Context, p *Physician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.physicians[p.ID]; !ok {
		return ErrPhysicianNotFound
	}
	cp := *p
	r.physicians[p.ID] = &cp
	return nil
}

func (r *physicianRepoMem) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.physicians[id]; !ok {
		return ErrPhysicianNotFound
	}
	delete(r.physicians, id)
	return nil
}

func (r *physicianRepoMem) List(_ context.Context, limit, offset int) ([]*Physician, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sortedPhysicians()
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (r *physicianRepoMem) ListBySpecialty(_ context.Context, specialty string) ([]*Physician, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*Physician
	for _, p := range r.sortedPhysicians() {
		if p.Active && p.Specialty == specialty {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (r *physicianRepoMem) sortedPhysicians() []*Physician {
	all := make([]*Physician, 0, len(r.physicians))
	for _, p := range r.physicians {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].FirstName < all[j].FirstName
	})
	return all
}
