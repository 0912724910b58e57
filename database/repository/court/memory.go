// File: database/repository/court/memory.go
package courtRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"courtside/models"
)

type memoryCourtRepo struct {
	mu   sync.RWMutex
	rows map[string]models.Court
}

func NewMemoryCourtRepo() CourtRepository {
	return &memoryCourtRepo{rows: make(map[string]models.Court)}
}

func (r *memoryCourtRepo) Create(_ context.Context, c *models.Court) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[c.ID] = *c
	return nil
}

func (r *memoryCourtRepo) GetByID(_ context.Context, id string) (*models.Court, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, ErrCourtNotFound
	}
	return &c, nil
}

func (r *memoryCourtRepo) Update(_ context.Context, id string, upd models.CourtUpdate) (*models.Court, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, ErrCourtNotFound
	}
	if upd.PricePerHour != nil {
		c.PricePerHour = *upd.PricePerHour
	}
	if upd.OperatingHours != nil {
		c.OperatingHours = *upd.OperatingHours
	}
	if upd.IsActive != nil {
		c.IsActive = *upd.IsActive
	}
	c.UpdatedAt = time.Now().UTC()
	r.rows[id] = c
	return &c, nil
}

func (r *memoryCourtRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrCourtNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryCourtRepo) ListByFacility(_ context.Context, facilityID string) ([]models.Court, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Court{}
	for _, c := range r.rows {
		if c.FacilityID == facilityID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryCourtRepo) EnsureIndexes(context.Context) error { return nil }

type memoryFacilityRepo struct {
	mu   sync.RWMutex
	rows map[string]models.Facility
}

func NewMemoryFacilityRepo() FacilityRepository {
	return &memoryFacilityRepo{rows: make(map[string]models.Facility)}
}

func (r *memoryFacilityRepo) Create(_ context.Context, f *models.Facility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[f.ID] = *f
	return nil
}

func (r *memoryFacilityRepo) GetByID(_ context.Context, id string) (*models.Facility, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.rows[id]
	if !ok {
		return nil, ErrFacilityNotFound
	}
	return &f, nil
}
