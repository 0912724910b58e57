// File: database/repository/blocked/memory.go
package blockedRepo

import (
	"context"
	"sort"
	"sync"

	"courtside/models"
)

type memoryBlockedRepo struct {
	mu   sync.RWMutex
	rows map[string]models.Blocked
}

func NewMemoryBlockedRepo() BlockedRepository {
	return &memoryBlockedRepo{rows: make(map[string]models.Blocked)}
}

func (r *memoryBlockedRepo) Create(_ context.Context, b *models.Blocked) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[b.ID] = *b
	return nil
}

func (r *memoryBlockedRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryBlockedRepo) ListByCourtAndDate(_ context.Context, courtID, date string) ([]models.Blocked, error) {
	return r.filter(func(b models.Blocked) bool { return b.CourtID == courtID && b.Date == date }), nil
}

func (r *memoryBlockedRepo) ListFrom(_ context.Context, date string) ([]models.Blocked, error) {
	return r.filter(func(b models.Blocked) bool { return b.Date >= date }), nil
}

func (r *memoryBlockedRepo) EnsureIndexes(context.Context) error { return nil }

func (r *memoryBlockedRepo) filter(keep func(models.Blocked) bool) []models.Blocked {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Blocked{}
	for _, b := range r.rows {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out
}
