package repository

import (
	"context"
	"sync"

	"relay/pkg/models"
)

type memoryStatusRepository struct {
	mu      sync.RWMutex
	records map[string]models.Record
	order   []string
}

func NewMemoryStatusRepository() StatusRepository {
	return &memoryStatusRepository{records: make(map[string]models.Record)}
}

func (r *memoryStatusRepository) UpsertBatch(ctx context.Context, records []models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		if _, ok := r.records[rec.MessageID]; !ok {
			r.order = append(r.order, rec.MessageID)
		}
		r.records[rec.MessageID] = rec
	}
	return nil
}

func (r *memoryStatusRepository) ReadAll(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out, nil
}

func (r *memoryStatusRepository) FindByID(ctx context.Context, messageID string) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[messageID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}
