package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"lockedin_engine/internal/domain/billing"
)

// MemoryCycleRepository is an in-memory CycleRepository used by tests and the
// development environment. It hands out copies so callers cannot mutate
// stored state behind the repository's back.
type MemoryCycleRepository struct {
	mu     sync.Mutex
	nextID int64
	cycles map[int64]billing.Cycle
}

func NewMemoryCycleRepository() *MemoryCycleRepository {
	return &MemoryCycleRepository{cycles: make(map[int64]billing.Cycle)}
}

func (r *MemoryCycleRepository) Create(_ context.Context, c *billing.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c.ID = r.nextID
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.cycles[c.ID] = *c
	return nil
}

func (r *MemoryCycleRepository) GetByID(_ context.Context, id int64) (*billing.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cycles[id]
	if !ok {
		return nil, ErrCycleNotFound
	}
	return &c, nil
}

func (r *MemoryCycleRepository) Update(_ context.Context, c *billing.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cycles[c.ID]; !ok {
		return ErrCycleNotFound
	}
	c.UpdatedAt = time.Now()
	r.cycles[c.ID] = *c
	return nil
}

func (r *MemoryCycleRepository) list(filter func(*billing.Cycle) bool) []*billing.Cycle {
	out := make([]*billing.Cycle, 0)
	for id := range r.cycles {
		c := r.cycles[id]
		if filter(&c) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryCycleRepository) ListByOwner(_ context.Context, owner string) ([]*billing.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(c *billing.Cycle) bool { return c.Owner == owner }), nil
}

func (r *MemoryCycleRepository) ListActive(_ context.Context) ([]*billing.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(c *billing.Cycle) bool { return c.IsActive }), nil
}

func (r *MemoryCycleRepository) ListAll(_ context.Context) ([]*billing.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(*billing.Cycle) bool { return true }), nil
}
