package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"lockedin_engine/internal/domain/billing"
)

// MemoryBillRepository is an in-memory BillRepository used by tests and the
// development environment. Batch operations are all-or-nothing, matching the
// transactional behavior of the postgres implementation.
type MemoryBillRepository struct {
	mu     sync.Mutex
	nextID int64
	bills  map[int64]billing.Bill
}

func NewMemoryBillRepository() *MemoryBillRepository {
	return &MemoryBillRepository{bills: make(map[int64]billing.Bill)}
}

func copyBill(b billing.Bill) billing.Bill {
	if b.RecurrenceCalendar != nil {
		calendar := make([]int, len(b.RecurrenceCalendar))
		copy(calendar, b.RecurrenceCalendar)
		b.RecurrenceCalendar = calendar
	}
	return b
}

func (r *MemoryBillRepository) create(b *billing.Bill) {
	r.nextID++
	b.ID = r.nextID
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.bills[b.ID] = copyBill(*b)
}

func (r *MemoryBillRepository) Create(_ context.Context, b *billing.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.create(b)
	return nil
}

func (r *MemoryBillRepository) CreateBatch(_ context.Context, bills []*billing.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range bills {
		r.create(b)
	}
	return nil
}

func (r *MemoryBillRepository) GetByID(_ context.Context, id int64) (*billing.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bills[id]
	if !ok {
		return nil, ErrBillNotFound
	}
	out := copyBill(b)
	return &out, nil
}

func (r *MemoryBillRepository) Update(_ context.Context, b *billing.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bills[b.ID]; !ok {
		return ErrBillNotFound
	}
	b.UpdatedAt = time.Now()
	r.bills[b.ID] = copyBill(*b)
	return nil
}

func (r *MemoryBillRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bills[id]; !ok {
		return ErrBillNotFound
	}
	delete(r.bills, id)
	return nil
}

func (r *MemoryBillRepository) DeleteBatch(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Verify every ID before removing anything.
	for _, id := range ids {
		if _, ok := r.bills[id]; !ok {
			return ErrBillNotFound
		}
	}
	for _, id := range ids {
		delete(r.bills, id)
	}
	return nil
}

func (r *MemoryBillRepository) ListByCycle(_ context.Context, cycleID int64) ([]*billing.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*billing.Bill, 0)
	for id := range r.bills {
		if r.bills[id].CycleID == cycleID {
			b := copyBill(r.bills[id])
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
