package billing

import "context"

// CycleRepository defines the operations for persisting and retrieving Cycle
// entities. The store exclusively owns all records; callers never cache
// mutable copies across operations.
type CycleRepository interface {
	Create(ctx context.Context, c *Cycle) error
	GetByID(ctx context.Context, id int64) (*Cycle, error)
	Update(ctx context.Context, c *Cycle) error
	ListByOwner(ctx context.Context, owner string) ([]*Cycle, error)
	ListActive(ctx context.Context) ([]*Cycle, error)
	ListAll(ctx context.Context) ([]*Cycle, error) // privileged listing
}

// BillRepository defines the operations for persisting and retrieving Bill
// entities. Batch operations are atomic: all rows are written or none are.
type BillRepository interface {
	Create(ctx context.Context, b *Bill) error
	CreateBatch(ctx context.Context, bills []*Bill) error
	GetByID(ctx context.Context, id int64) (*Bill, error)
	Update(ctx context.Context, b *Bill) error
	Delete(ctx context.Context, id int64) error
	DeleteBatch(ctx context.Context, ids []int64) error
	ListByCycle(ctx context.Context, cycleID int64) ([]*Bill, error)
}
