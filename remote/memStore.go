package remote

import (
	"context"
	"sync"

	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/utils"
)

// MemStore is an in-memory Store. It backs the test suites and local
// development without MySQL, and it can simulate the remote failure modes the
// engine has to survive: read rejections, write rejections, and row-policy
// deletes that succeed while removing nothing.
type MemStore struct {
	ProductsTable    *MemTable[models.Product]
	CustomersTable   *MemTable[models.Customer]
	RepairsTable     *MemTable[models.Repair]
	SalesTable       *MemTable[models.Sale]
	StockOrdersTable *MemTable[models.StockOrder]

	mu      sync.Mutex
	info    models.StoreInfo
	infoSet bool

	// InfoErr fails GetStoreInfo/SaveStoreInfo when set.
	InfoErr error
}

func NewMemStore() *MemStore {
	return &MemStore{
		ProductsTable:    &MemTable[models.Product]{},
		CustomersTable:   &MemTable[models.Customer]{},
		RepairsTable:     &MemTable[models.Repair]{},
		SalesTable:       &MemTable[models.Sale]{},
		StockOrdersTable: &MemTable[models.StockOrder]{},
	}
}

func (s *MemStore) Products() Table[models.Product]       { return s.ProductsTable }
func (s *MemStore) Customers() Table[models.Customer]     { return s.CustomersTable }
func (s *MemStore) Repairs() Table[models.Repair]         { return s.RepairsTable }
func (s *MemStore) Sales() Table[models.Sale]             { return s.SalesTable }
func (s *MemStore) StockOrders() Table[models.StockOrder] { return s.StockOrdersTable }

func (s *MemStore) GetStoreInfo(ctx context.Context) (models.StoreInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InfoErr != nil {
		return models.StoreInfo{}, false, s.InfoErr
	}
	return s.info, s.infoSet, nil
}

func (s *MemStore) SaveStoreInfo(ctx context.Context, info models.StoreInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InfoErr != nil {
		return s.InfoErr
	}
	s.info = info
	s.infoSet = true
	return nil
}

// MemTable implements Table in memory.
type MemTable[T models.Entity] struct {
	mu   sync.Mutex
	rows []T

	// ListErr rejects ListAll/Get when set.
	ListErr error
	// WriteErr rejects Upsert/Insert/Delete when set.
	WriteErr error
	// DenyDelete makes Delete report success with zero rows affected,
	// mimicking a row-level security policy that silently refuses.
	DenyDelete bool
}

func (t *MemTable[T]) Seed(rows ...T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, rows...)
}

func (t *MemTable[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func (t *MemTable[T]) ListAll(ctx context.Context) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ListErr != nil {
		return nil, t.ListErr
	}
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out, nil
}

func (t *MemTable[T]) Get(ctx context.Context, id string) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	if t.ListErr != nil {
		return zero, t.ListErr
	}
	for _, row := range t.rows {
		if row.EntityId() == id {
			return row, nil
		}
	}
	return zero, utils.ErrorRecordNotFound
}

func (t *MemTable[T]) Upsert(ctx context.Context, record T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.WriteErr != nil {
		return t.WriteErr
	}
	for i := range t.rows {
		if t.rows[i].EntityId() == record.EntityId() {
			t.rows[i] = record
			return nil
		}
	}
	t.rows = append(t.rows, record)
	return nil
}

func (t *MemTable[T]) Insert(ctx context.Context, record T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.WriteErr != nil {
		return t.WriteErr
	}
	t.rows = append(t.rows, record)
	return nil
}

func (t *MemTable[T]) Delete(ctx context.Context, id string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.WriteErr != nil {
		return 0, t.WriteErr
	}
	if t.DenyDelete {
		return 0, nil
	}
	for i := range t.rows {
		if t.rows[i].EntityId() == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// MemFeed is an in-process change feed for tests: Notify pushes a tick that
// Subscribe consumers receive.
type MemFeed struct {
	mu sync.Mutex
	ch chan string
}

func NewMemFeed() *MemFeed {
	return &MemFeed{ch: make(chan string, 64)}
}

func (f *MemFeed) Notify(ctx context.Context, table string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case f.ch <- table:
	default:
	}
}

func (f *MemFeed) Subscribe(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case table := <-f.ch:
				select {
				case out <- table:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
