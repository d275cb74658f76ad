// Package repository holds the in-memory mirror of the remote collections.
// It is the single source of truth for reads: the UI never waits on the
// database. Only the sync engine (whole-collection replace) and the mutation
// gateway (single-entity upsert/remove) write to it.
package repository

import (
	"sync"

	"bitbucket.org/iberryms/repairshop_backend/models"
)

// Repository mirrors the five remote collections plus StoreInfo. A
// whole-collection replace is atomic with respect to readers: a read sees
// either the previous pull or the new one, never a partial interleave.
//
// Order conventions match what the UI expects from the store: repairs, sales
// and stock orders are newest-first, products and customers keep insertion
// order.
type Repository struct {
	mu sync.RWMutex

	products    []models.Product
	customers   []models.Customer
	repairs     []models.Repair
	sales       []models.Sale
	stockOrders []models.StockOrder
	storeInfo   models.StoreInfo
}

func New() *Repository {
	return &Repository{
		storeInfo: models.StoreInfo{
			Name:    "IBERRY POS REPAIRS",
			Address: "39 Orient Drive",
			Phone:   "0826664296",
			Email:   "info@iberryms.co.za",
		},
	}
}

// --- reads (copy-on-read so callers can't mutate the mirror) ---

func (r *Repository) Products() []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSlice(r.products)
}

func (r *Repository) Customers() []models.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSlice(r.customers)
}

func (r *Repository) Repairs() []models.Repair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSlice(r.repairs)
}

func (r *Repository) Sales() []models.Sale {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSlice(r.sales)
}

func (r *Repository) StockOrders() []models.StockOrder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSlice(r.stockOrders)
}

func (r *Repository) StoreInfo() models.StoreInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.storeInfo
}

func (r *Repository) FindProduct(id string) (models.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return findById(r.products, id)
}

func (r *Repository) FindCustomer(id string) (models.Customer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return findById(r.customers, id)
}

func (r *Repository) FindRepair(id string) (models.Repair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return findById(r.repairs, id)
}

func (r *Repository) FindSale(id string) (models.Sale, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return findById(r.sales, id)
}

// RepairsByCustomer returns the repairs referencing the given customer id.
// Used by the rename cascade.
func (r *Repository) RepairsByCustomer(customerId string) []models.Repair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Repair
	for _, rep := range r.repairs {
		if rep.CustomerId == customerId {
			out = append(out, rep)
		}
	}
	return out
}

// --- whole-collection replace (sync engine only) ---

func (r *Repository) ReplaceProducts(list []models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = cloneSlice(list)
}

func (r *Repository) ReplaceCustomers(list []models.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = cloneSlice(list)
}

func (r *Repository) ReplaceRepairs(list []models.Repair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repairs = cloneSlice(list)
}

func (r *Repository) ReplaceSales(list []models.Sale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales = cloneSlice(list)
}

func (r *Repository) ReplaceStockOrders(list []models.StockOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stockOrders = cloneSlice(list)
}

func (r *Repository) SetStoreInfo(info models.StoreInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeInfo = info
}

// --- single-entity apply (mutation gateway only) ---

func (r *Repository) UpsertProduct(p models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = upsertAppend(r.products, p)
}

func (r *Repository) UpsertCustomer(c models.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = upsertAppend(r.customers, c)
}

func (r *Repository) UpsertRepair(rep models.Repair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repairs = upsertPrepend(r.repairs, rep)
}

func (r *Repository) PrependSale(s models.Sale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales = append([]models.Sale{s}, r.sales...)
}

func (r *Repository) UpsertStockOrder(o models.StockOrder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stockOrders = upsertPrepend(r.stockOrders, o)
}

func (r *Repository) RemoveProduct(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed bool
	r.products, removed = removeById(r.products, id)
	return removed
}

func (r *Repository) RemoveCustomer(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed bool
	r.customers, removed = removeById(r.customers, id)
	return removed
}

func (r *Repository) RemoveRepair(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed bool
	r.repairs, removed = removeById(r.repairs, id)
	return removed
}

func (r *Repository) RemoveStockOrder(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed bool
	r.stockOrders, removed = removeById(r.stockOrders, id)
	return removed
}

// --- helpers ---

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func findById[T models.Entity](list []T, id string) (T, bool) {
	for _, item := range list {
		if item.EntityId() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// upsertAppend replaces in place by id, or appends when absent.
func upsertAppend[T models.Entity](list []T, item T) []T {
	for i := range list {
		if list[i].EntityId() == item.EntityId() {
			out := cloneSlice(list)
			out[i] = item
			return out
		}
	}
	return append(cloneSlice(list), item)
}

// upsertPrepend replaces in place by id, or prepends when absent (newest
// first).
func upsertPrepend[T models.Entity](list []T, item T) []T {
	for i := range list {
		if list[i].EntityId() == item.EntityId() {
			out := cloneSlice(list)
			out[i] = item
			return out
		}
	}
	return append([]T{item}, list...)
}

func removeById[T models.Entity](list []T, id string) ([]T, bool) {
	for i := range list {
		if list[i].EntityId() == id {
			out := make([]T, 0, len(list)-1)
			out = append(out, list[:i]...)
			out = append(out, list[i+1:]...)
			return out, true
		}
	}
	return list, false
}
