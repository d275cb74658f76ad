// Package remote defines the ports to the remote relational store and its
// change feed, plus the gorm/MySQL and redis implementations used in
// production. The sync engine and the mutation gateway talk to these ports
// only; tests substitute in-memory fakes.
package remote

import (
	"context"

	"bitbucket.org/iberryms/repairshop_backend/models"
)

// Table is the per-collection surface of the remote store.
//
// Delete returns the number of rows actually removed. That count is
// load-bearing: a row-level security policy can refuse a delete and still
// report success, and the only way to tell "deleted" from "silently refused
// or already gone" is to check it.
type Table[T models.Entity] interface {
	ListAll(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Upsert(ctx context.Context, record T) error
	Insert(ctx context.Context, record T) error
	Delete(ctx context.Context, id string) (int64, error)
}

// Store groups the five collections plus the StoreInfo singleton.
type Store interface {
	Products() Table[models.Product]
	Customers() Table[models.Customer]
	Repairs() Table[models.Repair]
	Sales() Table[models.Sale]
	StockOrders() Table[models.StockOrder]

	// GetStoreInfo reports found=false when the config row does not exist
	// yet; that is not an error.
	GetStoreInfo(ctx context.Context) (info models.StoreInfo, found bool, err error)
	SaveStoreInfo(ctx context.Context, info models.StoreInfo) error
}

// ChangeFeed delivers "something changed" ticks. The payload names the table
// that changed but carries no diff; consumers re-pull.
type ChangeFeed interface {
	// Subscribe returns a channel that closes when ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan string, error)
}

// Notifier is the producing side of the change feed. The gorm store calls it
// after every successful write so other replicas re-pull.
type Notifier interface {
	Notify(ctx context.Context, table string)
}
