// Package gateway provides the write-through mutation path: remote write
// first, confirm, then apply to the local mirror. The mirror is never touched
// on a failed or silently refused remote write.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bitbucket.org/iberryms/repairshop_backend/config"
	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/remote"
	"bitbucket.org/iberryms/repairshop_backend/repository"
	"bitbucket.org/iberryms/repairshop_backend/utils"
	"github.com/sirupsen/logrus"
)

// ErrNothingDeleted is the silent-rejection outcome: the remote delete
// reported no error but removed zero rows. Either the id does not exist or a
// row-level policy suppressed the delete. Callers must treat this differently
// from a transport error, so it is a distinct sentinel.
var ErrNothingDeleted = errors.New("nothing deleted: no record matched, or a row policy blocked the deletion")

type Gateway struct {
	store remote.Store
	repo  *repository.Repository
	logg  *logrus.Logger

	phoneRegion string
}

func New(store remote.Store, repo *repository.Repository, logg *logrus.Logger) *Gateway {
	region := os.Getenv("PHONE_REGION")
	if region == "" {
		region = "ZA"
	}
	return &Gateway{store: store, repo: repo, logg: logg, phoneRegion: region}
}

// --- products ---

func (g *Gateway) SaveProduct(ctx context.Context, p models.Product) error {
	if err := g.store.Products().Upsert(ctx, p); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	g.repo.UpsertProduct(p)
	return nil
}

func (g *Gateway) DeleteProduct(ctx context.Context, id string) error {
	count, err := g.store.Products().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if count == 0 {
		return ErrNothingDeleted
	}
	g.repo.RemoveProduct(id)
	return nil
}

// --- customers ---

// SaveCustomer validates the phone number, writes through, and then cascades
// a rename into the denormalized customer name on every repair referencing
// this customer. Cascade failures are independent: one repair failing does
// not roll back the rename or the other repairs.
func (g *Gateway) SaveCustomer(ctx context.Context, c models.Customer) error {
	if c.Phone != "" {
		if err := utils.ValidatePhoneNumber(c.Phone, g.phoneRegion); err != nil {
			return fmt.Errorf("failed to save customer: %w", err)
		}
	}

	prior, existed := g.repo.FindCustomer(c.ID)

	if err := g.store.Customers().Upsert(ctx, c); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	g.repo.UpsertCustomer(c)

	if existed && prior.Name != c.Name {
		g.cascadeCustomerRename(ctx, c)
	}
	return nil
}

func (g *Gateway) cascadeCustomerRename(ctx context.Context, c models.Customer) {
	for _, rep := range g.repo.RepairsByCustomer(c.ID) {
		rep.CustomerName = c.Name
		if err := g.SaveRepair(ctx, rep); err != nil {
			config.LogError(g.logg, "gateway.go", "cascadeCustomerRename", "repair "+rep.ID, c.ID, err)
		}
	}
}

func (g *Gateway) DeleteCustomer(ctx context.Context, id string) error {
	count, err := g.store.Customers().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if count == 0 {
		return ErrNothingDeleted
	}
	g.repo.RemoveCustomer(id)
	return nil
}

// --- repairs ---

func (g *Gateway) SaveRepair(ctx context.Context, r models.Repair) error {
	if err := g.store.Repairs().Upsert(ctx, r); err != nil {
		return fmt.Errorf("failed to save repair: %w", err)
	}
	g.repo.UpsertRepair(r)
	return nil
}

func (g *Gateway) DeleteRepair(ctx context.Context, id string) error {
	count, err := g.store.Repairs().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete repair: %w", err)
	}
	if count == 0 {
		return ErrNothingDeleted
	}
	g.repo.RemoveRepair(id)
	return nil
}

// --- sales ---

// AddSale is insert-only: sales are append-only and never upsert over an
// existing id.
func (g *Gateway) AddSale(ctx context.Context, s models.Sale) error {
	if err := g.store.Sales().Insert(ctx, s); err != nil {
		return fmt.Errorf("failed to record sale: %w", err)
	}
	g.repo.PrependSale(s)
	return nil
}

// --- stock orders ---

func (g *Gateway) SaveStockOrder(ctx context.Context, o models.StockOrder) error {
	if err := g.store.StockOrders().Upsert(ctx, o); err != nil {
		return fmt.Errorf("failed to save stock order: %w", err)
	}
	g.repo.UpsertStockOrder(o)
	return nil
}

func (g *Gateway) DeleteStockOrder(ctx context.Context, id string) error {
	count, err := g.store.StockOrders().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock order: %w", err)
	}
	if count == 0 {
		return ErrNothingDeleted
	}
	g.repo.RemoveStockOrder(id)
	return nil
}

// --- store info ---

func (g *Gateway) SaveStoreInfo(ctx context.Context, info models.StoreInfo) error {
	if err := g.store.SaveStoreInfo(ctx, info); err != nil {
		return fmt.Errorf("failed to save store info: %w", err)
	}
	g.repo.SetStoreInfo(info)
	return nil
}
