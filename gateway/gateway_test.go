package gateway_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"bitbucket.org/iberryms/repairshop_backend/gateway"
	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/remote"
	"bitbucket.org/iberryms/repairshop_backend/repository"
	"github.com/sirupsen/logrus"
)

func newTestGateway() (*gateway.Gateway, *remote.MemStore, *repository.Repository) {
	store := remote.NewMemStore()
	repo := repository.New()
	logg := logrus.New()
	logg.SetOutput(io.Discard)
	return gateway.New(store, repo, logg), store, repo
}

func TestSaveProductThenReadBack(t *testing.T) {
	ctx := context.Background()
	gate, store, repo := newTestGateway()

	p := models.Product{ID: "p1", Title: "Screen", Category: models.CategoryAccessories, Stock: 3}
	if err := gate.SaveProduct(ctx, p); err != nil {
		t.Fatalf("SaveProduct: %v", err)
	}

	// Exactly one element with this id, fields equal, in both mirror and store.
	list := repo.Products()
	count := 0
	for _, got := range list {
		if got.ID == "p1" {
			count++
			if got.Title != "Screen" || got.Stock != 3 {
				t.Errorf("readback mismatch: %+v", got)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one p1, got %d", count)
	}

	p.Stock = 5
	if err := gate.SaveProduct(ctx, p); err != nil {
		t.Fatalf("SaveProduct update: %v", err)
	}
	if len(repo.Products()) != 1 {
		t.Fatalf("upsert duplicated the product: %d entries", len(repo.Products()))
	}
	if repo.Products()[0].Stock != 5 {
		t.Errorf("stale copy after upsert: %+v", repo.Products()[0])
	}
	if store.ProductsTable.Len() != 1 {
		t.Errorf("remote store has %d rows, want 1", store.ProductsTable.Len())
	}
}

func TestSaveProductRemoteFailureLeavesMirrorUntouched(t *testing.T) {
	ctx := context.Background()
	gate, store, repo := newTestGateway()
	store.ProductsTable.WriteErr = errors.New("connection reset")

	err := gate.SaveProduct(ctx, models.Product{ID: "p1", Title: "Screen"})
	if err == nil {
		t.Fatal("expected error from remote failure")
	}
	if len(repo.Products()) != 0 {
		t.Fatal("mirror mutated despite remote failure")
	}
}

func TestDeleteNonExistent(t *testing.T) {
	ctx := context.Background()
	gate, _, repo := newTestGateway()
	repo.ReplaceProducts([]models.Product{{ID: "p1"}})

	err := gate.DeleteProduct(ctx, "ghost")
	if !errors.Is(err, gateway.ErrNothingDeleted) {
		t.Fatalf("expected ErrNothingDeleted, got %v", err)
	}
	if len(repo.Products()) != 1 {
		t.Fatal("collection length changed on a no-op delete")
	}
}

func TestDeleteSilentlyRejected(t *testing.T) {
	ctx := context.Background()
	gate, store, repo := newTestGateway()
	store.ProductsTable.Seed(models.Product{ID: "p1"})
	repo.ReplaceProducts([]models.Product{{ID: "p1"}})
	store.ProductsTable.DenyDelete = true

	err := gate.DeleteProduct(ctx, "p1")
	if !errors.Is(err, gateway.ErrNothingDeleted) {
		t.Fatalf("expected ErrNothingDeleted on policy rejection, got %v", err)
	}
	if len(repo.Products()) != 1 {
		t.Fatal("mirror mutated despite zero rows affected")
	}
	if store.ProductsTable.Len() != 1 {
		t.Fatal("store row disappeared despite deny policy")
	}
}

func TestDeleteTransportError(t *testing.T) {
	ctx := context.Background()
	gate, store, repo := newTestGateway()
	store.ProductsTable.Seed(models.Product{ID: "p1"})
	repo.ReplaceProducts([]models.Product{{ID: "p1"}})
	store.ProductsTable.WriteErr = errors.New("timeout")

	err := gate.DeleteProduct(ctx, "p1")
	if err == nil || errors.Is(err, gateway.ErrNothingDeleted) {
		t.Fatalf("transport error must not collapse into ErrNothingDeleted: %v", err)
	}
	if len(repo.Products()) != 1 {
		t.Fatal("mirror mutated despite transport error")
	}
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	gate, store, repo := newTestGateway()
	store.ProductsTable.Seed(models.Product{ID: "p1"}, models.Product{ID: "p2"}, models.Product{ID: "p3"})
	repo.ReplaceProducts([]models.Product{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}})

	if err := gate.DeleteProduct(ctx, "p2"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	got := repo.Products()
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p3" {
		t.Errorf("unexpected survivors: %+v", got)
	}
}

func TestCustomerRenameCascadesToRepairs(t *testing.T) {
	ctx := context.Background()
	gate, store, repo := newTestGateway()

	cust := models.Customer{ID: "c1", Name: "Sipho Dlamini", Phone: "0826664296"}
	other := models.Customer{ID: "c2", Name: "Lerato M", Phone: "0826664296"}
	if err := gate.SaveCustomer(ctx, cust); err != nil {
		t.Fatalf("SaveCustomer: %v", err)
	}
	if err := gate.SaveCustomer(ctx, other); err != nil {
		t.Fatalf("SaveCustomer: %v", err)
	}

	repo.ReplaceRepairs([]models.Repair{
		{ID: "r1", CustomerId: "c1", CustomerName: "Sipho Dlamini"},
		{ID: "r2", CustomerId: "c2", CustomerName: "Lerato M"},
		{ID: "r3", CustomerId: "c1", CustomerName: "Sipho Dlamini"},
	})
	store.RepairsTable.Seed(repo.Repairs()...)

	cust.Name = "Sipho Ndlovu"
	if err := gate.SaveCustomer(ctx, cust); err != nil {
		t.Fatalf("rename: %v", err)
	}

	for _, rep := range repo.Repairs() {
		switch rep.CustomerId {
		case "c1":
			if rep.CustomerName != "Sipho Ndlovu" {
				t.Errorf("repair %s not cascaded: %q", rep.ID, rep.CustomerName)
			}
		default:
			if rep.CustomerName != "Lerato M" {
				t.Errorf("repair %s of another customer was touched: %q", rep.ID, rep.CustomerName)
			}
		}
	}
}

func TestCustomerRenameCascadeFailuresAreIndependent(t *testing.T) {
	ctx := context.Background()
	gate, store, repo := newTestGateway()

	cust := models.Customer{ID: "c1", Name: "Old Name", Phone: "0826664296"}
	if err := gate.SaveCustomer(ctx, cust); err != nil {
		t.Fatalf("SaveCustomer: %v", err)
	}
	repo.ReplaceRepairs([]models.Repair{{ID: "r1", CustomerId: "c1", CustomerName: "Old Name"}})

	// Repairs table rejects writes; the rename itself must still succeed.
	store.RepairsTable.WriteErr = errors.New("repairs table down")

	cust.Name = "New Name"
	if err := gate.SaveCustomer(ctx, cust); err != nil {
		t.Fatalf("rename should not fail on cascade failure: %v", err)
	}
	if got, _ := repo.FindCustomer("c1"); got.Name != "New Name" {
		t.Errorf("rename not applied: %q", got.Name)
	}
	// The failed repair keeps its old denormalized name until the next pull.
	if repo.Repairs()[0].CustomerName != "Old Name" {
		t.Errorf("failed cascade mutated the mirror anyway")
	}
}

func TestSaveCustomerInvalidPhone(t *testing.T) {
	ctx := context.Background()
	gate, store, repo := newTestGateway()

	err := gate.SaveCustomer(ctx, models.Customer{ID: "c1", Name: "X", Phone: "12"})
	if err == nil {
		t.Fatal("expected phone validation error")
	}
	if store.CustomersTable.Len() != 0 || len(repo.Customers()) != 0 {
		t.Fatal("invalid customer reached the store or mirror")
	}
}

func TestAddSalePrepends(t *testing.T) {
	ctx := context.Background()
	gate, _, repo := newTestGateway()

	if err := gate.AddSale(ctx, models.Sale{ID: "INV-1"}); err != nil {
		t.Fatalf("AddSale: %v", err)
	}
	if err := gate.AddSale(ctx, models.Sale{ID: "INV-2"}); err != nil {
		t.Fatalf("AddSale: %v", err)
	}
	sales := repo.Sales()
	if sales[0].ID != "INV-2" {
		t.Errorf("sales should be newest-first, got %s", sales[0].ID)
	}
}

func TestSaveStoreInfo(t *testing.T) {
	ctx := context.Background()
	gate, store, repo := newTestGateway()

	info := models.StoreInfo{Name: "Branch Two", Phone: "0111234567"}
	if err := gate.SaveStoreInfo(ctx, info); err != nil {
		t.Fatalf("SaveStoreInfo: %v", err)
	}
	if repo.StoreInfo().Name != "Branch Two" {
		t.Error("mirror store info not updated")
	}
	got, found, err := store.GetStoreInfo(ctx)
	if err != nil || !found {
		t.Fatalf("store info not persisted: found=%v err=%v", found, err)
	}
	if got.Name != "Branch Two" {
		t.Errorf("persisted store info mismatch: %+v", got)
	}
}
