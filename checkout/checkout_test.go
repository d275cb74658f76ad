package checkout_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"bitbucket.org/iberryms/repairshop_backend/checkout"
	"bitbucket.org/iberryms/repairshop_backend/gateway"
	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/remote"
	"bitbucket.org/iberryms/repairshop_backend/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type captureEmitter struct {
	calls int
	sale  models.Sale
	lines []models.CartLine
	err   error
}

func (e *captureEmitter) EmitSaleInvoice(sale models.Sale, lines []models.CartLine, info models.StoreInfo, payment models.PaymentMethod) error {
	e.calls++
	e.sale = sale
	e.lines = lines
	return e.err
}

func newTestService() (*checkout.Service, *remote.MemStore, *repository.Repository, *captureEmitter) {
	store := remote.NewMemStore()
	repo := repository.New()
	logg := logrus.New()
	logg.SetOutput(io.Discard)
	gate := gateway.New(store, repo, logg)
	emitter := &captureEmitter{}
	return checkout.New(store, repo, gate, emitter, logg), store, repo, emitter
}

func seedProducts(store *remote.MemStore, repo *repository.Repository, products ...models.Product) {
	store.ProductsTable.Seed(products...)
	repo.ReplaceProducts(products)
}

func TestCheckoutTwoProducts(t *testing.T) {
	ctx := context.Background()
	svc, store, repo, emitter := newTestService()
	seedProducts(store, repo,
		models.Product{ID: "A", Title: "Screen", Price: decimal.NewFromInt(100), Stock: 10},
		models.Product{ID: "B", Title: "Cable", Price: decimal.NewFromInt(50), Stock: 4},
	)

	sale, err := svc.Process(ctx, checkout.Request{
		Lines: []models.CartLine{
			{Kind: models.LineKindProduct, RefId: "A", Name: "Screen", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
			{Kind: models.LineKindProduct, RefId: "B", Name: "Cable", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
		},
		Payment:    models.PaymentMethodCard,
		OperatorId: "u1",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !sale.Total.Equal(decimal.NewFromInt(250)) {
		t.Errorf("total = %s, want 250", sale.Total)
	}
	if !strings.HasPrefix(sale.ID, "INV-") {
		t.Errorf("sale id %q missing invoice prefix", sale.ID)
	}
	if sale.UserId != "u1" {
		t.Errorf("operator = %q", sale.UserId)
	}
	if sale.CustomerName != checkout.WalkInCustomerName {
		t.Errorf("customer = %q, want walk-in", sale.CustomerName)
	}

	// Exactly one sale recorded, locally and remotely.
	if len(repo.Sales()) != 1 {
		t.Fatalf("expected 1 sale in mirror, got %d", len(repo.Sales()))
	}
	if store.SalesTable.Len() != 1 {
		t.Fatalf("expected 1 sale in store, got %d", store.SalesTable.Len())
	}

	// Stock decremented through the normal save path.
	a, _ := repo.FindProduct("A")
	b, _ := repo.FindProduct("B")
	if a.Stock != 8 {
		t.Errorf("A stock = %d, want 8", a.Stock)
	}
	if b.Stock != 3 {
		t.Errorf("B stock = %d, want 3", b.Stock)
	}

	if emitter.calls != 1 {
		t.Errorf("invoice emitted %d times", emitter.calls)
	}
	if len(emitter.lines) != 2 {
		t.Errorf("emitter got %d lines", len(emitter.lines))
	}
}

func TestCheckoutClampsStockAtZero(t *testing.T) {
	ctx := context.Background()
	svc, store, repo, _ := newTestService()
	seedProducts(store, repo, models.Product{ID: "A", Price: decimal.NewFromInt(10), Stock: 1})

	_, err := svc.Process(ctx, checkout.Request{
		Lines: []models.CartLine{
			{Kind: models.LineKindProduct, RefId: "A", UnitPrice: decimal.NewFromInt(10), Quantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	a, _ := repo.FindProduct("A")
	if a.Stock != 0 {
		t.Errorf("stock = %d, want clamped 0", a.Stock)
	}
}

func TestCheckoutRepairLinesSkipStock(t *testing.T) {
	ctx := context.Background()
	svc, store, repo, _ := newTestService()
	seedProducts(store, repo, models.Product{ID: "A", Price: decimal.NewFromInt(10), Stock: 5})

	sale, err := svc.Process(ctx, checkout.Request{
		Lines: []models.CartLine{
			{Kind: models.LineKindRepair, RefId: "r1", Name: "Battery swap", UnitPrice: decimal.NewFromInt(300)},
		},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !sale.Total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total = %s", sale.Total)
	}
	a, _ := repo.FindProduct("A")
	if a.Stock != 5 {
		t.Errorf("repair line touched product stock: %d", a.Stock)
	}
}

func TestCheckoutQuantityDefaultsToOne(t *testing.T) {
	ctx := context.Background()
	svc, store, repo, _ := newTestService()
	seedProducts(store, repo, models.Product{ID: "A", Price: decimal.NewFromInt(40), Stock: 3})

	sale, err := svc.Process(ctx, checkout.Request{
		Lines: []models.CartLine{
			{Kind: models.LineKindProduct, RefId: "A", UnitPrice: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !sale.Total.Equal(decimal.NewFromInt(40)) {
		t.Errorf("total = %s, want 40", sale.Total)
	}
	a, _ := repo.FindProduct("A")
	if a.Stock != 2 {
		t.Errorf("stock = %d, want 2", a.Stock)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _, repo, emitter := newTestService()
	_, err := svc.Process(context.Background(), checkout.Request{})
	if !errors.Is(err, checkout.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if len(repo.Sales()) != 0 || emitter.calls != 0 {
		t.Fatal("empty cart produced side effects")
	}
}

func TestCheckoutNamedCustomer(t *testing.T) {
	ctx := context.Background()
	svc, store, repo, _ := newTestService()
	seedProducts(store, repo, models.Product{ID: "A", Price: decimal.NewFromInt(10), Stock: 2})
	repo.ReplaceCustomers([]models.Customer{{ID: "c1", Name: "Thandi Nkosi"}})

	sale, err := svc.Process(ctx, checkout.Request{
		Lines: []models.CartLine{
			{Kind: models.LineKindProduct, RefId: "A", UnitPrice: decimal.NewFromInt(10)},
		},
		CustomerId: "c1",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if sale.CustomerName != "Thandi Nkosi" {
		t.Errorf("customer = %q", sale.CustomerName)
	}
}

func TestCheckoutSaleInsertFailureAbortsEverything(t *testing.T) {
	ctx := context.Background()
	svc, store, repo, emitter := newTestService()
	seedProducts(store, repo, models.Product{ID: "A", Price: decimal.NewFromInt(10), Stock: 2})
	store.SalesTable.WriteErr = errors.New("insert rejected")

	_, err := svc.Process(ctx, checkout.Request{
		Lines: []models.CartLine{
			{Kind: models.LineKindProduct, RefId: "A", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
		},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.Sales()) != 0 {
		t.Fatal("sale applied locally despite remote failure")
	}
	a, _ := repo.FindProduct("A")
	if a.Stock != 2 {
		t.Fatal("stock touched although the sale was never recorded")
	}
	if emitter.calls != 0 {
		t.Fatal("invoice emitted for an unrecorded sale")
	}
}

func TestCheckoutPartialStockFailureKeepsSale(t *testing.T) {
	ctx := context.Background()
	svc, store, repo, emitter := newTestService()
	seedProducts(store, repo, models.Product{ID: "A", Price: decimal.NewFromInt(10), Stock: 2})

	// Sale insert works, the later product write does not.
	store.ProductsTable.WriteErr = errors.New("products table down")

	sale, err := svc.Process(ctx, checkout.Request{
		Lines: []models.CartLine{
			{Kind: models.LineKindProduct, RefId: "A", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
		},
	})
	if !errors.Is(err, checkout.ErrPartialStock) {
		t.Fatalf("expected ErrPartialStock, got %v", err)
	}

	// The sale is final even though stock was not decremented.
	if len(repo.Sales()) != 1 || repo.Sales()[0].ID != sale.ID {
		t.Fatal("sale missing from the mirror after partial failure")
	}
	if store.SalesTable.Len() != 1 {
		t.Fatal("sale missing from the store after partial failure")
	}
	a, _ := repo.FindProduct("A")
	if a.Stock != 2 {
		t.Errorf("stock mutated locally despite failed remote write: %d", a.Stock)
	}
	// The operator still gets the document.
	if emitter.calls != 1 {
		t.Errorf("invoice emitted %d times", emitter.calls)
	}
}

func TestCheckoutMissingProductIsSkipped(t *testing.T) {
	ctx := context.Background()
	svc, _, repo, _ := newTestService()

	// Cart references a product that vanished between cart and checkout.
	sale, err := svc.Process(ctx, checkout.Request{
		Lines: []models.CartLine{
			{Kind: models.LineKindProduct, RefId: "ghost", UnitPrice: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("missing product must not fail checkout: %v", err)
	}
	if len(repo.Sales()) != 1 || repo.Sales()[0].ID != sale.ID {
		t.Fatal("sale not recorded")
	}
}
