// Package checkout turns the cart working set into a persisted Sale plus
// inventory decrements and an emitted invoice. The steps are not transactional
// across the store: once the Sale insert succeeds it stays recorded even if a
// later stock write fails. That gap is surfaced, logged for manual
// reconciliation, and never rolled back.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/iberryms/repairshop_backend/config"
	"bitbucket.org/iberryms/repairshop_backend/gateway"
	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/remote"
	"bitbucket.org/iberryms/repairshop_backend/repository"
	"bitbucket.org/iberryms/repairshop_backend/utils"
	"github.com/sirupsen/logrus"
)

const WalkInCustomerName = "Walk-in Customer"

var (
	ErrEmptyCart = errors.New("cart is empty")

	// ErrPartialStock reports that the sale was recorded but one or more
	// stock decrements failed. The caller shows it to the operator; the
	// sale itself is final.
	ErrPartialStock = errors.New("sale recorded but some stock levels were not updated")
)

// DocumentEmitter is the document-emission collaborator. The transaction only
// feeds it data; nothing it returns flows back into persisted state.
type DocumentEmitter interface {
	EmitSaleInvoice(sale models.Sale, lines []models.CartLine, info models.StoreInfo, payment models.PaymentMethod) error
}

type Request struct {
	Lines      []models.CartLine
	CustomerId string // empty means walk-in
	Payment    models.PaymentMethod
	OperatorId string
}

type Service struct {
	store remote.Store
	repo  *repository.Repository
	gate  *gateway.Gateway
	docs  DocumentEmitter
	logg  *logrus.Logger

	now func() time.Time
}

func New(store remote.Store, repo *repository.Repository, gate *gateway.Gateway, docs DocumentEmitter, logg *logrus.Logger) *Service {
	return &Service{
		store: store,
		repo:  repo,
		gate:  gate,
		docs:  docs,
		logg:  logg,
		now:   time.Now,
	}
}

// Process executes the checkout:
//
//  1. grand total from the cart lines
//  2. Sale construction with a fresh client-generated id
//  3. append-only insert of the Sale
//  4. clamped stock decrement for every product line (repair lines skip)
//  5. invoice emission
//
// A failure at step 3 aborts with nothing persisted. Failures at step 4 are
// collected per line, logged as reconciliation records, and reported together
// as ErrPartialStock alongside the recorded sale. The caller clears its cart
// only on return without a hard error.
func (s *Service) Process(ctx context.Context, req Request) (models.Sale, error) {
	if len(req.Lines) == 0 {
		return models.Sale{}, ErrEmptyCart
	}

	total := models.CartTotal(req.Lines)

	customerName := WalkInCustomerName
	if req.CustomerId != "" {
		if c, ok := s.repo.FindCustomer(req.CustomerId); ok {
			customerName = c.Name
		}
	}

	operator := req.OperatorId
	if operator == "" {
		operator = "sys"
	}

	items := make([]models.SaleItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		items = append(items, models.SaleItem{
			ID:    line.RefId,
			Name:  line.Name,
			Price: line.UnitPrice,
			Type:  line.Kind,
		})
	}

	sale := models.Sale{
		ID:           utils.NewSaleId(),
		Items:        items,
		Total:        total,
		Date:         s.now().UTC(),
		UserId:       operator,
		CustomerName: customerName,
	}

	if err := s.gate.AddSale(ctx, sale); err != nil {
		return models.Sale{}, err
	}

	partial := s.decrementStock(ctx, sale.ID, req.Lines)

	if s.docs != nil {
		if err := s.docs.EmitSaleInvoice(sale, req.Lines, s.repo.StoreInfo(), req.Payment); err != nil {
			config.LogError(s.logg, "checkout.go", "Process", "emit invoice "+sale.ID, nil, err)
		}
	}

	if partial != nil {
		return sale, fmt.Errorf("%w: %v", ErrPartialStock, partial)
	}
	return sale, nil
}

// decrementStock re-fetches each product line from the remote store and
// writes back a clamped stock level. Returns the first failure, after logging
// every failed line with enough detail to reconcile by hand.
func (s *Service) decrementStock(ctx context.Context, saleId string, lines []models.CartLine) error {
	var firstErr error
	for _, line := range lines {
		switch line.Kind {
		case models.LineKindRepair:
			// Repair lines never touch inventory.
			continue
		case models.LineKindProduct:
			product, err := s.store.Products().Get(ctx, line.RefId)
			if err != nil {
				if errors.Is(err, utils.ErrorRecordNotFound) {
					// Product vanished between cart and checkout; nothing to decrement.
					continue
				}
				s.logReconciliation(saleId, line, err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}

			newStock := product.Stock - line.Qty()
			if newStock < 0 {
				newStock = 0
			}
			product.Stock = newStock

			if err := s.gate.SaveProduct(ctx, product); err != nil {
				s.logReconciliation(saleId, line, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		default:
			s.logReconciliation(saleId, line, fmt.Errorf("unknown cart line kind %q", line.Kind))
			if firstErr == nil {
				firstErr = fmt.Errorf("unknown cart line kind %q", line.Kind)
			}
		}
	}
	return firstErr
}

// logReconciliation records a missed stock decrement so the sale can be
// reconciled manually against inventory.
func (s *Service) logReconciliation(saleId string, line models.CartLine, err error) {
	s.logg.WithFields(logrus.Fields{
		"module":     "checkout.go",
		"funcName":   "decrementStock",
		"sale_id":    saleId,
		"product_id": line.RefId,
		"quantity":   line.Qty(),
	}).Error("stock decrement failed, manual reconciliation required: " + err.Error())
}
