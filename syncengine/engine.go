// Package syncengine reconciles the local mirror with the remote store:
// full pulls of every collection, re-triggered by change-feed notifications.
package syncengine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bitbucket.org/iberryms/repairshop_backend/config"
	"bitbucket.org/iberryms/repairshop_backend/remote"
	"bitbucket.org/iberryms/repairshop_backend/repository"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the coalescing window for change-feed bursts: the first
// notification arms a timer, further notifications inside the window fold
// into the same refresh. Every notification is still followed by at least one
// refresh.
const DefaultDebounce = 300 * time.Millisecond

type Engine struct {
	store    remote.Store
	feed     remote.ChangeFeed
	repo     *repository.Repository
	logg     *logrus.Logger
	debounce time.Duration

	online atomic.Bool
}

func New(store remote.Store, feed remote.ChangeFeed, repo *repository.Repository, logg *logrus.Logger) *Engine {
	return &Engine{
		store:    store,
		feed:     feed,
		repo:     repo,
		logg:     logg,
		debounce: DefaultDebounce,
	}
}

// Online reports whether the last refresh cycle completed with every
// collection read succeeding.
func (e *Engine) Online() bool {
	return e.online.Load()
}

// RefreshAll pulls every collection concurrently and applies each result to
// the repository as soon as its read resolves. A failed read leaves that
// collection at its previous value and flips the connectivity flag for this
// cycle; the other collections are still applied. Returns the connectivity
// outcome.
func (e *Engine) RefreshAll(ctx context.Context) bool {
	var wg sync.WaitGroup
	var failures atomic.Int32

	run := func(name string, fetch func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fetch(); err != nil {
				failures.Add(1)
				config.LogError(e.logg, "engine.go", "RefreshAll", name, nil, err)
			}
		}()
	}

	run("products", func() error {
		list, err := e.store.Products().ListAll(ctx)
		if err != nil {
			return err
		}
		e.repo.ReplaceProducts(list)
		return nil
	})
	run("customers", func() error {
		list, err := e.store.Customers().ListAll(ctx)
		if err != nil {
			return err
		}
		e.repo.ReplaceCustomers(list)
		return nil
	})
	run("repairs", func() error {
		list, err := e.store.Repairs().ListAll(ctx)
		if err != nil {
			return err
		}
		e.repo.ReplaceRepairs(list)
		return nil
	})
	run("sales", func() error {
		list, err := e.store.Sales().ListAll(ctx)
		if err != nil {
			return err
		}
		e.repo.ReplaceSales(list)
		return nil
	})
	run("stock_orders", func() error {
		list, err := e.store.StockOrders().ListAll(ctx)
		if err != nil {
			return err
		}
		e.repo.ReplaceStockOrders(list)
		return nil
	})
	run("configs", func() error {
		info, found, err := e.store.GetStoreInfo(ctx)
		if err != nil {
			return err
		}
		if found {
			e.repo.SetStoreInfo(info)
		}
		return nil
	})

	wg.Wait()
	ok := failures.Load() == 0
	e.online.Store(ok)
	return ok
}

// Run performs the startup pull and then re-pulls on change-feed
// notifications until ctx is cancelled. Cancelling ctx tears the
// subscription down; no refresh fires afterwards.
func (e *Engine) Run(ctx context.Context) error {
	e.RefreshAll(ctx)

	ch, err := e.feed.Subscribe(ctx)
	if err != nil {
		e.online.Store(false)
		config.LogError(e.logg, "engine.go", "Run", "subscribe", nil, err)
		return err
	}

	var timerC <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			// Arm the window on the first notification of a burst;
			// later ones fold into the pending refresh.
			if timerC == nil {
				timer = time.NewTimer(e.debounce)
				timerC = timer.C
			}
		case <-timerC:
			timerC = nil
			timer = nil
			e.RefreshAll(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
