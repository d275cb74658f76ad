package remote

import (
	"context"
	"errors"

	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on top of gorm/MySQL. Every successful write
// publishes a change notification so other instances (and this one) re-pull.
type GormStore struct {
	db       *gorm.DB
	notifier Notifier

	products    Table[models.Product]
	customers   Table[models.Customer]
	repairs     Table[models.Repair]
	sales       Table[models.Sale]
	stockOrders Table[models.StockOrder]
}

func NewGormStore(db *gorm.DB, notifier Notifier) *GormStore {
	s := &GormStore{db: db, notifier: notifier}
	s.products = &gormTable[models.Product]{db: db, table: "products", notify: s.notify}
	s.customers = &gormTable[models.Customer]{db: db, table: "customers", notify: s.notify}
	s.repairs = &gormTable[models.Repair]{db: db, table: "repairs", orderBy: "date_added DESC", notify: s.notify}
	s.sales = &gormTable[models.Sale]{db: db, table: "sales", orderBy: "date DESC", notify: s.notify}
	s.stockOrders = &gormTable[models.StockOrder]{db: db, table: "stock_orders", orderBy: "date DESC", notify: s.notify}
	return s
}

func (s *GormStore) notify(ctx context.Context, table string) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, table)
	}
}

func (s *GormStore) Products() Table[models.Product]       { return s.products }
func (s *GormStore) Customers() Table[models.Customer]     { return s.customers }
func (s *GormStore) Repairs() Table[models.Repair]         { return s.repairs }
func (s *GormStore) Sales() Table[models.Sale]             { return s.sales }
func (s *GormStore) StockOrders() Table[models.StockOrder] { return s.stockOrders }

func (s *GormStore) GetStoreInfo(ctx context.Context) (models.StoreInfo, bool, error) {
	var record models.ConfigRecord
	err := s.db.WithContext(ctx).Where("id = ?", models.StoreConfigId).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StoreInfo{}, false, nil
	}
	if err != nil {
		return models.StoreInfo{}, false, err
	}
	return record.Data, true, nil
}

func (s *GormStore) SaveStoreInfo(ctx context.Context, info models.StoreInfo) error {
	record := models.ConfigRecord{ID: models.StoreConfigId, Data: info}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		return err
	}
	s.notify(ctx, "configs")
	return nil
}

type gormTable[T models.Entity] struct {
	db      *gorm.DB
	table   string
	orderBy string
	notify  func(ctx context.Context, table string)
}

func (t *gormTable[T]) ListAll(ctx context.Context) ([]T, error) {
	var out []T
	dbCtx := t.db.WithContext(ctx)
	if t.orderBy != "" {
		dbCtx = dbCtx.Order(t.orderBy)
	}
	if err := dbCtx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (t *gormTable[T]) Get(ctx context.Context, id string) (T, error) {
	var record T
	err := t.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record, utils.ErrorRecordNotFound
	}
	if err != nil {
		return record, err
	}
	return record, nil
}

func (t *gormTable[T]) Upsert(ctx context.Context, record T) error {
	if err := t.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		return err
	}
	t.notify(ctx, t.table)
	return nil
}

func (t *gormTable[T]) Insert(ctx context.Context, record T) error {
	if err := t.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}
	t.notify(ctx, t.table)
	return nil
}

func (t *gormTable[T]) Delete(ctx context.Context, id string) (int64, error) {
	var zero T
	res := t.db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		t.notify(ctx, t.table)
	}
	return res.RowsAffected, nil
}
