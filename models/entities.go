package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entity is anything mirrored from the remote store. Ids are opaque strings
// generated on the client side before the first remote write; the store never
// assigns them.
type Entity interface {
	EntityId() string
}

type Product struct {
	ID       string          `gorm:"primaryKey;size:40" json:"id"`
	Title    string          `gorm:"size:200;not null" json:"title" binding:"required"`
	Price    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	Model    string          `gorm:"size:100" json:"model"`
	Category Category        `gorm:"size:20;not null;default:'Other'" json:"category"`
	Stock    int             `gorm:"not null;default:0" json:"stock"`
	Image    string          `gorm:"size:500" json:"image"`
}

func (p Product) EntityId() string { return p.ID }

type Customer struct {
	ID      string `gorm:"primaryKey;size:40" json:"id"`
	Name    string `gorm:"size:100;not null" json:"name" binding:"required"`
	Phone   string `gorm:"size:20;not null" json:"phone" binding:"required"`
	Email   string `gorm:"size:100" json:"email"`
	Address string `gorm:"size:300" json:"address"`
}

func (c Customer) EntityId() string { return c.ID }

// Repair carries a denormalized copy of the customer name for display and
// documents. Renaming a customer must cascade into CustomerName (see gateway).
type Repair struct {
	ID           string          `gorm:"primaryKey;size:40" json:"id"`
	CustomerId   string          `gorm:"index;size:40" json:"customer_id"`
	CustomerName string          `gorm:"size:100" json:"customer_name"`
	Model        string          `gorm:"size:100;not null" json:"model" binding:"required"`
	Imei         string          `gorm:"size:40" json:"imei"`
	Fault        string          `gorm:"type:text" json:"fault"`
	Status       RepairStatus    `gorm:"size:20;not null;default:'Pending'" json:"status"`
	Price        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	DateAdded    time.Time       `gorm:"index" json:"date_added"`
	Notes        string          `gorm:"type:text" json:"notes"`
}

func (r Repair) EntityId() string { return r.ID }

// SetStatus is the single place a repair status changes. Any valid status can
// follow any other; the workshop moves jobs backwards (Completed back to
// Pending after a comeback).
func (r *Repair) SetStatus(s RepairStatus) error {
	parsed, err := ParseRepairStatus(string(s))
	if err != nil {
		return err
	}
	r.Status = parsed
	return nil
}

// SaleItem is a snapshot of a cart line at the moment of checkout. Quantity
// is not persisted per line; it is reflected in the sale total only.
type SaleItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Type  LineKind        `json:"type"`
}

// Sale is append-only: created once by checkout, never updated.
type Sale struct {
	ID           string          `gorm:"primaryKey;size:40" json:"id"`
	Items        []SaleItem      `gorm:"serializer:json" json:"items"`
	Total        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	Date         time.Time       `gorm:"index" json:"date"`
	UserId       string          `gorm:"size:40" json:"user_id"`
	CustomerName string          `gorm:"size:100" json:"customer_name"`
}

func (s Sale) EntityId() string { return s.ID }

type StockOrder struct {
	ID              string           `gorm:"primaryKey;size:40" json:"id"`
	ItemDescription string           `gorm:"size:300;not null" json:"item_description" binding:"required"`
	RequestedBy     string           `gorm:"size:100" json:"requested_by"`
	Date            time.Time        `gorm:"index" json:"date"`
	Status          StockOrderStatus `gorm:"size:20;not null;default:'Requested'" json:"status"`
}

func (o StockOrder) EntityId() string { return o.ID }

func (o *StockOrder) SetStatus(s StockOrderStatus) error {
	parsed, err := ParseStockOrderStatus(string(s))
	if err != nil {
		return err
	}
	o.Status = parsed
	return nil
}

// StoreInfo is the singleton branding record used on emitted documents.
type StoreInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// ConfigRecord is how StoreInfo lives in the remote store: one row in the
// configs table with a fixed id and a JSON payload.
type ConfigRecord struct {
	ID   string    `gorm:"primaryKey;size:20"`
	Data StoreInfo `gorm:"serializer:json"`
}

func (ConfigRecord) TableName() string { return "configs" }

const StoreConfigId = "store"

type UserAccount struct {
	ID           string   `gorm:"primaryKey;size:40" json:"id"`
	Username     string   `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string   `gorm:"size:100;not null" json:"-"`
	Role         UserRole `gorm:"size:20;not null;default:'Sales'" json:"role"`
	Avatar       string   `gorm:"size:500" json:"avatar"`
}
