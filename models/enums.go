package models

import "fmt"

type Category string

const (
	CategoryCovers       Category = "Covers"
	CategoryScreenguards Category = "Screenguards"
	CategoryCables       Category = "Cables"
	CategoryEarphones    Category = "Earphones"
	CategoryChargers     Category = "Chargers"
	CategorySpeakers     Category = "Speakers"
	CategoryAccessories  Category = "Accessories"
	CategoryOther        Category = "Other"
)

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryCovers, CategoryScreenguards, CategoryCables, CategoryEarphones,
		CategoryChargers, CategorySpeakers, CategoryAccessories, CategoryOther:
		return Category(s), nil
	}
	return "", fmt.Errorf("invalid product category %q", s)
}

type RepairStatus string

const (
	RepairStatusPending    RepairStatus = "Pending"
	RepairStatusInProgress RepairStatus = "In Progress"
	RepairStatusReady      RepairStatus = "Ready for Pickup"
	RepairStatusCompleted  RepairStatus = "Completed"
	RepairStatusCancelled  RepairStatus = "Cancelled"
)

func ParseRepairStatus(s string) (RepairStatus, error) {
	switch RepairStatus(s) {
	case RepairStatusPending, RepairStatusInProgress, RepairStatusReady,
		RepairStatusCompleted, RepairStatusCancelled:
		return RepairStatus(s), nil
	}
	return "", fmt.Errorf("invalid repair status %q", s)
}

type StockOrderStatus string

const (
	StockOrderStatusRequested StockOrderStatus = "Requested"
	StockOrderStatusOrdered   StockOrderStatus = "Ordered"
	StockOrderStatusReceived  StockOrderStatus = "Received"
)

func ParseStockOrderStatus(s string) (StockOrderStatus, error) {
	switch StockOrderStatus(s) {
	case StockOrderStatusRequested, StockOrderStatusOrdered, StockOrderStatusReceived:
		return StockOrderStatus(s), nil
	}
	return "", fmt.Errorf("invalid stock order status %q", s)
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "Cash"
	PaymentMethodCard PaymentMethod = "Card"
)

// LineKind tags a sale line item or cart line as originating from a Product
// or from a Repair. Repair lines never adjust stock.
type LineKind string

const (
	LineKindProduct LineKind = "product"
	LineKindRepair  LineKind = "repair"
)

type UserRole string

const (
	UserRoleAdmin      UserRole = "Admin"
	UserRoleTechnician UserRole = "Technician"
	UserRoleSales      UserRole = "Sales"
)
