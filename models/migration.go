package models

import "gorm.io/gorm"

// MigrateTable creates/updates the schema of the remote store. Called from
// main and from the seed tool after the connection is up.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Product{},
		&Customer{},
		&Repair{},
		&Sale{},
		&StockOrder{},
		&ConfigRecord{},
		&UserAccount{},
	)
}
