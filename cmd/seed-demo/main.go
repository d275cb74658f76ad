// seed-demo creates the admin console user and a couple of demo products so
// a fresh install has something on the shelf.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/iberryms/repairshop_backend/config"
	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/remote"
	"bitbucket.org/iberryms/repairshop_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

const (
	adminUsername = "iberryAdmin"
	adminPassword = "iBerry@dmin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	hash, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}
	admin := models.UserAccount{
		ID:           utils.NewId("u"),
		Username:     adminUsername,
		PasswordHash: string(hash),
		Role:         models.UserRoleAdmin,
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, UpdateAll: true}).
		Create(&admin).Error; err != nil {
		fmt.Fprintf(os.Stderr, "seed admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin user %q ready\n", adminUsername)

	store := remote.NewGormStore(db, nil)
	demoProducts := []models.Product{
		{
			ID:       "p1",
			Title:    "iPhone 13 Screen (OEM)",
			Price:    decimal.NewFromInt(1850),
			Model:    "iPhone 13",
			Category: models.CategoryAccessories,
			Stock:    15,
			Image:    "https://picsum.photos/seed/iphone/200",
		},
		{
			ID:       "p2",
			Title:    "Type-C Braided Cable",
			Price:    decimal.NewFromInt(120),
			Model:    "Universal",
			Category: models.CategoryCables,
			Stock:    50,
			Image:    "https://picsum.photos/seed/cable/200",
		},
	}
	for _, p := range demoProducts {
		if err := store.Products().Upsert(ctx, p); err != nil {
			fmt.Fprintf(os.Stderr, "seed product %s: %v\n", p.ID, err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded %d demo products\n", len(demoProducts))
}
