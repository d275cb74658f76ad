package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitbucket.org/iberryms/repairshop_backend/advisor"
	"bitbucket.org/iberryms/repairshop_backend/checkout"
	"bitbucket.org/iberryms/repairshop_backend/config"
	"bitbucket.org/iberryms/repairshop_backend/gateway"
	"bitbucket.org/iberryms/repairshop_backend/handlers"
	"bitbucket.org/iberryms/repairshop_backend/invoice"
	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/remote"
	"bitbucket.org/iberryms/repairshop_backend/repository"
	"bitbucket.org/iberryms/repairshop_backend/syncengine"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const defaultPort = "8080"

func main() {
	logg := config.GetLogger()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	if err := models.MigrateTable(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	feed := remote.NewRedisFeed(config.GetRedisDB(), logg)
	store := remote.NewGormStore(db, feed)
	repo := repository.New()
	gate := gateway.New(store, repo, logg)
	renderer := invoice.NewRenderer()
	checkoutSvc := checkout.New(store, repo, gate, renderer, logg)
	engine := syncengine.New(store, feed, repo, logg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup pull plus change-feed re-pulls until shutdown.
	go func() {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			config.LogError(logg, "server.go", "main", "sync engine stopped", nil, err)
		}
	}()

	h := &handlers.Handler{
		Repo:     repo,
		Gate:     gate,
		Checkout: checkoutSvc,
		Engine:   engine,
		Advisor:  advisor.New(logg),
		Renderer: renderer,
		DB:       db,
		Logg:     logg,
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	h.Register(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		log.Printf("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
