package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"movierental/internal/config"
	"movierental/internal/handlers"
	"movierental/internal/pricing"
	"movierental/internal/repositories"
	"movierental/internal/services"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("failed to get generic DB", "err", err)
		os.Exit(1)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	engine, err := pricing.NewEngine(cfg.Pricing, nil)
	if err != nil {
		log.Error("invalid pricing configuration", "err", err)
		os.Exit(1)
	}

	genreRepo := repositories.NewGenreRepository(db)
	movieRepo := repositories.NewMovieRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)

	catalogService := services.NewCatalogService(db, movieRepo, genreRepo, inventoryRepo, log)
	inventoryService := services.NewInventoryService(db, inventoryRepo, movieRepo, log)
	rentalService := services.NewRentalService(db, customerRepo, inventoryRepo, engine, nil, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handlers.RequestLogger(log))

	handlers.RegisterRoutes(router, catalogService, inventoryService, rentalService, cfg.Profiles, log)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Info("starting server", "addr", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "err", err)
		os.Exit(1)
	}
}
