package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"movierental/internal/models"
	"movierental/internal/pricing"
	"movierental/internal/repositories"
)

var testPricing = pricing.Config{
	NewLimitYears:     1,
	RegularLimitYears: 3,
	RentalRates:       pricing.Rates{New: 500, Regular: 350, Old: 200},
	FeeRates:          pricing.Rates{New: 250, Regular: 150, Old: 100},
}

// testClock is an adjustable clock shared by the pricing engine and the
// rental service in tests.
type testClock struct {
	current time.Time
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(days int) {
	c.current = c.current.AddDate(0, 0, days)
}

type testEnv struct {
	db        *gorm.DB
	clock     *testClock
	catalog   CatalogService
	inventory InventoryService
	rental    RentalService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory store.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.MovieGenre{},
		&models.Movie{},
		&models.InventoryItem{},
		&models.Customer{},
		&models.RentalTransaction{},
		&models.RentalTransactionItem{},
	))

	clock := &testClock{current: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}

	engine, err := pricing.NewEngine(testPricing, clock.Now)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	genreRepo := repositories.NewGenreRepository(db)
	movieRepo := repositories.NewMovieRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)

	return &testEnv{
		db:        db,
		clock:     clock,
		catalog:   NewCatalogService(db, movieRepo, genreRepo, inventoryRepo, log),
		inventory: NewInventoryService(db, inventoryRepo, movieRepo, log),
		rental:    NewRentalService(db, customerRepo, inventoryRepo, engine, clock.Now, log),
	}
}

func (e *testEnv) createMovie(t *testing.T, title string, releaseDate time.Time) *models.Movie {
	t.Helper()
	movie, err := e.catalog.CreateMovie(MovieInput{
		Title:       title,
		Description: "test movie",
		ReleaseDate: releaseDate,
		Rating:      models.MovieRatingPG13,
	})
	require.NoError(t, err)
	return movie
}

func (e *testEnv) createItem(t *testing.T, movieID int64) *models.InventoryItem {
	t.Helper()
	item, err := e.inventory.AddItem(movieID, models.StorageFormatDVD)
	require.NoError(t, err)
	return item
}

func (e *testEnv) createCustomer(t *testing.T) *models.Customer {
	t.Helper()
	customer, err := e.rental.CreateCustomer(&models.Customer{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		PhoneNumber: "555-0101",
		Address:     "12 Analytical Way",
		City:        "London",
		State:       "LDN",
		Zip:         "00001",
	})
	require.NoError(t, err)
	return customer
}
