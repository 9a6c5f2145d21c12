package repositories

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"movierental/internal/models"
)

// Each repository method takes an optional transaction handle; pass nil to
// run against the repository's own connection.

type GenreRepository interface {
	Create(db *gorm.DB, genre *models.MovieGenre) error
	List(db *gorm.DB) ([]models.MovieGenre, error)
	GetByName(db *gorm.DB, name string) (*models.MovieGenre, error)
	CountMovies(db *gorm.DB, genreID int64) (int64, error)
}

type MovieRepository interface {
	Create(db *gorm.DB, movie *models.Movie) error
	List(db *gorm.DB) ([]models.Movie, error)
	GetByID(db *gorm.DB, id int64) (*models.Movie, error)
	Save(db *gorm.DB, movie *models.Movie) error
	Delete(db *gorm.DB, id int64) error
	// Exists reports whether another movie shares the title (case-insensitive)
	// and release date. excludeID skips one movie, for update checks; pass 0
	// to match against the whole catalog.
	Exists(db *gorm.DB, title string, releaseDate time.Time, excludeID int64) (bool, error)
}

type InventoryRepository interface {
	Create(db *gorm.DB, item *models.InventoryItem) error
	GetByID(db *gorm.DB, id int64) (*models.InventoryItem, error)
	ListAvailableByMovie(db *gorm.DB, movieID int64) ([]models.InventoryItem, error)
	CountByMovie(db *gorm.DB, movieID int64) (int64, error)
	// MarkCheckedOut flips the checked-out flag only if the item is currently
	// checked in, and returns the number of rows changed. Zero rows means the
	// item is unknown or already checked out.
	MarkCheckedOut(db *gorm.DB, id int64) (int64, error)
	// MarkCheckedIn clears the checked-out flag. Zero rows means the item is
	// unknown.
	MarkCheckedIn(db *gorm.DB, id int64) (int64, error)
}

type CustomerRepository interface {
	Create(db *gorm.DB, customer *models.Customer) error
	List(db *gorm.DB) ([]models.Customer, error)
	GetByID(db *gorm.DB, id int64) (*models.Customer, error)
	Save(db *gorm.DB, customer *models.Customer) error
	Delete(db *gorm.DB, id int64) error
	CountTransactions(db *gorm.DB, customerID int64) (int64, error)

	CreateTransaction(db *gorm.DB, transaction *models.RentalTransaction) error
	SaveTransaction(db *gorm.DB, transaction *models.RentalTransaction) error
	// LatestTransaction returns the most recently added transaction for the
	// customer with its items and their inventory/movie records, or
	// gorm.ErrRecordNotFound when the customer has none.
	LatestTransaction(db *gorm.DB, customerID int64) (*models.RentalTransaction, error)
	// MarkItemReturned records the return date on a line item that has not
	// been returned yet, and returns the number of rows changed.
	MarkItemReturned(db *gorm.DB, itemID int64, returnedAt time.Time) (int64, error)
}

// concrete implementations

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(db *gorm.DB, genre *models.MovieGenre) error {
	if db == nil {
		db = r.db
	}
	return db.Create(genre).Error
}

func (r *genreRepository) List(db *gorm.DB) ([]models.MovieGenre, error) {
	if db == nil {
		db = r.db
	}
	var genres []models.MovieGenre
	if err := db.Order("name").Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *genreRepository) GetByName(db *gorm.DB, name string) (*models.MovieGenre, error) {
	if db == nil {
		db = r.db
	}
	var genre models.MovieGenre
	err := db.Where("UPPER(name) = ?", strings.ToUpper(name)).First(&genre).Error
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepository) CountMovies(db *gorm.DB, genreID int64) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.Movie{}).Where("genre_id = ?", genreID).Count(&count).Error
	return count, err
}

type movieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) MovieRepository {
	return &movieRepository{db: db}
}

func (r *movieRepository) Create(db *gorm.DB, movie *models.Movie) error {
	if db == nil {
		db = r.db
	}
	return db.Create(movie).Error
}

func (r *movieRepository) List(db *gorm.DB) ([]models.Movie, error) {
	if db == nil {
		db = r.db
	}
	var movies []models.Movie
	if err := db.Preload("Genre").Order("id").Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *movieRepository) GetByID(db *gorm.DB, id int64) (*models.Movie, error) {
	if db == nil {
		db = r.db
	}
	var movie models.Movie
	if err := db.Preload("Genre").First(&movie, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepository) Save(db *gorm.DB, movie *models.Movie) error {
	if db == nil {
		db = r.db
	}
	return db.Save(movie).Error
}

func (r *movieRepository) Delete(db *gorm.DB, id int64) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Movie{}, "id = ?", id).Error
}

func (r *movieRepository) Exists(db *gorm.DB, title string, releaseDate time.Time, excludeID int64) (bool, error) {
	if db == nil {
		db = r.db
	}
	q := db.Model(&models.Movie{}).
		Where("UPPER(title) = ? AND release_date = ?", strings.ToUpper(title), releaseDate)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(db *gorm.DB, item *models.InventoryItem) error {
	if db == nil {
		db = r.db
	}
	return db.Create(item).Error
}

func (r *inventoryRepository) GetByID(db *gorm.DB, id int64) (*models.InventoryItem, error) {
	if db == nil {
		db = r.db
	}
	var item models.InventoryItem
	if err := db.Preload("Movie").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) ListAvailableByMovie(db *gorm.DB, movieID int64) ([]models.InventoryItem, error) {
	if db == nil {
		db = r.db
	}
	var items []models.InventoryItem
	err := db.Where("movie_id = ? AND is_checked_out = ?", movieID, false).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inventoryRepository) CountByMovie(db *gorm.DB, movieID int64) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.InventoryItem{}).Where("movie_id = ?", movieID).Count(&count).Error
	return count, err
}

func (r *inventoryRepository) MarkCheckedOut(db *gorm.DB, id int64) (int64, error) {
	if db == nil {
		db = r.db
	}
	// Guard in the WHERE clause so two concurrent check-outs cannot both
	// succeed; the loser sees zero rows changed.
	res := db.Model(&models.InventoryItem{}).
		Where("id = ? AND is_checked_out = ?", id, false).
		Update("is_checked_out", true)
	return res.RowsAffected, res.Error
}

func (r *inventoryRepository) MarkCheckedIn(db *gorm.DB, id int64) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.InventoryItem{}).
		Where("id = ?", id).
		Update("is_checked_out", false)
	return res.RowsAffected, res.Error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(db *gorm.DB, customer *models.Customer) error {
	if db == nil {
		db = r.db
	}
	return db.Create(customer).Error
}

func (r *customerRepository) List(db *gorm.DB) ([]models.Customer, error) {
	if db == nil {
		db = r.db
	}
	var customers []models.Customer
	if err := db.Order("id").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) GetByID(db *gorm.DB, id int64) (*models.Customer, error) {
	if db == nil {
		db = r.db
	}
	var customer models.Customer
	err := db.
		Preload("RentalTransactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("rental_transactions.id ASC")
		}).
		Preload("RentalTransactions.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("rental_transaction_items.id ASC")
		}).
		First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Save(db *gorm.DB, customer *models.Customer) error {
	if db == nil {
		db = r.db
	}
	return db.Save(customer).Error
}

func (r *customerRepository) Delete(db *gorm.DB, id int64) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Customer{}, "id = ?", id).Error
}

func (r *customerRepository) CountTransactions(db *gorm.DB, customerID int64) (int64, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.Model(&models.RentalTransaction{}).Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}

func (r *customerRepository) CreateTransaction(db *gorm.DB, transaction *models.RentalTransaction) error {
	if db == nil {
		db = r.db
	}
	return db.Create(transaction).Error
}

func (r *customerRepository) SaveTransaction(db *gorm.DB, transaction *models.RentalTransaction) error {
	if db == nil {
		db = r.db
	}
	return db.Omit("Items").Save(transaction).Error
}

func (r *customerRepository) LatestTransaction(db *gorm.DB, customerID int64) (*models.RentalTransaction, error) {
	if db == nil {
		db = r.db
	}
	var transaction models.RentalTransaction
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("rental_transaction_items.id ASC")
		}).
		Preload("Items.InventoryItem").
		Preload("Items.InventoryItem.Movie").
		Where("customer_id = ?", customerID).
		Order("id DESC").
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *customerRepository) MarkItemReturned(db *gorm.DB, itemID int64, returnedAt time.Time) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.RentalTransactionItem{}).
		Where("id = ? AND date_returned IS NULL", itemID).
		Update("date_returned", returnedAt)
	return res.RowsAffected, res.Error
}
