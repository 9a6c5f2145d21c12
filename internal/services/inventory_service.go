package services

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"movierental/internal/models"
	"movierental/internal/repositories"
)

var (
	// ErrInventoryItemNotFound is returned when the referenced inventory item
	// does not exist.
	ErrInventoryItemNotFound = errors.New("inventory item not found")

	// ErrAlreadyCheckedOut is returned when a check-out races another and
	// loses, or targets an item that is already out.
	ErrAlreadyCheckedOut = errors.New("inventory item is already checked out")

	// ErrInvalidStorageFormat is returned when a storage format is not one the
	// store stocks.
	ErrInvalidStorageFormat = errors.New("invalid storage format")
)

// InventoryService tracks the checked-out state of physical copies.
type InventoryService interface {
	AddItem(movieID int64, format models.StorageFormat) (*models.InventoryItem, error)
	ListAvailable(movieID int64) ([]models.InventoryItem, error)
	CheckOut(itemID int64) error
	CheckIn(itemID int64) error
}

type inventoryService struct {
	db            *gorm.DB
	inventoryRepo repositories.InventoryRepository
	movieRepo     repositories.MovieRepository
	log           *slog.Logger
}

func NewInventoryService(
	db *gorm.DB,
	inventoryRepo repositories.InventoryRepository,
	movieRepo repositories.MovieRepository,
	log *slog.Logger,
) InventoryService {
	return &inventoryService{
		db:            db,
		inventoryRepo: inventoryRepo,
		movieRepo:     movieRepo,
		log:           log,
	}
}

// AddItem adds one physical copy of a movie to stock.
func (s *inventoryService) AddItem(movieID int64, format models.StorageFormat) (*models.InventoryItem, error) {
	if !format.Valid() {
		return nil, ErrInvalidStorageFormat
	}

	if _, err := s.movieRepo.GetByID(nil, movieID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}

	item := &models.InventoryItem{
		MovieID:       movieID,
		StorageFormat: format,
		IsCheckedOut:  false,
	}
	if err := s.inventoryRepo.Create(nil, item); err != nil {
		return nil, err
	}

	s.log.Info("inventory item added", "item_id", item.ID, "movie_id", movieID, "format", format)
	return item, nil
}

// ListAvailable returns the copies of a movie that are currently checked in.
func (s *inventoryService) ListAvailable(movieID int64) ([]models.InventoryItem, error) {
	if _, err := s.movieRepo.GetByID(nil, movieID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return s.inventoryRepo.ListAvailableByMovie(nil, movieID)
}

// CheckOut marks a copy as lent out. Of two concurrent check-outs on the same
// item, exactly one succeeds; the other gets ErrAlreadyCheckedOut.
func (s *inventoryService) CheckOut(itemID int64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := s.inventoryRepo.MarkCheckedOut(tx, itemID)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Either the item is unknown or another check-out won the race.
			if _, err := s.inventoryRepo.GetByID(tx, itemID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInventoryItemNotFound
				}
				return err
			}
			return ErrAlreadyCheckedOut
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("inventory item checked out", "item_id", itemID)
	return nil
}

// CheckIn marks a copy as back in stock. Checking in an item that is already
// in stock is a no-op.
func (s *inventoryService) CheckIn(itemID int64) error {
	rows, err := s.inventoryRepo.MarkCheckedIn(nil, itemID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInventoryItemNotFound
	}

	s.log.Info("inventory item checked in", "item_id", itemID)
	return nil
}
