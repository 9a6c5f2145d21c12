package models

import (
	"time"
)

type MovieRating string

const (
	MovieRatingG    MovieRating = "G"
	MovieRatingPG   MovieRating = "PG"
	MovieRatingPG13 MovieRating = "PG13"
	MovieRatingR    MovieRating = "R"
	MovieRatingNC17 MovieRating = "NC17"
)

// Valid reports whether the rating is one of the MPAA ratings the store accepts.
func (r MovieRating) Valid() bool {
	switch r {
	case MovieRatingG, MovieRatingPG, MovieRatingPG13, MovieRatingR, MovieRatingNC17:
		return true
	}
	return false
}

type StorageFormat string

const (
	StorageFormatDVD    StorageFormat = "DVD"
	StorageFormatBluRay StorageFormat = "BluRay"
)

// Valid reports whether the format is a storage format the store stocks.
func (f StorageFormat) Valid() bool {
	return f == StorageFormatDVD || f == StorageFormatBluRay
}

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
)

type MovieGenre struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;not null;uniqueIndex" json:"name"`
}

type Movie struct {
	ID          int64       `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"size:255;not null;index" json:"title"`
	Description string      `gorm:"size:2048;not null" json:"description"`
	ReleaseDate time.Time   `gorm:"not null" json:"release_date"`
	Rating      MovieRating `gorm:"size:8;not null" json:"rating"`
	GenreID     *int64      `gorm:"index" json:"genre_id,omitempty"`
	Genre       *MovieGenre `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"genre,omitempty"`
}

type InventoryItem struct {
	ID            int64         `gorm:"primaryKey" json:"id"`
	MovieID       int64         `gorm:"not null;index" json:"movie_id"`
	Movie         Movie         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	StorageFormat StorageFormat `gorm:"size:8;not null" json:"storage_format"`
	IsCheckedOut  bool          `gorm:"not null;default:false" json:"is_checked_out"`
}

type Customer struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	FirstName   string `gorm:"size:128;not null" json:"first_name"`
	LastName    string `gorm:"size:128;not null" json:"last_name"`
	PhoneNumber string `gorm:"size:32" json:"phone_number"`
	Address     string `gorm:"size:255" json:"address"`
	Address2    string `gorm:"size:255" json:"address2,omitempty"`
	City        string `gorm:"size:128" json:"city"`
	State       string `gorm:"size:64" json:"state"`
	Zip         string `gorm:"size:16" json:"zip"`

	// Insertion order is chronological order; the last element is the
	// customer's current transaction for overdue/fee purposes.
	RentalTransactions []RentalTransaction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"rental_transactions,omitempty"`
}

// RentalTransaction records one visit to the rental counter.
// Monetary amounts are stored in cents.
type RentalTransaction struct {
	ID                 int64                   `gorm:"primaryKey" json:"id"`
	CustomerID         int64                   `gorm:"not null;index" json:"customer_id"`
	TransactionDate    time.Time               `gorm:"not null" json:"transaction_date"`
	Items              []RentalTransactionItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"items,omitempty"`
	LateFeesCharged    int64                   `gorm:"not null;default:0" json:"late_fees_charged"`
	RentalFeesCharged  int64                   `gorm:"not null;default:0" json:"rental_fees_charged"`
	TotalAmountCharged int64                   `gorm:"not null;default:0" json:"total_amount_charged"`
	// LateFeesPaid is meaningful only when late fees were owed on this transaction.
	LateFeesPaid bool `gorm:"not null;default:false" json:"late_fees_paid"`
}

type RentalTransactionItem struct {
	ID                  int64         `gorm:"primaryKey" json:"id"`
	RentalTransactionID int64         `gorm:"not null;index" json:"rental_transaction_id"`
	InventoryItemID     int64         `gorm:"not null;index" json:"inventory_item_id"`
	InventoryItem       InventoryItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	DueDate             time.Time     `gorm:"not null" json:"due_date"`
	// DateReturned is nil until a return has been recorded.
	DateReturned *time.Time `json:"date_returned,omitempty"`
}

// Returned reports whether a return has been recorded for the item.
func (i RentalTransactionItem) Returned() bool {
	return i.DateReturned != nil
}
