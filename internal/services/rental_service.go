package services

import (
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"movierental/internal/models"
	"movierental/internal/pricing"
	"movierental/internal/repositories"
)

var (
	// ErrCustomerNotFound is returned when the referenced customer does not
	// exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrCustomerHasTransactions is returned when a customer cannot be
	// deleted because rental transactions reference them.
	ErrCustomerHasTransactions = errors.New("customer has rental transactions")

	// ErrNoRentalItems is returned when a transaction is created without any
	// line items.
	ErrNoRentalItems = errors.New("rental transaction needs at least one item")

	// ErrDueDateInPast is returned when a line item is due before the
	// transaction date.
	ErrDueDateInPast = errors.New("due date must not be in the past")

	// ErrItemNotInTransaction is returned when a return names an item that is
	// not on the customer's latest transaction.
	ErrItemNotInTransaction = errors.New("item is not on the customer's latest transaction")
)

// NewRentalItem is one copy being rented in a new transaction.
type NewRentalItem struct {
	InventoryItemID int64
	DueDate         time.Time
}

// RentalService owns the customer ledger: transactions, returns, overdue
// items and late fees. Overdue and fee logic inspects only the customer's
// latest transaction.
type RentalService interface {
	CreateCustomer(customer *models.Customer) (*models.Customer, error)
	GetCustomer(id int64) (*models.Customer, error)
	ListCustomers() ([]models.Customer, error)
	UpdateCustomer(id int64, customer *models.Customer) (*models.Customer, error)
	DeleteCustomer(id int64) error

	AddTransaction(customerID int64, items []NewRentalItem) (*models.RentalTransaction, error)
	GetOverdueItems(customerID int64) ([]models.RentalTransactionItem, error)
	GetOutstandingLateFees(customerID int64) (int64, error)
	MarkLateFeesPaid(customerID int64) error
	MarkReturned(customerID, itemID int64) error
}

type rentalService struct {
	db            *gorm.DB
	customerRepo  repositories.CustomerRepository
	inventoryRepo repositories.InventoryRepository
	engine        *pricing.Engine
	now           func() time.Time
	log           *slog.Logger
}

// NewRentalService wires up the ledger. The now function should be the same
// clock the pricing engine uses; pass nil for time.Now.
func NewRentalService(
	db *gorm.DB,
	customerRepo repositories.CustomerRepository,
	inventoryRepo repositories.InventoryRepository,
	engine *pricing.Engine,
	now func() time.Time,
	log *slog.Logger,
) RentalService {
	if now == nil {
		now = time.Now
	}
	return &rentalService{
		db:            db,
		customerRepo:  customerRepo,
		inventoryRepo: inventoryRepo,
		engine:        engine,
		now:           now,
		log:           log,
	}
}

// customer bookkeeping

func (s *rentalService) CreateCustomer(customer *models.Customer) (*models.Customer, error) {
	customer.ID = 0
	customer.RentalTransactions = nil
	if err := s.customerRepo.Create(nil, customer); err != nil {
		return nil, err
	}
	s.log.Info("customer created", "customer_id", customer.ID)
	return customer, nil
}

func (s *rentalService) GetCustomer(id int64) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *rentalService) ListCustomers() ([]models.Customer, error) {
	return s.customerRepo.List(nil)
}

func (s *rentalService) UpdateCustomer(id int64, customer *models.Customer) (*models.Customer, error) {
	var updated *models.Customer

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.customerRepo.GetByID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		existing.FirstName = customer.FirstName
		existing.LastName = customer.LastName
		existing.PhoneNumber = customer.PhoneNumber
		existing.Address = customer.Address
		existing.Address2 = customer.Address2
		existing.City = customer.City
		existing.State = customer.State
		existing.Zip = customer.Zip

		if err := s.customerRepo.Save(tx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("customer updated", "customer_id", id)
	return updated, nil
}

// DeleteCustomer removes a customer unless transactions reference them.
func (s *rentalService) DeleteCustomer(id int64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.customerRepo.GetByID(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		refs, err := s.customerRepo.CountTransactions(tx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrCustomerHasTransactions
		}

		return s.customerRepo.Delete(tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("customer deleted", "customer_id", id)
	return nil
}

// ledger operations

// AddTransaction appends a transaction to the customer's ledger. Every
// referenced inventory item is checked out and the rental fee priced inside
// the same database transaction; a conflict on any item aborts the whole
// operation.
func (s *rentalService) AddTransaction(customerID int64, items []NewRentalItem) (*models.RentalTransaction, error) {
	if len(items) == 0 {
		return nil, ErrNoRentalItems
	}

	var created *models.RentalTransaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.customerRepo.GetByID(tx, customerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		now := s.now()
		transaction := &models.RentalTransaction{
			CustomerID:      customerID,
			TransactionDate: now,
		}

		for _, in := range items {
			item, err := s.inventoryRepo.GetByID(tx, in.InventoryItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInventoryItemNotFound
				}
				return err
			}

			days := pricing.DaysBetween(now, in.DueDate)
			if days < 0 {
				return ErrDueDateInPast
			}

			fee, err := s.engine.RentalPrice(days, item.Movie.ReleaseDate)
			if err != nil {
				return err
			}

			rows, err := s.inventoryRepo.MarkCheckedOut(tx, item.ID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrAlreadyCheckedOut
			}

			transaction.RentalFeesCharged += fee
			transaction.Items = append(transaction.Items, models.RentalTransactionItem{
				InventoryItemID: item.ID,
				DueDate:         pricing.DateOnly(in.DueDate),
			})
		}

		transaction.TotalAmountCharged = transaction.RentalFeesCharged
		if err := s.customerRepo.CreateTransaction(tx, transaction); err != nil {
			return err
		}
		created = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("rental transaction added",
		"customer_id", customerID,
		"transaction_id", created.ID,
		"items", len(created.Items),
		"rental_fees_cents", created.RentalFeesCharged,
	)
	return created, nil
}

// GetOverdueItems returns the latest transaction's items that are past due
// and not yet returned. A customer with no transactions has no overdue items.
func (s *rentalService) GetOverdueItems(customerID int64) ([]models.RentalTransactionItem, error) {
	latest, err := s.latestTransaction(customerID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return []models.RentalTransactionItem{}, nil
	}

	today := pricing.DateOnly(s.now())
	overdue := []models.RentalTransactionItem{}
	for _, item := range latest.Items {
		if !item.Returned() && pricing.DateOnly(item.DueDate).Before(today) {
			overdue = append(overdue, item)
		}
	}
	return overdue, nil
}

// GetOutstandingLateFees accrues late fees over the latest transaction only:
// for each item kept past its due date, the fee day rate applies from the due
// date to the return date, or to today while the item is still out. Fees
// already recorded as paid on the transaction are subtracted.
func (s *rentalService) GetOutstandingLateFees(customerID int64) (int64, error) {
	latest, err := s.latestTransaction(customerID)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, nil
	}

	accrued, err := s.accruedLateFees(latest)
	if err != nil {
		return 0, err
	}

	if latest.LateFeesPaid {
		accrued -= latest.LateFeesCharged
		if accrued < 0 {
			accrued = 0
		}
	}
	return accrued, nil
}

// MarkLateFeesPaid settles the latest transaction's late fees: the accrued
// amount is snapshotted into the charged totals and the paid flag set. A
// customer with no transactions is a no-op.
func (s *rentalService) MarkLateFeesPaid(customerID int64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.customerRepo.GetByID(tx, customerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		latest, err := s.customerRepo.LatestTransaction(tx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		accrued, err := s.accruedLateFees(latest)
		if err != nil {
			return err
		}

		latest.LateFeesPaid = true
		latest.LateFeesCharged = accrued
		latest.TotalAmountCharged = latest.RentalFeesCharged + accrued
		return s.customerRepo.SaveTransaction(tx, latest)
	})
	if err != nil {
		return err
	}

	s.log.Info("late fees marked paid", "customer_id", customerID)
	return nil
}

// MarkReturned records the return date on a line item of the latest
// transaction and checks the copy back into inventory, atomically. Returning
// an already-returned item is a no-op; an item outside the latest transaction
// is rejected.
func (s *rentalService) MarkReturned(customerID, itemID int64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.customerRepo.GetByID(tx, customerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		latest, err := s.customerRepo.LatestTransaction(tx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var found *models.RentalTransactionItem
		for i := range latest.Items {
			if latest.Items[i].ID == itemID {
				found = &latest.Items[i]
				break
			}
		}
		if found == nil {
			return ErrItemNotInTransaction
		}

		rows, err := s.customerRepo.MarkItemReturned(tx, itemID, s.now())
		if err != nil {
			return err
		}
		if rows == 0 {
			// Already returned; the copy is back in stock.
			return nil
		}

		if _, err := s.inventoryRepo.MarkCheckedIn(tx, found.InventoryItemID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("rental item returned", "customer_id", customerID, "item_id", itemID)
	return nil
}

// latestTransaction validates the customer and loads their latest transaction
// with items and movies; nil means the customer has none.
func (s *rentalService) latestTransaction(customerID int64) (*models.RentalTransaction, error) {
	if _, err := s.customerRepo.GetByID(nil, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	latest, err := s.customerRepo.LatestTransaction(nil, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return latest, nil
}

func (s *rentalService) accruedLateFees(transaction *models.RentalTransaction) (int64, error) {
	today := pricing.DateOnly(s.now())

	var total int64
	for _, item := range transaction.Items {
		end := today
		if item.Returned() {
			end = pricing.DateOnly(*item.DateReturned)
		}
		daysLate := pricing.DaysBetween(item.DueDate, end)
		if daysLate <= 0 {
			continue
		}
		fee, err := s.engine.FeePrice(daysLate, item.InventoryItem.Movie.ReleaseDate)
		if err != nil {
			return 0, err
		}
		total += fee
	}
	return total, nil
}
