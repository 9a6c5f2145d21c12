package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"movierental/internal/config"
	"movierental/internal/models"
	"movierental/internal/pricing"
	"movierental/internal/services"
)

type StoreHandler struct {
	catalog   services.CatalogService
	inventory services.InventoryService
	rental    services.RentalService
	log       *slog.Logger
}

func RegisterRoutes(
	r *gin.Engine,
	catalog services.CatalogService,
	inventory services.InventoryService,
	rental services.RentalService,
	profiles []config.AuthProfile,
	log *slog.Logger,
) {
	h := &StoreHandler{catalog: catalog, inventory: inventory, rental: rental, log: log}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	employee := api.Group("", RequireRole(profiles, models.RoleEmployee))
	manager := api.Group("", RequireRole(profiles, models.RoleManager))

	// Catalog
	employee.GET("/movies", h.listMovies)
	employee.GET("/movies/:id", h.getMovie)
	manager.POST("/movies", h.createMovie)
	manager.PUT("/movies/:id", h.replaceMovie)
	manager.PATCH("/movies/:id", h.patchMovie)
	manager.DELETE("/movies/:id", h.deleteMovie)
	employee.GET("/genres", h.listGenres)
	manager.POST("/genres", h.createGenre)

	// Inventory
	employee.GET("/movies/:id/inventory", h.listAvailableInventory)
	manager.POST("/inventory", h.addInventoryItem)
	employee.POST("/inventory/:id/checkout", h.checkOutItem)
	employee.POST("/inventory/:id/checkin", h.checkInItem)

	// Customers and rentals
	employee.POST("/customers", h.createCustomer)
	employee.GET("/customers", h.listCustomers)
	employee.GET("/customers/:id", h.getCustomer)
	employee.PUT("/customers/:id", h.updateCustomer)
	manager.DELETE("/customers/:id", h.deleteCustomer)
	employee.POST("/customers/:id/transactions", h.addTransaction)
	employee.GET("/customers/:id/overdue-items", h.getOverdueItems)
	employee.GET("/customers/:id/late-fees", h.getOutstandingLateFees)
	employee.POST("/customers/:id/late-fees/pay", h.markLateFeesPaid)
	employee.POST("/customers/:id/returns/:itemId", h.markReturned)
}

// catalog handlers

type movieRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	ReleaseDate time.Time `json:"release_date" binding:"required"`
	Rating      string    `json:"rating" binding:"required"`
	Genre       string    `json:"genre"`
}

func (h *StoreHandler) createMovie(c *gin.Context) {
	var req movieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	movie, err := h.catalog.CreateMovie(services.MovieInput{
		Title:       req.Title,
		Description: req.Description,
		ReleaseDate: req.ReleaseDate,
		Rating:      models.MovieRating(req.Rating),
		Genre:       req.Genre,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}

func (h *StoreHandler) listMovies(c *gin.Context) {
	movies, err := h.catalog.ListMovies()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

func (h *StoreHandler) getMovie(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	movie, err := h.catalog.GetMovie(id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *StoreHandler) replaceMovie(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req movieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	movie, err := h.catalog.ReplaceMovie(id, services.MovieInput{
		Title:       req.Title,
		Description: req.Description,
		ReleaseDate: req.ReleaseDate,
		Rating:      models.MovieRating(req.Rating),
		Genre:       req.Genre,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

type moviePatchRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ReleaseDate *time.Time `json:"release_date"`
	Rating      *string    `json:"rating"`
	Genre       *string    `json:"genre"`
}

func (h *StoreHandler) patchMovie(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req moviePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := services.MoviePatch{
		Title:       req.Title,
		Description: req.Description,
		ReleaseDate: req.ReleaseDate,
		Genre:       req.Genre,
	}
	if req.Rating != nil {
		rating := models.MovieRating(*req.Rating)
		patch.Rating = &rating
	}

	movie, err := h.catalog.PatchMovie(id, patch)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *StoreHandler) deleteMovie(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteMovie(id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type genreRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *StoreHandler) createGenre(c *gin.Context) {
	var req genreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	genre, err := h.catalog.CreateGenre(req.Name)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}

func (h *StoreHandler) listGenres(c *gin.Context) {
	genres, err := h.catalog.ListGenres()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

// inventory handlers

type addInventoryRequest struct {
	MovieID       int64  `json:"movie_id" binding:"required,gt=0"`
	StorageFormat string `json:"storage_format" binding:"required"`
}

func (h *StoreHandler) addInventoryItem(c *gin.Context) {
	var req addInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.inventory.AddItem(req.MovieID, models.StorageFormat(req.StorageFormat))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *StoreHandler) listAvailableInventory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.inventory.ListAvailable(id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *StoreHandler) checkOutItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.inventory.CheckOut(id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "checked out"})
}

func (h *StoreHandler) checkInItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.inventory.CheckIn(id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "checked in"})
}

// customer and rental handlers

type customerRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
}

func (r customerRequest) toModel() *models.Customer {
	return &models.Customer{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
		Address2:    r.Address2,
		City:        r.City,
		State:       r.State,
		Zip:         r.Zip,
	}
}

func (h *StoreHandler) createCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, err := h.rental.CreateCustomer(req.toModel())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *StoreHandler) listCustomers(c *gin.Context) {
	customers, err := h.rental.ListCustomers()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *StoreHandler) getCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.rental.GetCustomer(id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *StoreHandler) updateCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer, err := h.rental.UpdateCustomer(id, req.toModel())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *StoreHandler) deleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.rental.DeleteCustomer(id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transactionItemRequest struct {
	InventoryItemID int64     `json:"inventory_item_id" binding:"required,gt=0"`
	DueDate         time.Time `json:"due_date" binding:"required"`
}

type addTransactionRequest struct {
	Items []transactionItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (h *StoreHandler) addTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]services.NewRentalItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.NewRentalItem{
			InventoryItemID: it.InventoryItemID,
			DueDate:         it.DueDate,
		})
	}

	transaction, err := h.rental.AddTransaction(id, items)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *StoreHandler) getOverdueItems(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.rental.GetOverdueItems(id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *StoreHandler) getOutstandingLateFees(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	fees, err := h.rental.GetOutstandingLateFees(id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outstanding_late_fees_cents": fees})
}

func (h *StoreHandler) markLateFeesPaid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.rental.MarkLateFeesPaid(id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "late fees marked paid"})
}

func (h *StoreHandler) markReturned(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	if err := h.rental.MarkReturned(id, itemID); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "returned"})
}

// helpers

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// writeServiceError maps service sentinels onto HTTP statuses: not-found
// 404, conflicts 409, semantic validation failures 422, everything else 500.
func (h *StoreHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMovieNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrInventoryItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrDuplicateMovie),
		errors.Is(err, services.ErrDuplicateGenre),
		errors.Is(err, services.ErrAlreadyCheckedOut),
		errors.Is(err, services.ErrMovieInUse),
		errors.Is(err, services.ErrCustomerHasTransactions):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrGenreNotFound),
		errors.Is(err, services.ErrInvalidRating),
		errors.Is(err, services.ErrInvalidStorageFormat),
		errors.Is(err, services.ErrNoRentalItems),
		errors.Is(err, services.ErrDueDateInPast),
		errors.Is(err, services.ErrItemNotInTransaction),
		errors.Is(err, pricing.ErrNegativeDays):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	default:
		h.log.Error("internal error", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
