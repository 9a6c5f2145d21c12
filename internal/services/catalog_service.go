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
	// ErrMovieNotFound is returned when the requested movie does not exist.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrGenreNotFound is returned when a supplied genre name does not
	// resolve to a known genre.
	ErrGenreNotFound = errors.New("genre not found")

	// ErrDuplicateMovie is returned when another movie already has the same
	// title and release date.
	ErrDuplicateMovie = errors.New("a movie with this title and release date already exists")

	// ErrDuplicateGenre is returned when a genre with the same name already
	// exists.
	ErrDuplicateGenre = errors.New("genre already exists")

	// ErrInvalidRating is returned when a rating is not one of the MPAA
	// ratings.
	ErrInvalidRating = errors.New("invalid MPAA rating")

	// ErrMovieInUse is returned when a movie cannot be deleted because
	// inventory items reference it.
	ErrMovieInUse = errors.New("movie is referenced by inventory items")
)

// MovieInput carries the fields for creating or replacing a movie.
type MovieInput struct {
	Title       string
	Description string
	ReleaseDate time.Time
	Rating      models.MovieRating
	Genre       string // optional genre name, resolved case-insensitively
}

// MoviePatch carries a partial movie update; nil fields are left unchanged.
type MoviePatch struct {
	Title       *string
	Description *string
	ReleaseDate *time.Time
	Rating      *models.MovieRating
	Genre       *string // empty string clears the genre
}

// CatalogService manages the movie and genre catalog.
type CatalogService interface {
	CreateMovie(in MovieInput) (*models.Movie, error)
	ListMovies() ([]models.Movie, error)
	GetMovie(id int64) (*models.Movie, error)
	ReplaceMovie(id int64, in MovieInput) (*models.Movie, error)
	PatchMovie(id int64, patch MoviePatch) (*models.Movie, error)
	DeleteMovie(id int64) error

	CreateGenre(name string) (*models.MovieGenre, error)
	ListGenres() ([]models.MovieGenre, error)
	GenreByName(name string) (*models.MovieGenre, error)
	MovieExists(title string, releaseDate time.Time) (bool, error)
}

type catalogService struct {
	db            *gorm.DB
	movieRepo     repositories.MovieRepository
	genreRepo     repositories.GenreRepository
	inventoryRepo repositories.InventoryRepository
	log           *slog.Logger
}

func NewCatalogService(
	db *gorm.DB,
	movieRepo repositories.MovieRepository,
	genreRepo repositories.GenreRepository,
	inventoryRepo repositories.InventoryRepository,
	log *slog.Logger,
) CatalogService {
	return &catalogService{
		db:            db,
		movieRepo:     movieRepo,
		genreRepo:     genreRepo,
		inventoryRepo: inventoryRepo,
		log:           log,
	}
}

// CreateMovie validates the rating and genre, rejects duplicate
// title/release-date pairs, and stores the movie.
func (s *catalogService) CreateMovie(in MovieInput) (*models.Movie, error) {
	var created *models.Movie

	err := s.db.Transaction(func(tx *gorm.DB) error {
		movie, err := s.buildMovie(tx, in, 0)
		if err != nil {
			return err
		}
		if err := s.movieRepo.Create(tx, movie); err != nil {
			return err
		}
		created = movie
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("movie created", "movie_id", created.ID, "title", created.Title)
	return created, nil
}

func (s *catalogService) ListMovies() ([]models.Movie, error) {
	return s.movieRepo.List(nil)
}

func (s *catalogService) GetMovie(id int64) (*models.Movie, error) {
	movie, err := s.movieRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return movie, nil
}

// ReplaceMovie overwrites every field of an existing movie.
func (s *catalogService) ReplaceMovie(id int64, in MovieInput) (*models.Movie, error) {
	var updated *models.Movie

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.movieRepo.GetByID(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMovieNotFound
			}
			return err
		}

		movie, err := s.buildMovie(tx, in, id)
		if err != nil {
			return err
		}
		movie.ID = id
		if err := s.movieRepo.Save(tx, movie); err != nil {
			return err
		}
		updated = movie
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("movie replaced", "movie_id", id)
	return updated, nil
}

// PatchMovie applies a partial update; unset fields keep their stored values.
func (s *catalogService) PatchMovie(id int64, patch MoviePatch) (*models.Movie, error) {
	var updated *models.Movie

	err := s.db.Transaction(func(tx *gorm.DB) error {
		movie, err := s.movieRepo.GetByID(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMovieNotFound
			}
			return err
		}

		if patch.Title != nil {
			movie.Title = *patch.Title
		}
		if patch.Description != nil {
			movie.Description = *patch.Description
		}
		if patch.ReleaseDate != nil {
			movie.ReleaseDate = pricing.DateOnly(*patch.ReleaseDate)
		}
		if patch.Rating != nil {
			if !patch.Rating.Valid() {
				return ErrInvalidRating
			}
			movie.Rating = *patch.Rating
		}
		if patch.Genre != nil {
			if *patch.Genre == "" {
				movie.GenreID = nil
				movie.Genre = nil
			} else {
				genre, err := s.genreRepo.GetByName(tx, *patch.Genre)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return ErrGenreNotFound
					}
					return err
				}
				movie.GenreID = &genre.ID
				movie.Genre = genre
			}
		}

		dup, err := s.movieRepo.Exists(tx, movie.Title, movie.ReleaseDate, id)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateMovie
		}

		if err := s.movieRepo.Save(tx, movie); err != nil {
			return err
		}
		updated = movie
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("movie patched", "movie_id", id)
	return updated, nil
}

// DeleteMovie removes a movie unless inventory items still reference it.
func (s *catalogService) DeleteMovie(id int64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.movieRepo.GetByID(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMovieNotFound
			}
			return err
		}

		refs, err := s.inventoryRepo.CountByMovie(tx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrMovieInUse
		}

		return s.movieRepo.Delete(tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("movie deleted", "movie_id", id)
	return nil
}

func (s *catalogService) CreateGenre(name string) (*models.MovieGenre, error) {
	var created *models.MovieGenre

	err := s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.genreRepo.GetByName(tx, name)
		if err == nil {
			return ErrDuplicateGenre
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		genre := &models.MovieGenre{Name: name}
		if err := s.genreRepo.Create(tx, genre); err != nil {
			return err
		}
		created = genre
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("genre created", "genre_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *catalogService) ListGenres() ([]models.MovieGenre, error) {
	return s.genreRepo.List(nil)
}

func (s *catalogService) GenreByName(name string) (*models.MovieGenre, error) {
	genre, err := s.genreRepo.GetByName(nil, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return genre, nil
}

func (s *catalogService) MovieExists(title string, releaseDate time.Time) (bool, error) {
	return s.movieRepo.Exists(nil, title, pricing.DateOnly(releaseDate), 0)
}

// buildMovie validates the input and assembles a movie entity. excludeID is
// forwarded to the duplicate check so replace can skip the movie itself.
func (s *catalogService) buildMovie(tx *gorm.DB, in MovieInput, excludeID int64) (*models.Movie, error) {
	if !in.Rating.Valid() {
		return nil, ErrInvalidRating
	}

	movie := &models.Movie{
		Title:       in.Title,
		Description: in.Description,
		ReleaseDate: pricing.DateOnly(in.ReleaseDate),
		Rating:      in.Rating,
	}

	if in.Genre != "" {
		genre, err := s.genreRepo.GetByName(tx, in.Genre)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGenreNotFound
			}
			return nil, err
		}
		movie.GenreID = &genre.ID
		movie.Genre = genre
	}

	dup, err := s.movieRepo.Exists(tx, movie.Title, movie.ReleaseDate, excludeID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateMovie
	}

	return movie, nil
}
