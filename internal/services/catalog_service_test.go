package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierental/internal/models"
)

func TestCreateMovieWithGenre(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateGenre("Comedy")
	require.NoError(t, err)

	movie, err := env.catalog.CreateMovie(MovieInput{
		Title:       "The Grand Budapest Hotel",
		Description: "A concierge and his lobby boy",
		ReleaseDate: time.Date(2014, 3, 28, 0, 0, 0, 0, time.UTC),
		Rating:      models.MovieRatingR,
		Genre:       "COMEDY", // resolved case-insensitively
	})
	require.NoError(t, err)
	require.NotNil(t, movie.GenreID)
	assert.Equal(t, "Comedy", movie.Genre.Name)
}

func TestCreateMovieUnknownGenre(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateMovie(MovieInput{
		Title:       "Alien",
		Description: "In space no one can hear you scream",
		ReleaseDate: time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC),
		Rating:      models.MovieRatingR,
		Genre:       "Horror",
	})
	assert.ErrorIs(t, err, ErrGenreNotFound)
}

func TestCreateMovieInvalidRating(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateMovie(MovieInput{
		Title:       "Alien",
		Description: "In space no one can hear you scream",
		ReleaseDate: time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC),
		Rating:      models.MovieRating("PG-13"),
	})
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestDuplicateMovieDetectionIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)

	release := time.Date(2018, 6, 1, 0, 0, 0, 0, time.UTC)
	env.createMovie(t, "MATRIX", release)

	_, err := env.catalog.CreateMovie(MovieInput{
		Title:       "Matrix",
		Description: "different description, same movie",
		ReleaseDate: release,
		Rating:      models.MovieRatingR,
	})
	assert.ErrorIs(t, err, ErrDuplicateMovie)

	// Same title on a different date is a different movie.
	_, err = env.catalog.CreateMovie(MovieInput{
		Title:       "Matrix",
		Description: "re-release",
		ReleaseDate: release.AddDate(1, 0, 0),
		Rating:      models.MovieRatingR,
	})
	assert.NoError(t, err)
}

func TestDuplicateCheckIgnoresTimeOfDay(t *testing.T) {
	env := newTestEnv(t)

	env.createMovie(t, "Heat", time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC))

	exists, err := env.catalog.MovieExists("HEAT", time.Date(1995, 12, 15, 18, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGenreByNameCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.catalog.CreateGenre("Comedy")
	require.NoError(t, err)

	genre, err := env.catalog.GenreByName("comedy")
	require.NoError(t, err)
	assert.Equal(t, created.ID, genre.ID)

	genre, err = env.catalog.GenreByName("COMEDY")
	require.NoError(t, err)
	assert.Equal(t, created.ID, genre.ID)

	_, err = env.catalog.GenreByName("Drama")
	assert.ErrorIs(t, err, ErrGenreNotFound)
}

func TestCreateGenreDuplicate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateGenre("Sci-Fi")
	require.NoError(t, err)

	_, err = env.catalog.CreateGenre("sci-fi")
	assert.ErrorIs(t, err, ErrDuplicateGenre)
}

func TestReplaceMovie(t *testing.T) {
	env := newTestEnv(t)

	movie := env.createMovie(t, "Blade Runer", time.Date(1982, 6, 25, 0, 0, 0, 0, time.UTC))

	updated, err := env.catalog.ReplaceMovie(movie.ID, MovieInput{
		Title:       "Blade Runner",
		Description: "corrected title",
		ReleaseDate: time.Date(1982, 6, 25, 0, 0, 0, 0, time.UTC),
		Rating:      models.MovieRatingR,
	})
	require.NoError(t, err)
	assert.Equal(t, "Blade Runner", updated.Title)
	assert.Equal(t, movie.ID, updated.ID)
}

func TestReplaceMovieKeepsOwnTitleWithoutConflict(t *testing.T) {
	env := newTestEnv(t)

	movie := env.createMovie(t, "Heat", time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC))

	// Replacing a movie with its own title/date must not trip the duplicate
	// check against itself.
	_, err := env.catalog.ReplaceMovie(movie.ID, MovieInput{
		Title:       "Heat",
		Description: "new description",
		ReleaseDate: time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC),
		Rating:      models.MovieRatingR,
	})
	assert.NoError(t, err)
}

func TestPatchMovie(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateGenre("Thriller")
	require.NoError(t, err)

	movie := env.createMovie(t, "Heat", time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC))

	desc := "Los Angeles heist epic"
	genre := "thriller"
	patched, err := env.catalog.PatchMovie(movie.ID, MoviePatch{
		Description: &desc,
		Genre:       &genre,
	})
	require.NoError(t, err)
	assert.Equal(t, "Heat", patched.Title) // untouched
	assert.Equal(t, desc, patched.Description)
	require.NotNil(t, patched.Genre)
	assert.Equal(t, "Thriller", patched.Genre.Name)

	// Clearing the genre with an explicit empty string.
	empty := ""
	patched, err = env.catalog.PatchMovie(movie.ID, MoviePatch{Genre: &empty})
	require.NoError(t, err)
	assert.Nil(t, patched.GenreID)
}

func TestPatchMovieIntoDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)

	release := time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC)
	env.createMovie(t, "Inception", release)
	other := env.createMovie(t, "Incepcion", release)

	title := "INCEPTION"
	_, err := env.catalog.PatchMovie(other.ID, MoviePatch{Title: &title})
	assert.ErrorIs(t, err, ErrDuplicateMovie)
}

func TestDeleteMovieRestrictedByInventory(t *testing.T) {
	env := newTestEnv(t)

	movie := env.createMovie(t, "Jaws", time.Date(1975, 6, 20, 0, 0, 0, 0, time.UTC))
	env.createItem(t, movie.ID)

	err := env.catalog.DeleteMovie(movie.ID)
	assert.ErrorIs(t, err, ErrMovieInUse)

	// Still present.
	_, err = env.catalog.GetMovie(movie.ID)
	assert.NoError(t, err)
}

func TestDeleteMovieWithoutReferences(t *testing.T) {
	env := newTestEnv(t)

	movie := env.createMovie(t, "Jaws", time.Date(1975, 6, 20, 0, 0, 0, 0, time.UTC))

	require.NoError(t, env.catalog.DeleteMovie(movie.ID))

	_, err := env.catalog.GetMovie(movie.ID)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestGetMovieNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.GetMovie(9999)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}
