package services

import (
	"context"

	"github.com/desertthunder/niliflix/internal/models"
)

// DefaultBaseURL is the hosted catalog API.
const DefaultBaseURL = "https://niliflix.herokuapp.com"

// Catalog defines the remote operations of the movie catalog API.
//
// Protected operations require a session; see [CatalogClient] for the error mapping.
type Catalog interface {
	// Register creates an account. No session is required.
	Register(ctx context.Context, creds models.Credentials) (*models.User, error)

	// Login exchanges credentials for a token and the user record.
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)

	// ListMovies returns the full catalog in server order.
	ListMovies(ctx context.Context) ([]models.Movie, error)

	GetMovie(ctx context.Context, title string) (*models.Movie, error)
	GetDirector(ctx context.Context, name string) (*models.Director, error)
	GetGenre(ctx context.Context, name string) (*models.Genre, error)

	// GetUser returns the profile, including favorite movie ids.
	GetUser(ctx context.Context, username string) (*models.User, error)

	// UpdateUser replaces the profile and returns the stored record.
	UpdateUser(ctx context.Context, username string, edits models.ProfileEdits) (*models.User, error)

	DeleteUser(ctx context.Context, username string) error

	// AddFavorite and RemoveFavorite return the server's echo of the user record.
	AddFavorite(ctx context.Context, username, movieID string) (*models.User, error)
	RemoveFavorite(ctx context.Context, username, movieID string) (*models.User, error)
}
