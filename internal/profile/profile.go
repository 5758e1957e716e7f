// Package profile implements the profile [Controller] and the account flows around it.
//
// Favorites membership is never edited here. Profile updates and logins hand the server's
// favorite ids to the favorites controller, which stays the single owner of the set.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/services"
	"github.com/desertthunder/niliflix/internal/session"
	"github.com/desertthunder/niliflix/internal/shared"
)

// Sessions is the part of the session store the controller writes to.
type Sessions interface {
	session.Reader
	SetSession(token, userID string) error
	Clear() error
}

// Favorites receives server-authoritative favorites state.
type Favorites interface {
	Reconcile(username string, ids []string)
	Reset()
}

var _ Sessions = (*session.Store)(nil)

// Controller fetches, updates and deletes the user profile.
type Controller struct {
	catalog   services.Catalog
	sessions  Sessions
	favorites Favorites
	logger    *log.Logger

	mu     sync.Mutex
	cached *models.User
}

// New creates a profile controller.
func New(catalog services.Catalog, sessions Sessions, favorites Favorites, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Controller{
		catalog:   catalog,
		sessions:  sessions,
		favorites: favorites,
		logger:    shared.WithLogger(logger, "component", "profile"),
	}
}

// Load fetches the profile of username, or of the session user when username is empty, and caches it.
func (c *Controller) Load(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		username = c.sessions.Current().UserID
	}
	if username == "" {
		return nil, fmt.Errorf("%w: no signed-in user", shared.ErrUnauthenticated)
	}

	user, err := c.catalog.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	c.cache(user)
	return user, nil
}

// Profile returns the last fetched profile.
func (c *Controller) Profile() (models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached == nil {
		return models.User{}, false
	}
	return *c.cached, true
}

// Update sends edits as a full replacement of the profile of username.
//
// When the username changed the session is rewritten, and the favorites set is reconciled against the returned ids.
// A session storage failure is returned together with the updated profile.
func (c *Controller) Update(ctx context.Context, username string, edits models.ProfileEdits) (*models.User, error) {
	if err := edits.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidationFailed, err)
	}

	user, err := c.catalog.UpdateUser(ctx, username, edits)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	c.cache(user)

	var storeErr error
	if current := c.sessions.Current(); user.Username != username && current.UserID == username {
		c.logger.Info("username changed", "from", username, "to", user.Username)
		storeErr = c.sessions.SetSession(current.Token, user.Username)
	}

	c.favorites.Reconcile(user.Username, user.FavoriteMovies)
	return user, storeErr
}

// DeleteAccount deletes the account on the server, then signs out.
//
// If the server delete fails the session is left intact.
func (c *Controller) DeleteAccount(ctx context.Context, username string) error {
	if err := c.catalog.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	c.logger.Info("account deleted", "user", username)
	return c.signOut()
}

// Register creates an account. It does not sign in.
func (c *Controller) Register(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrValidationFailed)
	}
	if creds.Email != "" && !strings.Contains(creds.Email, "@") {
		return nil, fmt.Errorf("%w: email %q is not valid", shared.ErrValidationFailed, creds.Email)
	}

	user, err := c.catalog.Register(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return user, nil
}

// Login exchanges credentials for a session, then seeds the profile cache and favorites from the login echo.
//
// A session storage failure is returned together with the user; the session then lasts for this run only.
func (c *Controller) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrAuthenticationFailed)
	}

	result, err := c.catalog.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	user := result.User
	storeErr := c.sessions.SetSession(result.Token, user.Username)
	if storeErr != nil && !errors.Is(storeErr, shared.ErrStorageUnavailable) {
		return nil, storeErr
	}

	c.cache(&user)
	c.favorites.Reconcile(user.Username, user.FavoriteMovies)

	c.logger.Info("logged in", "user", user.Username)
	return &user, storeErr
}

// Logout clears the session, the favorites set and the cached profile.
func (c *Controller) Logout() error {
	return c.signOut()
}

func (c *Controller) signOut() error {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()

	c.favorites.Reset()
	return c.sessions.Clear()
}

func (c *Controller) cache(user *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u := *user
	u.FavoriteMovies = append(models.FavoriteIDs(nil), user.FavoriteMovies...)
	c.cached = &u
}
