package testing

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/shared"
)

// FakeCatalog is an in-memory test double for services.Catalog.
//
// Hook, when set, runs before every operation with the operation name and its key arguments.
// A non-nil error from Hook is returned as the operation's result; a Hook may also block to hold a call in flight.
type FakeCatalog struct {
	Hook func(ctx context.Context, op string, args ...string) error
	// Token is returned by Login; it defaults to "token-<username>".
	Token string

	mu        sync.Mutex
	movies    []models.Movie
	users     map[string]*models.User
	passwords map[string]string
	calls     map[string]int
}

func NewFakeCatalog(movies ...models.Movie) *FakeCatalog {
	return &FakeCatalog{
		movies:    movies,
		users:     make(map[string]*models.User),
		passwords: make(map[string]string),
		calls:     make(map[string]int),
	}
}

// AddUser stores a user that can log in with password.
func (f *FakeCatalog) AddUser(user models.User, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := user
	u.FavoriteMovies = slices.Clone(user.FavoriteMovies)
	f.users[user.Username] = &u
	f.passwords[user.Username] = password
}

// User returns a copy of the stored user.
func (f *FakeCatalog) User(username string) (models.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return models.User{}, false
	}
	return copyUser(u), true
}

// Calls returns how many times op was invoked.
func (f *FakeCatalog) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeCatalog) enter(ctx context.Context, op string, args ...string) error {
	f.mu.Lock()
	f.calls[op]++
	hook := f.Hook
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, op, args...)
	}
	return nil
}

func (f *FakeCatalog) Register(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if err := f.enter(ctx, "Register", creds.Username); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[creds.Username]; ok {
		return nil, fmt.Errorf("%w: %s already exists", shared.ErrValidationFailed, creds.Username)
	}
	u := &models.User{Username: creds.Username, Email: creds.Email, Birthday: creds.Birthday, FavoriteMovies: models.FavoriteIDs{}}
	f.users[creds.Username] = u
	f.passwords[creds.Username] = creds.Password
	result := copyUser(u)
	return &result, nil
}

func (f *FakeCatalog) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	if err := f.enter(ctx, "Login", creds.Username); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[creds.Username]
	if !ok || f.passwords[creds.Username] != creds.Password {
		return nil, shared.ErrAuthenticationFailed
	}
	token := f.Token
	if token == "" {
		token = "token-" + u.Username
	}
	return &models.LoginResult{Token: token, User: copyUser(u)}, nil
}

func (f *FakeCatalog) ListMovies(ctx context.Context) ([]models.Movie, error) {
	if err := f.enter(ctx, "ListMovies"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.movies), nil
}

func (f *FakeCatalog) GetMovie(ctx context.Context, title string) (*models.Movie, error) {
	if err := f.enter(ctx, "GetMovie", title); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.movies {
		if m.Title == title {
			movie := m
			return &movie, nil
		}
	}
	return nil, fmt.Errorf("%w: movie %q", shared.ErrNotFound, title)
}

func (f *FakeCatalog) GetDirector(ctx context.Context, name string) (*models.Director, error) {
	if err := f.enter(ctx, "GetDirector", name); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.movies {
		if m.Director.Name == name {
			director := m.Director
			return &director, nil
		}
	}
	return nil, fmt.Errorf("%w: director %q", shared.ErrNotFound, name)
}

func (f *FakeCatalog) GetGenre(ctx context.Context, name string) (*models.Genre, error) {
	if err := f.enter(ctx, "GetGenre", name); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.movies {
		if m.Genre.Name == name {
			genre := m.Genre
			return &genre, nil
		}
	}
	return nil, fmt.Errorf("%w: genre %q", shared.ErrNotFound, name)
}

func (f *FakeCatalog) GetUser(ctx context.Context, username string) (*models.User, error) {
	if err := f.enter(ctx, "GetUser", username); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", shared.ErrNotFound, username)
	}
	result := copyUser(u)
	return &result, nil
}

func (f *FakeCatalog) UpdateUser(ctx context.Context, username string, edits models.ProfileEdits) (*models.User, error) {
	if err := f.enter(ctx, "UpdateUser", username); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", shared.ErrNotFound, username)
	}
	if _, taken := f.users[edits.Username]; taken && edits.Username != username {
		return nil, fmt.Errorf("%w: %s already exists", shared.ErrValidationFailed, edits.Username)
	}

	delete(f.users, username)
	u.Username = edits.Username
	u.Email = edits.Email
	u.Birthday = edits.Birthday
	f.users[u.Username] = u
	if edits.Password != "" {
		delete(f.passwords, username)
		f.passwords[u.Username] = edits.Password
	} else if username != u.Username {
		f.passwords[u.Username] = f.passwords[username]
		delete(f.passwords, username)
	}

	result := copyUser(u)
	return &result, nil
}

func (f *FakeCatalog) DeleteUser(ctx context.Context, username string) error {
	if err := f.enter(ctx, "DeleteUser", username); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; !ok {
		return fmt.Errorf("%w: user %q", shared.ErrNotFound, username)
	}
	delete(f.users, username)
	delete(f.passwords, username)
	return nil
}

func (f *FakeCatalog) AddFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	if err := f.enter(ctx, "AddFavorite", username, movieID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", shared.ErrNotFound, username)
	}
	if !slices.Contains(u.FavoriteMovies, movieID) {
		u.FavoriteMovies = append(u.FavoriteMovies, movieID)
	}
	result := copyUser(u)
	return &result, nil
}

func (f *FakeCatalog) RemoveFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	if err := f.enter(ctx, "RemoveFavorite", username, movieID); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", shared.ErrNotFound, username)
	}
	u.FavoriteMovies = slices.DeleteFunc(u.FavoriteMovies, func(id string) bool { return id == movieID })
	result := copyUser(u)
	return &result, nil
}

func copyUser(u *models.User) models.User {
	c := *u
	c.FavoriteMovies = slices.Clone(u.FavoriteMovies)
	if c.FavoriteMovies == nil {
		c.FavoriteMovies = models.FavoriteIDs{}
	}
	return c
}
