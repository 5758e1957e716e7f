package favorites

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/services"
	"github.com/desertthunder/niliflix/internal/session"
	"github.com/desertthunder/niliflix/internal/shared"
)

// State is the lifecycle state of a [Controller].
type State int

const (
	Uninitialized State = iota
	Loaded
	Mutating
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Mutating:
		return "mutating"
	default:
		return "uninitialized"
	}
}

// subscriberBuffer is the channel capacity handed to each subscriber.
const subscriberBuffer = 16

// Controller owns the favorites set of the current user.
type Controller struct {
	catalog services.Catalog
	session session.Reader
	logger  *log.Logger

	mu          sync.Mutex
	loaded      bool
	loading     bool // implicit load in flight
	username    string
	set         map[string]struct{}
	pending     map[string]*pendingToggle
	generation  uint64
	subscribers map[int]chan Event
	nextSub     int
}

// pendingToggle is a toggle awaiting the server.
type pendingToggle struct {
	target bool // membership the toggle aims for
	before bool // last server-confirmed membership, restored on failure
}

// New creates an uninitialized controller.
//
// The session reader supplies the user for implicit loads and may be nil.
func New(catalog services.Catalog, sess session.Reader, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Controller{
		catalog:     catalog,
		session:     sess,
		logger:      shared.WithLogger(logger, "component", "favorites"),
		set:         make(map[string]struct{}),
		pending:     make(map[string]*pendingToggle),
		subscribers: make(map[int]chan Event),
	}
}

// Load fetches the profile of username and seeds the set from its favorite ids.
// An empty username loads the session user.
//
// Loading again with no intervening mutation yields the same set.
func (c *Controller) Load(ctx context.Context, username string) error {
	if username == "" {
		username = c.sessionUser()
	}
	if username == "" {
		return fmt.Errorf("%w: no signed-in user to load favorites for", shared.ErrUnauthenticated)
	}

	c.mu.Lock()
	if c.username != "" && c.username != username {
		c.generation++
		clear(c.pending)
	}
	gen := c.generation
	c.mu.Unlock()

	user, err := c.catalog.GetUser(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("discarding stale load", "user", username)
		return nil
	}

	c.username = username
	c.loaded = true
	c.replace(user.FavoriteMovies)
	c.publish(EventLoaded, "", nil)

	c.logger.Debug("favorites loaded", "user", username, "count", len(c.set))
	return nil
}

// IsFavorite reports whether movieID is in the set. It never performs I/O.
//
// While Uninitialized it returns false and starts a single background load for the session user.
func (c *Controller) IsFavorite(movieID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		if !c.loading && c.sessionUser() != "" {
			c.loading = true
			go c.implicitLoad()
		}
		return false
	}

	_, ok := c.set[movieID]
	return ok
}

func (c *Controller) implicitLoad() {
	err := c.Load(context.Background(), "")

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("implicit favorites load failed", "error", err)
	}
}

// Toggle flips the membership of movieID and returns the membership after the call resolves.
//
// The change is visible to [Controller.IsFavorite] and subscribers before the server answers.
// On failure the previous membership is restored and returned with the error.
func (c *Controller) Toggle(ctx context.Context, movieID string) (bool, error) {
	if movieID == "" {
		return false, fmt.Errorf("%w: movie id is required", shared.ErrInvalidArgument)
	}

	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if !loaded {
		if err := c.Load(ctx, ""); err != nil {
			return false, err
		}
	}

	c.mu.Lock()
	_, was := c.set[movieID]
	if _, busy := c.pending[movieID]; busy {
		c.mu.Unlock()
		return was, fmt.Errorf("%w: movie %s", shared.ErrOperationInProgress, movieID)
	}

	target := !was
	c.pending[movieID] = &pendingToggle{target: target, before: was}
	c.apply(movieID, target)
	gen, username := c.generation, c.username
	c.publish(EventApplied, movieID, nil)
	c.mu.Unlock()

	var (
		user *models.User
		err  error
	)
	if target {
		user, err = c.catalog.AddFavorite(ctx, username, movieID)
	} else {
		user, err = c.catalog.RemoveFavorite(ctx, username, movieID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("discarding stale toggle", "movie", movieID, "error", err)
		if err != nil {
			return was, err
		}
		return slices.Contains(user.FavoriteMovies, movieID), nil
	}

	before := c.pending[movieID].before
	delete(c.pending, movieID)

	if err != nil {
		c.apply(movieID, before)
		c.publish(EventRolledBack, movieID, err)
		c.logger.Warn("favorite toggle rolled back", "movie", movieID, "error", err)
		return before, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	c.replace(user.FavoriteMovies)
	c.publish(EventConfirmed, movieID, nil)

	_, member := c.set[movieID]
	return member, nil
}

// Reconcile overwrites the set with the server's ids for username.
// Optimistic changes are not re-applied; the server wins. A pending toggle that later fails
// rolls back to the membership reconciled here.
func (c *Controller) Reconcile(username string, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.username != "" && c.username != username {
		c.generation++
		clear(c.pending)
	}

	c.username = username
	c.loaded = true
	c.confirm(ids)
	c.publish(EventReconciled, "", nil)
}

// Reset returns the controller to Uninitialized. Results of calls still in flight are discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.loaded = false
	c.username = ""
	clear(c.set)
	clear(c.pending)
	c.publish(EventReset, "", nil)
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// state derives the lifecycle state. Callers hold mu.
func (c *Controller) state() State {
	switch {
	case !c.loaded:
		return Uninitialized
	case len(c.pending) > 0:
		return Mutating
	default:
		return Loaded
	}
}

// Username returns the user whose favorites are loaded, or "" when Uninitialized.
func (c *Controller) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// IsPending reports whether a toggle of movieID awaits the server.
func (c *Controller) IsPending(movieID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[movieID]
	return ok
}

// Favorites returns a sorted snapshot of the set.
func (c *Controller) Favorites() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// FavoriteMovies filters movies down to the favorites set, keeping catalog order.
func (c *Controller) FavoriteMovies(movies []models.Movie) []models.Movie {
	c.mu.Lock()
	defer c.mu.Unlock()

	favorites := make([]models.Movie, 0, len(c.set))
	for _, m := range movies {
		if _, ok := c.set[m.ID]; ok {
			favorites = append(favorites, m)
		}
	}
	return favorites
}

// replace sets the membership to ids, then re-applies pending toggles. Callers hold mu.
func (c *Controller) replace(ids []string) {
	c.confirm(ids)
	for id, p := range c.pending {
		c.apply(id, p.target)
	}
}

// confirm sets the membership to the server's ids and makes them the rollback baseline of pending toggles.
// Callers hold mu.
func (c *Controller) confirm(ids []string) {
	clear(c.set)
	for _, id := range ids {
		c.set[id] = struct{}{}
	}
	for id, p := range c.pending {
		_, p.before = c.set[id]
	}
}

// apply sets the membership of one id. Callers hold mu.
func (c *Controller) apply(movieID string, member bool) {
	if member {
		c.set[movieID] = struct{}{}
	} else {
		delete(c.set, movieID)
	}
}

// snapshot returns the set as a sorted slice. Callers hold mu.
func (c *Controller) snapshot() []string {
	ids := make([]string, 0, len(c.set))
	for id := range c.set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *Controller) sessionUser() string {
	if c.session == nil {
		return ""
	}
	current := c.session.Current()
	if !current.Authenticated() {
		return ""
	}
	return current.UserID
}
