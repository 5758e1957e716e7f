package favorites

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/services"
	"github.com/desertthunder/niliflix/internal/shared"
	tu "github.com/desertthunder/niliflix/internal/testing"
)

var _ services.Catalog = (*tu.FakeCatalog)(nil)

var (
	alien = models.Movie{ID: "m1", Title: "Alien"}
	dune  = models.Movie{ID: "m2", Title: "Dune"}
)

var anaSession = tu.StaticSession{Token: "abc", UserID: "ana"}

func newFixture(t *testing.T, favorites ...string) (*Controller, *tu.FakeCatalog) {
	t.Helper()
	catalog := tu.NewFakeCatalog(alien, dune)
	catalog.AddUser(models.User{Username: "ana", FavoriteMovies: favorites}, "x")
	return New(catalog, anaSession, nil), catalog
}

// gate holds matching calls until released.
type gate struct {
	started chan string
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan string, 4), release: make(chan struct{})}
}

func (g *gate) hook(op, movieID string) func(context.Context, string, ...string) error {
	return func(ctx context.Context, gotOp string, args ...string) error {
		if gotOp == op && len(args) == 2 && args[1] == movieID {
			g.started <- movieID
			<-g.release
		}
		return nil
	}
}

func (g *gate) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for call to start")
	}
}

type toggleResult struct {
	member bool
	err    error
}

func toggleAsync(c *Controller, id string) <-chan toggleResult {
	done := make(chan toggleResult, 1)
	go func() {
		member, err := c.Toggle(context.Background(), id)
		done <- toggleResult{member, err}
	}()
	return done
}

func wait(t *testing.T, done <-chan toggleResult) toggleResult {
	t.Helper()
	select {
	case r := <-done:
		return r
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for toggle")
		return toggleResult{}
	}
}

func next(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestLoad(t *testing.T) {
	t.Run("Seeds Set From Profile", func(t *testing.T) {
		c, _ := newFixture(t, "m2")

		if c.State() != Uninitialized {
			t.Fatalf("expected uninitialized, got %s", c.State())
		}
		if err := c.Load(context.Background(), "ana"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.State() != Loaded {
			t.Errorf("expected loaded, got %s", c.State())
		}
		if c.Username() != "ana" {
			t.Errorf("expected username ana, got %s", c.Username())
		}
		if !c.IsFavorite("m2") || c.IsFavorite("m1") {
			t.Errorf("expected {m2}, got %v", c.Favorites())
		}
	})

	t.Run("Is Idempotent", func(t *testing.T) {
		c, _ := newFixture(t, "m1", "m2")

		c.Load(context.Background(), "ana")
		first := c.Favorites()
		c.Load(context.Background(), "ana")
		second := c.Favorites()

		if !slices.Equal(first, second) {
			t.Errorf("expected identical sets, got %v and %v", first, second)
		}
	})

	t.Run("Defaults To Session User", func(t *testing.T) {
		c, _ := newFixture(t, "m1")

		if err := c.Load(context.Background(), ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Username() != "ana" {
			t.Errorf("expected ana, got %s", c.Username())
		}
	})

	t.Run("Without Session", func(t *testing.T) {
		c := New(tu.NewFakeCatalog(), nil, nil)

		if err := c.Load(context.Background(), ""); !errors.Is(err, shared.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("Failure Leaves Uninitialized", func(t *testing.T) {
		c, catalog := newFixture(t)
		catalog.Hook = func(context.Context, string, ...string) error { return shared.ErrServerError }

		if err := c.Load(context.Background(), "ana"); !errors.Is(err, shared.ErrServerError) {
			t.Errorf("expected ErrServerError, got %v", err)
		}
		if c.State() != Uninitialized {
			t.Errorf("expected uninitialized, got %s", c.State())
		}
	})
}

func TestIsFavorite(t *testing.T) {
	t.Run("Implicit Load While Uninitialized", func(t *testing.T) {
		c, catalog := newFixture(t, "m1")
		events, unsubscribe := c.Subscribe()
		defer unsubscribe()

		if c.IsFavorite("m1") {
			t.Fatal("expected false while uninitialized")
		}
		c.IsFavorite("m1")
		c.IsFavorite("m2")

		if ev := next(t, events); ev.Kind != EventLoaded {
			t.Fatalf("expected loaded event, got %s", ev.Kind)
		}
		if !c.IsFavorite("m1") {
			t.Error("expected m1 after implicit load")
		}
		if n := catalog.Calls("GetUser"); n != 1 {
			t.Errorf("expected a single implicit load, got %d", n)
		}
	})

	t.Run("No Implicit Load Without Session", func(t *testing.T) {
		catalog := tu.NewFakeCatalog()
		c := New(catalog, nil, nil)

		c.IsFavorite("m1")
		time.Sleep(10 * time.Millisecond)
		if n := catalog.Calls("GetUser"); n != 0 {
			t.Errorf("expected no load, got %d", n)
		}
	})
}

func TestToggle(t *testing.T) {
	t.Run("Is Its Own Inverse", func(t *testing.T) {
		c, _ := newFixture(t)
		c.Load(context.Background(), "ana")

		member, err := c.Toggle(context.Background(), "m1")
		if err != nil || !member {
			t.Fatalf("expected (true, nil), got (%v, %v)", member, err)
		}
		if !c.IsFavorite("m1") {
			t.Error("expected m1 to be a favorite")
		}

		member, err = c.Toggle(context.Background(), "m1")
		if err != nil || member {
			t.Fatalf("expected (false, nil), got (%v, %v)", member, err)
		}
		if c.IsFavorite("m1") {
			t.Error("expected m1 not to be a favorite")
		}
	})

	t.Run("Applies Optimistically", func(t *testing.T) {
		c, catalog := newFixture(t)
		c.Load(context.Background(), "ana")
		g := newGate()
		catalog.Hook = g.hook("AddFavorite", "m1")

		done := toggleAsync(c, "m1")
		g.waitStarted(t)

		if !c.IsFavorite("m1") {
			t.Error("expected optimistic membership before the server answers")
		}
		if c.State() != Mutating {
			t.Errorf("expected mutating, got %s", c.State())
		}
		if !c.IsPending("m1") {
			t.Error("expected m1 to be pending")
		}

		close(g.release)
		if r := wait(t, done); r.err != nil || !r.member {
			t.Fatalf("expected (true, nil), got (%v, %v)", r.member, r.err)
		}
		if c.State() != Loaded {
			t.Errorf("expected loaded, got %s", c.State())
		}
		if got := c.Favorites(); !slices.Equal(got, []string{"m1"}) {
			t.Errorf("expected [m1], got %v", got)
		}
	})

	t.Run("Rolls Back On Failure", func(t *testing.T) {
		c, catalog := newFixture(t, "m2")
		c.Load(context.Background(), "ana")
		catalog.Hook = func(ctx context.Context, op string, args ...string) error {
			if op == "AddFavorite" || op == "RemoveFavorite" {
				return shared.ErrServerError
			}
			return nil
		}
		events, unsubscribe := c.Subscribe()
		defer unsubscribe()

		for _, id := range []string{"m1", "m2"} {
			before := c.IsFavorite(id)
			member, err := c.Toggle(context.Background(), id)

			if !errors.Is(err, shared.ErrServerError) {
				t.Errorf("expected ErrServerError, got %v", err)
			}
			if member != before || c.IsFavorite(id) != before {
				t.Errorf("expected %s membership to stay %v", id, before)
			}

			if ev := next(t, events); ev.Kind != EventApplied || ev.MovieID != id {
				t.Errorf("expected applied event for %s, got %s %s", id, ev.Kind, ev.MovieID)
			}
			ev := next(t, events)
			if ev.Kind != EventRolledBack || !errors.Is(ev.Err, shared.ErrServerError) {
				t.Errorf("expected rolled back event with error, got %s %v", ev.Kind, ev.Err)
			}
		}

		if c.State() != Loaded {
			t.Errorf("expected loaded, got %s", c.State())
		}
	})

	t.Run("Rejects Concurrent Toggle Of Same Id", func(t *testing.T) {
		c, catalog := newFixture(t)
		c.Load(context.Background(), "ana")
		g := newGate()
		catalog.Hook = g.hook("AddFavorite", "m1")

		done := toggleAsync(c, "m1")
		g.waitStarted(t)

		member, err := c.Toggle(context.Background(), "m1")
		if !errors.Is(err, shared.ErrOperationInProgress) {
			t.Fatalf("expected ErrOperationInProgress, got %v", err)
		}
		if !member {
			t.Error("expected the pending optimistic membership to be reported")
		}

		close(g.release)
		if r := wait(t, done); r.err != nil || !r.member {
			t.Fatalf("expected first toggle to succeed, got (%v, %v)", r.member, r.err)
		}
		if catalog.Calls("AddFavorite") != 1 || catalog.Calls("RemoveFavorite") != 0 {
			t.Error("expected only the first toggle to reach the server")
		}
	})

	t.Run("Server Echo Wins", func(t *testing.T) {
		c, _ := newFixture(t, "m2")
		c.Reconcile("ana", nil)

		member, err := c.Toggle(context.Background(), "m1")
		if err != nil || !member {
			t.Fatalf("expected (true, nil), got (%v, %v)", member, err)
		}
		if got := c.Favorites(); !slices.Equal(got, []string{"m1", "m2"}) {
			t.Errorf("expected echo [m1 m2], got %v", got)
		}
	})

	t.Run("Keeps Other Pending Changes", func(t *testing.T) {
		c, catalog := newFixture(t)
		c.Load(context.Background(), "ana")
		g := newGate()
		catalog.Hook = g.hook("AddFavorite", "m1")

		done := toggleAsync(c, "m1")
		g.waitStarted(t)

		if _, err := c.Toggle(context.Background(), "m2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !c.IsFavorite("m1") || !c.IsFavorite("m2") {
			t.Errorf("expected m1 pending and m2 confirmed, got %v", c.Favorites())
		}

		close(g.release)
		wait(t, done)
		if got := c.Favorites(); !slices.Equal(got, []string{"m1", "m2"}) {
			t.Errorf("expected [m1 m2], got %v", got)
		}
	})

	t.Run("Loads First When Uninitialized", func(t *testing.T) {
		c, catalog := newFixture(t, "m2")

		member, err := c.Toggle(context.Background(), "m2")
		if err != nil || member {
			t.Fatalf("expected (false, nil), got (%v, %v)", member, err)
		}
		if catalog.Calls("GetUser") != 1 || catalog.Calls("RemoveFavorite") != 1 {
			t.Error("expected a load followed by a remove")
		}
	})

	t.Run("Requires Movie Id", func(t *testing.T) {
		c, _ := newFixture(t)
		if _, err := c.Toggle(context.Background(), ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestReconcile(t *testing.T) {
	t.Run("Server Wins Over Optimistic State", func(t *testing.T) {
		c, catalog := newFixture(t)
		c.Load(context.Background(), "ana")
		g := newGate()
		catalog.Hook = g.hook("AddFavorite", "m1")

		done := toggleAsync(c, "m1")
		g.waitStarted(t)
		if got := c.Favorites(); !slices.Equal(got, []string{"m1"}) {
			t.Fatalf("expected optimistic [m1], got %v", got)
		}

		c.Reconcile("ana", []string{"m2"})
		if got := c.Favorites(); !slices.Equal(got, []string{"m2"}) {
			t.Errorf("expected exactly [m2], got %v", got)
		}

		close(g.release)
		wait(t, done)
	})

	t.Run("Failed Toggle Rolls Back To Reconciled Membership", func(t *testing.T) {
		c, catalog := newFixture(t)
		c.Load(context.Background(), "ana")
		started, release := make(chan struct{}, 1), make(chan struct{})
		catalog.Hook = func(ctx context.Context, op string, args ...string) error {
			if op != "AddFavorite" {
				return nil
			}
			started <- struct{}{}
			<-release
			return shared.ErrServerError
		}

		done := toggleAsync(c, "m1")
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for call to start")
		}

		c.Reconcile("ana", []string{"m1"})
		close(release)

		r := wait(t, done)
		if !errors.Is(r.err, shared.ErrServerError) {
			t.Fatalf("expected ErrServerError, got %v", r.err)
		}
		if !r.member {
			t.Error("expected the reconciled membership to be returned")
		}
		if got := c.Favorites(); !slices.Equal(got, []string{"m1"}) {
			t.Errorf("expected reconciled [m1] to survive the rollback, got %v", got)
		}
		if c.IsPending("m1") {
			t.Error("expected m1 no longer pending")
		}
	})

	t.Run("Initializes", func(t *testing.T) {
		c := New(tu.NewFakeCatalog(), nil, nil)
		c.Reconcile("ana", []string{"m1"})

		if c.State() != Loaded || c.Username() != "ana" || !c.IsFavorite("m1") {
			t.Errorf("expected loaded {m1} for ana, got %s %v", c.State(), c.Favorites())
		}
	})
}

func TestReset(t *testing.T) {
	t.Run("Returns To Uninitialized", func(t *testing.T) {
		c := New(tu.NewFakeCatalog(), nil, nil)
		c.Reconcile("ana", []string{"m1"})
		c.Reset()

		if c.State() != Uninitialized || c.Username() != "" || len(c.Favorites()) != 0 {
			t.Errorf("expected empty uninitialized controller, got %s %q %v", c.State(), c.Username(), c.Favorites())
		}
	})

	t.Run("Discards In Flight Toggle", func(t *testing.T) {
		catalog := tu.NewFakeCatalog(alien)
		catalog.AddUser(models.User{Username: "ana"}, "x")
		c := New(catalog, nil, nil)
		c.Reconcile("ana", nil)

		g := newGate()
		catalog.Hook = g.hook("AddFavorite", "m1")
		done := toggleAsync(c, "m1")
		g.waitStarted(t)

		c.Reset()
		close(g.release)
		wait(t, done)

		if c.State() != Uninitialized || len(c.Favorites()) != 0 {
			t.Errorf("expected stale result to be discarded, got %s %v", c.State(), c.Favorites())
		}
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("Every Transition Notifies All Subscribers", func(t *testing.T) {
		c, _ := newFixture(t)
		grid, unsubGrid := c.Subscribe()
		defer unsubGrid()
		pane, unsubPane := c.Subscribe()
		defer unsubPane()

		c.Load(context.Background(), "ana")
		c.Toggle(context.Background(), "m1")
		c.Reset()

		want := []EventKind{EventLoaded, EventApplied, EventConfirmed, EventReset}
		for _, events := range []<-chan Event{grid, pane} {
			for _, kind := range want {
				if ev := next(t, events); ev.Kind != kind {
					t.Errorf("expected %s, got %s", kind, ev.Kind)
				}
			}
		}
	})

	t.Run("Events Carry Snapshots", func(t *testing.T) {
		c, _ := newFixture(t)
		events, unsubscribe := c.Subscribe()
		defer unsubscribe()

		c.Reconcile("ana", []string{"m2", "m1"})
		ev := next(t, events)

		if ev.Kind != EventReconciled || ev.State != Loaded {
			t.Errorf("expected reconciled/loaded, got %s/%s", ev.Kind, ev.State)
		}
		if !slices.Equal(ev.Favorites, []string{"m1", "m2"}) {
			t.Errorf("expected sorted snapshot, got %v", ev.Favorites)
		}
	})

	t.Run("Full Subscriber Keeps Newest", func(t *testing.T) {
		c := New(tu.NewFakeCatalog(), nil, nil)
		events, unsubscribe := c.Subscribe()
		defer unsubscribe()

		for range subscriberBuffer + 5 {
			c.Reconcile("ana", nil)
		}
		c.Reconcile("ana", []string{"last"})

		var last Event
		for range subscriberBuffer {
			last = next(t, events)
		}
		if !slices.Equal(last.Favorites, []string{"last"}) {
			t.Errorf("expected newest event to be kept, got %v", last.Favorites)
		}
	})

	t.Run("Unsubscribe Closes Channel", func(t *testing.T) {
		c := New(tu.NewFakeCatalog(), nil, nil)
		events, unsubscribe := c.Subscribe()
		unsubscribe()
		unsubscribe()

		if _, ok := <-events; ok {
			t.Error("expected closed channel")
		}
		c.Reset()
	})
}

func TestFavoriteMovies(t *testing.T) {
	c := New(tu.NewFakeCatalog(), nil, nil)
	c.Reconcile("ana", []string{"m2", "m1"})

	got := c.FavoriteMovies([]models.Movie{alien, {ID: "m3", Title: "Heat"}, dune})
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Errorf("expected catalog order [m1 m2], got %v", got)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Uninitialized, "uninitialized"},
		{Loaded, "loaded"},
		{Mutating, "mutating"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
