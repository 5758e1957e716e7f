package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/niliflix/internal/favorites"
	"github.com/desertthunder/niliflix/internal/formatter"
	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/services"
	"github.com/desertthunder/niliflix/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GridView ViewState = iota
	FavoritesView
	InfoView
)

// Favorites is the favorites controller surface the TUI renders from.
type Favorites interface {
	Subscribe() (<-chan favorites.Event, func())
	Load(ctx context.Context, username string) error
	IsFavorite(movieID string) bool
	IsPending(movieID string) bool
	Toggle(ctx context.Context, movieID string) (bool, error)
	FavoriteMovies(movies []models.Movie) []models.Movie
}

// Profile loads the signed-in user's profile.
type Profile interface {
	Load(ctx context.Context, username string) (*models.User, error)
}

var _ Favorites = (*favorites.Controller)(nil)

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	back        ViewState // view to return to from InfoView
	catalog     services.Catalog
	favorites   Favorites
	profile     Profile
	logger      *log.Logger
	events      <-chan favorites.Event
	unsubscribe func()
	width       int
	height      int
	grid        list.Model
	favList     list.Model
	movies      []models.Movie
	user        *models.User
	info        infoFetchedMsg
	status      string
	statusStyle lipgloss.Style
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model subscribed to favs. Call [Model.Close] when the program exits.
func NewModel(ctx context.Context, catalog services.Catalog, favs Favorites, profile Profile, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	events, unsubscribe := favs.Subscribe()

	return &Model{
		ctx:         ctx,
		view:        GridView,
		catalog:     catalog,
		favorites:   favs,
		profile:     profile,
		logger:      shared.WithLogger(logger, "component", "tui"),
		events:      events,
		unsubscribe: unsubscribe,
		grid:        newList("Movies"),
		favList:     newList("Favorites"),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Close ends the favorites subscription.
func (m *Model) Close() {
	m.unsubscribe()
}

// Init starts loading the catalog, the profile and the favorites set.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchMovies(), m.fetchProfile(), m.loadFavorites(), m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case moviesFetchedMsg:
		if msg.err != nil {
			m.setError("failed to load movies", msg.err)
			return m, nil
		}
		m.movies = msg.movies
		m.setStatus(fmt.Sprintf("Loaded %d movies", len(msg.movies)), styles.ok)
		return m, m.refresh()

	case profileFetchedMsg:
		if msg.err != nil {
			m.setError("failed to load profile", msg.err)
			return m, nil
		}
		m.user = msg.user
		return m, nil

	case favoritesLoadedMsg:
		if msg.err != nil {
			m.setError("failed to load favorites", msg.err)
		}
		return m, nil

	case favoritesEventMsg:
		m.logger.Debug("favorites event", "kind", msg.Kind, "movie", msg.MovieID, "count", len(msg.Favorites))
		return m, tea.Batch(m.refresh(), m.waitForEvent())

	case eventsClosedMsg:
		return m, nil

	case toggleDoneMsg:
		switch {
		case errors.Is(msg.err, shared.ErrOperationInProgress):
			m.setStatus(fmt.Sprintf("Still saving %s…", msg.movie.Title), styles.warn)
		case msg.err != nil:
			m.setError(fmt.Sprintf("could not update %s", msg.movie.Title), msg.err)
		case msg.member:
			m.setStatus(fmt.Sprintf("%s Added %s to favorites", formatter.FavoriteMark, msg.movie.Title), styles.ok)
		default:
			m.setStatus(fmt.Sprintf("Removed %s from favorites", msg.movie.Title), styles.ok)
		}
		return m, nil

	case infoFetchedMsg:
		if msg.err != nil {
			m.setError("failed to load "+msg.title, msg.err)
			return m, nil
		}
		m.info = msg
		m.view = InfoView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case GridView:
		body = m.grid.View()
	case FavoritesView:
		body = m.renderProfile() + "\n" + m.favList.View()
	case InfoView:
		body = m.renderInfo()
	}

	return strings.Join([]string{m.renderTabs(), body, m.renderStatus(), m.renderHelp()}, "\n")
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if l := m.activeList(); l != nil && l.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.back):
		if m.view == InfoView {
			m.view = m.back
			return m, nil
		}

	case key.Matches(msg, m.keys.tab):
		switch m.view {
		case GridView:
			m.view = FavoritesView
		case FavoritesView:
			m.view = GridView
		}
		return m, nil

	case key.Matches(msg, m.keys.reload):
		m.setStatus("Reloading…", styles.help)
		return m, tea.Batch(m.fetchMovies(), m.fetchProfile(), m.loadFavorites())

	case key.Matches(msg, m.keys.favorite):
		if movie, ok := m.selected(); ok {
			return m, m.toggle(movie)
		}
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if movie, ok := m.selected(); ok {
			m.back = m.view
			return m, m.fetchSynopsis(movie)
		}
		return m, nil

	case key.Matches(msg, m.keys.genre):
		if movie, ok := m.selected(); ok && movie.Genre.Name != "" {
			m.back = m.view
			return m, m.fetchGenre(movie.Genre.Name)
		}
		return m, nil

	case key.Matches(msg, m.keys.director):
		if movie, ok := m.selected(); ok && movie.Director.Name != "" {
			m.back = m.view
			return m, m.fetchDirector(movie.Director.Name)
		}
		return m, nil
	}

	if m.view == InfoView {
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case GridView:
		m.grid, cmd = m.grid.Update(msg)
	case FavoritesView:
		m.favList, cmd = m.favList.Update(msg)
	}
	return m, cmd
}

func (m *Model) activeList() *list.Model {
	switch m.view {
	case GridView:
		return &m.grid
	case FavoritesView:
		return &m.favList
	default:
		return nil
	}
}

func (m *Model) selected() (models.Movie, bool) {
	l := m.activeList()
	if l == nil {
		return models.Movie{}, false
	}
	item, ok := l.SelectedItem().(movieItem)
	if !ok {
		return models.Movie{}, false
	}
	return item.movie, true
}

// refresh rebuilds both surfaces from the favorites controller.
func (m *Model) refresh() tea.Cmd {
	return tea.Batch(
		m.grid.SetItems(movieItems(m.movies, m.favorites)),
		m.favList.SetItems(movieItems(m.favorites.FavoriteMovies(m.movies), m.favorites)),
	)
}

func (m *Model) resize() {
	m.grid.SetSize(m.width-4, m.height-8)
	m.favList.SetSize(m.width-4, m.height-10)
}

func (m *Model) setStatus(s string, style lipgloss.Style) {
	m.status = s
	m.statusStyle = style
}

func (m *Model) setError(what string, err error) {
	m.logger.Warn(what, "error", err)
	m.setStatus(fmt.Sprintf("%s: %v", what, err), styles.err)
}

func (m *Model) fetchMovies() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.catalog.ListMovies(m.ctx)
		return moviesFetchedMsg{movies: movies, err: err}
	}
}

func (m *Model) fetchProfile() tea.Cmd {
	return func() tea.Msg {
		user, err := m.profile.Load(m.ctx, "")
		return profileFetchedMsg{user: user, err: err}
	}
}

func (m *Model) loadFavorites() tea.Cmd {
	return func() tea.Msg {
		return favoritesLoadedMsg{err: m.favorites.Load(m.ctx, "")}
	}
}

func (m *Model) toggle(movie models.Movie) tea.Cmd {
	return func() tea.Msg {
		member, err := m.favorites.Toggle(m.ctx, movie.ID)
		return toggleDoneMsg{movie: movie, member: member, err: err}
	}
}

func (m *Model) fetchSynopsis(movie models.Movie) tea.Cmd {
	return func() tea.Msg {
		fresh, err := m.catalog.GetMovie(m.ctx, movie.Title)
		if err != nil {
			return infoFetchedMsg{title: movie.Title, err: err}
		}
		return infoFetchedMsg{title: fresh.Title, body: string(formatter.MovieToText(*fresh, m.favorites.IsFavorite(fresh.ID)))}
	}
}

func (m *Model) fetchGenre(name string) tea.Cmd {
	return func() tea.Msg {
		genre, err := m.catalog.GetGenre(m.ctx, name)
		if err != nil {
			return infoFetchedMsg{title: "genre " + name, err: err}
		}
		return infoFetchedMsg{title: "Genre", body: string(formatter.GenreToText(*genre))}
	}
}

func (m *Model) fetchDirector(name string) tea.Cmd {
	return func() tea.Msg {
		director, err := m.catalog.GetDirector(m.ctx, name)
		if err != nil {
			return infoFetchedMsg{title: "director " + name, err: err}
		}
		return infoFetchedMsg{title: "Director", body: string(formatter.DirectorToText(*director))}
	}
}

// waitForEvent returns one favorites event per invocation.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return favoritesEventMsg(ev)
	}
}

func (m *Model) renderTabs() string {
	grid, favs := styles.tab, styles.tab
	switch m.view {
	case GridView:
		grid = styles.active
	case FavoritesView:
		favs = styles.active
	}

	count := len(m.favorites.FavoriteMovies(m.movies))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		grid.Render("Movies"),
		favs.Render(fmt.Sprintf("Favorites (%d)", count)),
	)
}

func (m *Model) renderProfile() string {
	if m.user == nil {
		return styles.help.Render("Loading profile…")
	}

	parts := []string{m.user.Username}
	if m.user.Email != "" {
		parts = append(parts, m.user.Email)
	}
	if !m.user.Birthday.IsZero() {
		parts = append(parts, "born "+m.user.Birthday.String())
	}
	return styles.body.Render(strings.Join(parts, " • "))
}

func (m *Model) renderInfo() string {
	title := styles.title.Render(m.info.title)
	return fmt.Sprintf("%s\n%s", title, styles.body.Render(m.info.body))
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	return m.statusStyle.Render(m.status)
}

func (m *Model) renderHelp() string {
	if m.view == InfoView {
		return m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	}
	return m.help.ShortHelpView([]key.Binding{m.keys.tab, m.keys.favorite, m.keys.enter, m.keys.genre, m.keys.director, m.keys.reload, m.keys.quit})
}
