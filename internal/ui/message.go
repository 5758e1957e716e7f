package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/niliflix/internal/favorites"
	"github.com/desertthunder/niliflix/internal/models"
)

var (
	_ tea.Msg = moviesFetchedMsg{}
	_ tea.Msg = favoritesEventMsg{}
)

type moviesFetchedMsg struct {
	movies []models.Movie
	err    error
}

type profileFetchedMsg struct {
	user *models.User
	err  error
}

type favoritesLoadedMsg struct {
	err error
}

// favoritesEventMsg carries one event from the favorites subscription.
type favoritesEventMsg favorites.Event

// eventsClosedMsg reports that the favorites subscription ended.
type eventsClosedMsg struct{}

type toggleDoneMsg struct {
	movie  models.Movie
	member bool
	err    error
}

// infoFetchedMsg carries a rendered genre, director or synopsis page.
type infoFetchedMsg struct {
	title string
	body  string
	err   error
}
