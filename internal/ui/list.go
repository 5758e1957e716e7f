package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/niliflix/internal/formatter"
	"github.com/desertthunder/niliflix/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] with its favorites membership to implement [list.Item].
type movieItem struct {
	movie    models.Movie
	favorite bool
	pending  bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }

func (i movieItem) Title() string {
	switch {
	case i.pending:
		return "… " + i.movie.Title
	case i.favorite:
		return formatter.FavoriteMark + " " + i.movie.Title
	default:
		return "  " + i.movie.Title
	}
}

func (i movieItem) Description() string {
	var parts []string
	if i.movie.Genre.Name != "" {
		parts = append(parts, i.movie.Genre.Name)
	}
	if i.movie.Director.Name != "" {
		parts = append(parts, i.movie.Director.Name)
	}
	if i.movie.ReleaseYear != 0 {
		parts = append(parts, fmt.Sprint(i.movie.ReleaseYear))
	}
	return strings.Join(parts, " • ")
}

// movieItems builds list items for movies using the favorites membership.
func movieItems(movies []models.Movie, favs Favorites) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m, favorite: favs.IsFavorite(m.ID), pending: favs.IsPending(m.ID)}
	}
	return items
}
