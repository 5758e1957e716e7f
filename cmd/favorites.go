package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/niliflix/internal/formatter"
	"github.com/desertthunder/niliflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints the signed-in user's favorite movies in catalog order.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if err := r.favorites.Load(ctx, ""); err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}

	movies, err := r.catalog.ListMovies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}

	favs := r.favorites.FavoriteMovies(movies)
	if missing := len(r.favorites.Favorites()) - len(favs); missing > 0 {
		r.logger.Warn("some favorites are no longer in the catalog", "count", missing)
	}

	title := fmt.Sprintf("%s's favorites", r.favorites.Username())
	return r.writeMovies(format, title, favs, r.favorites.IsFavorite, cmd.String("output"))
}

// FavoritesToggle adds a movie to favorites, or removes it when it already is one.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}

	member, err := r.favorites.Toggle(ctx, id)
	if errors.Is(err, shared.ErrOperationInProgress) {
		return r.writePlain("… %s is already being updated\n", id)
	}
	if err != nil {
		return err
	}

	if member {
		return r.writePlain("%s Added %s to favorites\n", formatter.FavoriteMark, id)
	}
	return r.writePlain("✓ Removed %s from favorites\n", id)
}
