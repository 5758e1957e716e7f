package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/niliflix/internal/formatter"
	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// MoviesList prints the catalog in server order with favorites marked.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	movies, err := r.catalog.ListMovies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}
	r.logger.Debug("fetched movies", "count", len(movies))

	return r.writeMovies(format, "Movies", movies, r.favoriteMarker(ctx), cmd.String("output"))
}

// MoviesGet prints a single movie with its synopsis.
func (r *Runner) MoviesGet(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: movie title", shared.ErrMissingArgument)
	}

	movie, err := r.catalog.GetMovie(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to get movie: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, cmd.Bool("pretty"))
	}
	mark := r.favoriteMarker(ctx)
	return r.writeBytes(formatter.MovieToText(*movie, mark != nil && mark(movie.ID)))
}

// MoviesDirector prints a director's bio and dates.
func (r *Runner) MoviesDirector(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: director name", shared.ErrMissingArgument)
	}

	director, err := r.catalog.GetDirector(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get director: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(director, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.DirectorToText(*director))
}

// MoviesGenre prints a genre's description.
func (r *Runner) MoviesGenre(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: genre name", shared.ErrMissingArgument)
	}

	genre, err := r.catalog.GetGenre(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get genre: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(genre, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.GenreToText(*genre))
}

// MoviesPoster downloads a movie's poster image.
func (r *Runner) MoviesPoster(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: movie title", shared.ErrMissingArgument)
	}

	movie, err := r.catalog.GetMovie(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to get movie: %w", err)
	}

	file, err := formatter.WritePoster(*movie, cmd.String("dir"))
	if err != nil {
		return err
	}

	r.logger.Info("poster saved", "movie", movie.ID, "path", file)
	return r.writePlain("✓ Poster saved to %s\n", file)
}

// favoriteMarker loads the session user's favorites. Without a session, or when the load fails, nothing is marked.
func (r *Runner) favoriteMarker(ctx context.Context) formatter.Marker {
	if !r.session.Current().Authenticated() {
		return nil
	}
	if err := r.favorites.Load(ctx, ""); err != nil {
		r.logger.Warn("failed to load favorites", "error", err)
		return nil
	}
	return r.favorites.IsFavorite
}

// writeMovies renders movies to the output, or to file when one is given.
func (r *Runner) writeMovies(format formatter.Format, title string, movies []models.Movie, mark formatter.Marker, file string) error {
	if file != "" {
		path, err := formatter.WriteMoviesExport(format, title, movies, mark, file)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %d movies to %s\n", len(movies), path)
	}

	data, err := formatter.RenderMovies(format, title, movies, mark)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}
	return r.writeBytes(data)
}
