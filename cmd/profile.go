package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/niliflix/internal/formatter"
	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProfileShow prints the signed-in user's profile and favorite movies.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	user, err := r.profile.Load(ctx, "")
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.favorites.Reconcile(user.Username, user.FavoriteMovies)

	movies, err := r.catalog.ListMovies(ctx)
	if err != nil {
		r.logger.Warn("failed to list movies", "error", err)
	}
	return r.writeBytes(formatter.UserToText(*user, r.favorites.FavoriteMovies(movies)))
}

// ProfileUpdate sends the current profile with the given fields replaced.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	current, err := r.profile.Load(ctx, "")
	if err != nil {
		return err
	}

	edits := models.ProfileEdits{
		Username: current.Username,
		Email:    current.Email,
		Birthday: current.Birthday,
		Password: cmd.String("password"),
	}
	changed := edits.Password != ""
	if v := cmd.String("username"); v != "" {
		edits.Username, changed = v, true
	}
	if v := cmd.String("email"); v != "" {
		edits.Email, changed = v, true
	}
	if v := cmd.String("birthday"); v != "" {
		if edits.Birthday, err = parseBirthday(v); err != nil {
			return err
		}
		changed = true
	}
	if !changed {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	user, err := r.profile.Update(ctx, current.Username, edits)
	if errors.Is(err, shared.ErrStorageUnavailable) {
		r.logger.Warn("session could not be saved under the new username", "error", err)
	} else if err != nil {
		return err
	}

	return r.writePlain("✓ Profile updated for %s\n", user.Username)
}

// ProfileDelete deletes the account after explicit confirmation.
func (r *Runner) ProfileDelete(ctx context.Context, cmd *cli.Command) error {
	username := r.session.Current().UserID
	if username == "" {
		return fmt.Errorf("%w: no signed-in user", shared.ErrUnauthenticated)
	}
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete %s", shared.ErrMissingArgument, username)
	}

	if err := r.profile.DeleteAccount(ctx, username); err != nil {
		return err
	}
	return r.writePlain("✓ Account %s deleted\n", username)
}
