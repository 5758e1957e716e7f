package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Register creates an account. It does not sign in.
func (r *Runner) Register(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
		Email:    cmd.String("email"),
	}
	if creds.Password == "" {
		return fmt.Errorf("%w: --password or %s is required", shared.ErrMissingArgument, passwordEnv)
	}

	birthday, err := parseBirthday(cmd.String("birthday"))
	if err != nil {
		return err
	}
	creds.Birthday = birthday

	r.logger.Info("registering account", "user", creds.Username)

	user, err := r.profile.Register(ctx, creds)
	if err != nil {
		return err
	}

	r.writePlain("✓ Account %s created\n", user.Username)
	return r.writePlain("Next: niliflix login --username %s\n", user.Username)
}

// Login signs in and stores the session for later runs.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
	}
	if creds.Password == "" {
		return fmt.Errorf("%w: --password or %s is required", shared.ErrMissingArgument, passwordEnv)
	}

	user, err := r.profile.Login(ctx, creds)
	if errors.Is(err, shared.ErrStorageUnavailable) {
		r.logger.Warn("session could not be saved, you will need to log in again next time", "error", err)
	} else if err != nil {
		return err
	}

	return r.writePlain("✓ Logged in as %s (%d favorites)\n", user.Username, len(user.FavoriteMovies))
}

// Logout clears the stored session.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.profile.Logout(); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return r.writePlain("✓ Logged out\n")
}

// Status prints the API endpoint and the signed-in user.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	current := r.session.Current()

	r.writePlainHeader("niliflix status")
	if r.configPath != "" {
		r.writePlain("Config: %s\n", r.configPath)
	}
	r.writePlain("API: %s\n", r.config.API.BaseURL)
	if !current.Authenticated() {
		return r.writePlain("Session: ✗ Not logged in\n")
	}
	return r.writePlain("Session: ✓ Logged in as %s\n", current.UserID)
}

func parseBirthday(s string) (models.Date, error) {
	if s == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, fmt.Errorf("%w: birthday: %v", shared.ErrInvalidArgument, err)
	}
	return d, nil
}
