package main

import "github.com/urfave/cli/v3"

// passwordEnv lets scripts pass the password without putting it on the command line.
const passwordEnv = "NILIFLIX_PASSWORD"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (text, markdown, csv, json)",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the list to a file instead of stdout",
		},
	}
}

func credentialFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Aliases:  []string{"u"},
			Usage:    "Account username",
			Required: required,
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password",
			Sources: cli.EnvVars(passwordEnv),
		},
		&cli.StringFlag{
			Name:  "email",
			Usage: "Email address",
		},
		&cli.StringFlag{
			Name:  "birthday",
			Usage: "Birthday as YYYY-MM-DD",
		},
	}
}

// setupCommand creates the config file and the session database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the session database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Clear the stored session and recreate the database tables",
			},
		},
		Action: r.Setup,
	}
}

func registerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "register",
		Usage:  "Create an account",
		Flags:  credentialFlags(true),
		Action: r.Register,
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				Usage:    "Account username",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password",
				Sources: cli.EnvVars(passwordEnv),
			},
		},
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Clear the stored session",
		Action: r.Logout,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the signed-in user and API endpoint",
		Action: r.Status,
	}
}

// moviesCommand handles catalog browsing.
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all movies, marking favorites",
				Flags:  listFlags(),
				Action: r.MoviesList,
			},
			{
				Name:      "get",
				Usage:     "Show a movie's synopsis and details",
				Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
				Flags:     jsonFlags(),
				Action:    r.MoviesGet,
			},
			{
				Name:      "director",
				Usage:     "Show a director",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags:     jsonFlags(),
				Action:    r.MoviesDirector,
			},
			{
				Name:      "genre",
				Usage:     "Show a genre",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags:     jsonFlags(),
				Action:    r.MoviesGenre,
			},
			{
				Name:      "poster",
				Usage:     "Download a movie's poster image",
				Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory to save the poster in",
						Value: ".",
					},
				},
				Action: r.MoviesPoster,
			},
		},
	}
}

// favoritesCommand handles the signed-in user's favorites.
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite movies",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorite movies",
				Flags:  listFlags(),
				Action: r.FavoritesList,
			},
			{
				Name:      "toggle",
				Usage:     "Add or remove a movie from favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesToggle,
			},
		},
	}
}

// profileCommand handles the signed-in user's account.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View and edit your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the profile and favorite movies",
				Flags:  jsonFlags(),
				Action: r.ProfileShow,
			},
			{
				Name:   "update",
				Usage:  "Update profile fields; unset fields keep their current value",
				Flags:  credentialFlags(false),
				Action: r.ProfileUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete the account and sign out",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm the deletion",
					},
				},
				Action: r.ProfileDelete,
			},
		},
	}
}

// apiCommand handles direct API access for debugging.
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct catalog API access (debugging)",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Make a GET request to the catalog API",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags:     jsonFlags(),
				Action:    r.APIGet,
			},
			{
				Name:      "request",
				Usage:     "Make a request with any method",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "method",
						Aliases: []string{"X"},
						Usage:   "HTTP method",
						Value:   "GET",
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON request body",
					},
				},
				Action: r.APIRequest,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive movie browser",
		Action:  r.TUI,
	}
}
