package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/niliflix/internal/favorites"
	"github.com/desertthunder/niliflix/internal/profile"
	"github.com/desertthunder/niliflix/internal/services"
	"github.com/desertthunder/niliflix/internal/session"
	"github.com/desertthunder/niliflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	session    *session.Store
	catalog    services.Catalog
	api        *services.CatalogClient
	favorites  *favorites.Controller
	profile    *profile.Controller
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Components left nil are built from Config: an in-memory session store, a catalog client for
// Config.API, and controllers over both.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Session    *session.Store
	Catalog    services.Catalog
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: time.Duration(opts.Config.API.TimeoutSeconds) * time.Second}
	}
	if opts.Session == nil {
		opts.Session, _ = session.NewStore(session.NewMemoryStorage())
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		session:    opts.Session,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if r.catalog == nil {
		r.api = services.NewCatalogClient(services.CatalogOpts{
			BaseURL:    opts.Config.API.BaseURL,
			HTTPClient: opts.HTTPClient,
			Session:    opts.Session,
			RateLimit:  opts.Config.API.RateLimit,
			Logger:     opts.Logger,
		})
		r.catalog = r.api
	} else if client, ok := r.catalog.(*services.CatalogClient); ok {
		r.api = client
	}

	r.favorites = favorites.New(r.catalog, r.session, r.logger)
	r.profile = profile.New(r.catalog, r.session, r.favorites, r.logger)
	return r
}

// SetLogger replaces the logger and rebuilds the components that log through it.
//
// Favorites and profile state is dropped; call it before loading either.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.api != nil {
		r.api = services.NewCatalogClient(services.CatalogOpts{
			BaseURL:    r.api.BaseURL(),
			HTTPClient: r.httpClient,
			Session:    r.session,
			RateLimit:  r.config.API.RateLimit,
			Logger:     logger,
		})
		r.catalog = r.api
	}
	r.favorites = favorites.New(r.catalog, r.session, logger)
	r.profile = profile.New(r.catalog, r.session, r.favorites, logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, registerCommand, loginCommand, logoutCommand, statusCommand,
		moviesCommand, favoritesCommand, profileCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
