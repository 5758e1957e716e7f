package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/session"
	"github.com/desertthunder/niliflix/internal/shared"
)

// RequestIDHeader carries the per-request uuid.
const RequestIDHeader = "X-Request-ID"

// CatalogOpts configures a [CatalogClient].
type CatalogOpts struct {
	BaseURL    string         // defaults to [DefaultBaseURL]
	HTTPClient *http.Client   // defaults to [http.DefaultClient]
	Session    session.Reader // source of the bearer token, nil means always anonymous
	RateLimit  float64        // requests per second, 0 disables pacing
	Logger     *log.Logger
}

// CatalogClient implements [Catalog] over HTTP.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	session    session.Reader
	limiter    *rate.Limiter
	logger     *log.Logger
}

var _ Catalog = (*CatalogClient)(nil)

// NewCatalogClient creates a new catalog client.
func NewCatalogClient(opts CatalogOpts) *CatalogClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	c := &CatalogClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		session:    opts.Session,
		logger:     shared.WithLogger(opts.Logger, "component", "catalog"),
	}
	if opts.RateLimit > 0 {
		burst := max(1, int(opts.RateLimit))
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// BaseURL returns the API root requests are sent to.
func (c *CatalogClient) BaseURL() string {
	return c.baseURL
}

func (c *CatalogClient) Register(ctx context.Context, creds models.Credentials) (*models.User, error) {
	var user models.User
	if err := c.doRequest(ctx, registration, http.MethodPost, "users", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *CatalogClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error) {
	body := models.Credentials{Username: creds.Username, Password: creds.Password}

	var result models.LoginResult
	if err := c.doRequest(ctx, login, http.MethodPost, "login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *CatalogClient) ListMovies(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	if err := c.doRequest(ctx, protected, http.MethodGet, "movies", nil, &movies); err != nil {
		return nil, err
	}

	for i := range movies {
		if err := movies[i].Validate(); err != nil {
			return nil, &APIError{StatusCode: http.StatusOK, Kind: shared.ErrServerError, Message: "invalid response", Err: err}
		}
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	return movies, nil
}

func (c *CatalogClient) GetMovie(ctx context.Context, title string) (*models.Movie, error) {
	var movie models.Movie
	if err := c.getOne(ctx, "movies", title, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *CatalogClient) GetDirector(ctx context.Context, name string) (*models.Director, error) {
	var director models.Director
	if err := c.getOne(ctx, "directors", name, &director); err != nil {
		return nil, err
	}
	return &director, nil
}

func (c *CatalogClient) GetGenre(ctx context.Context, name string) (*models.Genre, error) {
	var genre models.Genre
	if err := c.getOne(ctx, "genres", name, &genre); err != nil {
		return nil, err
	}
	return &genre, nil
}

func (c *CatalogClient) GetUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := c.getOne(ctx, "users", username, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *CatalogClient) UpdateUser(ctx context.Context, username string, edits models.ProfileEdits) (*models.User, error) {
	if err := requireKeys("username", username); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.doRequest(ctx, protected, http.MethodPut, join("users", username), edits, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *CatalogClient) DeleteUser(ctx context.Context, username string) error {
	if err := requireKeys("username", username); err != nil {
		return err
	}
	return c.doRequest(ctx, protected, http.MethodDelete, join("users", username), nil, nil)
}

func (c *CatalogClient) AddFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	if err := requireKeys("username", username, "movie id", movieID); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.doRequest(ctx, protected, http.MethodPut, join("users", username, "movies", movieID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *CatalogClient) RemoveFavorite(ctx context.Context, username, movieID string) (*models.User, error) {
	if err := requireKeys("username", username, "movie id", movieID); err != nil {
		return nil, err
	}
	var user models.User
	if err := c.doRequest(ctx, protected, http.MethodDelete, join("users", username, "movies", movieID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// getOne fetches a single record; an empty or null body is [shared.ErrNotFound].
func (c *CatalogClient) getOne(ctx context.Context, collection, key string, result models.Validator) error {
	if err := requireKeys(collection+" key", key); err != nil {
		return err
	}
	err := c.doRequest(ctx, protected, http.MethodGet, join(collection, key), nil, result)
	if apiErr, ok := IsAPIError(err); ok && errors.Is(err, errEmptyBody) {
		return &APIError{StatusCode: apiErr.StatusCode, Kind: shared.ErrNotFound, Message: fmt.Sprintf("%s %q", collection, key)}
	}
	return err
}

var errEmptyBody = errors.New("empty response body")

// doRequest performs one request and decodes a 2xx body into result.
func (c *CatalogClient) doRequest(ctx context.Context, ep endpoint, method, path string, body any, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: shared.ErrValidationFailed, Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return &APIError{Kind: shared.ErrServerError, Message: "failed to create request", Err: err}
	}

	if ep == protected && !c.authorize(req) {
		return &APIError{Kind: shared.ErrUnauthenticated, Message: "no active session"}
	}

	status, data, err := c.send(req)
	if err != nil {
		return &APIError{Kind: shared.ErrServerError, Message: "request failed", Err: err}
	}

	if status < 200 || status >= 300 {
		return parseError(ep, status, data)
	}

	if result == nil {
		return nil
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &APIError{StatusCode: status, Kind: shared.ErrServerError, Message: "unexpected empty response", Err: errEmptyBody}
	}

	if err := json.Unmarshal(data, result); err != nil {
		return &APIError{StatusCode: status, Kind: shared.ErrServerError, Message: "failed to decode response", Err: err}
	}

	if v, ok := result.(models.Validator); ok {
		if err := v.Validate(); err != nil {
			return &APIError{StatusCode: status, Kind: shared.ErrServerError, Message: "invalid response", Err: err}
		}
	}
	return nil
}

// newRequest builds a request against the base URL with the common headers set.
func (c *CatalogClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, shared.GenerateID())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// authorize attaches the bearer token of the current session and reports whether one exists.
func (c *CatalogClient) authorize(req *http.Request) bool {
	if c.session == nil {
		return false
	}
	current := c.session.Current()
	if !current.Authenticated() {
		return false
	}

	token := &oauth2.Token{AccessToken: current.Token, TokenType: "Bearer"}
	token.SetAuthHeader(req)
	return true
}

// send waits for the rate limiter, performs the request and reads the whole body.
func (c *CatalogClient) send(req *http.Request) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return 0, nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "path", req.URL.Path, "request_id", req.Header.Get(RequestIDHeader), "error", err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(RequestIDHeader),
		"duration", time.Since(start),
	)
	return resp.StatusCode, data, nil
}

// requireKeys takes (name, value) pairs and rejects blank values before any request is made,
// since a blank segment would address the parent collection instead.
func requireKeys(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return &APIError{Kind: shared.ErrValidationFailed, Message: pairs[i] + " is required"}
		}
	}
	return nil
}

// join escapes each path segment and joins them with "/".
func join(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
