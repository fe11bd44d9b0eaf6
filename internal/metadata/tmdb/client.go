package tmdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vadimtrunov/filmes/internal/httpclient"
)

const (
	// DefaultBaseURL is the TMDb API v3 root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultLanguage is the locale sent with every request unless configured otherwise.
	DefaultLanguage = "pt-BR"

	imageBaseURL = "https://image.tmdb.org/t/p/"
)

// Config holds the TMDb connection settings.
type Config struct {
	BaseURL     string
	APIKey      string // v3 key, sent as the api_key query parameter
	AccessToken string // v4 read access token, sent as a bearer token
	Language    string
	Timeout     time.Duration
}

// Client is a TMDb API v3 client.
type Client struct {
	http     *httpclient.Client
	language string
	logger   *slog.Logger
}

// New creates a new TMDb client. Empty BaseURL and Language fall back to the defaults.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	params := url.Values{"language": {cfg.Language}}
	if cfg.APIKey != "" {
		params.Set("api_key", cfg.APIKey)
	}

	hc := httpclient.DefaultConfig()
	hc.BaseURL = cfg.BaseURL
	hc.Params = params
	hc.BearerToken = cfg.AccessToken
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}

	return &Client{
		http:     httpclient.New(hc, logger),
		language: cfg.Language,
		logger:   logger,
	}
}

// NewForTest creates a TMDb client with a custom base URL for testing.
// Exported because it is used by cross-package tests (e.g. internal/store).
func NewForTest(baseURL string, logger *slog.Logger) *Client {
	return New(Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, logger)
}

// Language returns the locale sent with every request.
func (c *Client) Language() string {
	return c.language
}

// GetMovie retrieves full details for a movie by TMDb ID.
func (c *Client) GetMovie(ctx context.Context, id int) (Record, error) {
	var rec Record
	if err := c.http.GetJSON(ctx, fmt.Sprintf("movie/%d", id), nil, &rec); err != nil {
		return Record{}, fmt.Errorf("get movie %d: %w", id, err)
	}
	return rec, nil
}

// SearchMovies searches for movies by title and returns the results in provider order.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Record, error) {
	results, err := c.search(ctx, "search/movie", query)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	return results, nil
}

// GetTV retrieves full details for a TV show by TMDb ID.
func (c *Client) GetTV(ctx context.Context, id int) (Record, error) {
	var rec Record
	if err := c.http.GetJSON(ctx, fmt.Sprintf("tv/%d", id), nil, &rec); err != nil {
		return Record{}, fmt.Errorf("get tv %d: %w", id, err)
	}
	return rec, nil
}

// SearchTV searches for TV shows by name and returns the results in provider order.
func (c *Client) SearchTV(ctx context.Context, query string) ([]Record, error) {
	results, err := c.search(ctx, "search/tv", query)
	if err != nil {
		return nil, fmt.Errorf("search tv: %w", err)
	}
	return results, nil
}

func (c *Client) search(ctx context.Context, path, query string) ([]Record, error) {
	var resp searchResponse
	if err := c.http.GetJSON(ctx, path, url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("tmdb search",
		slog.String("path", path),
		slog.String("query", query),
		slog.Int("results", len(resp.Results)),
	)

	if resp.Results == nil {
		return []Record{}, nil
	}
	return resp.Results, nil
}

// PosterURL returns the full URL for a poster path.
func PosterURL(posterPath, size string) string {
	if posterPath == "" {
		return ""
	}
	return imageBaseURL + size + posterPath
}
