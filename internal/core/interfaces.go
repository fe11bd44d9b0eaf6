package core

import (
	"context"

	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
)

// MovieCatalog is the movie half of a metadata provider (TMDb).
type MovieCatalog interface {
	// GetMovie fetches the full detail record of one movie
	GetMovie(ctx context.Context, id int) (tmdb.Record, error)

	// SearchMovies runs a text search and returns the matches in provider order
	SearchMovies(ctx context.Context, query string) ([]tmdb.Record, error)
}

// TVCatalog is the TV show half of a metadata provider.
type TVCatalog interface {
	// GetTV fetches the full detail record of one show
	GetTV(ctx context.Context, id int) (tmdb.Record, error)

	// SearchTV runs a text search and returns the matches in provider order
	SearchTV(ctx context.Context, query string) ([]tmdb.Record, error)
}

// Catalog is a metadata provider serving both movies and shows.
type Catalog interface {
	MovieCatalog
	TVCatalog
}

// Frontend defines the interface for user-facing frontends (web, Telegram)
type Frontend interface {
	// Start runs the frontend until ctx is canceled
	Start(ctx context.Context) error

	// Name returns the frontend name (e.g., "web", "telegram")
	Name() string
}

// compile-time check.
var _ Catalog = (*tmdb.Client)(nil)
