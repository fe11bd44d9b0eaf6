package store

import (
	"context"
	"log/slog"

	"github.com/vadimtrunov/filmes/internal/core"
	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
)

// MovieStore holds the last fetched movie.
type MovieStore struct {
	*detail
	catalog core.MovieCatalog
}

// NewMovieStore creates an empty movie store backed by catalog.
func NewMovieStore(catalog core.MovieCatalog, logger *slog.Logger) *MovieStore {
	if catalog == nil {
		panic("store.NewMovieStore: catalog must not be nil")
	}
	return &MovieStore{
		detail:  newDetail(logger),
		catalog: catalog,
	}
}

// GetMovieDetail fetches the movie with the given identifier and makes it
// the current movie.
func (s *MovieStore) GetMovieDetail(ctx context.Context, movieID string) error {
	return s.fetch(ctx, "get movie detail", movieID, s.catalog.GetMovie)
}

// SearchMovies returns the movies matching query. It does not touch the current movie.
func (s *MovieStore) SearchMovies(ctx context.Context, query string) ([]tmdb.Record, error) {
	return s.search(ctx, "search movies", query, s.catalog.SearchMovies)
}

// CurrentMovie returns the current movie, or the zero Record before the first successful fetch.
func (s *MovieStore) CurrentMovie() tmdb.Record {
	return s.get()
}

// Subscribe registers fn to be called with the new movie after every
// successful GetMovieDetail. The returned func removes the subscription.
func (s *MovieStore) Subscribe(fn func(tmdb.Record)) (unsubscribe func()) {
	return s.subscribe(fn)
}
