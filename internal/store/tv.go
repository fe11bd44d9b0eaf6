package store

import (
	"context"
	"log/slog"

	"github.com/vadimtrunov/filmes/internal/core"
	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
)

// TVStore holds the last fetched TV show.
type TVStore struct {
	*detail
	catalog core.TVCatalog
}

// NewTVStore creates an empty TV store backed by catalog.
func NewTVStore(catalog core.TVCatalog, logger *slog.Logger) *TVStore {
	if catalog == nil {
		panic("store.NewTVStore: catalog must not be nil")
	}
	return &TVStore{
		detail:  newDetail(logger),
		catalog: catalog,
	}
}

// GetTVDetail fetches the show with the given identifier and makes it the current show.
func (s *TVStore) GetTVDetail(ctx context.Context, tvID string) error {
	return s.fetch(ctx, "get tv detail", tvID, s.catalog.GetTV)
}

// SearchTVShows returns the shows matching query. It does not touch the current show.
func (s *TVStore) SearchTVShows(ctx context.Context, query string) ([]tmdb.Record, error) {
	return s.search(ctx, "search tv shows", query, s.catalog.SearchTV)
}

// CurrentTV returns the current show, or the zero Record before the first successful fetch.
func (s *TVStore) CurrentTV() tmdb.Record {
	return s.get()
}

// Subscribe registers fn to be called with the new show after every
// successful GetTVDetail. The returned func removes the subscription.
func (s *TVStore) Subscribe(fn func(tmdb.Record)) (unsubscribe func()) {
	return s.subscribe(fn)
}
