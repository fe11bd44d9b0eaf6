// Package store holds the movie and TV show state containers. Each store
// keeps the last fetched detail record and exposes fetch and search
// operations backed by a metadata catalog. Stores are plain values: build
// one per consumer (request, chat session, test) rather than sharing a
// process-wide instance.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/vadimtrunov/filmes/internal/httpclient"
	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
)

// ErrInvalidID is returned when an identifier is not a positive integer.
var ErrInvalidID = errors.New("identifier must be a positive integer")

// FetchError describes a failed store operation. The store's current record
// is left unchanged whenever a FetchError is returned.
type FetchError struct {
	Op  string // e.g. "get movie detail", "search tv shows"
	Key string // the identifier or query the operation was called with
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err was caused by the provider answering 404.
func IsNotFound(err error) bool {
	var se *httpclient.StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// ParseID converts a route identifier into a TMDb numeric ID.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

type subscriber struct {
	id int
	fn func(tmdb.Record)
}

// detail is the state shared by MovieStore and TVStore.
type detail struct {
	mu      sync.RWMutex
	current tmdb.Record

	subsMu  sync.Mutex
	subs    []subscriber
	nextSub int

	logger *slog.Logger
}

func newDetail(logger *slog.Logger) *detail {
	if logger == nil {
		logger = slog.Default()
	}
	return &detail{logger: logger}
}

// fetch loads one record and, on success, replaces the current one wholesale.
// Concurrent fetches are not ordered: the last to finish wins.
func (d *detail) fetch(
	ctx context.Context, op, rawID string, get func(context.Context, int) (tmdb.Record, error),
) error {
	id, err := ParseID(rawID)
	if err != nil {
		return &FetchError{Op: op, Key: rawID, Err: err}
	}

	rec, err := get(ctx, id)
	if err != nil {
		return &FetchError{Op: op, Key: rawID, Err: err}
	}

	d.mu.Lock()
	d.current = rec
	d.mu.Unlock()

	d.logger.Debug("store updated", slog.String("op", op), slog.Int("id", id))
	d.notify(rec)
	return nil
}

func (d *detail) search(
	ctx context.Context, op, query string, find func(context.Context, string) ([]tmdb.Record, error),
) ([]tmdb.Record, error) {
	results, err := find(ctx, query)
	if err != nil {
		return nil, &FetchError{Op: op, Key: query, Err: err}
	}
	return results, nil
}

func (d *detail) get() tmdb.Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

func (d *detail) subscribe(fn func(tmdb.Record)) func() {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()

	d.nextSub++
	id := d.nextSub
	d.subs = append(d.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			d.subsMu.Lock()
			defer d.subsMu.Unlock()
			for i, s := range d.subs {
				if s.id == id {
					d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// notify calls subscribers in subscription order, outside any lock.
func (d *detail) notify(rec tmdb.Record) {
	d.subsMu.Lock()
	subs := make([]subscriber, len(d.subs))
	copy(subs, d.subs)
	d.subsMu.Unlock()

	for _, s := range subs {
		s.fn(rec)
	}
}
