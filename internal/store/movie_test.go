package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/vadimtrunov/filmes/internal/httpclient"
	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
)

func TestMovieStore_InitialState(t *testing.T) {
	s := NewMovieStore(newFakeCatalog(t, &fakeTMDb{}), discardLogger)

	if !s.CurrentMovie().IsZero() {
		t.Errorf("expected empty current movie, got %+v", s.CurrentMovie())
	}
	if got := mustJSON(t, s.CurrentMovie()); got != "{}" {
		t.Errorf("empty current movie marshals to %s, want {}", got)
	}
}

func TestMovieStore_GetMovieDetail(t *testing.T) {
	body := `{"id":550,"title":"Fight Club"}`
	f := &fakeTMDb{bodies: map[string]string{"/movie/550": body}}
	s := NewMovieStore(newFakeCatalog(t, f), discardLogger)

	if err := s.GetMovieDetail(context.Background(), "550"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cur := s.CurrentMovie()
	if string(cur.Raw) != body {
		t.Errorf("current movie = %s, want %s", cur.Raw, body)
	}
	if cur.ID != 550 || cur.Title != "Fight Club" {
		t.Errorf("typed fields = %+v", cur)
	}
}

func TestMovieStore_GetMovieDetail_EveryIDYieldsItsBody(t *testing.T) {
	f := &fakeTMDb{bodies: map[string]string{}}
	ids := []int{1, 11, 550, 27205, 603692}
	for _, id := range ids {
		f.bodies[fmt.Sprintf("/movie/%d", id)] = fmt.Sprintf(`{"id":%d,"title":"movie %d","popularity":%d.5}`, id, id, id)
	}
	s := NewMovieStore(newFakeCatalog(t, f), discardLogger)

	for _, id := range ids {
		if err := s.GetMovieDetail(context.Background(), fmt.Sprint(id)); err != nil {
			t.Fatalf("GetMovieDetail(%d): %v", id, err)
		}
		want := f.bodies[fmt.Sprintf("/movie/%d", id)]
		if got := string(s.CurrentMovie().Raw); got != want {
			t.Errorf("after GetMovieDetail(%d): current = %s, want %s", id, got, want)
		}
	}
}

func TestMovieStore_SearchMovies(t *testing.T) {
	f := &fakeTMDb{bodies: map[string]string{
		"/search/movie?batman": `{"results":[{"id":1},{"id":2}]}`,
		"/movie/550":           `{"id":550,"title":"Fight Club"}`,
	}}
	s := NewMovieStore(newFakeCatalog(t, f), discardLogger)

	results, err := s.SearchMovies(context.Background(), "batman")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mustJSON(t, results); got != `[{"id":1},{"id":2}]` {
		t.Errorf("results = %s", got)
	}
	if !s.CurrentMovie().IsZero() {
		t.Error("search must not change the current movie")
	}

	// Also unchanged when a movie is already loaded.
	if err := s.GetMovieDetail(context.Background(), "550"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.SearchMovies(context.Background(), "batman"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CurrentMovie().ID != 550 {
		t.Errorf("current movie changed by search: %+v", s.CurrentMovie())
	}
}

func TestMovieStore_FailureLeavesStateUnchanged(t *testing.T) {
	f := &fakeTMDb{
		bodies: map[string]string{"/movie/550": `{"id":550,"title":"Fight Club"}`},
		status: map[string]int{"/movie/13": http.StatusInternalServerError},
	}
	s := NewMovieStore(newFakeCatalog(t, f), discardLogger)

	if err := s.GetMovieDetail(context.Background(), "550"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := s.GetMovieDetail(context.Background(), "13")
	if err == nil {
		t.Fatal("expected error")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.Op != "get movie detail" || fe.Key != "13" {
		t.Errorf("unexpected FetchError: %+v", fe)
	}
	var se *httpclient.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500 StatusError in chain, got %v", err)
	}

	if got := s.CurrentMovie(); got.ID != 550 {
		t.Errorf("current movie changed after failure: %+v", got)
	}
}

func TestMovieStore_NotFound(t *testing.T) {
	s := NewMovieStore(newFakeCatalog(t, &fakeTMDb{}), discardLogger)

	err := s.GetMovieDetail(context.Background(), "999999")
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if !s.CurrentMovie().IsZero() {
		t.Error("current movie should stay empty")
	}
}

func TestMovieStore_InvalidIDSkipsRequest(t *testing.T) {
	f := &fakeTMDb{}
	s := NewMovieStore(newFakeCatalog(t, f), discardLogger)

	for _, id := range []string{"abc", "", "-1", "0"} {
		err := s.GetMovieDetail(context.Background(), id)
		if !errors.Is(err, ErrInvalidID) {
			t.Errorf("GetMovieDetail(%q) error = %v, want ErrInvalidID", id, err)
		}
	}
	if f.calls.Load() != 0 {
		t.Errorf("expected no HTTP calls, got %d", f.calls.Load())
	}
}

func TestMovieStore_SearchFailurePropagates(t *testing.T) {
	f := &fakeTMDb{status: map[string]int{"/search/movie?x": http.StatusUnauthorized}}
	s := NewMovieStore(newFakeCatalog(t, f), discardLogger)

	results, err := s.SearchMovies(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if results != nil {
		t.Errorf("expected nil results on failure, got %v", results)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Op != "search movies" || fe.Key != "x" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMovieStore_SubscribeNotifiedOnSuccessOnly(t *testing.T) {
	f := &fakeTMDb{
		bodies: map[string]string{"/movie/550": `{"id":550,"title":"Fight Club"}`},
		status: map[string]int{"/movie/2": http.StatusBadGateway},
	}
	s := NewMovieStore(newFakeCatalog(t, f), discardLogger)

	var seen []int
	unsub := s.Subscribe(func(r tmdb.Record) { seen = append(seen, r.ID) })

	_ = s.GetMovieDetail(context.Background(), "550")
	_ = s.GetMovieDetail(context.Background(), "2")
	_, _ = s.SearchMovies(context.Background(), "anything")
	unsub()
	_ = s.GetMovieDetail(context.Background(), "550")

	if len(seen) != 1 || seen[0] != 550 {
		t.Errorf("notifications = %v, want [550]", seen)
	}
}

func TestMovieStore_IndependentInstances(t *testing.T) {
	f := &fakeTMDb{bodies: map[string]string{
		"/movie/1": `{"id":1}`,
		"/movie/2": `{"id":2}`,
	}}
	catalog := newFakeCatalog(t, f)
	a := NewMovieStore(catalog, discardLogger)
	b := NewMovieStore(catalog, discardLogger)

	_ = a.GetMovieDetail(context.Background(), "1")
	_ = b.GetMovieDetail(context.Background(), "2")

	if a.CurrentMovie().ID != 1 || b.CurrentMovie().ID != 2 {
		t.Errorf("stores share state: a=%d b=%d", a.CurrentMovie().ID, b.CurrentMovie().ID)
	}
}

// gatedCatalog lets a test decide when each GetMovie call returns.
type gatedCatalog struct {
	gates map[int]chan struct{}
}

func (g *gatedCatalog) GetMovie(ctx context.Context, id int) (tmdb.Record, error) {
	select {
	case <-g.gates[id]:
		return tmdb.Record{ID: id}, nil
	case <-ctx.Done():
		return tmdb.Record{}, ctx.Err()
	}
}

func (g *gatedCatalog) SearchMovies(context.Context, string) ([]tmdb.Record, error) {
	return nil, nil
}

func TestMovieStore_LastResponseWins(t *testing.T) {
	g := &gatedCatalog{gates: map[int]chan struct{}{
		1: make(chan struct{}),
		2: make(chan struct{}),
	}}
	s := NewMovieStore(g, discardLogger)

	landed := make(chan int, 2)
	s.Subscribe(func(r tmdb.Record) { landed <- r.ID })

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = s.GetMovieDetail(context.Background(), "1") }()
	go func() { defer wg.Done(); _ = s.GetMovieDetail(context.Background(), "2") }()

	// The newer request (2) resolves first, the older one (1) last.
	close(g.gates[2])
	if id := <-landed; id != 2 {
		t.Fatalf("first landed response = %d, want 2", id)
	}
	close(g.gates[1])
	<-landed
	wg.Wait()

	if got := s.CurrentMovie().ID; got != 1 {
		t.Errorf("current movie = %d, want 1 (last to arrive)", got)
	}
}

func TestMovieStore_ContextCanceled(t *testing.T) {
	g := &gatedCatalog{gates: map[int]chan struct{}{5: make(chan struct{})}}
	s := NewMovieStore(g, discardLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.GetMovieDetail(ctx, "5")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if !s.CurrentMovie().IsZero() {
		t.Error("canceled fetch must not change state")
	}
}

func TestNewMovieStore_NilCatalogPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil catalog")
		}
	}()
	NewMovieStore(nil, nil)
}
