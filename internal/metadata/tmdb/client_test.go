package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vadimtrunov/filmes/internal/httpclient"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewForTest(server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSearchMovies(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("missing api_key")
		}
		if r.URL.Query().Get("language") != "pt-BR" {
			t.Errorf("unexpected language: %s", r.URL.Query().Get("language"))
		}
		if r.URL.Query().Get("query") != "inception" {
			t.Errorf("unexpected query: %s", r.URL.Query().Get("query"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":1,"results":[{"id":27205,"title":"A Origem","vote_average":8.4,"release_date":"2010-07-16"}],"total_results":1}`))
	}))

	movies, err := client.SearchMovies(context.Background(), "inception")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(movies))
	}
	if movies[0].Title != "A Origem" {
		t.Errorf("expected A Origem, got %s", movies[0].Title)
	}
	if movies[0].ID != 27205 {
		t.Errorf("expected ID 27205, got %d", movies[0].ID)
	}
	if movies[0].Year() != 2010 {
		t.Errorf("expected year 2010, got %d", movies[0].Year())
	}
}

func TestSearchMovies_PreservesOrderAndContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"results":[{"id":2,"extra":"x"},{"id":1},{"id":3}]}`))
	}))

	got, err := client.SearchMovies(context.Background(), "batman")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"id":2,"extra":"x"},{"id":1},{"id":3}]`
	if string(data) != want {
		t.Errorf("results = %s, want %s", data, want)
	}
}

func TestSearchMovies_MissingResults(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"page":1}`))
	}))

	got, err := client.SearchMovies(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestGetMovie(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("language") != "pt-BR" {
			t.Errorf("unexpected language: %s", r.URL.Query().Get("language"))
		}
		w.Write([]byte(`{"id":550,"title":"Clube da Luta","runtime":139,"genres":[{"id":18,"name":"Drama"}]}`))
	}))

	details, err := client.GetMovie(context.Background(), 550)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Title != "Clube da Luta" {
		t.Errorf("expected Clube da Luta, got %s", details.Title)
	}
	if details.Runtime != 139 {
		t.Errorf("expected runtime 139, got %d", details.Runtime)
	}
	if names := details.GenreNames(); len(names) != 1 || names[0] != "Drama" {
		t.Errorf("unexpected genres: %v", names)
	}
}

func TestGetTV(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1399" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":1399,"name":"A Guerra dos Tronos","first_air_date":"2011-04-17","number_of_seasons":8}`))
	}))

	show, err := client.GetTV(context.Background(), 1399)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if show.DisplayTitle() != "A Guerra dos Tronos" {
		t.Errorf("unexpected name: %s", show.DisplayTitle())
	}
	if show.NumberOfSeasons != 8 {
		t.Errorf("expected 8 seasons, got %d", show.NumberOfSeasons)
	}
	if show.Year() != 2011 {
		t.Errorf("expected year 2011, got %d", show.Year())
	}
}

func TestSearchTV(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/tv" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "dark" {
			t.Errorf("unexpected query: %s", r.URL.Query().Get("query"))
		}
		w.Write([]byte(`{"results":[{"id":70523,"name":"Dark"}]}`))
	}))

	shows, err := client.SearchTV(context.Background(), "dark")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shows) != 1 || shows[0].Name != "Dark" {
		t.Errorf("unexpected shows: %+v", shows)
	}
}

func TestCustomLanguageAndToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("language") != "en-US" {
			t.Errorf("unexpected language: %s", r.URL.Query().Get("language"))
		}
		if r.URL.Query().Has("api_key") {
			t.Error("api_key should not be sent when only a token is configured")
		}
		if r.Header.Get("Authorization") != "Bearer v4-token" {
			t.Errorf("unexpected Authorization: %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	client := New(Config{
		BaseURL:     server.URL,
		AccessToken: "v4-token",
		Language:    "en-US",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if client.Language() != "en-US" {
		t.Errorf("Language() = %q, want en-US", client.Language())
	}
	if _, err := client.GetMovie(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_message": "Invalid API key"}`))
	}))

	_, err := client.SearchMovies(context.Background(), "test")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError in chain, got %v", err)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", se.StatusCode)
	}
}

func TestGetMovie_NonObjectBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[1,2,3]`))
	}))

	if _, err := client.GetMovie(context.Background(), 1); err == nil {
		t.Fatal("expected error for non-object body")
	}
}

func TestPosterURL(t *testing.T) {
	tests := []struct {
		path   string
		size   string
		expect string
	}{
		{"/abc123.jpg", "w500", "https://image.tmdb.org/t/p/w500/abc123.jpg"},
		{"", "w500", ""},
		{"/poster.jpg", "original", "https://image.tmdb.org/t/p/original/poster.jpg"},
	}
	for _, tt := range tests {
		got := PosterURL(tt.path, tt.size)
		if got != tt.expect {
			t.Errorf("PosterURL(%q, %q) = %q, want %q", tt.path, tt.size, got, tt.expect)
		}
	}
}
