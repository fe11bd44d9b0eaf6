// Package views renders the web pages served by the router.
package views

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vadimtrunov/filmes/internal/core"
	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
	"github.com/vadimtrunov/filmes/internal/router"
	"github.com/vadimtrunov/filmes/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	posterSize      = "w342"
	thumbnailSize   = "w92"
	formatJSON      = "json"
	contentTypeHTML = "text/html; charset=utf-8"
)

// Kind describes the media type a list or detail view works on.
type Kind struct {
	Label      string // page heading, e.g. "Filmes"
	Noun       string // used in placeholders, e.g. "filmes"
	ListPath   string
	DetailPath string // prefix, the ID is appended
	Param      string // route prop carrying the ID
}

var (
	movieKind = Kind{Label: "Filmes", Noun: "filmes", ListPath: "/filmes", DetailPath: "/movie/", Param: "movieId"}
	tvKind    = Kind{Label: "Séries", Noun: "séries", ListPath: "/tv", DetailPath: "/tvdetail/", Param: "tvId"}
)

// Factories returns lazy factories for every route, all backed by catalog.
// Each request gets its own store, so concurrent visitors never see each
// other's records.
func Factories(catalog core.Catalog, logger *slog.Logger) router.Views {
	if catalog == nil {
		panic("views.Factories: catalog must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	movieDetail := func(ctx context.Context, id string) (tmdb.Record, error) {
		s := store.NewMovieStore(catalog, logger)
		if err := s.GetMovieDetail(ctx, id); err != nil {
			return tmdb.Record{}, err
		}
		return s.CurrentMovie(), nil
	}
	tvDetail := func(ctx context.Context, id string) (tmdb.Record, error) {
		s := store.NewTVStore(catalog, logger)
		if err := s.GetTVDetail(ctx, id); err != nil {
			return tmdb.Record{}, err
		}
		return s.CurrentTV(), nil
	}
	movieSearch := func(ctx context.Context, q string) ([]tmdb.Record, error) {
		return store.NewMovieStore(catalog, logger).SearchMovies(ctx, q)
	}
	tvSearch := func(ctx context.Context, q string) ([]tmdb.Record, error) {
		return store.NewTVStore(catalog, logger).SearchTVShows(ctx, q)
	}

	return router.Views{
		Home: func() (router.View, error) {
			tpl, err := parsePage("home.html")
			if err != nil {
				return nil, err
			}
			return &homeView{tpl: tpl}, nil
		},
		Movies:       listFactory(movieKind, movieSearch, logger),
		MovieDetails: detailFactory(movieKind, movieDetail, logger),
		TV:           listFactory(tvKind, tvSearch, logger),
		TVDetails:    detailFactory(tvKind, tvDetail, logger),
	}
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// parsePage parses the layout together with one page template.
func parsePage(page string) (*template.Template, error) {
	tpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", page, err)
	}
	return tpl, nil
}

// pageSet is a page template plus the error page rendered on failures.
type pageSet struct {
	page   *template.Template
	errors *template.Template
}

func parsePageSet(page string) (pageSet, error) {
	p, err := parsePage(page)
	if err != nil {
		return pageSet{}, err
	}
	e, err := parsePage("error.html")
	if err != nil {
		return pageSet{}, err
	}
	return pageSet{page: p, errors: e}, nil
}

type homeView struct {
	tpl *template.Template
}

func (v *homeView) Render(w http.ResponseWriter, _ *http.Request, _ router.Props) error {
	return renderHTML(w, http.StatusOK, v.tpl, nil)
}

// listItem is one search result as shown in a list view.
type listItem struct {
	ID     int
	Title  string
	Year   int
	Poster string
	Href   string
}

type listData struct {
	Kind     Kind
	Query    string
	Searched bool
	Items    []listItem
}

type listView struct {
	kind   Kind
	search func(context.Context, string) ([]tmdb.Record, error)
	pages  pageSet
	logger *slog.Logger
}

func listFactory(kind Kind, search func(context.Context, string) ([]tmdb.Record, error), logger *slog.Logger) router.ViewFactory {
	return func() (router.View, error) {
		pages, err := parsePageSet("list.html")
		if err != nil {
			return nil, err
		}
		return &listView{kind: kind, search: search, pages: pages, logger: logger}, nil
	}
}

func (v *listView) Render(w http.ResponseWriter, r *http.Request, _ router.Props) error {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	wantJSON := r.URL.Query().Get("format") == formatJSON

	data := listData{Kind: v.kind, Query: query}
	if query == "" {
		if wantJSON {
			return writeJSON(w, []tmdb.Record{})
		}
		return renderHTML(w, http.StatusOK, v.pages.page, data)
	}

	results, err := v.search(r.Context(), query)
	if err != nil {
		return v.fail(w, r, err)
	}
	if wantJSON {
		return writeJSON(w, results)
	}

	data.Searched = true
	data.Items = make([]listItem, 0, len(results))
	for _, rec := range results {
		data.Items = append(data.Items, listItem{
			ID:     rec.ID,
			Title:  rec.DisplayTitle(),
			Year:   rec.Year(),
			Poster: tmdb.PosterURL(rec.PosterPath, thumbnailSize),
			Href:   v.kind.DetailPath + strconv.Itoa(rec.ID),
		})
	}
	return renderHTML(w, http.StatusOK, v.pages.page, data)
}

func (v *listView) fail(w http.ResponseWriter, r *http.Request, err error) error {
	return renderError(w, r, v.pages.errors, v.logger, err)
}

type detailData struct {
	Kind     Kind
	ID       int
	Title    string
	Tagline  string
	Overview string
	Year     int
	Poster   string
	Genres   []string
	Runtime  int
	Seasons  int
	Vote     float64
	Status   string
}

type detailView struct {
	kind   Kind
	fetch  func(context.Context, string) (tmdb.Record, error)
	pages  pageSet
	logger *slog.Logger
}

func detailFactory(kind Kind, fetch func(context.Context, string) (tmdb.Record, error), logger *slog.Logger) router.ViewFactory {
	return func() (router.View, error) {
		pages, err := parsePageSet("detail.html")
		if err != nil {
			return nil, err
		}
		return &detailView{kind: kind, fetch: fetch, pages: pages, logger: logger}, nil
	}
}

func (v *detailView) Render(w http.ResponseWriter, r *http.Request, props router.Props) error {
	rec, err := v.fetch(r.Context(), props[v.kind.Param])
	if err != nil {
		return renderError(w, r, v.pages.errors, v.logger, err)
	}

	if r.URL.Query().Get("format") == formatJSON {
		return writeJSON(w, rec)
	}

	return renderHTML(w, http.StatusOK, v.pages.page, detailData{
		Kind:     v.kind,
		ID:       rec.ID,
		Title:    rec.DisplayTitle(),
		Tagline:  rec.Tagline,
		Overview: rec.Overview,
		Year:     rec.Year(),
		Poster:   tmdb.PosterURL(rec.PosterPath, posterSize),
		Genres:   rec.GenreNames(),
		Runtime:  rec.Runtime,
		Seasons:  rec.NumberOfSeasons,
		Vote:     rec.VoteAverage,
		Status:   rec.Status,
	})
}

type errorData struct {
	Status  int
	Heading string
	Message string
}

// statusFor maps a store error to the HTTP status shown to the visitor.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest
	case store.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// renderError writes the error page. Client errors are logged here and
// swallowed; upstream failures are returned so the router logs them.
func renderError(w http.ResponseWriter, r *http.Request, tpl *template.Template, logger *slog.Logger, err error) error {
	status := statusFor(err)
	data := errorData{Status: status}
	switch status {
	case http.StatusBadRequest:
		data.Heading = "Identificador inválido"
		data.Message = "O identificador informado não é um número válido."
	case http.StatusNotFound:
		data.Heading = "Não encontrado"
		data.Message = "Nenhum título corresponde a este identificador."
	default:
		data.Heading = "Serviço indisponível"
		data.Message = "Não foi possível consultar o catálogo. Tente novamente."
	}

	if r.URL.Query().Get("format") == formatJSON {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{"status": status, "error": err.Error()}) //nolint:errcheck // best-effort error body
	} else if renderErr := renderHTML(w, status, tpl, data); renderErr != nil {
		return errors.Join(err, renderErr)
	}

	if status < http.StatusInternalServerError {
		logger.Debug("view request rejected",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return err
}

// renderHTML executes the layout into a buffer first so a template error
// never leaves a half-written page.
func renderHTML(w http.ResponseWriter, status int, tpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func writeJSON(w http.ResponseWriter, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(data)
	return err
}
