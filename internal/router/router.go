// Package router maps request paths to views. Views are built lazily: a
// route's factory runs the first time the route is visited and the result is
// reused for every later visit.
package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Route names.
const (
	RouteHome         = "Home"
	RouteMovies       = "Movies"
	RouteMovieDetails = "MovieDetails"
	RouteTV           = "TV"
	RouteTVDetails    = "TVDetails"
)

// Props holds the route parameters handed to a view, keyed by parameter name.
type Props map[string]string

// View renders one page. Render writes the full response; a returned error is
// logged and, when nothing has been written yet, answered with a 500.
type View interface {
	Render(w http.ResponseWriter, r *http.Request, props Props) error
}

// ViewFunc adapts a function to the View interface.
type ViewFunc func(w http.ResponseWriter, r *http.Request, props Props) error

// Render calls f.
func (f ViewFunc) Render(w http.ResponseWriter, r *http.Request, props Props) error {
	return f(w, r, props)
}

// ViewFactory builds a view. It is called at most once per route.
type ViewFactory func() (View, error)

// Views lists the factory for every route.
type Views struct {
	Home         ViewFactory
	Movies       ViewFactory
	MovieDetails ViewFactory
	TV           ViewFactory
	TVDetails    ViewFactory
}

// RouteInfo describes one entry of the route table.
type RouteInfo struct {
	Name  string
	Path  string
	Props []string
}

// Match is the result of resolving a path.
type Match struct {
	Name  string
	Props Props
}

type route struct {
	RouteInfo
	factory ViewFactory

	once sync.Once
	view View
	err  error
}

// load runs the factory on first use. A failed build is remembered too.
func (rt *route) load() (View, error) {
	rt.once.Do(func() {
		if rt.factory == nil {
			rt.err = errors.New("no view registered")
			return
		}
		rt.view, rt.err = rt.factory()
	})
	return rt.view, rt.err
}

// Router is an http.Handler serving the route table.
type Router struct {
	mux    *mux.Router
	routes []*route
	logger *slog.Logger
}

// New creates a Router for the five application routes.
func New(views Views, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		mux:    mux.NewRouter(),
		logger: logger,
	}

	r.add(RouteHome, "/", views.Home)
	r.add(RouteMovies, "/filmes", views.Movies)
	r.add(RouteMovieDetails, "/movie/{movieId}", views.MovieDetails, "movieId")
	r.add(RouteTV, "/tv", views.TV)
	r.add(RouteTVDetails, "/tvdetail/{tvId}", views.TVDetails, "tvId")

	r.mux.Use(r.loggingMiddleware)
	return r
}

func (r *Router) add(name, path string, factory ViewFactory, props ...string) {
	rt := &route{
		RouteInfo: RouteInfo{Name: name, Path: path, Props: props},
		factory:   factory,
	}
	r.routes = append(r.routes, rt)
	r.mux.HandleFunc(path, r.handle(rt)).
		Methods(http.MethodGet, http.MethodHead).
		Name(name)
}

// ServeHTTP dispatches the request to the matching view.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Routes returns the route table in declaration order.
func (r *Router) Routes() []RouteInfo {
	out := make([]RouteInfo, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt.RouteInfo)
	}
	return out
}

// Resolve matches path against the route table without rendering anything.
func (r *Router) Resolve(path string) (Match, bool) {
	req, err := http.NewRequest(http.MethodGet, path, http.NoBody)
	if err != nil {
		return Match{}, false
	}

	var m mux.RouteMatch
	if !r.mux.Match(req, &m) || m.Route == nil {
		return Match{}, false
	}

	name := m.Route.GetName()
	props := Props{}
	for _, rt := range r.routes {
		if rt.Name != name {
			continue
		}
		for _, p := range rt.Props {
			props[p] = m.Vars[p]
		}
	}
	return Match{Name: name, Props: props}, true
}

// URL builds the path of a named route from prop pairs, e.g. URL(RouteMovieDetails, "movieId", "550").
func (r *Router) URL(name string, pairs ...string) (string, error) {
	rt := r.mux.Get(name)
	if rt == nil {
		return "", fmt.Errorf("unknown route %q", name)
	}
	u, err := rt.URLPath(pairs...)
	if err != nil {
		return "", fmt.Errorf("build %s URL: %w", name, err)
	}
	return u.Path, nil
}

func (r *Router) handle(rt *route) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		view, err := rt.load()
		if err != nil {
			r.logger.Error("view unavailable",
				slog.String("route", rt.Name),
				slog.String("error", err.Error()),
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		vars := mux.Vars(req)
		props := make(Props, len(rt.Props))
		for _, p := range rt.Props {
			props[p] = vars[p]
		}

		sw := asStatusWriter(w)
		if err := view.Render(sw, req, props); err != nil {
			r.logger.Error("render failed",
				slog.String("route", rt.Name),
				slog.String("error", err.Error()),
			)
			if !sw.wrote {
				http.Error(sw, "internal server error", http.StatusInternalServerError)
			}
		}
	}
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := asStatusWriter(w)
		next.ServeHTTP(sw, req)

		name := ""
		if cur := mux.CurrentRoute(req); cur != nil {
			name = cur.GetName()
		}
		r.logger.Debug("request served",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("route", name),
			slog.Int("status", sw.status),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}

// statusWriter records the status code and whether anything was written.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func asStatusWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}
