package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type MoviePages struct {
	renderer *Renderer
	logger   *slog.Logger
}

func NewMoviePages(renderer *Renderer, logger *slog.Logger) *MoviePages {
	if renderer == nil {
		panic("renderer cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &MoviePages{renderer: renderer, logger: logger.With("component", "MoviePages")}
}

func (p *MoviePages) Routes(r chi.Router) {
	r.Route("/movies", func(r chi.Router) {
		r.Get("/", p.Index)
		r.Get("/released/{year:[0-9]{4}}/{month:[0-9]{1,2}}", p.ByReleaseDate)
		r.Get("/parameter/{id}/{anotherId}", p.Parameter)
	})
}

func (p *MoviePages) Index(w http.ResponseWriter, r *http.Request) {
	if err := p.renderer.Render(w, http.StatusOK, pageMoviesIndex, nil); err != nil {
		p.logger.ErrorContext(r.Context(), "Failed to render page", slog.String("page", pageMoviesIndex), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ByReleaseDate echoes the requested release period as year/month.
func (p *MoviePages) ByReleaseDate(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))
	if yerr != nil || merr != nil || month < 1 || month > 12 {
		http.NotFound(w, r)
		return
	}
	writeText(w, fmt.Sprintf("%d/%d", year, month))
}

func (p *MoviePages) Parameter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "id must be a number", http.StatusBadRequest)
		return
	}
	anotherID, err := strconv.Atoi(chi.URLParam(r, "anotherId"))
	if err != nil {
		http.Error(w, "anotherId must be a number", http.StatusBadRequest)
		return
	}
	writeText(w, fmt.Sprintf("Id: %d, AnotherId: %d", id, anotherID))
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
