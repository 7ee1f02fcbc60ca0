package web

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMoviePages(t *testing.T) http.Handler {
	t.Helper()
	renderer, err := NewRenderer()
	require.NoError(t, err)
	r := chi.NewRouter()
	NewMoviePages(renderer, testLogger).Routes(r)
	return r
}

func TestMoviePages(t *testing.T) {
	h := setupMoviePages(t)

	t.Run("Index", func(t *testing.T) {
		rec := get(h, "/movies")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h2>Movies</h2>")
	})

	t.Run("By release date echoes year and month", func(t *testing.T) {
		rec := get(h, "/movies/released/2015/04")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2015/4", rec.Body.String())
	})

	t.Run("By release date rejects malformed month", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(h, "/movies/released/2015/13").Code)
		assert.Equal(t, http.StatusNotFound, get(h, "/movies/released/15/1").Code)
	})

	t.Run("Parameter", func(t *testing.T) {
		rec := get(h, "/movies/parameter/1/2")
		assert.Equal(t, "Id: 1, AnotherId: 2", rec.Body.String())
		assert.Equal(t, http.StatusBadRequest, get(h, "/movies/parameter/x/2").Code)
	})
}
