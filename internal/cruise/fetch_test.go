package cruise

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /builds/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("abc1234 success"))
	})
	mux.HandleFunc("GET /builds/2", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("GET /builds/3", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewHTTPFetcher(5 * time.Second)

	t.Run("ok", func(t *testing.T) {
		out, err := f.Fetch(t.Context(), server.URL+"/builds/1")
		require.NoError(t, err)
		assert.Equal(t, "abc1234 success", out)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.Fetch(t.Context(), server.URL+"/builds/2")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := f.Fetch(t.Context(), server.URL+"/builds/3")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "status 500")
	})
}

func TestNewHTTPFetcher_DefaultTimeout(t *testing.T) {
	f := NewHTTPFetcher(0)
	assert.Equal(t, DefaultTimeout, f.client.Timeout)
}
