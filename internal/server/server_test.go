package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"events_rss/internal/cache"
	"events_rss/internal/server"

	"github.com/stretchr/testify/require"
)

func TestGetFeed(t *testing.T) {
	store := cache.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "tprek:123/fi", []byte(`<?xml version="1.0"?><rss/>`)))
	srv := server.NewServer(store)

	t.Run("cache hit", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/events?location=tprek:123&preferred_language=fi", nil)
		w := httptest.NewRecorder()

		srv.GetFeed(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
		require.NotEmpty(t, w.Header().Get("ETag"))
		require.Contains(t, w.Body.String(), "<rss/>")
	})

	t.Run("cache miss", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/events?location=tprek:999&preferred_language=fi", nil)
		w := httptest.NewRecorder()

		srv.GetFeed(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"detail":"Feed not found"}`, w.Body.String())
	})

	t.Run("multiple locations validate", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/events?location=tprek:123,tprek:456&preferred_language=sv", nil)
		w := httptest.NewRecorder()

		srv.GetFeed(w, req)

		// Valid shape but never refreshed: a miss, not a fetch.
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid location", func(t *testing.T) {
		for _, loc := range []string{"", "tprek", "tprek:", "tprek:abc", "tprek:1,", "tprek:1;x"} {
			req := httptest.NewRequest("GET", "/events?location="+loc+"&preferred_language=fi", nil)
			w := httptest.NewRecorder()

			srv.GetFeed(w, req)

			require.Equal(t, http.StatusBadRequest, w.Code, "location %q", loc)
			require.Contains(t, w.Body.String(), "Invalid location")
		}
	})

	t.Run("invalid language", func(t *testing.T) {
		for _, lang := range []string{"", "de", "finnish"} {
			req := httptest.NewRequest("GET", "/events?location=tprek:123&preferred_language="+lang, nil)
			w := httptest.NewRecorder()

			srv.GetFeed(w, req)

			require.Equal(t, http.StatusBadRequest, w.Code, "language %q", lang)
		}
	})
}

func TestStatus(t *testing.T) {
	srv := server.NewServer(cache.NewMemoryStore())

	req := httptest.NewRequest("GET", "/status", nil)
	w := httptest.NewRecorder()

	srv.Status(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"OK"}`, w.Body.String())
}
