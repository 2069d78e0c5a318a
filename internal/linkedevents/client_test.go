package linkedevents_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"events_rss/internal/linkedevents"
	"events_rss/internal/resolve"

	"github.com/stretchr/testify/require"
)

func TestEvents(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/event/", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [{"id": "helmet:1", "name": {"fi": "Konsertti"}}],
			"meta": {"next": "https://api.example.org/v1/event/?location=tprek:123&page=2"}
		}`))
	}))
	defer server.Close()

	client := linkedevents.NewClient(server.URL, 5*time.Second)
	page, err := client.Events(context.Background(), "tprek:123", 1, 31, true)
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	require.Equal(t, "https://api.example.org/v1/event/?location=tprek:123&page=2", page.Next)

	name, ok := resolve.ResolveLocalized(page.Data[0], "name", "fi")
	require.True(t, ok)
	require.Equal(t, "Konsertti", name)

	require.Contains(t, gotQuery, "location=tprek%3A123")
	require.Contains(t, gotQuery, "days=31")
	require.Contains(t, gotQuery, "sort=start_time")
	require.Contains(t, gotQuery, "include=keywords")
	require.NotContains(t, gotQuery, "page=")
}

func TestEvents_LaterPageAndNullNext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "3", r.URL.Query().Get("page"))
		w.Write([]byte(`{"data": [], "meta": {"next": null}}`))
	}))
	defer server.Close()

	client := linkedevents.NewClient(server.URL, 5*time.Second)
	page, err := client.Events(context.Background(), "tprek:123", 3, 31, false)
	require.NoError(t, err)
	require.Empty(t, page.Data)
	require.Empty(t, page.Next)
}

func TestEvents_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := linkedevents.NewClient(server.URL, 5*time.Second)
	_, err := client.Events(context.Background(), "tprek:123", 1, 31, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestPlace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/place/tprek:123/", r.URL.Path)
		w.Write([]byte(`{"@id": "https://api.example.org/v1/place/tprek:123/", "name": {"fi": "Kirjasto"}}`))
	}))
	defer server.Close()

	client := linkedevents.NewClient(server.URL, 5*time.Second)
	rec, err := client.Place(context.Background(), "tprek:123")
	require.NoError(t, err)

	id, ok := resolve.ResolvePlain(rec, "@id")
	require.True(t, ok)
	require.Equal(t, "https://api.example.org/v1/place/tprek:123/", id)
}

func TestPlace_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := linkedevents.NewClient(server.URL, 5*time.Second)
	_, err := client.Place(context.Background(), "tprek:999")
	require.Error(t, err)
}

func TestImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer server.Close()

	client := linkedevents.NewClient("https://unused.example.org", 5*time.Second)
	data, err := client.Image(context.Background(), server.URL+"/img.png")
	require.NoError(t, err)
	require.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, data)
}
