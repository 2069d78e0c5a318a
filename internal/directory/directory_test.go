package directory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"events_rss/internal/directory"

	"github.com/stretchr/testify/require"
)

func TestLocationIDs_Pagination(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/library", r.URL.Path)
		require.Equal(t, "2093", r.URL.Query().Get("consortium"))
		require.Equal(t, "customData", r.URL.Query().Get("with"))
		requests = append(requests, r.URL.Query().Get("skip"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("skip") {
		case "":
			w.Write([]byte(`{"total": 4, "items": [
				{"customData": [{"id": "linkedevents_id", "value": "tprek:123"}]},
				{"customData": [{"id": "other", "value": "x"}, {"id": "linkedevents_id", "value": "tprek:456"}]}
			]}`))
		case "2":
			w.Write([]byte(`{"total": 4, "items": [
				{"customData": [{"id": "linkedevents_id", "value": "tprek:123"}]},
				{"customData": []}
			]}`))
		default:
			t.Fatalf("unexpected skip value %q", r.URL.Query().Get("skip"))
		}
	}))
	defer server.Close()

	client := directory.NewClient(server.URL, "2093", "linkedevents_id", 5*time.Second)
	ids, err := client.LocationIDs(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"", "2"}, requests)
	// Duplicates collapse; library without the key contributes nothing.
	require.Equal(t, []string{"tprek:123", "tprek:456"}, ids)
}

func TestLocationIDs_EmptyPageTerminates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"total": 100, "items": []}`))
	}))
	defer server.Close()

	client := directory.NewClient(server.URL, "2093", "linkedevents_id", 5*time.Second)
	ids, err := client.LocationIDs(context.Background())
	require.NoError(t, err)
	require.Empty(t, ids)
	require.Equal(t, 1, calls)
}

func TestLocationIDs_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := directory.NewClient(server.URL, "2093", "linkedevents_id", 5*time.Second)
	_, err := client.LocationIDs(context.Background())
	require.Error(t, err)
}
