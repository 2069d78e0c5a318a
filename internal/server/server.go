// Package server holds the HTTP read path. Feed requests are a single
// cache lookup; the pipeline never runs synchronously, so a miss is a
// 404, not a fetch trigger.
package server

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"events_rss/internal/cache"
	"events_rss/internal/logger"
)

var (
	locationPattern = regexp.MustCompile(`^[a-z]*:[0-9]+(,[a-z]*:[0-9]+)*$`)
	languagePattern = regexp.MustCompile(`^(fi|sv|en)$`)
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	store cache.Store
}

func NewServer(store cache.Store) *Server {
	return &Server{store: store}
}

// Status reports service liveness.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// GetFeed serves the pre-serialized feed for a location set and
// language. Callers only ever see 200 with XML or a structured JSON
// error; internal store failures do not leak as 5xx.
func (s *Server) GetFeed(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	lang := r.URL.Query().Get("preferred_language")

	if !locationPattern.MatchString(location) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid location parameter"})
		return
	}
	if !languagePattern.MatchString(lang) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid preferred_language parameter"})
		return
	}

	body, err := s.store.Get(r.Context(), cache.Key(location, lang))
	if err != nil {
		if !errors.Is(err, cache.ErrFeedNotFound) {
			logger.Log.Errorf("Cache read failed for %s/%s: %v", location, lang, err)
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Feed not found"})
		return
	}

	sum := sha1.Sum(body)
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("ETag", hex.EncodeToString(sum[:]))
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
