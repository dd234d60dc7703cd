// Package api implements the definitions dev server: a small HTTP service
// that holds one definitions document in memory and serves it to SDK clients
// with ETag revalidation and an SSE change stream. It exists for local
// development and integration testing; production definitions come from the
// real delivery network.
package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TimurManjosov/gobucket/internal/telemetry"
)

// maxPayloadSize caps admin definition uploads (4 MiB).
const maxPayloadSize = 4 << 20

// document is one immutable definitions snapshot served to clients.
type document struct {
	payload []byte
	etag    string
}

// Server serves a definitions document.
type Server struct {
	adminAPIKey    string
	rateLimitPerIP int

	current atomic.Pointer[document]
	subs    *notifier
}

// NewServer creates a server seeded with payload (may be nil for an empty
// document).
func NewServer(adminKey string, rateLimitPerIP int, payload []byte) *Server {
	s := &Server{
		adminAPIKey:    adminKey,
		rateLimitPerIP: rateLimitPerIP,
		subs:           newNotifier(),
	}
	if payload == nil {
		payload = []byte(`{"features":{},"overrides":{}}`)
	}
	s.current.Store(makeDocument(payload))
	return s
}

func makeDocument(payload []byte) *document {
	sum := sha256.Sum256(payload)
	return &document{payload: payload, etag: `W/"` + hex.EncodeToString(sum[:]) + `"`}
}

// Replace validates and swaps in a new definitions payload, notifying SSE
// subscribers.
func (s *Server) Replace(payload []byte) error {
	if err := json.Unmarshal(payload, &struct{}{}); err != nil {
		return err
	}
	doc := makeDocument(payload)
	s.current.Store(doc)
	s.subs.publish(doc.etag)
	return nil
}

// ETag returns the current document's validator.
func (s *Server) ETag() string {
	return s.current.Load().etag
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(telemetry.Middleware)
	if s.rateLimitPerIP > 0 {
		r.Use(httprate.LimitByIP(s.rateLimitPerIP, time.Minute))
	}

	// health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	// public: definitions snapshot (ETag)
	r.Get("/v1/definitions", func(w http.ResponseWriter, req *http.Request) {
		doc := s.current.Load()
		if inm := req.Header.Get("If-None-Match"); inm != "" && inm == doc.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", doc.etag)
		_, _ = w.Write(doc.payload)
	})

	// public: change stream
	r.Get("/v1/definitions/stream", s.handleStream)

	// admin (protected): replace definitions
	r.Put("/v1/definitions", s.authAdmin(s.handleReplace))

	return r
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadSize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}
	if err := s.Replace(payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "etag": s.ETag()})
}

// authAdmin wraps a handler with a constant-time bearer key check.
func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminAPIKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return ""
	}
	return auth[len(prefix):]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
