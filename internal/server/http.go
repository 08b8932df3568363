package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"gem-profit/internal/engine"
	"gem-profit/internal/notify"
)

// Controller is the part of the engine the HTTP surface drives.
type Controller interface {
	Refresh()
	Inject(msg notify.Message) error
	FeedConnected() bool
}

// HTTPServer serves the overlay over JSON and websocket. It is the engine's Sink.
type HTTPServer struct {
	ctl Controller
	hub *hub
	log *slog.Logger
	mux *chi.Mux

	mu     sync.RWMutex
	latest engine.Status
}

func NewHTTPServer(ctl Controller, logger *slog.Logger) *HTTPServer {
	s := &HTTPServer{
		ctl: ctl,
		hub: newHub(logger),
		log: logger,
		mux: chi.NewRouter(),
	}
	s.mux.Use(chimw.RequestID)
	s.mux.Use(chimw.RealIP)
	s.mux.Use(chimw.Recoverer)
	s.Routes(s.mux)
	go s.hub.run()
	return s
}

func (s *HTTPServer) Router() http.Handler { return s.mux }

// Close stops the websocket hub and disconnects its clients.
func (s *HTTPServer) Close() { s.hub.stop() }

// Publish caches st and pushes its overlay to websocket clients.
func (s *HTTPServer) Publish(st engine.Status) {
	s.mu.Lock()
	s.latest = st
	s.mu.Unlock()
	s.hub.publish(marshalWS("overlay", st.Overlay))
}

func (s *HTTPServer) Latest() engine.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Routes mounts the overlay API.
func (s *HTTPServer) Routes(r chi.Router) {
	r.Get("/ws", s.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.apiHealth)
		r.Get("/overlay", s.apiOverlay)
		r.Get("/prices", s.apiPrices)
		r.Post("/refresh", s.apiRefresh)
		r.Post("/notifications", s.apiNotification)
	})
}

func (s *HTTPServer) serveWS(w http.ResponseWriter, r *http.Request) {
	s.hub.serveWS(w, r, marshalWS("overlay", s.Latest().Overlay))
}

func (s *HTTPServer) apiHealth(w http.ResponseWriter, r *http.Request) {
	st := s.Latest()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"feedConnected": s.ctl.FeedConnected(),
		"pricesReady":   !st.LastRefresh.IsZero(),
	})
}

func (s *HTTPServer) apiOverlay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Latest().Overlay)
}

func (s *HTTPServer) apiPrices(w http.ResponseWriter, r *http.Request) {
	st := s.Latest()
	writeJSON(w, http.StatusOK, map[string]any{
		"lastRefresh": st.LastRefresh,
		"quotes":      st.Quotes,
	})
}

// POST /api/refresh
func (s *HTTPServer) apiRefresh(w http.ResponseWriter, r *http.Request) {
	s.ctl.Refresh()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

// POST /api/notifications { "text": "...", "hover": "..." }
func (s *HTTPServer) apiNotification(w http.ResponseWriter, r *http.Request) {
	var msg notify.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}
	if err := s.ctl.Inject(msg); err != nil {
		if errors.Is(err, engine.ErrBusy) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
