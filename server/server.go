// Package server exposes the bots over HTTP. It is stateless: every request
// carries the full position.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"chess-bots/bots"
	"chess-bots/engine"
	"chess-bots/position"
)

const maxBodyBytes = 1 << 16

type moveRequest struct {
	FEN string `json:"fen"`
	Bot string `json:"bot"`
}

type moveResponse struct {
	Move     string `json:"move,omitempty"`
	FEN      string `json:"fen"`
	GameOver bool   `json:"game_over"`
	Result   string `json:"result,omitempty"`
}

type botDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Elo  int    `json:"elo"`
}

type cacheStatusResponse struct {
	Count    int     `json:"count"`
	Capacity int     `json:"capacity"`
	Usage    float64 `json:"usage"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds the HTTP handler serving the given bots.
func New(registry *bots.Registry) http.Handler {
	h := &handler{registry: registry}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/bots", h.listBots)
	r.Post("/api/move", h.move)
	r.Get("/api/bots/{id}/cache", h.cacheStatus)
	r.Delete("/api/bots/{id}/cache", h.clearCache)
	return r
}

type handler struct {
	registry *bots.Registry
}

func (h *handler) listBots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, lo.Map(h.registry.List(), func(b bots.Bot, _ int) botDTO {
		return botDTO{ID: b.ID(), Name: b.Name(), Elo: b.Elo()}
	}))
}

func (h *handler) move(w http.ResponseWriter, r *http.Request) {
	var payload moveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	pos, err := position.FromFEN(payload.FEN)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bot, ok := h.registry.Get(payload.Bot)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown bot "+payload.Bot)
		return
	}

	if outcome := pos.Outcome(); outcome != position.Ongoing {
		writeJSON(w, http.StatusOK, moveResponse{FEN: pos.FEN(), GameOver: true, Result: outcome.String()})
		return
	}

	start := time.Now()
	m, err := bot.GetMove(r.Context(), pos)
	if errors.Is(err, engine.ErrNoLegalMove) {
		writeJSON(w, http.StatusOK, moveResponse{FEN: pos.FEN(), GameOver: true, Result: pos.Outcome().String()})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("bot", bot.ID()).Str("fen", payload.FEN).Msg("bot failed to move")
		writeError(w, http.StatusInternalServerError, "bot failed to move")
		return
	}
	pos.Push(m)

	resp := moveResponse{Move: position.MoveString(m), FEN: pos.FEN()}
	if outcome := pos.Outcome(); outcome != position.Ongoing {
		resp.GameOver = true
		resp.Result = outcome.String()
	}
	log.Info().
		Str("bot", bot.ID()).
		Str("move", resp.Move).
		Dur("think", time.Since(start)).
		Msg("bot moved")
	writeJSON(w, http.StatusOK, resp)
}

// searcherFor resolves a bot id to its search engine, writing the error
// response itself when there is none.
func (h *handler) searcherFor(w http.ResponseWriter, r *http.Request) (*engine.Searcher, bool) {
	id := chi.URLParam(r, "id")
	bot, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown bot "+id)
		return nil, false
	}
	sb, ok := bot.(*bots.SearchBot)
	if !ok || sb.Searcher().TransTable() == nil {
		writeError(w, http.StatusNotFound, "bot "+id+" keeps no cache")
		return nil, false
	}
	return sb.Searcher(), true
}

func (h *handler) cacheStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.searcherFor(w, r)
	if !ok {
		return
	}
	tt := s.TransTable()
	hits, misses := tt.Stats()
	count, capacity := tt.Len(), tt.Capacity()
	writeJSON(w, http.StatusOK, cacheStatusResponse{
		Count:    count,
		Capacity: capacity,
		Usage:    float64(count) / float64(capacity),
		Hits:     hits,
		Misses:   misses,
	})
}

func (h *handler) clearCache(w http.ResponseWriter, r *http.Request) {
	s, ok := h.searcherFor(w, r)
	if !ok {
		return
	}
	s.Reset()
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// requestLogger is middleware.Logger writing through zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}
