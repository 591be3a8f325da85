package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hemlix/simkb/pkg/domain/model"
	"github.com/hemlix/simkb/pkg/domain/types"
	"github.com/hemlix/simkb/pkg/utils/errutil"
	"github.com/hemlix/simkb/pkg/utils/safe"
)

// ChatUseCase is the slice of the chat use case the HTTP layer needs.
type ChatUseCase interface {
	Chat(ctx context.Context, sessionID types.SessionID, message string) (string, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

type Server struct {
	router *chi.Mux
	chat   ChatUseCase
}

type Options func(*Server)

func New(chat ChatUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		chat:   chat,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/sim", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/stats", s.handleStats)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to decode chat request"), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		respondJSON(w, r, http.StatusBadRequest, chatResponse{
			Success:   false,
			Error:     "message is required",
			SessionID: req.SessionID,
		})
		return
	}

	sessionID := types.SessionID(req.SessionID)
	if sessionID == "" {
		sessionID = types.NewSessionID()
	}

	answer, err := s.chat.Chat(ctx, sessionID, req.Message)
	if err != nil {
		// Log the full error server side; the client only sees a generic
		// message so internal details never leave the process.
		errutil.Handle(ctx, err, "chat turn failed")
		respondJSON(w, r, http.StatusInternalServerError, chatResponse{
			Success:   false,
			Error:     "failed to process message",
			SessionID: string(sessionID),
		})
		return
	}

	respondJSON(w, r, http.StatusOK, chatResponse{
		Success:   true,
		Response:  answer,
		SessionID: string(sessionID),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.chat.Stats(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to collect stats"), http.StatusInternalServerError)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"organizations":    stats.Organizations,
		"products":         stats.Products,
		"roles":            stats.Roles,
		"documents":        stats.Documents,
		"chunks":           stats.Chunks,
		"search_available": stats.SearchAvailable(),
	})
}

func respondJSON(w http.ResponseWriter, r *http.Request, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(r.Context(), w, data)
}
