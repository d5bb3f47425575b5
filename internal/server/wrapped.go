package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"royale-wrapped/internal/api"
	"royale-wrapped/internal/insights"
	"royale-wrapped/internal/service"
)

// WrappedProvider is what the handlers need from the service layer.
type WrappedProvider interface {
	PlayerWrapped(ctx context.Context, tag string, refresh bool) (*service.WrappedResult, error)
}

type WrappedServer struct {
	svc      WrappedProvider
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewWrappedServer(svc WrappedProvider, logger zerolog.Logger) *WrappedServer {
	return &WrappedServer{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *WrappedServer) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.root)
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /api/player", s.player)
}

type playerRequest struct {
	Tag     string `json:"tag" validate:"required,min=3,max=20"`
	Refresh bool   `json:"refresh"`
}

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *WrappedServer) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Royale Wrapped API"})
}

func (s *WrappedServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *WrappedServer) player(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Debug().Err(err).Msg("rejecting unreadable request body")
		writeError(w, http.StatusBadRequest, "request body must be JSON with a tag field")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "tag must be between 3 and 20 characters")
		return
	}

	result, err := s.svc.PlayerWrapped(r.Context(), req.Tag, req.Refresh)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: result})
}

func (s *WrappedServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	switch {
	case errors.Is(err, service.ErrInvalidTag):
		writeError(w, http.StatusBadRequest,
			"invalid tag format, tags are 3-15 uppercase letters and numbers, optionally prefixed with #")
	case errors.Is(err, api.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, "player not found, check the tag and try again")
	case errors.Is(err, api.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	case errors.Is(err, api.ErrForbidden):
		writeError(w, http.StatusBadGateway, "upstream api rejected the configured token")
	case errors.Is(err, insights.ErrMalformedBattleLog):
		writeError(w, http.StatusBadGateway, "upstream battle log could not be parsed")
	default:
		logger.Error().Err(err).Msg("wrapped request failed")
		writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
