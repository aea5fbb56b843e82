package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/thoughtline/thoughtline/internal/domain"
	"github.com/thoughtline/thoughtline/internal/render"
	"github.com/thoughtline/thoughtline/internal/service"
	"go.uber.org/zap"
)

type ThoughtHandler struct {
	registry *service.SessionRegistry
	console  *render.Console
	logger   *zap.Logger
}

// NewThoughtHandler wires the submit endpoint. console may be nil;
// rendering is an optional side channel, never part of the submit result.
func NewThoughtHandler(registry *service.SessionRegistry, console *render.Console, logger *zap.Logger) *ThoughtHandler {
	return &ThoughtHandler{registry: registry, console: console, logger: logger}
}

func (h *ThoughtHandler) session(w http.ResponseWriter, r *http.Request) *service.Session {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return nil
	}

	s, err := h.registry.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return nil
		}
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return nil
	}
	return s
}

// Submit accepts one raw thought record. The body is decoded as-is and
// handed to the session untyped; the core owns every shape decision.
func (h *ThoughtHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := s.Submit(raw)
	if err != nil {
		var rej *domain.Rejection
		if errors.As(err, &rej) {
			h.logger.Debug("thought rejected",
				zap.String("session_id", s.ID.String()),
				zap.String("kind", string(rej.Kind)),
				zap.String("field", rej.Field),
			)
			writeJSON(w, http.StatusUnprocessableEntity, rej)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to submit thought")
		return
	}

	if h.console != nil {
		// Best effort; a broken stderr must not fail the submission.
		last := s.History()
		if len(last) > 0 {
			_ = h.console.RenderThought(&last[len(last)-1], summary)
		}
	}

	writeJSON(w, http.StatusOK, summary)
}

type historyResponse struct {
	Thoughts []domain.Thought `json:"thoughts"`
	Count    int              `json:"count"`
}

func (h *ThoughtHandler) History(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	thoughts := s.History()
	writeJSON(w, http.StatusOK, historyResponse{
		Thoughts: thoughts,
		Count:    len(thoughts),
	})
}
