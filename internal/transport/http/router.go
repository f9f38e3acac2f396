package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"kiddoland-quiz-service/internal/app"
	"kiddoland-quiz-service/internal/domain"
)

// NotificationReader exposes the notification currently shown for a session.
type NotificationReader interface {
	Latest(ctx context.Context, sessionID string) (domain.Notification, bool, error)
}

// NewRouter wires health, websocket and REST routes.
func NewRouter(service *app.QuizService, notes NotificationReader, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", NewWSHandler(service).ServeWS)

	h := &restHandler{service: service, notes: notes}
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.current)
			r.Delete("/", h.end)
			r.Post("/answers", h.answer)
			r.Post("/next", h.next)
			r.Post("/restart", h.restart)
			r.Get("/results", h.results)
			r.Get("/notification", h.notification)
		})
	})
	return r
}

type restHandler struct {
	service *app.QuizService
	notes   NotificationReader
}

type createRequest struct {
	LearnerID string `json:"learnerId"`
	BankID    string `json:"bankId"`
}

type answerRequest struct {
	Option *int `json:"option"`
}

type answerResponse struct {
	Result   domain.AnswerResult `json:"result"`
	Snapshot domain.Snapshot     `json:"snapshot"`
}

func (h *restHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.LearnerID == "" || req.BankID == "" {
		http.Error(w, "learnerId and bankId required", http.StatusBadRequest)
		return
	}
	snap, err := h.service.Start(r.Context(), uuid.NewString(), req.LearnerID, req.BankID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *restHandler) current(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Current(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *restHandler) end(w http.ResponseWriter, r *http.Request) {
	h.service.End(r.Context(), chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *restHandler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == nil {
		http.Error(w, "option required", http.StatusBadRequest)
		return
	}
	res, snap, err := h.service.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), *req.Option)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Result: res, Snapshot: snap})
}

func (h *restHandler) next(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Advance(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *restHandler) restart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Restart(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *restHandler) results(w http.ResponseWriter, r *http.Request) {
	res, feedback, err := h.service.Results(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsPayload{Results: res, Feedback: feedback})
}

func (h *restHandler) notification(w http.ResponseWriter, r *http.Request) {
	if h.notes == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	note, ok, err := h.notes.Latest(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPreconditionViolation):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrBankNotFound):
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}
