package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"adstudio/internal/adapter/repo"
	"adstudio/internal/domain"
	"adstudio/internal/infra"
	"adstudio/internal/wizard"
)

// EventSummarizer reports aggregated generation events.
type EventSummarizer interface {
	Summary(ctx context.Context, since time.Time) ([]repo.EventStat, error)
}

// App holds the dependencies of the HTTP handlers.
type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Sessions *wizard.Registry
	// Events is nil when no database is configured.
	Events EventSummarizer
	// Models names the text and image backends for the health report.
	Models map[string]string
}

func NewApp(cfg *infra.Config, logger zerolog.Logger, sessions *wizard.Registry) *App {
	return &App{Config: cfg, Logger: logger, Sessions: sessions, Models: map[string]string{}}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}

// fail maps wizard and domain errors onto HTTP responses.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	a.error(w, status, code, err.Error())
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusGone, "session_closed"
	case errors.Is(err, domain.ErrInFlight):
		return http.StatusConflict, "in_flight"
	case errors.Is(err, domain.ErrInputsLocked):
		return http.StatusConflict, "inputs_locked"
	case errors.Is(err, domain.ErrDownstreamExists):
		return http.StatusConflict, "downstream_exists"
	case errors.Is(err, wizard.ErrStale):
		return http.StatusConflict, "result_discarded"
	case errors.Is(err, domain.ErrPrecondition):
		return http.StatusConflict, "precondition_failed"
	case errors.Is(err, domain.ErrUnknownAngle):
		return http.StatusBadRequest, "unknown_angle"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrGeneration), errors.Is(err, domain.ErrProviderFailure):
		return http.StatusBadGateway, "generation_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// session loads the wizard named by the {id} path parameter, writing the
// error response itself when that fails.
func (a *App) session(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return nil, false
	}
	sess, err := a.Sessions.Get(id)
	if err != nil {
		a.fail(w, r, err)
		return nil, false
	}
	if sess.State.Closed() {
		a.fail(w, r, domain.ErrSessionClosed)
		return nil, false
	}
	return sess, true
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
