// Package httpapi exposes the session control surface over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ai-interview-telemetry-service/internal/session"
	"ai-interview-telemetry-service/internal/telemetry"
)

// NewRouter constructs the HTTP router for the service. The telemetry client
// is optional; a nil client reports a closed stream.
func NewRouter(ctrl *session.Controller, tc *telemetry.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/v1/session", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			status := struct {
				session.Status
				Telemetry string `json:"telemetry"`
			}{Status: ctrl.Status(), Telemetry: telemetryState(tc)}
			writeJSON(w, http.StatusOK, status)
		})

		r.Post("/recording", func(w http.ResponseWriter, req *http.Request) {
			recording, err := ctrl.ToggleRecording(req.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"recording": recording})
		})

		r.Post("/advance", func(w http.ResponseWriter, req *http.Request) {
			if err := ctrl.Advance(req.Context()); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, ctrl.Status())
		})

		r.Post("/submit", func(w http.ResponseWriter, req *http.Request) {
			summary, err := ctrl.Submit(req.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, summary)
		})
	})

	return r
}

func telemetryState(tc *telemetry.Client) string {
	if tc == nil {
		return telemetry.StateClosed.String()
	}
	return tc.State().String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps controller errors onto HTTP statuses: validation failures
// are the caller's to fix, collaborator failures are retryable upstream
// problems.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, session.ErrAnswerRequired),
		errors.Is(err, session.ErrStillRecording),
		errors.Is(err, session.ErrNoNextQuestion),
		errors.Is(err, session.ErrNotLastQuestion),
		errors.Is(err, session.ErrAlreadyRecording),
		errors.Is(err, session.ErrNotRecording),
		errors.Is(err, session.ErrSubmitInFlight):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrSessionDone):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
