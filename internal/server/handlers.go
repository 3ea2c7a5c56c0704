package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/livecart/housekeeper/internal/scheduler"
)

// CORS headers served by /cors for browser uploads to the storage bucket.
const (
	corsAllowOrigin  = "*"
	corsAllowMethods = "GET, POST, PUT, DELETE, HEAD, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Goog-Upload-Protocol"
)

// CORSHandler answers every method with the storage CORS headers.
func CORSHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", corsAllowOrigin)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("CORS enabled"))
	})
}

// MetricsHandler serves the given gatherer, or the default registry when nil.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Triggerer runs registered jobs on demand.
type Triggerer interface {
	Trigger(ctx context.Context, name string) (scheduler.RunResult, error)
	Jobs() []string
}

type jobList struct {
	Jobs []string `json:"jobs"`
}

// JobsHandler serves GET / (list jobs) and POST /{name}/run.
// A run returns 200 with the RunResult, 404 for an unknown job and 500 with
// the RunResult when the job fails.
func JobsHandler(t Triggerer) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, jobList{Jobs: t.Jobs()})
	})
	r.Post("/{name}/run", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		res, err := t.Trigger(req.Context(), name)
		switch {
		case errors.Is(err, scheduler.ErrUnknownJob):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, res)
		default:
			writeJSON(w, http.StatusOK, res)
		}
	})
	return r
}
