package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"balloting-backend/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if len(id) < 1 {
			id = uuid.New().String()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		next.ServeHTTP(w, r)
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		begin := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(begin)

		status := strconv.Itoa(rec.status)
		labels := []string{"endpoint", endpoint, "method", r.Method, "status", status}

		metrics.API.RequestsTotal.With(labels...).Add(1)
		metrics.API.RequestDurationSeconds.With(labels...).Observe(elapsed.Seconds())
		if rec.status >= http.StatusBadRequest {
			metrics.API.RequestErrorsTotal.With(labels...).Add(1)
		}

		log.Debug(
			"request",
			"id", r.Header.Get(RequestIDHeader),
			"method", r.Method,
			"endpoint", endpoint,
			"status", rec.status,
			"elapsed", elapsed,
		)
	})
}
