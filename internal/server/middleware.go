package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gatewalk/pkg/observability"
)

// observe reports each request to the server hooks and, with a logger, logs
// it at debug level. Routes are reported by pattern, not by path, to keep
// metric cardinality bounded.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.Server()
		began := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(began)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		if s.logger != nil {
			s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", elapsed, "id", middleware.GetReqID(r.Context()))
		}
	})
}
