package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vfg2006/marketing-analyst/internal/observability"
)

// MetricsMiddleware registra contagem e latência por rota. O endpoint é o padrão da rota, não o caminho real.
func MetricsMiddleware(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := newLoggingResponseWriter(w)

			next.ServeHTTP(lrw, r)

			observability.RequestLatency.WithLabelValues(endpoint, r.Method).Observe(time.Since(start).Seconds())
			observability.RequestCount.WithLabelValues(endpoint, r.Method, strconv.Itoa(lrw.statusCode)).Inc()
		})
	}
}
