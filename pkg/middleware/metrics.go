package middleware

import (
	"net/http"
	"staybook/pkg/metrics"
	"time"
)

func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			m.HTTPRequest(r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
