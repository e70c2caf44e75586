package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging logs every backend call at debug level and failures at warn
func Logging(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			duration := time.Since(start)

			if err != nil {
				logger.Warn("request failed",
					"method", req.Method,
					"path", req.URL.Path,
					"request_id", req.Header.Get(RequestIDHeader),
					"duration", duration,
					"error", err,
				)
				return resp, err
			}

			level := slog.LevelDebug
			if resp.StatusCode >= 500 {
				level = slog.LevelWarn
			}
			logger.Log(req.Context(), level, "request completed",
				"method", req.Method,
				"path", req.URL.Path,
				"status", resp.StatusCode,
				"request_id", req.Header.Get(RequestIDHeader),
				"duration", duration,
			)
			return resp, nil
		})
	}
}
