package middleware

import (
	"net/http"
)

// TokenSource supplies the current bearer token; empty means anonymous
type TokenSource interface {
	Token() string
}

// Auth attaches "Authorization: Bearer <token>" when a token is available.
// The token is read per request so login and logout take effect immediately.
func Auth(src TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			token := src.Token()
			if token == "" || req.Header.Get("Authorization") != "" {
				return next.RoundTrip(req)
			}

			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(req)
		})
	}
}
