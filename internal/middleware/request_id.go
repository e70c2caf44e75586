package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"arkive/internal/httputil"
)

// RequestIDHeader is the header carrying the correlation ID
const RequestIDHeader = "X-Request-ID"

// RequestID stamps every request with X-Request-ID.
// An ID already in the request context is reused so that a command's
// mutation and its follow-up refresh share one ID.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}

			id := httputil.GetRequestID(req.Context())
			if id == "" {
				id = uuid.NewString()
			}

			// RoundTrippers must not mutate the caller's request
			req = req.Clone(req.Context())
			req.Header.Set(RequestIDHeader, id)
			return next.RoundTrip(req)
		})
	}
}
