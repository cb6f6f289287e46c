package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/pitchpilot/pitch-analyzer/pkg/requestid"
)

// RequestID gets the request ID from the X-Request-Id header, or from chi's
// RequestID middleware, or generates one. The id is stored with the requestid
// package and echoed back in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if id == "" {
			id = middleware.GetReqID(r.Context())
		}
		if id == "" {
			id = requestid.Generate()
		}

		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.ToContext(r.Context(), id)))
	})
}
