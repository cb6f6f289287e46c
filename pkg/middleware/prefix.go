package middleware

import (
	"net/http"
	"strings"
)

// StripPrefix removes prefix from the request path, for requests routed
// through a gateway that mounts the viewer under a sub path. Requests
// without the prefix pass unchanged.
func StripPrefix(prefix string) func(http.Handler) http.Handler {
	prefix = "/" + strings.Trim(prefix, "/")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if prefix == "/" {
				next.ServeHTTP(w, r)
				return
			}

			if r.URL.Path == prefix || strings.HasPrefix(r.URL.Path, prefix+"/") {
				r.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)
				if r.URL.Path == "" {
					r.URL.Path = "/"
				}
				r.URL.RawPath = ""
			}

			next.ServeHTTP(w, r)
		})
	}
}
