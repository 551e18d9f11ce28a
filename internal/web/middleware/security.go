// Package middleware provides HTTP middleware for the recognition server.
package middleware

import (
	"net/http"
)

// SecurityHeaders returns middleware that sets Content-Security-Policy and other security headers.
// The page captures camera frames into data: URIs, so camera access stays limited to the same origin.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Security-Policy",
				"default-src 'self'; img-src 'self' data: blob:; "+
					"style-src 'self'; form-action 'self'; frame-ancestors 'none'")
			w.Header().Set("Permissions-Policy", "camera=(self), microphone=()")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "same-origin")
			next.ServeHTTP(w, r)
		})
	}
}
