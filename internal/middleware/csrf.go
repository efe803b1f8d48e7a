package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/rs/zerolog"
)

// CSRFField is the form field carrying the token.
const CSRFField = "csrf_token"

// CSRF protects the server-rendered admin forms. Plain HTTP requests skip the
// TLS-only referer check unless secure cookies are on.
func CSRF(key []byte, secure bool, logger zerolog.Logger) func(http.Handler) http.Handler {
	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(CSRFField),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn().
				Err(csrf.FailureReason(r)).
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("path", r.URL.Path).
				Msg("csrf check failed")
			http.Error(w, "forbidden", http.StatusForbidden)
		})),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil && !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}
