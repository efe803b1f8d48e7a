package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/csrf"
	"github.com/rs/zerolog"
)

func TestCSRF(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	h := CSRF(key, false, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(csrf.Token(r)))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/admin", nil))
	token := get.Body.String()
	cookies := get.Result().Cookies()
	if token == "" || len(cookies) == 0 {
		t.Fatalf("GET did not issue a token (cookies=%d)", len(cookies))
	}

	post := func(form url.Values) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/supporters", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post(url.Values{"name": {"x"}}); code != http.StatusForbidden {
		t.Fatalf("POST without token = %d, want 403", code)
	}
	if code := post(url.Values{"name": {"x"}, CSRFField: {token}}); code != http.StatusNoContent {
		t.Fatalf("POST with token = %d, want 204", code)
	}
}
