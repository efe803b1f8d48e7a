package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVerifyJWT(t *testing.T) {
	now := time.Now()
	valid, err := IssueAdminToken("s3cret", "ops", time.Hour, now)
	if err != nil {
		t.Fatalf("IssueAdminToken() error: %v", err)
	}
	expired, _ := IssueAdminToken("s3cret", "ops", time.Minute, now.Add(-time.Hour))
	viewer, _ := SignJWT("s3cret", TokenClaims{Sub: "x", Role: "viewer"})

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", valid, nil},
		{"wrong secret", func() string { tok, _ := IssueAdminToken("other", "ops", time.Hour, now); return tok }(), ErrInvalidToken},
		{"expired", expired, ErrTokenExpired},
		{"not admin", viewer, ErrInvalidToken},
		{"garbage", "a.b", ErrInvalidToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := VerifyJWT("s3cret", tc.token)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("VerifyJWT() error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && claims.Sub != "ops" {
				t.Fatalf("claims.Sub = %q", claims.Sub)
			}
		})
	}
}

func TestAuthJWT(t *testing.T) {
	token, _ := IssueAdminToken("s3cret", "ops", time.Hour, time.Now())
	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = AdminFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		secret string
		setup  func(r *http.Request)
		want   int
	}{
		{"disabled without secret", "", nil, http.StatusNoContent},
		{"missing token", "s3cret", nil, http.StatusUnauthorized},
		{"bearer header", "s3cret", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusNoContent},
		{"cookie", "s3cret", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AdminCookie, Value: token}) }, http.StatusNoContent},
		{"bad scheme", "s3cret", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			subject = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/supporters", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			rec := httptest.NewRecorder()
			AuthJWT(tc.secret, nil)(next).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if tc.secret != "" && tc.want == http.StatusNoContent && subject != "ops" {
				t.Fatalf("subject = %q, want ops", subject)
			}
		})
	}
}
