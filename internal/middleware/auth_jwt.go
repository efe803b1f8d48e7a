package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// AdminCookie carries the admin token for the server-rendered pages.
const AdminCookie = "admin_token"

// Issuer is stamped into every admin token.
const Issuer = "supporterboard"

type TokenClaims struct {
	Sub    string `json:"sub"`
	Role   string `json:"role"`
	Exp    int64  `json:"exp"`
	Iat    int64  `json:"iat"`
	Issuer string `json:"iss"`
}

type adminKey string

const (
	adminSubjectKey adminKey = "admin_sub"
)

func SignJWT(secret string, claims TokenClaims) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	headerEnc := base64.RawURLEncoding.EncodeToString(headerJSON)
	payloadEnc := base64.RawURLEncoding.EncodeToString(payloadJSON)
	data := headerEnc + "." + payloadEnc
	return data + "." + hmacSign(secret, data), nil
}

// IssueAdminToken signs an admin token for subject valid for ttl.
func IssueAdminToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if strings.TrimSpace(subject) == "" {
		subject = "admin"
	}
	claims := TokenClaims{Sub: subject, Role: "admin", Iat: now.Unix(), Issuer: Issuer}
	if ttl > 0 {
		claims.Exp = now.Add(ttl).Unix()
	}
	return SignJWT(secret, claims)
}

func hmacSign(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyJWT(secret, token string) (*TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}
	expected := hmacSign(secret, parts[0]+"."+parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var claims TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Exp != 0 && time.Now().Unix() > claims.Exp {
		return nil, ErrTokenExpired
	}
	if claims.Role != "admin" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// TokenFromRequest reads a bearer token, falling back to the admin cookie.
func TokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(AdminCookie); err == nil {
		return c.Value
	}
	return ""
}

// AuthJWT guards admin routes. An empty secret disables the check. denied
// writes the rejection; nil means a plain 401.
func AuthJWT(secret string, denied http.HandlerFunc) func(http.Handler) http.Handler {
	if denied == nil {
		denied = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}
	}
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				denied(w, r)
				return
			}
			claims, err := VerifyJWT(secret, token)
			if err != nil {
				denied(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithAdmin(r.Context(), claims.Sub)))
		})
	}
}

// AdminFromContext returns the authenticated admin subject, if any.
func AdminFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(adminSubjectKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithAdmin(ctx context.Context, subject string) context.Context {
	if strings.TrimSpace(subject) == "" {
		return ctx
	}
	return context.WithValue(ctx, adminSubjectKey, subject)
}
