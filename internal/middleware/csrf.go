package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

type contextKey string

const (
	CSRFTokenKey contextKey = "csrf_token"
	RequestIDKey contextKey = "request_id"
)

const csrfCookie = "csrf_token"

func GenerateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("csrf: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// CSRF issues a double-submit token cookie and rejects POSTs whose form
// field or X-CSRF-Token header does not match it.
func CSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(csrfCookie); err == nil && cookie.Value != "" {
			token = cookie.Value
		} else {
			token = GenerateToken()
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		if r.Method == http.MethodPost {
			reqToken := r.FormValue("csrf_token")
			if reqToken == "" {
				reqToken = r.Header.Get("X-CSRF-Token")
			}
			if reqToken != token {
				http.Error(w, "Invalid CSRF Token", http.StatusForbidden)
				return
			}
		}

		ctx := context.WithValue(r.Context(), CSRFTokenKey, token)
		next(w, r.WithContext(ctx))
	}
}

// CSRFToken returns the token injected by CSRF, if any.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}
