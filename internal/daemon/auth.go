package daemon

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "lyricsync"

// authMiddleware returns a middleware that validates bearer credentials.
// If both token and jwtSecret are empty, no authentication is required and
// all requests pass through. Otherwise requests must include
// "Authorization: Bearer <credential>" where the credential is either the
// static token or an HS256 JWT signed with jwtSecret.
func authMiddleware(token, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" && jwtSecret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			credential, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(credential) == "" {
				writeUnauthorized(w, "missing bearer credential")
				return
			}
			credential = strings.TrimSpace(credential)
			if token != "" && subtle.ConstantTimeCompare([]byte(credential), []byte(token)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
			if jwtSecret != "" {
				if _, err := ValidateToken(jwtSecret, credential); err == nil {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeUnauthorized(w, "unauthorized")
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="lyricsync"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"error":%q}`, message)
}

// IssueToken signs an HS256 JWT for subject valid for ttl.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateToken verifies signature, algorithm, issuer, and expiry.
func ValidateToken(secret, raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	return claims, nil
}
