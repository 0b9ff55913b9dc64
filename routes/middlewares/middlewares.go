package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mbolis/ankietio/log"
	"github.com/pkg/errors"
)

// Details of 401 responses. The first two make clients drop their session.
const (
	DetailInvalidToken     = "Nieprawidłowy token"
	DetailExpiredToken     = "Token wygasł"
	DetailNotAuthenticated = "Not authenticated"
)

type ctxKey struct{}

// UserID returns the authenticated user's id, empty for anonymous requests.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Issue signs an access token for the user.
func Issue(secret []byte, userID string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"detail": detail})
}

// Bearer authenticates requests carrying an access token. Requests without
// one pass through anonymously; a bad token is rejected. exists tells
// whether the token's user is still around.
func Bearer(secret []byte, exists func(userID string) bool) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") {
				unauthorized(w, r, DetailInvalidToken)
				return
			}

			var claims jwt.RegisteredClaims
			_, err := parser.ParseWithClaims(strings.TrimSpace(token), &claims, keyFunc)
			if errors.Is(err, jwt.ErrTokenExpired) {
				log.Debugf("auth.bearer: %s", err)
				unauthorized(w, r, DetailExpiredToken)
				return
			}
			if err != nil || claims.Subject == "" || !exists(claims.Subject) {
				log.Debugf("auth.bearer: invalid token (%v)", err)
				unauthorized(w, r, DetailInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Required rejects anonymous requests.
func Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			unauthorized(w, r, DetailNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AccessLog logs one line per request with its status and timing.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   m.Code,
			"bytes":    m.Written,
			"duration": m.Duration.Round(time.Microsecond),
		})
		if m.Code >= 500 {
			entry.Error("request")
		} else {
			entry.Info("request")
		}
	})
}
