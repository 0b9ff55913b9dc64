package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// The helpers below read the token payload without checking its signature.
// They only serve local bookkeeping (storage keys, early logout) and must
// never be used to authorize anything.

func claimsOf(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// Subject identifies the token's user: the first of the sub, user_id and
// id claims that is set, or "unknown". ok is false for undecodable tokens.
func Subject(token string) (subject string, ok bool) {
	claims, ok := claimsOf(token)
	if !ok {
		return "", false
	}
	for _, name := range []string{"sub", "user_id", "id"} {
		if v, set := claims[name]; set && v != nil && v != "" && v != false && v != float64(0) {
			return fmt.Sprint(v), true
		}
	}
	return "unknown", true
}

// Expired reports whether the token's exp claim has passed. Undecodable
// tokens count as expired; tokens without exp never expire here.
func Expired(token string, now time.Time) bool {
	claims, ok := claimsOf(token)
	if !ok {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
