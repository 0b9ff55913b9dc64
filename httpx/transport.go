package httpx

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mbolis/ankietio/log"
)

// Details of a 401 that mean the stored session is no longer usable.
var sessionExpiredDetails = []string{"Nieprawidłowy token", "Token wygasł"}

const SessionExpiredMessage = "Twoja sesja wygasła. Zaloguj się ponownie."

type TokenSource interface {
	// Token returns the current access token, if any.
	Token(ctx context.Context) (string, bool)
}

// Bearer attaches the session token to every request and reports a session
// that the server rejected as invalid or expired.
type Bearer struct {
	Base   http.RoundTripper
	Tokens TokenSource
	// OnExpired is called after a 401 carrying one of the session
	// expiry details.
	OnExpired func(ctx context.Context)
}

func (b *Bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	base := b.Base
	if base == nil {
		base = http.DefaultTransport
	}

	r = r.Clone(r.Context())
	var sent bool
	if b.Tokens != nil {
		if token, ok := b.Tokens.Token(r.Context()); ok {
			r.Header.Set("Authorization", "Bearer "+token)
			sent = true
		}
	}
	reqID := "-"
	if id, err := uuid.NewV4(); err == nil {
		reqID = id.String()
		r.Header.Set("X-Request-ID", reqID)
	}

	start := time.Now()
	resp, err := base.RoundTrip(r)
	if err != nil {
		log.WithField("request_id", reqID).Debugf("api.%s %s: %s", r.Method, r.URL, err)
		return nil, err
	}
	log.WithFields(log.Fields{
		"request_id": reqID,
		"status":     resp.StatusCode,
		"elapsed":    time.Since(start).Round(time.Millisecond),
	}).Debugf("api.%s %s", r.Method, r.URL)

	// only a session that was actually sent can expire
	if resp.StatusCode == http.StatusUnauthorized && sent && b.OnExpired != nil {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))

		apiErr := ParseError(resp.StatusCode, body)
		for _, d := range sessionExpiredDetails {
			if apiErr.Detail == d {
				b.OnExpired(r.Context())
				break
			}
		}
	}
	return resp, nil
}
