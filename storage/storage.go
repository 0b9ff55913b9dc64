// Package storage is the local key/value store that persists tokens,
// consent, theme, submission markers and drafts between runs.
package storage

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Keys persisted by the client.
const (
	KeyAccessToken = "access_token"
	KeyTheme       = "ankietio-theme"
	KeyConsent     = "user-consent"
	KeyVisitorID   = "fp_visitor_id"

	SubmittedPrefix = "submittedSurveys_"
	DraftPrefix     = "survey-draft-"
)

// UpdateFunc receives the current value of a key (ok is false when absent)
// and returns the value to store. Returning keep=false removes the key.
type UpdateFunc func(old string, ok bool) (value string, keep bool, err error)

type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	// Update performs an atomic read-modify-write of a single key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// GetJSON decodes the JSON value stored under key into v.
func GetJSON(ctx context.Context, s Store, key string, v any) (ok bool, err error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return
	}
	err = json.Unmarshal([]byte(raw), v)
	if err != nil {
		return false, errors.Wrapf(err, "storage.get_json.%s", key)
	}
	return
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "storage.set_json.%s", key)
	}
	return s.Set(ctx, key, string(raw))
}
