// Package guard remembers, per user, which surveys were already submitted
// from this device.
package guard

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/storage"
)

// Identity names the current user for the storage key.
type Identity interface {
	Subject(ctx context.Context) string
}

type Guard struct {
	kv storage.Store
	id Identity
}

func New(kv storage.Store, id Identity) *Guard {
	return &Guard{kv, id}
}

// Key is the storage key of the current user's marker set.
func (g *Guard) Key(ctx context.Context) string {
	return storage.SubmittedPrefix + g.id.Subject(ctx)
}

// Submitted reports whether surveyID is in the marker set. Unreadable
// sets count as empty.
func (g *Guard) Submitted(ctx context.Context, surveyID string) bool {
	ids, err := g.load(ctx, g.Key(ctx))
	if err != nil {
		log.Debugf("guard.submitted: %s", err)
		return false
	}
	for _, id := range ids {
		if id == surveyID {
			return true
		}
	}
	return false
}

// Mark adds surveyID to the marker set.
func (g *Guard) Mark(ctx context.Context, surveyID string) {
	err := g.kv.Update(ctx, g.Key(ctx), func(old string, ok bool) (string, bool, error) {
		var ids []string
		if ok && json.Unmarshal([]byte(old), &ids) != nil {
			ids = nil
		}
		for _, id := range ids {
			if id == surveyID {
				return old, true, nil
			}
		}
		raw, err := json.Marshal(append(ids, surveyID))
		return string(raw), true, err
	})
	if err != nil {
		log.Debugf("guard.mark: %s", err)
	}
}

// List returns the current user's submitted survey ids.
func (g *Guard) List(ctx context.Context) []string {
	ids, err := g.load(ctx, g.Key(ctx))
	if err != nil {
		log.Debugf("guard.list: %s", err)
	}
	return ids
}

func (g *Guard) load(ctx context.Context, key string) (ids []string, err error) {
	_, err = storage.GetJSON(ctx, g.kv, key, &ids)
	return
}
