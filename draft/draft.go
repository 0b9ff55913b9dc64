// Package draft keeps unsaved survey edits in local storage so they can
// be recovered after the editor is left without saving.
package draft

import (
	"context"

	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/storage"
)

type Store struct {
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv}
}

func Key(surveyID string) string {
	return storage.DraftPrefix + surveyID
}

func (s *Store) Save(ctx context.Context, surveyID string, v any) error {
	return storage.SetJSON(ctx, s.kv, Key(surveyID), v)
}

// Load decodes the draft of a survey into v. A missing or unreadable draft
// reports false.
func (s *Store) Load(ctx context.Context, surveyID string, v any) bool {
	ok, err := storage.GetJSON(ctx, s.kv, Key(surveyID), v)
	if err != nil {
		log.Debugf("draft.load: %s", err)
		return false
	}
	return ok
}

func (s *Store) Clear(ctx context.Context, surveyID string) {
	err := s.kv.Remove(ctx, Key(surveyID))
	if err != nil {
		log.Debugf("draft.clear: %s", err)
	}
}
