package draft

import (
	"context"
	"sync"
	"time"

	"github.com/mbolis/ankietio/log"
)

const (
	DefaultSettle  = 500 * time.Millisecond
	DefaultPersist = 30 * time.Second
)

// Autosave wires a stream of form values to the draft store: after Settle
// of quiet the value counts as an unsaved change (OnDirty), and after
// Persist of quiet on those changes it is written as the survey's draft.
type Autosave[T any] struct {
	Drafts   *Store
	SurveyID string
	Settle   time.Duration
	Persist  time.Duration
	OnDirty  func(T)
	// OnSaved is optional; it observes every draft write.
	OnSaved func(T, error)
}

// Run starts the pipeline. It stops, discarding anything not yet
// persisted, when ctx ends; the returned channel is closed once both
// stages have returned.
func (a Autosave[T]) Run(ctx context.Context, changes <-chan T) <-chan struct{} {
	settle, persist := a.Settle, a.Persist
	if settle <= 0 {
		settle = DefaultSettle
	}
	if persist <= 0 {
		persist = DefaultPersist
	}

	var wg sync.WaitGroup
	wg.Add(2)

	dirty := make(chan T)
	go func() {
		defer wg.Done()
		defer close(dirty)
		for v := range Distinct(ctx, Debounce(ctx, changes, settle)) {
			if ctx.Err() != nil {
				return
			}
			if a.OnDirty != nil {
				a.OnDirty(v)
			}
			select {
			case dirty <- v:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for v := range Debounce(ctx, dirty, persist) {
			if ctx.Err() != nil {
				return
			}
			err := a.Drafts.Save(ctx, a.SurveyID, v)
			if err != nil {
				log.Debugf("draft.autosave: %s", err)
			}
			if a.OnSaved != nil {
				a.OnSaved(v, err)
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}
