// Package theme keeps the light/dark preference of the session.
package theme

import (
	"context"
	"sync"

	"github.com/mbolis/ankietio/event"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/storage"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == Light || t == Dark
}

// MetaColor is the background color announced for the theme.
func (t Theme) MetaColor() string {
	if t == Dark {
		return "#0f172a"
	}
	return "#ffffff"
}

type Consent interface {
	CanUseFunctional() bool
}

// Applier renders a theme on the output device.
type Applier interface {
	ApplyTheme(Theme)
}

type ApplierFunc func(Theme)

func (f ApplierFunc) ApplyTheme(t Theme) { f(t) }

type Store struct {
	kv      storage.Store
	consent Consent
	applier Applier
	feed    event.Feed[Theme]

	mu      sync.RWMutex
	current Theme
}

// New loads the saved theme when functional storage is allowed, otherwise
// starts from Light, and applies it.
func New(ctx context.Context, kv storage.Store, consent Consent, applier Applier) *Store {
	s := &Store{kv: kv, consent: consent, applier: applier, current: Light}
	if consent.CanUseFunctional() {
		saved, ok, err := kv.Get(ctx, storage.KeyTheme)
		if err != nil {
			log.Debugf("theme.load: %s", err)
		}
		if ok && Theme(saved).Valid() {
			s.current = Theme(saved)
		}
	}
	s.apply(s.current)
	return s
}

func (s *Store) Current() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) IsDark() bool {
	return s.Current() == Dark
}

// Set switches theme, persisting it only with functional consent.
func (s *Store) Set(ctx context.Context, t Theme) {
	if !t.Valid() {
		return
	}
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()

	if s.consent.CanUseFunctional() {
		err := s.kv.Set(ctx, storage.KeyTheme, string(t))
		if err != nil {
			log.Debugf("theme.save: %s", err)
		}
	}
	s.apply(t)
	s.feed.Send(t)
}

func (s *Store) Toggle(ctx context.Context) Theme {
	next := Dark
	if s.Current() == Dark {
		next = Light
	}
	s.Set(ctx, next)
	return next
}

// Watch subscribes to theme changes, e.g. to restyle charts.
func (s *Store) Watch() (<-chan Theme, func()) {
	return s.feed.Subscribe(1)
}

func (s *Store) Close() {
	s.feed.Close()
}

func (s *Store) apply(t Theme) {
	if s.applier != nil {
		s.applier.ApplyTheme(t)
	}
}
