// Package consent records which optional storage the user agreed to:
// functional (theme) and fingerprinting. Necessary storage is always on.
package consent

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mbolis/ankietio/event"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/storage"
)

const PolicyVersion = "1.0"

// ISOTime is the timestamp layout of stored records.
const ISOTime = "2006-01-02T15:04:05.000Z"

type Preferences struct {
	Necessary      bool   `json:"necessary"`
	Functional     bool   `json:"functional"`
	Fingerprinting bool   `json:"fingerprinting"`
	Timestamp      string `json:"timestamp"`
	Version        string `json:"version"`
}

// Choice is what the user can decide on.
type Choice struct {
	Functional     bool
	Fingerprinting bool
}

type Store struct {
	kv   storage.Store
	Now  func() time.Time
	feed event.Feed[*Preferences]

	mu      sync.RWMutex
	current *Preferences
}

// New loads the stored preferences; an unreadable record counts as no
// decision yet.
func New(ctx context.Context, kv storage.Store) *Store {
	s := &Store{kv: kv, Now: time.Now}
	var p Preferences
	ok, err := storage.GetJSON(ctx, kv, storage.KeyConsent, &p)
	if err != nil {
		log.Debugf("consent.load: %s", err)
	}
	if ok && err == nil {
		s.current = &p
	}
	return s
}

// Save records a decision. Withdrawing fingerprinting consent deletes the
// cached visitor id right away.
func (s *Store) Save(ctx context.Context, c Choice) error {
	p := &Preferences{
		Necessary:      true,
		Functional:     c.Functional,
		Fingerprinting: c.Fingerprinting,
		Timestamp:      s.Now().UTC().Format(ISOTime),
		Version:        PolicyVersion,
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}

	var previous Preferences
	err = s.kv.Update(ctx, storage.KeyConsent, func(old string, ok bool) (string, bool, error) {
		if ok && json.Unmarshal([]byte(old), &previous) != nil {
			previous = Preferences{}
		}
		return string(raw), true, nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.current != nil && s.current.Fingerprinting {
		previous.Fingerprinting = true
	}
	s.current = p
	s.mu.Unlock()

	if previous.Fingerprinting && !p.Fingerprinting {
		err = s.kv.Remove(ctx, storage.KeyVisitorID)
		if err != nil {
			return err
		}
	}

	s.feed.Send(p.clone())
	return nil
}

func (s *Store) AcceptAll(ctx context.Context) error {
	return s.Save(ctx, Choice{Functional: true, Fingerprinting: true})
}

func (s *Store) AcceptNecessaryOnly(ctx context.Context) error {
	return s.Save(ctx, Choice{})
}

// Get returns a copy of the current preferences, nil if the user never decided.
func (s *Store) Get() *Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

func (s *Store) Has() bool {
	return s.Get() != nil
}

func (s *Store) CanUseFingerprinting() bool {
	p := s.Get()
	return p != nil && p.Fingerprinting
}

func (s *Store) CanUseFunctional() bool {
	p := s.Get()
	return p != nil && p.Functional
}

// Clear forgets the decision, so the user is asked again.
func (s *Store) Clear(ctx context.Context) error {
	err := s.kv.Remove(ctx, storage.KeyConsent)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.feed.Send(nil)
	return nil
}

// Watch subscribes to decisions; nil means the consent was cleared.
func (s *Store) Watch() (<-chan *Preferences, func()) {
	return s.feed.Subscribe(4)
}

func (s *Store) Close() {
	s.feed.Close()
}

func (p *Preferences) clone() *Preferences {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
