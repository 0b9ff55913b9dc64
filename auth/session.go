package auth

import (
	"context"
	"time"

	"github.com/mbolis/ankietio/event"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/storage"
)

// State is the login state broadcast to subscribers. Message explains a
// logout the user did not ask for.
type State struct {
	LoggedIn bool
	Message  string
}

// Session owns the persisted access token.
type Session struct {
	store storage.Store
	feed  event.Feed[State]
	Now   func() time.Time
}

func NewSession(store storage.Store) *Session {
	return &Session{store: store, Now: time.Now}
}

// Stored returns the persisted token as is.
func (s *Session) Stored(ctx context.Context) (string, bool) {
	token, ok, err := s.store.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		log.Debugf("auth.session.get: %s", err)
		return "", false
	}
	return token, ok && token != ""
}

// Token returns the token to authenticate with. An expired or undecodable
// token logs the session out instead.
func (s *Session) Token(ctx context.Context) (string, bool) {
	token, ok := s.Stored(ctx)
	if !ok {
		return "", false
	}
	if Expired(token, s.Now()) {
		log.Debug("auth.session.token: expired, logging out")
		s.logout(ctx, "")
		return "", false
	}
	return token, true
}

func (s *Session) LoggedIn(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

// Subject is the user part of per-user storage keys: the decoded subject
// of a usable token, or "guest".
func (s *Session) Subject(ctx context.Context) string {
	token, ok := s.Token(ctx)
	if !ok {
		return "guest"
	}
	sub, ok := Subject(token)
	if !ok {
		return "guest"
	}
	return sub
}

func (s *Session) Set(ctx context.Context, token string) error {
	err := s.store.Set(ctx, storage.KeyAccessToken, token)
	if err != nil {
		return err
	}
	s.feed.Send(State{LoggedIn: true})
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	return s.logout(ctx, "")
}

// Expire ends a session the server no longer accepts.
func (s *Session) Expire(ctx context.Context) {
	err := s.logout(ctx, httpx.SessionExpiredMessage)
	if err != nil {
		log.Warnf("auth.session.expire: %s", err)
	}
}

func (s *Session) logout(ctx context.Context, msg string) error {
	err := s.store.Remove(ctx, storage.KeyAccessToken)
	if err != nil {
		return err
	}
	s.feed.Send(State{LoggedIn: false, Message: msg})
	return nil
}

// Watch subscribes to login state changes.
func (s *Session) Watch() (<-chan State, func()) {
	return s.feed.Subscribe(4)
}

func (s *Session) Close() {
	s.feed.Close()
}
