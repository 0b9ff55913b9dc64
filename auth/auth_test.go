package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"sub", jwt.MapClaims{"sub": "u-1", "user_id": "u-2"}, "u-1"},
		{"user_id", jwt.MapClaims{"user_id": "u-2", "id": 3}, "u-2"},
		{"numeric id", jwt.MapClaims{"id": 42}, "42"},
		{"nothing", jwt.MapClaims{"role": "user"}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, ok := Subject(sign(t, tt.claims))
			assert.True(t, ok)
			assert.Equal(t, tt.want, sub)
		})
	}

	_, ok := Subject("not-a-token")
	assert.False(t, ok)
}

func TestExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, Expired(sign(t, jwt.MapClaims{"sub": "u", "exp": now.Add(time.Hour).Unix()}), now))
	assert.True(t, Expired(sign(t, jwt.MapClaims{"sub": "u", "exp": now.Add(-time.Minute).Unix()}), now))
	assert.False(t, Expired(sign(t, jwt.MapClaims{"sub": "u"}), now))
	assert.True(t, Expired("garbage", now))
}

func TestSessionLogsOutExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	s := NewSession(store)
	defer s.Close()

	states, cancel := s.Watch()
	defer cancel()

	assert.Equal(t, "guest", s.Subject(ctx))

	require.NoError(t, s.Set(ctx, sign(t, jwt.MapClaims{"sub": "u-7", "exp": time.Now().Add(time.Hour).Unix()})))
	assert.True(t, (<-states).LoggedIn)
	assert.True(t, s.LoggedIn(ctx))
	assert.Equal(t, "u-7", s.Subject(ctx))

	s.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, ok := s.Token(ctx)
	assert.False(t, ok)
	assert.False(t, (<-states).LoggedIn)
	_, stored, _ := store.Get(ctx, storage.KeyAccessToken)
	assert.False(t, stored)
	assert.Equal(t, "guest", s.Subject(ctx))
}

func TestSessionExpire(t *testing.T) {
	ctx := context.Background()
	s := NewSession(storage.NewMemory())
	states, cancel := s.Watch()
	defer cancel()

	require.NoError(t, s.Set(ctx, sign(t, jwt.MapClaims{"sub": "u"})))
	<-states

	s.Expire(ctx)
	st := <-states
	assert.False(t, st.LoggedIn)
	assert.Equal(t, httpx.SessionExpiredMessage, st.Message)
}

type fakeAPI struct {
	calls []string
	token string
	err   error
}

func (f *fakeAPI) Login(_ context.Context, creds model.Credentials) (model.Token, error) {
	f.calls = append(f.calls, "login:"+creds.Username)
	return model.Token{AccessToken: f.token, TokenType: "bearer"}, f.err
}
func (f *fakeAPI) CreateUser(_ context.Context, in model.UserCreate) (model.User, error) {
	f.calls = append(f.calls, "create:"+in.Email)
	return model.User{Email: in.Email}, f.err
}
func (f *fakeAPI) SendConfirmationEmail(_ context.Context, email string) error {
	f.calls = append(f.calls, "confirm-mail:"+email)
	return nil
}
func (f *fakeAPI) ConfirmEmail(_ context.Context, token string) error {
	f.calls = append(f.calls, "confirm:"+token)
	return nil
}
func (f *fakeAPI) SendPasswordResetEmail(_ context.Context, email string) error {
	f.calls = append(f.calls, "reset-mail:"+email)
	return nil
}
func (f *fakeAPI) ResetPassword(_ context.Context, token, _ string) error {
	f.calls = append(f.calls, "reset:"+token)
	return nil
}

func TestLoginRejectsInvalidFormWithoutRequest(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	c := NewClient(api, NewSession(storage.NewMemory()))

	err := c.Login(ctx, form.Login{Email: "a@b.com", Password: "short"})
	var inv *form.Invalid
	require.ErrorAs(t, err, &inv)
	assert.Empty(t, api.calls)
}

func TestLoginStoresToken(t *testing.T) {
	ctx := context.Background()
	session := NewSession(storage.NewMemory())
	api := &fakeAPI{token: sign(t, jwt.MapClaims{"sub": "u-1"})}
	c := NewClient(api, session)

	require.NoError(t, c.Login(ctx, form.Login{Email: "a@b.com", Password: "Password1"}))
	assert.Equal(t, []string{"login:a@b.com"}, api.calls)
	assert.True(t, session.LoggedIn(ctx))

	require.NoError(t, c.Logout(ctx))
	assert.False(t, session.LoggedIn(ctx))
}

func TestLoginFailureMessage(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{err: &httpx.Error{Status: 429}}
	c := NewClient(api, NewSession(storage.NewMemory()))

	err := c.Login(ctx, form.Login{Email: "a@b.com", Password: "Password1"})
	require.Error(t, err)
	assert.Equal(t, "Zbyt wiele prób logowania. Spróbuj ponownie później.", httpx.Describe(err, LoginMessages))

	api.err = &httpx.Error{Status: 401, Detail: "Nieprawidłowe dane logowania"}
	err = c.Login(ctx, form.Login{Email: "a@b.com", Password: "Password1"})
	assert.Equal(t, "Nieprawidłowe dane logowania", httpx.Describe(err, LoginMessages))
}

func TestRegisterSendsConfirmation(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	c := NewClient(api, NewSession(storage.NewMemory()))

	mailErr, err := c.Register(ctx, form.Register{Email: "a@b.pl", Password: "Abcdefg1", ConfirmPassword: "Abcdefg1"})
	require.NoError(t, err)
	require.NoError(t, mailErr)
	assert.Equal(t, []string{"create:a@b.pl", "confirm-mail:a@b.pl"}, api.calls)

	api.err = &httpx.Error{Status: 409}
	_, err = c.Register(ctx, form.Register{Email: "a@b.pl", Password: "Abcdefg1", ConfirmPassword: "Abcdefg1"})
	assert.Equal(t, "Użytkownik z tym adresem email już istnieje.", httpx.Describe(err, RegisterMessages))
}
