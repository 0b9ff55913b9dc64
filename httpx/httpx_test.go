package httpx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		detail  string
		message string
	}{
		{"string detail", `{"detail": "Ankieta została zmodyfikowana"}`, "Ankieta została zmodyfikowana", ""},
		{"validation array", `{"detail": [{"msg": "field required"}, {"msg": "too short"}]}`, "field required, too short", ""},
		{"message field", `{"message": "Błąd"}`, "", "Błąd"},
		{"plain text", "Bad Gateway", "Bad Gateway", ""},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ParseError(http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.detail, e.Detail)
			assert.Equal(t, tt.message, e.Message)
		})
	}
}

func TestDescribe(t *testing.T) {
	m := Messages{
		TooManyRequests: "throttled",
		Conflict:        "conflict",
		Gone:            "gone",
		Generic:         "generic",
	}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"429", &Error{Status: 429}, "throttled"},
		{"409 wrapped", errors.Wrap(&Error{Status: 409}, "api.user.create"), "conflict"},
		{"410", &Error{Status: 410}, "gone"},
		{"unmapped status", &Error{Status: 403}, "generic"},
		{"transport error", errors.New("connection refused"), "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err, m))
		})
	}

	m.PreferServer = true
	assert.Equal(t, "Za dużo prób", Describe(&Error{Status: 429, Detail: "Za dużo prób"}, m))
	assert.Equal(t, "throttled", Describe(&Error{Status: 429}, m))
}

type staticToken string

func (s staticToken) Token(context.Context) (string, bool) {
	return string(s), s != ""
}

func TestBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		switch r.URL.Path {
		case "/expired":
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail": "Token wygasł"}`)
		case "/denied":
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail": "Nieprawidłowe dane logowania"}`)
		}
	}))
	defer srv.Close()

	expired := 0
	client := &http.Client{Transport: &Bearer{
		Tokens:    staticToken("abc"),
		OnExpired: func(context.Context) { expired++ },
	}}

	resp, err := client.Get(srv.URL + "/ok")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Zero(t, expired)

	resp, err = client.Get(srv.URL + "/denied")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Zero(t, expired)

	resp, err = client.Get(srv.URL + "/expired")
	require.NoError(t, err)
	// the body is still readable after inspection
	e := ReadError(resp)
	resp.Body.Close()
	assert.Equal(t, "Token wygasł", e.Detail)
	assert.Equal(t, 1, expired)
}

func TestBearerGuestIsNotExpired(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail": "Nieprawidłowy token"}`)
	}))
	defer srv.Close()

	expired := 0
	client := &http.Client{Transport: &Bearer{
		Tokens:    staticToken(""),
		OnExpired: func(context.Context) { expired++ },
	}}

	resp, err := client.Get(srv.URL + "/survey/public")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, gotAuth)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, expired)
}
