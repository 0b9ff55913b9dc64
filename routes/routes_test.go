package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/routes/middlewares"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(t *testing.T, h http.Handler, method, path, token, body string) (int, string) {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	out, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	return w.Code, string(out)
}

func detailOf(t *testing.T, body string) string {
	var d struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &d))
	return d.Detail
}

func newUser(b *Backend, email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := &user{seq: b.next(), ID: newID(), Email: email, Confirmed: true, Role: model.RoleUser, CreatedAt: b.now()}
	b.users[u.ID] = u
	return u.ID
}

func TestBearer(t *testing.T) {
	b := NewBackend(Options{Secret: "s"})
	h := Wire(b)
	id := newUser(b, "ala@example.com")

	status, body := request(t, h, http.MethodGet, "/v1/user/", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, middlewares.DetailNotAuthenticated, detailOf(t, body))

	status, body = request(t, h, http.MethodGet, "/v1/user/", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, middlewares.DetailInvalidToken, detailOf(t, body))

	old, err := middlewares.Issue([]byte("s"), id, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	status, body = request(t, h, http.MethodGet, "/v1/user/", old, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, middlewares.DetailExpiredToken, detailOf(t, body))

	forged, err := middlewares.Issue([]byte("other"), id, time.Minute, time.Now())
	require.NoError(t, err)
	status, _ = request(t, h, http.MethodGet, "/v1/user/", forged, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	good, err := middlewares.Issue([]byte("s"), id, time.Minute, time.Now())
	require.NoError(t, err)
	status, body = request(t, h, http.MethodGet, "/v1/user/", good, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "ala@example.com")

	// public endpoints stay open
	status, _ = request(t, h, http.MethodGet, "/v1/templates/public", "", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestSurveyExpiry(t *testing.T) {
	b := NewBackend(Options{Secret: "s"})
	h := Wire(b)
	id := newUser(b, "ala@example.com")
	token, err := middlewares.Issue([]byte("s"), id, time.Hour, time.Now())
	require.NoError(t, err)

	status, body := request(t, h, http.MethodPost, "/v1/survey/", token, `{"name":"Krótka","expires_delta":1,"status":"public"}`)
	require.Equal(t, http.StatusCreated, status)
	var s model.Survey
	require.NoError(t, json.Unmarshal([]byte(body), &s))
	require.NotNil(t, s.ExpiresAt)

	b.Now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	status, body = request(t, h, http.MethodGet, "/v1/survey/"+s.ID+"/public", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"status":"expired"`)

	status, body = request(t, h, http.MethodPost, "/v1/submissions/", "", `{"survey_id":"`+s.ID+`","answers":[]}`)
	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, DetailSurveyExpired, detailOf(t, body))

	status, body = request(t, h, http.MethodGet, "/v1/survey/public", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body)
}

func TestCreateSurveyValidation(t *testing.T) {
	b := NewBackend(Options{Secret: "s"})
	h := Wire(b)
	token, err := middlewares.Issue([]byte("s"), newUser(b, "ala@example.com"), time.Hour, time.Now())
	require.NoError(t, err)

	status, body := request(t, h, http.MethodPost, "/v1/survey/", token, `{"name":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body, `"loc":["body","name"]`)

	status, _ = request(t, h, http.MethodPost, "/v1/survey/", token, `{"name":"`+strings.Repeat("a", 256)+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestOwnership(t *testing.T) {
	b := NewBackend(Options{Secret: "s"})
	h := Wire(b)
	ala, err := middlewares.Issue([]byte("s"), newUser(b, "ala@example.com"), time.Hour, time.Now())
	require.NoError(t, err)
	ola, err := middlewares.Issue([]byte("s"), newUser(b, "ola@example.com"), time.Hour, time.Now())
	require.NoError(t, err)

	status, body := request(t, h, http.MethodPost, "/v1/survey/", ala, `{"name":"Ali"}`)
	require.Equal(t, http.StatusCreated, status)
	var s model.Survey
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	for _, tt := range []struct{ method, path, body string }{
		{http.MethodDelete, "/v1/survey/" + s.ID, ""},
		{http.MethodGet, "/v1/submissions/survey/" + s.ID, ""},
		{http.MethodPost, "/v1/question/" + s.ID + "/", `[]`},
		{http.MethodPost, "/v1/share/" + s.ID, `{}`},
	} {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, _ := request(t, h, tt.method, tt.path, ola, tt.body)
			assert.Equal(t, http.StatusForbidden, status)
		})
	}

	status, _ = request(t, h, http.MethodDelete, "/v1/survey/"+s.ID, ala, "")
	assert.Equal(t, http.StatusNoContent, status)
}
