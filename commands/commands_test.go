package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/mbolis/ankietio/editor"
	"github.com/mbolis/ankietio/fill"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/results"
	"github.com/mbolis/ankietio/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ala@example.com"
	testPassword = "Haslo1234"
)

type session struct {
	t    *testing.T
	url  string
	data string
}

func newSession(t *testing.T) *session {
	srv := httptest.NewServer(routes.Wire(routes.NewBackend(routes.Options{
		Secret:      "test-secret",
		AutoConfirm: true,
		OnMail:      func(kind, email, token string) {},
	})))
	t.Cleanup(srv.Close)
	return &session{t: t, url: srv.URL + "/v1", data: filepath.Join(t.TempDir(), "ankietio.sqlite")}
}

// run runs one command line with stdin as the typed input.
func (s *session) run(stdin string, args ...string) (string, error) {
	s.t.Helper()
	var out bytes.Buffer
	global := []string{"-api-url", s.url, "-origin", "http://ankietio.test", "-data", s.data}
	err := Run(context.Background(), append(global, args...), strings.NewReader(stdin), &out)
	return out.String(), err
}

func (s *session) login() {
	s.t.Helper()
	out, err := s.run(testPassword+"\n", "register", "-email", testEmail, "-password", testPassword)
	require.NoError(s.t, err)
	require.Contains(s.t, out, "Konto utworzone")

	out, err = s.run("", "login", "-email", testEmail, "-password", testPassword)
	require.NoError(s.t, err)
	require.Contains(s.t, out, msgLoggedIn)
}

var createdID = regexp.MustCompile(`Ankieta utworzona: (\S+)`)

func (s *session) create(name string, script ...string) string {
	s.t.Helper()
	out, err := s.run(strings.Join(script, "\n")+"\n", "create", name)
	require.NoError(s.t, err)
	m := createdID.FindStringSubmatch(out)
	require.Len(s.t, m, 2, out)
	return m[1]
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), nil, strings.NewReader(""), &out)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "Użycie: ankietio")

	out.Reset()
	err = Run(context.Background(), []string{"nope"}, strings.NewReader(""), &out)
	assert.ErrorIs(t, err, ErrUsage)

	out.Reset()
	err = Run(context.Background(), []string{"help"}, strings.NewReader(""), &out)
	require.NoError(t, err)
	for _, c := range All() {
		assert.Contains(t, out.String(), "  "+c.Name+" ")
	}
}

func TestCommandsAreSorted(t *testing.T) {
	all := All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
}

func TestLoginRequired(t *testing.T) {
	s := newSession(t)
	for _, args := range [][]string{{"dashboard"}, {"surveys"}, {"create", "X"}, {"results", "1"}} {
		_, err := s.run("", args...)
		assert.Equal(t, Failure(msgLoginRequired), err, args[0])
	}
}

func TestLoginFailure(t *testing.T) {
	s := newSession(t)
	_, err := s.run("", "login", "-email", testEmail, "-password", "Zle12345")
	var f Failure
	require.ErrorAs(t, err, &f)
	assert.NotEmpty(t, f.Error())

	_, err = s.run("", "login", "-email", "not-an-email", "-password", "x")
	require.ErrorAs(t, err, &f)
	assert.True(t, strings.HasPrefix(f.Error(), "Formularz zawiera błędy:"), f.Error())
}

func TestSurveyLifecycle(t *testing.T) {
	s := newSession(t)
	s.login()

	out, err := s.run("", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Witaj, "+testEmail)
	assert.Contains(t, out, msgNoSurveys)

	id := s.create("Ankieta testowa",
		"text 1 Jak się masz?",
		"add close Ulubiony kolor?",
		"optset 2 1 Czerwony",
		"optset 2 2 Zielony",
		"save",
	)

	out, err = s.run("", "surveys")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Ankieta testowa")
	assert.Contains(t, out, "Prywatna")

	out, err = s.run("", "view", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Jak się masz?")
	assert.Contains(t, out, "Zielony")

	_, err = s.run("", "status", id, "public")
	require.NoError(t, err)
	out, err = s.run("", "public-surveys")
	require.NoError(t, err)
	assert.Contains(t, out, "Ankieta testowa")

	out, err = s.run("", "results", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Odpowiedzi:        0")
	assert.Contains(t, out, msgNoResponses)

	_, err = s.run("", "results", "-csv", "-dir", t.TempDir(), id)
	assert.Equal(t, Failure(results.MsgNoData), err)

	_, err = s.run("n\n", "delete", id)
	require.NoError(t, err)
	out, err = s.run("", "surveys")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = s.run("", "delete", "-yes", id)
	require.NoError(t, err)
	assert.Contains(t, out, msgSurveyDeleted)
	out, err = s.run("", "surveys")
	require.NoError(t, err)
	assert.Contains(t, out, msgNoSurveys)
}

func TestCreateCanceledByEndOfInput(t *testing.T) {
	s := newSession(t)
	s.login()

	out, err := s.run("text 1 Pytanie\n", "create", "Porzucona")
	require.NoError(t, err)
	assert.Contains(t, out, msgCanceled)

	out, err = s.run("", "surveys")
	require.NoError(t, err)
	assert.Contains(t, out, msgNoSurveys)
}

func TestEditKeepsDraftOnEndOfInput(t *testing.T) {
	s := newSession(t)
	s.login()
	id := s.create("Do edycji", "text 1 Pierwsze", "save")

	out, err := s.run("text 1 Zmienione\n", "edit", id)
	require.NoError(t, err)
	assert.Contains(t, out, msgDraftKept)

	out, err = s.run("t\nlist\nsave\n", "edit", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Zmienione")
	assert.Contains(t, out, msgChangesSaved)
}

func TestFillPublicSurvey(t *testing.T) {
	s := newSession(t)
	s.login()
	id := s.create("Publiczna", "text 1 Imię?", "add yes_no Lubisz Go?", "save")
	_, err := s.run("", "status", id, "public")
	require.NoError(t, err)

	out, err := s.run("Ala\ntak\nt\n", "fill", "http://ankietio.test/survey/"+id+"/fill-public")
	require.NoError(t, err)
	assert.Contains(t, out, "Odpowiedziano na 2 z 2 pytań (100%).")

	out, err = s.run("", "fill", "-public", id)
	require.NoError(t, err)
	assert.Contains(t, out, msgAlreadySubmitted)

	out, err = s.run("", "results", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Odpowiedzi:        1")
	assert.Contains(t, out, "Ala")
}

func TestFillInterrupted(t *testing.T) {
	s := newSession(t)
	s.login()
	id := s.create("Przerwana", "text 1 Imię?", "add open Nazwisko?", "save")
	_, err := s.run("", "status", id, "public")
	require.NoError(t, err)

	_, err = s.run("Ala\n", "fill", "-public", id)
	assert.Equal(t, Failure(msgFillInterrupted), err)
}

func TestPrivacyAndPreferences(t *testing.T) {
	s := newSession(t)
	s.login()

	out, err := s.run("", "consent")
	require.NoError(t, err)
	assert.Contains(t, out, msgNoConsent)

	out, err = s.run("", "consent", "accept-all")
	require.NoError(t, err)
	assert.Contains(t, out, "[✓] Preferencje zapisane!")

	out, err = s.run("", "theme", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "Motyw: dark")
	out, err = s.run("", "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "Motyw: dark")

	out, err = s.run("", "privacy")
	require.NoError(t, err)
	assert.Contains(t, out, "access_token")
	assert.Contains(t, out, "ankietio-theme")
	assert.Contains(t, out, "Fingerprinting:  tak")

	dir := t.TempDir()
	out, err = s.run("", "privacy", "export", "-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "ankietio-local-data-"))

	_, err = s.run("NIE\n", "privacy", "delete-account")
	require.NoError(t, err)
	_, err = s.run("", "dashboard")
	require.NoError(t, err)

	out, err = s.run("USUŃ\n", "privacy", "delete-account")
	require.NoError(t, err)
	assert.Contains(t, out, "Konto zostało usunięte")

	_, err = s.run("", "dashboard")
	assert.Equal(t, Failure(msgLoginRequired), err)
}

func TestMockServerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var out bytes.Buffer
	err := Run(ctx, []string{"-data", "", "mock-server", "-addr", "127.0.0.1:0"}, strings.NewReader(""), &out)
	assert.NoError(t, err)
}

func TestSplitArgs(t *testing.T) {
	words, rest := splitArgs("  optset 2 1  Czerwony kolor ", 3)
	assert.Equal(t, []string{"optset", "2", "1"}, words)
	assert.Equal(t, "Czerwony kolor", rest)

	words, rest = splitArgs("list", 2)
	assert.Equal(t, []string{"list"}, words)
	assert.Empty(t, rest)
}

func TestTarget(t *testing.T) {
	tests := []struct {
		arg           string
		token, public bool
		want          fill.Target
	}{
		{"http://localhost:4200/survey/fill/abc", false, false, fill.ByToken("abc")},
		{"http://localhost:4200/survey/42/fill-public", false, false, fill.PublicByID("42")},
		{"abc", true, false, fill.ByToken("abc")},
		{"42", false, true, fill.PublicByID("42")},
		{"42", false, false, fill.ByID("42")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, target(tt.arg, tt.token, tt.public), tt.arg)
	}
}

func TestPlural(t *testing.T) {
	tests := map[int]string{
		1:  "1 pytanie",
		2:  "2 pytania",
		4:  "4 pytania",
		5:  "5 pytań",
		12: "12 pytań",
		22: "22 pytania",
		25: "25 pytań",
	}
	for n, want := range tests {
		assert.Equal(t, want, plural(n, "pytanie", "pytania", "pytań"))
	}
}

func TestPrompter(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("tak\nnie\nostatnia"), &out)
	ctx := context.Background()

	assert.True(t, p.Confirm(ctx, "Na pewno?"))
	assert.Contains(t, out.String(), "Na pewno? [t/N] ")
	assert.False(t, p.Confirm(ctx, "Na pewno?"))

	line, err := p.Ask(ctx, "> ")
	require.NoError(t, err)
	assert.Equal(t, "ostatnia", line)

	_, err = p.Ask(ctx, "> ")
	assert.Error(t, err)
	assert.False(t, p.Confirm(ctx, "Na pewno?"))
}

func TestApply(t *testing.T) {
	var out bytes.Buffer
	env := &Env{Out: &out}
	ctx := context.Background()
	var l editor.List
	ed := listEditor{&l}

	for _, line := range []string{
		"add Imię?",
		"add multiple Języki?",
		"optset 2 1 Go",
		"optset 2 2 Rust",
		"opt 2 Zig",
		"add Zbędne",
		"dup 1",
		"rm 4",
	} {
		require.NoError(t, apply(ctx, env, ed, line), line)
	}

	require.Equal(t, 3, l.Len())
	assert.Equal(t, "Imię?", l.Questions[0].Content)
	assert.Equal(t, "Imię?"+" (kopia)", l.Questions[1].Content)
	assert.Equal(t, model.AnswerMultiple, l.Questions[2].AnswerType)
	require.Len(t, l.Questions[2].Choices, 3)
	assert.Equal(t, "Zig", l.Questions[2].Choices[2].Content)

	assert.Error(t, apply(ctx, env, ed, "type 1 nope"))
	assert.Error(t, apply(ctx, env, ed, "rm 9"))
	assert.Error(t, apply(ctx, env, ed, "rm x"))
	assert.Error(t, apply(ctx, env, ed, "optrm 3"))
	assert.Error(t, apply(ctx, env, ed, "frobnicate"))

	require.NoError(t, apply(ctx, env, ed, "optrm 3 1"))
	assert.Equal(t, "Rust", l.Questions[2].Choices[0].Content)
}
