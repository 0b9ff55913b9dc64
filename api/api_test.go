package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/mbolis/ankietio/api"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenBox struct {
	mu    sync.Mutex
	token string
}

func (b *tokenBox) Token(context.Context) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, b.token != ""
}

func (b *tokenBox) set(token string) {
	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
}

type mailbox struct {
	mu   sync.Mutex
	last map[string]string
}

func (m *mailbox) send(kind, _, token string) {
	m.mu.Lock()
	m.last[kind] = token
	m.mu.Unlock()
}

func (m *mailbox) token(kind string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[kind]
}

func setup(t *testing.T) (*api.Client, *tokenBox, *mailbox) {
	mail := &mailbox{last: map[string]string{}}
	srv := httptest.NewServer(routes.Wire(routes.NewBackend(routes.Options{
		Secret: "test",
		OnMail: mail.send,
	})))
	t.Cleanup(srv.Close)

	base, err := url.Parse(srv.URL + "/v1/")
	require.NoError(t, err)
	tokens := &tokenBox{}
	return api.New(base, api.Options{Tokens: tokens}), tokens, mail
}

func signUp(t *testing.T, c *api.Client, tokens *tokenBox, mail *mailbox, email string) {
	ctx := context.Background()
	_, err := c.CreateUser(ctx, model.UserCreate{Email: email, Password: "Haslo1234"})
	require.NoError(t, err)
	require.NoError(t, c.SendConfirmationEmail(ctx, email))
	require.NoError(t, c.ConfirmEmail(ctx, mail.token(routes.MailConfirmation)))

	tok, err := c.Login(ctx, model.Credentials{Username: email, Password: "Haslo1234"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	tokens.set(tok.AccessToken)
}

func TestAuth(t *testing.T) {
	ctx := context.Background()
	c, tokens, mail := setup(t)

	_, err := c.CreateUser(ctx, model.UserCreate{Email: "ala@example.com", Password: "Haslo1234"})
	require.NoError(t, err)

	// not confirmed yet
	_, err = c.Login(ctx, model.Credentials{Username: "ala@example.com", Password: "Haslo1234"})
	assert.Equal(t, http.StatusForbidden, httpx.StatusOf(err))

	_, err = c.CreateUser(ctx, model.UserCreate{Email: "ala@example.com", Password: "Haslo1234"})
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Użytkownik z tym adresem email już istnieje.", apiErr.Detail)

	_, err = c.CreateUser(ctx, model.UserCreate{Email: "ola@example.com", Password: "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, httpx.StatusOf(err))

	require.NoError(t, c.SendConfirmationEmail(ctx, "ala@example.com"))
	require.NoError(t, c.ConfirmEmail(ctx, mail.token(routes.MailConfirmation)))
	assert.Error(t, c.ConfirmEmail(ctx, mail.token(routes.MailConfirmation)))

	_, err = c.Login(ctx, model.Credentials{Username: "ala@example.com", Password: "zlehaslo1"})
	assert.Equal(t, http.StatusUnauthorized, httpx.StatusOf(err))

	require.NoError(t, c.SendPasswordResetEmail(ctx, "ala@example.com"))
	require.NoError(t, c.ResetPassword(ctx, mail.token(routes.MailReset), "NoweHaslo1"))
	tok, err := c.Login(ctx, model.Credentials{Username: "ala@example.com", Password: "NoweHaslo1"})
	require.NoError(t, err)
	tokens.set(tok.AccessToken)

	u, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ala@example.com", u.Email)

	_, err = c.AllUsers(ctx)
	assert.Equal(t, http.StatusForbidden, httpx.StatusOf(err))
}

func TestSurveyLifecycle(t *testing.T) {
	ctx := context.Background()
	c, tokens, mail := setup(t)
	signUp(t, c, tokens, mail, "ala@example.com")

	s, err := c.CreateSurvey(ctx, model.SurveyCreate{Name: "Śniadanie", PreventDuplicates: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPrivate, s.Status)

	qs, err := c.ReplaceQuestions(ctx, s.ID, []model.QuestionCreate{
		{Content: "Kawa czy herbata?", AnswerType: model.AnswerClose, Choices: []model.Choice{
			{Position: 0, Content: "Kawa"}, {Position: 1, Content: "Herbata"},
		}},
		{Content: "Uwagi", Position: 1, AnswerType: model.AnswerOpen},
	})
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.NotEmpty(t, qs[0].ID)

	byName, err := c.SurveysByName(ctx, "niad")
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	link, err := c.CreateShareLink(ctx, s.ID, model.ShareLinkCreate{IsActive: ptr(true)})
	require.NoError(t, err)

	// anonymous visitor through the share link
	tokens.set("")
	shared, err := c.SurveyByToken(ctx, link.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, s.ID, shared.ID)
	_, err = c.Survey(ctx, s.ID)
	assert.Equal(t, http.StatusForbidden, httpx.StatusOf(err))

	fp := "device-1"
	dup, err := c.CheckDuplicate(ctx, s.ID, &fp)
	require.NoError(t, err)
	assert.False(t, dup)

	answers := []model.Answer{{QuestionID: qs[0].ID, Response: "Kawa"}, {QuestionID: qs[1].ID, Response: "Pyszne"}}
	require.NoError(t, c.Submit(ctx, model.SubmissionCreate{SurveyID: s.ID, FingerprintAdvanced: &fp, Answers: answers}))

	dup, err = c.CheckDuplicate(ctx, s.ID, &fp)
	require.NoError(t, err)
	assert.True(t, dup)

	err = c.Submit(ctx, model.SubmissionCreate{SurveyID: s.ID, FingerprintAdvanced: &fp, Answers: answers})
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.True(t, apiErr.Contains("Już wypełniłeś"))

	other := "device-2"
	err = c.Submit(ctx, model.SubmissionCreate{SurveyID: s.ID, FingerprintAdvanced: &other, Answers: []model.Answer{
		{QuestionID: qs[0].ID, Response: "Sok"},
	}})
	apiErr, _ = httpx.AsError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.True(t, apiErr.Contains("Opcje odpowiedzi"))

	err = c.Submit(ctx, model.SubmissionCreate{SurveyID: s.ID, FingerprintAdvanced: &other, Answers: []model.Answer{
		{QuestionID: "gone", Response: "x"},
	}})
	apiErr, _ = httpx.AsError(err)
	require.NotNil(t, apiErr)
	assert.True(t, apiErr.Contains("zmodyfikowana"))

	// back to the owner
	signUpToken(t, c, tokens, "ala@example.com")
	subs, err := c.Submissions(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, answers, subs[0].Answers)

	links, err := c.ShareLinks(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, 1, links[0].Clicks)

	got, err := c.Survey(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SubmissionCount)

	pub, err := c.UpdateSurveyStatus(ctx, s.ID, model.StatusPublic)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublic, pub.Status)
	public, err := c.PublicSurveys(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	expired, err := c.UpdateSurveyStatus(ctx, s.ID, model.StatusExpired)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, expired.Status)
	err = c.Submit(ctx, model.SubmissionCreate{SurveyID: s.ID, Answers: answers})
	assert.Equal(t, http.StatusGone, httpx.StatusOf(err))

	require.NoError(t, c.DeleteShareLink(ctx, link.ID))
	_, err = c.SurveyByToken(ctx, link.ShareToken)
	assert.Equal(t, http.StatusNotFound, httpx.StatusOf(err))

	require.NoError(t, c.DeleteSurvey(ctx, s.ID))
	_, err = c.Survey(ctx, s.ID)
	assert.Equal(t, http.StatusNotFound, httpx.StatusOf(err))
}

// signUpToken logs an already confirmed user back in.
func signUpToken(t *testing.T, c *api.Client, tokens *tokenBox, email string) {
	tok, err := c.Login(context.Background(), model.Credentials{Username: email, Password: "Haslo1234"})
	require.NoError(t, err)
	tokens.set(tok.AccessToken)
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()
	c, tokens, mail := setup(t)

	public, err := c.PublicTemplates(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, public)

	signUp(t, c, tokens, mail, "ala@example.com")
	s, err := c.UseTemplate(ctx, public[0].ID)
	require.NoError(t, err)
	assert.Equal(t, public[0].Name, s.Name)
	assert.Len(t, s.Questions, len(public[0].QuestionsData))

	mine, err := c.CreateTemplate(ctx, model.SurveyTemplateCreate{
		Name:     "Mój",
		Category: model.CategoryCustom,
		QuestionsData: []model.TemplateQuestion{
			{Content: "Pytanie", AnswerType: model.AnswerOpen, Choices: []model.Choice{}, Settings: &model.QuestionSettings{}},
		},
	})
	require.NoError(t, err)
	list, err := c.MyTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = c.CreateTemplate(ctx, model.SurveyTemplateCreate{Name: "Zły", Category: "other"})
	assert.Equal(t, http.StatusUnprocessableEntity, httpx.StatusOf(err))

	require.NoError(t, c.DeleteTemplate(ctx, mine.ID))
	_, err = c.Template(ctx, mine.ID)
	assert.Equal(t, http.StatusNotFound, httpx.StatusOf(err))
}

func TestGDPR(t *testing.T) {
	ctx := context.Background()
	c, tokens, mail := setup(t)
	signUp(t, c, tokens, mail, "ala@example.com")
	_, err := c.CreateSurvey(ctx, model.SurveyCreate{Name: "Moja"})
	require.NoError(t, err)

	raw, err := c.MyData(ctx)
	require.NoError(t, err)
	var data struct {
		User    model.User     `json:"user"`
		Surveys []model.Survey `json:"surveys"`
	}
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "ala@example.com", data.User.Email)
	assert.Len(t, data.Surveys, 1)

	export, err := c.ExportData(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(export), `"exported_at"`)

	require.NoError(t, c.DeleteMyData(ctx))
	_, err = c.CurrentUser(ctx)
	apiErr, ok := httpx.AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Nieprawidłowy token", apiErr.Detail)
}

func ptr[T any](v T) *T { return &v }
