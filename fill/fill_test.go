package fill

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/guard"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/storage"
	"github.com/mbolis/ankietio/toast"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	survey    model.Survey
	loadErr   error
	dup       bool
	dupErr    error
	submitErr error

	calls     []string
	submitted []model.SubmissionCreate
	checkedFP *string
}

func (b *fakeBackend) get() (model.Survey, error) {
	return b.survey, b.loadErr
}

func (b *fakeBackend) Survey(context.Context, string) (model.Survey, error) {
	b.calls = append(b.calls, "survey")
	return b.get()
}

func (b *fakeBackend) SurveyByToken(context.Context, string) (model.Survey, error) {
	b.calls = append(b.calls, "token")
	return b.get()
}

func (b *fakeBackend) PublicSurvey(context.Context, string) (model.Survey, error) {
	b.calls = append(b.calls, "public")
	return b.get()
}

func (b *fakeBackend) CheckDuplicate(_ context.Context, _ string, fp *string) (bool, error) {
	b.calls = append(b.calls, "check")
	b.checkedFP = fp
	return b.dup, b.dupErr
}

func (b *fakeBackend) Submit(_ context.Context, in model.SubmissionCreate) error {
	b.calls = append(b.calls, "submit")
	b.submitted = append(b.submitted, in)
	return b.submitErr
}

type fakeFP struct {
	id    string
	calls int
}

func (f *fakeFP) Ptr(context.Context) *string {
	f.calls++
	if f.id == "" {
		return nil
	}
	id := f.id
	return &id
}

type guest struct{}

func (guest) Subject(context.Context) string { return "guest" }

type fixture struct {
	backend *fakeBackend
	fp      *fakeFP
	guard   *guard.Guard
	toasts  *toast.Notifier
	flow    *Flow
}

func newFixture(t *testing.T, s model.Survey) *fixture {
	fx := &fixture{
		backend: &fakeBackend{survey: s},
		fp:      &fakeFP{id: "visitor-1"},
		guard:   guard.New(storage.NewMemory(), guest{}),
		toasts:  toast.New(),
	}
	fx.flow = New(fx.backend, fx.guard, fx.fp, fx.toasts)
	t.Cleanup(func() {
		fx.flow.Close()
		fx.toasts.Close()
	})
	return fx
}

func survey() model.Survey {
	return model.Survey{
		ID:     "s1",
		Name:   "Ankieta",
		Status: model.StatusPublic,
		Questions: []model.Question{
			{ID: "q1", Content: "Imię?", AnswerType: model.AnswerOpen},
			{ID: "q2", Content: "Owoce", AnswerType: model.AnswerMultiple, Choices: []model.Choice{
				{Position: 0, Content: "A"}, {Position: 1, Content: "B"}, {Position: 2, Content: "C"},
			}},
			{ID: "q3", Content: "Ile?", AnswerType: model.AnswerNumber},
		},
	}
}

func TestLoadExpired(t *testing.T) {
	s := survey()
	s.Status = model.StatusExpired
	fx := newFixture(t, s)

	assert.Equal(t, Failed, fx.flow.Load(context.Background(), ByID("s1")))
	assert.Equal(t, MsgExpired, fx.flow.Message())
	assert.Equal(t, []string{"survey"}, fx.backend.calls)
	assert.Zero(t, fx.fp.calls)
	assert.Nil(t, fx.flow.Controls())
}

func TestLoadAlreadyMarked(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, survey())
	fx.guard.Mark(ctx, "s1")

	assert.Equal(t, AlreadySubmitted, fx.flow.Load(ctx, ByToken("tok")))
	assert.Nil(t, fx.flow.Controls())
	assert.Equal(t, []string{"token"}, fx.backend.calls)
}

func TestLoadServerDuplicate(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, survey())
	fx.backend.dup = true

	assert.Equal(t, AlreadySubmitted, fx.flow.Load(ctx, PublicByID("s1")))
	assert.True(t, fx.guard.Submitted(ctx, "s1"))
	require.NotNil(t, fx.backend.checkedFP)
	assert.Equal(t, "visitor-1", *fx.backend.checkedFP)
}

func TestLoadDuplicateCheckFails(t *testing.T) {
	fx := newFixture(t, survey())
	fx.backend.dupErr = errors.New("connection refused")

	assert.Equal(t, Ready, fx.flow.Load(context.Background(), ByID("s1")))
	assert.Len(t, fx.flow.Controls(), 3)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusNotFound, MsgNotFound},
		{http.StatusForbidden, MsgForbidden},
		{http.StatusGone, MsgLinkExpired},
		{http.StatusInternalServerError, MsgLoadFailed},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			fx := newFixture(t, survey())
			fx.backend.loadErr = errors.Wrap(&httpx.Error{Status: tt.status}, "api.survey.get")

			assert.Equal(t, Failed, fx.flow.Load(context.Background(), ByID("s1")))
			assert.Equal(t, tt.want, fx.flow.Message())
		})
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, survey())
	done := make(chan struct{})
	fx.flow.RedirectDelay = 10 * time.Millisecond
	fx.flow.OnDone = func() { close(done) }

	require.Equal(t, Ready, fx.flow.Load(ctx, ByID("s1")))

	_, err := fx.flow.Submit(ctx)
	var invalid *form.Invalid
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "q1", invalid.First)
	assert.Equal(t, Ready, fx.flow.State())
	assert.True(t, fx.flow.Controls()[0].Touched())

	require.NoError(t, fx.flow.Set(0, "Jan"))
	m := fx.flow.Controls()[1].(*form.Multiple)
	m.Checked = []bool{true, false, true}

	state, err := fx.flow.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, Succeeded, state)
	assert.Equal(t, MsgThanks, fx.flow.Message())

	require.Len(t, fx.backend.submitted, 1)
	sub := fx.backend.submitted[0]
	assert.Equal(t, "s1", sub.SurveyID)
	assert.Equal(t, []model.Answer{
		{QuestionID: "q1", Response: "Jan"},
		{QuestionID: "q2", Response: "A, C"},
		{QuestionID: "q3", Response: "1"},
	}, sub.Answers)
	require.NotNil(t, sub.FingerprintAdvanced)
	assert.True(t, fx.guard.Submitted(ctx, "s1"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("no redirect")
	}
}

func TestSubmitRejected(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		state State
		msg   string
	}{
		{
			name:  "rate limited",
			err:   &httpx.Error{Status: http.StatusTooManyRequests},
			state: Failed,
			msg:   MsgRateLimited,
		},
		{
			name:  "survey changed",
			err:   &httpx.Error{Status: http.StatusConflict, Detail: "Ankieta została zmodyfikowana. Odśwież stronę."},
			state: Failed,
			msg:   "Ankieta została zmodyfikowana. Odśwież stronę.",
		},
		{
			name:  "already submitted",
			err:   &httpx.Error{Status: http.StatusConflict, Detail: "Już wypełniłeś tę ankietę."},
			state: AlreadySubmitted,
		},
		{
			name:  "gone",
			err:   &httpx.Error{Status: http.StatusGone},
			state: Failed,
			msg:   MsgExpired,
		},
		{
			name:  "bad request without text",
			err:   &httpx.Error{Status: http.StatusBadRequest},
			state: Failed,
			msg:   MsgSubmitFailed,
		},
		{
			name:  "transport",
			err:   errors.New("connection reset"),
			state: Failed,
			msg:   MsgSubmitFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := survey()
			s.Questions = s.Questions[2:]
			fx := newFixture(t, s)
			fx.backend.submitErr = tt.err

			require.Equal(t, Ready, fx.flow.Load(ctx, ByID("s1")))
			state, err := fx.flow.Submit(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.state, state)
			assert.Equal(t, tt.msg, fx.flow.Message())
			assert.Equal(t, tt.state == AlreadySubmitted, fx.guard.Submitted(ctx, "s1"))
		})
	}
}

func TestRetryAfterFailure(t *testing.T) {
	ctx := context.Background()
	s := survey()
	s.Questions = s.Questions[2:]
	fx := newFixture(t, s)
	fx.backend.submitErr = &httpx.Error{Status: http.StatusTooManyRequests}

	require.Equal(t, Ready, fx.flow.Load(ctx, ByID("s1")))
	state, _ := fx.flow.Submit(ctx)
	require.Equal(t, Failed, state)

	fx.backend.submitErr = nil
	state, err := fx.flow.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, Succeeded, state)
}

func TestSubmitNotReady(t *testing.T) {
	s := survey()
	s.Status = model.StatusExpired
	fx := newFixture(t, s)
	fx.flow.Load(context.Background(), ByID("s1"))

	_, err := fx.flow.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestProgressMilestones(t *testing.T) {
	ctx := context.Background()
	s := survey()
	s.Questions = []model.Question{
		{ID: "a", AnswerType: model.AnswerOpen},
		{ID: "b", AnswerType: model.AnswerYesNo},
	}
	fx := newFixture(t, s)
	require.Equal(t, Ready, fx.flow.Load(ctx, ByID("s1")))
	assert.Equal(t, 0, fx.flow.Progress())

	require.NoError(t, fx.flow.Set(0, "   "))
	assert.Equal(t, 0, fx.flow.AnsweredCount())

	require.NoError(t, fx.flow.Set(0, "x"))
	assert.Equal(t, 50, fx.flow.Progress())
	require.NoError(t, fx.flow.Set(1, "tak"))
	assert.Equal(t, 100, fx.flow.Progress())
	require.NoError(t, fx.flow.Set(1, "nie"))

	var msgs []string
	for _, ts := range fx.toasts.List() {
		msgs = append(msgs, ts.Message)
	}
	assert.Equal(t, []string{MsgHalfway, MsgComplete}, msgs)
}

func TestEstimatedMinutes(t *testing.T) {
	assert.Equal(t, 1, EstimatedMinutes(nil))
	assert.Equal(t, 2, EstimatedMinutes([]model.Question{
		{AnswerType: model.AnswerOpen},
		{AnswerType: model.AnswerOpen},
		{AnswerType: model.AnswerClose},
	}))
}
