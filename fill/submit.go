package fill

import (
	"context"
	"net/http"
	"time"

	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

// ErrNotReady is returned by Submit when there is no form to send.
var ErrNotReady = errors.New("fill: survey is not ready to be submitted")

// Phrases the API uses when the submitted answers no longer match the
// survey; such messages are shown as they are.
var changedPhrases = []string{"zmodyfikowana", "Niektóre pytania", "Opcje odpowiedzi"}

const alreadySubmittedPhrase = "Już wypełniłeś"

// Answers serializes the controls in question order.
func (f *Flow) Answers() []model.Answer {
	answers := make([]model.Answer, len(f.controls))
	for i, ctl := range f.controls {
		answers[i] = model.Answer{QuestionID: ctl.Question().ID, Response: ctl.Response()}
	}
	return answers
}

// Submit validates and sends the answers. A validation failure returns
// the *form.Invalid and leaves the state untouched; every other outcome
// is reported through State and Message.
func (f *Flow) Submit(ctx context.Context) (State, error) {
	if f.controls == nil || !f.machine.Can(evSubmit) {
		return f.State(), ErrNotReady
	}
	err := form.ValidateControls(f.controls)
	if err != nil {
		return f.State(), err
	}

	f.message = ""
	f.transition(ctx, evSubmit)

	err = f.backend.Submit(ctx, model.SubmissionCreate{
		SurveyID:            f.survey.ID,
		FingerprintAdvanced: f.fp.Ptr(ctx),
		Answers:             f.Answers(),
	})
	if err != nil {
		f.rejected(ctx, err)
		return f.State(), nil
	}

	f.markers.Mark(ctx, f.survey.ID)
	f.message = MsgThanks
	f.toasts.Success(MsgThanks)
	f.transition(ctx, evAccept)

	if f.OnDone != nil {
		f.redirect = time.AfterFunc(f.RedirectDelay, f.OnDone)
	}
	return f.State(), nil
}

func (f *Flow) rejected(ctx context.Context, err error) {
	log.Debugf("fill.submit: %s", err)

	apiErr, ok := httpx.AsError(err)
	if !ok {
		f.fail(ctx, MsgSubmitFailed)
		return
	}

	switch apiErr.Status {
	case http.StatusTooManyRequests:
		f.fail(ctx, or(apiErr.Detail, MsgRateLimited))
	case http.StatusBadRequest, http.StatusConflict:
		switch {
		case apiErr.Contains(changedPhrases...):
			f.fail(ctx, apiErr.Text())
		case apiErr.Contains(alreadySubmittedPhrase):
			f.markers.Mark(ctx, f.survey.ID)
			f.controls = nil
			f.message = ""
			f.transition(ctx, evDuplicate)
		default:
			f.fail(ctx, or(apiErr.Text(), MsgSubmitFailed))
		}
	case http.StatusGone:
		f.fail(ctx, or(apiErr.Detail, MsgExpired))
	default:
		f.fail(ctx, or(apiErr.Text(), MsgSubmitFailed))
	}
}

func (f *Flow) fail(ctx context.Context, msg string) {
	f.message = msg
	f.transition(ctx, evFail)
}

func or(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
