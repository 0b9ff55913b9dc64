// Package fill drives a survey being answered: loading it through the
// duplicate and expiry gate, holding one control per question, and
// submitting the answers.
package fill

import (
	"context"
	"time"

	"github.com/looplab/fsm"
	"github.com/mbolis/ankietio/event"
	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
)

type State string

const (
	Loading          State = "loading"
	Failed           State = "error"
	AlreadySubmitted State = "already_submitted"
	Ready            State = "ready"
	Submitting       State = "submitting"
	Succeeded        State = "success"
)

const (
	evFail      = "fail"
	evDuplicate = "duplicate"
	evOpen      = "open"
	evSubmit    = "submit"
	evAccept    = "accept"
)

const (
	MsgExpired      = "Ta ankieta wygasła i nie można już jej wypełnić."
	MsgNotFound     = "Ankieta nie została znaleziona lub link wygasł."
	MsgForbidden    = "Nie masz dostępu do tej ankiety."
	MsgLinkExpired  = "Link do ankiety wygasł."
	MsgLoadFailed   = "Nie udało się załadować ankiety. Spróbuj ponownie później."
	MsgThanks       = "Dziękujemy za wypełnienie ankiety!"
	MsgRateLimited  = "Zbyt wiele przesłanych ankiet. Spróbuj ponownie za chwilę."
	MsgSubmitFailed = "Błąd podczas wysyłania ankiety"
	MsgHalfway      = "Połowa za Tobą!"
	MsgComplete     = "Świetna robota! Możesz wysłać ankietę"
)

// DefaultRedirectDelay is how long the thank-you message stays before
// OnDone is called.
const DefaultRedirectDelay = 2 * time.Second

// LoadMessages map a failed survey fetch to what the user reads.
var LoadMessages = httpx.Messages{
	NotFound:  MsgNotFound,
	Forbidden: MsgForbidden,
	Gone:      MsgLinkExpired,
	Generic:   MsgLoadFailed,
}

// Backend is the part of the API a fill needs.
type Backend interface {
	Survey(ctx context.Context, id string) (model.Survey, error)
	SurveyByToken(ctx context.Context, token string) (model.Survey, error)
	PublicSurvey(ctx context.Context, id string) (model.Survey, error)
	CheckDuplicate(ctx context.Context, surveyID string, fingerprint *string) (bool, error)
	Submit(ctx context.Context, in model.SubmissionCreate) error
}

// Markers is the local set of surveys already answered on this device.
type Markers interface {
	Submitted(ctx context.Context, surveyID string) bool
	Mark(ctx context.Context, surveyID string)
}

// Fingerprints hands out the device identifier, or nil without consent.
type Fingerprints interface {
	Ptr(ctx context.Context) *string
}

type Notifier interface {
	Success(msg string) int64
	Info(msg string) int64
}

// Target says where a survey is loaded from.
type Target struct {
	ID     string
	Token  string
	Public bool
}

func ByID(id string) Target       { return Target{ID: id} }
func ByToken(token string) Target { return Target{Token: token} }
func PublicByID(id string) Target { return Target{ID: id, Public: true} }

func (t Target) fetch(ctx context.Context, b Backend) (model.Survey, error) {
	switch {
	case t.Token != "":
		return b.SurveyByToken(ctx, t.Token)
	case t.Public:
		return b.PublicSurvey(ctx, t.ID)
	default:
		return b.Survey(ctx, t.ID)
	}
}

// Flow is one survey being filled. It is meant to be driven by a single
// goroutine; only OnDone runs on a timer.
type Flow struct {
	backend Backend
	markers Markers
	fp      Fingerprints
	toasts  Notifier

	RedirectDelay time.Duration
	// OnDone is called RedirectDelay after a successful submission.
	OnDone func()

	machine  *fsm.FSM
	feed     event.Feed[State]
	survey   model.Survey
	controls []form.Control
	message  string

	halfway, complete bool
	redirect          *time.Timer
}

func New(backend Backend, markers Markers, fp Fingerprints, toasts Notifier) *Flow {
	f := &Flow{
		backend:       backend,
		markers:       markers,
		fp:            fp,
		toasts:        toasts,
		RedirectDelay: DefaultRedirectDelay,
	}
	f.machine = fsm.NewFSM(
		string(Loading),
		fsm.Events{
			{Name: evFail, Src: []string{string(Loading), string(Submitting)}, Dst: string(Failed)},
			{Name: evDuplicate, Src: []string{string(Loading), string(Submitting)}, Dst: string(AlreadySubmitted)},
			{Name: evOpen, Src: []string{string(Loading)}, Dst: string(Ready)},
			{Name: evSubmit, Src: []string{string(Ready), string(Failed)}, Dst: string(Submitting)},
			{Name: evAccept, Src: []string{string(Submitting)}, Dst: string(Succeeded)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Debugf("fill: %s -> %s", e.Src, e.Dst)
				f.feed.Send(State(e.Dst))
			},
		},
	)
	return f
}

func (f *Flow) State() State { return State(f.machine.Current()) }

// Message is the error or outcome text for the current state.
func (f *Flow) Message() string { return f.message }

func (f *Flow) Survey() model.Survey { return f.survey }

// Controls are nil until the survey is ready to be answered.
func (f *Flow) Controls() []form.Control { return f.controls }

// Watch streams every state entered from now on.
func (f *Flow) Watch() (<-chan State, func()) {
	return f.feed.Subscribe(8)
}

func (f *Flow) transition(ctx context.Context, name string) {
	err := f.machine.Event(ctx, name)
	if err != nil {
		log.Debugf("fill.%s: %s", name, err)
	}
}

// Load fetches the survey and runs the access gate. It always ends in
// Failed, AlreadySubmitted or Ready.
func (f *Flow) Load(ctx context.Context, target Target) State {
	s, err := target.fetch(ctx, f.backend)
	if err != nil {
		f.message = httpx.Describe(err, LoadMessages)
		f.transition(ctx, evFail)
		return f.State()
	}
	f.survey = s

	if s.Status == model.StatusExpired {
		f.message = MsgExpired
		f.transition(ctx, evFail)
		return f.State()
	}

	if f.markers.Submitted(ctx, s.ID) {
		f.transition(ctx, evDuplicate)
		return f.State()
	}

	dup, err := f.backend.CheckDuplicate(ctx, s.ID, f.fp.Ptr(ctx))
	if err != nil {
		log.Debugf("fill.check_duplicate: %s", err)
	} else if dup {
		f.markers.Mark(ctx, s.ID)
		f.transition(ctx, evDuplicate)
		return f.State()
	}

	controls := make([]form.Control, 0, len(s.Questions))
	for _, q := range s.Questions {
		ctl, err := form.NewControl(q)
		if err != nil {
			f.message = MsgLoadFailed
			log.Warnf("fill.load: %s", err)
			f.transition(ctx, evFail)
			return f.State()
		}
		controls = append(controls, ctl)
	}
	f.controls = controls
	f.transition(ctx, evOpen)
	return f.State()
}

// Close stops a pending redirect and ends state subscriptions.
func (f *Flow) Close() {
	if f.redirect != nil {
		f.redirect.Stop()
	}
	f.feed.Close()
}
