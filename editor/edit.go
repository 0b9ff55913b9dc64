package editor

import (
	"context"
	"sync"
	"time"

	"github.com/mbolis/ankietio/draft"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

const (
	PromptRestoreDraft   = "Znaleziono zapisaną wersję roboczą. Czy chcesz ją przywrócić?"
	PromptRemoveQuestion = "Ta ankieta ma już odpowiedzi. Usunięcie pytania usunie też zebrane na nie odpowiedzi. Czy na pewno chcesz kontynuować?"
	PromptRemoveChoice   = "Ta opcja może być wybrana w odpowiedziach. Usunięcie jej może wpłynąć na integralność danych. Czy na pewno chcesz kontynuować?"
	PromptRetype         = "Zmiana typu pytania może wpłynąć na zebrane odpowiedzi. Czy na pewno chcesz kontynuować?"
	PromptDiscard        = "Masz niezapisane zmiany. Czy na pewno chcesz opuścić stronę?"

	MsgLoadFailed = "Nie udało się załadować ankiety"
	MsgInvalid    = "Popraw błędy walidacji przed zapisaniem"
	MsgSaveFailed = "Błąd podczas zapisywania zmian"
)

// ErrCanceled is returned when the user declines a confirmation prompt.
var ErrCanceled = errors.New("editor: canceled by user")

// Confirmer asks the user a yes/no question and blocks for the answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

type EditBackend interface {
	Survey(ctx context.Context, id string) (model.Survey, error)
	ReplaceQuestions(ctx context.Context, surveyID string, qs []model.QuestionCreate) ([]model.Question, error)
}

type SaveStatus string

const (
	Saved   SaveStatus = "saved"
	Unsaved SaveStatus = "unsaved"
	Saving  SaveStatus = "saving"
)

// Editor edits the questions of an existing survey. Unsaved changes are
// kept as a local draft; destructive edits on a survey that already has
// responses need confirmation.
type Editor struct {
	backend EditBackend
	drafts  *draft.Store
	confirm Confirmer

	// Settle and Persist tune the draft autosave; zero means the
	// draft package defaults.
	Settle  time.Duration
	Persist time.Duration

	survey  model.Survey
	list    List
	message string

	mu     sync.Mutex
	status SaveStatus

	changes chan List
	stop    context.CancelFunc
	done    <-chan struct{}
}

func NewEditor(backend EditBackend, drafts *draft.Store, confirm Confirmer) *Editor {
	return &Editor{backend: backend, drafts: drafts, confirm: confirm, status: Saved}
}

// Load fetches the survey, offers to restore a pending draft, and starts
// autosaving. Autosave runs until ctx ends or Close is called.
func (e *Editor) Load(ctx context.Context, surveyID string) error {
	s, err := e.backend.Survey(ctx, surveyID)
	if err != nil {
		e.message = MsgLoadFailed
		return errors.Wrap(err, "editor.load")
	}
	e.survey = s
	e.list = FromSurvey(s.Questions)

	var saved List
	if e.drafts.Load(ctx, s.ID, &saved) && e.confirm.Confirm(ctx, PromptRestoreDraft) {
		e.list = saved
		e.setStatus(Unsaved)
	}

	actx, stop := context.WithCancel(ctx)
	e.stop = stop
	e.changes = make(chan List)
	e.done = draft.Autosave[List]{
		Drafts:   e.drafts,
		SurveyID: s.ID,
		Settle:   e.Settle,
		Persist:  e.Persist,
		OnDirty:  func(List) { e.setStatus(Unsaved) },
	}.Run(actx, e.changes)
	return nil
}

func (e *Editor) Survey() model.Survey { return e.survey }

// List is a snapshot of the questions being edited.
func (e *Editor) List() List { return e.list.Clone() }

func (e *Editor) Message() string { return e.message }

// HasResponses reports whether edits can affect collected answers.
func (e *Editor) HasResponses() bool { return e.survey.SubmissionCount > 0 }

func (e *Editor) Status() SaveStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Editor) setStatus(s SaveStatus) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Dirty reports unsaved changes.
func (e *Editor) Dirty() bool { return e.Status() != Saved }

func (e *Editor) changed(ctx context.Context) {
	e.setStatus(Unsaved)
	if e.changes == nil {
		return
	}
	select {
	case e.changes <- e.list.Clone():
	case <-ctx.Done():
	}
}

func (e *Editor) guarded(ctx context.Context, prompt string) bool {
	return !e.HasResponses() || e.confirm.Confirm(ctx, prompt)
}

func (e *Editor) Add(ctx context.Context) int {
	i := e.list.Add()
	e.changed(ctx)
	return i
}

func (e *Editor) Remove(ctx context.Context, i int) error {
	if err := e.list.check(i); err != nil {
		return err
	}
	if !e.guarded(ctx, PromptRemoveQuestion) {
		return ErrCanceled
	}
	_ = e.list.Remove(i)
	e.changed(ctx)
	return nil
}

func (e *Editor) Duplicate(ctx context.Context, i int) error {
	if err := e.list.Duplicate(i); err != nil {
		return err
	}
	e.changed(ctx)
	return nil
}

func (e *Editor) SetContent(ctx context.Context, i int, content string) error {
	if err := e.list.SetContent(i, content); err != nil {
		return err
	}
	e.changed(ctx)
	return nil
}

// Retype changes a question's answer type. When declined, the previous
// type stays and no change is recorded.
func (e *Editor) Retype(ctx context.Context, i int, t model.AnswerType) error {
	if err := e.list.check(i); err != nil {
		return err
	}
	if e.list.Questions[i].AnswerType == t {
		return nil
	}
	if !e.guarded(ctx, PromptRetype) {
		return ErrCanceled
	}
	if err := e.list.Retype(i, t); err != nil {
		return err
	}
	e.changed(ctx)
	return nil
}

func (e *Editor) AddChoice(ctx context.Context, i int) (int, error) {
	j, err := e.list.AddChoice(i)
	if err != nil {
		return 0, err
	}
	e.changed(ctx)
	return j, nil
}

func (e *Editor) SetChoice(ctx context.Context, i, j int, content string) error {
	if err := e.list.SetChoice(i, j, content); err != nil {
		return err
	}
	e.changed(ctx)
	return nil
}

func (e *Editor) RemoveChoice(ctx context.Context, i, j int) error {
	if err := e.list.checkChoice(i, j); err != nil {
		return err
	}
	if !e.guarded(ctx, PromptRemoveChoice) {
		return ErrCanceled
	}
	_ = e.list.RemoveChoice(i, j)
	e.changed(ctx)
	return nil
}

// Save replaces the survey's questions and drops the draft. An invalid
// list returns the *form.Invalid without calling the API.
func (e *Editor) Save(ctx context.Context) error {
	if err := e.list.Validate(); err != nil {
		e.message = MsgInvalid
		return err
	}

	e.setStatus(Saving)
	e.message = ""
	qs, err := e.backend.ReplaceQuestions(ctx, e.survey.ID, e.list.Create())
	if err != nil {
		e.setStatus(Unsaved)
		e.message = MsgSaveFailed
		log.Debugf("editor.save: %s", httpx.Describe(err, httpx.DefaultMessages))
		return errors.Wrap(err, "editor.save")
	}

	// stop autosave first so a late write cannot bring the draft back
	e.Close()
	e.survey.Questions = qs
	e.setStatus(Saved)
	e.drafts.Clear(ctx, e.survey.ID)
	return nil
}

// Cancel leaves the editor. With unsaved changes it asks first, and on
// confirmation discards the draft.
func (e *Editor) Cancel(ctx context.Context) error {
	if e.Dirty() {
		if !e.confirm.Confirm(ctx, PromptDiscard) {
			return ErrCanceled
		}
		e.Close()
		e.drafts.Clear(ctx, e.survey.ID)
		return nil
	}
	e.Close()
	return nil
}

// Close stops autosaving, dropping changes not yet persisted.
func (e *Editor) Close() {
	if e.stop == nil {
		return
	}
	e.stop()
	<-e.done
	e.stop = nil
	e.changes = nil
}
