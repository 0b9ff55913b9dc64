package editor

import (
	"context"

	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

const (
	MsgCreateFailed       = "Błąd podczas tworzenia ankiety"
	MsgSaveQuestionsError = "Błąd podczas zapisywania pytań"
	MsgTemplateSaved      = "Szablon został zapisany!"
	MsgTemplateFailed     = "Błąd podczas zapisywania szablonu"
)

// ErrNoQuestions is returned when saving a template with no questions.
var ErrNoQuestions = errors.New("editor: no questions")

type CreateBackend interface {
	CreateSurvey(ctx context.Context, in model.SurveyCreate) (model.Survey, error)
	ReplaceQuestions(ctx context.Context, surveyID string, qs []model.QuestionCreate) ([]model.Question, error)
	DeleteSurvey(ctx context.Context, id string) error
	CreateTemplate(ctx context.Context, in model.SurveyTemplateCreate) (model.SurveyTemplate, error)
}

// Creator builds a new survey in two steps: the survey itself is created
// first, then its questions are saved.
type Creator struct {
	backend CreateBackend

	Name      string
	Questions List

	created string
	message string
}

func NewCreator(backend CreateBackend) *Creator {
	return &Creator{backend: backend}
}

// FromTemplate starts from a copy of a template.
func (c *Creator) FromTemplate(t model.SurveyTemplate) {
	c.Name = t.Name + copySuffix
	c.Questions = FromTemplate(t)
}

// FromSurvey starts from a copy of an existing survey.
func (c *Creator) FromSurvey(s model.Survey) {
	c.Name = s.Name + copySuffix
	c.Questions = FromSurvey(s.Questions)
	for i := range c.Questions.Questions {
		c.Questions.Questions[i].ID = ""
	}
	c.Questions.Reindex()
}

// CreatedID is the id of the survey created by Create, if any.
func (c *Creator) CreatedID() string { return c.created }

func (c *Creator) Message() string { return c.message }

// Create creates the survey as private, with duplicate prevention on.
// A survey with no questions yet gets a first empty one.
func (c *Creator) Create(ctx context.Context) (model.Survey, error) {
	if err := (form.SurveyName{Name: c.Name}).Validate(); err != nil {
		return model.Survey{}, err
	}

	c.message = ""
	prevent := true
	s, err := c.backend.CreateSurvey(ctx, model.SurveyCreate{
		Name:              c.Name,
		PreventDuplicates: &prevent,
		Status:            model.StatusPrivate,
	})
	if err != nil {
		c.message = serverText(err, MsgCreateFailed)
		return model.Survey{}, errors.Wrap(err, "editor.create")
	}
	c.created = s.ID
	if c.Questions.Len() == 0 {
		c.Questions.Add()
	}
	return s, nil
}

// Save stores the questions of the created survey.
func (c *Creator) Save(ctx context.Context) ([]model.Question, error) {
	if c.created == "" {
		return nil, errors.New("editor.save: survey not created yet")
	}
	if err := c.Questions.Validate(); err != nil {
		c.message = MsgInvalid
		return nil, err
	}

	c.message = ""
	qs, err := c.backend.ReplaceQuestions(ctx, c.created, c.Questions.Create())
	if err != nil {
		c.message = serverText(err, MsgSaveQuestionsError)
		return nil, errors.Wrap(err, "editor.save")
	}
	return qs, nil
}

// SaveAsTemplate stores the current questions as a private template.
func (c *Creator) SaveAsTemplate(ctx context.Context, t form.Template) (model.SurveyTemplate, error) {
	if err := t.Validate(); err != nil {
		return model.SurveyTemplate{}, err
	}
	if c.Questions.Len() == 0 {
		return model.SurveyTemplate{}, ErrNoQuestions
	}

	tpl, err := c.backend.CreateTemplate(ctx, model.SurveyTemplateCreate{
		Name:          t.Name,
		Description:   t.Description,
		Category:      t.Category,
		IsPublic:      false,
		QuestionsData: c.Questions.TemplateData(),
	})
	if err != nil {
		c.message = MsgTemplateFailed
		if apiErr, ok := httpx.AsError(err); ok {
			c.message = or(apiErr.Detail, apiErr.Message, MsgTemplateFailed)
		}
		return model.SurveyTemplate{}, errors.Wrap(err, "editor.template")
	}
	c.message = MsgTemplateSaved
	return tpl, nil
}

// Cancel abandons the creation, deleting the survey if it was already
// created. Deletion failures are only logged.
func (c *Creator) Cancel(ctx context.Context) {
	if c.created == "" {
		return
	}
	err := c.backend.DeleteSurvey(ctx, c.created)
	if err != nil {
		log.Debugf("editor.cancel: %s", err)
	}
	c.created = ""
}

func serverText(err error, fallback string) string {
	if apiErr, ok := httpx.AsError(err); ok {
		return or(apiErr.Text(), fallback)
	}
	return fallback
}

func or(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
