// Package editor holds the question list of a survey being created or
// edited, and the flows around it: drafts, impact warnings, templates.
package editor

import (
	"fmt"
	"strings"

	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/model"
)

const copySuffix = " (kopia)"

// Question is one editable question. ID is empty until the survey is saved.
type Question struct {
	ID         string                  `json:"id,omitempty"`
	Content    string                  `json:"content"`
	Position   int                     `json:"position"`
	AnswerType model.AnswerType        `json:"answer_type"`
	Choices    []model.Choice          `json:"choices"`
	Settings   *model.QuestionSettings `json:"settings,omitempty"`
}

// List is the form value of the question editor. It is also what gets
// stored as a draft.
type List struct {
	Questions []Question `json:"questions"`
}

func ptr[T any](v T) *T { return &v }

// defaultSettings are what a new question starts with.
func defaultSettings() *model.QuestionSettings {
	return &model.QuestionSettings{Min: ptr(1.0), Max: ptr(5.0), Step: ptr(1.0), Required: ptr(false)}
}

func FromSurvey(qs []model.Question) List {
	l := List{Questions: make([]Question, len(qs))}
	for i, q := range qs {
		l.Questions[i] = Question{
			ID:         q.ID,
			Content:    q.Content,
			Position:   q.Position,
			AnswerType: q.AnswerType,
			Choices:    append([]model.Choice(nil), q.Choices...),
			Settings:   q.Settings,
		}
	}
	// the loaded survey keeps its own settings
	return l.Clone()
}

func FromTemplate(t model.SurveyTemplate) List {
	l := List{Questions: make([]Question, 0, len(t.QuestionsData))}
	for _, tq := range t.QuestionsData {
		settings := tq.Settings
		if settings == nil {
			settings = defaultSettings()
		}
		l.Questions = append(l.Questions, Question{
			Content:    tq.Content,
			Position:   len(l.Questions),
			AnswerType: tq.AnswerType,
			Choices:    append([]model.Choice(nil), tq.Choices...),
			Settings:   settings,
		})
	}
	return l
}

// Clone deep copies the list, so a snapshot is not affected by later edits.
func (l List) Clone() List {
	c := List{Questions: make([]Question, len(l.Questions))}
	for i, q := range l.Questions {
		q.Choices = append([]model.Choice(nil), q.Choices...)
		if q.Settings != nil {
			s := *q.Settings
			q.Settings = &s
		}
		c.Questions[i] = q
	}
	return c
}

func (l List) Len() int { return len(l.Questions) }

func (l *List) check(i int) error {
	if i < 0 || i >= len(l.Questions) {
		return fmt.Errorf("nie ma pytania nr %d", i+1)
	}
	return nil
}

// Add appends an open question and returns its index.
func (l *List) Add() int {
	l.Questions = append(l.Questions, Question{
		Position:   len(l.Questions),
		AnswerType: model.AnswerOpen,
		Settings:   defaultSettings(),
	})
	return len(l.Questions) - 1
}

func (l *List) Remove(i int) error {
	if err := l.check(i); err != nil {
		return err
	}
	l.Questions = append(l.Questions[:i], l.Questions[i+1:]...)
	l.Reindex()
	return nil
}

// Duplicate inserts a copy of question i right after it.
func (l *List) Duplicate(i int) error {
	if err := l.check(i); err != nil {
		return err
	}
	dup := l.Clone().Questions[i]
	dup.ID = ""
	dup.Content += copySuffix
	l.Questions = append(l.Questions[:i+1], append([]Question{dup}, l.Questions[i+1:]...)...)
	l.Reindex()
	return nil
}

func (l *List) SetContent(i int, content string) error {
	if err := l.check(i); err != nil {
		return err
	}
	l.Questions[i].Content = content
	return nil
}

// Retype changes the answer type keeping what was already entered; a
// choice based type with no choices gets two empty ones.
func (l *List) Retype(i int, t model.AnswerType) error {
	if err := l.check(i); err != nil {
		return err
	}
	if !t.Valid() {
		return fmt.Errorf("nieznany typ pytania %q", t)
	}
	q := &l.Questions[i]
	q.AnswerType = t
	if t.NeedsChoices() && len(q.Choices) == 0 {
		l.addChoice(i)
		l.addChoice(i)
	}
	return nil
}

// Reset changes the answer type and starts its choices and settings over.
func (l *List) Reset(i int, t model.AnswerType) error {
	if err := l.check(i); err != nil {
		return err
	}
	if !t.Valid() {
		return fmt.Errorf("nieznany typ pytania %q", t)
	}
	q := &l.Questions[i]
	q.AnswerType = t
	q.Choices = nil
	if t.NeedsChoices() {
		l.addChoice(i)
		l.addChoice(i)
	}
	if q.Settings == nil {
		q.Settings = defaultSettings()
	}
	if t == model.AnswerScale || t == model.AnswerRating {
		settings := *q.Settings
		q.Settings = &settings
		q.Settings.Min, q.Settings.Max, q.Settings.Step = ptr(1.0), ptr(5.0), ptr(1.0)
	}
	return nil
}

func (l *List) addChoice(i int) int {
	q := &l.Questions[i]
	q.Choices = append(q.Choices, model.Choice{Position: len(q.Choices)})
	return len(q.Choices) - 1
}

func (l *List) AddChoice(i int) (int, error) {
	if err := l.check(i); err != nil {
		return 0, err
	}
	return l.addChoice(i), nil
}

func (l *List) checkChoice(i, j int) error {
	if err := l.check(i); err != nil {
		return err
	}
	if j < 0 || j >= len(l.Questions[i].Choices) {
		return fmt.Errorf("pytanie nr %d nie ma opcji nr %d", i+1, j+1)
	}
	return nil
}

func (l *List) SetChoice(i, j int, content string) error {
	if err := l.checkChoice(i, j); err != nil {
		return err
	}
	l.Questions[i].Choices[j].Content = content
	return nil
}

func (l *List) RemoveChoice(i, j int) error {
	if err := l.checkChoice(i, j); err != nil {
		return err
	}
	q := &l.Questions[i]
	q.Choices = append(q.Choices[:j], q.Choices[j+1:]...)
	for k := range q.Choices {
		q.Choices[k].Position = k
	}
	return nil
}

// Reindex makes positions match the list order.
func (l *List) Reindex() {
	for i := range l.Questions {
		l.Questions[i].Position = i
	}
}

// Validate requires content on every question and every choice.
func (l *List) Validate() error {
	var fields []form.Field
	for i, q := range l.Questions {
		fields = append(fields, form.Field{
			Name:  fmt.Sprintf("questions[%d].content", i),
			Label: fmt.Sprintf("Treść pytania %d", i+1),
			Value: strings.TrimSpace(q.Content),
			Rules: []form.Rule{form.Required},
		})
		if !q.AnswerType.NeedsChoices() {
			continue
		}
		for j, ch := range q.Choices {
			fields = append(fields, form.Field{
				Name:  fmt.Sprintf("questions[%d].choices[%d]", i, j),
				Label: fmt.Sprintf("Opcja %d pytania %d", j+1, i+1),
				Value: strings.TrimSpace(ch.Content),
				Rules: []form.Rule{form.Required},
			})
		}
	}
	return form.Validate(fields...)
}

// Create is the bulk replace body. Choices are only sent for types that
// use them.
func (l *List) Create() []model.QuestionCreate {
	out := make([]model.QuestionCreate, len(l.Questions))
	for i, q := range l.Questions {
		qc := model.QuestionCreate{
			Content:    q.Content,
			Position:   q.Position,
			AnswerType: q.AnswerType,
			Settings:   q.Settings,
		}
		if q.AnswerType != model.AnswerOpen && len(q.Choices) > 0 {
			qc.Choices = q.Choices
		}
		out[i] = qc
	}
	return out
}

// TemplateData is the list as a template's questions_data.
func (l *List) TemplateData() []model.TemplateQuestion {
	out := make([]model.TemplateQuestion, len(l.Questions))
	for i, q := range l.Clone().Questions {
		choices := q.Choices
		if choices == nil {
			choices = []model.Choice{}
		}
		settings := q.Settings
		if settings == nil {
			settings = &model.QuestionSettings{}
		}
		out[i] = model.TemplateQuestion{
			Content:    q.Content,
			AnswerType: q.AnswerType,
			Choices:    choices,
			Settings:   settings,
		}
	}
	return out
}
