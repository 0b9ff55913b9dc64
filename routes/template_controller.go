package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/routes/middlewares"
)

func PublicTemplates(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		render.JSON(w, r, b.templatesWhere(func(t *template) bool { return t.IsPublic }))
	}
}

func MyTemplates(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.UserID(r.Context())
		b.mu.RLock()
		defer b.mu.RUnlock()
		render.JSON(w, r, b.templatesWhere(func(t *template) bool { return t.OwnerID == owner }))
	}
}

// visibleTemplate answers 404 for templates that do not exist or belong
// to someone else. Callers hold the lock.
func (b *Backend) visibleTemplate(w http.ResponseWriter, r *http.Request, code string) (*template, bool) {
	id := chi.URLParam(r, "id")
	t, ok := b.templates[id]
	if !ok || (!t.IsPublic && t.OwnerID != middlewares.UserID(r.Context())) {
		logNotFound(w, r, code, id)
		return nil, false
	}
	return t, true
}

func GetTemplate(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		t, ok := b.visibleTemplate(w, r, "template.get")
		if !ok {
			return
		}
		render.JSON(w, r, t.SurveyTemplate)
	}
}

func CreateTemplate(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.SurveyTemplateCreate
		err := render.DecodeJSON(r.Body, &in)
		if err != nil {
			logInvalid(w, r, "template.create.parse_body", "name", err.Error())
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			logInvalid(w, r, "template.create.name", "name", "Nazwa szablonu jest wymagana")
			return
		}
		if !in.Category.Valid() {
			logInvalid(w, r, "template.create.category", "category", "Nieznana kategoria")
			return
		}
		if in.QuestionsData == nil {
			in.QuestionsData = []model.TemplateQuestion{}
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		t := b.addTemplate(in, middlewares.UserID(r.Context()))
		created(w, r, t.SurveyTemplate)
	}
}

// UseTemplate creates a private survey of the current user out of a
// template.
func UseTemplate(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		t, ok := b.visibleTemplate(w, r, "template.use")
		if !ok {
			return
		}

		qs := make([]model.Question, len(t.QuestionsData))
		for i, tq := range t.QuestionsData {
			qs[i] = model.Question{
				ID:         newID(),
				Content:    tq.Content,
				Position:   i,
				AnswerType: tq.AnswerType,
				Choices:    append([]model.Choice{}, tq.Choices...),
				Settings:   tq.Settings,
			}
		}
		s := &survey{
			seq: b.next(),
			Survey: model.Survey{
				ID:        newID(),
				Name:      t.Name,
				CreatedAt: model.NewTime(b.now()),
				Status:    model.StatusPrivate,
				Questions: qs,
			},
			OwnerID: middlewares.UserID(r.Context()),
		}
		b.surveys[s.ID] = s
		t.UsageCount++
		created(w, r, b.view(s))
	}
}

func DeleteTemplate(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b.mu.Lock()
		defer b.mu.Unlock()
		t, ok := b.templates[id]
		if !ok {
			logNotFound(w, r, "template.delete", id)
			return
		}
		if t.OwnerID != middlewares.UserID(r.Context()) {
			logDetail(w, r, http.StatusForbidden, log.DebugLevel, "template.delete.owner", detailForbidden)
			return
		}
		delete(b.templates, id)
		noContent(w)
	}
}
