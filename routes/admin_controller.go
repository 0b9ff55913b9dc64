package routes

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/routes/middlewares"
)

const (
	detailNoAccess = "Nie masz dostępu do tej ankiety"
	maxNameLen     = 255
)

// owned looks up a survey of the current user, answering 404/403 itself
// when there is none. Callers hold the lock.
func (b *Backend) owned(w http.ResponseWriter, r *http.Request, code, id string) (*survey, bool) {
	s, ok := b.surveys[id]
	if !ok {
		logNotFound(w, r, code, id)
		return nil, false
	}
	if s.OwnerID != middlewares.UserID(r.Context()) {
		logDetail(w, r, http.StatusForbidden, log.DebugLevel, code+".owner", detailNoAccess)
		return nil, false
	}
	return s, true
}

func CreateSurvey(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.SurveyCreate
		err := render.DecodeJSON(r.Body, &in)
		if err != nil {
			logInvalid(w, r, "survey.create.parse_body", "name", err.Error())
			return
		}
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" || utf8.RuneCountInString(in.Name) > maxNameLen {
			logInvalid(w, r, "survey.create.name", "name", "Nazwa musi mieć od 1 do 255 znaków")
			return
		}
		if in.Status == "" {
			in.Status = model.StatusPrivate
		}
		if in.Status != model.StatusPublic && in.Status != model.StatusPrivate {
			logInvalid(w, r, "survey.create.status", "status", "Nieprawidłowy status")
			return
		}

		now := b.now()
		s := &survey{
			seq: b.next(),
			Survey: model.Survey{
				ID:        newID(),
				Name:      in.Name,
				CreatedAt: model.NewTime(now),
				Status:    in.Status,
				Questions: []model.Question{},
			},
			OwnerID: middlewares.UserID(r.Context()),
		}
		if in.PreventDuplicates != nil {
			s.PreventDuplicates = *in.PreventDuplicates
		}
		if in.ExpiresDelta != nil && *in.ExpiresDelta > 0 {
			exp := model.NewTime(now.Add(time.Duration(*in.ExpiresDelta) * 24 * time.Hour))
			s.ExpiresAt = &exp
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		b.surveys[s.ID] = s
		created(w, r, b.view(s))
	}
}

func ListSurveys(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.UserID(r.Context())
		b.mu.RLock()
		defer b.mu.RUnlock()
		render.JSON(w, r, b.surveysWhere(func(s *survey) bool { return s.OwnerID == owner }))
	}
}

// SurveysByName lists the user's surveys whose name contains the given one.
func SurveysByName(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middlewares.UserID(r.Context())
		name := strings.ToLower(chi.URLParam(r, "name"))
		b.mu.RLock()
		defer b.mu.RUnlock()
		render.JSON(w, r, b.surveysWhere(func(s *survey) bool {
			return s.OwnerID == owner && strings.Contains(strings.ToLower(s.Name), name)
		}))
	}
}

func DeleteSurvey(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		s, ok := b.owned(w, r, "survey.delete", chi.URLParam(r, "id"))
		if !ok {
			return
		}
		b.deleteSurvey(s.ID)
		noContent(w)
	}
}

func UpdateSurveyStatus(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Status model.SurveyStatus `json:"status"`
		}
		err := render.DecodeJSON(r.Body, &in)
		if err != nil {
			logInvalid(w, r, "survey.status.parse_body", "status", err.Error())
			return
		}
		switch in.Status {
		case model.StatusPublic, model.StatusPrivate, model.StatusExpired:
		default:
			logInvalid(w, r, "survey.status", "status", "Nieprawidłowy status")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		s, ok := b.owned(w, r, "survey.status", chi.URLParam(r, "id"))
		if !ok {
			return
		}
		s.Status = in.Status
		now := model.NewTime(b.now())
		s.LastUpdated = &now
		render.JSON(w, r, b.view(s))
	}
}

// ReplaceQuestions swaps the whole question list of a survey. Positions
// follow the request order.
func ReplaceQuestions(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in []model.QuestionCreate
		err := render.DecodeJSON(r.Body, &in)
		if err != nil {
			logInvalid(w, r, "question.replace.parse_body", "questions", err.Error())
			return
		}

		qs := make([]model.Question, len(in))
		for i, q := range in {
			if strings.TrimSpace(q.Content) == "" {
				logInvalid(w, r, "question.replace.content", "content", "Treść pytania jest wymagana")
				return
			}
			if !q.AnswerType.Valid() {
				logInvalid(w, r, "question.replace.answer_type", "answer_type", "Nieznany typ pytania")
				return
			}
			choices := []model.Choice{}
			if q.AnswerType.NeedsChoices() {
				for j, ch := range q.Choices {
					choices = append(choices, model.Choice{Position: j, Content: ch.Content})
				}
			}
			qs[i] = model.Question{
				ID:         newID(),
				Content:    q.Content,
				Position:   i,
				AnswerType: q.AnswerType,
				Choices:    choices,
				Settings:   q.Settings,
			}
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		s, ok := b.owned(w, r, "question.replace", chi.URLParam(r, "id"))
		if !ok {
			return
		}
		if s.IsLocked {
			logDetail(w, r, http.StatusConflict, log.DebugLevel, "question.replace.locked", "Ankieta jest zablokowana do edycji")
			return
		}
		s.Questions = qs
		now := model.NewTime(b.now())
		s.LastUpdated = &now
		render.JSON(w, r, qs)
	}
}

func ListSubmissions(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		s, ok := b.owned(w, r, "submission.list", chi.URLParam(r, "id"))
		if !ok {
			return
		}
		subs := b.submissionsOf(s.ID)
		out := make([]model.Submission, len(subs))
		for i, sub := range subs {
			out[i] = sub.Submission
		}
		render.JSON(w, r, out)
	}
}

func CreateShareLink(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.ShareLinkCreate
		err := render.DecodeJSON(r.Body, &in)
		if err != nil {
			logInvalid(w, r, "share.create.parse_body", "is_active", err.Error())
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		s, ok := b.owned(w, r, "share.create", chi.URLParam(r, "id"))
		if !ok {
			return
		}
		l := &shareLink{
			seq: b.next(),
			ShareLink: model.ShareLink{
				ID:           newID(),
				SurveyID:     s.ID,
				ShareToken:   strings.ReplaceAll(newID(), "-", ""),
				IsActive:     in.IsActive == nil || *in.IsActive,
				MaxResponses: in.MaxResponses,
				Password:     in.Password,
				ExpiresAt:    in.ExpiresAt,
				CreatedAt:    model.NewTime(b.now()),
			},
		}
		b.links[l.ID] = l
		created(w, r, l.view())
	}
}

func ListShareLinks(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		s, ok := b.owned(w, r, "share.list", chi.URLParam(r, "id"))
		if !ok {
			return
		}
		render.JSON(w, r, b.linksOf(s.ID))
	}
}

func DeleteShareLink(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b.mu.Lock()
		defer b.mu.Unlock()
		l, ok := b.links[id]
		if !ok {
			logNotFound(w, r, "share.delete", id)
			return
		}
		if _, ok := b.owned(w, r, "share.delete", l.SurveyID); !ok {
			return
		}
		delete(b.links, id)
		noContent(w)
	}
}
