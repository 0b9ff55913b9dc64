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

const (
	DetailAlreadySubmitted = "Już wypełniłeś tę ankietę. Wielokrotne przesyłanie jest zablokowane."
	DetailSurveyExpired    = "Ta ankieta wygasła i nie przyjmuje już odpowiedzi."
	DetailQuestionsChanged = "Ankieta została zmodyfikowana. Niektóre pytania już nie istnieją. Odśwież stronę."
	DetailChoicesChanged   = "Opcje odpowiedzi zostały zmienione. Odśwież stronę."
	DetailLinkExpired      = "Link do ankiety wygasł."
)

// readable looks up a survey the current user may see: their own, or a
// public one. Callers hold the lock.
func (b *Backend) readable(w http.ResponseWriter, r *http.Request, code, id string) (*survey, bool) {
	s, ok := b.surveys[id]
	if !ok {
		logNotFound(w, r, code, id)
		return nil, false
	}
	if s.OwnerID != middlewares.UserID(r.Context()) && s.Status == model.StatusPrivate {
		logDetail(w, r, http.StatusForbidden, log.DebugLevel, code+".private", detailNoAccess)
		return nil, false
	}
	return s, true
}

func GetSurvey(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		s, ok := b.readable(w, r, "survey.get", chi.URLParam(r, "id"))
		if !ok {
			return
		}
		render.JSON(w, r, b.view(s))
	}
}

// GetPublicSurvey serves public surveys to anyone, owner or not.
func GetPublicSurvey(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b.mu.RLock()
		defer b.mu.RUnlock()
		s, ok := b.surveys[id]
		if !ok {
			logNotFound(w, r, "survey.get_public", id)
			return
		}
		if s.Status == model.StatusPrivate {
			logDetail(w, r, http.StatusForbidden, log.DebugLevel, "survey.get_public.private", detailNoAccess)
			return
		}
		render.JSON(w, r, b.view(s))
	}
}

func PublicSurveys(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		render.JSON(w, r, b.surveysWhere(func(s *survey) bool {
			return s.Status == model.StatusPublic && !b.expired(s)
		}))
	}
}

func ListQuestions(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.RLock()
		defer b.mu.RUnlock()
		s, ok := b.readable(w, r, "question.list", chi.URLParam(r, "id"))
		if !ok {
			return
		}
		render.JSON(w, r, b.view(s).Questions)
	}
}

// SurveyByShareToken opens a survey through a share link, private ones
// included, and counts the click.
func SurveyByShareToken(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		b.mu.RLock()
		defer b.mu.RUnlock()

		var link *shareLink
		for _, l := range b.links {
			if l.ShareToken == token {
				link = l
				break
			}
		}
		if link == nil || !link.IsActive {
			logNotFound(w, r, "share.token", token)
			return
		}
		if link.ExpiresAt != nil && !link.ExpiresAt.IsZero() && !b.now().Before(link.ExpiresAt.Time) {
			logDetail(w, r, http.StatusGone, log.DebugLevel, "share.token.expired", DetailLinkExpired)
			return
		}
		s, ok := b.surveys[link.SurveyID]
		if !ok {
			logNotFound(w, r, "share.token.survey", link.SurveyID)
			return
		}
		if link.MaxResponses != nil && len(b.submissionsOf(s.ID)) >= *link.MaxResponses {
			logDetail(w, r, http.StatusGone, log.DebugLevel, "share.token.max_responses", DetailLinkExpired)
			return
		}

		link.clicks.Inc()
		render.JSON(w, r, b.view(s))
	}
}

func CheckDuplicate(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			FingerprintAdvanced *string `json:"fingerprint_advanced"`
		}
		if r.ContentLength != 0 {
			err := render.DecodeJSON(r.Body, &in)
			if err != nil {
				logInvalid(w, r, "submission.check_duplicate.parse_body", "fingerprint_advanced", err.Error())
				return
			}
		}
		var fp string
		if in.FingerprintAdvanced != nil {
			fp = *in.FingerprintAdvanced
		}

		id := chi.URLParam(r, "id")
		b.mu.RLock()
		defer b.mu.RUnlock()
		s, ok := b.surveys[id]
		if !ok {
			logNotFound(w, r, "submission.check_duplicate", id)
			return
		}
		render.JSON(w, r, model.DuplicateCheck{
			AlreadySubmitted: s.PreventDuplicates && b.alreadySubmitted(s.ID, middlewares.UserID(r.Context()), fp),
		})
	}
}

// SubmitSurvey records a submission. Answers must match the current
// questions and choices of the survey.
func SubmitSurvey(b *Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.SubmissionCreate
		err := render.DecodeJSON(r.Body, &in)
		if err != nil {
			logInvalid(w, r, "submission.create.parse_body", "answers", err.Error())
			return
		}
		var fp string
		if in.FingerprintAdvanced != nil {
			fp = *in.FingerprintAdvanced
		}
		userID := middlewares.UserID(r.Context())

		b.mu.Lock()
		defer b.mu.Unlock()
		s, ok := b.surveys[in.SurveyID]
		if !ok {
			logNotFound(w, r, "submission.create", in.SurveyID)
			return
		}
		if b.expired(s) {
			logDetail(w, r, http.StatusGone, log.DebugLevel, "submission.create.expired", DetailSurveyExpired)
			return
		}
		if status, detail := checkAnswers(s.Survey, in.Answers); status != 0 {
			logDetail(w, r, status, log.DebugLevel, "submission.create.answers", detail)
			return
		}
		if s.PreventDuplicates && b.alreadySubmitted(s.ID, userID, fp) {
			logDetail(w, r, http.StatusConflict, log.DebugLevel, "submission.create.duplicate", DetailAlreadySubmitted)
			return
		}

		now := model.NewTime(b.now())
		sub := &submission{
			seq: b.next(),
			Submission: model.Submission{
				ID:        newID(),
				SurveyID:  s.ID,
				CreatedAt: &now,
				Answers:   append([]model.Answer{}, in.Answers...),
			},
			UserID:      userID,
			Fingerprint: fp,
		}
		b.submissions[sub.ID] = sub
		created(w, r, sub.Submission)
	}
}

func checkAnswers(s model.Survey, answers []model.Answer) (status int, detail string) {
	for _, a := range answers {
		q, ok := s.Question(a.QuestionID)
		if !ok {
			return http.StatusBadRequest, DetailQuestionsChanged
		}
		if a.Response == "" {
			continue
		}
		switch q.AnswerType {
		case model.AnswerClose, model.AnswerDropdown:
			if !hasChoice(q, a.Response) {
				return http.StatusBadRequest, DetailChoicesChanged
			}
		case model.AnswerMultiple:
			for _, part := range strings.Split(a.Response, ",") {
				if !hasChoice(q, strings.TrimSpace(part)) {
					return http.StatusBadRequest, DetailChoicesChanged
				}
			}
		}
	}
	return 0, ""
}

func hasChoice(q model.Question, content string) bool {
	for _, ch := range q.Choices {
		if ch.Content == content {
			return true
		}
	}
	return false
}
