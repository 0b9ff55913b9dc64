package routes

import (
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"go.uber.org/atomic"
)

// Mail kinds passed to Options.OnMail.
const (
	MailConfirmation = "confirmation"
	MailReset        = "reset"
)

type Options struct {
	// Secret signs access tokens (HS256).
	Secret   string
	TokenTTL time.Duration
	// AutoConfirm lets new accounts log in without confirming their email.
	AutoConfirm bool
	// OnMail receives the tokens a real server would send by email.
	// Defaults to logging them.
	OnMail func(kind, email, token string)
	// Admins are the emails that register as superusers.
	Admins []string
}

type user struct {
	seq       int64
	ID        string
	Email     string
	Hash      []byte
	Confirmed bool
	Role      model.Role
	CreatedAt time.Time
}

type survey struct {
	seq int64
	model.Survey
	OwnerID string
}

type submission struct {
	seq int64
	model.Submission
	UserID      string
	Fingerprint string
}

type shareLink struct {
	seq int64
	model.ShareLink
	clicks atomic.Int64
}

type template struct {
	seq int64
	model.SurveyTemplate
	OwnerID string
}

// Backend is an in-memory Ankietio server, good for demos and tests.
type Backend struct {
	secret   []byte
	tokenTTL time.Duration
	confirm  bool
	onMail   func(kind, email, token string)
	admins   []string
	Now      func() time.Time

	seq atomic.Int64

	mu          sync.RWMutex
	users       map[string]*user
	surveys     map[string]*survey
	submissions map[string]*submission
	links       map[string]*shareLink
	templates   map[string]*template
	// one-time tokens sent by mail, to the email they belong to
	confirmations map[string]string
	resets        map[string]string
}

func NewBackend(opts Options) *Backend {
	if opts.Secret == "" {
		opts.Secret = newID()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 30 * time.Minute
	}
	if opts.OnMail == nil {
		opts.OnMail = func(kind, email, token string) {
			log.Infof("mail.%s: %s token=%s", kind, email, token)
		}
	}
	b := &Backend{
		secret:        []byte(opts.Secret),
		tokenTTL:      opts.TokenTTL,
		confirm:       !opts.AutoConfirm,
		onMail:        opts.OnMail,
		admins:        opts.Admins,
		Now:           time.Now,
		users:         map[string]*user{},
		surveys:       map[string]*survey{},
		submissions:   map[string]*submission{},
		links:         map[string]*shareLink{},
		templates:     map[string]*template{},
		confirmations: map[string]string{},
		resets:        map[string]string{},
	}
	b.seedTemplates()
	return b
}

func newID() string {
	id, err := uuid.NewV4()
	if err != nil {
		panic(err)
	}
	return id.String()
}

func (b *Backend) next() int64 {
	return b.seq.Inc()
}

func (b *Backend) now() time.Time {
	return b.Now().UTC()
}

func (b *Backend) userByEmail(email string) *user {
	for _, u := range b.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// expired reports whether a survey can no longer be filled.
func (b *Backend) expired(s *survey) bool {
	if s.Status == model.StatusExpired {
		return true
	}
	return s.ExpiresAt != nil && !s.ExpiresAt.IsZero() && !b.now().Before(s.ExpiresAt.Time)
}

// view is the survey as sent to clients.
func (b *Backend) view(s *survey) model.Survey {
	out := s.Survey
	if b.expired(s) {
		out.Status = model.StatusExpired
	}
	out.Questions = append([]model.Question{}, s.Questions...)
	out.SubmissionCount = 0
	for _, sub := range b.submissions {
		if sub.SurveyID == s.ID {
			out.SubmissionCount++
		}
	}
	return out
}

func (b *Backend) surveysWhere(keep func(*survey) bool) []model.Survey {
	var list []*survey
	for _, s := range b.surveys {
		if keep(s) {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
	out := make([]model.Survey, 0, len(list))
	for _, s := range list {
		out = append(out, b.view(s))
	}
	return out
}

func (b *Backend) submissionsOf(surveyID string) []*submission {
	var list []*submission
	for _, sub := range b.submissions {
		if sub.SurveyID == surveyID {
			list = append(list, sub)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
	return list
}

func (b *Backend) linksOf(surveyID string) []model.ShareLink {
	var list []*shareLink
	for _, l := range b.links {
		if l.SurveyID == surveyID {
			list = append(list, l)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
	out := make([]model.ShareLink, 0, len(list))
	for _, l := range list {
		out = append(out, l.view())
	}
	return out
}

func (l *shareLink) view() model.ShareLink {
	out := l.ShareLink
	out.Clicks = int(l.clicks.Load())
	return out
}

func (b *Backend) templatesWhere(keep func(*template) bool) []model.SurveyTemplate {
	var list []*template
	for _, t := range b.templates {
		if keep(t) {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
	out := make([]model.SurveyTemplate, 0, len(list))
	for _, t := range list {
		out = append(out, t.SurveyTemplate)
	}
	return out
}

// alreadySubmitted matches a previous submission by user or by device.
func (b *Backend) alreadySubmitted(surveyID, userID, fingerprint string) bool {
	for _, sub := range b.submissions {
		if sub.SurveyID != surveyID {
			continue
		}
		if userID != "" && sub.UserID == userID {
			return true
		}
		if fingerprint != "" && sub.Fingerprint == fingerprint {
			return true
		}
	}
	return false
}

// deleteSurvey removes a survey with everything hanging from it. Callers
// hold the write lock.
func (b *Backend) deleteSurvey(id string) {
	delete(b.surveys, id)
	for k, sub := range b.submissions {
		if sub.SurveyID == id {
			delete(b.submissions, k)
		}
	}
	for k, l := range b.links {
		if l.SurveyID == id {
			delete(b.links, k)
		}
	}
}

func (b *Backend) deleteUser(id string) {
	for k, s := range b.surveys {
		if s.OwnerID == id {
			b.deleteSurvey(k)
		}
	}
	for k, sub := range b.submissions {
		if sub.UserID == id {
			delete(b.submissions, k)
		}
	}
	for k, t := range b.templates {
		if t.OwnerID == id {
			delete(b.templates, k)
		}
	}
	delete(b.users, id)
}

func ptr[T any](v T) *T { return &v }

func (b *Backend) seedTemplates() {
	scale := &model.QuestionSettings{Min: ptr(1.0), Max: ptr(5.0), Step: ptr(1.0), Required: ptr(true)}
	seeds := []model.SurveyTemplateCreate{
		{
			Name:        "Opinia o wydarzeniu",
			Description: "Zbierz opinie uczestników po wydarzeniu",
			Category:    model.CategoryEvent,
			QuestionsData: []model.TemplateQuestion{
				{Content: "Jak oceniasz wydarzenie?", AnswerType: model.AnswerRating, Choices: []model.Choice{}, Settings: scale},
				{Content: "Czy polecisz nas znajomym?", AnswerType: model.AnswerYesNo, Choices: []model.Choice{}, Settings: &model.QuestionSettings{}},
				{Content: "Co możemy poprawić?", AnswerType: model.AnswerOpen, Choices: []model.Choice{}, Settings: &model.QuestionSettings{}},
			},
		},
		{
			Name:        "Szybkie głosowanie",
			Description: "Jedno pytanie, kilka opcji",
			Category:    model.CategoryPoll,
			QuestionsData: []model.TemplateQuestion{
				{Content: "Którą opcję wybierasz?", AnswerType: model.AnswerClose, Choices: []model.Choice{
					{Position: 0, Content: "Opcja A"}, {Position: 1, Content: "Opcja B"},
				}, Settings: &model.QuestionSettings{}},
			},
		},
	}
	for _, in := range seeds {
		in.IsPublic = true
		b.addTemplate(in, "")
	}
}

func (b *Backend) addTemplate(in model.SurveyTemplateCreate, ownerID string) *template {
	t := &template{
		seq: b.next(),
		SurveyTemplate: model.SurveyTemplate{
			ID:            newID(),
			Name:          in.Name,
			Description:   in.Description,
			Category:      in.Category,
			QuestionsData: in.QuestionsData,
			IsPublic:      in.IsPublic,
			CreatedAt:     model.NewTime(b.now()),
		},
		OwnerID: ownerID,
	}
	b.templates[t.ID] = t
	return t
}
