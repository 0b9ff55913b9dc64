package model

type SurveyStatus string

const (
	StatusPublic  SurveyStatus = "public"
	StatusPrivate SurveyStatus = "private"
	StatusExpired SurveyStatus = "expired"
)

type AnswerType string

const (
	AnswerOpen     AnswerType = "open"
	AnswerClose    AnswerType = "close"
	AnswerMultiple AnswerType = "multiple"
	AnswerScale    AnswerType = "scale"
	AnswerRating   AnswerType = "rating"
	AnswerYesNo    AnswerType = "yes_no"
	AnswerDropdown AnswerType = "dropdown"
	AnswerDate     AnswerType = "date"
	AnswerEmail    AnswerType = "email"
	AnswerNumber   AnswerType = "number"
)

// AnswerTypes lists every answer type in display order.
var AnswerTypes = []AnswerType{
	AnswerOpen, AnswerClose, AnswerMultiple, AnswerScale, AnswerRating,
	AnswerYesNo, AnswerDropdown, AnswerDate, AnswerEmail, AnswerNumber,
}

func (t AnswerType) Valid() bool {
	for _, v := range AnswerTypes {
		if v == t {
			return true
		}
	}
	return false
}

// NeedsChoices reports whether questions of this type are answered by
// picking from their own list of choices.
func (t AnswerType) NeedsChoices() bool {
	return t == AnswerClose || t == AnswerMultiple || t == AnswerDropdown
}

// Label is the Polish name shown next to a question.
func (t AnswerType) Label() string {
	switch t {
	case AnswerOpen:
		return "Pytanie otwarte"
	case AnswerClose:
		return "Jednokrotny wybór"
	case AnswerMultiple:
		return "Wielokrotny wybór"
	case AnswerScale:
		return "Skala"
	case AnswerRating:
		return "Ocena gwiazdkowa"
	case AnswerYesNo:
		return "Tak/Nie"
	case AnswerDropdown:
		return "Lista rozwijana"
	case AnswerDate:
		return "Data"
	case AnswerEmail:
		return "Email"
	case AnswerNumber:
		return "Liczba"
	}
	return string(t)
}

type Survey struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	CreatedAt         Time         `json:"created_at"`
	ExpiresAt         *Time        `json:"expires_at"`
	LastUpdated       *Time        `json:"last_updated"`
	Status            SurveyStatus `json:"status"`
	Questions         []Question   `json:"questions"`
	PreventDuplicates bool         `json:"prevent_duplicates"`
	SubmissionCount   int          `json:"submission_count"`
	IsLocked          bool         `json:"is_locked"`
}

type SurveyCreate struct {
	Name              string       `json:"name"`
	ExpiresDelta      *int         `json:"expires_delta,omitempty"`
	PreventDuplicates *bool        `json:"prevent_duplicates,omitempty"`
	Status            SurveyStatus `json:"status,omitempty"`
}

type QuestionSettings struct {
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Step        *float64 `json:"step,omitempty"`
	Required    *bool    `json:"required,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
}

type Question struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Position   int               `json:"position"`
	AnswerType AnswerType        `json:"answer_type"`
	Choices    []Choice          `json:"choices"`
	Settings   *QuestionSettings `json:"settings,omitempty"`
}

type QuestionCreate struct {
	Content    string            `json:"content"`
	Position   int               `json:"position"`
	AnswerType AnswerType        `json:"answer_type"`
	Choices    []Choice          `json:"choices,omitempty"`
	Settings   *QuestionSettings `json:"settings,omitempty"`
}

type Choice struct {
	Position int    `json:"position"`
	Content  string `json:"content"`
}

type Answer struct {
	QuestionID string `json:"question_id"`
	Response   string `json:"response"`
}

type Submission struct {
	ID        string   `json:"id"`
	SurveyID  string   `json:"survey_id"`
	CreatedAt *Time    `json:"created_at,omitempty"`
	Answers   []Answer `json:"answers"`
}

type SubmissionCreate struct {
	SurveyID            string   `json:"survey_id"`
	FingerprintAdvanced *string  `json:"fingerprint_advanced,omitempty"`
	Answers             []Answer `json:"answers"`
}

type DuplicateCheck struct {
	AlreadySubmitted bool `json:"already_submitted"`
}

type ShareLink struct {
	ID           string `json:"id"`
	SurveyID     string `json:"survey_id"`
	ShareToken   string `json:"share_token"`
	IsActive     bool   `json:"is_active"`
	MaxResponses *int   `json:"max_responses,omitempty"`
	Password     string `json:"password,omitempty"`
	ExpiresAt    *Time  `json:"expires_at,omitempty"`
	CreatedAt    Time   `json:"created_at"`
	Clicks       int    `json:"clicks"`
}

type ShareLinkCreate struct {
	IsActive     *bool  `json:"is_active,omitempty"`
	MaxResponses *int   `json:"max_responses,omitempty"`
	Password     string `json:"password,omitempty"`
	ExpiresAt    *Time  `json:"expires_at,omitempty"`
}

type TemplateCategory string

const (
	CategoryFeedback     TemplateCategory = "feedback"
	CategoryQuiz         TemplateCategory = "quiz"
	CategoryPoll         TemplateCategory = "poll"
	CategoryResearch     TemplateCategory = "research"
	CategoryEvent        TemplateCategory = "event"
	CategorySatisfaction TemplateCategory = "satisfaction"
	CategoryCustom       TemplateCategory = "custom"
)

var TemplateCategories = []TemplateCategory{
	CategoryFeedback, CategoryQuiz, CategoryPoll, CategoryResearch,
	CategoryEvent, CategorySatisfaction, CategoryCustom,
}

func (c TemplateCategory) Valid() bool {
	for _, v := range TemplateCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Label is the Polish category name.
func (c TemplateCategory) Label() string {
	switch c {
	case CategoryFeedback:
		return "Opinie"
	case CategoryQuiz:
		return "Quiz"
	case CategoryPoll:
		return "Głosowanie"
	case CategoryResearch:
		return "Badanie"
	case CategoryEvent:
		return "Wydarzenie"
	case CategorySatisfaction:
		return "Satysfakcja"
	case CategoryCustom:
		return "Własny"
	}
	return string(c)
}

// TemplateQuestion is one entry of a template's questions_data.
type TemplateQuestion struct {
	Content    string            `json:"content"`
	AnswerType AnswerType        `json:"answer_type"`
	Choices    []Choice          `json:"choices"`
	Settings   *QuestionSettings `json:"settings"`
}

type SurveyTemplate struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Category      TemplateCategory   `json:"category"`
	QuestionsData []TemplateQuestion `json:"questions_data"`
	IsPublic      bool               `json:"is_public"`
	CreatedAt     Time               `json:"created_at"`
	UsageCount    int                `json:"usage_count"`
}

type SurveyTemplateCreate struct {
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	Category      TemplateCategory   `json:"category"`
	QuestionsData []TemplateQuestion `json:"questions_data"`
	IsPublic      bool               `json:"is_public"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleSuperuser Role = "superuser"
)

type User struct {
	Email     string `json:"email"`
	CreatedAt Time   `json:"created_at"`
}

type UserCreate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserUpdate struct {
	Password string `json:"password,omitempty"`
}

type Credentials struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type EmailRequest struct {
	Email string `json:"email,omitempty"`
	Token string `json:"token,omitempty"`
}

type PasswordReset struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
