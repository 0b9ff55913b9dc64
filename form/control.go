package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mbolis/ankietio/model"
)

// Control is the input bound to one question of a survey being filled.
// NewControl picks the concrete type from the question's answer type.
type Control interface {
	Question() model.Question
	// Set replaces the current value from raw user input.
	Set(input string) error
	// Response is the answer as sent to the API.
	Response() string
	Answered() bool
	Validate() *FieldError
	Touch()
	Touched() bool

	control()
}

func NewControl(q model.Question) (Control, error) {
	b := base{q: q}
	switch q.AnswerType {
	case model.AnswerOpen:
		return &Open{text{base: b}}, nil
	case model.AnswerClose:
		return &Close{choiceSelect{text{base: b}}}, nil
	case model.AnswerMultiple:
		return &Multiple{base: b, Checked: make([]bool, len(q.Choices))}, nil
	case model.AnswerScale:
		return &Scale{numeric{base: b, Value: defaultNumber(q)}}, nil
	case model.AnswerRating:
		return &Rating{base: b}, nil
	case model.AnswerYesNo:
		return &YesNo{text{base: b}}, nil
	case model.AnswerDropdown:
		return &Dropdown{choiceSelect{text{base: b}}}, nil
	case model.AnswerDate:
		return &Date{text{base: b}}, nil
	case model.AnswerEmail:
		return &EmailAddress{text{base: b}}, nil
	case model.AnswerNumber:
		return &Number{numeric{base: b, Value: defaultNumber(q)}}, nil
	}
	return nil, fmt.Errorf("form.control: unknown answer type %q", q.AnswerType)
}

// defaultNumber is settings.min, unless unset or zero.
func defaultNumber(q model.Question) float64 {
	if q.Settings != nil && q.Settings.Min != nil && *q.Settings.Min != 0 {
		return *q.Settings.Min
	}
	return 1
}

type base struct {
	q       model.Question
	touched bool
}

func (b *base) Question() model.Question { return b.q }
func (b *base) Touch()                   { b.touched = true }
func (b *base) Touched() bool            { return b.touched }
func (*base) control()                   {}

type text struct {
	base
	Value string
}

func (t *text) Set(input string) error {
	t.Value = input
	return nil
}
func (t *text) Response() string { return t.Value }
func (t *text) Answered() bool   { return strings.TrimSpace(t.Value) != "" }
func (t *text) Validate() *FieldError {
	return nil
}

// Open is free text; it must contain something other than whitespace.
type Open struct{ text }

func (o *Open) Validate() *FieldError {
	return Field{o.q.ID, "Odpowiedź", o.Value, []Rule{Required, NoWhitespace}}.check()
}

type EmailAddress struct{ text }

func (e *EmailAddress) Set(input string) error {
	e.Value = strings.TrimSpace(input)
	return nil
}

func (e *EmailAddress) Validate() *FieldError {
	return Email(e.q.ID, "Email", e.Value)
}

// Date holds a calendar day as YYYY-MM-DD.
type Date struct{ text }

func (d *Date) Set(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		d.Value = ""
		return nil
	}
	t, err := time.Parse(time.DateOnly, input)
	if err != nil {
		return fmt.Errorf("nieprawidłowa data %q (oczekiwano RRRR-MM-DD)", input)
	}
	d.Value = t.Format(time.DateOnly)
	return nil
}

type YesNo struct{ text }

const (
	Yes = "Tak"
	No  = "Nie"
)

func (y *YesNo) Options() []string { return []string{Yes, No} }

func (y *YesNo) Set(input string) error {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		y.Value = ""
	case "1", "t", "tak", "y", "yes":
		y.Value = Yes
	case "2", "n", "nie", "no":
		y.Value = No
	default:
		return fmt.Errorf("odpowiedz %q lub %q", Yes, No)
	}
	return nil
}

// choiceSelect picks exactly one of the question's choices, by 1-based
// number or by its content.
type choiceSelect struct {
	text
}

func (c *choiceSelect) Options() []string {
	opts := make([]string, len(c.q.Choices))
	for i, ch := range c.q.Choices {
		opts[i] = ch.Content
	}
	return opts
}

func (c *choiceSelect) Set(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		c.Value = ""
		return nil
	}
	i, err := pickChoice(c.q.Choices, input)
	if err != nil {
		return err
	}
	c.Value = c.q.Choices[i].Content
	return nil
}

// Close is a single choice question.
type Close struct{ choiceSelect }

type Dropdown struct{ choiceSelect }

// Multiple is a checkbox per choice.
type Multiple struct {
	base
	Checked []bool
}

func (m *Multiple) Options() []string {
	opts := make([]string, len(m.q.Choices))
	for i, ch := range m.q.Choices {
		opts[i] = ch.Content
	}
	return opts
}

func (m *Multiple) Toggle(i int) {
	if i >= 0 && i < len(m.Checked) {
		m.Checked[i] = !m.Checked[i]
	}
}

// Set checks exactly the comma separated choices (numbers or contents).
func (m *Multiple) Set(input string) error {
	checked := make([]bool, len(m.Checked))
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, err := pickChoice(m.q.Choices, part)
		if err != nil {
			return err
		}
		checked[i] = true
	}
	m.Checked = checked
	return nil
}

// Response joins the contents of the checked choices with ", ".
func (m *Multiple) Response() string {
	var selected []string
	for i, ch := range m.q.Choices {
		if i < len(m.Checked) && m.Checked[i] {
			selected = append(selected, ch.Content)
		}
	}
	return strings.Join(selected, ", ")
}

func (m *Multiple) Answered() bool {
	for _, c := range m.Checked {
		if c {
			return true
		}
	}
	return false
}

func (m *Multiple) Validate() *FieldError { return nil }

type numeric struct {
	base
	Value float64
}

func (n *numeric) Set(input string) error {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(input), ",", "."), 64)
	if err != nil {
		return fmt.Errorf("nieprawidłowa liczba %q", input)
	}
	n.Value = v
	return nil
}
func (n *numeric) Response() string      { return strconv.FormatFloat(n.Value, 'f', -1, 64) }
func (n *numeric) Answered() bool        { return true }
func (n *numeric) Validate() *FieldError { return nil }

// Bounds returns the configured range, defaulting to 1..10.
func (n *numeric) Bounds() (min, max float64) {
	min, max = 1, 10
	if s := n.q.Settings; s != nil {
		if s.Min != nil {
			min = *s.Min
		}
		if s.Max != nil {
			max = *s.Max
		}
	}
	return
}

type Scale struct{ numeric }

type Number struct{ numeric }

// Rating is a number of stars, 1 up to settings.max (5 by default).
type Rating struct {
	base
	Stars int
}

func (r *Rating) Max() int {
	if s := r.q.Settings; s != nil && s.Max != nil && *s.Max >= 1 {
		return int(*s.Max)
	}
	return 5
}

func (r *Rating) Set(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		r.Stars = 0
		return nil
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > r.Max() {
		return fmt.Errorf("podaj liczbę gwiazdek od 1 do %d", r.Max())
	}
	r.Stars = n
	return nil
}

func (r *Rating) Response() string {
	if r.Stars == 0 {
		return ""
	}
	return strconv.Itoa(r.Stars)
}
func (r *Rating) Answered() bool        { return r.Stars > 0 }
func (r *Rating) Validate() *FieldError { return nil }

func pickChoice(choices []model.Choice, input string) (int, error) {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(choices) {
			return n - 1, nil
		}
		return 0, fmt.Errorf("wybierz numer od 1 do %d", len(choices))
	}
	for i, ch := range choices {
		if strings.EqualFold(ch.Content, input) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("nieznana odpowiedź %q", input)
}

// ValidateControls marks every control touched and checks them all.
// The returned *Invalid names the first invalid question id.
func ValidateControls(controls []Control) error {
	var c collector
	for _, ctl := range controls {
		ctl.Touch()
		c.add(ctl.Validate())
	}
	return c.result()
}
