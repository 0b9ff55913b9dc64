// Package results aggregates the submissions of a survey per question and
// exports them as CSV, PDF or plain text.
package results

import (
	"fmt"
	"math"
	"strings"

	"github.com/mbolis/ankietio/model"
)

// Chart is how a question's answers are drawn.
type Chart string

const (
	NoChart Chart = ""
	Pie     Chart = "pie"
	Bar     Chart = "bar"
)

type Bucket struct {
	Label string
	Count int
}

// Stat is everything answered to one question.
type Stat struct {
	Question  model.Question
	Responses []string
	Chart     Chart
	// Histogram is in order of first appearance.
	Histogram []Bucket
}

func (s Stat) Total() int { return len(s.Responses) }

// Choices counts, for every choice of the question, the responses
// mentioning it.
func (s Stat) Choices() []Bucket {
	out := make([]Bucket, len(s.Question.Choices))
	for i, ch := range s.Question.Choices {
		out[i] = Bucket{ch.Content, CountResponsesFor(s.Responses, ch.Content)}
	}
	return out
}

// HasChoiceTable reports whether the question is summarized per choice
// rather than by listing raw responses.
func (s Stat) HasChoiceTable() bool {
	return s.Question.AnswerType != model.AnswerOpen && len(s.Question.Choices) > 0
}

// Collect gathers, for each question in survey order, the responses of
// every submission.
func Collect(s model.Survey, subs []model.Submission) []Stat {
	stats := make([]Stat, len(s.Questions))
	for i, q := range s.Questions {
		var responses []string
		for _, sub := range subs {
			for _, a := range sub.Answers {
				if a.QuestionID == q.ID {
					responses = append(responses, a.Response)
				}
			}
		}
		st := Stat{Question: q, Responses: responses}
		switch q.AnswerType {
		case model.AnswerClose:
			st.Chart = Pie
			st.Histogram = histogram(responses, false)
		case model.AnswerMultiple:
			st.Chart = Bar
			st.Histogram = histogram(responses, true)
		}
		stats[i] = st
	}
	return stats
}

// histogram counts responses; split counts each comma separated token.
func histogram(responses []string, split bool) []Bucket {
	var out []Bucket
	index := map[string]int{}
	add := func(label string) {
		if i, ok := index[label]; ok {
			out[i].Count++
			return
		}
		index[label] = len(out)
		out = append(out, Bucket{label, 1})
	}
	for _, r := range responses {
		if !split {
			add(r)
			continue
		}
		for _, tok := range strings.Split(r, ",") {
			add(strings.TrimSpace(tok))
		}
	}
	return out
}

// CountResponsesFor counts the responses containing choice.
func CountResponsesFor(responses []string, choice string) int {
	n := 0
	for _, r := range responses {
		if strings.Contains(r, choice) {
			n++
		}
	}
	return n
}

func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// CompletionRate is the rounded share of questions answered over all
// submissions.
func CompletionRate(s model.Survey, subs []model.Submission) int {
	possible := len(subs) * len(s.Questions)
	if possible == 0 {
		return 0
	}
	actual := 0
	for _, sub := range subs {
		actual += len(sub.Answers)
	}
	return int(math.Round(float64(actual) / float64(possible) * 100))
}

// AvgResponseTime estimates how long a submission takes, as "1.5m" or "40s".
func AvgResponseTime(s model.Survey, subs []model.Submission) string {
	if len(subs) == 0 {
		return "N/A"
	}
	open := 0
	for _, q := range s.Questions {
		if q.AnswerType == model.AnswerOpen {
			open++
		}
	}
	minutes := float64(open)*0.5 + float64(len(s.Questions)-open)*0.17
	if minutes >= 1 {
		return fmt.Sprintf("%.1fm", minutes)
	}
	return fmt.Sprintf("%ds", int(math.Round(minutes*60)))
}
