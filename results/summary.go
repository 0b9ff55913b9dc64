package results

import (
	"fmt"
	"strings"

	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

// Summary is the plain text report copied to the clipboard.
func Summary(s model.Survey, subs []model.Submission) (string, error) {
	if len(subs) == 0 {
		return "", errors.New(MsgNoCopyData)
	}
	rule, thin := strings.Repeat("=", 60), strings.Repeat("-", 60)

	var b strings.Builder
	fmt.Fprintf(&b, "Wyniki ankiety: %s\n", s.Name)
	fmt.Fprintf(&b, "%s\n\n", rule)
	fmt.Fprintf(&b, "Liczba odpowiedzi: %d\n", len(subs))
	fmt.Fprintf(&b, "Liczba pytań: %d\n", len(s.Questions))
	fmt.Fprintf(&b, "Kompletność: %d%%\n\n", CompletionRate(s, subs))
	fmt.Fprintf(&b, "%s\n\n", rule)

	for i, st := range Collect(s, subs) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, st.Question.Content)
		fmt.Fprintf(&b, "Typ: %s\n", st.Question.AnswerType.Label())
		fmt.Fprintf(&b, "Odpowiedzi: %d\n", st.Total())
		if st.Question.AnswerType != model.AnswerOpen && len(st.Question.Choices) > 0 {
			b.WriteString("\nRozkład odpowiedzi:\n")
			for _, c := range st.Choices() {
				fmt.Fprintf(&b, "  - %s: %d (%.1f%%)\n", c.Label, c.Count, Percentage(c.Count, st.Total()))
			}
		}
		fmt.Fprintf(&b, "\n%s\n\n", thin)
	}
	return b.String(), nil
}
