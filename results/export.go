package results

import (
	"regexp"
	"strings"
	"time"

	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

const (
	MsgNoData       = "Brak danych do eksportu"
	MsgNoCopyData   = "Brak danych do skopiowania"
	MsgPDFGenerated = "PDF został wygenerowany"
	MsgPDFFailed    = "Błąd podczas generowania PDF: "
)

// ErrNoData is returned by the exports when there are no submissions.
var ErrNoData = errors.New(MsgNoData)

// DateLayout is how submission dates are printed.
const DateLayout = "2.01.2006, 15:04:05"

func submittedAt(sub model.Submission, now func() time.Time) time.Time {
	if sub.CreatedAt != nil && !sub.CreatedAt.IsZero() {
		return sub.CreatedAt.Time.Local()
	}
	return now()
}

// CSV renders one line per submission, preceded by a header. Every value
// is wrapped in double quotes as is; quotes inside values are not escaped.
func CSV(s model.Survey, subs []model.Submission) (string, error) {
	return csvAt(s, subs, time.Now)
}

func csvAt(s model.Survey, subs []model.Submission, now func() time.Time) (string, error) {
	if len(subs) == 0 {
		return "", ErrNoData
	}

	var b strings.Builder
	b.WriteString("Data wypełnienia")
	for _, q := range s.Questions {
		b.WriteString(`,"` + q.Content + `"`)
	}
	b.WriteByte('\n')

	for _, sub := range subs {
		b.WriteString(`"` + submittedAt(sub, now).Format(DateLayout) + `"`)
		for _, q := range s.Questions {
			var response string
			for _, a := range sub.Answers {
				if a.QuestionID == q.ID {
					response = a.Response
					break
				}
			}
			b.WriteString(`,"` + response + `"`)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func CSVFilename(name string) string {
	return "ankieta-" + name + "-wyniki.csv"
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]`)

// PDFFilename keeps ASCII letters and digits of the survey name, at most
// 30 of them.
func PDFFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Ankieta"
	}
	safe := unsafeName.ReplaceAllString(name, "_")
	if len(safe) > 30 {
		safe = safe[:30]
	}
	return safe + "-wyniki.pdf"
}
