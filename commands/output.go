package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

// Failure is an error whose text is meant for the user as is.
type Failure string

func (f Failure) Error() string { return string(f) }

// fail turns err into what the user reads: the field messages of an
// invalid form, or the localized text of a failed request.
func fail(code string, err error, m httpx.Messages) error {
	if err == nil {
		return nil
	}
	var invalid *form.Invalid
	if errors.As(err, &invalid) {
		var b strings.Builder
		b.WriteString("Formularz zawiera błędy:")
		for _, fe := range invalid.Fields() {
			b.WriteString("\n  - ")
			b.WriteString(fe.Message)
		}
		return Failure(b.String())
	}
	log.Debugf("%s: %s", code, err)
	return Failure(httpx.Describe(err, m))
}

// ErrReported is returned when the failure was already shown to the user
// by a toast.
var ErrReported = errors.New("reported")

// failWith reports a fixed message, keeping err in the debug log.
func failWith(code string, err error, msg string) error {
	log.Debugf("%s: %s", code, err)
	return Failure(msg)
}

var humanizeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "przed chwilą", DivBy: time.Second},
	{D: time.Minute, Format: "%d s %s", DivBy: time.Second},
	{D: time.Hour, Format: "%d min %s", DivBy: time.Minute},
	{D: humanize.Day, Format: "%d godz. %s", DivBy: time.Hour},
	{D: humanize.Week, Format: "%d dni %s", DivBy: humanize.Day},
	{D: humanize.Year, Format: "%d tyg. %s", DivBy: humanize.Week},
	{D: humanize.LongTime, Format: "%d lat %s", DivBy: humanize.Year},
}

// ago prints t relative to now, e.g. "3 dni temu".
func ago(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.CustomRelTime(t, now, "temu", "od teraz", humanizeMagnitudes)
}

func date(t *model.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

var statusLabels = map[model.SurveyStatus]string{
	model.StatusPublic:  "Publiczna",
	model.StatusPrivate: "Prywatna",
	model.StatusExpired: "Wygasła",
}

func statusLabel(s model.SurveyStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func yesNo(b bool) string {
	if b {
		return "tak"
	}
	return "nie"
}

// plural picks the Polish form for n: one, few (2-4) or many.
func plural(n int, one, few, many string) string {
	switch {
	case n == 1:
		return fmt.Sprintf("%d %s", n, one)
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
		return fmt.Sprintf("%d %s", n, few)
	}
	return fmt.Sprintf("%d %s", n, many)
}
