package commands

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/mbolis/ankietio/fill"
	"github.com/mbolis/ankietio/form"
)

const (
	msgAlreadySubmitted = "Już wypełniłeś tę ankietę. Dziękujemy!"
	msgFillInterrupted  = "Przerwano wypełnianie ankiety. Odpowiedzi nie zostały wysłane."
	msgNotSent          = "Ankieta nie została wysłana."
	promptSubmit        = "Wysłać odpowiedzi?"
)

// target reads what the user pasted: a share link, a public fill link,
// a bare share token (-token) or a survey id.
func target(arg string, token, public bool) fill.Target {
	if u, err := url.Parse(arg); err == nil && u.Scheme != "" {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		switch {
		case len(parts) == 3 && parts[0] == "survey" && parts[1] == "fill":
			return fill.ByToken(parts[2])
		case len(parts) == 3 && parts[0] == "survey" && strings.HasPrefix(parts[2], "fill"):
			return fill.PublicByID(parts[1])
		}
	}
	switch {
	case token:
		return fill.ByToken(arg)
	case public:
		return fill.PublicByID(arg)
	}
	return fill.ByID(arg)
}

// hint describes the expected input of a control.
func hint(ctl form.Control) string {
	switch c := ctl.(type) {
	case *form.Close, *form.Dropdown:
		opts := c.(interface{ Options() []string }).Options()
		return numbered(opts) + "Wybierz numer lub wpisz odpowiedź"
	case *form.Multiple:
		return numbered(c.Options()) + "Wybierz numery oddzielone przecinkami"
	case *form.YesNo:
		return fmt.Sprintf("%s / %s", form.Yes, form.No)
	case *form.Scale:
		lo, hi := c.Bounds()
		return fmt.Sprintf("Skala %g-%g (Enter: %s)", lo, hi, c.Response())
	case *form.Number:
		lo, hi := c.Bounds()
		return fmt.Sprintf("Liczba %g-%g (Enter: %s)", lo, hi, c.Response())
	case *form.Rating:
		return fmt.Sprintf("Liczba gwiazdek 1-%d", c.Max())
	case *form.Date:
		return "Data RRRR-MM-DD"
	case *form.EmailAddress:
		return "Adres email"
	}
	return ""
}

func numbered(opts []string) string {
	var b strings.Builder
	for i, o := range opts {
		fmt.Fprintf(&b, "  %d) %s\n", i+1, o)
	}
	return b.String()
}

// keepsDefault reports controls for which an empty answer keeps the
// preset value.
func keepsDefault(ctl form.Control) bool {
	switch ctl.(type) {
	case *form.Scale, *form.Number:
		return true
	}
	return false
}

// answer asks question i until the input is accepted.
func answer(ctx context.Context, env *Env, flow *fill.Flow, i int) error {
	ctl := flow.Controls()[i]
	q := ctl.Question()
	env.printf("\n%d/%d. %s\n", i+1, len(flow.Controls()), q.Content)
	if h := hint(ctl); h != "" {
		env.println(h)
	}
	for {
		input, err := env.In.Ask(ctx, "> ")
		if err == io.EOF {
			return errInputEnded
		}
		if err != nil {
			return err
		}
		if !(input == "" && keepsDefault(ctl)) {
			if err := flow.Set(i, input); err != nil {
				env.println(err.Error())
				continue
			}
		}
		if fe := ctl.Validate(); fe != nil {
			env.println(fe.Message)
			continue
		}
		return nil
	}
}

var fillCmd = &Command{
	Name: "fill",
	Args: "[-token | -public] ID|TOKEN|ADRES",
	Help: "Wypełnienie ankiety",
	Run: func(ctx context.Context, env *Env, args []string) error {
		fs := flags(env)
		token := fs.Bool("token", false, "argument to token linku udostępniania")
		public := fs.Bool("public", false, "argument to id ankiety publicznej")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := need(env, fs.Args(), 1); err != nil {
			return err
		}

		flow := env.App.Fill()
		defer flow.Close()

		switch flow.Load(ctx, target(fs.Arg(0), *token, *public)) {
		case fill.Failed:
			return Failure(flow.Message())
		case fill.AlreadySubmitted:
			env.println(msgAlreadySubmitted)
			return nil
		}

		s := flow.Survey()
		env.printf("%s\n%s, ok. %d min\n", s.Name,
			plural(len(s.Questions), "pytanie", "pytania", "pytań"), fill.EstimatedMinutes(s.Questions))

		for i := range flow.Controls() {
			err := answer(ctx, env, flow, i)
			if err == errInputEnded {
				return Failure(msgFillInterrupted)
			}
			if err != nil {
				return err
			}
		}

		env.printf("\nOdpowiedziano na %d z %d pytań (%d%%).\n", flow.AnsweredCount(), len(flow.Controls()), flow.Progress())
		if !env.In.Confirm(ctx, promptSubmit) {
			env.println(msgNotSent)
			return nil
		}

		state, err := flow.Submit(ctx)
		if err != nil {
			return fail("commands.fill.submit", err, fill.LoadMessages)
		}
		switch state {
		case fill.Succeeded:
			// the thank-you toast is printed by the toast watcher
			return nil
		case fill.AlreadySubmitted:
			env.println(msgAlreadySubmitted)
			return nil
		}
		return Failure(flow.Message())
	},
}
