package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mbolis/ankietio/fill"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/share"
)

const (
	msgLoginRequired   = "Musisz być zalogowany. Użyj: ankietio login"
	msgListFailed      = "Nie udało się załadować ankiet"
	msgPublicFailed    = "Nie udało się załadować publicznych ankiet"
	msgDeleteFailed    = "Nie udało się usunąć ankiety. Spróbuj ponownie."
	msgStatusFailed    = "Nie udało się zaktualizować statusu ankiety."
	msgStatusExpired   = "Nie można zmienić statusu wygasłej ankiety."
	msgSurveyDeleted   = "Ankieta została usunięta."
	msgNoSurveys       = "Nie masz jeszcze żadnych ankiet. Utwórz pierwszą: ankietio create NAZWA"
	msgNoPublic        = "Brak publicznych ankiet."
	promptDeleteSurvey = "Czy na pewno chcesz usunąć ankietę %q? Tej operacji nie można cofnąć."
)

// dashboardRecent is how many of the latest surveys the dashboard lists.
const dashboardRecent = 5

// loggedIn stops commands that need an account.
func loggedIn(ctx context.Context, env *Env) error {
	if !env.App.Session.LoggedIn(ctx) {
		return Failure(msgLoginRequired)
	}
	return nil
}

// surveyTable lists surveys with their status, expiry and response count.
func surveyTable(env *Env, surveys []model.Survey) {
	now := env.Now()
	tw := env.table()
	fmt.Fprintln(tw, "ID\tNAZWA\tSTATUS\tWAŻNOŚĆ\tODPOWIEDZI\tUTWORZONA")
	for _, s := range surveys {
		expiry := s.ExpiryText(now)
		if s.IsExpiringSoon(now) {
			expiry += " !"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.Name, statusLabel(s.Status), expiry, s.SubmissionCount, ago(s.CreatedAt.Time, now))
	}
	tw.Flush()
}

// newestFirst sorts surveys by creation time, latest first.
func newestFirst(surveys []model.Survey) {
	sort.SliceStable(surveys, func(i, j int) bool {
		return surveys[i].CreatedAt.After(surveys[j].CreatedAt.Time)
	})
}

var dashboardCmd = &Command{
	Name: "dashboard",
	Help: "Podsumowanie konta i ostatnie ankiety",
	Run: func(ctx context.Context, env *Env, args []string) error {
		if err := loggedIn(ctx, env); err != nil {
			return err
		}
		user, err := env.App.API.CurrentUser(ctx)
		if err != nil {
			return fail("commands.dashboard.user", err, httpx.DefaultMessages)
		}
		surveys, err := env.App.API.Surveys(ctx)
		if err != nil {
			return failWith("commands.dashboard.surveys", err, msgListFailed)
		}

		env.printf("Witaj, %s!\n\n", user.Email)
		c := model.CountSurveys(surveys)
		env.printf("Ankiety: %d  (publiczne: %d, prywatne: %d, wygasłe: %d)\n\n", c.All, c.Public, c.Private, c.Expired)
		if len(surveys) == 0 {
			env.println(msgNoSurveys)
			return nil
		}
		newestFirst(surveys)
		if len(surveys) > dashboardRecent {
			surveys = surveys[:dashboardRecent]
		}
		env.println("Ostatnie ankiety:")
		surveyTable(env, surveys)
		return nil
	},
}

var surveysCmd = &Command{
	Name: "surveys",
	Args: "[-name FRAGMENT]",
	Help: "Lista Twoich ankiet",
	Run: func(ctx context.Context, env *Env, args []string) error {
		fs := flags(env)
		name := fs.String("name", "", "tylko ankiety, których nazwa zawiera fragment")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := loggedIn(ctx, env); err != nil {
			return err
		}

		var (
			surveys []model.Survey
			err     error
		)
		if *name != "" {
			surveys, err = env.App.API.SurveysByName(ctx, *name)
		} else {
			surveys, err = env.App.API.Surveys(ctx)
		}
		if err != nil {
			return failWith("commands.surveys", err, msgListFailed)
		}
		if len(surveys) == 0 {
			env.println(msgNoSurveys)
			return nil
		}
		newestFirst(surveys)
		surveyTable(env, surveys)
		return nil
	},
}

var publicSurveysCmd = &Command{
	Name: "public-surveys",
	Help: "Publiczne ankiety do wypełnienia",
	Run: func(ctx context.Context, env *Env, args []string) error {
		if err := loggedIn(ctx, env); err != nil {
			return err
		}
		surveys, err := env.App.API.PublicSurveys(ctx)
		if err != nil {
			return failWith("commands.public_surveys", err, msgPublicFailed)
		}
		if len(surveys) == 0 {
			env.println(msgNoPublic)
			return nil
		}

		now := env.Now()
		tw := env.table()
		fmt.Fprintln(tw, "ID\tNAZWA\tPYTANIA\tCZAS\tWAŻNOŚĆ\tADRES")
		for _, s := range surveys {
			fmt.Fprintf(tw, "%s\t%s\t%d\t~%d min\t%s\t%s\n",
				s.ID, s.Name, len(s.Questions), fill.EstimatedMinutes(s.Questions),
				s.ExpiryText(now), share.PublicFillURL(env.Config.Origin, s.ID))
		}
		tw.Flush()
		return nil
	},
}

var viewCmd = &Command{
	Name: "view",
	Args: "[-watch] ID",
	Help: "Szczegóły ankiety, pytania i linki udostępniania",
	Run: func(ctx context.Context, env *Env, args []string) error {
		fs := flags(env)
		watch := fs.Bool("watch", false, "odświeżaj liczniki kliknięć co 10 s aż do przerwania")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := need(env, fs.Args(), 1); err != nil {
			return err
		}
		if err := loggedIn(ctx, env); err != nil {
			return err
		}

		s, err := env.App.API.Survey(ctx, fs.Arg(0))
		if err != nil {
			return fail("commands.view", err, fill.LoadMessages)
		}
		printSurvey(env, s)

		links := env.App.ShareLinks(s.ID)
		if !*watch {
			list, err := links.List(ctx)
			if err != nil {
				return fail("commands.view.links", err, httpx.DefaultMessages)
			}
			printLinks(env, links, list)
			return nil
		}
		for list := range links.Poll(ctx, share.DefaultPollInterval) {
			env.printf("\n[%s]\n", env.Now().Format("15:04:05"))
			printLinks(env, links, list)
		}
		return nil
	},
}

func printSurvey(env *Env, s model.Survey) {
	now := env.Now()
	env.printf("%s\n%s\n", s.Name, strings.Repeat("=", len([]rune(s.Name))))
	env.printf("ID:          %s\n", s.ID)
	env.printf("Status:      %s\n", statusLabel(s.Status))
	env.printf("Utworzona:   %s (%s)\n", date(&s.CreatedAt), ago(s.CreatedAt.Time, now))
	if s.LastUpdated != nil {
		env.printf("Zmieniona:   %s\n", date(s.LastUpdated))
	}
	env.printf("Ważność:     %s\n", s.ExpiryText(now))
	env.printf("Odpowiedzi:  %d\n", s.SubmissionCount)
	env.printf("Duplikaty:   %s\n", map[bool]string{true: "blokowane", false: "dozwolone"}[s.PreventDuplicates])
	if s.Status == model.StatusPublic {
		env.printf("Adres:       %s\n", share.PublicFillURL(env.Config.Origin, s.ID))
	}
	env.printf("Czas:        ~%d min\n\n", fill.EstimatedMinutes(s.Questions))

	env.printf("Pytania (%d):\n", len(s.Questions))
	for i, q := range s.Questions {
		env.printf("%2d. %s [%s]\n", i+1, q.Content, q.AnswerType.Label())
		for _, c := range q.Choices {
			env.printf("      - %s\n", c.Content)
		}
	}
}

func printLinks(env *Env, links *share.Links, list []model.ShareLink) {
	env.printf("\nLinki udostępniania (%d):\n", len(list))
	if len(list) == 0 {
		return
	}
	tw := env.table()
	fmt.Fprintln(tw, "ID\tAKTYWNY\tKLIKNIĘCIA\tUTWORZONY\tADRES")
	for _, l := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.ID, yesNo(l.IsActive), l.Clicks, date(&l.CreatedAt), links.URL(l))
	}
	tw.Flush()
}

var statusCmd = &Command{
	Name: "status",
	Args: "ID [public|private]",
	Help: "Przełączenie ankiety między publiczną a prywatną",
	Run: func(ctx context.Context, env *Env, args []string) error {
		if err := need(env, args, 1); err != nil {
			return err
		}
		if err := loggedIn(ctx, env); err != nil {
			return err
		}

		s, err := env.App.API.Survey(ctx, args[0])
		if err != nil {
			return fail("commands.status.get", err, fill.LoadMessages)
		}
		next, ok := s.ToggledStatus()
		if !ok {
			return Failure(msgStatusExpired)
		}
		if len(args) > 1 {
			next = model.SurveyStatus(args[1])
			if next != model.StatusPublic && next != model.StatusPrivate {
				return Failure(fmt.Sprintf("Nieznany status %q: użyj public albo private", args[1]))
			}
		}

		s, err = env.App.API.UpdateSurveyStatus(ctx, s.ID, next)
		if err != nil {
			return failWith("commands.status", err, msgStatusFailed)
		}
		env.printf("%s: %s\n", s.Name, statusLabel(s.Status))
		return nil
	},
}

var deleteCmd = &Command{
	Name: "delete",
	Args: "[-yes] ID",
	Help: "Usunięcie ankiety wraz z odpowiedziami",
	Run: func(ctx context.Context, env *Env, args []string) error {
		fs := flags(env)
		yes := fs.Bool("yes", false, "nie pytaj o potwierdzenie")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := need(env, fs.Args(), 1); err != nil {
			return err
		}
		if err := loggedIn(ctx, env); err != nil {
			return err
		}

		s, err := env.App.API.Survey(ctx, fs.Arg(0))
		if err != nil {
			return fail("commands.delete.get", err, fill.LoadMessages)
		}
		if !*yes && !env.In.Confirm(ctx, fmt.Sprintf(promptDeleteSurvey, s.Name)) {
			return nil
		}
		err = env.App.API.DeleteSurvey(ctx, s.ID)
		if err != nil {
			return failWith("commands.delete", err, msgDeleteFailed)
		}
		env.App.Drafts.Clear(ctx, s.ID)
		env.println(msgSurveyDeleted)
		return nil
	},
}
