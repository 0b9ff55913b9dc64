package commands

import (
	"context"
	"fmt"

	"github.com/mbolis/ankietio/editor"
	"github.com/mbolis/ankietio/fill"
	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

const (
	msgTemplatesFailed = "Nie udało się załadować szablonów"
	msgTemplateUseFail = "Nie udało się użyć szablonu"
	msgTemplateDeleted = "Szablon został usunięty!"
	msgTemplateDelFail = "Nie udało się usunąć szablonu"
	msgNoTemplates     = "Brak szablonów."
	msgTemplateUsed    = "Utworzono ankietę %s z szablonu. Edytuj ją: ankietio edit %s"
	promptDeleteTpl    = "Czy na pewno chcesz usunąć szablon %q?"
)

var templateMessages = httpx.Messages{
	NotFound:     "Szablon nie został znaleziony.",
	Generic:      msgTemplatesFailed,
	PreferServer: true,
}

var templatesCmd = &Command{
	Name: "templates",
	Args: "[public|mine|show ID|use ID|delete ID|save SURVEY_ID -name NAZWA -category KATEGORIA]",
	Help: "Szablony ankiet",
	Run: func(ctx context.Context, env *Env, args []string) error {
		if err := loggedIn(ctx, env); err != nil {
			return err
		}
		sub := "public"
		if len(args) > 0 {
			sub, args = args[0], args[1:]
		}

		api := env.App.API
		switch sub {
		case "public", "mine":
			list := api.PublicTemplates
			if sub == "mine" {
				list = api.MyTemplates
			}
			ts, err := list(ctx)
			if err != nil {
				return failWith("commands.templates.list", err, msgTemplatesFailed)
			}
			printTemplates(env, ts)
			return nil

		case "show":
			if err := need(env, args, 1); err != nil {
				return err
			}
			t, err := api.Template(ctx, args[0])
			if err != nil {
				return fail("commands.templates.show", err, templateMessages)
			}
			printTemplate(env, t)
			return nil

		case "use":
			if err := need(env, args, 1); err != nil {
				return err
			}
			s, err := api.UseTemplate(ctx, args[0])
			if err != nil {
				return fail("commands.templates.use", err, httpx.Messages{Generic: msgTemplateUseFail, PreferServer: true})
			}
			env.printf(msgTemplateUsed+"\n", s.Name, s.ID)
			return nil

		case "delete":
			if err := need(env, args, 1); err != nil {
				return err
			}
			t, err := api.Template(ctx, args[0])
			if err != nil {
				return fail("commands.templates.delete.get", err, templateMessages)
			}
			if !env.In.Confirm(ctx, fmt.Sprintf(promptDeleteTpl, t.Name)) {
				return nil
			}
			err = api.DeleteTemplate(ctx, t.ID)
			if err != nil {
				return fail("commands.templates.delete", err, httpx.Messages{Generic: msgTemplateDelFail, PreferServer: true})
			}
			env.println(msgTemplateDeleted)
			return nil

		case "save":
			return saveTemplate(ctx, env, args)
		}
		return Failure(fmt.Sprintf("Nieznane polecenie %q", sub))
	},
}

// saveTemplate stores the questions of an existing survey as a private
// template.
func saveTemplate(ctx context.Context, env *Env, args []string) error {
	fs := flags(env)
	var tpl form.Template
	fs.StringVar(&tpl.Name, "name", "", "nazwa szablonu")
	fs.StringVar(&tpl.Description, "description", "", "opis szablonu")
	category := fs.String("category", string(model.CategoryCustom), "kategoria szablonu")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(env, fs.Args(), 1); err != nil {
		return err
	}
	tpl.Category = model.TemplateCategory(*category)

	s, err := env.App.API.Survey(ctx, fs.Arg(0))
	if err != nil {
		return fail("commands.templates.save.survey", err, fill.LoadMessages)
	}
	if tpl.Name == "" {
		tpl.Name = s.Name
	}

	c := env.App.Creator()
	c.FromSurvey(s)
	_, err = c.SaveAsTemplate(ctx, tpl)
	switch {
	case isInvalid(err):
		return fail("commands.templates.save", err, httpx.DefaultMessages)
	case errors.Is(err, editor.ErrNoQuestions):
		return Failure("Ankieta nie ma pytań.")
	case err != nil:
		return failWith("commands.templates.save", err, c.Message())
	}
	env.println(c.Message())
	return nil
}

func printTemplates(env *Env, ts []model.SurveyTemplate) {
	if len(ts) == 0 {
		env.println(msgNoTemplates)
		return
	}
	tw := env.table()
	fmt.Fprintln(tw, "ID\tNAZWA\tKATEGORIA\tPYTANIA\tUŻYCIA")
	for _, t := range ts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", t.ID, t.Name, t.Category.Label(), len(t.QuestionsData), t.UsageCount)
	}
	tw.Flush()
}

func printTemplate(env *Env, t model.SurveyTemplate) {
	env.printf("%s (%s)\n", t.Name, t.Category.Label())
	if t.Description != "" {
		env.println(t.Description)
	}
	env.printf("Użycia: %d, publiczny: %s\n\n", t.UsageCount, yesNo(t.IsPublic))
	for i, q := range t.QuestionsData {
		env.printf("%2d. %s [%s]\n", i+1, q.Content, q.AnswerType.Label())
		for _, c := range q.Choices {
			env.printf("      - %s\n", c.Content)
		}
	}
}
