package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mbolis/ankietio/editor"
	"github.com/mbolis/ankietio/fill"
	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

const (
	msgCreated      = "Ankieta utworzona: %s"
	msgChangesSaved = "Zmiany zostały zapisane."
	msgCanceled     = "Anulowano."
	msgDraftKept    = "Niezapisane zmiany zostały zachowane jako wersja robocza."
	msgHasResponses = "Uwaga: ta ankieta ma już %s. Usuwanie pytań i opcji oraz zmiana typu wymagają potwierdzenia."
	msgTemplateLoad = "Nie udało się załadować szablonu"
)

const editorHelp = `Polecenia edytora (numery pytań i opcji od 1):
  list                      pokaż pytania
  types                     pokaż typy odpowiedzi
  add [TYP] [TREŚĆ]         dodaj pytanie
  rm N                      usuń pytanie
  dup N                     powiel pytanie
  text N TREŚĆ              zmień treść pytania
  type N TYP                zmień typ odpowiedzi
  opt N [TREŚĆ]             dodaj opcję do pytania
  optset N J TREŚĆ          zmień treść opcji
  optrm N J                 usuń opcję
  save                      zapisz
  quit                      wyjdź bez zapisywania`

// questionEditor is what the edit loop works on: the editor of a saved
// survey, or the list of a survey being created.
type questionEditor interface {
	List() editor.List
	Add(ctx context.Context) int
	Remove(ctx context.Context, i int) error
	Duplicate(ctx context.Context, i int) error
	SetContent(ctx context.Context, i int, content string) error
	Retype(ctx context.Context, i int, t model.AnswerType) error
	AddChoice(ctx context.Context, i int) (int, error)
	SetChoice(ctx context.Context, i, j int, content string) error
	RemoveChoice(ctx context.Context, i, j int) error
}

// listEditor edits a bare question list; nothing needs confirming yet.
type listEditor struct{ l *editor.List }

func (e listEditor) List() editor.List {
	return e.l.Clone()
}

func (e listEditor) Add(context.Context) int {
	return e.l.Add()
}

func (e listEditor) Remove(_ context.Context, i int) error {
	return e.l.Remove(i)
}

func (e listEditor) Duplicate(_ context.Context, i int) error {
	return e.l.Duplicate(i)
}

func (e listEditor) SetContent(_ context.Context, i int, content string) error {
	return e.l.SetContent(i, content)
}

func (e listEditor) Retype(_ context.Context, i int, t model.AnswerType) error {
	return e.l.Retype(i, t)
}

func (e listEditor) AddChoice(_ context.Context, i int) (int, error) {
	return e.l.AddChoice(i)
}

func (e listEditor) SetChoice(_ context.Context, i, j int, content string) error {
	return e.l.SetChoice(i, j, content)
}

func (e listEditor) RemoveChoice(_ context.Context, i, j int) error {
	return e.l.RemoveChoice(i, j)
}

func printQuestions(env *Env, l editor.List) {
	if l.Len() == 0 {
		env.println("(brak pytań)")
		return
	}
	for i, q := range l.Questions {
		content := q.Content
		if strings.TrimSpace(content) == "" {
			content = "(brak treści)"
		}
		env.printf("%2d. %s [%s]\n", i+1, content, q.AnswerType)
		if !q.AnswerType.NeedsChoices() {
			continue
		}
		for j, c := range q.Choices {
			env.printf("      %d) %s\n", j+1, c.Content)
		}
	}
}

func printTypes(env *Env) {
	tw := env.table()
	for _, t := range model.AnswerTypes {
		fmt.Fprintf(tw, "  %s\t%s\n", t, t.Label())
	}
	tw.Flush()
}

// splitArgs splits line into n words and the rest of the line.
func splitArgs(line string, n int) (words []string, rest string) {
	rest = strings.TrimSpace(line)
	for len(words) < n && rest != "" {
		word, tail, _ := strings.Cut(rest, " ")
		words = append(words, word)
		rest = strings.TrimSpace(tail)
	}
	return
}

// index turns a 1-based number typed by the user into an index.
func index(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, Failure(fmt.Sprintf("Nieprawidłowy numer %q", s))
	}
	return n - 1, nil
}

func answerType(s string) (model.AnswerType, error) {
	t := model.AnswerType(s)
	if !t.Valid() {
		return "", Failure(fmt.Sprintf("Nieznany typ %q; dostępne typy: types", s))
	}
	return t, nil
}

// apply runs one editing command.
func apply(ctx context.Context, env *Env, ed questionEditor, line string) error {
	words, rest := splitArgs(line, 1)
	cmd := words[0]
	switch cmd {
	case "list", "l":
		printQuestions(env, ed.List())
	case "types":
		printTypes(env)
	case "help", "?":
		env.println(editorHelp)

	case "add":
		// the first word is the answer type only when it names one
		content := rest
		i := ed.Add(ctx)
		if words, tail := splitArgs(rest, 1); len(words) > 0 && model.AnswerType(words[0]).Valid() {
			if err := ed.Retype(ctx, i, model.AnswerType(words[0])); err != nil {
				return err
			}
			content = tail
		}
		if content != "" {
			return ed.SetContent(ctx, i, content)
		}
		env.printf("Dodano pytanie %d.\n", i+1)

	case "rm", "dup":
		if rest == "" {
			return Failure("Podaj numer pytania")
		}
		i, err := index(rest)
		if err != nil {
			return err
		}
		if cmd == "rm" {
			return ed.Remove(ctx, i)
		}
		return ed.Duplicate(ctx, i)

	case "text", "type":
		words, value := splitArgs(rest, 1)
		if len(words) == 0 || value == "" {
			return Failure("Podaj numer pytania i wartość")
		}
		i, err := index(words[0])
		if err != nil {
			return err
		}
		if cmd == "type" {
			t, err := answerType(value)
			if err != nil {
				return err
			}
			return ed.Retype(ctx, i, t)
		}
		return ed.SetContent(ctx, i, value)

	case "opt":
		words, content := splitArgs(rest, 1)
		if len(words) == 0 {
			return Failure("Podaj numer pytania")
		}
		i, err := index(words[0])
		if err != nil {
			return err
		}
		j, err := ed.AddChoice(ctx, i)
		if err != nil {
			return err
		}
		if content != "" {
			return ed.SetChoice(ctx, i, j, content)
		}

	case "optset", "optrm":
		words, content := splitArgs(rest, 2)
		if len(words) < 2 {
			return Failure("Podaj numer pytania i numer opcji")
		}
		i, err := index(words[0])
		if err != nil {
			return err
		}
		j, err := index(words[1])
		if err != nil {
			return err
		}
		if cmd == "optrm" {
			return ed.RemoveChoice(ctx, i, j)
		}
		return ed.SetChoice(ctx, i, j, content)

	default:
		return Failure(fmt.Sprintf("Nieznane polecenie %q; pomoc: help", cmd))
	}
	return nil
}

// editLoop reads editing commands until save succeeds or quit is
// accepted. It returns errInputEnded when the input runs out first.
func editLoop(ctx context.Context, env *Env, ed questionEditor, prompt func() string, save, quit func(context.Context) error) error {
	printQuestions(env, ed.List())
	env.println("Wpisz help, aby zobaczyć polecenia.")
	for {
		line, err := env.In.Ask(ctx, prompt())
		if err == io.EOF {
			return errInputEnded
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch strings.TrimSpace(line) {
		case "save":
			err = save(ctx)
			if err == nil {
				return nil
			}
		case "quit", "q":
			err = quit(ctx)
			if err == nil {
				return nil
			}
		default:
			err = apply(ctx, env, ed, line)
		}
		if err != nil {
			env.println(editError(err))
		}
	}
}

func editError(err error) string {
	if errors.Is(err, editor.ErrCanceled) {
		return msgCanceled
	}
	var f Failure
	if errors.As(err, &f) {
		return f.Error()
	}
	var invalid *form.Invalid
	if errors.As(err, &invalid) {
		return fail("commands.edit", err, httpx.DefaultMessages).Error()
	}
	// index errors of the question list
	return err.Error()
}

var createCmd = &Command{
	Name: "create",
	Args: "[-template ID | -copy ID] [-save-template NAZWA -category KATEGORIA] [NAZWA]",
	Help: "Tworzenie nowej ankiety",
	Run: func(ctx context.Context, env *Env, args []string) error {
		fs := flags(env)
		templateID := fs.String("template", "", "zacznij od kopii szablonu")
		copyID := fs.String("copy", "", "zacznij od kopii istniejącej ankiety")
		var tpl form.Template
		fs.StringVar(&tpl.Name, "save-template", "", "po zapisaniu zachowaj pytania jako prywatny szablon o tej nazwie")
		category := fs.String("category", string(model.CategoryCustom), "kategoria szablonu")
		fs.StringVar(&tpl.Description, "description", "", "opis szablonu")
		if err := fs.Parse(args); err != nil {
			return err
		}
		tpl.Category = model.TemplateCategory(*category)
		if err := loggedIn(ctx, env); err != nil {
			return err
		}

		c := env.App.Creator()
		switch {
		case *templateID != "":
			t, err := env.App.API.Template(ctx, *templateID)
			if err != nil {
				return failWith("commands.create.template", err, msgTemplateLoad)
			}
			c.FromTemplate(t)
		case *copyID != "":
			s, err := env.App.API.Survey(ctx, *copyID)
			if err != nil {
				return fail("commands.create.copy", err, fill.LoadMessages)
			}
			c.FromSurvey(s)
		}
		if name := strings.Join(fs.Args(), " "); name != "" {
			c.Name = name
		}
		var err error
		if c.Name, err = env.In.AskDefault(ctx, "Nazwa ankiety: ", c.Name); err != nil {
			return err
		}

		s, err := c.Create(ctx)
		if err != nil {
			if c.Message() != "" {
				return failWith("commands.create", err, c.Message())
			}
			return fail("commands.create", err, httpx.DefaultMessages)
		}

		save := func(ctx context.Context) error {
			_, err := c.Save(ctx)
			if err != nil && c.Message() != "" {
				return failWith("commands.create.save", err, c.Message())
			}
			return err
		}
		quit := func(ctx context.Context) error {
			c.Cancel(ctx)
			return nil
		}
		prompt := func() string { return s.Name + "> " }

		err = editLoop(ctx, env, listEditor{&c.Questions}, prompt, save, quit)
		if errors.Is(err, errInputEnded) {
			c.Cancel(ctx)
			env.println(msgCanceled)
			return nil
		}
		if err != nil {
			return err
		}
		if c.CreatedID() == "" {
			env.println(msgCanceled)
			return nil
		}
		env.printf(msgCreated+"\n", s.ID)

		if tpl.Name != "" {
			_, err := c.SaveAsTemplate(ctx, tpl)
			if err != nil {
				if errors.Is(err, editor.ErrNoQuestions) {
					return Failure(editor.MsgTemplateFailed)
				}
				return failWith("commands.create.save_template", err, editor.MsgTemplateFailed)
			}
			env.println(c.Message())
		}
		return nil
	},
}

var editCmd = &Command{
	Name: "edit",
	Args: "ID",
	Help: "Edycja pytań ankiety z autozapisem wersji roboczej",
	Run: func(ctx context.Context, env *Env, args []string) error {
		if err := need(env, args, 1); err != nil {
			return err
		}
		if err := loggedIn(ctx, env); err != nil {
			return err
		}

		e := env.App.Editor(env.In)
		err := e.Load(ctx, args[0])
		if err != nil {
			return failWith("commands.edit.load", err, e.Message())
		}
		defer e.Close()

		s := e.Survey()
		env.printf("%s\n", s.Name)
		if e.HasResponses() {
			env.printf(msgHasResponses+"\n", plural(s.SubmissionCount, "odpowiedź", "odpowiedzi", "odpowiedzi"))
		}

		save := func(ctx context.Context) error {
			err := e.Save(ctx)
			if err != nil && !isInvalid(err) {
				return failWith("commands.edit.save", err, e.Message())
			}
			return err
		}
		prompt := func() string {
			if e.Dirty() {
				return s.Name + " *> "
			}
			return s.Name + "> "
		}

		err = editLoop(ctx, env, e, prompt, save, e.Cancel)
		if errors.Is(err, errInputEnded) {
			if e.Dirty() {
				e.Close()
				if err := env.App.Drafts.Save(ctx, s.ID, e.List()); err != nil {
					return err
				}
				env.println(msgDraftKept)
			}
			return nil
		}
		if err != nil {
			return err
		}
		if e.Status() == editor.Saved {
			env.println(msgChangesSaved)
		}
		return nil
	},
}

func isInvalid(err error) bool {
	var invalid *form.Invalid
	return errors.As(err, &invalid)
}
