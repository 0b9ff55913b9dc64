package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mbolis/ankietio/fill"
	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/results"
	"github.com/pkg/errors"
)

const (
	msgResultsFailed = "Nie udało się załadować wyników ankiety"
	msgNoResponses   = "Brak odpowiedzi."
	msgSaved         = "Zapisano %s"

	barWidth   = 30
	openListed = 5
)

var resultsCmd = &Command{
	Name: "results",
	Args: "[-page N] [-csv] [-pdf] [-summary] [-dir KATALOG] ID",
	Help: "Wyniki ankiety: statystyki, odpowiedzi i eksport",
	Run: func(ctx context.Context, env *Env, args []string) error {
		fs := flags(env)
		page := fs.Int("page", 0, "pokaż stronę odpowiedzi (po 20)")
		csv := fs.Bool("csv", false, "zapisz odpowiedzi do pliku CSV")
		pdf := fs.Bool("pdf", false, "zapisz raport PDF")
		summary := fs.Bool("summary", false, "wypisz podsumowanie tekstowe")
		dir := fs.String("dir", ".", "katalog eksportowanych plików")
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
			return fail("commands.results.survey", err, fill.LoadMessages)
		}
		subs, err := env.App.API.Submissions(ctx, s.ID)
		if err != nil {
			return failWith("commands.results.submissions", err, msgResultsFailed)
		}

		switch {
		case *csv || *pdf:
			if *csv {
				if err := exportCSV(env, *dir, s, subs); err != nil {
					return err
				}
			}
			if *pdf {
				return exportPDF(env, *dir, s, subs)
			}
			return nil
		case *summary:
			text, err := results.Summary(s, subs)
			if err != nil {
				return Failure(err.Error())
			}
			env.printf("%s", text)
			return nil
		case *page > 0:
			printPage(env, s, subs, *page)
			return nil
		}
		printStats(env, s, subs)
		return nil
	},
}

func printStats(env *Env, s model.Survey, subs []model.Submission) {
	env.printf("Wyniki: %s\n\n", s.Name)
	env.printf("Odpowiedzi:        %d\n", len(subs))
	env.printf("Kompletność:       %d%%\n", results.CompletionRate(s, subs))
	env.printf("Średni czas:       %s\n", results.AvgResponseTime(s, subs))
	if len(subs) == 0 {
		env.printf("\n%s\n", msgNoResponses)
		return
	}

	for i, st := range results.Collect(s, subs) {
		env.printf("\n%d. %s [%s] (%d)\n", i+1, st.Question.Content, st.Question.AnswerType.Label(), st.Total())
		switch {
		case st.HasChoiceTable():
			printBuckets(env, st.Choices(), st.Total())
		case st.Chart != results.NoChart:
			printBuckets(env, st.Histogram, st.Total())
		default:
			listed := st.Responses
			if len(listed) > openListed {
				listed = listed[:openListed]
			}
			for _, r := range listed {
				env.printf("  - %s\n", r)
			}
			if more := st.Total() - len(listed); more > 0 {
				env.printf("  ... i %d więcej\n", more)
			}
		}
	}
	pages := results.TotalPages(len(subs), results.PageSize)
	env.printf("\nOdpowiedzi: ankietio results -page N %s (stron: %d)\n", s.ID, pages)
}

// printBuckets draws a horizontal bar per bucket.
func printBuckets(env *Env, buckets []results.Bucket, total int) {
	tw := env.table()
	for _, b := range buckets {
		pct := results.Percentage(b.Count, total)
		bar := strings.Repeat("█", int(pct/100*barWidth+0.5))
		fmt.Fprintf(tw, "  %s\t%s\t%d\t(%.1f%%)\n", b.Label, bar, b.Count, pct)
	}
	tw.Flush()
}

func printPage(env *Env, s model.Survey, subs []model.Submission, page int) {
	total := results.TotalPages(len(subs), results.PageSize)
	if total == 0 {
		env.println(msgNoResponses)
		return
	}
	if page > total {
		page = total
	}

	for n, sub := range results.Page(subs, page, results.PageSize) {
		env.printf("\n#%d  %s\n", (page-1)*results.PageSize+n+1, date(sub.CreatedAt))
		for _, a := range sub.Answers {
			q, ok := s.Question(a.QuestionID)
			if !ok {
				continue
			}
			env.printf("  %s: %s\n", q.Content, a.Response)
		}
	}

	var pager []string
	for _, p := range results.PageNumbers(page, total) {
		switch {
		case p == results.Ellipsis:
			pager = append(pager, "…")
		case p == page:
			pager = append(pager, fmt.Sprintf("[%d]", p))
		default:
			pager = append(pager, fmt.Sprint(p))
		}
	}
	env.printf("\nStrona %s\n", strings.Join(pager, " "))
}

func writeFile(env *Env, dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		return errors.Wrap(err, "commands.write")
	}
	env.printf(msgSaved+"\n", path)
	return nil
}

func exportCSV(env *Env, dir string, s model.Survey, subs []model.Submission) error {
	text, err := results.CSV(s, subs)
	if errors.Is(err, results.ErrNoData) {
		return Failure(results.MsgNoData)
	}
	if err != nil {
		return err
	}
	return writeFile(env, dir, results.CSVFilename(s.Name), []byte(text))
}

func exportPDF(env *Env, dir string, s model.Survey, subs []model.Submission) error {
	if len(subs) == 0 {
		return Failure(results.MsgNoData)
	}
	var buf bytes.Buffer
	err := results.PDF(&buf, s, subs, env.App.Theme.Current().Palette())
	if err != nil {
		return failWith("commands.results.pdf", err, results.MsgPDFFailed+err.Error())
	}
	if err := writeFile(env, dir, results.PDFFilename(s.Name), buf.Bytes()); err != nil {
		return err
	}
	env.App.Toasts.Success(results.MsgPDFGenerated)
	return nil
}
