// Package commands is the terminal front-end: one subcommand per screen
// of the product, all sharing the services of an app.App.
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/mbolis/ankietio/app"
	"github.com/mbolis/ankietio/config"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/theme"
	"github.com/mbolis/ankietio/toast"
	"github.com/pkg/errors"
)

// Env is what a command runs with.
type Env struct {
	Config config.Config
	// App is nil for standalone commands.
	App *app.App
	In  *Prompter
	Out io.Writer
	Now func() time.Time

	// Cmd is the command being run.
	Cmd *Command
}

func (env *Env) printf(format string, args ...any) {
	fmt.Fprintf(env.Out, format, args...)
}

func (env *Env) println(args ...any) {
	fmt.Fprintln(env.Out, args...)
}

// table starts an aligned listing; call Flush when done.
func (env *Env) table() *tabwriter.Writer {
	return tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
}

type Command struct {
	Name string
	Args string
	Help string

	// Standalone commands run without a local session.
	Standalone bool
	Run        func(ctx context.Context, env *Env, args []string) error
}

// All returns every command, sorted by name.
func All() []*Command {
	all := []*Command{
		loginCmd, logoutCmd, registerCmd, confirmEmailCmd, forgotPasswordCmd, resetPasswordCmd,
		dashboardCmd, surveysCmd, publicSurveysCmd, viewCmd, statusCmd, deleteCmd,
		createCmd, editCmd, fillCmd, resultsCmd, templatesCmd, shareCmd,
		privacyCmd, consentCmd, themeCmd, mockServerCmd,
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

func lookup(name string) (*Command, bool) {
	for _, c := range All() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ErrUsage is returned when the command line names no known command.
var ErrUsage = errors.New("usage")

// Run parses the global flags, opens the session and runs the command
// named by the first remaining argument.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, rest, err := config.ParseFlags("ankietio", args)
	if errors.Is(err, flag.ErrHelp) {
		usage(stdout)
		return nil
	}
	if err != nil {
		return err
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if len(rest) == 0 {
		usage(stdout)
		return ErrUsage
	}
	cmd, ok := lookup(rest[0])
	if !ok {
		if rest[0] == "help" {
			usage(stdout)
			return nil
		}
		usage(stdout)
		return errors.Wrapf(ErrUsage, "unknown command %q", rest[0])
	}

	out := &syncWriter{w: stdout}
	env := &Env{
		Config: cfg,
		In:     NewPrompter(stdin, out),
		Out:    out,
		Now:    time.Now,
		Cmd:    cmd,
	}
	if cmd.Standalone {
		return helped(cmd.Run(ctx, env, rest[1:]))
	}

	a, err := app.New(ctx, cfg, theme.ApplierFunc(func(t theme.Theme) {
		log.Debugf("theme: %s (%s)", t, t.MetaColor())
	}))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warnf("commands.close: %s", err)
		}
	}()
	env.App = a

	stop := printToasts(a.Toasts, out)
	defer stop()

	return helped(cmd.Run(ctx, env, rest[1:]))
}

// helped treats -h on a command as success; its usage was printed.
func helped(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Użycie: ankietio [-api-url URL] [-origin URL] [-data PLIK] [-timeout S] [-debug] <polecenie> [argumenty]")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range All() {
		fmt.Fprintf(tw, "  %s %s\t%s\n", c.Name, c.Args, c.Help)
	}
	tw.Flush()
}

// flags builds the flag set of the running command; -h prints its usage.
func flags(env *Env) *flag.FlagSet {
	cmd := env.Cmd
	fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
	fs.SetOutput(env.Out)
	fs.Usage = func() {
		fmt.Fprintf(env.Out, "Użycie: ankietio %s %s\n%s\n", cmd.Name, cmd.Args, cmd.Help)
		fs.PrintDefaults()
	}
	return fs
}

// syncWriter serializes the command's output with the toasts printed
// from their own goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

var toastMarks = map[toast.Kind]string{
	toast.Success: "✓",
	toast.Error:   "✗",
	toast.Info:    "i",
	toast.Warning: "!",
}

// printToasts prints every toast as it is shown. The returned function
// flushes the pending ones and stops.
func printToasts(n *toast.Notifier, w io.Writer) func() {
	ch, cancel := n.Watch()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for t := range ch {
			fmt.Fprintf(w, "[%s] %s\n", toastMarks[t.Kind], t.Message)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// need checks the number of positional arguments.
func need(env *Env, args []string, n int) error {
	if len(args) < n {
		return errors.Wrapf(ErrUsage, "ankietio %s %s", env.Cmd.Name, env.Cmd.Args)
	}
	return nil
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
