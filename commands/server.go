package commands

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/routes"
	"github.com/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

var mockServerCmd = &Command{
	Name:       "mock-server",
	Args:       "[-addr ADRES] [-secret SEKRET] [-ttl CZAS] [-auto-confirm] [-admin EMAIL,...]",
	Help:       "Lokalny serwer API do testów i pracy offline",
	Standalone: true,
	Run: func(ctx context.Context, env *Env, args []string) error {
		fs := flags(env)
		addr := fs.String("addr", ":8000", "adres nasłuchu")
		secret := fs.String("secret", "ankietio-dev-secret", "klucz podpisu tokenów")
		ttl := fs.Duration("ttl", 24*time.Hour, "ważność tokenu dostępu")
		autoConfirm := fs.Bool("auto-confirm", false, "konta aktywne bez potwierdzenia email")
		admins := fs.String("admin", "", "adresy email administratorów, oddzielone przecinkami")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if !env.Config.Debug {
			log.SetLevel(log.InfoLevel)
		}

		opts := routes.Options{
			Secret:      *secret,
			TokenTTL:    *ttl,
			AutoConfirm: *autoConfirm,
		}
		if *admins != "" {
			opts.Admins = strings.Split(*admins, ",")
		}
		return runServer(ctx, *addr, routes.Wire(routes.NewBackend(opts)))
	},
}

// runServer serves until ctx is done, then drains open requests.
func runServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("Listening on " + addr + "/v1")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "commands.mock_server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "commands.mock_server.shutdown")
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "commands.mock_server")
	}
	return nil
}
