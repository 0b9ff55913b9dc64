// Package app builds the services of one client session and tears them
// down again.
package app

import (
	"context"
	"database/sql"

	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/ankietio/api"
	"github.com/mbolis/ankietio/auth"
	"github.com/mbolis/ankietio/config"
	"github.com/mbolis/ankietio/consent"
	"github.com/mbolis/ankietio/database"
	"github.com/mbolis/ankietio/draft"
	"github.com/mbolis/ankietio/editor"
	"github.com/mbolis/ankietio/fill"
	"github.com/mbolis/ankietio/fingerprint"
	"github.com/mbolis/ankietio/guard"
	"github.com/mbolis/ankietio/privacy"
	"github.com/mbolis/ankietio/share"
	"github.com/mbolis/ankietio/storage"
	"github.com/mbolis/ankietio/theme"
	"github.com/mbolis/ankietio/toast"
	"github.com/pkg/errors"
)

type App struct {
	Config config.Config

	db    *sql.DB
	Store storage.Store

	API         *api.Client
	Session     *auth.Session
	Auth        *auth.Client
	Consent     *consent.Store
	Fingerprint *fingerprint.Adapter
	Theme       *theme.Store
	Toasts      *toast.Notifier
	Guard       *guard.Guard
	Drafts      *draft.Store
	Privacy     *privacy.Privacy
}

// New opens the local store and wires every service. A config without a
// data file keeps everything in memory.
func New(ctx context.Context, cfg config.Config, applier theme.Applier) (*App, error) {
	base, err := cfg.BaseURL()
	if err != nil {
		return nil, errors.Wrap(err, "app.config")
	}

	a := &App{Config: cfg}
	if cfg.DataFile == "" {
		a.Store = storage.NewMemory()
	} else {
		a.db, err = database.Open(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		a.Store = storage.NewSQLite(a.db)
	}

	a.Session = auth.NewSession(a.Store)
	a.API = api.New(base, api.Options{
		Timeout:   cfg.Timeout,
		Tokens:    a.Session,
		OnExpired: a.Session.Expire,
	})
	a.Auth = auth.NewClient(a.API, a.Session)
	a.Consent = consent.New(ctx, a.Store)
	a.Fingerprint = fingerprint.New(a.Consent, a.Store, fingerprint.LoadHost)
	a.Theme = theme.New(ctx, a.Store, a.Consent, applier)
	a.Toasts = toast.New()
	a.Guard = guard.New(a.Store, a.Session)
	a.Drafts = draft.NewStore(a.Store)
	a.Privacy = privacy.New(a.Store, a.Consent, a.Session, a.API)
	return a, nil
}

// Fill starts a survey fill flow.
func (a *App) Fill() *fill.Flow {
	return fill.New(a.API, a.Guard, a.Fingerprint, a.Toasts)
}

func (a *App) Editor(confirm editor.Confirmer) *editor.Editor {
	return editor.NewEditor(a.API, a.Drafts, confirm)
}

func (a *App) Creator() *editor.Creator {
	return editor.NewCreator(a.API)
}

func (a *App) ShareLinks(surveyID string) *share.Links {
	return share.NewLinks(a.API, a.Toasts, surveyID, a.Config.Origin)
}

// Close stops the session's services and closes the local store.
func (a *App) Close() error {
	a.Toasts.Close()
	a.Theme.Close()
	a.Consent.Close()
	a.Session.Close()

	var result *multierror.Error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "app.close.db"))
		}
	}
	return result.ErrorOrNil()
}
