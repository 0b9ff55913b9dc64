// Package share manages the links a survey is filled through: share
// tokens, their URLs and QR codes, and the live click counters.
package share

import (
	"context"
	"strings"

	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

const (
	MsgCreated      = "Link utworzony pomyślnie"
	MsgCreateFailed = "Nie udało się utworzyć linku udostępniania"
	MsgDeleted      = "Link został usunięty"
	MsgDeleteFailed = "Nie udało się usunąć linku"
	MsgQRSaved      = "Kod QR został pobrany"
	MsgQRFailed     = "Nie udało się wygenerować kodu QR"
	PromptDelete    = "Czy na pewno chcesz usunąć ten link udostępniania?"
)

// FillURL is where a share token is redeemed.
func FillURL(origin, token string) string {
	return strings.TrimRight(origin, "/") + "/survey/fill/" + token
}

// PublicFillURL is the fill page of a public survey.
func PublicFillURL(origin, surveyID string) string {
	return strings.TrimRight(origin, "/") + "/survey/" + surveyID + "/fill"
}

type Backend interface {
	CreateShareLink(ctx context.Context, surveyID string, in model.ShareLinkCreate) (model.ShareLink, error)
	ShareLinks(ctx context.Context, surveyID string) ([]model.ShareLink, error)
	DeleteShareLink(ctx context.Context, linkID string) error
}

type Notifier interface {
	Success(msg string) int64
	Error(msg string) int64
}

// Links are the share links of one survey.
type Links struct {
	backend  Backend
	toasts   Notifier
	surveyID string
	origin   string
}

func NewLinks(backend Backend, toasts Notifier, surveyID, origin string) *Links {
	return &Links{backend, toasts, surveyID, origin}
}

func (l *Links) URL(link model.ShareLink) string {
	return FillURL(l.origin, link.ShareToken)
}

func (l *Links) List(ctx context.Context) ([]model.ShareLink, error) {
	links, err := l.backend.ShareLinks(ctx, l.surveyID)
	return links, errors.Wrap(err, "share.list")
}

// Create opens a new active link.
func (l *Links) Create(ctx context.Context) (model.ShareLink, error) {
	active := true
	link, err := l.backend.CreateShareLink(ctx, l.surveyID, model.ShareLinkCreate{IsActive: &active})
	if err != nil {
		l.toasts.Error(MsgCreateFailed)
		return model.ShareLink{}, errors.Wrap(err, "share.create")
	}
	l.toasts.Success(MsgCreated)
	return link, nil
}

func (l *Links) Delete(ctx context.Context, linkID string) error {
	err := l.backend.DeleteShareLink(ctx, linkID)
	if err != nil {
		log.Debugf("share.delete: %s", err)
		l.toasts.Error(MsgDeleteFailed)
		return errors.Wrap(err, "share.delete")
	}
	l.toasts.Success(MsgDeleted)
	return nil
}
