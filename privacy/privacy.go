// Package privacy lets the user inspect, export and erase what is kept
// about them, locally and on the server.
package privacy

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/mbolis/ankietio/consent"
	"github.com/mbolis/ankietio/log"
	"github.com/mbolis/ankietio/storage"
	"github.com/pkg/errors"
)

const (
	PromptClearAll      = "UWAGA: To usunie WSZYSTKIE dane lokalne (localStorage). Czy na pewno?"
	PromptResetConsent  = "Czy zresetować zgodę? Banner pojawi się ponownie."
	PromptDeleteAccount = "UWAGA: To nieodwracalnie usunie WSZYSTKIE Twoje dane:\n" +
		"- Konto użytkownika\n" +
		"- Wszystkie ankiety\n" +
		"- Wszystkie odpowiedzi\n\n" +
		"Wpisz \"USUŃ\" aby potwierdzić:"

	// DeleteWord must be typed to confirm account deletion.
	DeleteWord = "USUŃ"

	MsgPreferencesSaved = "Preferencje zapisane!"
	MsgClearedAll       = "Wszystkie dane zostały usunięte!"
	MsgClearedKey       = "Usunięto!"
	MsgExported         = "Dane zostały wyeksportowane!"
	MsgServerExported   = "Kompletne dane zostały wyeksportowane!"
	MsgLoginToExport    = "Musisz być zalogowany, aby wyeksportować dane z serwera."
	MsgExportFailed     = "Błąd podczas eksportu danych. Spróbuj ponownie."
	MsgLoginToDelete    = "Musisz być zalogowany, aby usunąć konto."
	MsgAccountDeleted   = "Konto zostało usunięte. Zostaniesz wylogowany."
	MsgDeleteFailed     = "Błąd podczas usuwania konta."
	MsgConsentReset     = "Zgoda została zresetowana!"

	previewLen = 50
	redacted   = "[ENCRYPTED]"
)

var (
	ErrNotLoggedIn  = errors.New("privacy: not logged in")
	ErrNotConfirmed = errors.New("privacy: deletion not confirmed")
)

// PromptClearKey asks before removing a single local key.
func PromptClearKey(key string) string {
	return `Usunąć "` + key + `"?`
}

type Backend interface {
	ExportData(ctx context.Context) ([]byte, error)
	MyData(ctx context.Context) (json.RawMessage, error)
	DeleteMyData(ctx context.Context) error
}

type Session interface {
	LoggedIn(ctx context.Context) bool
	Logout(ctx context.Context) error
}

type Consent interface {
	Get() *consent.Preferences
	Save(ctx context.Context, c consent.Choice) error
	Clear(ctx context.Context) error
}

type Privacy struct {
	kv      storage.Store
	consent Consent
	session Session
	backend Backend
	Now     func() time.Time
}

func New(kv storage.Store, c Consent, session Session, backend Backend) *Privacy {
	return &Privacy{kv: kv, consent: c, session: session, backend: backend, Now: time.Now}
}

// Item is one locally stored key.
type Item struct {
	Key     string
	Size    int
	Preview string
}

func (i Item) SizeText() string {
	return humanize.Bytes(uint64(i.Size))
}

// Analysis lists the local keys, largest first.
type Analysis struct {
	Items []Item
	Total int
}

func (a Analysis) TotalText() string {
	return humanize.Bytes(uint64(a.Total))
}

func (p *Privacy) Analyze(ctx context.Context) (a Analysis, err error) {
	keys, err := p.kv.Keys(ctx)
	if err != nil {
		return a, errors.Wrap(err, "privacy.analyze.keys")
	}
	for _, key := range keys {
		value, ok, err := p.kv.Get(ctx, key)
		if err != nil {
			return a, errors.Wrapf(err, "privacy.analyze.%s", key)
		}
		if !ok {
			continue
		}
		a.Items = append(a.Items, Item{Key: key, Size: len(value), Preview: preview(value)})
		a.Total += len(value)
	}
	sort.SliceStable(a.Items, func(i, j int) bool {
		return a.Items[i].Size > a.Items[j].Size
	})
	return a, nil
}

func preview(value string) string {
	if utf8.RuneCountInString(value) <= previewLen {
		return value
	}
	return string([]rune(value)[:previewLen]) + "..."
}

func (p *Privacy) Consent() *consent.Preferences {
	return p.consent.Get()
}

func (p *Privacy) SavePreferences(ctx context.Context, c consent.Choice) error {
	return p.consent.Save(ctx, c)
}

// ResetConsent forgets the consent decision so it is asked again.
func (p *Privacy) ResetConsent(ctx context.Context) error {
	return p.consent.Clear(ctx)
}

// ClearAll wipes every local key, consent included.
func (p *Privacy) ClearAll(ctx context.Context) error {
	if err := p.kv.Clear(ctx); err != nil {
		return errors.Wrap(err, "privacy.clear_all")
	}
	return p.consent.Clear(ctx)
}

func (p *Privacy) ClearKey(ctx context.Context, key string) error {
	if key == storage.KeyConsent {
		return p.consent.Clear(ctx)
	}
	return errors.Wrap(p.kv.Remove(ctx, key), "privacy.clear_key")
}

// LocalExport is the document of what is kept on this device. The token
// itself is never exported.
type LocalExport struct {
	Consent      *consent.Preferences `json:"consent"`
	LocalStorage LocalData            `json:"localStorage"`
	Timestamp    string               `json:"timestamp"`
}

type LocalData struct {
	Token            *string             `json:"token"`
	Theme            *string             `json:"theme"`
	SubmittedSurveys map[string][]string `json:"submittedSurveys"`
}

// ExportLocal returns the local export document, indented.
func (p *Privacy) ExportLocal(ctx context.Context) ([]byte, error) {
	doc := LocalExport{
		Consent:   p.consent.Get(),
		Timestamp: p.Now().UTC().Format(consent.ISOTime),
		LocalStorage: LocalData{
			SubmittedSurveys: map[string][]string{},
		},
	}

	if _, ok, err := p.kv.Get(ctx, storage.KeyAccessToken); err != nil {
		return nil, errors.Wrap(err, "privacy.export_local.token")
	} else if ok {
		s := redacted
		doc.LocalStorage.Token = &s
	}
	if theme, ok, err := p.kv.Get(ctx, storage.KeyTheme); err != nil {
		return nil, errors.Wrap(err, "privacy.export_local.theme")
	} else if ok {
		doc.LocalStorage.Theme = &theme
	}

	keys, err := p.kv.Keys(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "privacy.export_local.keys")
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, storage.SubmittedPrefix) {
			continue
		}
		var ids []string
		if _, err := storage.GetJSON(ctx, p.kv, key, &ids); err != nil {
			log.Debugf("privacy.export_local: %s", err)
			continue
		}
		doc.LocalStorage.SubmittedSurveys[strings.TrimPrefix(key, storage.SubmittedPrefix)] = ids
	}

	return json.MarshalIndent(doc, "", "  ")
}

// ExportServer downloads the server's GDPR export, indented.
func (p *Privacy) ExportServer(ctx context.Context) ([]byte, error) {
	if !p.session.LoggedIn(ctx) {
		return nil, ErrNotLoggedIn
	}
	data, err := p.backend.ExportData(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "privacy.export_server")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return data, nil
	}
	return buf.Bytes(), nil
}

// MyData is what the server stores about the user.
func (p *Privacy) MyData(ctx context.Context) (json.RawMessage, error) {
	if !p.session.LoggedIn(ctx) {
		return nil, ErrNotLoggedIn
	}
	data, err := p.backend.MyData(ctx)
	return data, errors.Wrap(err, "privacy.my_data")
}

// DeleteAccount erases the account when confirmation is DeleteWord, then
// logs out and wipes local data.
func (p *Privacy) DeleteAccount(ctx context.Context, confirmation string) error {
	if !p.session.LoggedIn(ctx) {
		return ErrNotLoggedIn
	}
	if confirmation != DeleteWord {
		return ErrNotConfirmed
	}
	if err := p.backend.DeleteMyData(ctx); err != nil {
		return errors.Wrap(err, "privacy.delete_account")
	}
	if err := p.session.Logout(ctx); err != nil {
		log.Debugf("privacy.delete_account.logout: %s", err)
	}
	return p.ClearAll(ctx)
}

func LocalFilename(now time.Time) string {
	return "ankietio-local-data-" + now.UTC().Format("2006-01-02") + ".json"
}

func ServerFilename(now time.Time) string {
	return "ankietio-complete-data-" + now.UTC().Format("2006-01-02") + ".json"
}
