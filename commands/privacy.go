package commands

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mbolis/ankietio/consent"
	"github.com/mbolis/ankietio/privacy"
	"github.com/mbolis/ankietio/theme"
	"github.com/pkg/errors"
)

const (
	msgNoLocalData  = "Brak danych lokalnych."
	msgNoConsent    = "Nie wyrażono jeszcze zgody. Użyj: ankietio consent accept-all|necessary|set"
	msgMyDataFailed = "Nie udało się pobrać danych z serwera."
)

var privacyCmd = &Command{
	Name: "privacy",
	Args: "[analyze|export [-dir KATALOG]|export-server [-dir KATALOG]|my-data|clear [KLUCZ]|delete-account]",
	Help: "Centrum prywatności: przegląd, eksport i usuwanie danych",
	Run: func(ctx context.Context, env *Env, args []string) error {
		sub := "analyze"
		if len(args) > 0 {
			sub, args = args[0], args[1:]
		}

		p := env.App.Privacy
		switch sub {
		case "analyze":
			a, err := p.Analyze(ctx)
			if err != nil {
				return err
			}
			printAnalysis(env, a)
			printConsent(env, p.Consent())
			return nil

		case "export", "export-server":
			fs := flags(env)
			dir := fs.String("dir", ".", "katalog pliku JSON")
			if err := fs.Parse(args); err != nil {
				return err
			}
			if sub == "export" {
				data, err := p.ExportLocal(ctx)
				if err != nil {
					return failWith("commands.privacy.export", err, privacy.MsgExportFailed)
				}
				if err := writeFile(env, *dir, privacy.LocalFilename(env.Now()), data); err != nil {
					return err
				}
				env.App.Toasts.Success(privacy.MsgExported)
				return nil
			}
			data, err := p.ExportServer(ctx)
			if errors.Is(err, privacy.ErrNotLoggedIn) {
				return Failure(privacy.MsgLoginToExport)
			}
			if err != nil {
				return failWith("commands.privacy.export_server", err, privacy.MsgExportFailed)
			}
			if err := writeFile(env, *dir, privacy.ServerFilename(env.Now()), data); err != nil {
				return err
			}
			env.App.Toasts.Success(privacy.MsgServerExported)
			return nil

		case "my-data":
			data, err := p.MyData(ctx)
			if errors.Is(err, privacy.ErrNotLoggedIn) {
				return Failure(msgLoginRequired)
			}
			if err != nil {
				return failWith("commands.privacy.my_data", err, msgMyDataFailed)
			}
			out, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return errors.Wrap(err, "commands.privacy.my_data")
			}
			env.println(string(out))
			return nil

		case "clear":
			if len(args) > 0 {
				key := args[0]
				if !env.In.Confirm(ctx, privacy.PromptClearKey(key)) {
					return nil
				}
				if err := p.ClearKey(ctx, key); err != nil {
					return err
				}
				env.App.Toasts.Success(privacy.MsgClearedKey)
				return nil
			}
			if !env.In.Confirm(ctx, privacy.PromptClearAll) {
				return nil
			}
			if err := p.ClearAll(ctx); err != nil {
				return err
			}
			env.App.Toasts.Success(privacy.MsgClearedAll)
			return nil

		case "delete-account":
			if !env.App.Session.LoggedIn(ctx) {
				return Failure(privacy.MsgLoginToDelete)
			}
			word, err := env.In.Ask(ctx, privacy.PromptDeleteAccount+" ")
			if err != nil {
				return nil
			}
			err = p.DeleteAccount(ctx, word)
			switch {
			case errors.Is(err, privacy.ErrNotConfirmed):
				return nil
			case errors.Is(err, privacy.ErrNotLoggedIn):
				return Failure(privacy.MsgLoginToDelete)
			case err != nil:
				return failWith("commands.privacy.delete_account", err, privacy.MsgDeleteFailed)
			}
			env.App.Toasts.Success(privacy.MsgAccountDeleted)
			return nil
		}
		return Failure(fmt.Sprintf("Nieznane polecenie %q", sub))
	},
}

func printAnalysis(env *Env, a privacy.Analysis) {
	if len(a.Items) == 0 {
		env.println(msgNoLocalData)
	} else {
		tw := env.table()
		fmt.Fprintln(tw, "KLUCZ\tROZMIAR\tPODGLĄD")
		for _, it := range a.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", it.Key, it.SizeText(), it.Preview)
		}
		tw.Flush()
	}
	env.printf("\nRazem: %s w %s\n", a.TotalText(), plural(len(a.Items), "kluczu", "kluczach", "kluczach"))
}

func printConsent(env *Env, p *consent.Preferences) {
	env.println()
	if p == nil {
		env.println(msgNoConsent)
		return
	}
	env.printf("Zgoda (wersja %s, %s):\n", p.Version, p.Timestamp)
	env.printf("  Niezbędne:       %s\n", yesNo(p.Necessary))
	env.printf("  Funkcjonalne:    %s\n", yesNo(p.Functional))
	env.printf("  Fingerprinting:  %s\n", yesNo(p.Fingerprinting))
}

var consentCmd = &Command{
	Name: "consent",
	Args: "[show|accept-all|necessary|set [-functional] [-fingerprinting]|reset]",
	Help: "Zgoda na przetwarzanie danych",
	Run: func(ctx context.Context, env *Env, args []string) error {
		sub := "show"
		if len(args) > 0 {
			sub, args = args[0], args[1:]
		}

		c := env.App.Consent
		var err error
		switch sub {
		case "show":
			printConsent(env, c.Get())
			return nil
		case "accept-all":
			err = c.AcceptAll(ctx)
		case "necessary":
			err = c.AcceptNecessaryOnly(ctx)
		case "set":
			fs := flags(env)
			var choice consent.Choice
			fs.BoolVar(&choice.Functional, "functional", false, "zgoda na pliki funkcjonalne")
			fs.BoolVar(&choice.Fingerprinting, "fingerprinting", false, "zgoda na identyfikację urządzenia")
			if err := fs.Parse(args); err != nil {
				return err
			}
			err = env.App.Privacy.SavePreferences(ctx, choice)
		case "reset":
			if !env.In.Confirm(ctx, privacy.PromptResetConsent) {
				return nil
			}
			if err := env.App.Privacy.ResetConsent(ctx); err != nil {
				return err
			}
			env.App.Toasts.Success(privacy.MsgConsentReset)
			return nil
		default:
			return Failure(fmt.Sprintf("Nieznane polecenie %q", sub))
		}
		if err != nil {
			return err
		}
		env.App.Toasts.Success(privacy.MsgPreferencesSaved)
		return nil
	},
}

var themeCmd = &Command{
	Name: "theme",
	Args: "[show|light|dark|toggle]",
	Help: "Motyw kolorystyczny eksportów",
	Run: func(ctx context.Context, env *Env, args []string) error {
		sub := "show"
		if len(args) > 0 {
			sub = args[0]
		}

		store := env.App.Theme
		switch t := theme.Theme(sub); {
		case sub == "show":
		case sub == "toggle":
			store.Toggle(ctx)
		case t.Valid():
			store.Set(ctx, t)
		default:
			return Failure(fmt.Sprintf("Nieznany motyw %q", sub))
		}
		t := store.Current()
		env.printf("Motyw: %s (%s)\n", t, t.MetaColor())
		if !env.App.Consent.CanUseFunctional() {
			env.println("Bez zgody na pliki funkcjonalne motyw nie zostanie zapamiętany.")
		}
		return nil
	},
}
