package commands

import (
	"context"
	"fmt"

	"github.com/mbolis/ankietio/model"
	"github.com/mbolis/ankietio/share"
)

var shareCmd = &Command{
	Name: "share",
	Args: "ID [list|create|delete LINK_ID|qr TOKEN [-dir KATALOG]|public]",
	Help: "Linki udostępniania ankiety i kody QR",
	Run: func(ctx context.Context, env *Env, args []string) error {
		if err := need(env, args, 1); err != nil {
			return err
		}
		if err := loggedIn(ctx, env); err != nil {
			return err
		}
		surveyID, sub := args[0], "list"
		if len(args) > 1 {
			sub, args = args[1], args[2:]
		} else {
			args = nil
		}

		links := env.App.ShareLinks(surveyID)
		switch sub {
		case "list":
			list, err := links.List(ctx)
			if err != nil {
				return failWith("commands.share.list", err, "Nie udało się załadować linków udostępniania")
			}
			printLinks(env, links, list)
			return nil

		case "create":
			link, err := links.Create(ctx)
			if err != nil {
				return ErrReported
			}
			env.println(links.URL(link))
			return nil

		case "delete":
			if err := need(env, args, 1); err != nil {
				return err
			}
			if !env.In.Confirm(ctx, share.PromptDelete) {
				return nil
			}
			if err := links.Delete(ctx, args[0]); err != nil {
				return ErrReported
			}
			return nil

		case "qr":
			return saveQR(ctx, env, links, args)

		case "public":
			env.println(share.PublicFillURL(env.Config.Origin, surveyID))
			return nil
		}
		return Failure(fmt.Sprintf("Nieznane polecenie %q", sub))
	},
}

// saveQR writes the QR code of a share link, found by token or link id.
func saveQR(ctx context.Context, env *Env, links *share.Links, args []string) error {
	fs := flags(env)
	dir := fs.String("dir", ".", "katalog pliku PNG")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := need(env, fs.Args(), 1); err != nil {
		return err
	}

	list, err := links.List(ctx)
	if err != nil {
		env.App.Toasts.Error(share.MsgQRFailed)
		return failWith("commands.share.qr.list", err, share.MsgQRFailed)
	}
	var link *model.ShareLink
	for i := range list {
		if list[i].ShareToken == fs.Arg(0) || list[i].ID == fs.Arg(0) {
			link = &list[i]
		}
	}
	if link == nil {
		return Failure("Nie znaleziono linku " + fs.Arg(0))
	}

	png, err := share.QR(links.URL(*link))
	if err != nil {
		env.App.Toasts.Error(share.MsgQRFailed)
		return failWith("commands.share.qr", err, share.MsgQRFailed)
	}
	if err := writeFile(env, *dir, share.QRFilename(link.ShareToken), png); err != nil {
		return err
	}
	env.App.Toasts.Success(share.MsgQRSaved)
	return nil
}
