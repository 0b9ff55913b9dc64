package commands

import (
	"context"

	"github.com/mbolis/ankietio/auth"
	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/log"
)

const (
	msgLoggedIn       = "Zalogowano."
	msgLoggedOut      = "Wylogowano."
	msgRegistered     = "Konto utworzone! Sprawdź email aby potwierdzić konto."
	msgMailNotSent    = "Konto utworzone, ale nie udało się wysłać emaila potwierdzającego. Spróbuj: ankietio confirm-email -resend"
	msgEmailConfirmed = "Email potwierdzony! Możesz się zalogować."
	msgConfirmResent  = "Email potwierdzający został wysłany ponownie."
	msgResetSent      = "Link do resetowania hasła został wysłany na Twój email."
	msgPasswordReset  = "Hasło zostało zmienione! Możesz się zalogować."
)

var loginCmd = &Command{
	Name: "login",
	Args: "[-email EMAIL] [-password HASŁO]",
	Help: "Logowanie",
	Run: func(ctx context.Context, env *Env, args []string) error {
		var f form.Login
		fs := flags(env)
		fs.StringVar(&f.Email, "email", "", "adres email")
		fs.StringVar(&f.Password, "password", "", "hasło (pytanie, gdy brak)")
		if err := fs.Parse(args); err != nil {
			return err
		}

		var err error
		if f.Email, err = env.In.AskDefault(ctx, "Email: ", f.Email); err != nil {
			return err
		}
		if f.Password, err = env.In.AskDefault(ctx, "Hasło: ", f.Password); err != nil {
			return err
		}

		err = env.App.Auth.Login(ctx, f)
		if err != nil {
			return fail("commands.login", err, auth.LoginMessages)
		}
		env.println(msgLoggedIn)
		return nil
	},
}

var logoutCmd = &Command{
	Name: "logout",
	Help: "Wylogowanie",
	Run: func(ctx context.Context, env *Env, args []string) error {
		err := env.App.Auth.Logout(ctx)
		if err != nil {
			return err
		}
		env.println(msgLoggedOut)
		return nil
	},
}

var registerCmd = &Command{
	Name: "register",
	Args: "[-email EMAIL] [-password HASŁO]",
	Help: "Rejestracja nowego konta",
	Run: func(ctx context.Context, env *Env, args []string) error {
		var f form.Register
		fs := flags(env)
		fs.StringVar(&f.Email, "email", "", "adres email")
		fs.StringVar(&f.Password, "password", "", "hasło: 8-40 znaków, wielka i mała litera oraz cyfra")
		if err := fs.Parse(args); err != nil {
			return err
		}

		var err error
		if f.Email, err = env.In.AskDefault(ctx, "Email: ", f.Email); err != nil {
			return err
		}
		if f.Password, err = env.In.AskDefault(ctx, "Hasło: ", f.Password); err != nil {
			return err
		}
		strength := form.PasswordStrength(f.Password)
		env.printf("Siła hasła: %s (%d%%)\n", strength.Label(), strength.Percent())
		if f.ConfirmPassword, err = env.In.Ask(ctx, "Powtórz hasło: "); err != nil {
			return err
		}

		mailErr, err := env.App.Auth.Register(ctx, f)
		if err != nil {
			return fail("commands.register", err, auth.RegisterMessages)
		}
		if mailErr != nil {
			log.Debugf("commands.register.mail: %s", mailErr)
			env.println(msgMailNotSent)
			return nil
		}
		env.println(msgRegistered)
		return nil
	},
}

var confirmEmailCmd = &Command{
	Name: "confirm-email",
	Args: "TOKEN | -resend EMAIL",
	Help: "Potwierdzenie adresu email tokenem z wiadomości",
	Run: func(ctx context.Context, env *Env, args []string) error {
		fs := flags(env)
		resend := fs.String("resend", "", "wyślij ponownie email potwierdzający na ten adres")
		if err := fs.Parse(args); err != nil {
			return err
		}

		if *resend != "" {
			err := env.App.API.SendConfirmationEmail(ctx, *resend)
			if err != nil {
				return fail("commands.confirm_email.resend", err, auth.ConfirmEmailMessages)
			}
			env.println(msgConfirmResent)
			return nil
		}

		err := env.App.Auth.ConfirmEmail(ctx, form.ConfirmEmail{Token: fs.Arg(0)})
		if err != nil {
			return fail("commands.confirm_email", err, auth.ConfirmEmailMessages)
		}
		env.println(msgEmailConfirmed)
		return nil
	},
}

var forgotPasswordCmd = &Command{
	Name: "forgot-password",
	Args: "[EMAIL]",
	Help: "Wysłanie linku do resetowania hasła",
	Run: func(ctx context.Context, env *Env, args []string) error {
		var f form.ForgotPassword
		if len(args) > 0 {
			f.Email = args[0]
		}
		var err error
		if f.Email, err = env.In.AskDefault(ctx, "Email: ", f.Email); err != nil {
			return err
		}

		err = env.App.Auth.ForgotPassword(ctx, f)
		if err != nil {
			return fail("commands.forgot_password", err, auth.ForgotPasswordMessages)
		}
		env.println(msgResetSent)
		return nil
	},
}

var resetPasswordCmd = &Command{
	Name: "reset-password",
	Args: "TOKEN",
	Help: "Ustawienie nowego hasła tokenem z wiadomości",
	Run: func(ctx context.Context, env *Env, args []string) error {
		f := form.ResetPassword{}
		if len(args) > 0 {
			f.Token = args[0]
		}
		if f.Token != "" {
			var err error
			if f.Password, err = env.In.Ask(ctx, "Nowe hasło: "); err != nil {
				return err
			}
			if f.ConfirmPassword, err = env.In.Ask(ctx, "Powtórz hasło: "); err != nil {
				return err
			}
		}

		err := env.App.Auth.ResetPassword(ctx, f)
		if err != nil {
			return fail("commands.reset_password", err, auth.ResetPasswordMessages)
		}
		env.println(msgPasswordReset)
		return nil
	},
}
