// Package auth handles login state: the persisted bearer token and the
// account flows (login, registration, password reset, email confirmation).
package auth

import (
	"context"

	"github.com/mbolis/ankietio/form"
	"github.com/mbolis/ankietio/httpx"
	"github.com/mbolis/ankietio/model"
)

type API interface {
	Login(ctx context.Context, creds model.Credentials) (model.Token, error)
	CreateUser(ctx context.Context, in model.UserCreate) (model.User, error)
	SendConfirmationEmail(ctx context.Context, email string) error
	ConfirmEmail(ctx context.Context, token string) error
	SendPasswordResetEmail(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

var (
	LoginMessages = httpx.Messages{
		TooManyRequests: "Zbyt wiele prób logowania. Spróbuj ponownie później.",
		Generic:         "Nieprawidłowy email lub hasło",
		PreferServer:    true,
	}
	RegisterMessages = httpx.Messages{
		TooManyRequests: "Zbyt wiele prób rejestracji. Spróbuj ponownie za godzinę.",
		BadRequest:      "Nieprawidłowe dane. Sprawdź formularz i spróbuj ponownie.",
		Conflict:        "Użytkownik z tym adresem email już istnieje.",
		Generic:         "Błąd podczas rejestracji. Spróbuj ponownie później.",
		PreferServer:    true,
	}
	ForgotPasswordMessages = httpx.Messages{
		TooManyRequests: "Zbyt wiele prób resetowania hasła. Spróbuj ponownie za godzinę.",
		Generic:         "Wystąpił błąd. Spróbuj ponownie.",
		PreferServer:    true,
	}
	ResetPasswordMessages = httpx.Messages{
		TooManyRequests: "Zbyt wiele prób resetowania hasła. Spróbuj ponownie za godzinę.",
		Generic:         "Błąd podczas zmiany hasła. Token może być nieprawidłowy lub wygasły.",
		PreferServer:    true,
	}
	ConfirmEmailMessages = httpx.Messages{
		Generic:      "Token wygasł lub jest nieprawidłowy",
		PreferServer: true,
	}
)

// Client runs the account flows against the API. Invalid forms are
// rejected with a *form.Invalid before any request is made.
type Client struct {
	api     API
	session *Session
}

func NewClient(api API, session *Session) *Client {
	return &Client{api, session}
}

func (c *Client) Login(ctx context.Context, f form.Login) error {
	err := f.Validate()
	if err != nil {
		return err
	}
	token, err := c.api.Login(ctx, model.Credentials{Username: f.Email, Password: f.Password})
	if err != nil {
		return err
	}
	return c.session.Set(ctx, token.AccessToken)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.session.Logout(ctx)
}

// Register creates the account and asks for the confirmation email.
// mailErr reports a failure of the latter, which leaves the account in place.
func (c *Client) Register(ctx context.Context, f form.Register) (mailErr, err error) {
	err = f.Validate()
	if err != nil {
		return
	}
	_, err = c.api.CreateUser(ctx, model.UserCreate{Email: f.Email, Password: f.Password})
	if err != nil {
		return
	}
	mailErr = c.api.SendConfirmationEmail(ctx, f.Email)
	return
}

func (c *Client) ConfirmEmail(ctx context.Context, f form.ConfirmEmail) error {
	err := f.Validate()
	if err != nil {
		return err
	}
	return c.api.ConfirmEmail(ctx, f.Token)
}

func (c *Client) ForgotPassword(ctx context.Context, f form.ForgotPassword) error {
	err := f.Validate()
	if err != nil {
		return err
	}
	return c.api.SendPasswordResetEmail(ctx, f.Email)
}

func (c *Client) ResetPassword(ctx context.Context, f form.ResetPassword) error {
	err := f.Validate()
	if err != nil {
		return err
	}
	return c.api.ResetPassword(ctx, f.Token, f.Password)
}
