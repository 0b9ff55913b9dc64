package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ajg/form"
	"github.com/mbolis/ankietio/model"
	"github.com/pkg/errors"
)

// Login exchanges credentials for an access token (OAuth2 password form).
func (c *Client) Login(ctx context.Context, creds model.Credentials) (token model.Token, err error) {
	body, err := form.EncodeToString(creds)
	if err != nil {
		err = errors.Wrap(err, "api.auth.token.encode")
		return
	}
	r := request{
		method:      http.MethodPost,
		path:        path("auth", "token"),
		body:        strings.NewReader(body),
		contentType: "application/x-www-form-urlencoded",
	}
	err = c.send(ctx, "api.auth.token", r, &token)
	return
}

func (c *Client) ConfirmEmail(ctx context.Context, token string) error {
	return c.do(ctx, "api.auth.email.confirm", http.MethodPost, path("auth", "email", "confirmation"),
		model.EmailRequest{Token: token}, nil)
}

func (c *Client) SendConfirmationEmail(ctx context.Context, email string) error {
	r := request{
		method: http.MethodPost,
		path:   path("auth", "email", "send-confirmation-mail"),
		query:  url.Values{"email": {email}},
	}
	return c.send(ctx, "api.auth.email.send_confirmation", r, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, "api.auth.password.reset", http.MethodPost, path("auth", "password", "reset"),
		model.PasswordReset{Token: token, NewPassword: newPassword}, nil)
}

func (c *Client) SendPasswordResetEmail(ctx context.Context, email string) error {
	r := request{
		method: http.MethodPost,
		path:   path("auth", "password", "send-reset-mail"),
		query:  url.Values{"email": {email}},
	}
	return c.send(ctx, "api.auth.password.send_reset", r, nil)
}
