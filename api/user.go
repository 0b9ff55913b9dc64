package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/mbolis/ankietio/model"
)

func (c *Client) CurrentUser(ctx context.Context) (u model.User, err error) {
	err = c.do(ctx, "api.user.get", http.MethodGet, path("user", ""), nil, &u)
	return
}

func (c *Client) CreateUser(ctx context.Context, in model.UserCreate) (u model.User, err error) {
	err = c.do(ctx, "api.user.create", http.MethodPost, path("user", ""), in, &u)
	return
}

func (c *Client) UpdateUser(ctx context.Context, in model.UserUpdate) (u model.User, err error) {
	err = c.do(ctx, "api.user.update", http.MethodPatch, path("user", "update_user"), in, &u)
	return
}

func (c *Client) DeleteUser(ctx context.Context) error {
	return c.do(ctx, "api.user.delete", http.MethodDelete, path("user", ""), nil, nil)
}

// AllUsers is only answered for superusers.
func (c *Client) AllUsers(ctx context.Context) (us []model.User, err error) {
	err = c.do(ctx, "api.user.list", http.MethodGet, path("user", "all_users"), nil, &us)
	return
}

// MyData returns everything the server stores about the user.
func (c *Client) MyData(ctx context.Context) (data json.RawMessage, err error) {
	err = c.do(ctx, "api.gdpr.my_data", http.MethodGet, path("gdpr", "my-data"), nil, &data)
	return
}

// DeleteMyData erases the account and all of its data.
func (c *Client) DeleteMyData(ctx context.Context) error {
	return c.do(ctx, "api.gdpr.delete", http.MethodDelete, path("gdpr", "my-data"), nil, nil)
}

// ExportData downloads the GDPR export document as sent by the server.
func (c *Client) ExportData(ctx context.Context) (data []byte, err error) {
	err = c.do(ctx, "api.gdpr.export", http.MethodGet, path("gdpr", "export-data"), nil, &data)
	return
}
