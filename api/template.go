package api

import (
	"context"
	"net/http"

	"github.com/mbolis/ankietio/model"
)

func (c *Client) PublicTemplates(ctx context.Context) (ts []model.SurveyTemplate, err error) {
	err = c.do(ctx, "api.template.list_public", http.MethodGet, path("templates", "public"), nil, &ts)
	return
}

func (c *Client) MyTemplates(ctx context.Context) (ts []model.SurveyTemplate, err error) {
	err = c.do(ctx, "api.template.list_mine", http.MethodGet, path("templates", "my"), nil, &ts)
	return
}

func (c *Client) Template(ctx context.Context, id string) (t model.SurveyTemplate, err error) {
	err = c.do(ctx, "api.template.get", http.MethodGet, path("templates", id), nil, &t)
	return
}

func (c *Client) CreateTemplate(ctx context.Context, in model.SurveyTemplateCreate) (t model.SurveyTemplate, err error) {
	err = c.do(ctx, "api.template.create", http.MethodPost, path("templates", ""), in, &t)
	return
}

// UseTemplate creates a new survey from a template.
func (c *Client) UseTemplate(ctx context.Context, id string) (s model.Survey, err error) {
	err = c.do(ctx, "api.template.use", http.MethodPost, path("templates", id, "use"), struct{}{}, &s)
	return
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.do(ctx, "api.template.delete", http.MethodDelete, path("templates", id), nil, nil)
}
