package api

import (
	"context"
	"net/http"

	"github.com/mbolis/ankietio/model"
)

func (c *Client) CreateShareLink(ctx context.Context, surveyID string, in model.ShareLinkCreate) (link model.ShareLink, err error) {
	err = c.do(ctx, "api.share.create", http.MethodPost, path("share", surveyID), in, &link)
	return
}

func (c *Client) ShareLinks(ctx context.Context, surveyID string) (links []model.ShareLink, err error) {
	err = c.do(ctx, "api.share.list", http.MethodGet, path("share", "survey", surveyID), nil, &links)
	return
}

func (c *Client) DeleteShareLink(ctx context.Context, linkID string) error {
	return c.do(ctx, "api.share.delete", http.MethodDelete, path("share", linkID), nil, nil)
}

// SurveyByToken resolves a share token to the survey it opens.
func (c *Client) SurveyByToken(ctx context.Context, token string) (s model.Survey, err error) {
	err = c.do(ctx, "api.share.survey", http.MethodGet, path("share", "token", token, "survey"), nil, &s)
	return
}
