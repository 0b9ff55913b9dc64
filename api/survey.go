package api

import (
	"context"
	"net/http"

	"github.com/mbolis/ankietio/model"
)

func (c *Client) CreateSurvey(ctx context.Context, in model.SurveyCreate) (s model.Survey, err error) {
	err = c.do(ctx, "api.survey.create", http.MethodPost, path("survey", ""), in, &s)
	return
}

// Surveys lists the surveys owned by the logged in user.
func (c *Client) Surveys(ctx context.Context) (surveys []model.Survey, err error) {
	err = c.do(ctx, "api.survey.list", http.MethodGet, path("survey", ""), nil, &surveys)
	return
}

func (c *Client) Survey(ctx context.Context, id string) (s model.Survey, err error) {
	err = c.do(ctx, "api.survey.get", http.MethodGet, path("survey", id), nil, &s)
	return
}

func (c *Client) PublicSurveys(ctx context.Context) (surveys []model.Survey, err error) {
	err = c.do(ctx, "api.survey.list_public", http.MethodGet, path("survey", "public"), nil, &surveys)
	return
}

func (c *Client) PublicSurvey(ctx context.Context, id string) (s model.Survey, err error) {
	err = c.do(ctx, "api.survey.get_public", http.MethodGet, path("survey", id, "public"), nil, &s)
	return
}

func (c *Client) SurveysByName(ctx context.Context, name string) (surveys []model.Survey, err error) {
	err = c.do(ctx, "api.survey.by_name", http.MethodGet, path("survey", "name", name), nil, &surveys)
	return
}

func (c *Client) DeleteSurvey(ctx context.Context, id string) error {
	return c.do(ctx, "api.survey.delete", http.MethodDelete, path("survey", id), nil, nil)
}

func (c *Client) UpdateSurveyStatus(ctx context.Context, id string, status model.SurveyStatus) (s model.Survey, err error) {
	in := struct {
		Status model.SurveyStatus `json:"status"`
	}{status}
	err = c.do(ctx, "api.survey.status", http.MethodPatch, path("survey", id, "status"), in, &s)
	return
}

// Questions fetches the question list of a survey.
func (c *Client) Questions(ctx context.Context, surveyID string) (qs []model.Question, err error) {
	err = c.do(ctx, "api.question.list", http.MethodGet, path("question", surveyID, ""), nil, &qs)
	return
}

// ReplaceQuestions replaces the whole question list of a survey.
func (c *Client) ReplaceQuestions(ctx context.Context, surveyID string, qs []model.QuestionCreate) (out []model.Question, err error) {
	if qs == nil {
		qs = []model.QuestionCreate{}
	}
	err = c.do(ctx, "api.question.replace", http.MethodPost, path("question", surveyID, ""), qs, &out)
	return
}
