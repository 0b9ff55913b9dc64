package api

import (
	"context"
	"net/http"

	"github.com/mbolis/ankietio/model"
)

func (c *Client) Submit(ctx context.Context, in model.SubmissionCreate) error {
	return c.do(ctx, "api.submission.create", http.MethodPost, path("submissions", ""), in, nil)
}

func (c *Client) Submissions(ctx context.Context, surveyID string) (subs []model.Submission, err error) {
	err = c.do(ctx, "api.submission.list", http.MethodGet, path("submissions", "survey", surveyID), nil, &subs)
	return
}

// CheckDuplicate asks whether the current user, or the given device
// fingerprint, already answered the survey.
func (c *Client) CheckDuplicate(ctx context.Context, surveyID string, fingerprint *string) (bool, error) {
	in := struct {
		FingerprintAdvanced *string `json:"fingerprint_advanced,omitempty"`
	}{fingerprint}
	var out model.DuplicateCheck
	err := c.do(ctx, "api.submission.check_duplicate", http.MethodPost, path("submissions", "check-duplicate", surveyID), in, &out)
	return out.AlreadySubmitted, err
}
