// Package api is the client of the Ankietio REST API (v1).
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mbolis/ankietio/httpx"
	"github.com/pkg/errors"
)

type Options struct {
	Timeout   time.Duration
	Tokens    httpx.TokenSource
	OnExpired func(ctx context.Context)
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a client for the API rooted at base, which must end with a
// slash (see config.Config.BaseURL).
func New(base *url.URL, opts Options) *Client {
	return &Client{
		base: base,
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &httpx.Bearer{
				Base:      opts.Transport,
				Tokens:    opts.Tokens,
				OnExpired: opts.OnExpired,
			},
		},
	}
}

// path joins escaped segments below the base URL. A trailing "" segment
// keeps a trailing slash.
func path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, p string, in any) (r request, err error) {
	r = request{method: method, path: p}
	if in != nil {
		var b []byte
		b, err = json.Marshal(in)
		if err != nil {
			return
		}
		r.body = bytes.NewReader(b)
		r.contentType = "application/json"
	}
	return
}

func (c *Client) send(ctx context.Context, code string, r request, out any) error {
	u := c.base.ResolveReference(&url.URL{RawPath: r.path, Path: unescape(r.path)})
	if r.query != nil {
		u.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return errors.Wrap(err, code+".new_request")
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, code)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrap(httpx.ReadError(resp), code)
	}

	switch out := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
	case *[]byte:
		*out, err = io.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, code+".read")
		}
	default:
		err = json.NewDecoder(resp.Body).Decode(out)
		if err != nil {
			return errors.Wrap(err, code+".decode")
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, code, method, p string, in, out any) error {
	r, err := jsonRequest(method, p, in)
	if err != nil {
		return errors.Wrap(err, code+".encode")
	}
	return c.send(ctx, code, r, out)
}

func unescape(p string) string {
	s, err := url.PathUnescape(p)
	if err != nil {
		return p
	}
	return s
}
