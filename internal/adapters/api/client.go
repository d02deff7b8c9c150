// Package api fetches engagement metrics from the official platform APIs.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"postmetrics/internal/domain"
)

// maxBody bounds how much of a response is read.
const maxBody = 4 << 20

// Options is shared by every API fetcher.
type Options struct {
	BaseURL      string
	Token        string
	CommentLimit int
	Timeout      time.Duration
	// HTTPClient overrides the default client, mainly in tests.
	HTTPClient *http.Client
}

func (o Options) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs one GET. Any status other than 200 becomes a
// *domain.APIError carrying the raw body. There are no retries.
func getJSON(ctx context.Context, c *http.Client, p domain.Platform, endpoint string, query url.Values, header http.Header) (gjson.Result, error) {
	u := endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return gjson.Result{}, transportError(ctx, p, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return gjson.Result{}, transportError(ctx, p, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, &domain.APIError{Platform: p, Status: resp.StatusCode, Body: string(body)}
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &domain.APIError{Platform: p, Status: resp.StatusCode, Body: string(body)}
	}
	return gjson.ParseBytes(body), nil
}

// transportError reports a request that got no usable answer. Cancellation
// of ctx stays a context error; anything else is an APIError.
func transportError(ctx context.Context, p domain.Platform, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s api: %w", p, ctxErr)
	}
	return &domain.APIError{Platform: p, Err: err}
}
