package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"postmetrics/internal/domain"
	"postmetrics/pkg/log"
)

const facebookPostFields = "reactions.summary(true),comments.summary(true),shares,message,created_time"

// FacebookFetcher reads post metrics from the Graph API.
type FacebookFetcher struct {
	opts    Options
	version string
}

// NewFacebookFetcher returns a Graph API fetcher for the given version,
// e.g. "v18.0".
func NewFacebookFetcher(opts Options, version string) *FacebookFetcher {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.CommentLimit <= 0 {
		opts.CommentLimit = 10
	}
	return &FacebookFetcher{opts: opts, version: version}
}

// Fetch reads reactions (reported as likes), comments and shares of the
// post, plus up to CommentLimit comment messages.
func (f *FacebookFetcher) Fetch(ctx context.Context, ref domain.PostReference) (*domain.Metrics, error) {
	client := f.opts.client()

	q := url.Values{}
	q.Set("fields", facebookPostFields)
	q.Set("access_token", f.opts.Token)

	post, err := getJSON(ctx, client, domain.Facebook, f.endpoint(ref.Identifier), q, nil)
	if err != nil {
		return nil, err
	}

	m := domain.NewMetrics(domain.Facebook)
	m.Set(domain.Likes, int(post.Get("reactions.summary.total_count").Int()))
	m.Set(domain.Comments, int(post.Get("comments.summary.total_count").Int()))
	m.Set(domain.Shares, int(post.Get("shares.count").Int()))

	m.AddComments(f.comments(ctx, ref.Identifier)...)
	return m, nil
}

// comments never fails the fetch; any error yields an empty list.
func (f *FacebookFetcher) comments(ctx context.Context, postID string) []string {
	q := url.Values{}
	q.Set("fields", "message,from")
	q.Set("limit", strconv.Itoa(f.opts.CommentLimit))
	q.Set("access_token", f.opts.Token)

	res, err := getJSON(ctx, f.opts.client(), domain.Facebook, f.endpoint(postID)+"/comments", q, nil)
	if err != nil {
		log.GlobalWarnCtx(ctx, "facebook comments unavailable", "post_id", postID, "error", err)
		return nil
	}

	var out []string
	for _, c := range res.Get("data.#.message").Array() {
		out = append(out, c.String())
	}
	return out
}

func (f *FacebookFetcher) endpoint(id string) string {
	return f.opts.BaseURL + "/" + f.version + "/" + url.PathEscape(id)
}
