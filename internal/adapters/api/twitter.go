package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"postmetrics/internal/domain"
	"postmetrics/pkg/log"
)

// Recent search rejects max_results outside 10..100.
const (
	minSearchResults = 10
	maxSearchResults = 100
)

// TwitterFetcher reads tweet metrics from the v2 API.
type TwitterFetcher struct {
	opts Options
}

func NewTwitterFetcher(opts Options) *TwitterFetcher {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.CommentLimit <= 0 {
		opts.CommentLimit = 10
	}
	return &TwitterFetcher{opts: opts}
}

// Fetch reads public_metrics of the tweet and the text of replies found
// through recent search on its conversation.
func (f *TwitterFetcher) Fetch(ctx context.Context, ref domain.PostReference) (*domain.Metrics, error) {
	q := url.Values{}
	q.Set("tweet.fields", "public_metrics,conversation_id")

	res, err := getJSON(ctx, f.opts.client(), domain.Twitter, f.opts.BaseURL+"/2/tweets/"+url.PathEscape(ref.Identifier), q, f.auth())
	if err != nil {
		return nil, err
	}

	tweet := res.Get("data")
	if !tweet.Exists() {
		// Unknown or protected tweets come back as 200 with an errors array.
		return nil, &domain.APIError{Platform: domain.Twitter, Status: http.StatusOK, Body: res.Raw}
	}

	m := domain.NewMetrics(domain.Twitter)
	pm := tweet.Get("public_metrics")
	m.Set(domain.Likes, int(pm.Get("like_count").Int()))
	m.Set(domain.Replies, int(pm.Get("reply_count").Int()))
	m.Set(domain.Retweets, int(pm.Get("retweet_count").Int()))
	m.Set(domain.Quotes, int(pm.Get("quote_count").Int()))

	conversation := tweet.Get("conversation_id").String()
	if conversation == "" {
		conversation = ref.Identifier
	}
	m.AddComments(f.replies(ctx, conversation)...)
	return m, nil
}

// replies never fails the fetch. Recent search needs elevated access on
// most plans, so a 403 here is routine.
func (f *TwitterFetcher) replies(ctx context.Context, conversationID string) []string {
	limit := f.opts.CommentLimit
	if limit < minSearchResults {
		limit = minSearchResults
	}
	if limit > maxSearchResults {
		limit = maxSearchResults
	}

	q := url.Values{}
	q.Set("query", "conversation_id:"+conversationID)
	q.Set("tweet.fields", "author_id,created_at,text")
	q.Set("max_results", strconv.Itoa(limit))

	res, err := getJSON(ctx, f.opts.client(), domain.Twitter, f.opts.BaseURL+"/2/tweets/search/recent", q, f.auth())
	if err != nil {
		log.GlobalWarnCtx(ctx, "twitter replies unavailable", "conversation_id", conversationID, "error", err)
		return nil
	}

	var out []string
	for _, t := range res.Get("data.#.text").Array() {
		out = append(out, t.String())
		if len(out) == f.opts.CommentLimit {
			break
		}
	}
	return out
}

func (f *TwitterFetcher) auth() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+f.opts.Token)
	return h
}
