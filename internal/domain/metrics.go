package domain

import "strings"

// Metric names a single engagement counter.
type Metric string

const (
	Likes    Metric = "likes"
	Comments Metric = "comments"
	Shares   Metric = "shares"
	Replies  Metric = "replies"
	Retweets Metric = "retweets"
	Quotes   Metric = "quotes"
)

// AllMetrics lists every counter in display order.
var AllMetrics = []Metric{Likes, Comments, Shares, Replies, Retweets, Quotes}

// MaxCommentTexts is the hard cap on collected comment texts.
const MaxCommentTexts = 20

// Metrics is the engagement record of one post.
// A nil counter means "not applicable to this platform".
// A record holds either counters or an error, never both.
type Metrics struct {
	Likes    *int `json:"likes,omitempty"`
	Comments *int `json:"comments,omitempty"`
	Shares   *int `json:"shares,omitempty"`
	Replies  *int `json:"replies,omitempty"`
	Retweets *int `json:"retweets,omitempty"`
	Quotes   *int `json:"quotes,omitempty"`

	CommentTexts []string `json:"comment_texts"`
	MediaType    string   `json:"media_type,omitempty"`

	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"error_kind,omitempty"`
	Failure error     `json:"-"`
}

// NewMetrics returns a record with the platform's counters set to zero.
func NewMetrics(p Platform) *Metrics {
	m := &Metrics{CommentTexts: []string{}}
	for _, metric := range p.Metrics() {
		zero := 0
		*m.slot(metric) = &zero
	}
	return m
}

// FailedMetrics returns an error-only record.
func FailedMetrics(err error) *Metrics {
	if err == nil {
		err = ErrScrapeFailure
	}
	return &Metrics{
		CommentTexts: []string{},
		Error:        err.Error(),
		Kind:         KindOf(err),
		Failure:      err,
	}
}

// Failed reports whether the record carries an error.
func (m *Metrics) Failed() bool {
	return m == nil || m.Error != ""
}

// Get returns the counter value and whether it applies.
func (m *Metrics) Get(metric Metric) (int, bool) {
	if m == nil {
		return 0, false
	}
	p := m.slot(metric)
	if p == nil || *p == nil {
		return 0, false
	}
	return **p, true
}

// Set stores a value for an applicable counter. Negative values and
// counters that do not apply are ignored.
func (m *Metrics) Set(metric Metric, v int) bool {
	if m.Failed() || v < 0 {
		return false
	}
	p := m.slot(metric)
	if p == nil || *p == nil {
		return false
	}
	**p = v
	return true
}

// SetIfZero stores a value only when the counter is still at its default.
func (m *Metrics) SetIfZero(metric Metric, v int) bool {
	cur, ok := m.Get(metric)
	if !ok || cur != 0 {
		return false
	}
	return m.Set(metric, v)
}

// AddComments appends trimmed, non-empty texts up to MaxCommentTexts.
func (m *Metrics) AddComments(texts ...string) {
	if m.Failed() {
		return
	}
	for _, t := range texts {
		if len(m.CommentTexts) >= MaxCommentTexts {
			return
		}
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		m.CommentTexts = append(m.CommentTexts, t)
	}
}

func (m *Metrics) slot(metric Metric) **int {
	switch metric {
	case Likes:
		return &m.Likes
	case Comments:
		return &m.Comments
	case Shares:
		return &m.Shares
	case Replies:
		return &m.Replies
	case Retweets:
		return &m.Retweets
	case Quotes:
		return &m.Quotes
	default:
		return nil
	}
}
