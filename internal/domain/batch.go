package domain

import (
	"encoding/json"
	"strconv"
)

// NotAvailable marks a field of a failed batch row. It is distinct from a
// genuine zero count.
const NotAvailable = "N/A"

// BatchInput is one (name, link) pair supplied for batch processing.
type BatchInput struct {
	Name string
	Link string
}

// BatchRow is the outcome for one BatchInput.
type BatchRow struct {
	Name     string
	Link     string
	Platform Platform // empty when the link matched no platform
	Metrics  *Metrics
}

// NewBatchRow builds a row from fetched metrics. Failed metrics turn the
// row into a placeholder.
func NewBatchRow(in BatchInput, platform Platform, m *Metrics) BatchRow {
	return BatchRow{
		Name:     in.Name,
		Link:     in.Link,
		Platform: platform,
		Metrics:  m,
	}
}

// PlaceholderRow builds a row whose every metric is NotAvailable.
func PlaceholderRow(in BatchInput, platform Platform, err error) BatchRow {
	return NewBatchRow(in, platform, FailedMetrics(err))
}

// Placeholder reports whether the row carries no usable metrics.
func (r BatchRow) Placeholder() bool {
	return r.Metrics.Failed()
}

// Value renders a single metric for presentation. Placeholder rows yield
// NotAvailable for every metric; metrics that do not apply yield "".
func (r BatchRow) Value(metric Metric) string {
	if r.Placeholder() {
		return NotAvailable
	}
	v, ok := r.Metrics.Get(metric)
	if !ok {
		return ""
	}
	return strconv.Itoa(v)
}

// MediaType renders the media type, NotAvailable for placeholders.
func (r BatchRow) MediaType() string {
	if r.Placeholder() {
		return NotAvailable
	}
	return r.Metrics.MediaType
}

// CommentTexts returns the collected comments, empty for placeholders.
func (r BatchRow) CommentTexts() []string {
	if r.Placeholder() {
		return []string{}
	}
	return r.Metrics.CommentTexts
}

// MarshalJSON flattens the metrics into the row. Placeholder rows carry
// NotAvailable in every metric field.
func (r BatchRow) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"name":          r.Name,
		"link":          r.Link,
		"platform":      string(r.Platform),
		"comment_texts": r.CommentTexts(),
	}

	if r.Placeholder() {
		for _, metric := range AllMetrics {
			out[string(metric)] = NotAvailable
		}
		out["media_type"] = NotAvailable
		if r.Metrics != nil {
			out["error"] = r.Metrics.Error
			out["error_kind"] = r.Metrics.Kind
		}
		return json.Marshal(out)
	}

	for _, metric := range AllMetrics {
		if v, ok := r.Metrics.Get(metric); ok {
			out[string(metric)] = v
		}
	}
	if r.Metrics.MediaType != "" {
		out["media_type"] = r.Metrics.MediaType
	}
	return json.Marshal(out)
}
