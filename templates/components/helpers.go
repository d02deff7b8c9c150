// Package components holds the reusable HTML fragments of the web UI.
package components

import (
	"strconv"

	"postmetrics/internal/domain"
)

// metricLabel names a counter the way the platform does.
func metricLabel(p domain.Platform, metric domain.Metric) string {
	switch {
	case p == domain.Facebook && metric == domain.Likes:
		return "Reactions"
	default:
		s := string(metric)
		return string(s[0]-'a'+'A') + s[1:]
	}
}

func metricValue(m *domain.Metrics, metric domain.Metric) string {
	v, _ := m.Get(metric)
	return strconv.Itoa(v)
}

func platformName(p domain.Platform) string {
	if p == "" {
		return domain.NotAvailable
	}
	return p.String()
}

func rowError(row domain.BatchRow) string {
	if row.Placeholder() && row.Metrics != nil {
		return row.Metrics.Error
	}
	return ""
}
