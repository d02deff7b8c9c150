package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"postmetrics/internal/domain"
)

var (
	suffixedCount = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)([KkMmBb])$`)
	plainCount    = regexp.MustCompile(`^\d{1,3}(?:([.,])\d{3})*$|^\d+$`)
)

var suffixMultiplier = map[byte]float64{
	'k': 1e3,
	'm': 1e6,
	'b': 1e9,
}

// ParseCount turns a displayed count into an integer.
//
//	"1,234" -> 1234    "1.234" -> 1234    "12.3K" -> 12300    "2M" -> 2000000
//
// Anything else (including "12.5" with no suffix) is not a count.
func ParseCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".,")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, false
	}

	if m := suffixedCount.FindStringSubmatch(s); m != nil {
		f, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		mult := suffixMultiplier[strings.ToLower(m[2])[0]]
		return int(math.Round(f * mult)), true
	}

	m := plainCount.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	// Mixed separators like "1,234.567" are not a count.
	if sep := m[1]; sep != "" {
		other := ","
		if sep == "," {
			other = "."
		}
		if strings.Contains(s, other) {
			return 0, false
		}
		s = strings.ReplaceAll(s, sep, "")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// findCount returns the first capture of re in text parsed as a count.
func findCount(re *regexp.Regexp, text string) (int, bool) {
	if re == nil {
		return 0, false
	}
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if n, ok := ParseCount(m[1]); ok {
			return n, true
		}
	}
	return 0, false
}

// interactionCounts reads schema.org interactionStatistic entries from one
// ld+json document. The statistic can be a single object or a list, the
// interaction type can be a string or an object with @type, and counts
// can be numbers or strings.
func interactionCounts(doc gjson.Result) map[domain.Metric]int {
	out := map[domain.Metric]int{}

	stats := doc.Get("interactionStatistic")
	if !stats.Exists() {
		return out
	}
	if !stats.IsArray() {
		stats = gjson.Parse("[" + stats.Raw + "]")
	}

	stats.ForEach(func(_, entry gjson.Result) bool {
		kind := entry.Get("interactionType.@type").String()
		if kind == "" {
			kind = entry.Get("interactionType").String()
		}
		metrics := metricsForInteraction(kind)
		if len(metrics) == 0 {
			return true
		}

		raw := entry.Get("userInteractionCount")
		var n int
		var ok bool
		switch raw.Type {
		case gjson.Number:
			n, ok = int(raw.Int()), true
		case gjson.String:
			n, ok = ParseCount(raw.String())
		}
		if !ok {
			return true
		}
		for _, metric := range metrics {
			if _, seen := out[metric]; !seen {
				out[metric] = n
			}
		}
		return true
	})
	return out
}

// metricsForInteraction maps a schema.org interaction type such as
// "https://schema.org/LikeAction" to the metrics it can fill.
func metricsForInteraction(kind string) []domain.Metric {
	k := strings.ToLower(kind)
	switch {
	case strings.Contains(k, "like"):
		return []domain.Metric{domain.Likes}
	case strings.Contains(k, "comment"):
		return []domain.Metric{domain.Comments, domain.Replies}
	case strings.Contains(k, "retweet"), strings.Contains(k, "share"):
		return []domain.Metric{domain.Retweets, domain.Shares}
	default:
		return nil
	}
}

// mediaType derives a short media type from an ld+json document:
// "VideoObject" -> "video", "ImageObject" -> "image". Posts typed as
// SocialMediaPosting are classified by the media they embed.
func mediaType(doc gjson.Result) string {
	t := strings.ToLower(doc.Get("@type").String())
	switch {
	case strings.Contains(t, "video"), doc.Get("video").Exists():
		return "video"
	case strings.Contains(t, "image"), strings.Contains(t, "photo"), doc.Get("image").Exists():
		return "image"
	default:
		return ""
	}
}
