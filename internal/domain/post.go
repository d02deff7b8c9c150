package domain

import (
	"regexp"
	"strings"
)

// PostReference identifies a single post on a platform.
// It is created once per link and never mutated afterwards.
type PostReference struct {
	Platform      Platform
	RawURL        string
	NormalizedURL string
	Identifier    string // empty when the platform has none for this link
}

// identifierPatterns are tried in order. Specific patterns must come before
// the generic fallbacks so a trailing number in an unrelated segment is not
// picked up first.
var identifierPatterns = map[Platform][]*regexp.Regexp{
	Facebook: {
		regexp.MustCompile(`facebook\.com/[\w.]+/posts/(\d+)`),
		regexp.MustCompile(`facebook\.com/[\w.]+/photos/[^/]+/(\d+)`),
		regexp.MustCompile(`facebook\.com/permalink\.php\?story_fbid=(\d+)`),
		regexp.MustCompile(`facebook\.com/photo\.php\?fbid=(\d+)`),
		regexp.MustCompile(`/posts/(\d+)`),
		regexp.MustCompile(`/videos/(\d+)`),
		regexp.MustCompile(`/(\d+)`),
	},
	Twitter: {
		regexp.MustCompile(`status/(\d+)`),
	},
	Instagram: {
		regexp.MustCompile(`instagram\.com/p/([^/]+)`),
		regexp.MustCompile(`instagram\.com/reel/([^/]+)`),
		regexp.MustCompile(`instagram\.com/reels/([^/]+)`),
		regexp.MustCompile(`instagram\.com/tv/([^/]+)`),
		regexp.MustCompile(`instagram\.com/(?:[^/]+)/([^/]+)`),
	},
	TikTok: {
		regexp.MustCompile(`/video/(\d+)`),
	},
}

// RequiresIdentifier reports whether a post on this platform cannot be
// fetched without a native identifier.
func (p Platform) RequiresIdentifier() bool {
	return p != TikTok
}

// NormalizeURL cleans a raw link the way the platform expects it.
// Facebook links lose their query string and the mobile subdomain.
// Instagram links lose their query string and trailing slash.
func NormalizeURL(p Platform, rawURL string) string {
	u := strings.TrimSpace(rawURL)
	switch p {
	case Facebook:
		u = stripQuery(u)
		u = strings.Replace(u, "m.facebook.com", "facebook.com", 1)
	case Instagram:
		u = strings.TrimRight(stripQuery(u), "/")
	}
	return u
}

// ExtractIdentifier returns the first capture of the platform's ordered
// pattern list. It is a pure function of its input.
func ExtractIdentifier(p Platform, url string) (string, error) {
	for _, re := range identifierPatterns[p] {
		if m := re.FindStringSubmatch(url); len(m) > 1 && m[1] != "" {
			return m[1], nil
		}
	}
	return "", ErrIdentifierNotFound
}

// NewPostReference classifies, normalizes and extracts the identifier of a
// raw link. A missing identifier is only an error when the platform
// requires one.
func NewPostReference(rawURL string) (PostReference, error) {
	platform, err := Classify(rawURL)
	if err != nil {
		return PostReference{RawURL: rawURL}, err
	}

	ref := PostReference{
		Platform:      platform,
		RawURL:        rawURL,
		NormalizedURL: NormalizeURL(platform, rawURL),
	}

	id, err := ExtractIdentifier(platform, ref.NormalizedURL)
	if err != nil && ref.NormalizedURL != strings.TrimSpace(rawURL) {
		// permalink.php?story_fbid= style links keep the id in the query
		id, err = ExtractIdentifier(platform, strings.TrimSpace(rawURL))
	}
	if err != nil && platform.RequiresIdentifier() {
		return ref, err
	}
	ref.Identifier = id

	return ref, nil
}

func stripQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
