// Package domain contains the core business entities and rules.
package domain

import "strings"

// Platform identifies a supported social network.
type Platform string

const (
	Facebook  Platform = "facebook"
	Twitter   Platform = "twitter"
	Instagram Platform = "instagram"
	TikTok    Platform = "tiktok"
)

// platformFragments is the ordered classifier table. First match wins.
var platformFragments = []struct {
	platform  Platform
	fragments []string
}{
	{Twitter, []string{"twitter.com", "x.com"}},
	{Facebook, []string{"facebook.com", "fb.watch"}},
	{Instagram, []string{"instagram.com"}},
	{TikTok, []string{"tiktok.com", "vm.tiktok.com"}},
}

// Platforms returns all supported platforms in classifier order.
func Platforms() []Platform {
	out := make([]Platform, 0, len(platformFragments))
	for _, p := range platformFragments {
		out = append(out, p.platform)
	}
	return out
}

// Classify returns the platform a raw link belongs to using plain substring
// containment. No URL validation is performed.
func Classify(rawURL string) (Platform, error) {
	for _, p := range platformFragments {
		for _, fragment := range p.fragments {
			if strings.Contains(rawURL, fragment) {
				return p.platform, nil
			}
		}
	}
	return "", ErrUnsupportedPlatform
}

// String returns the display name of the platform.
func (p Platform) String() string {
	switch p {
	case Facebook:
		return "Facebook"
	case Twitter:
		return "Twitter"
	case Instagram:
		return "Instagram"
	case TikTok:
		return "TikTok"
	default:
		return string(p)
	}
}

// ParsePlatform converts a lowercase platform key back to a Platform.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms() {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// Metrics returns the counters that apply to the platform, in display order.
func (p Platform) Metrics() []Metric {
	switch p {
	case Facebook:
		return []Metric{Likes, Comments, Shares}
	case Twitter:
		return []Metric{Likes, Replies, Retweets, Quotes}
	case Instagram, TikTok:
		return []Metric{Likes, Comments}
	default:
		return nil
	}
}

// HasMediaType reports whether the platform exposes a media type.
func (p Platform) HasMediaType() bool {
	return p == Instagram
}
