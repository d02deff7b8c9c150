package domain_test

import (
	"errors"
	"testing"

	"postmetrics/internal/domain"
)

func TestClassify_SupportedLinks_ReturnsPlatform(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		want domain.Platform
	}{
		{name: "twitter", url: "https://twitter.com/jack/status/20", want: domain.Twitter},
		{name: "x", url: "https://x.com/jack/status/20", want: domain.Twitter},
		{name: "facebook", url: "https://www.facebook.com/page/posts/1", want: domain.Facebook},
		{name: "mobile facebook", url: "https://m.facebook.com/page/posts/1", want: domain.Facebook},
		{name: "fb.watch", url: "https://fb.watch/abcDEF/", want: domain.Facebook},
		{name: "instagram", url: "https://www.instagram.com/p/Cabc123/", want: domain.Instagram},
		{name: "tiktok", url: "https://www.tiktok.com/@user/video/7300000000000000000", want: domain.TikTok},
		{name: "tiktok short", url: "https://vm.tiktok.com/ZMabc/", want: domain.TikTok},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			got, err := domain.Classify(tc.url)

			// Assert
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestClassify_UnknownLinks_ReturnsUnsupported(t *testing.T) {
	testCases := []string{
		"https://example.com/not-a-social-post",
		"https://youtube.com/watch?v=abc",
		"",
		"not a url",
	}

	for _, url := range testCases {
		t.Run(url, func(t *testing.T) {
			// Act
			_, err := domain.Classify(url)

			// Assert
			if !errors.Is(err, domain.ErrUnsupportedPlatform) {
				t.Errorf("URL %q: expected ErrUnsupportedPlatform, got %v", url, err)
			}
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Arrange - a facebook link that mentions x.com in its query
	url := "https://facebook.com/share?u=https://x.com/a/status/1"

	// Act
	got, _ := domain.Classify(url)

	// Assert - twitter fragments are checked first
	if got != domain.Twitter {
		t.Errorf("got %v, want %v", got, domain.Twitter)
	}
}

func TestParsePlatform_KnownAndUnknown(t *testing.T) {
	if p, ok := domain.ParsePlatform(" TikTok "); !ok || p != domain.TikTok {
		t.Errorf("got %v/%v, want tiktok/true", p, ok)
	}
	if _, ok := domain.ParsePlatform("myspace"); ok {
		t.Error("expected myspace to be unknown")
	}
}

func TestPlatform_Metrics_PerPlatformFieldSet(t *testing.T) {
	if got := domain.Facebook.Metrics(); len(got) != 3 || got[2] != domain.Shares {
		t.Errorf("facebook metrics: got %v", got)
	}
	if got := domain.Twitter.Metrics(); len(got) != 4 || got[3] != domain.Quotes {
		t.Errorf("twitter metrics: got %v", got)
	}
	if !domain.Instagram.HasMediaType() || domain.TikTok.HasMediaType() {
		t.Error("only instagram exposes a media type")
	}
}
