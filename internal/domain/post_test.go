package domain_test

import (
	"errors"
	"testing"

	"postmetrics/internal/domain"
)

func TestNewPostReference_FacebookQueryString_NormalizedAndExtracted(t *testing.T) {
	// Arrange
	raw := "https://www.facebook.com/somepage/posts/998877?ref=abc"

	// Act
	ref, err := domain.NewPostReference(raw)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.NormalizedURL != "https://www.facebook.com/somepage/posts/998877" {
		t.Errorf("NormalizedURL: got %q", ref.NormalizedURL)
	}
	if ref.Identifier != "998877" {
		t.Errorf("Identifier: got %q, want 998877", ref.Identifier)
	}
	if ref.RawURL != raw {
		t.Errorf("RawURL: got %q, want %q", ref.RawURL, raw)
	}
}

func TestNewPostReference_FacebookMobile_PrefixStripped(t *testing.T) {
	// Act
	ref, err := domain.NewPostReference("https://m.facebook.com/somepage/posts/55")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.NormalizedURL != "https://facebook.com/somepage/posts/55" {
		t.Errorf("NormalizedURL: got %q", ref.NormalizedURL)
	}
	if ref.Identifier != "55" {
		t.Errorf("Identifier: got %q, want 55", ref.Identifier)
	}
}

func TestExtractIdentifier_Facebook_Formats(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		want string
	}{
		{name: "posts", url: "https://facebook.com/page.name/posts/123456", want: "123456"},
		{name: "photos", url: "https://facebook.com/page/photos/a.111/222333", want: "222333"},
		{name: "permalink", url: "https://facebook.com/permalink.php?story_fbid=444&id=9", want: "444"},
		{name: "photo.php", url: "https://facebook.com/photo.php?fbid=555", want: "555"},
		{name: "videos", url: "https://facebook.com/page/videos/666/", want: "666"},
		{name: "generic fallback", url: "https://facebook.com/777/", want: "777"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			got, err := domain.ExtractIdentifier(domain.Facebook, tc.url)

			// Assert
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractIdentifier_SpecificPatternBeatsGenericFallback(t *testing.T) {
	// Arrange - "/2024" would satisfy the generic /(\d+) pattern first by position
	url := "https://facebook.com/2024/posts/123"

	// Act
	got, err := domain.ExtractIdentifier(domain.Facebook, url)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "123" {
		t.Errorf("got %q, want 123 (posts pattern must win)", got)
	}
}

func TestExtractIdentifier_Idempotent(t *testing.T) {
	url := "https://www.instagram.com/reel/Cxyz_-9/"
	first, _ := domain.ExtractIdentifier(domain.Instagram, url)
	for i := 0; i < 5; i++ {
		again, _ := domain.ExtractIdentifier(domain.Instagram, url)
		if again != first {
			t.Fatalf("run %d: got %q, want %q", i, again, first)
		}
	}
}

func TestExtractIdentifier_OtherPlatforms(t *testing.T) {
	testCases := []struct {
		name     string
		platform domain.Platform
		url      string
		want     string
	}{
		{name: "tweet", platform: domain.Twitter, url: "https://x.com/a/status/1790000000000000000?s=20", want: "1790000000000000000"},
		{name: "instagram post", platform: domain.Instagram, url: "https://instagram.com/p/CabcDEF", want: "CabcDEF"},
		{name: "instagram reels", platform: domain.Instagram, url: "https://instagram.com/reels/Rls1", want: "Rls1"},
		{name: "instagram tv", platform: domain.Instagram, url: "https://instagram.com/tv/Tv1", want: "Tv1"},
		{name: "tiktok video", platform: domain.TikTok, url: "https://www.tiktok.com/@u/video/7311", want: "7311"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.ExtractIdentifier(tc.platform, tc.url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewPostReference_MissingIdentifier(t *testing.T) {
	// Arrange
	tweetWithoutStatus := "https://twitter.com/jack"
	tiktokShortLink := "https://vm.tiktok.com/ZMabc/"

	// Act
	_, errTweet := domain.NewPostReference(tweetWithoutStatus)
	ref, errTikTok := domain.NewPostReference(tiktokShortLink)

	// Assert
	if !errors.Is(errTweet, domain.ErrIdentifierNotFound) {
		t.Errorf("tweet: expected ErrIdentifierNotFound, got %v", errTweet)
	}
	if errTikTok != nil {
		t.Errorf("tiktok short links need no identifier, got %v", errTikTok)
	}
	if ref.Identifier != "" {
		t.Errorf("tiktok identifier: got %q, want empty", ref.Identifier)
	}
}

func TestNormalizeURL_Instagram_DropsQueryAndSlash(t *testing.T) {
	got := domain.NormalizeURL(domain.Instagram, "  https://www.instagram.com/p/Cabc/?igsh=xyz ")
	if got != "https://www.instagram.com/p/Cabc" {
		t.Errorf("got %q", got)
	}
}
