package scraper

import (
	"context"
	"testing"

	"postmetrics/internal/domain"
	"postmetrics/test/fixtures"
)

func extractFor(t *testing.T, p domain.Platform, html string) *domain.Metrics {
	t.Helper()
	sel, ok := DefaultSelectors().For(p)
	if !ok {
		t.Fatalf("no selectors for %s", p)
	}
	m := domain.NewMetrics(p)
	if err := Extract(context.Background(), html, sel, m); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return m
}

func assertCount(t *testing.T, m *domain.Metrics, metric domain.Metric, want int) {
	t.Helper()
	got, ok := m.Get(metric)
	if !ok {
		t.Errorf("%s not applicable", metric)
		return
	}
	if got != want {
		t.Errorf("%s = %d, want %d", metric, got, want)
	}
}

func TestExtract_MetaDescriptionScenario(t *testing.T) {
	// Arrange
	html := `<html><head><meta property="og:description" content="1,234 likes and 56 comments"></head><body></body></html>`

	// Act
	m := extractFor(t, domain.Instagram, html)

	// Assert
	assertCount(t, m, domain.Likes, 1234)
	assertCount(t, m, domain.Comments, 56)
}

func TestExtract_Instagram(t *testing.T) {
	t.Run("structured data with string counts", func(t *testing.T) {
		m := extractFor(t, domain.Instagram, fixtures.InstagramStructuredData())

		assertCount(t, m, domain.Likes, 4521)
		assertCount(t, m, domain.Comments, 87)
		if m.MediaType != "video" {
			t.Errorf("MediaType = %q, want video", m.MediaType)
		}
	})

	t.Run("meta description only", func(t *testing.T) {
		m := extractFor(t, domain.Instagram, fixtures.InstagramMetaDescription())

		assertCount(t, m, domain.Likes, 1234)
		assertCount(t, m, domain.Comments, 56)
	})

	t.Run("broken structured data falls through to container text", func(t *testing.T) {
		m := extractFor(t, domain.Instagram, fixtures.InstagramBrokenStructuredData())

		assertCount(t, m, domain.Likes, 12300)
		assertCount(t, m, domain.Comments, 340)
	})

	t.Run("comment count covers every node while texts are capped", func(t *testing.T) {
		m := extractFor(t, domain.Instagram, fixtures.InstagramComments(35))

		if len(m.CommentTexts) != domain.MaxCommentTexts {
			t.Fatalf("CommentTexts = %d, want %d", len(m.CommentTexts), domain.MaxCommentTexts)
		}
		if m.CommentTexts[0] != "great shot 1" {
			t.Errorf("CommentTexts[0] = %q, want trimmed text", m.CommentTexts[0])
		}
		assertCount(t, m, domain.Comments, 35)
		assertCount(t, m, domain.Likes, 0)
	})
}

func TestExtract_StructuredDataBeatsMeta(t *testing.T) {
	// Arrange
	html := `<html><head>
<script type="application/ld+json">{"interactionStatistic": {"interactionType": "LikeAction", "userInteractionCount": 10}}</script>
<meta property="og:description" content="99 likes, 3 comments">
</head><body></body></html>`

	// Act
	m := extractFor(t, domain.Instagram, html)

	// Assert
	assertCount(t, m, domain.Likes, 10)
	assertCount(t, m, domain.Comments, 3)
}

func TestExtract_Twitter_CounterNodes(t *testing.T) {
	m := extractFor(t, domain.Twitter, fixtures.TwitterCounters())

	assertCount(t, m, domain.Likes, 10240)
	assertCount(t, m, domain.Replies, 1024)
	assertCount(t, m, domain.Retweets, 2500)
	assertCount(t, m, domain.Quotes, 77)
	if _, ok := m.Get(domain.Comments); ok {
		t.Errorf("comments should not apply to twitter")
	}
}

func TestExtract_TikTok(t *testing.T) {
	m := extractFor(t, domain.TikTok, fixtures.TikTokVideo())

	assertCount(t, m, domain.Likes, 12300)
	assertCount(t, m, domain.Comments, 456)
	want := []string{"so good", "again!"}
	if len(m.CommentTexts) != len(want) {
		t.Fatalf("CommentTexts = %v, want %v", m.CommentTexts, want)
	}
	for i := range want {
		if m.CommentTexts[i] != want[i] {
			t.Errorf("CommentTexts[%d] = %q, want %q", i, m.CommentTexts[i], want[i])
		}
	}
}

func TestExtract_Facebook_ReactionsAreLikes(t *testing.T) {
	m := extractFor(t, domain.Facebook, fixtures.FacebookPost())

	assertCount(t, m, domain.Likes, 2301)
	assertCount(t, m, domain.Comments, 145)
	assertCount(t, m, domain.Shares, 12)
	if len(m.CommentTexts) != 1 || m.CommentTexts[0] != "first!" {
		t.Errorf("CommentTexts = %v", m.CommentTexts)
	}
}

func TestExtract_NothingFoundLeavesZeros(t *testing.T) {
	m := extractFor(t, domain.TikTok, fixtures.Empty())

	if m.Failed() {
		t.Fatalf("a soft miss must not fail the record: %s", m.Error)
	}
	assertCount(t, m, domain.Likes, 0)
	assertCount(t, m, domain.Comments, 0)
	if len(m.CommentTexts) != 0 {
		t.Errorf("CommentTexts = %v, want empty", m.CommentTexts)
	}
}
