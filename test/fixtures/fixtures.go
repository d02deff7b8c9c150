// Package fixtures provides rendered post pages for scraper tests.
package fixtures

import (
	"fmt"
	"strings"
)

// InstagramStructuredData is a reel whose counts only live in ld+json.
// Counts are strings and the statistic is a list.
func InstagramStructuredData() string {
	return `<!DOCTYPE html>
<html>
<head>
<title>Instagram</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "VideoObject",
  "name": "reel",
  "interactionStatistic": [
    {"@type": "InteractionCounter", "interactionType": {"@type": "https://schema.org/LikeAction"}, "userInteractionCount": "4,521"},
    {"@type": "InteractionCounter", "interactionType": "https://schema.org/CommentAction", "userInteractionCount": 87}
  ]
}
</script>
</head>
<body><main><article><p>a reel</p></article></main></body>
</html>`
}

// InstagramMetaDescription has counts only in og:description.
func InstagramMetaDescription() string {
	return `<!DOCTYPE html>
<html>
<head>
<meta property="og:description" content="1,234 likes, 56 comments - someone on March 3, 2026: &quot;sunset&quot;">
</head>
<body><article><div>photo</div></article></body>
</html>`
}

// InstagramComments has no counts at all, only n comment nodes.
func InstagramComments(n int) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head></head><body><article><ul>")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<div class="C4VMK"><span>  great shot %d  </span></div>`, i)
	}
	b.WriteString(`<div class="C4VMK"><span>   </span></div>`)
	b.WriteString("</ul></article></body></html>")
	return b.String()
}

// InstagramBrokenStructuredData carries an unparsable ld+json block and
// counts split across elements in the article text.
func InstagramBrokenStructuredData() string {
	return `<!DOCTYPE html>
<html>
<head><script type="application/ld+json">{"interactionStatistic": [</script></head>
<body>
<nav>9 likes in the nav</nav>
<article>
  <section><span>12.3K</span><span>likes</span></section>
  <section><b>340</b> comments</section>
</article>
</body>
</html>`
}

// TwitterCounters renders the engagement bar of a tweet.
func TwitterCounters() string {
	return `<!DOCTYPE html>
<html>
<head><title>X</title></head>
<body>
<article data-testid="tweet">
  <div data-testid="tweetText">hello world</div>
  <div role="group">
    <button data-testid="reply" aria-label="1,024 Replies. Reply"><span>1K</span></button>
    <button data-testid="retweet"><span>2.5K</span></button>
    <button data-testid="like" aria-label="10,240 Likes. Like"><span>10K</span></button>
  </div>
  <a href="/someone/status/1/quotes"><span>77</span> Quotes</a>
</article>
</body>
</html>`
}

// TikTokVideo is a TikTok page with og:description counts and comments.
func TikTokVideo() string {
	return `<!DOCTYPE html>
<html>
<head>
<meta property="og:description" content="12.3K Likes, 456 Comments. TikTok video from someone: dance">
</head>
<body>
<main>
  <div class="comment-item"><p>so good</p></div>
  <div class="comment-item"><p>again!</p></div>
  <div class="comment-item"><p> </p></div>
</main>
</body>
</html>`
}

// FacebookPost is a public Facebook post seen without a login.
func FacebookPost() string {
	return `<!DOCTYPE html>
<html>
<head>
<meta name="description" content="Page. 2,301 reactions · 145 comments · 12 shares">
</head>
<body><div role="main"><div role="article"><div dir="auto">first!</div></div></div></body>
</html>`
}

// Empty is a page with nothing to extract.
func Empty() string {
	return `<!DOCTYPE html><html><head><title>Login</title></head><body><p>Log in to continue</p></body></html>`
}
