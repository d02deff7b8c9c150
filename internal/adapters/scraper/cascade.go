package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"postmetrics/internal/domain"
	"postmetrics/pkg/log"
)

var (
	errNoMatch     = errors.New("nothing matched")
	errNoContainer = errors.New("container absent, using whole page")
)

// step is one extraction strategy. It may only fill counters that are
// still zero and reports why it found nothing.
type step struct {
	name string
	run  func(doc *goquery.Document, sel PlatformSelectors, m *domain.Metrics) error
}

var cascade = []step{
	{"structured-data", fromStructuredData},
	{"meta-description", fromMetaDescription},
	{"counter-nodes", fromCounterNodes},
	{"page-text", fromPageText},
	{"comment-nodes", fromCommentNodes},
}

// Extract folds the cascade over a DOM snapshot into m.
func Extract(ctx context.Context, html string, sel PlatformSelectors, m *domain.Metrics) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	for _, s := range cascade {
		if err := s.run(doc, sel, m); err != nil {
			log.GlobalDebugCtx(ctx, "extraction step found nothing", "step", s.name, "error", err)
		}
	}
	return nil
}

func fromStructuredData(doc *goquery.Document, sel PlatformSelectors, m *domain.Metrics) error {
	if sel.StructuredData == "" {
		return errNoMatch
	}

	found := false
	var parseErrs []error
	doc.Find(sel.StructuredData).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if !gjson.Valid(raw) {
			parseErrs = append(parseErrs, errors.New("invalid ld+json block"))
			return
		}

		root := gjson.Parse(raw)
		docs := []gjson.Result{root}
		if root.IsArray() {
			docs = root.Array()
		} else if graph := root.Get("@graph"); graph.IsArray() {
			docs = append(docs, graph.Array()...)
		}

		for _, d := range docs {
			for metric, n := range interactionCounts(d) {
				if m.SetIfZero(metric, n) {
					found = true
				}
			}
			if m.MediaType == "" {
				m.MediaType = mediaType(d)
			}
		}
	})

	if found {
		return nil
	}
	if len(parseErrs) > 0 {
		return errors.Join(parseErrs...)
	}
	return errNoMatch
}

func fromMetaDescription(doc *goquery.Document, sel PlatformSelectors, m *domain.Metrics) error {
	var texts []string
	for _, selector := range sel.Meta {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok && content != "" {
				texts = append(texts, content)
			}
		})
	}
	if len(texts) == 0 {
		return errors.New("no meta description")
	}
	return applyPatterns(strings.Join(texts, "\n"), sel, m)
}

func fromCounterNodes(doc *goquery.Document, sel PlatformSelectors, m *domain.Metrics) error {
	found := false
	for name, selector := range sel.Counters {
		node := doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}
		text := node.AttrOr("aria-label", "")
		n, ok := leadingCount(text)
		if !ok {
			n, ok = leadingCount(node.Text())
		}
		if ok && m.SetIfZero(domain.Metric(name), n) {
			found = true
		}
	}
	if !found {
		return errNoMatch
	}
	return nil
}

// leadingCount parses the first count-looking token of text, so both
// "1,234" and "1234 Likes. Like" work.
func leadingCount(text string) (int, bool) {
	for _, field := range strings.Fields(text) {
		if n, ok := ParseCount(field); ok {
			return n, true
		}
	}
	return 0, false
}

func fromPageText(doc *goquery.Document, sel PlatformSelectors, m *domain.Metrics) error {
	scope := doc.Selection
	var note error
	if sel.Container != "" {
		if c := doc.Find(sel.Container); c.Length() > 0 {
			scope = c
		} else {
			note = errNoContainer
		}
	}
	text := visibleText(scope)

	if err := applyPatterns(text, sel, m); err != nil {
		return errors.Join(note, err)
	}
	return nil
}

func fromCommentNodes(doc *goquery.Document, sel PlatformSelectors, m *domain.Metrics) error {
	for _, selector := range sel.Comments {
		var texts []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				texts = append(texts, t)
			}
		})
		if len(texts) == 0 {
			continue
		}

		// The count covers every matched node; only the texts are capped.
		m.AddComments(texts...)
		m.SetIfZero(domain.Comments, len(texts))
		return nil
	}
	return errNoMatch
}

// applyPatterns runs every metric pattern over text.
func applyPatterns(text string, sel PlatformSelectors, m *domain.Metrics) error {
	found := false
	for _, metric := range domain.AllMetrics {
		if cur, ok := m.Get(metric); !ok || cur != 0 {
			continue
		}
		if n, ok := findCount(sel.Pattern(metric), text); ok && m.SetIfZero(metric, n) {
			found = true
		}
	}
	if !found {
		return errNoMatch
	}
	return nil
}

// visibleText joins the text nodes under scope in document order with
// single spaces, so "<b>1,234</b><i>likes</i>" reads as "1,234 likes".
func visibleText(scope *goquery.Selection) string {
	var parts []string
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
			case "script", "style", "noscript", "template", "#comment":
			default:
				walk(c)
			}
		})
	}
	walk(scope)
	return strings.Join(parts, " ")
}
