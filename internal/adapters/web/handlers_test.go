package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"postmetrics/internal/domain"
	"postmetrics/internal/usecases"
)

type fakeFetcher struct {
	fn func(ref domain.PostReference) (*domain.Metrics, error)
}

func (f fakeFetcher) Fetch(_ context.Context, ref domain.PostReference) (*domain.Metrics, error) {
	return f.fn(ref)
}

func twitterLikes(n int) fakeFetcher {
	return fakeFetcher{fn: func(ref domain.PostReference) (*domain.Metrics, error) {
		m := domain.NewMetrics(ref.Platform)
		m.Set(domain.Likes, n)
		return m, nil
	}}
}

func newTestApp(f usecases.MetricsFetcher, uploadLimit int64) *fiber.App {
	registry := usecases.NewRegistry()
	for _, p := range domain.Platforms() {
		registry.WithScraper(p, f)
	}
	fetch := usecases.NewFetchMetricsUseCase(registry)
	handlers := NewHandlers(fetch, usecases.NewRunBatchUseCase(fetch), uploadLimit)

	app := fiber.New()
	SetupRoutes(app, handlers, "../../../static")
	return app
}

func multipartRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(part, content)
	w.Close()

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestHome_RendersForms(t *testing.T) {
	// Arrange
	app := newTestApp(twitterLikes(1), 0)

	// Act
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))

	// Assert
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{`action="/analyze"`, `action="/batch"`, `name="file"`} {
		if !strings.Contains(body, want) {
			t.Errorf("home page should contain %s", want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name       string
		link       string
		wantStatus int
		wantBody   string
		notWant    string
	}{
		{
			name:       "renders metrics",
			link:       "https://x.com/nasa/status/1234567890",
			wantStatus: fiber.StatusOK,
			wantBody:   "4321",
		},
		{
			name:       "unsupported platform",
			link:       "https://example.com/not-a-social-post",
			wantStatus: fiber.StatusUnprocessableEntity,
			wantBody:   "supported platform",
		},
		{
			name:       "empty link",
			link:       "   ",
			wantStatus: fiber.StatusUnprocessableEntity,
			wantBody:   "Paste a link",
		},
		{
			name:       "script link is not rendered as a live href",
			link:       "javascript:alert(document.cookie)//x.com/status/1",
			wantStatus: fiber.StatusOK,
			wantBody:   `href="about:invalid#TemplFailedSanitizationURL"`,
			notWant:    `href="javascript:`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			app := newTestApp(twitterLikes(4321), 0)
			form := url.Values{"link": {tt.link}}
			req := httptest.NewRequest("POST", "/analyze", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", fiber.MIMEApplicationForm)

			// Act
			resp, err := app.Test(req)

			// Assert
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body should contain %q, got: %s", tt.wantBody, body)
			}
			if tt.notWant != "" && strings.Contains(body, tt.notWant) {
				t.Errorf("body should not contain %q, got: %s", tt.notWant, body)
			}
		})
	}
}

func TestAPIMetrics(t *testing.T) {
	tests := []struct {
		name       string
		fetcher    fakeFetcher
		body       string
		wantStatus int
		wantKind   domain.ErrorKind
		wantLikes  int
	}{
		{
			name:       "success",
			fetcher:    twitterLikes(7),
			body:       `{"url":"https://twitter.com/nasa/status/99"}`,
			wantStatus: fiber.StatusOK,
			wantLikes:  7,
		},
		{
			name: "scrape failure keeps the error-only record",
			fetcher: fakeFetcher{fn: func(ref domain.PostReference) (*domain.Metrics, error) {
				return nil, &domain.ScrapeError{URL: ref.NormalizedURL, Err: context.DeadlineExceeded}
			}},
			body:       `{"url":"https://www.instagram.com/p/Cabc123/"}`,
			wantStatus: fiber.StatusBadGateway,
			wantKind:   domain.KindScrapeFailure,
		},
		{
			name: "api error",
			fetcher: fakeFetcher{fn: func(ref domain.PostReference) (*domain.Metrics, error) {
				return nil, &domain.APIError{Platform: ref.Platform, Status: 401, Body: `{"error":"bad token"}`}
			}},
			body:       `{"url":"https://www.facebook.com/page/posts/123"}`,
			wantStatus: fiber.StatusBadGateway,
			wantKind:   domain.KindAPIError,
		},
		{
			name:       "identifier missing",
			fetcher:    twitterLikes(1),
			body:       `{"url":"https://x.com/nasa"}`,
			wantStatus: fiber.StatusUnprocessableEntity,
			wantKind:   domain.KindIdentifierNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			app := newTestApp(tt.fetcher, 0)
			req := httptest.NewRequest("POST", "/api/metrics", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

			// Act
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			var got struct {
				Platform   string `json:"platform"`
				Identifier string `json:"identifier"`
				Metrics    struct {
					Likes *int             `json:"likes"`
					Error string           `json:"error"`
					Kind  domain.ErrorKind `json:"error_kind"`
				} `json:"metrics"`
			}
			if err := json.Unmarshal([]byte(readBody(t, resp)), &got); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			// Assert
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if got.Metrics.Kind != tt.wantKind {
				t.Errorf("error_kind = %q, want %q", got.Metrics.Kind, tt.wantKind)
			}
			if tt.wantKind != "" {
				if got.Metrics.Likes != nil {
					t.Error("failed record should carry no counters")
				}
				if got.Metrics.Error == "" {
					t.Error("failed record should carry an error message")
				}
				return
			}
			if got.Metrics.Likes == nil || *got.Metrics.Likes != tt.wantLikes {
				t.Errorf("likes = %v, want %d", got.Metrics.Likes, tt.wantLikes)
			}
			if got.Platform != "twitter" || got.Identifier != "99" {
				t.Errorf("platform/identifier = %s/%s, want twitter/99", got.Platform, got.Identifier)
			}
		})
	}
}

func TestAPIBatch_PlaceholderRows(t *testing.T) {
	// Arrange
	app := newTestApp(twitterLikes(3), 0)
	csv := "NAME,LINK\n" +
		"ok,https://x.com/a/status/1\n" +
		"bad,https://example.com/not-a-social-post\n"

	// Act
	resp, err := app.Test(multipartRequest(t, "/api/batch", "links.csv", csv))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(readBody(t, resp)), &rows); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	// Assert
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["name"] != "ok" || rows[0]["likes"] != float64(3) {
		t.Errorf("row 0 = %v, want name ok and likes 3", rows[0])
	}
	for _, metric := range domain.AllMetrics {
		if rows[1][string(metric)] != domain.NotAvailable {
			t.Errorf("row 1 %s = %v, want %s", metric, rows[1][string(metric)], domain.NotAvailable)
		}
	}
}

func TestBatch_RendersTable(t *testing.T) {
	// Arrange
	app := newTestApp(twitterLikes(3), 0)
	csv := "NAME,LINK\nok,https://x.com/a/status/1\nbad,https://example.com/x\n"

	// Act
	resp, err := app.Test(multipartRequest(t, "/batch", "links.csv", csv))

	// Assert
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{"links.csv: 2 rows, 1 failed", `class="failed"`, domain.NotAvailable} {
		if !strings.Contains(body, want) {
			t.Errorf("body should contain %q", want)
		}
	}
}

func TestBatch_UploadErrors(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    string
		limit      int64
		wantStatus int
		wantBody   string
	}{
		{
			name:       "unsupported format",
			filename:   "links.txt",
			content:    "NAME,LINK\n",
			wantStatus: fiber.StatusBadRequest,
			wantBody:   "Only .csv and .xlsx",
		},
		{
			name:       "missing columns",
			filename:   "links.csv",
			content:    "TITLE,URL\na,b\n",
			wantStatus: fiber.StatusBadRequest,
			wantBody:   "NAME and a LINK column",
		},
		{
			name:       "too large",
			filename:   "links.csv",
			content:    "NAME,LINK\nok,https://x.com/a/status/1\n",
			limit:      8,
			wantStatus: fiber.StatusRequestEntityTooLarge,
			wantBody:   "too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			app := newTestApp(twitterLikes(1), tt.limit)

			// Act
			resp, err := app.Test(multipartRequest(t, "/batch", tt.filename, tt.content))

			// Assert
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body should contain %q, got: %s", tt.wantBody, body)
			}
		})
	}
}

func TestBatch_NoFile(t *testing.T) {
	// Arrange
	app := newTestApp(twitterLikes(1), 0)

	// Act
	resp, err := app.Test(httptest.NewRequest("POST", "/api/batch", nil))

	// Assert
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, errNoFile.Error()) {
		t.Errorf("body should name the missing file, got: %s", body)
	}
}
