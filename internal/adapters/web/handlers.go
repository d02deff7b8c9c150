package web

import (
	"errors"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"postmetrics/internal/adapters/sheet"
	"postmetrics/internal/domain"
	"postmetrics/internal/usecases"
	"postmetrics/pkg/log"
	"postmetrics/templates/pages"
)

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	fetch       *usecases.FetchMetricsUseCase
	batch       *usecases.RunBatchUseCase
	uploadLimit int64
}

// NewHandlers creates a new Handlers instance. uploadLimit is in bytes;
// zero disables the check.
func NewHandlers(fetch *usecases.FetchMetricsUseCase, batch *usecases.RunBatchUseCase, uploadLimit int64) *Handlers {
	return &Handlers{
		fetch:       fetch,
		batch:       batch,
		uploadLimit: uploadLimit,
	}
}

// MetricsResponse is the JSON body of POST /api/metrics.
type MetricsResponse struct {
	Platform   domain.Platform `json:"platform,omitempty"`
	Identifier string          `json:"identifier,omitempty"`
	Source     usecases.Source `json:"source,omitempty"`
	Metrics    *domain.Metrics `json:"metrics"`
}

type errorResponse struct {
	Error string           `json:"error"`
	Kind  domain.ErrorKind `json:"error_kind,omitempty"`
}

// render writes component with the status already set on c.
func render(c *fiber.Ctx, component templ.Component) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	status := templ.WithStatus(c.Response().StatusCode())
	return adaptor.HTTPHandler(templ.Handler(component, status))(c)
}

// Home renders the link and upload forms.
func (h *Handlers) Home(c *fiber.Ctx) error {
	return render(c, pages.Home())
}

// Analyze fetches the metrics of the submitted link.
func (h *Handlers) Analyze(c *fiber.Ctx) error {
	link, err := linkFromRequest(c)
	if err != nil {
		return h.renderError(c, err)
	}

	res := h.fetch.Execute(c.UserContext(), link)
	if res.Failed() {
		return h.renderError(c, res.Metrics.Failure)
	}
	return render(c, pages.Result(res.Reference, res.Metrics))
}

// Batch runs every row of the uploaded sheet and renders the table.
func (h *Handlers) Batch(c *fiber.Ctx) error {
	filename, inputs, err := uploadFromRequest(c, h.uploadLimit)
	if err != nil {
		log.GlobalWarnCtx(c.UserContext(), "upload rejected", "file", filename, "error", err)
		return h.renderError(c, err)
	}

	rows, failed := h.runBatch(c, filename, inputs)
	return render(c, pages.BatchResult(filename, rows, failed))
}

// APIMetrics is the JSON variant of Analyze. Fetch failures still answer
// with the error-only record so callers can read error_kind.
func (h *Handlers) APIMetrics(c *fiber.Ctx) error {
	link, err := linkFromRequest(c)
	if err != nil {
		return c.Status(statusFor(err)).JSON(errorResponse{Error: err.Error(), Kind: domain.KindOf(err)})
	}

	res := h.fetch.Execute(c.UserContext(), link)
	if res.Failed() {
		c.Status(statusFor(res.Metrics.Failure))
	}
	return c.JSON(MetricsResponse{
		Platform:   res.Reference.Platform,
		Identifier: res.Reference.Identifier,
		Source:     res.Source,
		Metrics:    res.Metrics,
	})
}

// APIBatch is the JSON variant of Batch.
func (h *Handlers) APIBatch(c *fiber.Ctx) error {
	filename, inputs, err := uploadFromRequest(c, h.uploadLimit)
	if err != nil {
		return c.Status(statusFor(err)).JSON(errorResponse{Error: err.Error()})
	}

	rows, _ := h.runBatch(c, filename, inputs)
	return c.JSON(rows)
}

func (h *Handlers) runBatch(c *fiber.Ctx, filename string, inputs []domain.BatchInput) ([]domain.BatchRow, int) {
	ctx := log.WithFields(c.UserContext(), "file", filename)
	log.GlobalInfoCtx(ctx, "batch started", "rows", len(inputs))

	rows := h.batch.Execute(ctx, inputs, nil)
	failed := 0
	for _, r := range rows {
		if r.Placeholder() {
			failed++
		}
	}
	return rows, failed
}

func (h *Handlers) renderError(c *fiber.Ctx, err error) error {
	c.Status(statusFor(err))
	return render(c, pages.Error(friendlyError(err)))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, fiber.ErrBadRequest),
		errors.Is(err, errNoFile),
		errors.Is(err, sheet.ErrUnsupportedFormat),
		errors.Is(err, sheet.ErrMissingColumns),
		errors.Is(err, sheet.ErrEmptySheet):
		return fiber.StatusBadRequest
	case errors.Is(err, errUploadTooLarge):
		return fiber.StatusRequestEntityTooLarge
	}

	switch domain.KindOf(err) {
	case domain.KindUnsupportedPlatform, domain.KindIdentifierNotFound:
		return fiber.StatusUnprocessableEntity
	case domain.KindAPIError, domain.KindScrapeFailure:
		return fiber.StatusBadGateway
	case domain.KindDependencyMissing:
		return fiber.StatusServiceUnavailable
	case domain.KindCanceled:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// friendlyError returns a neutral, non-blaming error message.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyLink):
		return "Paste a link to a post first."
	case errors.Is(err, errNoFile):
		return "Choose a CSV or XLSX file to upload."
	case errors.Is(err, errUploadTooLarge):
		return "That file is too large. Split it into smaller sheets and try again."
	case errors.Is(err, sheet.ErrUnsupportedFormat):
		return "Only .csv and .xlsx files are supported."
	case errors.Is(err, sheet.ErrMissingColumns):
		return "The sheet needs a NAME and a LINK column."
	case errors.Is(err, sheet.ErrEmptySheet):
		return "The sheet has no rows to analyze."
	case errors.Is(err, fiber.ErrBadRequest):
		return "The request could not be read. Please try again."
	}

	switch domain.KindOf(err) {
	case domain.KindUnsupportedPlatform:
		return "That link isn't from a supported platform. Try a Facebook, Twitter/X, Instagram or TikTok post."
	case domain.KindIdentifierNotFound:
		return "That link doesn't point to a single post. Copy the link of the post itself."
	case domain.KindAPIError:
		return "The platform didn't return metrics for this post. It might be private or deleted."
	case domain.KindScrapeFailure:
		return "This post couldn't be loaded. It might not be publicly available."
	case domain.KindDependencyMissing:
		return "Post analysis isn't available on this server right now."
	case domain.KindCanceled:
		return "This took too long. Please try again in a moment."
	default:
		return "Unable to analyze this post right now. Please try again in a moment."
	}
}
