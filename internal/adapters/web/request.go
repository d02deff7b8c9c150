package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"postmetrics/internal/adapters/sheet"
	"postmetrics/internal/domain"
)

var (
	errNoFile         = errors.New("no file uploaded")
	errUploadTooLarge = errors.New("uploaded file is too large")
)

type linkRequest struct {
	URL  string `json:"url" form:"url"`
	Link string `json:"link" form:"link"`
}

// linkFromRequest reads the post link from a JSON body, a form field
// ("link" or "url") or the "url" query parameter.
func linkFromRequest(c *fiber.Ctx) (string, error) {
	var req linkRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return "", fmt.Errorf("%w: %v", fiber.ErrBadRequest, err)
		}
	}

	link := req.Link
	if link == "" {
		link = req.URL
	}
	if link == "" {
		link = c.Query("url")
	}

	link = strings.TrimSpace(link)
	if link == "" {
		return "", domain.ErrEmptyLink
	}
	return link, nil
}

// uploadFromRequest reads the multipart "file" field into batch inputs.
func uploadFromRequest(c *fiber.Ctx, limit int64) (string, []domain.BatchInput, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	if limit > 0 && fh.Size > limit {
		return fh.Filename, nil, errUploadTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return fh.Filename, nil, err
	}
	defer f.Close()

	inputs, err := sheet.Read(fh.Filename, f)
	return fh.Filename, inputs, err
}
