package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned when a link matches no known platform.
	ErrUnsupportedPlatform = errors.New("unsupported platform: only Twitter, Facebook, Instagram and TikTok links are accepted")

	// ErrIdentifierNotFound is returned when no identifier pattern matches the link.
	ErrIdentifierNotFound = errors.New("could not extract a post identifier from the link")

	// ErrAPI is matched by every APIError.
	ErrAPI = errors.New("platform api request failed")

	// ErrScrapeFailure is matched by every ScrapeError.
	ErrScrapeFailure = errors.New("failed to scrape post")

	// ErrDependencyMissing is returned when no headless browser can be started.
	ErrDependencyMissing = errors.New("browser automation is not available in this environment")

	// ErrEmptyLink is returned for blank input.
	ErrEmptyLink = errors.New("link is empty")
)

// ErrorKind names the class of a fetch failure.
type ErrorKind string

const (
	KindUnsupportedPlatform ErrorKind = "UnsupportedPlatform"
	KindIdentifierNotFound  ErrorKind = "IdentifierNotFound"
	KindAPIError            ErrorKind = "ApiError"
	KindScrapeFailure       ErrorKind = "ScrapeFailure"
	KindDependencyMissing   ErrorKind = "DependencyMissing"
	KindCanceled            ErrorKind = "Canceled"
	KindUnknown             ErrorKind = "Unknown"
)

// KindOf classifies an error returned anywhere below the fetch boundary.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedPlatform), errors.Is(err, ErrEmptyLink):
		return KindUnsupportedPlatform
	case errors.Is(err, ErrIdentifierNotFound):
		return KindIdentifierNotFound
	case errors.Is(err, ErrDependencyMissing):
		return KindDependencyMissing
	case errors.Is(err, ErrAPI):
		return KindAPIError
	case errors.Is(err, ErrScrapeFailure):
		return KindScrapeFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// APIError is a failed call to an official metrics endpoint. For a non-200
// answer its message is the raw response body. A request that never got an
// answer has Status 0 and carries the transport error in Err.
type APIError struct {
	Platform Platform
	Status   int
	Body     string
	Err      error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s api: %v", e.Platform, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s api returned status %d", e.Platform, e.Status)
	}
	return e.Body
}

// Is makes errors.Is(err, ErrAPI) true for any APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

func (e *APIError) Unwrap() error { return e.Err }

// ScrapeError wraps any failure raised while driving the browser.
// Its message is the underlying error text.
type ScrapeError struct {
	URL string
	Err error
}

func (e *ScrapeError) Error() string {
	if e.Err == nil {
		return ErrScrapeFailure.Error()
	}
	return e.Err.Error()
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrScrapeFailure) true for any ScrapeError.
func (e *ScrapeError) Is(target error) bool {
	return target == ErrScrapeFailure
}
