package scraper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"postmetrics/internal/domain"
)

// WaitCondition tells a renderer when navigation is considered done.
type WaitCondition string

const (
	// WaitNetworkIdle waits for the load event and then for the network
	// to go quiet. Slower, but lazy counters have a chance to arrive.
	WaitNetworkIdle WaitCondition = "networkidle"
	// WaitDOMContentLoaded returns as soon as the document is parsed.
	WaitDOMContentLoaded WaitCondition = "domcontentloaded"
)

// networkQuiet is how long the network must stay idle for WaitNetworkIdle.
const networkQuiet = 500 * time.Millisecond

// RenderRequest describes one page load.
type RenderRequest struct {
	URL       string
	Wait      WaitCondition
	Timeout   time.Duration
	UserAgent string

	// Container is waited for up to ContainerTimeout. Not finding it is
	// not an error: the snapshot is taken with whatever has loaded.
	Container        string
	ContainerTimeout time.Duration
}

// Renderer loads a page in a headless browser and returns a snapshot of
// its DOM as HTML. Implementations own the browser for the duration of
// one call and release it on every exit path.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
	Close() error
}

// browserMissing maps launch errors that mean "no browser installed" to
// domain.ErrDependencyMissing.
func browserMissing(err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", domain.ErrDependencyMissing, err)
	}
	return err
}
