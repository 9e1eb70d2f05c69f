package browser

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/insta-story-capture/internal/domain"
)

var ErrElementNotFound = errors.New("element not found")

// Rect is a region of the viewport in CSS pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r *Rect) Empty() bool {
	return r == nil || r.Width <= 0 || r.Height <= 0
}

//go:generate go run go.uber.org/mock/mockgen -source=browser.go -destination=mocks/mock.go

// Driver opens isolated pages on a running browser.
type Driver interface {
	Name() string
	NewPage(ctx context.Context) (Page, error)
}

// Page is the narrow set of page capabilities the story pipeline needs.
type Page interface {
	SetCookies(ctx context.Context, cookies []domain.Cookie) error
	// Navigate loads url and returns once the network has gone idle.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	SetViewport(ctx context.Context, width, height int) error
	// WaitForSelector blocks until selector matches at least one element.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	Elements(ctx context.Context, selector string) ([]Element, error)
	// Element returns ErrElementNotFound when nothing matches.
	Element(ctx context.Context, selector string) (Element, error)
	HTML(ctx context.Context) (string, error)
	URL() string
	// WaitStable blocks until the DOM stops changing or budget is spent and
	// returns nil in both cases.
	WaitStable(ctx context.Context, budget time.Duration) error
	// Screenshot captures a PNG of clip, or of the viewport when clip is nil.
	Screenshot(ctx context.Context, clip *Rect) ([]byte, error)
	Close() error
}

type Element interface {
	Text(ctx context.Context) (string, error)
	Click(ctx context.Context) error
	// BoundingBox returns nil when the element has no box.
	BoundingBox(ctx context.Context) (*Rect, error)
}
