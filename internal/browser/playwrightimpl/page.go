package playwrightimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/internal/settle"
	"github.com/playwright-community/playwright-go"
)

const nodeCountJS = `() => document.getElementsByTagName('*').length`

type page struct {
	page    playwright.Page
	context playwright.BrowserContext
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *page) SetCookies(ctx context.Context, cookies []domain.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, playwright.OptionalCookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: playwright.String(c.Domain),
			Path:   playwright.String(c.Path),
		})
	}
	return p.context.AddCookies(params)
}

func (p *page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   millis(timeout),
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	return err
}

func (p *page) SetViewport(ctx context.Context, width, height int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.SetViewportSize(width, height)
}

func (p *page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: millis(timeout),
	})
	return err
}

func (p *page) Elements(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}

	out := make([]browser.Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, &element{handle: h})
	}
	return out, nil
}

func (p *page) Element(ctx context.Context, selector string) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h, err := p.page.QuerySelector(selector)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, browser.ErrElementNotFound
	}
	return &element{handle: h}, nil
}

func (p *page) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

func (p *page) URL() string {
	return p.page.URL()
}

// WaitStable polls the DOM node count; playwright has no native
// DOM-stability wait.
func (p *page) WaitStable(ctx context.Context, budget time.Duration) error {
	res := settle.Poll(ctx, p.nodeCount, settle.DefaultConfig(settle.ModePoll).WithBudget(budget))
	return res.WaitErr
}

func (p *page) nodeCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	v, err := p.page.Evaluate(nodeCountJS)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected node count type %T", v)
	}
}

func (p *page) Screenshot(ctx context.Context, clip *browser.Rect) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	}
	if clip != nil {
		opts.Clip = &playwright.Rect{
			X:      clip.X,
			Y:      clip.Y,
			Width:  clip.Width,
			Height: clip.Height,
		}
	}
	return p.page.Screenshot(opts)
}

func (p *page) Close() error {
	return errors.Join(p.page.Close(), p.context.Close())
}

type element struct {
	handle playwright.ElementHandle
}

func (e *element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.handle.InnerText()
}

// Click dispatches through the DOM so overlays cannot swallow it.
func (e *element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.handle.Evaluate(`(el) => el.click()`)
	return err
}

func (e *element) BoundingBox(ctx context.Context) (*browser.Rect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	box, err := e.handle.BoundingBox()
	if err != nil || box == nil {
		return nil, err
	}
	return &browser.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

var (
	_ browser.Page    = (*page)(nil)
	_ browser.Element = (*element)(nil)
)
