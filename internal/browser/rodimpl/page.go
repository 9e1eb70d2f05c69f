package rodimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/internal/domain"
)

type page struct {
	page    *rod.Page
	context *rod.Browser
}

func (p *page) SetCookies(ctx context.Context, cookies []domain.Cookie) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	return p.page.Context(ctx).SetCookies(params)
}

func (p *page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pg := p.page.Context(navCtx)

	// The idle listener must exist before navigation starts.
	waitIdle := pg.WaitRequestIdle(requestIdle, nil, nil, nil)
	if err := pg.Navigate(url); err != nil {
		return err
	}
	waitIdle()

	if err := navCtx.Err(); err != nil {
		return fmt.Errorf("network did not go idle: %w", err)
	}
	return nil
}

func (p *page) SetViewport(ctx context.Context, width, height int) error {
	return p.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}

func (p *page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	_, err := p.page.Context(ctx).Timeout(timeout).Element(selector)
	return err
}

func (p *page) Elements(ctx context.Context, selector string) ([]browser.Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}

	out := make([]browser.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el})
	}
	return out, nil
}

func (p *page) Element(ctx context.Context, selector string) (browser.Element, error) {
	has, el, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, browser.ErrElementNotFound
	}
	return &element{el: el}, nil
}

func (p *page) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// WaitStable treats a spent budget as settled; only a failure to snapshot
// the DOM is reported.
func (p *page) WaitStable(ctx context.Context, budget time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	err := p.page.Context(waitCtx).WaitDOMStable(domStableWindow, domStableDiff)
	if err != nil && ctx.Err() == nil && waitCtx.Err() != nil {
		return nil
	}
	return err
}

func (p *page) Screenshot(ctx context.Context, clip *browser.Rect) ([]byte, error) {
	req := &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	}
	if clip != nil {
		req.Clip = &proto.PageViewport{
			X:      clip.X,
			Y:      clip.Y,
			Width:  clip.Width,
			Height: clip.Height,
			Scale:  1,
		}
	}
	return p.page.Context(ctx).Screenshot(false, req)
}

func (p *page) Close() error {
	return errors.Join(p.page.Close(), p.context.Close())
}

type element struct {
	el *rod.Element
}

func (e *element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

// Click dispatches through the DOM so overlays cannot swallow it.
func (e *element) Click(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(`() => this.click()`)
	return err
}

func (e *element) BoundingBox(ctx context.Context) (*browser.Rect, error) {
	shape, err := e.el.Context(ctx).Shape()
	if err != nil {
		return nil, err
	}
	box := shape.Box()
	if box == nil {
		return nil, nil
	}
	return &browser.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

var (
	_ browser.Page    = (*page)(nil)
	_ browser.Element = (*element)(nil)
)
