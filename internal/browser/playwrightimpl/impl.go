package playwrightimpl

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/fx"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// Driver runs Chromium through playwright; each page gets its own
// browser context so cookies never leak between requests.
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	logger  logger.Logger
}

func New(opts Opts) (*Driver, error) {
	log := opts.Logger.WithComponent("playwright")
	log.Info("Initializing Playwright...")

	proxy, err := browser.ParseProxy(opts.Config.Input.ProxyURL)
	if err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	launchProxy := &playwright.Proxy{Server: proxy.Server}
	if proxy.HasCredentials() {
		launchProxy.Username = playwright.String(proxy.Username)
		launchProxy.Password = playwright.String(proxy.Password)
	}

	args := []string{
		"--disable-dev-shm-usage",
		"--no-first-run",
		"--disable-gpu",
	}
	if opts.Config.Browser.NoSandbox {
		args = append(args, "--no-sandbox", "--disable-setuid-sandbox")
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Config.Browser.Headless),
		Args:     args,
		Proxy:    launchProxy,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	log.Info("Playwright initialized successfully.", "proxy", proxy.Server)
	return &Driver{
		pw:      pw,
		browser: b,
		logger:  log,
	}, nil
}

func (d *Driver) Name() string {
	return "playwright"
}

func (d *Driver) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	brContext, err := d.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	p, err := brContext.NewPage()
	if err != nil {
		_ = brContext.Close()
		return nil, fmt.Errorf("could not create new page: %w", err)
	}

	return &page{page: p, context: brContext}, nil
}

func (d *Driver) Close() error {
	if err := d.browser.Close(); err != nil {
		d.logger.Error("Failed to close playwright browser", "error", err)
	}
	if err := d.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	debug.FreeOSMemory()
	return nil
}

var _ browser.Driver = (*Driver)(nil)
