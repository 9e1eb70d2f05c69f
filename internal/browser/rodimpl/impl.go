package rodimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/orgball2608/insta-story-capture/internal/browser"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"go.uber.org/fx"
)

const requestIdle = 500 * time.Millisecond

// The DOM counts as settled once it changes by less than domStableDiff
// over domStableWindow.
const (
	domStableWindow = 300 * time.Millisecond
	domStableDiff   = 0.1
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// Driver launches a local Chromium through rod and hands out one
// incognito context per page.
type Driver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	stealth  bool
	logger   logger.Logger
}

func New(opts Opts) (*Driver, error) {
	cfg := opts.Config.Browser
	log := opts.Logger.WithComponent("rod")

	proxy, err := browser.ParseProxy(opts.Config.Input.ProxyURL)
	if err != nil {
		return nil, err
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Proxy(proxy.Server)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("could not connect to browser: %w", err)
	}
	log.Info("Browser launched", "control_url", controlURL, "proxy", proxy.Server)

	if proxy.HasCredentials() {
		go answerProxyAuth(b, proxy, log)
	}

	return &Driver{
		launcher: l,
		browser:  b,
		stealth:  cfg.Stealth,
		logger:   log,
	}, nil
}

// answerProxyAuth serves auth challenges until the browser goes away.
func answerProxyAuth(b *rod.Browser, proxy browser.Proxy, log logger.Logger) {
	for {
		wait := b.HandleAuth(proxy.Username, proxy.Password)
		if err := wait(); err != nil {
			log.Debug("Proxy auth handler stopped", "error", err)
			return
		}
	}
}

func (d *Driver) Name() string {
	return "rod"
}

func (d *Driver) NewPage(ctx context.Context) (browser.Page, error) {
	incognito, err := d.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	p, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("could not create new page: %w", err)
	}

	if d.stealth {
		if _, err := p.EvalOnNewDocument(stealth.JS); err != nil {
			d.logger.Warn("Stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	return &page{page: p, context: incognito}, nil
}

func (d *Driver) Close() error {
	err := d.browser.Close()
	d.launcher.Kill()
	return err
}

var _ browser.Driver = (*Driver)(nil)
