package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"pagewatch/internal/config"
	"pagewatch/internal/observe"
)

// Options configures a Session. Zero values pick the defaults noted per field.
type Options struct {
	BaseURL  string        // prefix for Navigate paths
	Headless bool          // false opens a visible window
	Timeout  time.Duration // overall tab lifetime, default 2m
	Offline  bool          // start with network emulated offline
	Logger   *zerolog.Logger
}

const defaultTimeout = 2 * time.Minute

// Session is one headless Chrome tab with its event Source and the
// degraded-network Mode that tracks the tab's emulated network state.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	baseURL     string
	src         *Source
	mode        *observe.Switch
	log         zerolog.Logger
}

// NewSession launches the browser and attaches a Source to its first tab.
func NewSession(opts Options) (*Session, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 800),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			log.Debug().Msgf(format, args...)
		}),
	)
	ctx, cancel := context.WithTimeout(tabCtx, timeout)
	s := &Session{
		ctx: ctx,
		cancel: func() {
			cancel()
			tabCancel()
		},
		allocCancel: allocCancel,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		src:         NewSource(),
		mode:        observe.NewSwitch(false),
		log:         log,
	}
	s.src.Attach(ctx)
	// an empty Run starts the browser
	if err := chromedp.Run(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	if opts.Offline {
		if err := s.SetOffline(true); err != nil {
			s.Close()
			return nil, err
		}
	}
	log.Debug().Bool("headless", opts.Headless).Str("base_url", s.baseURL).Msg("browser session started")
	return s, nil
}

func (s *Session) Source() *Source       { return s.src }
func (s *Session) Mode() *observe.Switch { return s.mode }

// Context is the tab context for callers that need chromedp.Run directly.
func (s *Session) Context() context.Context { return s.ctx }

// Manager builds an observe.Manager over this tab using cfg's events, tracked
// categories and rules, with offline rules bound to the tab's network state.
func (s *Session) Manager(cfg config.Config, sink observe.Sink) (*observe.Manager, error) {
	oc, err := cfg.ObserveConfig(sink, s.mode)
	if err != nil {
		return nil, err
	}
	oc.Logger = &s.log
	return observe.NewWithConfig(s.src, oc)
}

// URL resolves path against the base URL; absolute URLs pass through.
func (s *Session) URL(path string) string {
	if strings.Contains(path, "://") || s.baseURL == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}

// Navigate loads path and waits for the body to be ready.
func (s *Session) Navigate(path string) error {
	url := s.URL(path)
	start := time.Now()
	err := chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("url", url).Dur("elapsed", time.Since(start)).Msg("navigation failed")
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	s.log.Debug().Str("url", url).Dur("elapsed", time.Since(start)).Msg("navigated")
	return nil
}

// WaitVisible waits up to timeout for selector to become visible.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait visible %s: %w", selector, err)
	}
	return nil
}

// Evaluate runs a JavaScript expression in the page, discarding its result.
func (s *Session) Evaluate(expr string) error {
	return chromedp.Run(s.ctx, chromedp.Evaluate(expr, nil))
}

// SetOffline switches the tab's network emulation and the Mode together, so
// offline-only suppression rules apply exactly while the tab is offline.
func (s *Session) SetOffline(offline bool) error {
	err := chromedp.Run(s.ctx,
		network.Enable(),
		network.EmulateNetworkConditions(offline, 0, -1, -1),
	)
	if err != nil {
		return fmt.Errorf("emulate offline=%v: %w", offline, err)
	}
	s.mode.Set(offline)
	s.log.Debug().Bool("offline", offline).Msg("network emulation changed")
	return nil
}

// Close shuts the tab and the browser process.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}
