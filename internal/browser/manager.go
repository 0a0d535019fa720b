package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/gamepilot/internal/config"
)

// startupProbeTimeout bounds the about:blank navigation used to confirm the
// browser came up.
const startupProbeTimeout = 30 * time.Second

// Manager owns the browser process. Each game run gets its own tab from
// NewSession; closing the manager terminates the process and every tab.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocCtx    context.Context
	allocCancel context.CancelFunc

	// browserCtx is the first chromedp context; it holds the browser itself.
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewManager launches the browser and checks that it responds.
func NewManager(ctx context.Context, logger *zap.Logger, cfg config.BrowserConfig) (*Manager, error) {
	m := &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
	}
	if err := m.launch(ctx); err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return m, nil
}

func (m *Manager) launch(ctx context.Context) error {
	m.logger.Info("Initializing browser allocator...", zap.Bool("headless", m.cfg.Headless))

	// The process lives until Close, so a cancelled ctx still lets callers
	// release input on their way out.
	m.allocCtx, m.allocCancel = chromedp.NewExecAllocator(context.WithoutCancel(ctx), m.allocatorOptions()...)
	m.browserCtx, m.browserCancel = chromedp.NewContext(m.allocCtx,
		chromedp.WithLogf(m.logger.Sugar().Debugf),
		chromedp.WithErrorf(m.logger.Sugar().Errorf),
	)

	// The first Run allocates the process. It must not carry a deadline, or the
	// browser is killed when the deadline fires.
	if err := chromedp.Run(m.browserCtx); err != nil {
		m.Close()
		return err
	}

	probeCtx, cancelProbe := context.WithTimeout(ctx, startupProbeTimeout)
	defer cancelProbe()
	runCtx, cancelRun := combineContext(m.browserCtx, probeCtx)
	defer cancelRun()
	if err := chromedp.Run(runCtx, chromedp.Navigate("about:blank")); err != nil {
		m.Close()
		return fmt.Errorf("browser failed to respond: %w", err)
	}

	m.logger.Info("Browser launched successfully and is responsive.")
	return nil
}

// allocatorOptions assembles the launch flags from the browser configuration.
func (m *Manager) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	// Later flags win, so this overrides the default. The page must see a
	// regular browser.
	opts = append(opts,
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", m.cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", m.cfg.Headless),
	)
	if m.cfg.Viewport.Width > 0 && m.cfg.Viewport.Height > 0 {
		opts = append(opts, chromedp.WindowSize(m.cfg.Viewport.Width, m.cfg.Viewport.Height))
	}
	if m.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.ExecPath))
	}

	opts = append(opts, parseArgs(m.cfg.Args)...)

	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}
	return opts
}

// parseArgs turns "--name=value" and "--name" strings into allocator flags.
func parseArgs(args []string) []chromedp.ExecAllocatorOption {
	opts := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		name = strings.TrimPrefix(name, "--")
		if name == "" {
			continue
		}
		if hasValue {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}
	return opts
}

// NewSession opens a fresh tab. The tab is closed by Session.Close or when
// the manager closes.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	tabCtx, cancel := chromedp.NewContext(m.browserCtx)

	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	s := newSession(tabCtx, cancel, m.logger, m.cfg)
	if m.cfg.Viewport.Width > 0 && m.cfg.Viewport.Height > 0 {
		err := s.run(ctx, chromedp.EmulateViewport(int64(m.cfg.Viewport.Width), int64(m.cfg.Viewport.Height)))
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}
	return s, nil
}

// Close terminates the browser process.
func (m *Manager) Close() {
	m.logger.Info("Shutting down browser process...")
	if m.browserCancel != nil {
		m.browserCancel()
	}
	if m.allocCancel != nil {
		m.allocCancel()
	}
}
