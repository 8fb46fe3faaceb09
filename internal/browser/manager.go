// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JeeveshRajan/formscope/internal/config"
)

// Manager handles the lifecycle of the headless browser process. It owns the
// allocator context every page session is derived from, and guarantees the
// underlying process is torn down on every exit path.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
}

// NewManager launches the browser process and verifies it responds. The
// caller must Shutdown the manager, including on early failure paths.
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

// launch prepares allocator options and starts the headless browser process.
func (m *Manager) launch(ctx context.Context) error {
	m.logger.Info("Initializing browser allocator",
		zap.Bool("headless", m.cfg.Headless))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, m.allocatorOptions()...)
	m.allocatorCtx = allocCtx
	m.allocatorCancel = cancel

	// Probe with a throwaway tab to confirm the browser starts and responds.
	probeCtx, cancelProbe := context.WithTimeout(allocCtx, 30*time.Second)
	defer cancelProbe()
	probeCtx, cancelTab := chromedp.NewContext(probeCtx)
	defer cancelTab()

	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		m.allocatorCancel()
		return fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("Browser launched and responsive")
	return nil
}

// allocatorOptions assembles the launch flags for the browser instance.
func (m *Manager) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", m.cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-gpu", m.cfg.Headless),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(m.cfg.WindowWidth, m.cfg.WindowHeight),
		chromedp.UserAgent(m.cfg.UserAgent),
	)

	// Custom arguments from config, "--flag" or "--flag=value" form.
	for _, arg := range m.cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(name, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	// Flags required when running inside containers.
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	return opts
}

// NewSession opens a fresh, isolated tab. The caller must Close it.
func (m *Manager) NewSession(navigationTimeout time.Duration) *Session {
	sessionCtx, cancel := chromedp.NewContext(m.allocatorCtx)
	return newSession(sessionCtx, cancel, m.logger, navigationTimeout)
}

// Shutdown terminates the browser process.
func (m *Manager) Shutdown() {
	if m.allocatorCancel == nil {
		return
	}
	m.logger.Info("Shutting down browser process")
	m.allocatorCancel()
	<-m.allocatorCtx.Done()
}
