package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"imagehound/internal/shared"
)

// errNoTags marks a rendered page that produced zero tag texts. Treated as
// a recoverable fault, not success: the attempt is retried.
var errNoTags = errors.New("no tags found on page")

// collectTextsJS gathers the trimmed text content of every element matching
// the configured tag-link selector.
const collectTextsJS = `Array.from(document.querySelectorAll(%q)).map(n => n.textContent.trim()).filter(t => t.length > 0)`

// BrowserExtractor drives a headless rendering session to collect the tag
// set for an item's web URL.
//
// The extractor owns the session handle exclusively. Recoverable faults
// retry with a fixed delay; session-level faults tear down and
// reinitialize the session in place. Close must be called when the run
// ends so the browser process is released.
type BrowserExtractor struct {
	cfg    shared.BrowserConfig
	logger *log.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewBrowserExtractor starts a rendering session with bounded retry.
// Exhausting the session-init retries returns [shared.ErrSessionInit],
// which is fatal to the run.
func NewBrowserExtractor(cfg shared.BrowserConfig, logger *log.Logger) (*BrowserExtractor, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	b := &BrowserExtractor{cfg: cfg, logger: logger}
	if err := b.initSession(); err != nil {
		return nil, err
	}

	return b, nil
}

// initSession starts the browser, retrying up to MaxSessionRetries with a
// fixed delay between attempts.
func (b *BrowserExtractor) initSession() error {
	var lastErr error
	for attempt := 1; attempt <= b.cfg.MaxSessionRetries; attempt++ {
		err := b.startBrowser()
		if err == nil {
			return nil
		}

		lastErr = err
		b.logger.Error("failed to initialize browser session",
			"attempt", attempt, "max", b.cfg.MaxSessionRetries, "error", err)
		if attempt < b.cfg.MaxSessionRetries {
			time.Sleep(b.cfg.RetryDelay())
		}
	}

	return fmt.Errorf("%w: %v", shared.ErrSessionInit, lastErr)
}

func (b *BrowserExtractor) startBrowser() error {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !b.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions launches the browser eagerly so startup failures
	// surface here instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	b.allocCancel = allocCancel
	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	return nil
}

func (b *BrowserExtractor) teardown() {
	if b.browserCancel != nil {
		b.browserCancel()
		b.browserCancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
}

// Close releases the rendering session.
func (b *BrowserExtractor) Close() error {
	b.teardown()
	return nil
}

// ExtractTags navigates to the item's web URL and collects its rendered
// tag texts, retrying recoverable faults up to MaxAttempts with a fixed
// delay. Exhaustion returns an empty slice and a nil error; callers skip
// the item. A failed session reinitialization is returned as a hard error.
func (b *BrowserExtractor) ExtractTags(ctx context.Context, webURL string) ([]string, error) {
	for attempt := 1; attempt <= b.cfg.MaxAttempts; attempt++ {
		tags, err := b.attempt(webURL)
		if err == nil {
			return tags, nil
		}

		b.logger.Warn("retrying tag extraction",
			"url", webURL, "attempt", attempt, "max", b.cfg.MaxAttempts, "error", err)

		if isSessionFault(err) {
			b.teardown()
			if initErr := b.initSession(); initErr != nil {
				return nil, initErr
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.cfg.RetryDelay()):
		}
	}

	b.logger.Error("failed to extract tags after retries", "url", webURL, "attempts", b.cfg.MaxAttempts)
	return []string{}, nil
}

// attempt performs one navigate-wait-collect cycle against the session.
func (b *BrowserExtractor) attempt(webURL string) ([]string, error) {
	tctx, cancel := context.WithTimeout(b.browserCtx, b.cfg.WaitTimeout())
	defer cancel()

	var texts []string
	err := chromedp.Run(tctx,
		chromedp.Navigate(webURL),
		chromedp.WaitReady("main", chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(collectTextsJS, b.cfg.TagSelector), &texts),
	)
	if err != nil {
		return nil, err
	}

	tags := filterTags(texts)
	if len(tags) == 0 {
		return nil, errNoTags
	}

	return tags, nil
}

// filterTags trims each collected text and drops empty entries, preserving
// page order.
func filterTags(texts []string) []string {
	tags := make([]string, 0, len(texts))
	for _, t := range texts {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// isSessionFault reports whether the error means the browser session is
// unusable. Wait timeouts and empty tag sets are page-level faults and
// retry against the same session.
func isSessionFault(err error) bool {
	if errors.Is(err, errNoTags) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
