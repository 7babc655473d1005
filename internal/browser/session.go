// Package browser wraps one long-lived chromedp session. Wholesale searches
// reuse it so login cookies, and with them member pricing, persist across
// keywords and sources.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// Page is the page-automation capability consumed by the pipeline.
// Every call is bounded by the caller's context and the session timeout.
type Page interface {
	Navigate(ctx context.Context, url string) error
	HTML(ctx context.Context) (string, error)
	Text(ctx context.Context, selector string) (string, error)
	// Visible reports whether selector matches an element that is rendered
	// (not display:none, visibility:hidden or detached from layout).
	Visible(ctx context.Context, selector string) (bool, error)
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	Screenshot(ctx context.Context, path string) error
}

// Options configures the Chrome process.
type Options struct {
	Headless  bool
	UserAgent string
	Locale    string

	// Timeout bounds each individual page operation.
	Timeout time.Duration
}

// Session is a Page backed by one Chrome tab.
type Session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *logrus.Logger
}

// NewSession starts Chrome and opens a blank tab. JavaScript dialogs
// (login alerts, "are you sure" prompts) are accepted automatically.
func NewSession(opts Options, logger *logrus.Logger) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Locale == "" {
		opts.Locale = "ko-KR"
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), Flags(opts)...)
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if _, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			go func() {
				if err := chromedp.Run(ctx, page.HandleJavaScriptDialog(true)); err != nil {
					logger.Debugf("Failed to accept dialog: %v", err)
				}
			}()
		}
	})

	// Start the browser eagerly so launch failures surface here.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		ctx: ctx,
		cancel: func() {
			cancel()
			allocCancel()
		},
		timeout: opts.Timeout,
		logger:  logger,
	}, nil
}

// Close shuts Chrome down.
func (s *Session) Close() {
	s.cancel()
}

// run executes actions under the session timeout, also stopping when the
// caller's context ends.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	var text string
	err := s.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery))
	return text, err
}

func (s *Session) Visible(ctx context.Context, selector string) (bool, error) {
	var visible bool
	err := s.run(ctx, chromedp.Evaluate(visibleScript(selector), &visible))
	return visible, err
}

// visibleScript uses getClientRects rather than offsetParent, which is null
// for position:fixed overlays.
func visibleScript(selector string) string {
	return `(() => {
	const el = document.querySelector(` + strconv.Quote(selector) + `);
	if (el === null || el.getClientRects().length === 0) return false;
	const style = window.getComputedStyle(el);
	return style.visibility !== "hidden" && style.display !== "none";
})()`
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (s *Session) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	return os.WriteFile(path, buf, 0o644)
}
