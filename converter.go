package htmlconv

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Converter converts HTML content to PDF documents.
//
// A Converter owns one headless browser process that is reused across
// conversions, each running in its own tab. It is safe for concurrent use.
//
// Call [Converter.Close] when the Converter is no longer needed to release
// the browser process.
type Converter struct {
	cfg           converterConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewConverter locates a browser and starts it.
//
// It fails with [ErrBrowserNotFound] when no executable can be found and
// with [ErrRender] when the process cannot be started. The caller must call
// [Converter.Close] when finished.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	execPath, err := resolveBrowser(cfg)
	if err != nil {
		return nil, err
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.noSandbox {
		allocOpts = append(allocOpts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: starting browser %s: %w", ErrRender, execPath, err)
	}

	return &Converter{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close terminates the browser process. Close is idempotent.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

// ConvertHTML converts an HTML string to a PDF document.
// If pg is nil, [DefaultPageConfig] values are used.
func (c *Converter) ConvertHTML(ctx context.Context, html string, pg *PageConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "htmlconv-*.html")
	if err != nil {
		return nil, fmt.Errorf("htmlconv: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString(html); err != nil {
		f.Close()
		return nil, fmt.Errorf("htmlconv: writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("htmlconv: closing temp file: %w", err)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("htmlconv: resolving path: %w", err)
	}
	return c.convert(ctx, fileURL(abs), pg)
}

// ConvertURL converts the web page at rawURL to a PDF document.
// If pg is nil, [DefaultPageConfig] values are used.
func (c *Converter) ConvertURL(ctx context.Context, rawURL string, pg *PageConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("htmlconv: invalid URL %q: %w", rawURL, err)
	}
	return c.convert(ctx, rawURL, pg)
}

// ConvertFile converts a local HTML file to a PDF document.
// If pg is nil, [DefaultPageConfig] values are used.
func (c *Converter) ConvertFile(ctx context.Context, path string, pg *PageConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("htmlconv: resolving path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("htmlconv: %w", err)
	}
	return c.convert(ctx, fileURL(abs), pg)
}

// Format implements [Renderer].
func (c *Converter) Format() Format {
	return FormatPDF
}

// Render implements [Renderer] with the default page configuration.
func (c *Converter) Render(ctx context.Context, html string) (*Result, error) {
	return c.ConvertHTML(ctx, html, nil)
}

// convert opens a tab, navigates, waits for the configured lifecycle event
// and prints the page.
func (c *Converter) convert(ctx context.Context, targetURL string, pg *PageConfig) (*Result, error) {
	resolved := pg.resolved()

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()
	// The tab hangs off the browser context, not ctx; close it when ctx ends.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	ready := newLoaderWaiter()
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == string(c.cfg.waitUntil) {
			ready.observe(e.LoaderID)
		}
	})

	width, height := resolved.paperDimensions()
	marginTop, marginRight, marginBottom, marginLeft := resolved.marginInches()

	var buf []byte
	if err := chromedp.Run(tabCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, loaderID, errorText, _, err := page.Navigate(targetURL).Do(ctx)
			if err != nil {
				return err
			}
			if errorText != "" {
				return fmt.Errorf("navigating to %s: %s", targetURL, errorText)
			}
			ready.expect(loaderID)
			return ready.wait(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(marginTop).
				WithMarginRight(marginRight).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginLeft).
				WithScale(resolved.Scale).
				WithPrintBackground(resolved.PrintBackground).
				WithLandscape(resolved.Orientation == Landscape).
				WithPreferCSSPageSize(resolved.PreferCSSPageSize)

			var err error
			buf, _, err = params.Do(ctx)
			return err
		}),
	); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	return &Result{data: buf, format: FormatPDF}, nil
}

// loaderWaiter waits for the lifecycle event of one navigation. Events can
// arrive before the navigation's loader ID is known, so loaders seen early
// are remembered until expect is called.
type loaderWaiter struct {
	mu       sync.Mutex
	seen     map[cdp.LoaderID]bool
	want     cdp.LoaderID
	expected bool
	fired    bool
	done     chan struct{}
}

func newLoaderWaiter() *loaderWaiter {
	return &loaderWaiter{
		seen: make(map[cdp.LoaderID]bool),
		done: make(chan struct{}),
	}
}

// observe records a lifecycle event for id. It never blocks.
func (w *loaderWaiter) observe(id cdp.LoaderID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.expected {
		w.seen[id] = true
		return
	}
	if w.want == "" || id == w.want {
		w.fire()
	}
}

// expect sets the loader to wait for. An empty id (same-document
// navigation) accepts any loader.
func (w *loaderWaiter) expect(id cdp.LoaderID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.want, w.expected = id, true
	if (id == "" && len(w.seen) > 0) || w.seen[id] {
		w.fire()
	}
	w.seen = nil
}

// fire must be called with w.mu held.
func (w *loaderWaiter) fire() {
	if !w.fired {
		w.fired = true
		close(w.done)
	}
}

// wait blocks until the expected loader's event arrives or ctx ends.
func (w *loaderWaiter) wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func fileURL(abs string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func (c *Converter) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// --- Package-level convenience functions ---

// ConvertHTML converts an HTML string to PDF using a temporary [Converter].
// The browser is started for this call and terminated before it returns,
// whether or not the conversion succeeds.
func ConvertHTML(ctx context.Context, html string, pg *PageConfig, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertHTML(ctx, html, pg)
}

// ConvertFile converts a local HTML file to PDF using a temporary [Converter].
// Relative stylesheets and images resolve against the file's directory.
func ConvertFile(ctx context.Context, path string, pg *PageConfig, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertFile(ctx, path, pg)
}

// PDFRenderer renders HTML to PDF with a browser launched for each call.
// Nothing is shared between calls, so a PDFRenderer is safe for concurrent
// use. Use a [Converter] directly to keep one browser alive instead.
type PDFRenderer struct {
	page *PageConfig
	opts []Option
}

// NewPDFRenderer returns a renderer printing with pg (nil for defaults) and
// launching browsers configured by opts.
func NewPDFRenderer(pg *PageConfig, opts ...Option) *PDFRenderer {
	return &PDFRenderer{page: pg, opts: opts}
}

// Format implements [Renderer].
func (r *PDFRenderer) Format() Format {
	return FormatPDF
}

// Render implements [Renderer].
func (r *PDFRenderer) Render(ctx context.Context, html string) (*Result, error) {
	return ConvertHTML(ctx, html, r.page, r.opts...)
}
