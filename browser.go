package htmlconv

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
)

// BrowserSource selects how the browser executable is found.
type BrowserSource int

const (
	// SourceSystem uses a Chrome or Chromium already installed on the host.
	SourceSystem BrowserSource = iota
	// SourceBundled downloads a pinned Chromium build on first use and
	// caches it in ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser
	// (Windows).
	SourceBundled
)

// ParseBrowserSource parses "system" or "bundled".
func ParseBrowserSource(s string) (BrowserSource, error) {
	switch strings.ToLower(s) {
	case "", "system":
		return SourceSystem, nil
	case "bundled":
		return SourceBundled, nil
	}
	return 0, fmt.Errorf("htmlconv: unknown browser source %q", s)
}

func (s BrowserSource) String() string {
	if s == SourceBundled {
		return "bundled"
	}
	return "system"
}

// LocateBrowser returns the browser executable a [Converter] created with
// opts would launch. It fails with [ErrBrowserNotFound] when there is none.
func LocateBrowser(opts ...Option) (string, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return resolveBrowser(cfg)
}

func resolveBrowser(cfg converterConfig) (string, error) {
	if cfg.chromePath != "" {
		if _, err := os.Stat(cfg.chromePath); err != nil {
			return "", fmt.Errorf("%w: %w", ErrBrowserNotFound, err)
		}
		return cfg.chromePath, nil
	}

	switch cfg.source {
	case SourceBundled:
		path, err := launcher.NewBrowser().Get()
		if err != nil {
			return "", fmt.Errorf("%w: downloading browser: %w", ErrBrowserNotFound, err)
		}
		return path, nil
	default:
		path, ok := launcher.LookPath()
		if !ok {
			return "", fmt.Errorf("%w: install Google Chrome or Chromium", ErrBrowserNotFound)
		}
		return path, nil
	}
}
