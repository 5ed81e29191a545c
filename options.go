package htmlconv

import "time"

// converterConfig holds internal configuration for a Converter.
type converterConfig struct {
	chromePath string
	source     BrowserSource
	timeout    time.Duration
	noSandbox  bool
	headless   string
	waitUntil  WaitCondition
}

func defaultConfig() converterConfig {
	return converterConfig{
		source:    SourceSystem,
		timeout:   30 * time.Second,
		headless:  "new",
		waitUntil: NetworkIdle,
	}
}

// Option configures a [Converter].
type Option func(*converterConfig)

// WithChromePath sets the path to the Chrome or Chromium executable,
// bypassing browser discovery.
func WithChromePath(path string) Option {
	return func(c *converterConfig) {
		c.chromePath = path
	}
}

// WithBrowserSource selects where the browser executable comes from.
// Defaults to [SourceSystem].
func WithBrowserSource(s BrowserSource) Option {
	return func(c *converterConfig) {
		c.source = s
	}
}

// WithTimeout sets the maximum duration for a single conversion.
// Defaults to 30 seconds. A zero or negative value disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *converterConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *converterConfig) {
		c.noSandbox = true
	}
}

// WithWaitUntil sets the page-load condition awaited before printing.
// Defaults to [NetworkIdle].
func WithWaitUntil(w WaitCondition) Option {
	return func(c *converterConfig) {
		c.waitUntil = w
	}
}
