package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	htmlconv "github.com/porticus-lab/go-html-convert"
)

// FileEnv names the environment variable pointing at an optional YAML file.
const FileEnv = "HTMLCONVERT_CONFIG"

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	CORSOrigins string `yaml:"cors_origins"`

	// Output
	OutputDir    string `yaml:"output_dir"`
	BaseURL      string `yaml:"base_url"` // Defaults to http://localhost:<port>
	MaxBodyBytes int64  `yaml:"max_body_bytes"`

	// Browser
	BrowserSource string        `yaml:"browser_source"`
	ChromePath    string        `yaml:"chrome_path"`
	NoSandbox     bool          `yaml:"no_sandbox"`
	RenderTimeout time.Duration `yaml:"render_timeout"`
	WaitUntil     string        `yaml:"wait_until"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:          "3001",
		Environment:   "dev",
		CORSOrigins:   "*",
		OutputDir:     "downloads",
		MaxBodyBytes:  10 << 20,
		BrowserSource: "system",
		NoSandbox:     true,
		RenderTimeout: 30 * time.Second,
		WaitUntil:     string(htmlconv.NetworkIdle),
	}
}

// Load builds the configuration from defaults, the YAML file named by
// HTMLCONVERT_CONFIG (if any), and finally environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.OutputDir = getEnv("OUTPUT_DIR", cfg.OutputDir)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.BrowserSource = getEnv("BROWSER_SOURCE", cfg.BrowserSource)
	cfg.ChromePath = getEnv("CHROME_PATH", cfg.ChromePath)
	cfg.WaitUntil = getEnv("WAIT_UNTIL", cfg.WaitUntil)

	var err error
	if cfg.MaxBodyBytes, err = getEnvInt("MAX_BODY_BYTES", cfg.MaxBodyBytes); err != nil {
		return nil, err
	}
	if cfg.NoSandbox, err = getEnvBool("CHROME_NO_SANDBOX", cfg.NoSandbox); err != nil {
		return nil, err
	}
	if cfg.RenderTimeout, err = getEnvDuration("RENDER_TIMEOUT", cfg.RenderTimeout); err != nil {
		return nil, err
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks every field that the server would otherwise reject at
// startup with a less helpful error.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.RenderTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.LogLevel, validation.In("", "debug", "info", "warn", "error")),
		validation.Field(&c.BrowserSource, validation.By(func(any) error {
			_, err := htmlconv.ParseBrowserSource(c.BrowserSource)
			return err
		})),
		validation.Field(&c.WaitUntil, validation.By(func(any) error {
			_, err := htmlconv.ParseWaitCondition(c.WaitUntil)
			return err
		})),
	)
}

// ConverterOptions translates the browser settings into converter options.
// Call it on a validated Config.
func (c *Config) ConverterOptions() []htmlconv.Option {
	source, _ := htmlconv.ParseBrowserSource(c.BrowserSource)
	wait, _ := htmlconv.ParseWaitCondition(c.WaitUntil)

	opts := []htmlconv.Option{
		htmlconv.WithBrowserSource(source),
		htmlconv.WithTimeout(c.RenderTimeout),
		htmlconv.WithWaitUntil(wait),
	}
	if c.ChromePath != "" {
		opts = append(opts, htmlconv.WithChromePath(c.ChromePath))
	}
	if c.NoSandbox {
		opts = append(opts, htmlconv.WithNoSandbox())
	}
	return opts
}

// Origins returns the comma-separated CORS origins as a list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
