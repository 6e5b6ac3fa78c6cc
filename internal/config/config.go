package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything a crawl run needs.
type Config struct {
	Site        SiteConfig    `yaml:"site"`
	Credentials Credentials   `yaml:"credentials"`
	Browser     BrowserConfig `yaml:"browser"`
	Timing      TimingConfig  `yaml:"timing"`
	Output      OutputConfig  `yaml:"output"`
}

// SiteConfig locates the target bank.
type SiteConfig struct {
	BaseURL     string `yaml:"base_url"`
	AccountPath string `yaml:"account_path"`
	MainPath    string `yaml:"main_path"`
}

// Credentials are the demo login typed into the sign-in form.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// BrowserConfig configures the launched Chrome/Chromium.
type BrowserConfig struct {
	Headless   bool   `yaml:"headless"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	ProfileDir string `yaml:"profile_dir"`
	Bin        string `yaml:"bin"`
}

// TimingConfig holds the bounded wait and the fixed pauses of a run.
type TimingConfig struct {
	WaitTimeout      time.Duration `yaml:"wait_timeout"`
	LoginSettle      time.Duration `yaml:"login_settle"`
	NavigationSettle time.Duration `yaml:"navigation_settle"`
	CaptureDelay     time.Duration `yaml:"capture_delay"`
	LogoutSettle     time.Duration `yaml:"logout_settle"`
	CloseDelay       time.Duration `yaml:"close_delay"`
}

// OutputConfig says where screenshots (and the optional recap) go.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Recap string `yaml:"recap"`
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load reads a YAML config file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL   = "TESTFIRE_BASE_URL"
	EnvUsername  = "TESTFIRE_USERNAME"
	EnvPassword  = "TESTFIRE_PASSWORD"
	EnvOutputDir = "TESTFIRE_OUTPUT_DIR"
	EnvChromeBin = "TESTFIRE_CHROME_BIN"
)

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv; empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvBaseURL, &c.Site.BaseURL)
	set(EnvUsername, &c.Credentials.Username)
	set(EnvPassword, &c.Credentials.Password)
	set(EnvOutputDir, &c.Output.Dir)
	set(EnvChromeBin, &c.Browser.Bin)
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL, got %q", c.Site.BaseURL)
	}
	for name, p := range map[string]string{
		"site.account_path": c.Site.AccountPath,
		"site.main_path":    c.Site.MainPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with /, got %q", name, p)
		}
	}
	if c.Credentials.Username == "" || c.Credentials.Password == "" {
		return fmt.Errorf("credentials.username and credentials.password are required")
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d", c.Browser.Width, c.Browser.Height)
	}
	if c.Timing.WaitTimeout <= 0 {
		return fmt.Errorf("timing.wait_timeout must be positive, got %v", c.Timing.WaitTimeout)
	}
	for name, d := range map[string]time.Duration{
		"timing.login_settle":      c.Timing.LoginSettle,
		"timing.navigation_settle": c.Timing.NavigationSettle,
		"timing.capture_delay":     c.Timing.CaptureDelay,
		"timing.logout_settle":     c.Timing.LogoutSettle,
		"timing.close_delay":       c.Timing.CloseDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, d)
		}
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	return nil
}

// RootURL is the site root with exactly one trailing slash.
func (c *Config) RootURL() string {
	return strings.TrimRight(c.Site.BaseURL, "/") + "/"
}

// AccountURL is the direct account-details page.
func (c *Config) AccountURL() string {
	return strings.TrimRight(c.Site.BaseURL, "/") + c.Site.AccountPath
}

// MainURL is the signed-in account main page.
func (c *Config) MainURL() string {
	return strings.TrimRight(c.Site.BaseURL, "/") + c.Site.MainPath
}

// Host is the bare host name of the target, used in log lines.
func (c *Config) Host() string {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Host == "" {
		return c.Site.BaseURL
	}
	return u.Host
}
