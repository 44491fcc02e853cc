// Package config loads sitemap404 settings from defaults, an optional YAML
// file, .env files and SITEMAP404_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SITEMAP404_SITE_SITEMAP_URL.
const EnvPrefix = "SITEMAP404"

var (
	// ErrMissingSitemapURL is returned when no sitemap root is configured.
	ErrMissingSitemapURL = errors.New("config: site.sitemap_url is required")
	// ErrInvalid wraps every other validation failure.
	ErrInvalid = errors.New("config: invalid value")
)

type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Check    CheckConfig    `mapstructure:"check"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Sitemap  SitemapConfig  `mapstructure:"sitemap"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Log      LogConfig      `mapstructure:"log"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

type SiteConfig struct {
	// SitemapURL is the root sitemap or sitemap index.
	SitemapURL string `mapstructure:"sitemap_url"`
	// BaseURL identifies the site for the internal-only link filter.
	// Defaults to the scheme and host of SitemapURL.
	BaseURL string `mapstructure:"base_url"`
}

type CheckConfig struct {
	Self         bool   `mapstructure:"self"`
	Links        bool   `mapstructure:"links"`
	InternalOnly bool   `mapstructure:"internal_only"`
	ScopePrefix  string `mapstructure:"scope_prefix"`
	MaxDead      int    `mapstructure:"max_dead"`
}

type HTTPConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	SitemapTimeout  time.Duration `mapstructure:"sitemap_timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	HeadFirst       bool          `mapstructure:"head_first"`
	FollowRedirects bool          `mapstructure:"follow_redirects"`
	PerHostRate     float64       `mapstructure:"per_host_rate"`
}

type SitemapConfig struct {
	// MaxDepth limits index nesting; the root is depth 1 and 0 means unlimited.
	MaxDepth int `mapstructure:"max_depth"`
}

type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

type NotifyConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Retries    int           `mapstructure:"retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// OnlyNew lists only links newly added to the ledger instead of every
	// dead link found by the run.
	OnlyNew bool `mapstructure:"only_new"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// SetDefaults registers every key with its default so env overrides apply
// even when no config file is present.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("site.sitemap_url", "")
	v.SetDefault("site.base_url", "")

	v.SetDefault("check.self", true)
	v.SetDefault("check.links", true)
	v.SetDefault("check.internal_only", false)
	v.SetDefault("check.scope_prefix", "")
	v.SetDefault("check.max_dead", 0)

	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.sitemap_timeout", 20*time.Second)
	v.SetDefault("http.user_agent", "sitemap404/1.0")
	v.SetDefault("http.head_first", true)
	v.SetDefault("http.follow_redirects", false)
	v.SetDefault("http.per_host_rate", 0.0)

	v.SetDefault("sitemap.max_depth", 0)

	v.SetDefault("ledger.path", "data/not_found_links.json")

	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.retries", 3)
	v.SetDefault("notify.timeout", 10*time.Second)
	v.SetDefault("notify.only_new", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("schedule.cron", "0 3 * * *")
}

// NewViper prepares a viper instance: .env files, env binding, defaults and
// the config file. An explicit cfgFile must exist; otherwise ./config.yaml
// and ./config/config.yaml are tried and may be absent.
func NewViper(cfgFile string) (*viper.Viper, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("notify.webhook_url", EnvPrefix+"_NOTIFY_WEBHOOK_URL", "TEAMS_WEBHOOK_URL"); err != nil {
		return nil, fmt.Errorf("config: bind webhook env: %w", err)
	}

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", cfgFile, err)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return v, nil
}

// loadEnvFiles loads .env.local then .env; existing variables are never
// overwritten, so the first file to set a key wins.
func loadEnvFiles() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", name, err)
		}
	}
	return nil
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is NewViper followed by FromViper.
func Load(cfgFile string) (*Config, error) {
	v, err := NewViper(cfgFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// Validate checks required and enumerated fields.
func (c *Config) Validate() error {
	if c.Site.SitemapURL == "" {
		return ErrMissingSitemapURL
	}
	if err := absoluteHTTP(c.Site.SitemapURL); err != nil {
		return fmt.Errorf("%w: site.sitemap_url: %v", ErrInvalid, err)
	}
	if c.Site.BaseURL != "" {
		if err := absoluteHTTP(c.Site.BaseURL); err != nil {
			return fmt.Errorf("%w: site.base_url: %v", ErrInvalid, err)
		}
	}
	if !c.Check.Self && !c.Check.Links {
		return fmt.Errorf("%w: check.self and check.links are both disabled", ErrInvalid)
	}
	if c.Check.MaxDead < 0 {
		return fmt.Errorf("%w: check.max_dead must be >= 0", ErrInvalid)
	}
	if c.HTTP.Timeout <= 0 || c.HTTP.SitemapTimeout <= 0 || c.Notify.Timeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalid)
	}
	if c.HTTP.PerHostRate < 0 {
		return fmt.Errorf("%w: http.per_host_rate must be >= 0", ErrInvalid)
	}
	if c.Sitemap.MaxDepth < 0 {
		return fmt.Errorf("%w: sitemap.max_depth must be >= 0", ErrInvalid)
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("%w: ledger.path is required", ErrInvalid)
	}
	if c.Notify.Retries < 0 {
		return fmt.Errorf("%w: notify.retries must be >= 0", ErrInvalid)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// SiteURL is BaseURL, or SitemapURL when no base is set.
func (c *Config) SiteURL() string {
	if c.Site.BaseURL != "" {
		return c.Site.BaseURL
	}
	return c.Site.SitemapURL
}

func absoluteHTTP(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return nil
}
