package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config represents the root configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Test     TestConfig     `mapstructure:"test"`
	Latency  LatencyConfig  `mapstructure:"latency"`
	Hint     HintConfig     `mapstructure:"hint"`
	Provider ProviderConfig `mapstructure:"provider"`
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	EnableTUI bool   `mapstructure:"enable_tui"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Format string `mapstructure:"format"` // text or json
	Debug  bool   `mapstructure:"debug"`
}

// TestConfig holds throughput test settings
type TestConfig struct {
	DownloadURL     string        `mapstructure:"download_url"`
	UploadURL       string        `mapstructure:"upload_url"`
	Duration        time.Duration `mapstructure:"duration"`
	ParallelStreams int           `mapstructure:"parallel_streams"` // Upload uses half, minimum 1
	Passes          int           `mapstructure:"passes"`           // Best pass wins
	Warmup          time.Duration `mapstructure:"warmup"`
	BucketWidth     time.Duration `mapstructure:"bucket_width"`
	Percentile      string        `mapstructure:"percentile"` // p95 or peak
}

// LatencyConfig holds latency sampler settings
type LatencyConfig struct {
	URL     string        `mapstructure:"url"`
	Count   int           `mapstructure:"count"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HintConfig seeds the connection hint and optionally refreshes RTT via ICMP
type HintConfig struct {
	EffectiveType string        `mapstructure:"effective_type"`
	Downlink      float64       `mapstructure:"downlink"`
	RTT           float64       `mapstructure:"rtt"`
	ICMPHost      string        `mapstructure:"icmp_host"`
	ICMPInterval  time.Duration `mapstructure:"icmp_interval"`
}

// ProviderConfig holds ISP lookup settings
type ProviderConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	PrimaryURL  string        `mapstructure:"primary_url"`
	FallbackURL string        `mapstructure:"fallback_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.enable_tui", false)
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.debug", false)
	v.SetDefault("test.download_url", "")
	v.SetDefault("test.upload_url", "")
	v.SetDefault("test.duration", "10s")
	v.SetDefault("test.parallel_streams", 6)
	v.SetDefault("test.passes", 2)
	v.SetDefault("test.warmup", "2s")
	v.SetDefault("test.bucket_width", "250ms")
	v.SetDefault("test.percentile", "p95")
	v.SetDefault("latency.url", "")
	v.SetDefault("latency.count", 5)
	v.SetDefault("latency.timeout", "5s")
	v.SetDefault("hint.effective_type", "")
	v.SetDefault("hint.downlink", 0)
	v.SetDefault("hint.rtt", 0)
	v.SetDefault("hint.icmp_host", "")
	v.SetDefault("hint.icmp_interval", "30s")
	v.SetDefault("provider.enabled", true)
	v.SetDefault("provider.primary_url", "https://ipapi.co/json/")
	v.SetDefault("provider.fallback_url", "https://ipwho.is/")
	v.SetDefault("provider.timeout", "5s")
}

// Load reads configuration from the specified file. An empty path yields
// the defaults.
func Load(configPath string) (*Config, error) {
	return LoadWithOverrides(configPath, nil)
}

// LoadWithOverrides reads configPath like Load and then applies overrides,
// keyed by dotted config key (e.g. "test.duration"), before validating.
// Command-line flags use this so they win over the file.
func LoadWithOverrides(configPath string, overrides map[string]interface{}) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	return decode(v)
}

// decode unmarshals and validates v
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for valid values
func (c *Config) Validate() error {
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", c.Logging.Format)
	}

	if err := validateURL(c.Test.DownloadURL); err != nil {
		return fmt.Errorf("test.download_url: %w", err)
	}
	if err := validateURL(c.Test.UploadURL); err != nil {
		return fmt.Errorf("test.upload_url: %w", err)
	}
	if err := validateURL(c.Latency.URL); err != nil {
		return fmt.Errorf("latency.url: %w", err)
	}

	if c.Test.Duration <= 0 {
		return fmt.Errorf("test.duration must be positive")
	}
	if c.Test.BucketWidth <= 0 {
		return fmt.Errorf("test.bucket_width must be positive")
	}
	if c.Test.BucketWidth > c.Test.Duration {
		return fmt.Errorf("test.bucket_width must not exceed test.duration")
	}
	if c.Test.Warmup < 0 {
		return fmt.Errorf("test.warmup must not be negative")
	}
	if c.Test.ParallelStreams < 0 || c.Test.ParallelStreams > 64 {
		return fmt.Errorf("test.parallel_streams must be between 0 and 64")
	}
	if c.Test.Passes < 0 || c.Test.Passes > 10 {
		return fmt.Errorf("test.passes must be between 0 and 10")
	}
	if c.Test.Percentile != "p95" && c.Test.Percentile != "peak" {
		return fmt.Errorf("test.percentile must be 'p95' or 'peak', got %q", c.Test.Percentile)
	}

	if c.Latency.Count < 1 || c.Latency.Count > 100 {
		return fmt.Errorf("latency.count must be between 1 and 100")
	}
	if c.Latency.Timeout <= 0 {
		return fmt.Errorf("latency.timeout must be positive")
	}

	if c.Hint.Downlink < 0 || c.Hint.RTT < 0 {
		return fmt.Errorf("hint.downlink and hint.rtt must not be negative")
	}
	if c.Hint.ICMPHost != "" && c.Hint.ICMPInterval <= 0 {
		return fmt.Errorf("hint.icmp_interval must be positive when hint.icmp_host is set")
	}

	if c.Provider.Enabled && c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive")
	}

	return nil
}

// LatencyTarget returns the URL the latency sampler should hit: the
// configured one, else the root of the download (or upload) server
func (c *Config) LatencyTarget() string {
	if c.Latency.URL != "" {
		return c.Latency.URL
	}
	for _, raw := range []string{c.Test.DownloadURL, c.Test.UploadURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		return u.Scheme + "://" + u.Host + "/"
	}
	return ""
}

// validateURL accepts an empty value or an absolute http(s) URL
func validateURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}
