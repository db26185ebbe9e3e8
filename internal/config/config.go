package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/stagestate/internal/core"
	"github.com/spf13/viper"
)

const (
	DefaultSURLPrefix = "srm://srm.grid.sara.nl:8443"
	DefaultSURLMarker = "/pnfs"
	DefaultDCacheAPI  = "https://dcacheview.grid.surfsara.nl:22880"
)

type Config struct {
	SURL    SURLConfig    `mapstructure:"surl"`
	Backend BackendConfig `mapstructure:"backend"`
	Checker CheckerConfig `mapstructure:"checker"`
	Report  ReportConfig  `mapstructure:"report"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Notify  NotifyConfig  `mapstructure:"notify"`
}

// SURLConfig controls how input URLs are rewritten.
type SURLConfig struct {
	Prefix string `mapstructure:"prefix"`
	Marker string `mapstructure:"marker"`
}

type BackendConfig struct {
	Type   string       `mapstructure:"type"` // "dcache", "s3" or "static"
	DCache DCacheConfig `mapstructure:"dcache"`
	S3     S3Config     `mapstructure:"s3"`
	Static StaticConfig `mapstructure:"static"`
}

type DCacheConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// StaticConfig points at a YAML file mapping SURLs to status values.
type StaticConfig struct {
	Path string `mapstructure:"path"`
}

// CheckerConfig holds batching and output settings for status lookups.
type CheckerConfig struct {
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	Verbose    bool          `mapstructure:"verbose"`
	Color      bool          `mapstructure:"color"`
	FailFast   bool          `mapstructure:"fail_fast"`
}

// ReportConfig controls the optional export of a run report.
type ReportConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Format  string        `mapstructure:"format"` // "json" or "yaml"
	Storage StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// NotifyConfig holds end-of-run notification settings.
type NotifyConfig struct {
	Webhook WebhookConfig `mapstructure:"webhook"`
}

type WebhookConfig struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// Load reads configuration from file on top of Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix("STAGESTATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		SURL: SURLConfig{
			Prefix: DefaultSURLPrefix,
			Marker: DefaultSURLMarker,
		},
		Backend: BackendConfig{
			Type: "dcache",
			DCache: DCacheConfig{
				Endpoint: DefaultDCacheAPI,
				Timeout:  30 * time.Second,
			},
		},
		Checker: CheckerConfig{
			BatchSize:  100,
			BatchDelay: time.Second,
			Verbose:    true,
			Color:      true,
		},
		Report: ReportConfig{
			Format: "json",
			Storage: StorageConfig{
				Type: "localfs",
				Path: "reports",
			},
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.SURL.Prefix == "" || c.SURL.Marker == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("surl prefix and marker are required"))
	}

	if c.Checker.BatchSize < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch_size must be positive, got %d", c.Checker.BatchSize))
	}
	if c.Checker.BatchDelay < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch_delay cannot be negative, got %s", c.Checker.BatchDelay))
	}

	switch c.Backend.Type {
	case "dcache":
		if c.Backend.DCache.Endpoint == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("dcache endpoint required when backend is dcache"))
		}
	case "s3":
		if c.Backend.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when backend is s3"))
		}
	case "static":
		if c.Backend.Static.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("static path required when backend is static"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown backend type: %q", c.Backend.Type))
	}

	if c.Report.Enabled {
		switch c.Report.Format {
		case "json", "yaml":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("report format must be json or yaml, got %q", c.Report.Format))
		}
		switch c.Report.Storage.Type {
		case "localfs":
			if c.Report.Storage.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("report path required for localfs storage"))
			}
		case "s3":
			if c.Report.Storage.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("report s3 bucket required for s3 storage"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown report storage type: %q", c.Report.Storage.Type))
		}
	}

	return nil
}
