package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/vmbase/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vmbase.json"

	// EnvPrefix prefixes every environment override, e.g. VMBASE_LOG_LEVEL.
	EnvPrefix = "VMBASE_"

	// DefaultDiagnosticsAddr is the default diagnostics server address.
	DefaultDiagnosticsAddr = "localhost:7070"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "vmbase"
)

// Config represents the complete vmbase.json configuration.
type Config struct {
	// Log configures the process logger.
	Log LogConfig `json:"log" envPrefix:"LOG_"`

	// Diagnostics configures the live view model registry and its server.
	Diagnostics DiagnosticsConfig `json:"diagnostics" envPrefix:"DIAG_"`

	// Snapshot configures dump uploads to S3.
	Snapshot SnapshotConfig `json:"snapshot" envPrefix:"SNAPSHOT_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" env:"LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" env:"FORMAT"`
}

// DiagnosticsConfig contains registry and diagnostics server settings.
type DiagnosticsConfig struct {
	// Enabled attaches a registry to every view model environment.
	Enabled bool `json:"enabled,omitempty" env:"ENABLED"`

	// CaptureStacks records the creation stack of every view model.
	CaptureStacks bool `json:"captureStacks,omitempty" env:"CAPTURE_STACKS"`

	// Addr is the diagnostics server listen address.
	Addr string `json:"addr,omitempty" env:"ADDR"`

	// MetricsNamespace prefixes the Prometheus metric names.
	MetricsNamespace string `json:"metricsNamespace,omitempty" env:"METRICS_NAMESPACE"`
}

// SnapshotConfig contains S3 upload settings.
// Credentials are read from the environment only and never saved.
type SnapshotConfig struct {
	Bucket   string `json:"bucket,omitempty" env:"BUCKET"`
	Prefix   string `json:"prefix,omitempty" env:"PREFIX"`
	Region   string `json:"region,omitempty" env:"REGION"`
	Endpoint string `json:"endpoint,omitempty" env:"ENDPOINT"`

	AccessKeyID     string `json:"-" env:"ACCESS_KEY_ID"`
	SecretAccessKey string `json:"-" env:"SECRET_ACCESS_KEY"`
	SessionToken    string `json:"-" env:"SESSION_TOKEN"`
}

// New returns a configuration with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:          true,
			Addr:             DefaultDiagnosticsAddr,
			MetricsNamespace: DefaultMetricsNamespace,
		},
		Snapshot: SnapshotConfig{
			Prefix: "vmbase/",
		},
	}
}

// Load reads vmbase.json from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if !Exists(dir) {
		cfg := New()
		cfg.configPath = path
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E120").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Omit --config to run with defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// ApplyEnv overrides fields from VMBASE_* environment variables.
// Unset variables leave the current values.
func (c *Config) ApplyEnv() error {
	return c.applyEnvironment(env.Options{Prefix: EnvPrefix})
}

func (c *Config) applyEnvironment(opts env.Options) error {
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New("E121").
			WithDetail(err.Error()).
			WithSuggestion("Check the " + EnvPrefix + "* environment variables")
	}
	return nil
}

// Resolve loads path (or vmbase.json in the working directory when path is
// empty), applies environment overrides and validates the result.
func Resolve(path string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg, err = Load(".")
	} else {
		cfg, err = LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills fields a partial file left empty.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Diagnostics.Addr == "" {
		c.Diagnostics.Addr = DefaultDiagnosticsAddr
	}
	if c.Diagnostics.MetricsNamespace == "" {
		c.Diagnostics.MetricsNamespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New("E122").
			WithDetail("log.level must be one of debug, info, warn, error; got " + quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E122").
			WithDetail("log.format must be text or json; got " + quote(c.Log.Format))
	}
	if c.Diagnostics.Enabled && c.Diagnostics.Addr == "" {
		return errors.New("E122").
			WithDetail("diagnostics.addr is required when diagnostics are enabled")
	}
	if c.Snapshot.Bucket != "" && c.Snapshot.Region == "" {
		return errors.New("E122").
			WithDetail("snapshot.region is required when snapshot.bucket is set").
			WithSuggestion("Set snapshot.region or " + EnvPrefix + "SNAPSHOT_REGION")
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level returns the configured log level, info when unknown.
func (c *Config) Level() slog.Level {
	if l, ok := levels[strings.ToLower(c.Log.Level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

func quote(s string) string {
	return `"` + s + `"`
}
