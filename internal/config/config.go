package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/renatoruis/oh-institutional/internal/errors"
	"github.com/renatoruis/oh-institutional/pkg/i18n"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "openheavens"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "OH"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultAPIBase is the production content API.
	DefaultAPIBase = "https://ohapi.weserve.one"

	// DefaultAPITimeout bounds one content API request.
	DefaultAPITimeout = 10 * time.Second

	// DefaultCacheTTL is how long API responses stay available offline.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultRenderTimeout bounds one view render.
	DefaultRenderTimeout = 15 * time.Second

	// DefaultNamespace prefixes Prometheus metric names.
	DefaultNamespace = "oh"

	// DefaultTracerName is the OpenTelemetry tracer name.
	DefaultTracerName = "openheavens"

	// DefaultExportDir is where static exports are written.
	DefaultExportDir = "dist"

	// DefaultRegion is the S3 region used for exports.
	DefaultRegion = "eu-west-1"
)

// Config is the complete server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	API     APIConfig     `mapstructure:"api"`
	Lang    string        `mapstructure:"lang"`
	Render  RenderConfig  `mapstructure:"render"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Export  ExportConfig  `mapstructure:"export"`
	Log     LogConfig     `mapstructure:"log"`

	path string
}

// ServerConfig configures the HTTP server and its websocket sessions.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr"`

	// Dev disables caching headers on the client assets.
	Dev bool `mapstructure:"dev"`

	// PingInterval is the websocket heartbeat period.
	PingInterval time.Duration `mapstructure:"pingInterval"`

	// ReadTimeout is how long a session waits for any client frame.
	ReadTimeout time.Duration `mapstructure:"readTimeout"`

	// WriteTimeout bounds one websocket write.
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`

	// MaxMessageSize caps inbound websocket messages in bytes.
	MaxMessageSize int64 `mapstructure:"maxMessageSize"`

	// MaxSessions caps concurrent sessions. Zero is unlimited.
	MaxSessions int `mapstructure:"maxSessions"`

	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-*
	// headers are believed.
	TrustedProxies []string `mapstructure:"trustedProxies"`

	// AssetsDir is served under /assets/. Empty disables it.
	AssetsDir string `mapstructure:"assetsDir"`
}

// APIConfig configures the content API client.
type APIConfig struct {
	Base     string        `mapstructure:"base"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cacheTTL"`
}

// RenderConfig configures the view dispatcher.
type RenderConfig struct {
	// Timeout bounds one render; zero disables the bound.
	Timeout time.Duration `mapstructure:"timeout"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	TracerName string `mapstructure:"tracerName"`
}

// ExportConfig configures the static export.
type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

var defaults = map[string]any{
	"server.addr":           DefaultAddr,
	"server.dev":            false,
	"server.pingInterval":   30 * time.Second,
	"server.readTimeout":    90 * time.Second,
	"server.writeTimeout":   10 * time.Second,
	"server.maxMessageSize": int64(64 * 1024),
	"server.maxSessions":    0,
	"server.assetsDir":      "",
	"server.trustedProxies": []string{},
	"api.base":              DefaultAPIBase,
	"api.timeout":           DefaultAPITimeout,
	"api.cacheTTL":          DefaultCacheTTL,
	"lang":                  i18n.Default,
	"render.timeout":        DefaultRenderTimeout,
	"metrics.enabled":       true,
	"metrics.namespace":     DefaultNamespace,
	"tracing.enabled":       false,
	"tracing.tracerName":    DefaultTracerName,
	"export.dir":            DefaultExportDir,
	"export.bucket":         "",
	"export.region":         DefaultRegion,
	"export.prefix":         "",
	"log.format":            "text",
	"log.level":             "info",
}

// New returns a Config holding the defaults, ignoring file and environment.
func New() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("C002").Wrap(err)
	}
	return &cfg, nil
}

// Load reads the configuration. An empty path searches the working
// directory for openheavens.yaml and carries on with defaults when there
// is none; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.New("C001").WithDetailf("reading %s", describe(path)).Wrap(err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.path = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func describe(path string) string {
	if path == "" {
		return ConfigName + ".yaml"
	}
	return path
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	if err := ValidateAPIBase(c.API.Base); err != nil {
		return err
	}

	var problems []string
	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is empty")
	}
	if !i18n.IsSupported(c.Lang) {
		problems = append(problems, fmt.Sprintf("lang %q is not one of %v", c.Lang, i18n.Supported))
	}
	for name, d := range map[string]time.Duration{
		"server.pingInterval": c.Server.PingInterval,
		"server.readTimeout":  c.Server.ReadTimeout,
		"server.writeTimeout": c.Server.WriteTimeout,
		"api.timeout":         c.API.Timeout,
		"api.cacheTTL":        c.API.CacheTTL,
		"render.timeout":      c.Render.Timeout,
	} {
		if d < 0 {
			problems = append(problems, name+" is negative")
		}
	}
	if c.Server.PingInterval > 0 && c.Server.ReadTimeout > 0 && c.Server.ReadTimeout <= c.Server.PingInterval {
		problems = append(problems, "server.readTimeout must exceed server.pingInterval")
	}
	if c.Server.MaxMessageSize <= 0 {
		problems = append(problems, "server.maxMessageSize must be positive")
	}
	if c.Server.MaxSessions < 0 {
		problems = append(problems, "server.maxSessions is negative")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		problems = append(problems, "metrics.namespace is empty")
	}
	if c.Export.Bucket == "" && c.Export.Dir == "" {
		problems = append(problems, "export needs a dir or a bucket")
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return errors.New("C002").WithDetail(strings.Join(problems, "; "))
	}
	return nil
}

// ValidateAPIBase checks that base is an absolute http(s) URL.
func ValidateAPIBase(base string) error {
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		e := errors.New("A001").WithDetailf("api.base %q", base)
		if err != nil {
			e = e.Wrap(err)
		}
		return e
	}
	return nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("log.level %q must be debug, info, warn or error", level)
	}
	return l, nil
}

// LogLevel returns the configured slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	l, err := ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ExportTarget describes where Export writes: "s3://bucket/prefix" or
// the output directory.
func (c *Config) ExportTarget() string {
	if c.Export.Bucket != "" {
		return "s3://" + c.Export.Bucket + "/" + strings.TrimPrefix(c.Export.Prefix, "/")
	}
	return c.Export.Dir
}
