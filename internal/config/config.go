package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/vango-go/domkit/internal/errors"
)

const (
	// ConfigFileName is the default configuration file.
	ConfigFileName = "domkit.json"

	DefaultHost          = "localhost"
	DefaultPort          = 8080
	DefaultAPIBase       = "/api"
	DefaultAuthToken     = "123"
	DefaultMetricsPath   = "/metrics"
	DefaultWSPath        = "/ws"
	DefaultDataHub       = "dataHub"
	DefaultFrameInterval = "16ms"
	DefaultQueueSize     = 256
	DefaultExportPrefix  = "quotes/"
)

// candidates are the file names LoadFromDir looks for, in order.
var candidates = []string{ConfigFileName, "domkit.yaml", "domkit.yml", "domkit.toml"}

// Config is the complete domkit configuration.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server" toml:"server"`
	Hub    HubConfig    `json:"hub" yaml:"hub" toml:"hub"`
	Loop   LoopConfig   `json:"loop" yaml:"loop" toml:"loop"`
	Export ExportConfig `json:"export" yaml:"export" toml:"export"`
	Log    LogConfig    `json:"log" yaml:"log" toml:"log"`

	configPath string
}

// ServerConfig configures the HTTP server and the API client.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" toml:"host"`
	Port int    `json:"port" yaml:"port" toml:"port"`

	// APIBase prefixes the quote routes.
	APIBase string `json:"apiBase" yaml:"apiBase" toml:"apiBase"`

	// AuthToken is sent by clients as X-Auth-Token.
	AuthToken string `json:"authToken" yaml:"authToken" toml:"authToken"`

	MetricsPath string `json:"metricsPath" yaml:"metricsPath" toml:"metricsPath"`
	WSPath      string `json:"wsPath" yaml:"wsPath" toml:"wsPath"`
}

// HubConfig configures the event hubs.
type HubConfig struct {
	// DataHub is the hub quote changes are published on.
	DataHub string `json:"dataHub" yaml:"dataHub" toml:"dataHub"`

	// Bridge lists the extra hubs websocket clients may use. DataHub is
	// always allowed.
	Bridge []string `json:"bridge,omitempty" yaml:"bridge,omitempty" toml:"bridge,omitempty"`

	// Metrics registers hub and binder collectors.
	Metrics bool `json:"metrics" yaml:"metrics" toml:"metrics"`

	// Tracing exports request and publish spans to stdout.
	Tracing bool `json:"tracing" yaml:"tracing" toml:"tracing"`
}

// LoopConfig configures the UI event loop.
type LoopConfig struct {
	FrameInterval string `json:"frameInterval" yaml:"frameInterval" toml:"frameInterval"`
	QueueSize     int    `json:"queueSize" yaml:"queueSize" toml:"queueSize"`
}

// ExportConfig configures S3 snapshots.
type ExportConfig struct {
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty" toml:"bucket,omitempty"`
	Prefix    string `json:"prefix" yaml:"prefix" toml:"prefix"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty" toml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty" toml:"pathStyle,omitempty"`
}

// LogConfig configures the default slog handler.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			APIBase:     DefaultAPIBase,
			AuthToken:   DefaultAuthToken,
			MetricsPath: DefaultMetricsPath,
			WSPath:      DefaultWSPath,
		},
		Hub: HubConfig{
			DataHub: DefaultDataHub,
			Metrics: true,
		},
		Loop: LoopConfig{
			FrameInterval: DefaultFrameInterval,
			QueueSize:     DefaultQueueSize,
		},
		Export: ExportConfig{
			Prefix: DefaultExportPrefix,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromDir loads the first of domkit.json, domkit.yaml, domkit.yml and
// domkit.toml found in dir. With none present it returns the defaults.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// Load reads the configuration file at path, choosing the parser by
// extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E120").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Run 'domkit config init' to write one")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := Default()
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return errors.New("E121").
			WithDetail(fmt.Sprintf("Cannot load %s: unsupported extension %q", path, ext))
	}
	if err == nil {
		return nil
	}

	perr := errors.New("E120").
		WithDetail("Failed to parse " + filepath.Base(path)).
		Wrap(err)
	if line, col := errorPosition(data, err); line > 0 {
		perr.WithLocation(path, line, col)
	}
	return perr
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// errorPosition extracts the 1-based line and column of a parse error.
func errorPosition(data []byte, err error) (int, int) {
	var syntax *json.SyntaxError
	if stderrors.As(err, &syntax) {
		return offsetPosition(data, syntax.Offset)
	}
	var typ *json.UnmarshalTypeError
	if stderrors.As(err, &typ) {
		return offsetPosition(data, typ.Offset)
	}
	var derr *toml.DecodeError
	if stderrors.As(err, &derr) {
		return derr.Position()
	}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		return line, 0
	}
	return 0, 0
}

func offsetPosition(data []byte, offset int64) (int, int) {
	if offset <= 0 || offset > int64(len(data)) {
		return 0, 0
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n') - 1
	return line, col
}

// applyDefaults fills fields the file set to zero values.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.APIBase == "" {
		c.Server.APIBase = def.Server.APIBase
	}
	if c.Server.AuthToken == "" {
		c.Server.AuthToken = def.Server.AuthToken
	}
	if c.Server.WSPath == "" {
		c.Server.WSPath = def.Server.WSPath
	}
	if c.Loop.FrameInterval == "" {
		c.Loop.FrameInterval = def.Loop.FrameInterval
	}
	if c.Loop.QueueSize == 0 {
		c.Loop.QueueSize = def.Loop.QueueSize
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate checks the configuration and returns the first problem as a
// coded error.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return c.invalid("E122", fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	for field, path := range map[string]string{
		"server.apiBase": c.Server.APIBase,
		"server.wsPath":  c.Server.WSPath,
	} {
		if !strings.HasPrefix(path, "/") {
			return c.invalid("E123", fmt.Sprintf("%s must start with '/', got %q", field, path))
		}
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return c.invalid("E123", fmt.Sprintf("server.metricsPath must start with '/', got %q", c.Server.MetricsPath))
	}
	if strings.TrimSpace(c.Hub.DataHub) == "" {
		return c.invalid("E126", "hub.dataHub is empty")
	}
	for i, name := range c.Hub.Bridge {
		if strings.TrimSpace(name) == "" {
			return c.invalid("E126", fmt.Sprintf("hub.bridge[%d] is empty", i))
		}
	}
	if d, err := time.ParseDuration(c.Loop.FrameInterval); err != nil || d <= 0 {
		return c.invalid("E125", fmt.Sprintf("loop.frameInterval %q is not a positive duration", c.Loop.FrameInterval))
	}
	if c.Loop.QueueSize < 1 {
		return c.invalid("E125", fmt.Sprintf("loop.queueSize must be positive, got %d", c.Loop.QueueSize))
	}
	if _, err := c.SlogLevel(); err != nil {
		return c.invalid("E124", err.Error())
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return c.invalid("E124", fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	return nil
}

func (c *Config) invalid(code, detail string) error {
	err := errors.New(code).WithDetail(detail)
	if c.configPath != "" {
		err.Location = &errors.Location{File: c.configPath}
	}
	return err
}

// SaveTo writes the configuration to path in the format its extension
// names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".toml":
		data, err = toml.Marshal(c)
	default:
		return errors.New("E121").
			WithDetail(fmt.Sprintf("Cannot write %s: unsupported extension %q", path, ext))
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string { return c.configPath }

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// BaseURL returns the quote API root as seen by a local client.
func (c *Config) BaseURL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + host + ":" + strconv.Itoa(c.Server.Port) + c.Server.APIBase
}

// FrameInterval returns the parsed loop frame interval, or the default on
// a bad value.
func (c *Config) FrameInterval() time.Duration {
	d, err := time.ParseDuration(c.Loop.FrameInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultFrameInterval)
	}
	return d
}

// SlogLevel maps the configured level name.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
}
