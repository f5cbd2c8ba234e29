// Package config provides configuration types, defaults and validation for domxml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/domxml/internal/flags"
	"github.com/zjrosen/domxml/internal/log"
	"github.com/zjrosen/domxml/internal/marshal"
	"github.com/zjrosen/domxml/internal/tracing"
	"github.com/zjrosen/domxml/internal/xmlconv"
)

// Config holds all configuration options for domxml.
type Config struct {
	Marshal  MarshalConfig   `mapstructure:"marshal"`
	Mapping  MappingConfig   `mapstructure:"mapping"`
	Database DatabaseConfig  `mapstructure:"database"`
	Output   OutputConfig    `mapstructure:"output"`
	Cache    CacheConfig     `mapstructure:"cache"`
	Tracing  tracing.Config  `mapstructure:"tracing"`
	Flags    map[string]bool `mapstructure:"flags"`
}

// MarshalConfig configures the domain marshaller.
type MarshalConfig struct {
	IncludeVersion bool   `mapstructure:"include_version" yaml:"include_version"`
	Render         string `mapstructure:"render" yaml:"render"` // "shallow" (default) or "full"

	// Include restricts classes to the listed properties, keyed by class
	// name or "*" for every class.
	Include map[string][]string `mapstructure:"include" yaml:"include,omitempty"`
	// Exclude drops the listed properties, keyed like Include.
	Exclude map[string][]string `mapstructure:"exclude" yaml:"exclude,omitempty"`
}

// MappingConfig locates YAML domain mapping files.
type MappingConfig struct {
	Dir   string `mapstructure:"dir"`   // empty disables mapping files
	Watch bool   `mapstructure:"watch"` // reload mappings when files change
}

// DatabaseConfig locates the library database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig controls XML formatting.
type OutputConfig struct {
	Indent string `mapstructure:"indent"`
	Header bool   `mapstructure:"header"`
}

// CacheConfig controls the descriptor cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"` // 0 keeps descriptors until invalidated
}

// DefaultDatabasePath returns ~/.domxml/library.db, or library.db in the
// working directory when the home directory is unavailable.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "library.db"
	}
	return filepath.Join(home, ".domxml", "library.db")
}

// DefaultTracesFilePath returns ~/.config/domxml/traces/traces.jsonl or ""
// when the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "domxml", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Marshal: MarshalConfig{
			IncludeVersion: false,
			Render:         marshal.RenderShallow.String(),
		},
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Output:   OutputConfig{Indent: "  ", Header: true},
		Tracing:  tracing.DefaultConfig(),
		Flags:    flags.Defaults(),
	}
}

// Validate checks the configuration for errors. Empty values use defaults.
func Validate(cfg Config) error {
	if _, err := marshal.ParseRenderMode(cfg.Marshal.Render); err != nil {
		return fmt.Errorf("marshal.render: %w", err)
	}
	for class, props := range cfg.Marshal.Include {
		if len(props) == 0 {
			return fmt.Errorf("marshal.include.%s must list at least one property", class)
		}
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", cfg.Cache.TTL)
	}
	if cfg.Mapping.Watch && cfg.Mapping.Dir == "" {
		return fmt.Errorf("mapping.dir is required when mapping.watch is enabled")
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled && t.Exporter == "otlp" && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// MarshalOptions converts the marshal section into marshaller options.
func (c Config) MarshalOptions() ([]marshal.Option, error) {
	mode, err := marshal.ParseRenderMode(c.Marshal.Render)
	if err != nil {
		return nil, err
	}
	opts := []marshal.Option{
		marshal.WithIncludeVersion(c.Marshal.IncludeVersion),
		marshal.WithRenderMode(mode),
	}
	if len(c.Marshal.Include) > 0 {
		opts = append(opts, marshal.WithInclusion(marshal.IncludeOnly(c.Marshal.Include)))
	}
	if len(c.Marshal.Exclude) > 0 {
		opts = append(opts, marshal.WithExclusion(marshal.ExcludeNames(c.Marshal.Exclude)))
	}
	return opts, nil
}

// RenderOptions converts the output section into converter options.
func (c Config) RenderOptions() xmlconv.Options {
	return xmlconv.Options{
		Indent:       c.Output.Indent,
		Header:       c.Output.Header,
		StrictCycles: flags.New(c.Flags).Enabled(flags.FlagStrictCycles),
	}
}

// TracingConfig returns the tracing section with the file path defaulted.
func (c Config) TracingConfig() tracing.Config {
	t := c.Tracing
	if t.Exporter == "file" && t.FilePath == "" {
		t.FilePath = DefaultTracesFilePath()
	}
	return t
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# domxml configuration

marshal:
  include_version: false  # Write the version attribute of versioned classes
  render: shallow         # "shallow" writes associations as id references, "full" converts them
  # Restrict or drop properties per class ("*" matches every class):
  # include:
  #   Book: [id, title, author]
  # exclude:
  #   "*": [isbn]

# YAML domain mapping files, loaded in addition to the built-in library classes
mapping:
  # dir: ./mappings
  watch: false            # Reload mapping files when they change

database:
  # path: ~/.domxml/library.db

output:
  indent: "  "            # Empty writes compact XML
  header: true            # Write the <?xml ...?> declaration

cache:
  ttl: 0s                 # Lifetime of cached descriptors, 0 keeps them

flags:
  describe-cache: true
  strict-cycles: false    # Fail on circular references in full render mode

# Tracing exports one span per rendered document
tracing:
  enabled: false
  exporter: file          # none, file, stdout, otlp
  # file_path: ~/.config/domxml/traces/traces.jsonl
  # otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at configPath with the default
// template, creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
