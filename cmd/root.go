// Package cmd implements the domxml command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/domxml/internal/config"
	"github.com/zjrosen/domxml/internal/log"
)

var version = "dev"

// cli holds the state shared by the commands of one root command.
type cli struct {
	v        *viper.Viper
	cfg      config.Config
	cfgFile  string
	debug    bool
	logFile  string
	closeLog func()

	// createOutput opens the --out file of export.
	createOutput func(name string) (io.WriteCloser, error)
}

// NewRootCmd builds the domxml command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&cli{
		createOutput: func(name string) (io.WriteCloser, error) { return os.Create(name) },
	})
}

func newRootCmd(c *cli) *cobra.Command {
	c.v = viper.New()

	root := &cobra.Command{
		Use:   "domxml",
		Short: "Export domain objects as XML",
		Long: `domxml writes persisted domain objects as XML.

Associations are written as id references by default, or converted
completely with --full. Domain classes come from the built-in library
and from YAML mapping files.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.closeLog != nil {
				c.closeLog()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "",
		"config file (default: .domxml/config.yaml or ~/.config/domxml/config.yaml)")
	root.PersistentFlags().BoolVarP(&c.debug, "debug", "d", false,
		"enable debug logging (also DOMXML_DEBUG=1)")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "debug.log",
		"debug log path")
	root.PersistentFlags().String("db", "", "library database path")
	_ = c.v.BindPFlag("database.path", root.PersistentFlags().Lookup("db"))

	root.AddCommand(
		newExportCmd(c),
		newClassesCmd(c),
		newInitDBCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.debug || os.Getenv("DOMXML_DEBUG") != "" {
		cleanup, err := log.Init(c.logFile)
		if err != nil {
			return fmt.Errorf("initializing log: %w", err)
		}
		c.closeLog = cleanup
	}
	if err := c.loadConfig(); err != nil {
		return err
	}
	log.Debug(log.CatCLI, "Running command", "command", cmd.CommandPath())
	return nil
}

// loadConfig reads the config file into c.cfg. Lookup order:
//  1. --config
//  2. .domxml/config.yaml (current directory)
//  3. ~/.config/domxml/config.yaml
//
// A missing file leaves the defaults in place.
func (c *cli) loadConfig() error {
	setDefaults(c.v, config.Defaults())
	c.v.SetEnvPrefix("DOMXML")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	switch {
	case c.cfgFile != "":
		c.v.SetConfigFile(c.cfgFile)
	case fileExists(filepath.Join(".domxml", "config.yaml")):
		c.v.SetConfigFile(filepath.Join(".domxml", "config.yaml"))
	default:
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(filepath.Join(home, ".config", "domxml"))
		}
		c.v.SetConfigName("config")
		c.v.SetConfigType("yaml")
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file found, using defaults")
	} else {
		log.Debug(log.CatConfig, "Loaded config", "path", c.v.ConfigFileUsed())
	}

	cfg := config.Defaults()
	if err := c.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.cfg = cfg
	return nil
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("marshal.include_version", d.Marshal.IncludeVersion)
	v.SetDefault("marshal.render", d.Marshal.Render)
	v.SetDefault("mapping.dir", d.Mapping.Dir)
	v.SetDefault("mapping.watch", d.Mapping.Watch)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("output.indent", d.Output.Indent)
	v.SetDefault("output.header", d.Output.Header)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	for name, on := range d.Flags {
		v.SetDefault("flags."+name, on)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
}
