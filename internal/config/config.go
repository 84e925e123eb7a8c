// Package config loads the sqllog command's settings from flags, SQLLOG_*
// environment variables and an optional config file, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kroma-labs/sqllog-go/sqllog"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. SQLLOG_DSN.
	EnvPrefix = "SQLLOG"

	DefaultDriver    = "sqlite3"
	DefaultLogLevel  = "debug"
	DefaultLogFormat = FormatConsole

	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config is the resolved command configuration.
type Config struct {
	Driver         string        `mapstructure:"driver"`
	DSN            string        `mapstructure:"dsn"`
	LogLevel       string        `mapstructure:"log-level"`
	LogFormat      string        `mapstructure:"log-format"`
	DBSystem       string        `mapstructure:"db-system"`
	DBName         string        `mapstructure:"db-name"`
	Instance       string        `mapstructure:"instance"`
	CommandTimeout time.Duration `mapstructure:"command-timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
	Params         []string      `mapstructure:"param"`
	File           string        `mapstructure:"file"`

	// Statements are the positional arguments.
	Statements []string `mapstructure:"-"`
}

// Param is one --param name=value pair.
type Param struct {
	Name  string
	Value string
}

// Load parses args (without the program name).
// It returns pflag.ErrHelp when --help was requested.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("sqllog", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("driver", DefaultDriver, "database/sql driver: mysql, pgx or sqlite3")
	fs.String("dsn", "", "data source name")
	fs.String("log-level", DefaultLogLevel, "minimum log level: debug, info, warn or error")
	fs.String("log-format", DefaultLogFormat, "log output: console or json")
	fs.String("db-system", "", "db.system attribute on spans and metrics")
	fs.String("db-name", "", "db.name attribute on spans and metrics")
	fs.String("instance", "", "db.instance attribute on spans and metrics")
	fs.Duration("command-timeout", sqllog.DefaultCommandTimeout, "timeout per statement, 0 for none")
	fs.Duration("connect-timeout", sqllog.DefaultConnectionTimeout, "timeout for opening the connection")
	fs.StringArray("param", nil, "parameter bound to every statement, as name=value (repeatable)")
	fs.String("file", "", "file of ';'-separated statements run after the positional ones")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Statements = fs.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error

	if c.Driver == "" {
		errs = append(errs, errors.New("driver is required"))
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("dsn is required"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != FormatConsole && c.LogFormat != FormatJSON {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if _, err := c.Parameters(); err != nil {
		errs = append(errs, err)
	}
	if c.CommandTimeout < 0 || c.ConnectTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}

	return errors.Join(errs...)
}

// Level returns the zerolog level for LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Parameters splits the --param values.
func (c *Config) Parameters() ([]Param, error) {
	params := make([]Param, 0, len(c.Params))
	for _, p := range c.Params {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid param %q: want name=value", p)
		}
		params = append(params, Param{Name: name, Value: value})
	}
	return params, nil
}

// Options returns the telemetry options for the configured attributes.
func (c *Config) Options() []sqllog.Option {
	var opts []sqllog.Option
	if c.DBSystem != "" {
		opts = append(opts, sqllog.WithDBSystem(c.DBSystem))
	}
	if c.DBName != "" {
		opts = append(opts, sqllog.WithDBName(c.DBName))
	}
	if c.Instance != "" {
		opts = append(opts, sqllog.WithInstanceName(c.Instance))
	}
	return opts
}
