package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroma-labs/sqllog-go/sqllog"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		file    string
		wantErr assert.ErrorAssertionFunc
		want    func(t *testing.T, cfg *Config)
	}{
		{
			name:    "given only a dsn flag, then applies defaults",
			args:    []string{"--dsn", ":memory:", "SELECT 1"},
			wantErr: assert.NoError,
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultDriver, cfg.Driver)
				assert.Equal(t, ":memory:", cfg.DSN)
				assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
				assert.Equal(t, FormatConsole, cfg.LogFormat)
				assert.Equal(t, sqllog.DefaultCommandTimeout, cfg.CommandTimeout)
				assert.Equal(t, sqllog.DefaultConnectionTimeout, cfg.ConnectTimeout)
				assert.Equal(t, []string{"SELECT 1"}, cfg.Statements)
			},
		},
		{
			name: "given environment variables, then they override defaults",
			args: []string{},
			env: map[string]string{
				"SQLLOG_DRIVER":          "mysql",
				"SQLLOG_DSN":             "user:pw@tcp(db:3306)/app",
				"SQLLOG_LOG_FORMAT":      "json",
				"SQLLOG_COMMAND_TIMEOUT": "5s",
			},
			wantErr: assert.NoError,
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mysql", cfg.Driver)
				assert.Equal(t, "user:pw@tcp(db:3306)/app", cfg.DSN)
				assert.Equal(t, FormatJSON, cfg.LogFormat)
				assert.Equal(t, 5*time.Second, cfg.CommandTimeout)
			},
		},
		{
			name:    "given flag and environment, then flag wins",
			args:    []string{"--dsn", "flag.db"},
			env:     map[string]string{"SQLLOG_DSN": "env.db"},
			wantErr: assert.NoError,
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "flag.db", cfg.DSN)
			},
		},
		{
			name: "given config file, then reads settings from it",
			file: "driver: pgx\n" +
				"dsn: postgres://localhost/app\n" +
				"db-system: postgresql\n" +
				"param:\n" +
				"  - id=42\n",
			wantErr: assert.NoError,
			want: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "pgx", cfg.Driver)
				assert.Equal(t, "postgres://localhost/app", cfg.DSN)
				assert.Equal(t, "postgresql", cfg.DBSystem)
				assert.Equal(t, []string{"id=42"}, cfg.Params)
			},
		},
		{
			name:    "given repeated params, then keeps them in order",
			args:    []string{"--dsn", "x.db", "--param", "@id=1", "--param", "name=a,b"},
			wantErr: assert.NoError,
			want: func(t *testing.T, cfg *Config) {
				params, err := cfg.Parameters()
				require.NoError(t, err)
				assert.Equal(t, []Param{{Name: "@id", Value: "1"}, {Name: "name", Value: "a,b"}}, params)
			},
		},
		{
			name:    "given no dsn, then returns error",
			args:    []string{},
			wantErr: assert.Error,
		},
		{
			name:    "given unknown log format, then returns error",
			args:    []string{"--dsn", "x.db", "--log-format", "xml"},
			wantErr: assert.Error,
		},
		{
			name:    "given malformed param, then returns error",
			args:    []string{"--dsn", "x.db", "--param", "novalue"},
			wantErr: assert.Error,
		},
		{
			name:    "given missing config file, then returns error",
			args:    []string{"--config", filepath.Join(os.TempDir(), "sqllog-missing.yaml")},
			wantErr: assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			args := tt.args
			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "sqllog.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o600))
				args = append([]string{"--config", path}, args...)
			}

			cfg, err := Load(args)

			if !tt.wantErr(t, err) || err != nil {
				return
			}
			tt.want(t, cfg)
		})
	}
}

func TestLoad_Help(t *testing.T) {
	t.Run("given --help, then returns pflag.ErrHelp", func(t *testing.T) {
		_, err := Load([]string{"--help"})
		assert.ErrorIs(t, err, pflag.ErrHelp)
	})
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    zerolog.Level
		wantErr assert.ErrorAssertionFunc
	}{
		{name: "given debug, then returns debug level", level: "debug", want: zerolog.DebugLevel, wantErr: assert.NoError},
		{name: "given warn, then returns warn level", level: "warn", want: zerolog.WarnLevel, wantErr: assert.NoError},
		{name: "given unknown level, then returns error", level: "loud", want: zerolog.NoLevel, wantErr: assert.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&Config{LogLevel: tt.level}).Level()

			tt.wantErr(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Options(t *testing.T) {
	t.Run("given attributes, then returns one option per attribute", func(t *testing.T) {
		cfg := &Config{DBSystem: "sqlite", DBName: "main", Instance: "local"}
		assert.Len(t, cfg.Options(), 3)
		assert.Empty(t, (&Config{}).Options())
	})
}
