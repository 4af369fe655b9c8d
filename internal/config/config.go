// Package config loads server configuration.
//
// Values are layered, later sources overriding earlier ones:
//
//  1. built-in defaults
//  2. a YAML file named by --config or NAJDENO_CONFIG
//  3. a dotenv file (--env-file, default .env), loaded into the environment
//     without replacing variables that are already set
//  4. NAJDENO_* environment variables
//  5. command-line flags
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/najdeno/internal/model"
)

// Config is the server configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// Timezone is the IANA zone used to compare calendar dates in search.
	Timezone string `yaml:"timezone"`

	Admin AdminConfig `yaml:"admin"`
	Log   LogConfig   `yaml:"log"`
	Redis RedisConfig `yaml:"redis"`
}

// AdminConfig names the administrator account created on first run.
type AdminConfig struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Path is an optional file receiving a copy of every log record.
	Path string `yaml:"path"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// RedisConfig configures the optional event publisher. Events are not
// published when Addr is empty.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Channel  string `yaml:"channel"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:     ":8080",
		DBPath:   "najdeno.sqlite3",
		Timezone: "UTC",
		Admin: AdminConfig{
			Email: "admin@localhost.localdomain",
			Name:  "Admin",
		},
		Log: LogConfig{
			Format: "text",
		},
		Redis: RedisConfig{
			Channel: "najdeno:events",
		},
	}
}

type option struct {
	flag, short string
	env         string
	usage       string
	field       func(*Config) *string
}

var options = []option{
	{"addr", "a", "NAJDENO_ADDR", "listen address", func(c *Config) *string { return &c.Addr }},
	{"db", "d", "NAJDENO_DB", "SQLite database path", func(c *Config) *string { return &c.DBPath }},
	{"timezone", "", "NAJDENO_TIMEZONE", "timezone for date search", func(c *Config) *string { return &c.Timezone }},
	{"admin-email", "u", "NAJDENO_ADMIN_EMAIL", "admin email on first run", func(c *Config) *string { return &c.Admin.Email }},
	{"admin-name", "", "NAJDENO_ADMIN_NAME", "admin display name on first run", func(c *Config) *string { return &c.Admin.Name }},
	{"log", "l", "NAJDENO_LOG", "log file path (default: stdout/stderr only)", func(c *Config) *string { return &c.Log.Path }},
	{"log-format", "", "NAJDENO_LOG_FORMAT", "log format: text or json", func(c *Config) *string { return &c.Log.Format }},
	{"redis-addr", "", "NAJDENO_REDIS_ADDR", "Redis address for event publishing (default: disabled)", func(c *Config) *string { return &c.Redis.Addr }},
	{"redis-password", "", "NAJDENO_REDIS_PASSWORD", "Redis password", func(c *Config) *string { return &c.Redis.Password }},
	{"redis-channel", "", "NAJDENO_REDIS_CHANNEL", "Redis pub/sub channel for events", func(c *Config) *string { return &c.Redis.Channel }},
}

// Load builds the configuration from args (without the program name), the
// environment and the files they name. It returns pflag.ErrHelp when help
// was requested; the usage text has then been written to out.
func Load(args []string, out io.Writer) (*Config, error) {
	var fromFlags Config

	flags := pflag.NewFlagSet("najdeno", pflag.ContinueOnError)
	flags.SetOutput(out)
	configPath := flags.StringP("config", "c", "", "YAML config file (env NAJDENO_CONFIG)")
	envFile := flags.String("env-file", ".env", "dotenv file loaded if present; empty to skip")
	for _, o := range options {
		flags.StringVarP(o.field(&fromFlags), o.flag, o.short, "", o.usage+" (env "+o.env+")")
	}
	flags.Usage = func() {
		fmt.Fprint(out, "Usage: najdeno [flags]\n\nFlags:\n")
		fmt.Fprint(out, flags.FlagUsages())
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}

	cfg := Default()

	path := *configPath
	if path == "" {
		path = os.Getenv("NAJDENO_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if *envFile != "" {
		if err := loadDotenv(*envFile); err != nil {
			return nil, err
		}
	}

	for _, o := range options {
		if v := os.Getenv(o.env); v != "" {
			*o.field(cfg) = v
		}
	}

	flags.Visit(func(f *pflag.Flag) {
		for _, o := range options {
			if o.flag == f.Name {
				*o.field(cfg) = *o.field(&fromFlags)
			}
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML file into c. Unknown keys are rejected.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func loadDotenv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Location returns the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.DBPath == "" {
		return errors.New("config: db_path is required")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config: log format must be text or json, got %q", c.Log.Format)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := model.ValidateEmail(c.Admin.Email); err != nil {
		return fmt.Errorf("config: admin %w", err)
	}
	if c.Redis.Addr != "" && c.Redis.Channel == "" {
		return errors.New("config: redis channel is required when redis is enabled")
	}
	return nil
}
