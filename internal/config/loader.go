package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. INTERNSHIPS_DATABASE_PATH.
const EnvPrefix = "INTERNSHIPS"

// Config captures the settings of the internship tracker.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Documents DocumentsConfig `mapstructure:"documents"`
	Import    ImportConfig    `mapstructure:"import"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	JournalMode string        `mapstructure:"journal_mode"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DocumentsConfig sets the checklist seeded for new interns.
type DocumentsConfig struct {
	Defaults      []string `mapstructure:"defaults"`
	DefaultStatus string   `mapstructure:"default_status"`
}

// ImportConfig tunes how roster files are decoded.
type ImportConfig struct {
	Encodings        []string `mapstructure:"encodings"`
	DefaultDelimiter string   `mapstructure:"default_delimiter"`
}

var supportedEncodings = map[string]bool{
	"utf-8":        true,
	"windows-1252": true,
	"iso-8859-1":   true,
}

// Load reads configuration with the precedence environment > file > defaults.
// A .env file in the working directory is applied to the environment first
// when present. path may be empty, in which case ./config.yaml is used if it
// exists.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("database.path", "internships.db")
	v.SetDefault("database.busy_timeout", "5s")
	v.SetDefault("database.journal_mode", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("documents.defaults", []string{})
	v.SetDefault("documents.default_status", "Pendente")
	v.SetDefault("import.encodings", []string{"utf-8", "windows-1252", "iso-8859-1"})
	v.SetDefault("import.default_delimiter", ";")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing key first, then every invalid one.
func (c *Config) Validate() error {
	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		missing = append(missing, "database.path")
	}
	if c.Database.BusyTimeout < 0 {
		invalid = append(invalid, "database.busy_timeout")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "log.level")
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		invalid = append(invalid, "log.format")
	}

	for i, name := range c.Import.Encodings {
		name = strings.ToLower(strings.TrimSpace(name))
		c.Import.Encodings[i] = name
		if !supportedEncodings[name] {
			invalid = append(invalid, "import.encodings")
			break
		}
	}
	if utf8.RuneCountInString(c.Import.DefaultDelimiter) != 1 {
		invalid = append(invalid, "import.default_delimiter")
	}

	if len(missing) > 0 {
		return fmt.Errorf("required configuration is missing: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("configuration values are invalid: %s", strings.Join(invalid, ", "))
	}
	return nil
}
