package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Org           OrgConfig       `toml:"org"`
	User          UserConfig      `toml:"user"`
	Directory     DirectoryConfig `toml:"directory"`
	Timing        TimingConfig    `toml:"timing"`
	Notifications NotifyConfig    `toml:"notifications"`
	Log           LogConfig       `toml:"log"`
}

type OrgConfig struct {
	Name string `toml:"name"`
}

type UserConfig struct {
	Name    string `toml:"name"`
	Manager string `toml:"manager"` // fallback approver for time off
}

type DirectoryConfig struct {
	Source          string `toml:"source"` // "memory" | "sqlite"
	DBPath          string `toml:"db_path"`
	SeedFile        string `toml:"seed_file"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

type TimingConfig struct {
	ThinkingDelayMs     int `toml:"thinking_delay_ms"`
	AnswerBufferMs      int `toml:"answer_buffer_ms"`
	StepMs              int `toml:"step_ms"`
	ConfirmationDelayMs int `toml:"confirmation_delay_ms"`
	InsuranceDelayMs    int `toml:"insurance_delay_ms"`
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func DefaultConfig() Config {
	return Config{
		Org: OrgConfig{Name: "your company"},
		User: UserConfig{
			Name:    "You",
			Manager: "Sarah Johnson",
		},
		Directory: DirectoryConfig{
			Source:          "memory",
			CacheTTLSeconds: 300,
		},
		Timing: TimingConfig{
			ThinkingDelayMs:     500,
			AnswerBufferMs:      2500,
			StepMs:              800,
			ConfirmationDelayMs: 1000,
			InsuranceDelayMs:    500,
		},
		Notifications: NotifyConfig{Enabled: true},
		Log:           LogConfig{Level: "info"},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chatrail"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHATRAIL_DIRECTORY"); v != "" {
		cfg.Directory.Source = v
	}
	if v := os.Getenv("CHATRAIL_DB_PATH"); v != "" {
		cfg.Directory.DBPath = v
	}
	if v := os.Getenv("CHATRAIL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) validate() error {
	switch c.Directory.Source {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("directory source %q: want \"memory\" or \"sqlite\"", c.Directory.Source)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Directory.CacheTTLSeconds) * time.Second
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (t TimingConfig) ThinkingDelay() time.Duration     { return ms(t.ThinkingDelayMs) }
func (t TimingConfig) AnswerBuffer() time.Duration      { return ms(t.AnswerBufferMs) }
func (t TimingConfig) Step() time.Duration              { return ms(t.StepMs) }
func (t TimingConfig) ConfirmationDelay() time.Duration { return ms(t.ConfirmationDelayMs) }
func (t TimingConfig) InsuranceDelay() time.Duration    { return ms(t.InsuranceDelayMs) }

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	out, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}

// Set stores a single "section.key" value in the file at path, preserving
// every other setting.
func Set(path, key string, value any) error {
	section, name, ok := strings.Cut(key, ".")
	if !ok || section == "" || name == "" {
		return fmt.Errorf("key %q: want section.key", key)
	}

	cfg := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	sec, ok := cfg[section].(map[string]any)
	if !ok {
		sec = make(map[string]any)
	}
	sec[name] = value
	cfg[section] = sec

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
