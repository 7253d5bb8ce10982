// Package config provides configuration management for the sentiment dashboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	apperrors "marketsense/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Provider ProviderConfig `mapstructure:"provider"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	// Loaded separately from credentials.toml; never serialized.
	Credentials Credentials `mapstructure:"-" json:"-"`
}

// EngineConfig holds refresh-scheduler configuration.
type EngineConfig struct {
	NewsInterval     time.Duration `mapstructure:"news_interval"`
	CalendarInterval time.Duration `mapstructure:"calendar_interval"`
	ScanStagger      time.Duration `mapstructure:"scan_stagger"`
	EntityCitations  int           `mapstructure:"entity_citations"`
	NewsCitations    int           `mapstructure:"news_citations"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

// ProviderConfig selects the completion service backend.
type ProviderConfig struct {
	Name        string `mapstructure:"name"` // "gemini" or "openai"
	GeminiModel string `mapstructure:"gemini_model"`
	OpenAIModel string `mapstructure:"openai_model"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// Credentials holds API credentials.
type Credentials struct {
	Gemini GeminiCredentials `mapstructure:"gemini"`
	OpenAI OpenAICredentials `mapstructure:"openai"`
	Tavily TavilyCredentials `mapstructure:"tavily"`
}

// GeminiCredentials holds the Gemini API credential.
type GeminiCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// OpenAICredentials holds the OpenAI API credential.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// TavilyCredentials holds the Tavily web-search credential.
type TavilyCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// HasProviderCredential reports whether the configured provider has an API
// key. Its absence is the single startup configuration error: the engine
// performs no network activity without it.
func (c *Config) HasProviderCredential() bool {
	switch c.Provider.Name {
	case "openai":
		return c.Credentials.OpenAI.APIKey != ""
	default:
		return c.Credentials.Gemini.APIKey != ""
	}
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/marketsense"
	}
	return filepath.Join(home, ".config", "marketsense")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
			// Fall through with defaults on first run.
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.news_interval", 120*time.Second)
	v.SetDefault("engine.calendar_interval", 1800*time.Second)
	v.SetDefault("engine.scan_stagger", time.Second)
	v.SetDefault("engine.entity_citations", 5)
	v.SetDefault("engine.news_citations", 10)
	v.SetDefault("engine.request_timeout", 90*time.Second)
	v.SetDefault("provider.name", "gemini")
	v.SetDefault("provider.gemini_model", "gemini-2.5-flash")
	v.SetDefault("provider.openai_model", "gpt-4o-mini")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Credentials.Gemini.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		cfg.Credentials.Tavily.APIKey = v
	}
	if v := os.Getenv("MARKETSENSE_PROVIDER"); v != "" {
		cfg.Provider.Name = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Provider.Name != "" && c.Provider.Name != "gemini" && c.Provider.Name != "openai" {
		return fmt.Errorf("%w: provider %q (must be 'gemini' or 'openai')", apperrors.ErrConfigInvalid, c.Provider.Name)
	}
	if c.Engine.NewsInterval <= 0 {
		return fmt.Errorf("%w: news_interval must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Engine.CalendarInterval <= 0 {
		return fmt.Errorf("%w: calendar_interval must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Engine.ScanStagger < 0 {
		return fmt.Errorf("%w: scan_stagger must be non-negative", apperrors.ErrConfigInvalid)
	}
	if c.Engine.EntityCitations <= 0 || c.Engine.NewsCitations <= 0 {
		return fmt.Errorf("%w: citation caps must be positive", apperrors.ErrConfigInvalid)
	}
	return nil
}
