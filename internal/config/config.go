package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "KANBANAI"

// Config holds application configuration.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	LLM         LLMConfig         `mapstructure:"llm"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	GoogleTasks GoogleTasksConfig `mapstructure:"google_tasks"`
	Log         LogConfig         `mapstructure:"log"`
}

// DatabaseConfig selects and locates the board store.
type DatabaseConfig struct {
	Driver        string `mapstructure:"driver"`
	Path          string `mapstructure:"path"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
}

// LLMConfig holds provider settings. Variants are tried in order.
type LLMConfig struct {
	Provider        string        `mapstructure:"provider"`
	APIKeyEnv       string        `mapstructure:"api_key_env"`
	APIKey          string        `mapstructure:"api_key"`
	Variants        []string      `mapstructure:"variants"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BaseURL         string        `mapstructure:"base_url"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
}

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// GoogleTasksConfig locates the OAuth client secret and cached token.
type GoogleTasksConfig struct {
	OAuthClientPath string `mapstructure:"oauth_client_path"`
	TokenPath       string `mapstructure:"token_path"`
}

// LogConfig controls zap output.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// DefaultVariants returns the fallback chain used when none is configured.
func DefaultVariants(provider string) []string {
	switch provider {
	case "openai":
		return []string{"gpt-4o-mini", "gpt-4o"}
	default:
		return []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-pro"}
	}
}

// Path returns the config file location: explicit if set, then
// KANBANAI_CONFIG, then ~/.config/kanbanai/config.toml.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "kanbanai", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// KANBANAI_, e.g. KANBANAI_LLM_PROVIDER. A missing file is not an error.
func Load(explicit string) (Config, error) {
	v := viper.New()

	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "kanbanai")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join(dataDir, "kanbanai.db"))
	v.SetDefault("database.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo_database", "kanbanai")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key_env", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.variants", []string{})
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_output_tokens", 0)
	v.SetDefault("http.addr", "127.0.0.1:8080")
	v.SetDefault("google_tasks.oauth_client_path", filepath.Join(dataDir, "google_client.json"))
	v.SetDefault("google_tasks.token_path", filepath.Join(dataDir, "google_token.json"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetConfigType("toml")
	v.SetConfigFile(Path(explicit))

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if len(c.LLM.Variants) == 0 {
		c.LLM.Variants = DefaultVariants(c.LLM.Provider)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports settings no component can work with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mongo":
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("config: unknown llm.provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("config: llm.timeout must be positive")
	}
	return nil
}

// ResolveAPIKey resolves the provider key: the env var named by api_key_env, then
// the provider's usual env vars, then the config file value.
func (c LLMConfig) ResolveAPIKey() string {
	envs := []string{c.APIKeyEnv}
	switch c.Provider {
	case "openai":
		envs = append(envs, "OPENAI_API_KEY")
	default:
		envs = append(envs, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
	for _, name := range envs {
		if name == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.APIKey)
}

// Save writes cfg to the config path, creating the directory if needed.
// The API key is stored in plain text; prefer env vars.
func Save(cfg Config, explicit string) error {
	path := Path(explicit)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.driver", cfg.Database.Driver)
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.mongo_uri", cfg.Database.MongoURI)
	v.Set("database.mongo_database", cfg.Database.MongoDatabase)
	v.Set("llm.provider", cfg.LLM.Provider)
	v.Set("llm.api_key_env", cfg.LLM.APIKeyEnv)
	v.Set("llm.api_key", cfg.LLM.APIKey)
	v.Set("llm.variants", cfg.LLM.Variants)
	v.Set("llm.timeout", cfg.LLM.Timeout.String())
	v.Set("llm.base_url", cfg.LLM.BaseURL)
	v.Set("llm.max_output_tokens", cfg.LLM.MaxOutputTokens)
	v.Set("http.addr", cfg.HTTP.Addr)
	v.Set("google_tasks.oauth_client_path", cfg.GoogleTasks.OAuthClientPath)
	v.Set("google_tasks.token_path", cfg.GoogleTasks.TokenPath)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.json", cfg.Log.JSON)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
