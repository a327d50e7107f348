package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider      = "google"
	DefaultModel         = "gemini-1.5-flash"
	DefaultAddr          = ":3000"
	DefaultLogLevel      = "info"
	DefaultModelTimeout  = 10 * time.Second
	DefaultQuestionCount = 5
)

// Config holds the application configuration.
type Config struct {
	Provider      string
	Model         string
	APIKeys       APIKeysConfig
	Addr          string
	DBPath        string
	LogLevel      string
	LogFile       string
	ModelTimeout  time.Duration
	QuestionCount int
	ConfigDir     string
	Aliases       *ModelAliases
}

// FileConfig represents the structure of ~/.acemock/config.yaml
type FileConfig struct {
	Provider      string            `yaml:"provider"`
	Model         string            `yaml:"model"`
	APIKeys       APIKeysConfig     `yaml:"api_keys"`
	Server        ServerConfig      `yaml:"server"`
	Database      DatabaseConfig    `yaml:"database"`
	Logging       LoggingConfig     `yaml:"logging"`
	ModelTimeout  string            `yaml:"model_timeout"`
	QuestionCount int               `yaml:"question_count"`
	Aliases       map[string]string `yaml:"aliases"`
}

// APIKeysConfig holds API key configuration.
type APIKeysConfig struct {
	Google    string `yaml:"google"`
	OpenAI    string `yaml:"openai"`
	Anthropic string `yaml:"anthropic"`
	DeepSeek  string `yaml:"deepseek"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds the answer store settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// envConfig lists the environment variables that override file values.
type envConfig struct {
	GeminiAPIKey       string        `env:"GEMINI_API_KEY"`
	PublicGeminiAPIKey string        `env:"NEXT_PUBLIC_GEMINI_API_KEY"`
	GoogleAPIKey       string        `env:"GOOGLE_API_KEY"`
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY"`
	AnthropicAPIKey    string        `env:"ANTHROPIC_API_KEY"`
	DeepSeekAPIKey     string        `env:"DEEPSEEK_API_KEY"`
	Provider           string        `env:"ACEMOCK_PROVIDER"`
	Model              string        `env:"ACEMOCK_MODEL"`
	Addr               string        `env:"ACEMOCK_ADDR"`
	DBPath             string        `env:"ACEMOCK_DB"`
	LogLevel           string        `env:"ACEMOCK_LOG_LEVEL"`
	LogFile            string        `env:"ACEMOCK_LOG_FILE"`
	ModelTimeout       time.Duration `env:"ACEMOCK_MODEL_TIMEOUT"`
	QuestionCount      int           `env:"NEXT_PUBLIC_INTERVIEW_QUESTION_COUNT"`
}

// Load reads configuration from ~/.acemock/config.yaml, a .env file in the
// working directory and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return load(configDir, filepath.Join(configDir, "config.yaml"), false)
}

// LoadFile loads config with a specific config file. Unlike Load, an
// unreadable or malformed file is an error.
func LoadFile(path string) (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return load(configDir, path, true)
}

func load(configDir, path string, strict bool) (*Config, error) {
	fileConfig, err := loadFileConfig(path)
	if err != nil {
		if strict {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		fileConfig = &FileConfig{}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var overrides envConfig
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	timeout := DefaultModelTimeout
	if fileConfig.ModelTimeout != "" {
		d, err := time.ParseDuration(fileConfig.ModelTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid model_timeout %q: %w", fileConfig.ModelTimeout, err)
		}
		timeout = d
	}

	aliases := DefaultAliases()
	aliases.Merge(fileConfig.Aliases)

	cfg := &Config{
		Provider: firstNonEmpty(overrides.Provider, fileConfig.Provider, DefaultProvider),
		Model:    firstNonEmpty(overrides.Model, fileConfig.Model),
		APIKeys: APIKeysConfig{
			Google:    firstNonEmpty(overrides.GeminiAPIKey, overrides.PublicGeminiAPIKey, overrides.GoogleAPIKey, fileConfig.APIKeys.Google),
			OpenAI:    firstNonEmpty(overrides.OpenAIAPIKey, fileConfig.APIKeys.OpenAI),
			Anthropic: firstNonEmpty(overrides.AnthropicAPIKey, fileConfig.APIKeys.Anthropic),
			DeepSeek:  firstNonEmpty(overrides.DeepSeekAPIKey, fileConfig.APIKeys.DeepSeek),
		},
		Addr:          firstNonEmpty(overrides.Addr, fileConfig.Server.Addr, DefaultAddr),
		DBPath:        firstNonEmpty(overrides.DBPath, fileConfig.Database.Path, filepath.Join(configDir, "acemock.db")),
		LogLevel:      firstNonEmpty(overrides.LogLevel, fileConfig.Logging.Level, DefaultLogLevel),
		LogFile:       firstNonEmpty(overrides.LogFile, fileConfig.Logging.File),
		ModelTimeout:  timeout,
		QuestionCount: fileConfig.QuestionCount,
		ConfigDir:     configDir,
		Aliases:       aliases,
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if overrides.ModelTimeout > 0 {
		cfg.ModelTimeout = overrides.ModelTimeout
	}
	if overrides.QuestionCount > 0 {
		cfg.QuestionCount = overrides.QuestionCount
	}
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = DefaultQuestionCount
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = DefaultModelTimeout
	}

	if cfg.Model == "" {
		cfg.Model = aliases.DefaultModel(cfg.Provider)
	}
	cfg.Model = aliases.Resolve(cfg.Model)

	return cfg, nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	return c.APIKeys.For(name) != "" || name == "mock"
}

// Credentials resolves the configured provider into either Configured or
// Unconfigured. The mock provider never needs a key.
func (c *Config) Credentials() Credentials {
	if c == nil {
		return Unconfigured{}
	}
	if c.Provider == "mock" {
		return Configured{Provider: c.Provider}
	}
	key := c.APIKeys.For(c.Provider)
	if key == "" {
		return Unconfigured{}
	}
	return Configured{Provider: c.Provider, APIKey: key}
}

// For returns the key configured for an adapter name.
func (k APIKeysConfig) For(name string) string {
	switch name {
	case "google":
		return k.Google
	case "openai":
		return k.OpenAI
	case "anthropic":
		return k.Anthropic
	case "deepseek":
		return k.DeepSeek
	default:
		return ""
	}
}

// loadFileConfig reads the config file. A missing file yields an empty config.
func loadFileConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".acemock")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
