package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Generate Generate `mapstructure:"generate"`
	Server   Server   `mapstructure:"server"`
	Output   Output   `mapstructure:"output"`
	Clients  Clients  `mapstructure:"clients"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Generate holds article generation configuration
type Generate struct {
	DefaultWordRange string `mapstructure:"default_word_range"`
	ExpansionRounds  int    `mapstructure:"expansion_rounds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	RetryBaseDelay   string `mapstructure:"retry_base_delay"`
	HistoryLimit     int    `mapstructure:"history_limit"`
}

// Server holds web server configuration
type Server struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	TemplatesDir string `mapstructure:"templates_dir"`
	MaxUploadMB  int64  `mapstructure:"max_upload_mb"`
}

// Output holds document export configuration
type Output struct {
	Directory string `mapstructure:"directory"`
	LogoPath  string `mapstructure:"logo_path"`
}

// Clients holds client profile configuration
type Clients struct {
	Directory      string `mapstructure:"directory"`
	DefaultProfile string `mapstructure:"default_profile"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".aivan")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Apply post-processing
	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash-preview-05-20")
	viper.SetDefault("ai.gemini.timeout", "120s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	// Generation defaults
	viper.SetDefault("generate.default_word_range", "750-1500")
	viper.SetDefault("generate.expansion_rounds", 2)
	viper.SetDefault("generate.max_retries", 3)
	viper.SetDefault("generate.retry_base_delay", "5s")
	viper.SetDefault("generate.history_limit", 10)

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.templates_dir", "web/templates")
	viper.SetDefault("server.max_upload_mb", 16)

	// Output defaults
	viper.SetDefault("output.directory", "exports")
	viper.SetDefault("output.logo_path", "")

	// Clients defaults
	viper.SetDefault("clients.directory", "clients")
	viper.SetDefault("clients.default_profile", "marketing_junction")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stdout")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"AIVAN_DEBUG",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
		"AIVAN_PORT",
	})

	bindEnvKeys("output.logo_path", []string{
		"AIVAN_LOGO_PATH",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Output.Directory != "" {
		config.Output.Directory = expandPath(config.Output.Directory)
	}
	if config.Output.LogoPath != "" {
		config.Output.LogoPath = expandPath(config.Output.LogoPath)
	}
	if config.Clients.Directory != "" {
		config.Clients.Directory = expandPath(config.Clients.Directory)
	}

	durations := map[string]string{
		"ai.gemini.timeout":         config.AI.Gemini.Timeout,
		"generate.retry_base_delay": config.Generate.RetryBaseDelay,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// validateConfig checks configuration invariants that would otherwise
// surface as confusing runtime failures.
func validateConfig(config *Config) error {
	if config.Generate.ExpansionRounds < 0 {
		return fmt.Errorf("generate.expansion_rounds must not be negative")
	}
	if config.Generate.MaxRetries < 1 {
		return fmt.Errorf("generate.max_retries must be at least 1")
	}
	if config.Generate.HistoryLimit < 1 {
		return fmt.Errorf("generate.history_limit must be at least 1")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", config.Server.Port)
	}
	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// GeminiTimeout returns the parsed Gemini request timeout.
func (c *Config) GeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Gemini.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// RetryBaseDelay returns the parsed base delay for retry backoff.
func (c *Config) RetryBaseDelay() time.Duration {
	d, err := time.ParseDuration(c.Generate.RetryBaseDelay)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}
