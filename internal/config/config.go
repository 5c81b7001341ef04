package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the immutable per-invocation configuration. It is built once
// at process start and passed explicitly into every component; nothing
// mutates it afterwards.
type Config struct {
	Tumblr TumblrConfig `mapstructure:"tumblr"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Run    RunConfig    `mapstructure:"run"`
}

// TumblrConfig identifies the blog being tagged and the API credentials.
type TumblrConfig struct {
	Blog        string        `mapstructure:"blog"`
	APIBase     string        `mapstructure:"api_base"`
	APIKey      string        `mapstructure:"api_key"`
	AccessToken string        `mapstructure:"access_token"`
	PageDelay   time.Duration `mapstructure:"page_delay"`
}

// LLMConfig points at the OpenAI-compatible inference endpoint and names
// the two models in use.
type LLMConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	VisionModel string `mapstructure:"vision_model"`
	TagModel    string `mapstructure:"tag_model"`
}

// RunConfig bounds a listing-mode run.
type RunConfig struct {
	Quota     int           `mapstructure:"quota"`
	PostDelay time.Duration `mapstructure:"post_delay"`
}

// Load reads configuration from file and environment.
// Parameters:
//   - configPath: explicit config file path, or empty to search defaults.
//
// Returns:
//   - *Config: loaded configuration.
//   - error: non-nil if reading or unmarshaling fails.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("tumblr.api_base", "https://api.tumblr.com")
	v.SetDefault("tumblr.page_delay", "1s")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.vision_model", "gpt-4o-mini")
	v.SetDefault("llm.tag_model", "gpt-4o-mini")
	v.SetDefault("run.quota", 10)
	v.SetDefault("run.post_delay", "1s")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("tumblr.blog", "TUMBLR_BLOG")
	v.BindEnv("tumblr.api_key", "TUMBLR_API_KEY")
	v.BindEnv("tumblr.access_token", "TUMBLR_ACCESS_TOKEN")
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.base_url", "OPENAI_BASE_URL")
	v.BindEnv("llm.vision_model", "VISION_MODEL")
	v.BindEnv("llm.tag_model", "TAG_MODEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
