package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderKeyword = "keyword"
	ProviderAgent   = "agent"
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
)

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Agent      AgentConfig      `mapstructure:"agent"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Workspace  WorkspaceConfig  `mapstructure:"workspace"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type ClassifierConfig struct {
	Provider string        `mapstructure:"provider"`
	AgentID  string        `mapstructure:"agent_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AgentConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
}

type WorkspaceConfig struct {
	Seed           bool   `mapstructure:"seed"`
	Sender         string `mapstructure:"sender"`
	Avatar         string `mapstructure:"avatar"`
	DefaultChannel string `mapstructure:"default_channel"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return DatabaseConfig{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		if _, err := fmt.Sscanf(u.Port(), "%d", &port); err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port %q: %w", u.Port(), err)
		}
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	// Empty defaults make the keys known to AutomaticEnv during Unmarshal.
	for _, key := range []string{
		"telegram.token", "database.password", "database.dbname",
		"agent.endpoint", "agent.api_key", "openai.api_key", "openai.base_url", "gemini.api_key",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", true)
	v.SetDefault("classifier.provider", ProviderKeyword)
	v.SetDefault("classifier.agent_id", "huddle-intelligence")
	v.SetDefault("classifier.timeout", 30*time.Second)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 400)
	v.SetDefault("openai.temperature", 0.2)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.temperature", 0.2)
	v.SetDefault("workspace.seed", true)
	v.SetDefault("workspace.sender", "You")
	v.SetDefault("workspace.avatar", "YO")
	v.SetDefault("workspace.default_channel", "general")
}

// LoadConfig reads the YAML file at path, if any, and applies environment
// overrides. HUDDLE_CLASSIFIER_PROVIDER overrides classifier.provider and so
// on; DATABASE_URL, TELEGRAM_TOKEN, OPENAI_API_KEY and GEMINI_API_KEY are
// honoured as well.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Enable environment variable support
	v.SetEnvPrefix("huddle")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Conventional unprefixed variables win over file values.
	for key, env := range map[string]string{
		"database_url":   "DATABASE_URL",
		"telegram_token": "TELEGRAM_TOKEN",
		"openai_api_key": "OPENAI_API_KEY",
		"gemini_api_key": "GEMINI_API_KEY",
	} {
		if err := v.BindEnv("env."+key, env); err != nil {
			return nil, err
		}
	}

	if dbURL := v.GetString("env.database_url"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if token := v.GetString("env.telegram_token"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("env.openai_api_key"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if apiKey := v.GetString("env.gemini_api_key"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}

	return &config, nil
}

// Validate checks that the selected classifier provider has what it needs.
func (c *Config) Validate() error {
	var errs []error

	switch c.Classifier.Provider {
	case ProviderKeyword:
	case ProviderAgent:
		if c.Agent.Endpoint == "" {
			errs = append(errs, errors.New("agent.endpoint is required for the agent provider"))
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("openai.api_key is required for the openai provider"))
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			errs = append(errs, errors.New("gemini.api_key is required for the gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown classifier provider %q", c.Classifier.Provider))
	}

	if c.Classifier.Timeout <= 0 {
		errs = append(errs, errors.New("classifier.timeout must be positive"))
	}
	if !c.Database.UseInMemory && c.Database.DBName == "" {
		errs = append(errs, errors.New("database.dbname is required unless database.use_in_memory is set"))
	}

	return errors.Join(errs...)
}
