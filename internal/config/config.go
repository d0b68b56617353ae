package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider selects the naming service backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Default model per provider.
const (
	DefaultOpenAIModel    = "gpt-4"
	DefaultAnthropicModel = "claude-3-sonnet-20240229"
)

// Config holds all configuration values.
type Config struct {
	// Naming service
	LLMProvider     Provider
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Lattice tool
	FCA4JPath  string
	JavaPath   string
	FCATimeout time.Duration

	// Concept filter
	MinRelevance  float64
	MinExtentSize int

	// Directories
	OutputDir  string
	LogsDir    string
	ReportsDir string

	// Logging
	LogLevel slog.Level

	// Optional Neo4j sink for the knowledge graph; empty URI disables it.
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPass     string
	Neo4jDatabase string
}

// Load reads configuration from environment variables, after loading a
// .env file from the working directory if one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LLMProvider:     Provider(strings.ToLower(getEnv("UMLFCA_LLM_PROVIDER", string(ProviderOpenAI)))),
		LLMModel:        getEnv("UMLFCA_LLM_MODEL", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		FCA4JPath:  getEnv("UMLFCA_FCA4J_PATH", "fca4j-cli-0.4.4.jar"),
		JavaPath:   getEnv("UMLFCA_JAVA", "java"),
		FCATimeout: parseDuration(getEnv("UMLFCA_FCA_TIMEOUT", ""), 300*time.Second),

		MinRelevance:  parseFloat(getEnv("UMLFCA_MIN_RELEVANCE", ""), 50),
		MinExtentSize: parseInt(getEnv("UMLFCA_MIN_EXTENT_SIZE", ""), 2),

		OutputDir:  getEnv("UMLFCA_OUTPUT_DIR", "output"),
		LogsDir:    getEnv("UMLFCA_LOGS_DIR", "logs"),
		ReportsDir: getEnv("UMLFCA_REPORTS_DIR", "reports"),

		LogLevel: parseLogLevel(getEnv("UMLFCA_LOG_LEVEL", "INFO")),

		Neo4jURI:      getEnv("UMLFCA_NEO4J_URI", ""),
		Neo4jUser:     getEnv("UMLFCA_NEO4J_USER", "neo4j"),
		Neo4jPass:     getEnv("UMLFCA_NEO4J_PASS", ""),
		Neo4jDatabase: getEnv("UMLFCA_NEO4J_DATABASE", ""),
	}
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	}
	return ""
}

// SetAPIKey stores key as the credential of the configured provider.
func (c *Config) SetAPIKey(key string) {
	switch c.LLMProvider {
	case ProviderOpenAI:
		c.OpenAIAPIKey = key
	case ProviderAnthropic:
		c.AnthropicAPIKey = key
	}
}

// Model returns the configured model, or the provider default.
func (c Config) Model() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	switch c.LLMProvider {
	case ProviderAnthropic:
		return DefaultAnthropicModel
	default:
		return DefaultOpenAIModel
	}
}

// fileConfig is the YAML layout accepted by LoadFile. Absent keys keep the
// current value.
type fileConfig struct {
	LLM struct {
		Provider        string `yaml:"provider"`
		Model           string `yaml:"model"`
		OpenAIAPIKey    string `yaml:"openai_api_key"`
		AnthropicAPIKey string `yaml:"anthropic_api_key"`
	} `yaml:"llm"`
	FCA struct {
		ToolPath      string   `yaml:"tool_path"`
		Java          string   `yaml:"java"`
		Timeout       string   `yaml:"timeout"`
		MinRelevance  *float64 `yaml:"min_relevance"`
		MinExtentSize *int     `yaml:"min_extent_size"`
	} `yaml:"fca"`
	Dirs struct {
		Output  string `yaml:"output"`
		Logs    string `yaml:"logs"`
		Reports string `yaml:"reports"`
	} `yaml:"dirs"`
	LogLevel string `yaml:"log_level"`
	Neo4j    struct {
		URI      string `yaml:"uri"`
		User     string `yaml:"user"`
		Pass     string `yaml:"pass"`
		Database string `yaml:"database"`
	} `yaml:"neo4j"`
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&fc.LLM.Provider, func(v string) { cfg.LLMProvider = Provider(strings.ToLower(v)) })
	setString(&fc.LLM.Model, func(v string) { cfg.LLMModel = v })
	setString(&fc.LLM.OpenAIAPIKey, func(v string) { cfg.OpenAIAPIKey = v })
	setString(&fc.LLM.AnthropicAPIKey, func(v string) { cfg.AnthropicAPIKey = v })

	setString(&fc.FCA.ToolPath, func(v string) { cfg.FCA4JPath = v })
	setString(&fc.FCA.Java, func(v string) { cfg.JavaPath = v })
	if fc.FCA.Timeout != "" {
		d, err := time.ParseDuration(fc.FCA.Timeout)
		if err != nil {
			return fmt.Errorf("parse fca.timeout: %w", err)
		}
		cfg.FCATimeout = d
	}
	if fc.FCA.MinRelevance != nil {
		cfg.MinRelevance = *fc.FCA.MinRelevance
	}
	if fc.FCA.MinExtentSize != nil {
		cfg.MinExtentSize = *fc.FCA.MinExtentSize
	}

	setString(&fc.Dirs.Output, func(v string) { cfg.OutputDir = v })
	setString(&fc.Dirs.Logs, func(v string) { cfg.LogsDir = v })
	setString(&fc.Dirs.Reports, func(v string) { cfg.ReportsDir = v })
	setString(&fc.LogLevel, func(v string) { cfg.LogLevel = parseLogLevel(v) })

	setString(&fc.Neo4j.URI, func(v string) { cfg.Neo4jURI = v })
	setString(&fc.Neo4j.User, func(v string) { cfg.Neo4jUser = v })
	setString(&fc.Neo4j.Pass, func(v string) { cfg.Neo4jPass = v })
	setString(&fc.Neo4j.Database, func(v string) { cfg.Neo4jDatabase = v })

	return nil
}

// Validate checks values that would make a run meaningless.
func (c Config) Validate() error {
	var errs []error
	if c.MinRelevance < 0 || c.MinRelevance > 100 {
		errs = append(errs, fmt.Errorf("min relevance %.2f outside [0,100]", c.MinRelevance))
	}
	if c.MinExtentSize < 1 {
		errs = append(errs, fmt.Errorf("min extent size %d must be at least 1", c.MinExtentSize))
	}
	if c.FCATimeout <= 0 {
		errs = append(errs, fmt.Errorf("fca timeout %s must be positive", c.FCATimeout))
	}
	return errors.Join(errs...)
}

func setString(v *string, apply func(string)) {
	if *v != "" {
		apply(*v)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseFloat(s string, defaultVal float64) float64 {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return defaultVal
}

func parseInt(s string, defaultVal int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return defaultVal
}

// parseDuration accepts Go durations ("90s") or a plain number of seconds.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
