package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks settings that must stop the process before any
// source is processed.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Env        string           `yaml:"env"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Completion CompletionConfig `yaml:"completion"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Redis      RedisConfig      `yaml:"redis"`
	Server     ServerConfig     `yaml:"server"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console|json
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres|sqlite
	URL    string `yaml:"url"`
}

type CompletionConfig struct {
	Provider       string        `yaml:"provider"` // anthropic|openai|cli|mock
	AnthropicKey   string        `yaml:"anthropic_api_key"`
	AnthropicModel string        `yaml:"anthropic_model"`
	OpenAIKey      string        `yaml:"openai_api_key"`
	OpenAIModel    string        `yaml:"openai_model"`
	OpenAIBaseURL  string        `yaml:"openai_base_url"`
	CLIPath        string        `yaml:"cli_path"`
	Timeout        time.Duration `yaml:"timeout"`
}

type PipelineConfig struct {
	QuestionsPerSource    int           `yaml:"questions_per_source"`
	MaxAttempts           int           `yaml:"max_attempts"`
	RetryDelay            time.Duration `yaml:"retry_delay"`
	HardFloor             int           `yaml:"hard_floor"`
	MaxChunks             int           `yaml:"max_chunks"`
	MaxContentChars       int           `yaml:"max_content_chars"`
	InsertBatchSize       int           `yaml:"insert_batch_size"`
	GenerationTemperature float64       `yaml:"generation_temperature"`
	GenerationMaxTokens   int           `yaml:"generation_max_tokens"`
	ExtractionTemperature float64       `yaml:"extraction_temperature"`
	ExtractionMaxTokens   int           `yaml:"extraction_max_tokens"`
}

type RedisConfig struct {
	URL     string        `yaml:"url"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

type ServerConfig struct {
	Port              string   `yaml:"port"`
	JWTSecret         string   `yaml:"jwt_secret"`
	AdminPasswordHash string   `yaml:"admin_password_hash"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

func Defaults() *Config {
	return &Config{
		Env: "development",
		Log: LogConfig{Level: "info", Format: "console"},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		Completion: CompletionConfig{
			Provider:       "anthropic",
			AnthropicModel: "claude-sonnet-4-5-20250929",
			OpenAIModel:    "gpt-4o-mini",
			CLIPath:        "claude",
			Timeout:        120 * time.Second,
		},
		Pipeline: PipelineConfig{
			QuestionsPerSource:    20,
			MaxAttempts:           3,
			RetryDelay:            2 * time.Second,
			HardFloor:             15,
			MaxChunks:             30,
			MaxContentChars:       12000,
			InsertBatchSize:       50,
			GenerationTemperature: 0.8,
			GenerationMaxTokens:   10000,
			ExtractionTemperature: 0.3,
			ExtractionMaxTokens:   4000,
		},
		Redis: RedisConfig{LockTTL: 2 * time.Hour},
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence (environment wins). A .env
// file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if cfg.Database.URL == "" && cfg.Database.Driver == "postgres" {
		cfg.Database.URL = postgresURLFromParts()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Env = getEnvOrDefault("ENV", c.Env)
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)

	c.Database.Driver = getEnvOrDefault("DB_DRIVER", c.Database.Driver)
	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)

	cc := &c.Completion
	cc.Provider = getEnvOrDefault("COMPLETION_PROVIDER", cc.Provider)
	cc.AnthropicKey = getEnvOrDefault("ANTHROPIC_API_KEY", cc.AnthropicKey)
	cc.AnthropicModel = getEnvOrDefault("ANTHROPIC_MODEL", cc.AnthropicModel)
	cc.OpenAIKey = getEnvOrDefault("OPENAI_API_KEY", cc.OpenAIKey)
	cc.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", cc.OpenAIModel)
	cc.OpenAIBaseURL = getEnvOrDefault("OPENAI_BASE_URL", cc.OpenAIBaseURL)
	cc.CLIPath = getEnvOrDefault("CLI_PATH", cc.CLIPath)
	cc.Timeout = getEnvAsDurationOrDefault("COMPLETION_TIMEOUT", cc.Timeout)

	p := &c.Pipeline
	p.QuestionsPerSource = getEnvAsIntOrDefault("QUESTIONS_PER_SOURCE", p.QuestionsPerSource)
	p.MaxAttempts = getEnvAsIntOrDefault("MAX_ATTEMPTS", p.MaxAttempts)
	p.RetryDelay = getEnvAsDurationOrDefault("RETRY_DELAY", p.RetryDelay)
	p.HardFloor = getEnvAsIntOrDefault("HARD_FLOOR", p.HardFloor)
	p.MaxChunks = getEnvAsIntOrDefault("MAX_CHUNKS", p.MaxChunks)
	p.MaxContentChars = getEnvAsIntOrDefault("MAX_CONTENT_CHARS", p.MaxContentChars)
	p.InsertBatchSize = getEnvAsIntOrDefault("INSERT_BATCH_SIZE", p.InsertBatchSize)

	c.Redis.URL = getEnvOrDefault("REDIS_URL", c.Redis.URL)
	c.Redis.LockTTL = getEnvAsDurationOrDefault("RUN_LOCK_TTL", c.Redis.LockTTL)

	s := &c.Server
	s.Port = getEnvOrDefault("PORT", s.Port)
	s.JWTSecret = getEnvOrDefault("JWT_SECRET", s.JWTSecret)
	s.AdminPasswordHash = getEnvOrDefault("ADMIN_PASSWORD_HASH", s.AdminPasswordHash)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		s.CORSOrigins = splitCSV(v)
	}
}

// Validate reports missing credentials and nonsensical pipeline settings.
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Database.URL == "" {
		problems = append(problems, "database url is required")
	}

	switch c.Completion.Provider {
	case "anthropic":
		if isPlaceholder(c.Completion.AnthropicKey) {
			problems = append(problems, "ANTHROPIC_API_KEY is missing or a placeholder")
		}
	case "openai":
		if isPlaceholder(c.Completion.OpenAIKey) {
			problems = append(problems, "OPENAI_API_KEY is missing or a placeholder")
		}
	case "cli":
		if c.Completion.CLIPath == "" {
			problems = append(problems, "cli path is required for the cli provider")
		}
	case "mock":
	default:
		problems = append(problems, fmt.Sprintf("unsupported completion provider %q", c.Completion.Provider))
	}

	p := c.Pipeline
	if p.QuestionsPerSource <= 0 || p.MaxAttempts <= 0 || p.HardFloor <= 0 ||
		p.MaxChunks <= 0 || p.MaxContentChars <= 0 || p.InsertBatchSize <= 0 {
		problems = append(problems, "pipeline limits must be positive")
	}
	if p.HardFloor > p.QuestionsPerSource {
		problems = append(problems, fmt.Sprintf("hard floor %d exceeds questions per source %d", p.HardFloor, p.QuestionsPerSource))
	}
	if p.RetryDelay < 0 {
		problems = append(problems, "retry delay must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ServerReady checks the extra settings cmd/server needs on top of Validate.
func (c *Config) ServerReady() error {
	if len(c.Server.JWTSecret) < 16 {
		return fmt.Errorf("%w: JWT_SECRET must be at least 16 characters", ErrInvalidConfig)
	}
	if c.Server.AdminPasswordHash == "" {
		return fmt.Errorf("%w: ADMIN_PASSWORD_HASH is required", ErrInvalidConfig)
	}
	return nil
}

func isPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || strings.HasPrefix(v, "your-") || strings.HasPrefix(v, "your_") || v == "changeme"
}

func postgresURLFromParts() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getEnvOrDefault("DB_USER", "assessments"), getEnvOrDefault("DB_PASSWORD", "assessments")),
		Host:   getEnvOrDefault("DB_HOST", "localhost") + ":" + getEnvOrDefault("DB_PORT", "5432"),
		Path:   "/" + getEnvOrDefault("DB_NAME", "assessments"),
	}
	q := url.Values{}
	q.Set("sslmode", getEnvOrDefault("DB_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
