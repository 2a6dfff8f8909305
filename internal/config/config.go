package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the alumnidex configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Database drivers.
const (
	DriverRedis    = "redis"
	DriverEmbedded = "embedded"
)

// DatabaseConfig holds profile store and session cache settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, embedded (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Path             string   `yaml:"path"` // embedded only; empty keeps data in memory
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LLMConfig holds the language-model provider settings.
type LLMConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
	Enrich    bool   `yaml:"enrich"`    // write match notes for shown profiles
	PoolSize  int    `yaml:"pool_size"` // concurrent enrichment calls
}

// SearchConfig holds the tunables of the search pipeline.
type SearchConfig struct {
	PageSize          int           `yaml:"page_size"`
	MaxCandidates     int           `yaml:"max_candidates"`
	MinStrictResults  int           `yaml:"min_strict_results"`
	MinScore          float64       `yaml:"min_score"`
	OverflowTTLSec    int           `yaml:"overflow_ttl_sec"`
	SessionTTLSec     int           `yaml:"session_ttl_sec"`
	TurnTimeoutSec    int           `yaml:"turn_timeout_sec"`
	EnrichTimeoutMs   int           `yaml:"enrich_timeout_ms"`
	ReplyCeiling      int           `yaml:"reply_ceiling"`
	SuggestionSample  *int          `yaml:"suggestion_sample"`
	MaxQueryRunes     int           `yaml:"max_query_runes"`
	ContinuationWords []string      `yaml:"continuation_words"`
	Weights           WeightsConfig `yaml:"weights"`
}

// WeightsConfig overrides the scoring table. Zero fields keep the built-in weight.
type WeightsConfig struct {
	NameExact    float64 `yaml:"name_exact"`
	NamePartial  float64 `yaml:"name_partial"`
	NameToken    float64 `yaml:"name_token"`
	Skill        float64 `yaml:"skill"`
	Location     float64 `yaml:"location"`
	Education    float64 `yaml:"education"`
	Company      float64 `yaml:"company"`
	Role         float64 `yaml:"role"`
	Keyword      float64 `yaml:"keyword"`
	Completeness float64 `yaml:"completeness"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "alumnidex:"
	}
	if c.LLM.TimeoutMs <= 0 {
		c.LLM.TimeoutMs = 30000
	}
	if c.LLM.PoolSize <= 0 {
		c.LLM.PoolSize = 4
	}

	s := &c.Search
	if s.PageSize <= 0 {
		s.PageSize = 3
	}
	if s.MaxCandidates <= 0 {
		s.MaxCandidates = 50
	}
	if s.MinStrictResults <= 0 {
		s.MinStrictResults = 5
	}
	if s.MinScore <= 0 {
		s.MinScore = 10
	}
	if s.OverflowTTLSec <= 0 {
		s.OverflowTTLSec = 600
	}
	if s.SessionTTLSec <= 0 {
		s.SessionTTLSec = 1800
	}
	if s.TurnTimeoutSec <= 0 {
		s.TurnTimeoutSec = 45
	}
	if s.EnrichTimeoutMs <= 0 {
		s.EnrichTimeoutMs = 8000
	}
	if s.ReplyCeiling <= 0 {
		s.ReplyCeiling = 1500
	}
	if s.SuggestionSample == nil {
		n := 3
		s.SuggestionSample = &n
	}
	if s.MaxQueryRunes <= 0 {
		s.MaxQueryRunes = 500
	}
	if len(s.ContinuationWords) == 0 {
		s.ContinuationWords = []string{"more", "next", "continue"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis driver")
		}
	case DriverEmbedded:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverEmbedded, c.Database.Driver)
	}
	if c.LLM.Enabled && c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required when llm.enabled is true")
	}
	if c.Search.PageSize > 10 {
		return fmt.Errorf("search.page_size must be at most 10, got %d", c.Search.PageSize)
	}
	if c.Search.ReplyCeiling < 200 {
		return fmt.Errorf("search.reply_ceiling must be at least 200, got %d", c.Search.ReplyCeiling)
	}
	if c.Search.SuggestionSample != nil && *c.Search.SuggestionSample < 0 {
		return fmt.Errorf("search.suggestion_sample must not be negative")
	}
	if c.HTTP.WriteTimeoutSec <= c.Search.TurnTimeoutSec {
		return fmt.Errorf("http.write_timeout_sec (%d) must exceed search.turn_timeout_sec (%d)",
			c.HTTP.WriteTimeoutSec, c.Search.TurnTimeoutSec)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
