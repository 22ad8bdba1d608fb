package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Repository under analysis
	Repo RepoConfig `yaml:"repo" mapstructure:"repo"`

	// Who is scored against whom
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`

	// Where facts are delivered
	Sink SinkConfig `yaml:"sink" mapstructure:"sink"`

	// Version-control tool settings
	Git GitConfig `yaml:"git" mapstructure:"git"`

	// Logging settings
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

type RepoConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Rehash string `yaml:"rehash" mapstructure:"rehash"` // empty = derived from root commit
}

type ScoringConfig struct {
	WindowDays int      `yaml:"window_days" mapstructure:"window_days"`
	Candidates []string `yaml:"candidates" mapstructure:"candidates"`
	Subject    []string `yaml:"subject" mapstructure:"subject"` // subject email aliases
}

type SinkConfig struct {
	Type   string `yaml:"type" mapstructure:"type"`     // "stdout", "sqlite", "postgres", "bolt", "redis", "neo4j", "http"
	Format string `yaml:"format" mapstructure:"format"` // stdout only: "auto", "text", "json", "yaml"
	DSN    string `yaml:"dsn" mapstructure:"dsn"`       // postgres
	Path   string `yaml:"path" mapstructure:"path"`     // sqlite, bolt

	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
	Neo4j Neo4jConfig `yaml:"neo4j" mapstructure:"neo4j"`
	HTTP  HTTPConfig  `yaml:"http" mapstructure:"http"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Key      string `yaml:"key" mapstructure:"key"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri" mapstructure:"uri"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
}

type HTTPConfig struct {
	URL       string        `yaml:"url" mapstructure:"url"`
	Token     string        `yaml:"token" mapstructure:"token"`
	BatchSize int           `yaml:"batch_size" mapstructure:"batch_size"`
	RPS       float64       `yaml:"rps" mapstructure:"rps"` // batches per second, 0 = unpaced
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type GitConfig struct {
	Binary string `yaml:"binary" mapstructure:"binary"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
	File  string `yaml:"file" mapstructure:"file"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Repo: RepoConfig{
			Path: ".",
		},
		Scoring: ScoringConfig{
			WindowDays: 120,
		},
		Sink: SinkConfig{
			Type:   "stdout",
			Format: "auto",
			Path:   filepath.Join(homeDir, ".colleagues", "facts.db"),
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  "colleagues:facts",
			},
			Neo4j: Neo4jConfig{
				URI:      "bolt://localhost:7687",
				User:     "neo4j",
				Database: "neo4j",
			},
			HTTP: HTTPConfig{
				BatchSize: 500,
				Timeout:   30 * time.Second,
			},
		},
		Git: GitConfig{
			Binary: "git",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Window returns the freshness window as a duration
func (c *Config) Window() time.Duration {
	return time.Duration(c.Scoring.WindowDays) * 24 * time.Hour
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	// Load .env files first (in order of precedence)
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults
	cfg := Default()
	v.SetDefault("repo", cfg.Repo)
	v.SetDefault("scoring", cfg.Scoring)
	v.SetDefault("sink", cfg.Sink)
	v.SetDefault("git", cfg.Git)
	v.SetDefault("log", cfg.Log)

	// Load from environment variables
	v.SetEnvPrefix("COLLEAGUES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Try to find config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath(".colleagues")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".colleagues"))
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// Unmarshal into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	// godotenv never overrides variables that are already set, so the first
	// file to define a key wins
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".colleagues", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		_ = godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if path := os.Getenv("COLLEAGUES_REPO_PATH"); path != "" {
		cfg.Repo.Path = expandPath(path)
	}
	if rehash := os.Getenv("COLLEAGUES_REPO_REHASH"); rehash != "" {
		cfg.Repo.Rehash = rehash
	}

	// Scoring configuration
	if days := os.Getenv("COLLEAGUES_WINDOW_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			cfg.Scoring.WindowDays = n
		}
	}
	if list := os.Getenv("COLLEAGUES_CANDIDATES"); list != "" {
		cfg.Scoring.Candidates = SplitList(list)
	}
	if list := os.Getenv("COLLEAGUES_SUBJECT"); list != "" {
		cfg.Scoring.Subject = SplitList(list)
	}

	// Sink configuration
	if sinkType := os.Getenv("COLLEAGUES_SINK_TYPE"); sinkType != "" {
		cfg.Sink.Type = sinkType
	}
	if dsn := os.Getenv("COLLEAGUES_SINK_DSN"); dsn != "" {
		cfg.Sink.DSN = dsn
	} else if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" && cfg.Sink.DSN == "" {
		cfg.Sink.DSN = dsn
	}
	if path := os.Getenv("COLLEAGUES_SINK_PATH"); path != "" {
		cfg.Sink.Path = expandPath(path)
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Sink.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Sink.Redis.Password = password
	}
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Sink.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		cfg.Sink.Neo4j.User = user
	}
	if password := os.Getenv("NEO4J_PASSWORD"); password != "" {
		cfg.Sink.Neo4j.Password = password
	}
	if url := os.Getenv("COLLEAGUES_API_URL"); url != "" {
		cfg.Sink.HTTP.URL = url
	}
	if token := os.Getenv("COLLEAGUES_API_TOKEN"); token != "" {
		cfg.Sink.HTTP.Token = token
	}

	// Logging configuration
	if level := os.Getenv("COLLEAGUES_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if file := os.Getenv("COLLEAGUES_LOG_FILE"); file != "" {
		cfg.Log.File = expandPath(file)
	}
}

// SplitList splits a comma separated list, trimming blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("repo", c.Repo)
	v.Set("scoring", c.Scoring)
	v.Set("sink", c.Sink)
	v.Set("git", c.Git)
	v.Set("log", c.Log)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
