// Package config reads server settings from the environment and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Word sources
const (
	WordSourceFile     = "file"
	WordSourcePostgres = "postgres"
)

// Config holds the game server settings
type Config struct {
	Port               string   `yaml:"port"`
	WordSource         string   `yaml:"word_source"`
	WordListPath       string   `yaml:"word_list_path"`
	MinWordLength      int      `yaml:"min_word_length"`
	RoundSeconds       int      `yaml:"round_seconds"`
	CorrectGuessPoints int      `yaml:"correct_guess_points"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	NATSURL            string   `yaml:"nats_url"`
	LogLevel           string   `yaml:"log_level"`
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		Port:               "8080",
		WordSource:         WordSourceFile,
		WordListPath:       "word_list.txt",
		MinWordLength:      5,
		RoundSeconds:       60,
		CorrectGuessPoints: 10,
		AllowedOrigins:     []string{"*"},
		LogLevel:           "info",
	}
}

// NewConfigFromEnv reads the environment on top of Default
func NewConfigFromEnv() Config {
	def := Default()

	cfg := Config{
		Port:               getEnv("PORT", def.Port),
		WordSource:         getEnv("WORD_SOURCE", def.WordSource),
		WordListPath:       getEnv("WORD_LIST_PATH", def.WordListPath),
		MinWordLength:      getEnvAsInt("MIN_WORD_LENGTH", def.MinWordLength),
		RoundSeconds:       getEnvAsInt("ROUND_SECONDS", def.RoundSeconds),
		CorrectGuessPoints: getEnvAsInt("CORRECT_GUESS_POINTS", def.CorrectGuessPoints),
		AllowedOrigins:     def.AllowedOrigins,
		NATSURL:            os.Getenv("NATS_URL"),
		LogLevel:           getEnv("LOG_LEVEL", def.LogLevel),
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	return cfg.sanitize()
}

// LoadFile overlays the YAML file at path onto base. Keys missing from the
// file keep the value from base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg = cfg.sanitize()
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c Config) Validate() error {
	switch c.WordSource {
	case WordSourceFile, WordSourcePostgres:
	default:
		return fmt.Errorf("unknown word source %q", c.WordSource)
	}
	if c.WordSource == WordSourceFile && c.WordListPath == "" {
		return fmt.Errorf("word_list_path is required for the file word source")
	}
	return nil
}

// RoundDuration is the countdown length of one round
func (c Config) RoundDuration() time.Duration {
	return time.Duration(c.RoundSeconds) * time.Second
}

// Addr is the listen address for the HTTP server
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) sanitize() Config {
	def := Default()
	if c.Port == "" {
		c.Port = def.Port
	}
	if c.WordSource == "" {
		c.WordSource = def.WordSource
	}
	c.WordSource = strings.ToLower(c.WordSource)
	if c.MinWordLength <= 0 {
		c.MinWordLength = def.MinWordLength
	}
	if c.RoundSeconds <= 0 {
		c.RoundSeconds = def.RoundSeconds
	}
	if c.CorrectGuessPoints <= 0 {
		c.CorrectGuessPoints = def.CorrectGuessPoints
	}
	c.AllowedOrigins = lo.Uniq(lo.Compact(c.AllowedOrigins))
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = def.AllowedOrigins
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	return c
}

func splitList(s string) []string {
	return lo.Map(strings.Split(s, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
