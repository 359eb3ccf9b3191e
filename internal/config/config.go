package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server     ServerConfig
	AI         AIConfig
	Discussion DiscussionConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	disc, err := loadDiscussionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Discussion: disc}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig configures the optional enrichment model. The simulation is fully
// functional without it; enrichment only polishes wording.
type AIConfig struct {
	APIKey         string
	AccessKey      string
	SecretKey      string
	Model          string
	BaseURL        string
	Region         string
	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	TimeoutSeconds int
	MaxRetries     int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY + ARK_MODEL, or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeout := 20
	if v, err := parseOptionalIntEnv("ENRICH_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if v != nil && *v > 0 {
		timeout = *v
	}

	retries := 2
	if v, err := parseOptionalIntEnv("ENRICH_MAX_RETRIES"); err != nil {
		return AIConfig{}, err
	} else if v != nil && *v >= 0 {
		retries = *v
	}

	return AIConfig{
		APIKey:         strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:        getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:         getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		TimeoutSeconds: timeout,
		MaxRetries:     retries,
	}, nil
}

// DiscussionConfig tunes the simulated discussion run.
type DiscussionConfig struct {
	// StepDelayMS paces transcript entries so live feeds read naturally.
	// Zero means no pacing (tests, offline tool).
	StepDelayMS int
	// DefaultPersonaCount is used when a generation request omits the count.
	DefaultPersonaCount int
	// TablesFile optionally points at a YAML file overriding the heuristic
	// weight and keyword tables.
	TablesFile string
	Tables     Tables
}

func loadDiscussionConfig() (DiscussionConfig, error) {
	delay := 150
	if v, err := parseOptionalIntEnv("DISCUSSION_STEP_DELAY_MS"); err != nil {
		return DiscussionConfig{}, err
	} else if v != nil && *v >= 0 {
		delay = *v
	}

	count := 6
	if v, err := parseOptionalIntEnv("DISCUSSION_DEFAULT_PERSONAS"); err != nil {
		return DiscussionConfig{}, err
	} else if v != nil && *v > 0 {
		count = *v
	}

	tablesFile := strings.TrimSpace(os.Getenv("DISCUSSION_TABLES_FILE"))
	tables, err := LoadTables(tablesFile)
	if err != nil {
		return DiscussionConfig{}, err
	}

	return DiscussionConfig{
		StepDelayMS:         delay,
		DefaultPersonaCount: count,
		TablesFile:          tablesFile,
		Tables:              tables,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
