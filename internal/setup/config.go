package setup

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	RailSchemaPath  string
	NumReasks       int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	Sequential      bool
	StreamOnReask   string
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string
	HistoryDBPath   string
	RedisAddr       string
	RedisPassword   string
	RedisStream     string
	RedisGroup      string
	ConsumerName    string
}

func LoadConfig() *Config {
	return &Config{
		RailSchemaPath:  getEnv("RAIL_SCHEMA_PATH", "schemas/example.rail"),
		NumReasks:       getEnvInt("NUM_REASKS", 2),
		BaseDelay:       getEnvDuration("REASK_BASE_DELAY", time.Second),
		MaxDelay:        getEnvDuration("REASK_MAX_DELAY", 30*time.Second),
		Sequential:      getEnvBool("SEQUENTIAL_VALIDATION", false),
		StreamOnReask:   getEnv("STREAM_ON_REASK", "exception"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		HistoryDBPath:   getEnv("HISTORY_DB_PATH", ""),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisStream:     getEnv("REDIS_STREAM", "guard-events"),
		RedisGroup:      getEnv("REDIS_GROUP", "guard-group"),
		ConsumerName:    getEnv("HOSTNAME", "guard-agent"),
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
