package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis (session store)
	RedisURL string

	// Ollama
	OllamaBaseURL string
	DefaultModel  string

	// Generation
	MaxTokens   int
	Temperature float64
	TopP        float64

	// Chat
	ChatHistoryLimit int

	// Misc
	Debug       bool
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "5000"),
		Env:              getEnvOrDefault("ENV", "development"),
		DatabaseURL:      mustGetEnv("DATABASE_URL"),
		RedisURL:         mustGetEnv("REDIS_URL"),
		OllamaBaseURL:    getEnvOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		DefaultModel:     getEnvOrDefault("DEFAULT_MODEL", "llama2:7b"),
		MaxTokens:        getEnvAsIntOrDefault("MAX_TOKENS", 2048),
		Temperature:      getEnvAsFloatOrDefault("TEMPERATURE", 0.3),
		TopP:             getEnvAsFloatOrDefault("TOP_P", 0.9),
		ChatHistoryLimit: getEnvAsIntOrDefault("CHAT_HISTORY_LIMIT", 50),
		Debug:            getEnvAsBoolOrDefault("DEBUG", true),
		FrontendURL:      getEnvOrDefault("FRONTEND_URL", "http://localhost:5000"),
	}

	return cfg
}

// AvailableModels is the static catalog offered in the model picker. The live
// list still comes from the Ollama server at request time.
var AvailableModels = []string{
	"llama2:7b",
	"llama2:13b",
	"llama2:70b",
	"mistral:7b",
	"codellama:7b",
	"llama2:7b-chat",
	"llama2:13b-chat",
}

// ModelDescriptions maps catalog entries to the blurb shown in the UI.
var ModelDescriptions = map[string]string{
	"llama2:7b":       "Fast, lightweight model (4GB RAM)",
	"llama2:13b":      "Balanced performance (8GB RAM)",
	"llama2:70b":      "Best quality, requires more resources (16GB+ RAM)",
	"mistral:7b":      "Excellent performance/size ratio (4GB RAM)",
	"codellama:7b":    "Specialized for coding tasks (4GB RAM)",
	"llama2:7b-chat":  "Chat-optimized 7B model (4GB RAM)",
	"llama2:13b-chat": "Chat-optimized 13B model (8GB RAM)",
}

// DefaultSystemPrompt is sent as the first message of every completion call.
const DefaultSystemPrompt = `You are a helpful AI assistant running locally on this machine.
You can help with various tasks including:
- Answering questions
- Writing and editing text
- Solving problems
- Providing explanations
- Helping with coding tasks

Be helpful, accurate, and concise in your responses.`

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
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

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
