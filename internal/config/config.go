package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv            string
	AppName           string
	APIPrefix         string
	AppPort           string
	DatabaseURL       string
	DatasetPath       string
	JWTSecret         string
	JWTAlgorithm      string
	JWTAudience       string
	JWTIssuer         string
	SessionTTLMinutes int
	CORSAllowOrigins  []string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	AITemperature     float64
	AIMaxOutputTokens int
	AITimeoutSeconds  int
	LogDebug          bool
	MQTTBroker        string
	MQTTTopicPrefix   string
	MQTTUsername      string
	MQTTPassword      string
}

func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		AppEnv:            getEnv("APP_ENV", "local"),
		AppName:           getEnv("APP_NAME", "Maya API"),
		APIPrefix:         getEnv("API_PREFIX", "/api/v1"),
		AppPort:           getEnv("APP_PORT", "8000"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DatasetPath:       getEnv("DATASET_PATH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTAlgorithm:      getEnv("JWT_ALGORITHM", "HS256"),
		JWTAudience:       getEnv("JWT_AUDIENCE", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", "maya-api"),
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 60),
		CORSAllowOrigins: getEnvCSV(
			"CORS_ALLOW_ORIGINS",
			[]string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
		),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		AITemperature:     getEnvFloat("AI_TEMPERATURE", 0.7),
		AIMaxOutputTokens: getEnvInt("AI_MAX_OUTPUT_TOKENS", 1024),
		AITimeoutSeconds:  getEnvInt("AI_TIMEOUT_SECONDS", 20),
		LogDebug:          getEnvBool("LOG_DEBUG", false),
		MQTTBroker:        getEnv("MQTT_BROKER", ""),
		MQTTTopicPrefix:   getEnv("MQTT_TOPIC_PREFIX", "maya"),
		MQTTUsername:      getEnv("MQTT_USERNAME", ""),
		MQTTPassword:      getEnv("MQTT_PASSWORD", ""),
	}
}

func (c Config) Validate() error {
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if secret == "change-me-in-production" {
		return errors.New("JWT_SECRET must not use insecure default value")
	}
	if len(secret) < 16 {
		return errors.New("JWT_SECRET is too short; use at least 16 characters")
	}
	if c.JWTAlgorithm != "HS256" && c.JWTAlgorithm != "HS384" && c.JWTAlgorithm != "HS512" {
		return errors.New("JWT_ALGORITHM must be one of HS256, HS384, HS512")
	}
	if c.SessionTTLMinutes <= 0 {
		return errors.New("SESSION_TTL_MINUTES must be positive")
	}
	if c.AITemperature < 0 || c.AITemperature > 2 {
		return errors.New("AI_TEMPERATURE must be between 0 and 2")
	}
	if c.AIMaxOutputTokens <= 0 {
		return errors.New("AI_MAX_OUTPUT_TOKENS must be positive")
	}
	return nil
}

// AIEnabled reports whether a provider key is configured. A missing key is
// an expected state and routes every turn to the rule-based replies.
func (c Config) AIEnabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}
