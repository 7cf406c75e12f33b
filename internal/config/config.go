package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"research-assistant/internal/domain"
)

const (
	defaultMaxFileSize = 10 * 1024 * 1024 // 10MB
	defaultSessionTTL  = time.Hour
	defaultLLMTimeout  = 60 * time.Second
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	UploadPath         string
	ArchiveUploads     bool
	MaxFileSize        int64
	LogLevel           string
	LogFile            string
	SessionTTL         time.Duration
	LLMProvider        string
	LLMModel           string
	LLMTimeout         time.Duration
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	AnthropicAPIKey    string
	GeminiAPIKey       string
	SupabaseURL        string
	SupabaseKey        string
	SupabaseBucket     string
	CORSAllowedOrigins []string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// PORT wins so PaaS platforms can assign the port.
		ServerPort:         getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8501")),
		UploadPath:         getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		ArchiveUploads:     getEnvBoolOrDefault("ARCHIVE_UPLOADS", false),
		MaxFileSize:        getEnvInt64OrDefault("MAX_FILE_SIZE", defaultMaxFileSize),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:            getEnvOrDefault("LOG_FILE", ""),
		SessionTTL:         getEnvDurationOrDefault("SESSION_TTL", defaultSessionTTL),
		LLMProvider:        strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "openai")),
		LLMModel:           getEnvOrDefault("LLM_MODEL", ""),
		LLMTimeout:         getEnvDurationOrDefault("LLM_TIMEOUT", defaultLLMTimeout),
		OpenAIAPIKey:       getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnvOrDefault("OPENAI_BASE_URL", ""),
		AnthropicAPIKey:    getEnvOrDefault("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:       getEnvOrDefault("GEMINI_API_KEY", ""),
		SupabaseURL:        getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:        getEnvOrDefault("SUPABASE_KEY", ""),
		SupabaseBucket:     getEnvOrDefault("SUPABASE_BUCKET", "uploads"),
		CORSAllowedOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:8501", "http://localhost:3000"}),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetArchiveUploads reports whether accepted uploads are copied to the archive
func (c *AppConfig) GetArchiveUploads() bool {
	return c.ArchiveUploads
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFile returns the rotated log file path, empty for stdout only
func (c *AppConfig) GetLogFile() string {
	return c.LogFile
}

// GetSessionTTL returns how long an idle session is kept
func (c *AppConfig) GetSessionTTL() time.Duration {
	return c.SessionTTL
}

// GetLLMProvider returns the model provider name
func (c *AppConfig) GetLLMProvider() string {
	return c.LLMProvider
}

// GetLLMModel returns the model override, empty for the provider default
func (c *AppConfig) GetLLMModel() string {
	return c.LLMModel
}

// GetLLMTimeout returns the per-call model timeout
func (c *AppConfig) GetLLMTimeout() time.Duration {
	return c.LLMTimeout
}

func (c *AppConfig) GetOpenAIAPIKey() string {
	return c.OpenAIAPIKey
}

func (c *AppConfig) GetOpenAIBaseURL() string {
	return c.OpenAIBaseURL
}

func (c *AppConfig) GetAnthropicAPIKey() string {
	return c.AnthropicAPIKey
}

func (c *AppConfig) GetGeminiAPIKey() string {
	return c.GeminiAPIKey
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase service key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseBucket returns the storage bucket for archived uploads
func (c *AppConfig) GetSupabaseBucket() string {
	return c.SupabaseBucket
}

// GetCORSAllowedOrigins returns the origins allowed to call the JSON API
func (c *AppConfig) GetCORSAllowedOrigins() []string {
	return c.CORSAllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
