package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Youtube struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CategoryID   string
}

type OpenAI struct {
	APIKey       string
	BaseURL      string
	ChatModel    string
	ImageModel   string
	ImageSize    string
	RequestLimit time.Duration
}

type Transcoder struct {
	Binary      string
	Timeout     time.Duration
	WorkDir     string
	EffectsFile string
}

type Config struct {
	HTTPAddr          string
	PostgresURI       string
	RedisURI          string
	AutoMigrate       bool
	FrontendURL       string
	AutomationWebhook string
	RetentionDays     int
	CacheTTL          time.Duration
	OperatorKey       string
	SecretKey         string
	CookieName        string
	R2                R2
	Youtube           Youtube
	OpenAI            OpenAI
	Transcoder        Transcoder
}

func LoadConfig() *Config {
	return &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":3000"),
		PostgresURI:       getEnv("POSTGRES_URI", ""),
		RedisURI:          getEnv("REDIS_URI", "127.0.0.1:6379"),
		AutoMigrate:       getEnvBool("AUTO_MIGRATE", false),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
		AutomationWebhook: getEnv("AUTOMATION_WEBHOOK_URL", ""),
		RetentionDays:     getEnvInt("RETENTION_DAYS", 60),
		CacheTTL:          getEnvDuration("CACHE_TTL", 5*time.Minute),
		OperatorKey:       getEnv("OPERATOR_KEY", ""),
		SecretKey:         getEnv("SECRET_KEY", ""),
		CookieName:        getEnv("COOKIE_NAME", "contentdesk_session"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Youtube: Youtube{
			ClientID:     getEnv("YOUTUBE_CLIENT_ID", ""),
			ClientSecret: getEnv("YOUTUBE_CLIENT_SECRET", ""),
			RefreshToken: getEnv("YOUTUBE_REFRESH_TOKEN", ""),
			CategoryID:   getEnv("YOUTUBE_CATEGORY_ID", "24"),
		},
		OpenAI: OpenAI{
			APIKey:       getEnv("OPENAI_KEY", ""),
			BaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			ChatModel:    getEnv("OPENAI_CHAT_MODEL", "gpt-4"),
			ImageModel:   getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
			ImageSize:    getEnv("OPENAI_IMAGE_SIZE", "1024x1024"),
			RequestLimit: getEnvDuration("OPENAI_TIMEOUT", 90*time.Second),
		},
		Transcoder: Transcoder{
			Binary:      getEnv("FFMPEG_BIN", "ffmpeg"),
			Timeout:     getEnvDuration("FFMPEG_TIMEOUT", 120*time.Second),
			WorkDir:     getEnv("RENDER_WORK_DIR", os.TempDir()),
			EffectsFile: getEnv("EFFECTS_FILE", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
