// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	DB struct {
		Host         string
		Port         string
		User         string
		Password     string
		DBName       string
		SSLMode      string
		MaxOpenConns int
		MaxIdleConns int
		ConnLifetime time.Duration
	}
	OpenAI struct {
		APIKey      string
		Model       string
		Timeout     time.Duration
		Temperature float64
		MaxTokens   int
	}
	Twilio struct {
		AccountSID     string
		AuthToken      string
		WhatsAppNumber string
	}
	MercadoPago struct {
		AccessToken string
		BaseURL     string
	}
	PDF struct {
		TempDir   string
		Retention time.Duration
	}
	Delivery struct {
		FollowUpDelay time.Duration
		// Public base URL under which rendered documents are served;
		// the messaging provider fetches media from here.
		DocumentBaseURL string
	}
	API struct {
		BaseURL string
	}
	Web struct {
		URL string
	}
	Development     bool
	ShutdownTimeout time.Duration
}

// Load loads the configuration from config.{yaml,json} with environment
// variables as fallback and override.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.nutriplan")

	v.SetDefault("Server.Port", "8080")
	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MaxIdleConns", 10)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)
	v.SetDefault("OpenAI.Model", "gpt-4o-mini")
	v.SetDefault("OpenAI.Timeout", 15*time.Second)
	v.SetDefault("OpenAI.Temperature", 0.7)
	v.SetDefault("OpenAI.MaxTokens", 2500)
	v.SetDefault("MercadoPago.BaseURL", "https://api.mercadopago.com")
	v.SetDefault("PDF.TempDir", "./temp")
	v.SetDefault("PDF.Retention", 5*time.Minute)
	v.SetDefault("Delivery.FollowUpDelay", 60*time.Second)
	v.SetDefault("API.BaseURL", "http://localhost:8080")
	v.SetDefault("Web.URL", "http://localhost:3000")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// No config file: build everything from environment variables.
		return fromEnv(), nil
	}

	// Resolve ${ENV_VAR} placeholders in config values.
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func fromEnv() *Config {
	cfg := &Config{}

	cfg.Server.Port = getEnvOr("SERVER_PORT", "8080")
	cfg.ShutdownTimeout = 10 * time.Second

	cfg.DB.Host = getEnvOr("DB_HOST", "localhost")
	cfg.DB.Port = getEnvOr("DB_PORT", "5432")
	cfg.DB.User = getEnvOr("DB_USER", "postgres")
	cfg.DB.Password = getEnvOr("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnvOr("DB_NAME", "nutriplan")
	cfg.DB.SSLMode = getEnvOr("DB_SSL_MODE", "disable")
	cfg.DB.MaxOpenConns = 20
	cfg.DB.MaxIdleConns = 10
	cfg.DB.ConnLifetime = 5 * time.Minute

	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAI.Model = getEnvOr("OPENAI_MODEL", "gpt-4o-mini")
	cfg.OpenAI.Timeout = 15 * time.Second
	cfg.OpenAI.Temperature = 0.7
	cfg.OpenAI.MaxTokens = 2500

	cfg.Twilio.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.Twilio.WhatsAppNumber = os.Getenv("TWILIO_WHATSAPP_NUMBER")

	cfg.MercadoPago.AccessToken = os.Getenv("MERCADOPAGO_ACCESS_TOKEN")
	cfg.MercadoPago.BaseURL = getEnvOr("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com")

	cfg.PDF.TempDir = getEnvOr("PDF_TEMP_DIR", "./temp")
	cfg.PDF.Retention = 5 * time.Minute

	cfg.Delivery.FollowUpDelay = 60 * time.Second
	cfg.API.BaseURL = getEnvOr("API_BASE_URL", "http://localhost:8080")
	cfg.Delivery.DocumentBaseURL = getEnvOr("DOCUMENT_BASE_URL", cfg.API.BaseURL+"/files")
	cfg.Web.URL = getEnvOr("WEB_URL", "http://localhost:3000")
	cfg.Development = os.Getenv("APP_ENV") == "development"

	return cfg
}

func getEnvOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
