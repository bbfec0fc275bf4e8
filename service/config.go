package service

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string

	DB struct {
		SQLitePath  string
		DatabaseURL string
	}

	Supabase struct {
		URL string
		Key string
	}

	Session struct {
		Secret string
	}

	Admin struct {
		Username string
		Password string
	}

	Upload struct {
		MaxSize int64
		Dir     string
	}

	TemplatesDir string
	PublicDir    string
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine; production injects real env vars.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
	}

	// Database
	config.DB.SQLitePath = getEnv("DB_PATH", "./db/rsquare.db")
	config.DB.DatabaseURL = getEnv("DATABASE_URL", "")

	// Supabase
	config.Supabase.URL = getEnv("SUPABASE_URL", "")
	config.Supabase.Key = getEnv("SUPABASE_SERVICE_ROLE_KEY", "")

	// Session
	config.Session.Secret = getEnv("SESSION_SECRET", "development-secret")

	// Admin
	config.Admin.Username = getEnv("ADMIN_USERNAME", "admin")
	config.Admin.Password = getEnv("ADMIN_PASSWORD", "password")

	// Upload
	maxSize := getEnv("UPLOAD_MAX_SIZE", "5242880") // 5MB default
	if size, err := strconv.ParseInt(maxSize, 10, 64); err == nil {
		config.Upload.MaxSize = size
	} else {
		config.Upload.MaxSize = 5242880
	}
	config.Upload.Dir = getEnv("UPLOAD_DIR", "./public/uploads")

	config.TemplatesDir = getEnv("TEMPLATES_DIR", "./web/templates")
	config.PublicDir = getEnv("PUBLIC_DIR", "./public")

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
