package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // minimal imajlarda Europe/Istanbul için

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DBDriver    string // "sqlite" | "postgres"
	DatabaseDSN string
	JWTSecret   string
	SessionTTL  time.Duration
	CORSOrigins string
	Location    *time.Location // giriş kodu bu saat dilimine göre hesaplanır
	LogLevel    string
	LogEncoding string

	Catalog Catalog
}

const defaultDSN = "data.db"

// Load .env dosyasını (varsa) okur, ardından ortam değişkenlerinden yapılandırmayı kurar.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "json"),
		Catalog:     DefaultCatalog(),
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL geçersiz: %w", err)
	}
	cfg.SessionTTL = ttl

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Europe/Istanbul"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE geçersiz: %w", err)
	}
	cfg.Location = loc

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("DB_DRIVER desteklenmiyor: %q", cfg.DBDriver)
	}

	return cfg, nil
}

// ValidateServe sunucu için zorunlu güvenlik ayarlarını kontrol eder.
func (c *Config) ValidateServe() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment değişkeni tanımlanmamış")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET en az 32 karakter olmalıdır")
	}
	return nil
}

// Warnings varsayılan değerde bırakılmış ayarlar için uyarı metinleri döner.
func (c *Config) Warnings() []string {
	var w []string
	if c.DBDriver == "sqlite" && c.DatabaseDSN == defaultDSN {
		w = append(w, "DATABASE_DSN varsayılan değer kullanılıyor (data.db)")
	}
	if c.CORSOrigins == "http://localhost:5173" {
		w = append(w, "CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için kendi domain'ini tanımla")
	}
	return w
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
