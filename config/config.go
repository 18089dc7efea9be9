package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	JWT       JWTConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Upload    UploadConfig
	NATS      NATSConfig
	Orders    OrdersConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins []string
	AdminDir    string
}

type MongoConfig struct {
	URI     string
	DB      string
	Timeout time.Duration
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type LogConfig struct {
	Level string
}

type CatalogConfig struct {
	// FallbackFile receives product writes when the database is unreachable.
	FallbackFile string
}

type UploadConfig struct {
	Dir         string
	PublicPath  string
	MaxBytes    int64
	S3Bucket    string
	S3PublicURL string
}

type NATSConfig struct {
	URL string
}

type OrdersConfig struct {
	LegacyQuery  bool
	StrictTotals bool
	GuestLookup  bool
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found, using process environment")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(GetEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(GetEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads the .env file (if any) and builds the typed configuration.
func Load() (*Config, error) {
	LoadEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:        GetEnv("PORT", "3000"),
			Env:         GetEnv("APP_ENV", "development"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
			AdminDir:    GetEnv("ADMIN_DIR", "public/admin"),
		},
		Mongo: MongoConfig{
			URI:     GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			DB:      GetEnv("MONGODB_DB", "scrubline"),
			Timeout: getEnvAsDuration("DB_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			Secret:          GetEnv("JWT_SECRET", ""),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: GetEnv("LOG_LEVEL", "info"),
		},
		Catalog: CatalogConfig{
			FallbackFile: GetEnv("PRODUCTS_FALLBACK_FILE", "data/products.json"),
		},
		Upload: UploadConfig{
			Dir:         GetEnv("UPLOAD_DIR", "public/uploads"),
			PublicPath:  GetEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
			MaxBytes:    int64(getEnvAsInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
			S3Bucket:    GetEnv("UPLOAD_S3_BUCKET", ""),
			S3PublicURL: GetEnv("UPLOAD_S3_PUBLIC_URL", ""),
		},
		NATS: NATSConfig{
			URL: GetEnv("NATS_URL", ""),
		},
		Orders: OrdersConfig{
			LegacyQuery:  getEnvAsBool("ORDERS_LEGACY_QUERY", true),
			StrictTotals: getEnvAsBool("ORDERS_STRICT_TOTALS", false),
			GuestLookup:  getEnvAsBool("ORDERS_GUEST_LOOKUP", true),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("AUTH_RATE_PER_MINUTE", 30),
			Burst:     getEnvAsInt("AUTH_RATE_BURST", 10),
		},
	}

	if cfg.JWT.Secret == "" && !cfg.IsProduction() {
		cfg.JWT.Secret = "dev-secret-change-me"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.Mongo.DB == "" {
		return fmt.Errorf("MONGODB_DB is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.ExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive")
	}
	// Credentialed CORS cannot use a wildcard origin.
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must list explicit origins, not *")
		}
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must be positive")
	}
	return nil
}
