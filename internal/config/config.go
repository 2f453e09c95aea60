package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

const (
	minBcryptCost          = 4
	maxBcryptCost          = 31
	minProductionSecretLen = 16
)

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`
	APIBasePath string `json:"api_base_path"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DatabaseURL string `json:"database_url"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret  string        `json:"jwt_secret"`
	JWTExpiry  time.Duration `json:"jwt_expiry"`
	BcryptCost int           `json:"bcrypt_cost"`

	// HTTP edge
	CORSOrigins       []string      `json:"cors_origins"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	RateLimitRequests int           `json:"rate_limit_requests"`
	RateLimitWindow   time.Duration `json:"rate_limit_window"`
	SlowDownAfter     int           `json:"slow_down_after"`
	SlowDownDelay     time.Duration `json:"slow_down_delay"`

	// Initial administrator, created at startup when missing
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
	AdminAddress  string `json:"admin_address"`
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, APIBasePath: %s, DBDriver: %s, DatabaseURL: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DBPath: %s, LogLevel: %s, JWTSecret: [REDACTED], JWTExpiry: %s, BcryptCost: %d, CORSOrigins: %v, TrustedProxies: %v, RateLimit: %d/%s, SlowDown: %d/%s, AdminEmail: %s, AdminPassword: [REDACTED]}",
		c.Environment, c.Port, c.Host, c.APIBasePath, c.DBDriver, maskDatabaseURL(c.DatabaseURL), c.DBHost, c.DBName, c.DBUser,
		c.DBPath, c.LogLevel, c.JWTExpiry, c.BcryptCost, c.CORSOrigins, c.TrustedProxies, c.RateLimitRequests, c.RateLimitWindow, c.SlowDownAfter, c.SlowDownDelay, c.AdminEmail)
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DatabaseURL, durations and the JWT secret
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	jwtExpiry, err := time.ParseDuration(GetEnvWithDefault("JWT_EXPIRY", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}
	if jwtExpiry <= 0 {
		return nil, errors.New("JWT_EXPIRY must be positive")
	}

	bcryptCost, err := strconv.Atoi(GetEnvWithDefault("BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if bcryptCost < minBcryptCost || bcryptCost > maxBcryptCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", minBcryptCost, maxBcryptCost)
	}

	rateWindow, err := time.ParseDuration(GetEnvWithDefault("RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	slowDownDelay, err := time.ParseDuration(GetEnvWithDefault("SLOW_DOWN_DELAY", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLOW_DOWN_DELAY: %w", err)
	}

	trustedProxies := splitList(os.Getenv("TRUSTED_PROXIES"))
	for _, proxy := range trustedProxies {
		if !validProxy(proxy) {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: expected an IP or CIDR", proxy)
		}
	}

	config := &Config{
		Environment:       GetEnvWithDefault("APP_ENV", "development"),
		Port:              port,
		Host:              GetEnvWithDefault("APP_HOST", "localhost"),
		APIBasePath:       normalizeBasePath(GetEnvWithDefault("API_BASE_PATH", "/api")),
		DBDriver:          strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DatabaseURL:       dbURL,
		DBHost:            GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:            GetEnvWithDefault("DB_PORT", "5432"),
		DBName:            GetEnvWithDefault("DB_NAME", "store_ratings"),
		DBUser:            GetEnvWithDefault("DB_USER", "postgres"),
		DBPassword:        GetEnvWithDefault("DB_PASSWORD", ""),
		DBSSLMode:         GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:            GetEnvWithDefault("DB_PATH", "store_ratings.sqlite"),
		LogLevel:          GetEnvWithDefault("LOG_LEVEL", ""),
		JWTSecret:         GetEnvWithDefault("JWT_SECRET", "secret"),
		JWTExpiry:         jwtExpiry,
		BcryptCost:        bcryptCost,
		CORSOrigins:       splitList(GetEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
		TrustedProxies:    trustedProxies,
		RateLimitRequests: GetEnvAsType("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   rateWindow,
		SlowDownAfter:     GetEnvAsType("SLOW_DOWN_AFTER", 50),
		SlowDownDelay:     slowDownDelay,
		AdminName:         GetEnvWithDefault("ADMIN_NAME", "System Administrator"),
		AdminEmail:        GetEnvWithDefault("ADMIN_EMAIL", ""),
		AdminPassword:     GetEnvWithDefault("ADMIN_PASSWORD", ""),
		AdminAddress:      GetEnvWithDefault("ADMIN_ADDRESS", "Admin Address"),
	}

	if config.IsProduction() && len(config.JWTSecret) < minProductionSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters in production", minProductionSecretLen)
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// normalizeBasePath makes sure the path starts with a slash and has no trailing one.
// "/" and "" both mean routes are mounted at the root.
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func validProxy(proxy string) bool {
	if net.ParseIP(proxy) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(proxy)
	return err == nil
}

// splitList splits a comma separated value, dropping empty items
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		durationValue, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(durationValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
