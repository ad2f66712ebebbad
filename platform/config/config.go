// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq background queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// CacheConfig provides settings for the Redis read cache.
type CacheConfig interface {
	GetRedisURL() string
	GetLeadCacheTTL() time.Duration
}

// LeadsConfig provides settings for the lead lifecycle.
type LeadsConfig interface {
	IsLostReasonRequired() bool
	GetClientEmailPlaceholderDomain() string
}

// SMTPConfig provides settings for outbound notification email.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetWonNotificationRecipients() []string
	IsSMTPEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// LostReasonPolicy controls whether entering the lost stage requires a reason.
const (
	LostReasonLenient = "lenient"
	LostReasonStrict  = "strict"
)

// Config holds all application configuration values.
type Config struct {
	Env                       string
	HTTPAddr                  string
	DatabaseURL               string
	JWTAccessSecret           string
	CORSAllowAll              bool
	CORSOrigins               []string
	CORSAllowCreds            bool
	RedisURL                  string
	RedisTLSInsecure          bool
	AsynqQueueName            string
	AsynqConcurrency          int
	LeadCacheTTL              time.Duration
	LostReasonPolicy          string
	ClientEmailPlaceholder    string
	SMTPHost                  string
	SMTPPort                  int
	SMTPUsername              string
	SMTPPassword              string
	EmailFromName             string
	EmailFromAddress          string
	WonNotificationRecipients []string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// CacheConfig implementation
func (c *Config) GetLeadCacheTTL() time.Duration { return c.LeadCacheTTL }

// LeadsConfig implementation
func (c *Config) IsLostReasonRequired() bool {
	return c.LostReasonPolicy == LostReasonStrict
}
func (c *Config) GetClientEmailPlaceholderDomain() string { return c.ClientEmailPlaceholder }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string                     { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                        { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string                 { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string                 { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string                { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string             { return c.EmailFromAddress }
func (c *Config) GetWonNotificationRecipients() []string  { return c.WonNotificationRecipients }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && len(c.WonNotificationRecipients) > 0
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                       getEnv("APP_ENV", "development"),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		JWTAccessSecret:           getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:              corsAllowAll,
		CORSOrigins:               corsOrigins,
		CORSAllowCreds:            strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                  getEnv("REDIS_URL", ""),
		RedisTLSInsecure:          strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:            getEnv("ASYNQ_QUEUE", "audit"),
		AsynqConcurrency:          mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		LeadCacheTTL:              mustDuration(getEnv("LEAD_CACHE_TTL", "5m")),
		LostReasonPolicy:          strings.ToLower(strings.TrimSpace(getEnv("LEAD_LOST_REASON_POLICY", LostReasonLenient))),
		ClientEmailPlaceholder:    getEnv("CLIENT_EMAIL_PLACEHOLDER_DOMAIN", "placeholder.invalid"),
		SMTPHost:                  getEnv("SMTP_HOST", ""),
		SMTPPort:                  mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:              getEnv("SMTP_USERNAME", ""),
		SMTPPassword:              getEnv("SMTP_PASSWORD", ""),
		EmailFromName:             getEnv("EMAIL_FROM_NAME", "Sales Back Office"),
		EmailFromAddress:          getEnv("EMAIL_FROM_ADDRESS", ""),
		WonNotificationRecipients: splitCSV(getEnv("WON_NOTIFICATION_RECIPIENTS", "")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.LostReasonPolicy != LostReasonLenient && c.LostReasonPolicy != LostReasonStrict {
		return fmt.Errorf("LEAD_LOST_REASON_POLICY must be %q or %q", LostReasonLenient, LostReasonStrict)
	}
	if strings.TrimSpace(c.ClientEmailPlaceholder) == "" {
		return fmt.Errorf("CLIENT_EMAIL_PLACEHOLDER_DOMAIN cannot be empty")
	}
	if c.IsSMTPEnabled() && c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when SMTP is enabled")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
