package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseFile string // Path to SQLite database file (default: ./auth.db)

	RedisAddr     string // Redis address (default: localhost:6379)
	RedisPassword string // Optional: Redis password
	RedisDB       int    // Redis logical database (default: 0)

	// Base64-encoded HMAC secrets, one per token purpose. All three are
	// required and must differ.
	AccessSecret  string
	RefreshSecret string
	ResetSecret   string

	AccessTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTTL time.Duration // Refresh token and session lifetime (default: 7 days)

	SMTPHost     string // Optional: mail is logged instead of sent when unset
	SMTPPort     int    // SMTP port (default: 587)
	SMTPUsername string
	SMTPPassword string
	MailFrom     string // Sender address for outbound mail

	// Frontend URL the password reset token is appended to.
	ResetURL string

	VNPayTmnCode    string // Merchant code issued by VNPay
	VNPayHashSecret string // Shared secret for payment URL signing
	VNPayPayURL     string // Gateway payment endpoint
	VNPayReturnURL  string // Where the gateway redirects customers afterwards
}

func LoadConfig() Config {
	return Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		ResetSecret:   os.Getenv("JWT_RESET_SECRET"),

		AccessTTL:  getEnvDurationOrDefault("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getEnvDurationOrDefault("JWT_REFRESH_TTL", 7*24*time.Hour),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnvOrDefault("MAIL_FROM", "no-reply@localhost"),

		ResetURL: getEnvOrDefault("RESET_PASSWORD_URL", "http://localhost:3000/reset-password"),

		VNPayTmnCode:    os.Getenv("VNPAY_TMN_CODE"),
		VNPayHashSecret: os.Getenv("VNPAY_HASH_SECRET"),
		VNPayPayURL: getEnvOrDefault(
			"VNPAY_PAY_URL",
			"https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		),
		VNPayReturnURL: os.Getenv("VNPAY_RETURN_URL"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
