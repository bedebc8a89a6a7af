package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	SecretKey         string
	Algorithm         string // "HS256" | "RS256"
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RegistrationTTL   time.Duration
	CookieMaxAge      int // seconds
	CookieSecure      bool

	OTPTTL            time.Duration
	OTPResendCooldown time.Duration
	OTPMaxAttempts    int
	OTPHashCost       int

	KVBackend        string // "memory" | "redis"
	KVMemoryCapacity int
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	Notifier         string // "smtp" | "sns" | "log"
	SMTPHost         string
	SMTPPort         string
	SMTPFrom         string
	SMTPUsername     string
	SMTPPassword     string
	SNSRegion        string
	SNSTopicARN      string
	EmailSendTimeout time.Duration

	AdminRedirect   string
	DeepLinkSchemes []string
	AllowedOrigins  []string // CORS allowed origins

	ConvertMaxUploadBytes int64
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	UserEmails    string
	Apps          string
	Packages      string
	APIDocs       string
	Transactions  string
	Subscriptions string
	Histories     string
	Logs          string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "8000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			UserEmails:    getEnv("DYNAMO_TABLE_USER_EMAILS", "user_emails"),
			Apps:          getEnv("DYNAMO_TABLE_APPS", "apps"),
			Packages:      getEnv("DYNAMO_TABLE_PACKAGES", "packages"),
			APIDocs:       getEnv("DYNAMO_TABLE_API_DOCS", "api_docs"),
			Transactions:  getEnv("DYNAMO_TABLE_TRANSACTIONS", "transactions"),
			Subscriptions: getEnv("DYNAMO_TABLE_SUBSCRIPTIONS", "subscriptions"),
			Histories:     getEnv("DYNAMO_TABLE_HISTORIES", "histories"),
			Logs:          getEnv("DYNAMO_TABLE_LOGS", "logs"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "documentor-files"),

		SecretKey:         getEnv("SECRET_KEY", ""),
		Algorithm:         strings.ToUpper(getEnv("ALGORITHM", "HS256")),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RegistrationTTL:   getEnvDuration("REGISTRATION_TICKET_TTL", 10*time.Minute),
		CookieMaxAge:      getEnvInt("SESSION_COOKIE_MAX_AGE", 3600),
		CookieSecure:      getEnvBool("COOKIE_SECURE", true),

		OTPTTL:            getEnvDuration("OTP_TTL", 5*time.Minute),
		OTPResendCooldown: getEnvDuration("OTP_RESEND_COOLDOWN", 3*time.Minute),
		OTPMaxAttempts:    getEnvInt("OTP_MAX_ATTEMPTS", 5),
		OTPHashCost:       getEnvInt("OTP_HASH_COST", 10),

		KVBackend:        strings.ToLower(getEnv("KV_BACKEND", "memory")),
		KVMemoryCapacity: getEnvInt("KV_MEMORY_CAPACITY", 1000),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),

		Notifier:         strings.ToLower(getEnv("NOTIFIER", "smtp")),
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnv("SMTP_PORT", "1025"),
		SMTPFrom:         getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:      getEnv("SNS_TOPIC_ARN", ""),
		EmailSendTimeout: getEnvDuration("EMAIL_SEND_TIMEOUT", 10*time.Second),

		AdminRedirect:   getEnv("ADMIN_REDIRECT", "/admin"),
		DeepLinkSchemes: getEnvList("DEEP_LINK_SCHEMES", "yourapp"),
		AllowedOrigins:  getEnvList("ALLOWED_ORIGINS", "*"),

		ConvertMaxUploadBytes: int64(getEnvInt("CONVERT_MAX_UPLOAD_MB", 10)) << 20,
	}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case "HS256":
		if c.SecretKey == "" && c.IsProduction() {
			return errors.New("SECRET_KEY is required for HS256 in production")
		}
	case "RS256":
	default:
		return errors.New("ALGORITHM must be HS256 or RS256")
	}
	switch c.KVBackend {
	case "memory", "redis":
	default:
		return errors.New("KV_BACKEND must be memory or redis")
	}
	switch c.Notifier {
	case "smtp":
	case "log":
		if c.IsProduction() {
			return errors.New("NOTIFIER=log is not allowed in production")
		}
	case "sns":
		if c.SNSTopicARN == "" {
			return errors.New("SNS_TOPIC_ARN is required when NOTIFIER=sns")
		}
	default:
		return errors.New("NOTIFIER must be smtp, sns or log")
	}
	if c.OTPMaxAttempts < 1 {
		return errors.New("OTP_MAX_ATTEMPTS must be at least 1")
	}
	if c.OTPHashCost < bcrypt.MinCost || c.OTPHashCost > bcrypt.MaxCost {
		return fmt.Errorf("OTP_HASH_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "5m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	var out []string
	for _, s := range strings.Split(getEnv(key, fallback), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
