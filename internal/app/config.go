package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (INTAKE_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Storage   StorageConfig
	Auth      AuthConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StorageConfig selects and configures the key-value storage backend.
type StorageConfig struct {
	Driver             string `default:"dynamodb" usage:"Storage backend: dynamodb or postgres"`
	OrdersTable        string `default:"orders" usage:"Orders table name (ORDERS_TABLE)" flag:"orders-table"`
	NotificationsTable string `default:"notifications" usage:"Notifications table name (NOTIFICATIONS_TABLE)" flag:"notifications-table"`
	AWSRegion          string `default:"us-east-1" usage:"AWS region for DynamoDB" flag:"aws-region"`
	DynamoEndpoint     string `default:"" usage:"DynamoDB endpoint override for dynamodb-local" flag:"dynamo-endpoint"`
	DatabaseURL        string `usage:"PostgreSQL connection URL (postgres driver only)" flag:"database-url"`
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	JWTSecret string `usage:"Shared secret for bearer token verification (JWT_SECRET)" flag:"jwt-secret"`
}

// MailConfig configures the outbound SMTP relay.
type MailConfig struct {
	Host     string `default:"smtp.gmail.com" usage:"SMTP relay host"`
	Port     int    `default:"587" usage:"SMTP relay port"`
	User     string `usage:"SMTP username and from address (EMAIL_USER)"`
	Pass     string `usage:"SMTP password (EMAIL_PASS)"`
	FromName string `default:"Product Shop" usage:"Display name on outgoing mail" flag:"mail-from-name"`
	Insecure bool   `default:"false" usage:"Disable SMTP TLS and auth (local test sinks only)" flag:"mail-insecure"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies the unprefixed environment aliases the service has
// always been deployed with.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "INTAKE",
		Files:     []string{"config.yaml", "/etc/order-intake/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyEnvAliases()

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT secret is required: set INTAKE_AUTH_JWT_SECRET or JWT_SECRET")
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.DatabaseURL == "" {
		return nil, errors.New("database URL is required for the postgres driver: set INTAKE_STORAGE_DATABASE_URL or DATABASE_URL")
	}
	if !cfg.Mail.Insecure && (cfg.Mail.User == "" || cfg.Mail.Pass == "") {
		return nil, errors.New("mail relay credentials are required: set EMAIL_USER and EMAIL_PASS")
	}

	return &cfg, nil
}

// applyEnvAliases maps the unprefixed environment variables this service
// historically uses (ORDERS_TABLE, JWT_SECRET, ...) plus common platform
// names (PORT, DATABASE_URL) onto the INTAKE_-prefixed configuration.
func (c *Config) applyEnvAliases() {
	alias := func(dst *string, name string) {
		if *dst == "" {
			if v := os.Getenv(name); v != "" {
				*dst = v
			}
		}
	}

	alias(&c.Auth.JWTSecret, "JWT_SECRET")
	alias(&c.Mail.User, "EMAIL_USER")
	alias(&c.Mail.Pass, "EMAIL_PASS")
	alias(&c.Storage.DatabaseURL, "DATABASE_URL")

	if v := os.Getenv("ORDERS_TABLE"); v != "" && c.Storage.OrdersTable == "orders" {
		c.Storage.OrdersTable = v
	}
	if v := os.Getenv("NOTIFICATIONS_TABLE"); v != "" && c.Storage.NotificationsTable == "notifications" {
		c.Storage.NotificationsTable = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" && c.Storage.AWSRegion == "us-east-1" {
		c.Storage.AWSRegion = v
	}
	alias(&c.Storage.DynamoEndpoint, "DYNAMODB_ENDPOINT")

	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
