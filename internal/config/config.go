// Package config loads runtime settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/dukerupert/famfeed/internal/database"
	"github.com/dukerupert/famfeed/internal/middleware"
	"github.com/dukerupert/famfeed/internal/push"
	"github.com/dukerupert/famfeed/internal/upload"
)

const EnvDevelopment = "development"

type Config struct {
	Port      string `env:"FAMFEED_PORT,default=8080"`
	Env       string `env:"FAMFEED_ENV,default=production"`
	LogLevel  string `env:"FAMFEED_LOG_LEVEL,default=info"`
	LogFormat string `env:"FAMFEED_LOG_FORMAT,default=text"`

	DBDriver    string `env:"FAMFEED_DB_DRIVER,default=sqlite"`
	DBPath      string `env:"FAMFEED_DB_PATH,default=famfeed.db"`
	DatabaseURL string `env:"FAMFEED_DATABASE_URL"`

	JWTSecret string        `env:"FAMFEED_JWT_SECRET"`
	TokenTTL  time.Duration `env:"FAMFEED_TOKEN_TTL,default=168h"`

	ClientURL         string `env:"FAMFEED_CLIENT_URL,default=http://localhost:3000"`
	AuthRatePerMinute int    `env:"FAMFEED_AUTH_RATE_PER_MINUTE,default=10"`
	// Comma-separated IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies string `env:"FAMFEED_TRUSTED_PROXIES"`

	UploadDir      string `env:"FAMFEED_UPLOAD_DIR,default=uploads"`
	UploadMaxBytes int64  `env:"FAMFEED_UPLOAD_MAX_BYTES,default=10485760"`

	S3Endpoint  string `env:"FAMFEED_S3_ENDPOINT"`
	S3Bucket    string `env:"FAMFEED_S3_BUCKET"`
	S3Region    string `env:"FAMFEED_S3_REGION,default=us-east-1"`
	S3AccessKey string `env:"FAMFEED_S3_ACCESS_KEY"`
	S3SecretKey string `env:"FAMFEED_S3_SECRET_KEY"`
	S3PublicURL string `env:"FAMFEED_S3_PUBLIC_URL"`

	VAPIDPublicKey  string `env:"FAMFEED_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"FAMFEED_VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `env:"FAMFEED_VAPID_SUBJECT,default=mailto:admin@localhost"`
}

// Load reads .env (if any) and decodes the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field consistency. In development a missing JWT
// secret is replaced by a random one; in production it is an error.
func (c *Config) Validate(logger *slog.Logger) error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if _, err := database.DialectFor(c.DBDriver); err != nil {
		return err
	}
	switch c.DBDriver {
	case "postgres", "postgresql":
		if c.DatabaseURL == "" {
			return errors.New("FAMFEED_DATABASE_URL is required for the postgres driver")
		}
	default:
		if c.DBPath == "" {
			return errors.New("FAMFEED_DB_PATH is required for the sqlite driver")
		}
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("FAMFEED_JWT_SECRET is required")
		}
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		c.JWTSecret = secret
		logger.Warn("FAMFEED_JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}
	if c.TokenTTL <= 0 {
		return errors.New("FAMFEED_TOKEN_TTL must be positive")
	}

	if (c.VAPIDPublicKey == "") != (c.VAPIDPrivateKey == "") {
		return errors.New("FAMFEED_VAPID_PUBLIC_KEY and FAMFEED_VAPID_PRIVATE_KEY must be set together")
	}
	if c.S3Bucket != "" && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		return errors.New("FAMFEED_S3_ACCESS_KEY and FAMFEED_S3_SECRET_KEY are required with FAMFEED_S3_BUCKET")
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("FAMFEED_UPLOAD_MAX_BYTES must be positive")
	}
	if _, err := c.ClientIP(); err != nil {
		return fmt.Errorf("FAMFEED_TRUSTED_PROXIES: %w", err)
	}
	return nil
}

// ClientIP builds the resolver used for rate limiting and request logs.
// With no trusted proxies the peer address is always used.
func (c *Config) ClientIP() (*middleware.ClientIP, error) {
	return middleware.NewClientIP(strings.Split(c.TrustedProxies, ","))
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

func (c *Config) Database() database.Config {
	return database.Config{Driver: c.DBDriver, Path: c.DBPath, URL: c.DatabaseURL}
}

func (c *Config) Push() push.Config {
	return push.Config{
		VAPIDPublicKey:  c.VAPIDPublicKey,
		VAPIDPrivateKey: c.VAPIDPrivateKey,
		Subject:         c.VAPIDSubject,
	}
}

func (c *Config) Upload() upload.Config {
	return upload.Config{
		Dir:         c.UploadDir,
		MaxBytes:    c.UploadMaxBytes,
		S3Endpoint:  c.S3Endpoint,
		S3Bucket:    c.S3Bucket,
		S3Region:    c.S3Region,
		S3AccessKey: c.S3AccessKey,
		S3SecretKey: c.S3SecretKey,
		S3PublicURL: c.S3PublicURL,
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
