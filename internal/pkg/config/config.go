package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Mail   MailConfig
	OAuth  OAuthConfig
	Tokens TokenConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=breathscope"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type MailConfig struct {
	Domain  string `env:"MAILGUN_DOMAIN"`
	APIKey  string `env:"MAILGUN_API_KEY"`
	From    string `env:"MAIL_FROM, default=no-reply@breathscope.app"`
	Workers int    `env:"MAIL_WORKERS, default=4"`
}

type OAuthConfig struct {
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL, default=http://localhost:8080/auth/google/callback"`
	SuccessRedirect    string `env:"OAUTH_SUCCESS_REDIRECT, default=http://localhost:3000/home"`
	FailureRedirect    string `env:"OAUTH_FAILURE_REDIRECT, default=/"`
}

type TokenConfig struct {
	SessionTTL      time.Duration `env:"SESSION_TOKEN_TTL,       default=1h"`
	OAuthSessionTTL time.Duration `env:"OAUTH_SESSION_TOKEN_TTL, default=168h"`
	VerificationTTL time.Duration `env:"VERIFICATION_TOKEN_TTL,  default=1h"`
	ResetTTL        time.Duration `env:"RESET_TOKEN_TTL,         default=10m"`
	OTPTTL          time.Duration `env:"OTP_TTL,                 default=10m"`
	VerifyLinkBase  string        `env:"VERIFY_LINK_BASE, default=http://localhost:8081/verify"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
