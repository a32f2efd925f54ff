package main

import (
	"time"
)

// config is the gateway configuration, populated from environment variables.
// Redis and Postgres are optional: without Redis the pipeline falls back to
// in-process stores, and without Postgres the elevation endpoints are not
// mounted.
type config struct {
	Port       int    `env:"PORT" envDefault:"8080"`
	Production bool   `env:"PRODUCTION" envDefault:"false"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// AppURLs is the origin allow-list; WildcardOrigins holds *.domain
	// patterns for preview deployments.
	AppURLs         []string `env:"APP_URLS" envDefault:"http://localhost:3000"`
	WildcardOrigins []string `env:"WILDCARD_ORIGINS"`
	CORSMaxAge      int      `env:"CORS_MAX_AGE" envDefault:"300"`

	SigningSecret string `env:"SIGNING_SECRET,required"`
	CSRFSecret    string `env:"CSRF_SECRET,required"`
	APIKeyPrefix  string `env:"API_KEY_PREFIX" envDefault:"sk_"`

	CaptchaVerifyURL string `env:"CAPTCHA_VERIFY_URL"`
	CaptchaSecret    string `env:"CAPTCHA_SECRET"`

	RateLimitCapacity int           `env:"RATE_LIMIT_CAPACITY" envDefault:"60"`
	RateLimitRefill   int           `env:"RATE_LIMIT_REFILL" envDefault:"1"`
	RateLimitInterval time.Duration `env:"RATE_LIMIT_INTERVAL" envDefault:"1s"`

	RedisURL string `env:"REDIS_URL"`
	PgURL    string `env:"PG_URL"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}
