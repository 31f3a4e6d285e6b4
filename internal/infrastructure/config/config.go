package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the immutable process configuration, read once at startup and
// passed explicitly to the components that need it.
type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	BcryptCost int `env:"BCRYPT_COST, default=12"`

	JWT      JWTConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Throttle ThrottleConfig
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET, required"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,  default=1h"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL, default=168h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=price_survey"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type ThrottleConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS,   default=10"`
	Window      time.Duration `env:"LOGIN_ATTEMPT_WINDOW, default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
