package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageTypeMySQL  = "mysql"
	StorageTypeMemory = "memory"
)

type Config struct {
	Env        string `env:"ENV" env-required:"true"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	HttpServer HttpServer
	Storage    Storage
	Database   Database
	Limiter    Limiter
	Auth       AuthConfig
	Cache      Cache
	Purge      PurgeConfig
	Seed       SeedConfig
}

type HttpServer struct {
	Port           string        `env:"HTTP_PORT" env-default:"8080"`
	Timeout        time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	SwaggerEnabled bool          `env:"HTTP_SWAGGER_ENABLED" env-default:"false"`
	AllowedOrigins []string      `env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
}

type Storage struct {
	Type string `env:"STORAGE_TYPE" env-default:"mysql" env-description:"specifies session storage, one of mysql/memory"`
}

type Database struct {
	Net                string        `env:"DB_NET" env-default:"tcp"`
	Server             string        `env:"DB_SERVER"`
	DBName             string        `env:"DB_NAME"`
	User               string        `env:"DB_USER"`
	Password           string        `env:"DB_PASSWORD"`
	TimeZone           string        `env:"DB_TIMEZONE" env-default:"UTC"`
	Timeout            time.Duration `env:"DB_TIMEOUT" env-default:"2s"`
	MaxIdleConnections int           `env:"DB_MAX_IDLE_CONNECTIONS" env-default:"40"`
	MaxOpenConnections int           `env:"DB_MAX_OPEN_CONNECTIONS" env-default:"40"`
	Migrate            bool          `env:"DB_MIGRATE" env-default:"true" env-description:"apply embedded migrations on startup"`
}

type Limiter struct {
	RPS   int           `env:"LIMITER_RPS" env-default:"10"`
	Burst int           `env:"LIMITER_BURST" env-default:"20"`
	TTL   time.Duration `env:"LIMITER_TTL" env-default:"10m"`
}

type AuthConfig struct {
	JWT           JWTConfig
	RefreshToken  RefreshTokenConfig
	LoginThrottle LoginThrottleConfig
}

type JWTConfig struct {
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	SigningKey     string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	Issuer         string        `env:"JWT_ISSUER" env-default:"auth-service"`
}

type RefreshTokenConfig struct {
	TTL           time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	Bytes         int           `env:"REFRESH_TOKEN_BYTES" env-default:"32" env-description:"random bytes per token, at least 16"`
	IssueAttempts int           `env:"REFRESH_TOKEN_ISSUE_ATTEMPTS" env-default:"3" env-description:"regenerate attempts on token collision"`
}

type LoginThrottleConfig struct {
	Enabled     bool          `env:"LOGIN_THROTTLE_ENABLED" env-default:"false"`
	MaxAttempts int           `env:"LOGIN_THROTTLE_MAX_ATTEMPTS" env-default:"5"`
	Cooldown    time.Duration `env:"LOGIN_THROTTLE_COOLDOWN" env-default:"15m"`
}

type Cache struct {
	Type  string `env:"REDIS_TYPE" env-default:"redis" env-description:"specifies provider, one of redis/redisCluster"`
	Redis struct {
		Address  string `env:"REDIS_ADDR" env-default:"localhost:6379" env-description:"redis host:port single instance"`
		Password string `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize int    `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
	RedisCluster struct {
		Addresses []string `env:"REDIS_CLUSTER_ADDRS" env-default:"" env-description:"redis cluster nodes: 172.27.29.90:7000,172.27.29.91:7001"`
		Password  string   `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize  int      `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
}

type PurgeConfig struct {
	Cronspec    string        `env:"PURGE_CRONSPEC" env-default:"@every 1h"`
	Interval    time.Duration `env:"PURGE_INTERVAL" env-default:"1h" env-description:"in-process purge period for memory storage"`
	Concurrency int           `env:"PURGE_CONCURRENCY" env-default:"1"`
}

type SeedConfig struct {
	AdminUsername string `env:"SEED_ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD" env-default:"" env-description:"empty disables seeding"`
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return cfg
}

func Load() (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_TTL must be positive, got %s", c.Auth.JWT.AccessTokenTTL)
	}
	if c.Auth.RefreshToken.TTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be positive, got %s", c.Auth.RefreshToken.TTL)
	}
	if c.Storage.Type != StorageTypeMySQL && c.Storage.Type != StorageTypeMemory {
		return fmt.Errorf("STORAGE_TYPE must be %s or %s, got %q", StorageTypeMySQL, StorageTypeMemory, c.Storage.Type)
	}

	return nil
}
