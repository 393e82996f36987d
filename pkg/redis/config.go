package redis

import (
	"time"

	"github.com/Alijeyrad/formsbot/config"
)

// Config holds Redis connection settings
type Config struct {
	Addr      string
	DB        int
	Username  string
	Password  string
	KeyPrefix string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		KeyPrefix:    "forms",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromCentralConfig converts central config.RedisConfig to package Config,
// keeping defaults for anything left at zero.
func FromCentralConfig(c config.RedisConfig) Config {
	cfg := DefaultConfig()
	cfg.Addr = orDefault(c.Addr, cfg.Addr)
	cfg.DB = c.DB
	cfg.Username = c.Username
	cfg.Password = c.Password
	cfg.KeyPrefix = orDefault(c.KeyPrefix, cfg.KeyPrefix)

	if c.PoolSize > 0 {
		cfg.PoolSize = c.PoolSize
	}
	if c.MinIdleConns > 0 {
		cfg.MinIdleConns = c.MinIdleConns
	}
	cfg.DialTimeout = seconds(c.DialTimeoutSeconds, cfg.DialTimeout)
	cfg.ReadTimeout = seconds(c.ReadTimeoutSeconds, cfg.ReadTimeout)
	cfg.WriteTimeout = seconds(c.WriteTimeoutSeconds, cfg.WriteTimeout)

	return cfg
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func seconds(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
