package config

import "os"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GetRedisConfig returns nil when no Redis address is configured; the service
// falls back to the in-memory state store.
func GetRedisConfig() *RedisConfig {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	return &RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	}
}
