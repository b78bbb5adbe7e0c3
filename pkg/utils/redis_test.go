package utils

import (
	"testing"
	"time"
)

func TestRedisConfigDefaults(t *testing.T) {
	cfg := RedisConfig{Addr: "localhost:6379"}.withDefaults()
	if cfg.DialTimeout != 3*time.Second {
		t.Fatalf("expected dial timeout default, got %v", cfg.DialTimeout)
	}
	if cfg.PoolSize != 10 {
		t.Fatalf("expected pool size default, got %d", cfg.PoolSize)
	}
}
