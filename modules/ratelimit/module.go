package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Config configures the limiter's Redis connection and budgets.
type Config struct {
	RedisAddr string
	Read      Rule
	Write     Rule
	KeyPrefix string
}

// DefaultConfig returns 300 reads and 60 writes per minute per client.
func DefaultConfig(redisAddr string) Config {
	return Config{
		RedisAddr: redisAddr,
		Read:      Rule{Requests: 300, Window: time.Minute},
		Write:     Rule{Requests: 60, Window: time.Minute},
		KeyPrefix: "crm:ratelimit:",
	}
}

// Module owns the Redis client used by the HTTP rate limiter.
type Module struct {
	cfg          Config
	client       *redis.Client
	readLimiter  *Limiter
	writeLimiter *Limiter
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the module. The Redis client connects lazily, so
// Handler can be installed before Start.
func NewModule(cfg Config) *Module {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return &Module{
		cfg:          cfg,
		client:       client,
		readLimiter:  NewLimiter(client, cfg.Read, cfg.KeyPrefix+"read:"),
		writeLimiter: NewLimiter(client, cfg.Write, cfg.KeyPrefix+"write:"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "ratelimit"
}

// Start verifies the Redis connection.
func (m *Module) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", m.cfg.RedisAddr, err)
	}
	log.Printf("[ratelimit] Connected to Redis at %s", m.cfg.RedisAddr)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		log.Printf("[ratelimit] Error closing Redis connection: %v", err)
	}
	log.Println("[ratelimit] Module stopped")
	return nil
}

// Health pings Redis.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis":          m.cfg.RedisAddr,
			"read":  ruleDetails(m.readLimiter.Rule()),
			"write": ruleDetails(m.writeLimiter.Rule()),
		},
	}
}

func ruleDetails(r Rule) map[string]any {
	return map[string]any{
		"requests": r.Requests,
		"window":   r.Window.String(),
	}
}
