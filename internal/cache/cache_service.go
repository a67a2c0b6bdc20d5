// Package cache provides Redis-based caching for computed report and
// dashboard payloads. When Redis is unavailable, operations return misses or
// errors that callers handle by recomputing from the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"arbitrage-shift-tracker/config"
	"arbitrage-shift-tracker/internal/logging"
)

// ErrCacheMiss is returned when a key is absent or Redis is degraded
var ErrCacheMiss = errors.New("cache miss")

// Key formats for the cached payload types
const (
	KeyDashboard     = "dashboard:%s:%s" // from:to
	KeyReportProfit  = "report:%d:profit"
	KeyPayroll       = "payroll:%s:%s" // from:to
	PatternDashboard = "dashboard:*"
	PatternReports   = "report:*"
	PatternPayroll   = "payroll:*"
)

// Default TTLs. Profit figures change only on report or order writes, which
// invalidate explicitly; the TTL is a backstop.
const (
	DefaultProfitTTL    = 10 * time.Minute
	DefaultDashboardTTL = time.Minute
)

// Service provides Redis-based caching with graceful degradation
type Service struct {
	client *redis.Client
	log    *logging.Logger

	mu           sync.RWMutex
	healthy      bool
	failureCount int

	maxFailures int
}

// NewService creates a cache service and verifies connectivity. A failed
// initial connection yields a degraded service, not an error: the tracker
// works without Redis, just slower.
func NewService(cfg config.RedisConfig) (*Service, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is not enabled in configuration")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	s := &Service{
		client:      client,
		log:         logging.WithComponent("cache"),
		maxFailures: 3,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		s.log.Warn("initial Redis connection failed, running degraded", "error", err)
		return s, nil
	}

	s.healthy = true
	s.log.Info("Redis connected", "address", cfg.Address)
	return s, nil
}

// IsHealthy returns whether Redis is currently available
func (s *Service) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy
}

func (s *Service) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failureCount++
	if s.failureCount >= s.maxFailures {
		if s.healthy {
			s.log.Warn("circuit open: Redis marked unhealthy", "failures", s.failureCount)
		}
		s.healthy = false
	}
}

func (s *Service) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failureCount = 0
	if !s.healthy {
		s.log.Info("circuit closed: Redis recovered")
	}
	s.healthy = true
}

// GetJSON loads a cached value into dest. Returns ErrCacheMiss when the key
// is absent or Redis is degraded.
func (s *Service) GetJSON(ctx context.Context, key string, dest any) error {
	if !s.IsHealthy() {
		return ErrCacheMiss
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.recordSuccess()
		return ErrCacheMiss
	}
	if err != nil {
		s.recordFailure()
		return ErrCacheMiss
	}
	s.recordSuccess()

	return json.Unmarshal(data, dest)
}

// SetJSON stores a value with a TTL. Failures degrade silently.
func (s *Service) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if !s.IsHealthy() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.log.Error("failed to marshal cache value", "key", key, "error", err)
		return
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.recordFailure()
		return
	}
	s.recordSuccess()
}

// Delete removes specific keys
func (s *Service) Delete(ctx context.Context, keys ...string) {
	if !s.IsHealthy() || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.recordFailure()
		return
	}
	s.recordSuccess()
}

// DeletePattern removes all keys matching a glob pattern, scanning in pages
// to avoid blocking Redis
func (s *Service) DeletePattern(ctx context.Context, pattern string) {
	if !s.IsHealthy() {
		return
	}

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			s.recordFailure()
			return
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				s.recordFailure()
				return
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	s.recordSuccess()
}

// InvalidateComputed drops every cached payload derived from reports and
// orders. Called after any write that changes profit figures.
func (s *Service) InvalidateComputed(ctx context.Context) {
	s.DeletePattern(ctx, PatternDashboard)
	s.DeletePattern(ctx, PatternReports)
	s.DeletePattern(ctx, PatternPayroll)
}

// Close releases the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
