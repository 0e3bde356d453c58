package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Config configures a Service.
type Config struct {
	Capacity        int           // maximum entries (default 1000)
	TTL             time.Duration // default entry lifetime (default 10m)
	CleanupInterval time.Duration // expired entry sweep (default 1m)
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:        defaultCapacity,
		TTL:             defaultTTL,
		CleanupInterval: time.Minute,
	}
}

// Service is a Store backed by an LRU with a background sweep of expired entries.
type Service struct {
	lru *LRU

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewService creates a Service and starts its cleanup loop. Call Close to stop it.
func NewService(cfg Config) *Service {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		lru:    NewLRU(cfg.Capacity, cfg.TTL),
		cancel: cancel,
	}

	s.wg.Add(1)
	go s.cleanupLoop(ctx, cfg.CleanupInterval)

	return s
}

// Get implements Store.
func (s *Service) Get(_ context.Context, key string) ([]byte, bool) {
	return s.lru.Get(key)
}

// Set implements Store.
func (s *Service) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.lru.Set(key, value, ttl)
	return nil
}

// Invalidate implements Store.
func (s *Service) Invalidate(_ context.Context, pattern string) error {
	s.lru.Invalidate(pattern)
	return nil
}

// Stats returns usage counters.
func (s *Service) Stats() Stats {
	return s.lru.Stats()
}

// Close stops the cleanup loop. It is safe to call more than once.
func (s *Service) Close() {
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

func (s *Service) cleanupLoop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.lru.RemoveExpired(); n > 0 {
				slog.Debug("removed expired cache entries", "count", n)
			}
		}
	}
}

var _ Store = (*Service)(nil)
