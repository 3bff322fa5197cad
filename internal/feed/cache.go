package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Cache holds the process-wide feed snapshot. A single lock guards every
// read and replace; the snapshot is also mirrored to a JSON file on disk so
// restarts serve the last known data.
type Cache struct {
	mu       sync.RWMutex
	snapshot []Dynamic
	file     string
	logger   *slog.Logger
}

// NewCache creates a Cache backed by the given file.
func NewCache(file string, logger *slog.Logger) *Cache {
	return &Cache{
		snapshot: []Dynamic{},
		file:     file,
		logger:   logger,
	}
}

// Init loads the snapshot from disk, or starts empty when the file is
// missing or unreadable.
func (c *Cache) Init() {
	data, err := os.ReadFile(c.file)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("failed to read feed cache file", slog.String("file", c.file), slog.String("error", err.Error()))
		}
		return
	}

	var dynamics []Dynamic
	if err := json.Unmarshal(data, &dynamics); err != nil {
		c.logger.Warn("failed to parse feed cache file", slog.String("file", c.file), slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	c.snapshot = dynamics
	c.mu.Unlock()
}

// Snapshot returns a copy of the current snapshot.
func (c *Cache) Snapshot() []Dynamic {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Dynamic, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}

// Replace swaps in a new snapshot and rewrites the disk mirror. A disk write
// failure is logged but does not invalidate the in-memory snapshot.
func (c *Cache) Replace(dynamics []Dynamic) {
	if dynamics == nil {
		dynamics = []Dynamic{}
	}

	c.mu.Lock()
	c.snapshot = dynamics
	c.mu.Unlock()

	data, err := json.MarshalIndent(dynamics, "", "  ")
	if err != nil {
		c.logger.Error("failed to marshal feed snapshot", slog.String("error", err.Error()))
		return
	}
	if err := os.WriteFile(c.file, data, 0644); err != nil {
		c.logger.Error("failed to write feed cache file", slog.String("file", c.file), slog.String("error", err.Error()))
	}
}

// Service ties the fetcher and cache into a refresh lifecycle.
type Service struct {
	fetcher  *Fetcher
	cache    *Cache
	interval time.Duration
	logger   *slog.Logger
}

// NewService creates a feed Service.
func NewService(fetcher *Fetcher, cache *Cache, interval time.Duration, logger *slog.Logger) *Service {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Service{
		fetcher:  fetcher,
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

// Snapshot returns the cached feed entries.
func (s *Service) Snapshot() []Dynamic {
	return s.cache.Snapshot()
}

// Refresh fetches once and replaces the snapshot. A failed fetch keeps the
// previous snapshot.
func (s *Service) Refresh(ctx context.Context) error {
	dynamics, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}
	s.cache.Replace(dynamics)
	s.logger.Info("feed snapshot refreshed", slog.Int("entries", len(dynamics)))
	return nil
}

// Run loads the disk cache, then refreshes on the configured interval until
// the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	s.cache.Init()

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("initial feed refresh failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("feed refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}
