package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agora-dev/agora/shared/logger"
)

// CacheGarbageCollector deletes expired generation cache rows.
// Lookups already ignore expired rows; this only keeps the table small.
type CacheGarbageCollector struct {
	storage CacheGCStorage
	now     Clock

	mu               sync.Mutex
	lastCleanupStats CacheCleanupStats
}

// CacheCleanupStats tracks metrics from the last cleanup run.
type CacheCleanupStats struct {
	RunAt          time.Time
	EntriesDeleted int64
	DurationMs     int64
}

type CacheGCStorage interface {
	DeleteExpiredGeneratedContent(ctx context.Context, now time.Time) (int64, error)
}

func NewCacheGarbageCollector(storage CacheGCStorage, clock Clock) *CacheGarbageCollector {
	if clock == nil {
		clock = time.Now
	}
	return &CacheGarbageCollector{storage: storage, now: clock}
}

// StartBackgroundCleanup runs RunCleanup every interval until ctx is done.
func (gc *CacheGarbageCollector) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		logger.Log.Warn("cache sweep interval not configured, background cleanup disabled",
			"component", "cache_gc")
		return
	}

	ticker := time.NewTicker(interval)
	logger.Log.Info("started generation cache garbage collector",
		"component", "cache_gc",
		"interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.RunCleanup(ctx); err != nil {
					logger.Log.Error("cache gc cleanup failed",
						"component", "cache_gc",
						"error", err)
				} else {
					stats := gc.GetLastCleanupStats()
					logger.Log.Info("cache gc completed",
						"component", "cache_gc",
						"entries_deleted", stats.EntriesDeleted,
						"duration_ms", stats.DurationMs)
				}
			case <-ctx.Done():
				logger.Log.Info("cache gc shutting down gracefully",
					"component", "cache_gc")
				return
			}
		}
	}()
}

// RunCleanup executes a single sweep. It can be called manually for maintenance.
func (gc *CacheGarbageCollector) RunCleanup(ctx context.Context) error {
	startTime := time.Now()
	deleted, err := gc.storage.DeleteExpiredGeneratedContent(ctx, gc.now())
	if err != nil {
		return fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	generationCacheEvictedTotal.Add(float64(deleted))

	gc.mu.Lock()
	gc.lastCleanupStats = CacheCleanupStats{
		RunAt:          startTime,
		EntriesDeleted: deleted,
		DurationMs:     time.Since(startTime).Milliseconds(),
	}
	gc.mu.Unlock()
	return nil
}

func (gc *CacheGarbageCollector) GetLastCleanupStats() CacheCleanupStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.lastCleanupStats
}
