package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"
)

const cacheLockPollInterval = 50 * time.Millisecond

// cacheLocks serialises work on one mirror cache entry. Goroutines of this
// process queue on a mutex per entry; other gitsub processes are kept out
// by a lock file next to the entry.
type cacheLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCacheLocks() *cacheLocks {
	return &cacheLocks{locks: map[string]*sync.Mutex{}}
}

func (c *cacheLocks) entry(cacheRoot string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.locks[cacheRoot]
	if !ok {
		m = &sync.Mutex{}
		c.locks[cacheRoot] = m
	}
	return m
}

// acquire locks cacheRoot and returns the function that releases it.
func (c *cacheLocks) acquire(ctx context.Context, cacheRoot string) (func(), error) {
	m := c.entry(cacheRoot)
	m.Lock()

	if err := os.MkdirAll(filepath.Dir(cacheRoot), 0755); err != nil {
		m.Unlock()
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	fl := flock.New(cacheRoot + ".lock")
	locked, err := fl.TryLockContext(ctx, cacheLockPollInterval)
	if err != nil || !locked {
		m.Unlock()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("failed to lock mirror cache %s: %w", cacheRoot, err)
	}
	log.Debug().Str("cache", cacheRoot).Msg("acquired mirror cache lock")

	return func() {
		if err := fl.Unlock(); err != nil {
			log.Warn().Err(err).Str("cache", cacheRoot).Msg("failed to release mirror cache lock")
		}
		m.Unlock()
	}, nil
}
