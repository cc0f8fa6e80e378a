// Package cache keeps flattened platform taxonomies in process memory.
// The cache is an explicit object owned by the composing application;
// there is no package-level state.
package cache

import (
	"context"
	"sync"
	"time"

	"eshop/mapper/internal/domain"

	log "github.com/sirupsen/logrus"
)

const DefaultTTL = 24 * time.Hour

// Fetcher retrieves one platform's flattened taxonomy over the network.
type Fetcher interface {
	FetchCategories(ctx context.Context, platform domain.Platform) ([]domain.FlatCategory, error)
}

// Lookup is one platform's answer from Get. Err is set when the
// platform has no snapshot and its last fetch failed, so callers can
// tell a dead source apart from one with zero categories.
type Lookup struct {
	Categories []domain.FlatCategory
	Err        error
}

// TaxonomyCache stores one snapshot per platform plus a single
// lastFetched timestamp gating staleness for all platforms at once.
// Snapshots are replaced wholesale on a successful refetch and retained
// as-is when a refetch fails.
type TaxonomyCache struct {
	mu          sync.Mutex
	fetcher     Fetcher
	ttl         time.Duration
	now         func() time.Time
	snapshots   map[domain.Platform]*domain.TaxonomySnapshot
	lastFetched time.Time
}

func New(fetcher Fetcher, ttl time.Duration) *TaxonomyCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TaxonomyCache{
		fetcher:   fetcher,
		ttl:       ttl,
		now:       time.Now,
		snapshots: make(map[domain.Platform]*domain.TaxonomySnapshot),
	}
}

// Get returns the cached categories for the requested platforms,
// fetching any platform that has no snapshot yet. Platforms already
// holding a snapshot are never refetched here, even past the TTL; the
// freshness gate only decides whether gaps get filled on this call.
// Launched fetches run concurrently and settle independently.
func (c *TaxonomyCache) Get(ctx context.Context, platforms []domain.Platform) map[domain.Platform]Lookup {
	c.mu.Lock()
	needsRefresh := c.lastFetched.IsZero() || c.now().Sub(c.lastFetched) > c.ttl
	var missing []domain.Platform
	for _, p := range platforms {
		if _, ok := c.snapshots[p]; !ok {
			missing = append(missing, p)
			needsRefresh = true
		}
	}
	c.mu.Unlock()

	failures := make(map[domain.Platform]error)
	if needsRefresh && len(missing) > 0 {
		failures = c.fill(ctx, missing)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[domain.Platform]Lookup, len(platforms))
	for _, p := range platforms {
		if snap, ok := c.snapshots[p]; ok {
			out[p] = Lookup{Categories: snap.Categories}
			continue
		}
		out[p] = Lookup{Err: failures[p]}
	}
	return out
}

// fill fetches the given platforms concurrently and publishes whatever
// succeeded. lastFetched advances after settlement no matter how many
// fetches failed.
func (c *TaxonomyCache) fill(ctx context.Context, platforms []domain.Platform) map[domain.Platform]error {
	type settled struct {
		platform   domain.Platform
		categories []domain.FlatCategory
		err        error
	}

	resultsChan := make(chan settled, len(platforms))
	wg := &sync.WaitGroup{}

	for _, platform := range platforms {
		wg.Add(1)

		go func(platform domain.Platform) {
			defer wg.Done()

			categories, err := c.fetcher.FetchCategories(ctx, platform)
			resultsChan <- settled{platform: platform, categories: categories, err: err}
		}(platform)
	}

	wg.Wait()
	close(resultsChan)

	failures := make(map[domain.Platform]error)

	c.mu.Lock()
	defer c.mu.Unlock()

	for s := range resultsChan {
		if s.err != nil {
			log.Errorf("❌ Taxonomy fetch failed for %s, keeping cache empty for it: %v", s.platform, s.err)
			failures[s.platform] = s.err
			continue
		}
		c.snapshots[s.platform] = &domain.TaxonomySnapshot{
			Platform:   s.platform,
			Categories: s.categories,
			FetchedAt:  c.now(),
		}
		log.Infof("✅ Cached %d categories for %s", len(s.categories), s.platform)
	}
	c.lastFetched = c.now()

	return failures
}

// Invalidate drops a platform's snapshot so the next Get refetches it.
func (c *TaxonomyCache) Invalidate(platform domain.Platform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, platform)
}

// SnapshotAge reports how long ago a platform's snapshot was fetched.
// The second return is false when the platform has no snapshot.
func (c *TaxonomyCache) SnapshotAge(platform domain.Platform) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, ok := c.snapshots[platform]
	if !ok {
		return 0, false
	}
	return c.now().Sub(snap.FetchedAt), true
}
