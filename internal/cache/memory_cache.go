package cache

import (
	"sync"
	"time"

	"github.com/epeers/shortpositions/internal/metrics"
	"github.com/epeers/shortpositions/internal/models"
)

// MemoryCache keeps recently parsed reports and the last resolved "latest"
// report URL, so repeated loads inside the TTL do not hit the regulator again.
type MemoryCache struct {
	reports  map[string]reportEntry
	latest   *latestEntry
	reportMu sync.RWMutex
	latestMu sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
}

type reportEntry struct {
	dataset   *models.ReportDataset
	fetchedAt time.Time
}

type latestEntry struct {
	url       string
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache. A ttl of zero disables caching.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		reports: make(map[string]reportEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) fresh(fetchedAt time.Time) bool {
	return c.ttl > 0 && c.now().Sub(fetchedAt) <= c.ttl
}

// GetReport retrieves a cached report by its CSV URL if fresh
func (c *MemoryCache) GetReport(csvURL string) (*models.ReportDataset, bool) {
	c.reportMu.RLock()
	defer c.reportMu.RUnlock()

	entry, exists := c.reports[csvURL]
	if !exists || !c.fresh(entry.fetchedAt) {
		metrics.ReportCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.ReportCacheLookups.WithLabelValues("hit").Inc()
	return entry.dataset, true
}

// SetReport caches a parsed report under its CSV URL
func (c *MemoryCache) SetReport(csvURL string, dataset *models.ReportDataset) {
	if c.ttl <= 0 {
		return
	}
	c.reportMu.Lock()
	defer c.reportMu.Unlock()

	c.reports[csvURL] = reportEntry{
		dataset:   dataset,
		fetchedAt: c.now(),
	}
	c.pruneLocked()
}

// pruneLocked drops expired reports. Caller holds reportMu.
func (c *MemoryCache) pruneLocked() {
	for k, e := range c.reports {
		if !c.fresh(e.fetchedAt) {
			delete(c.reports, k)
		}
	}
}

// GetLatestURL returns the last resolved latest-report URL if fresh
func (c *MemoryCache) GetLatestURL() (string, bool) {
	c.latestMu.RLock()
	defer c.latestMu.RUnlock()

	if c.latest == nil || !c.fresh(c.latest.fetchedAt) {
		return "", false
	}
	return c.latest.url, true
}

// SetLatestURL caches the resolved latest-report URL
func (c *MemoryCache) SetLatestURL(csvURL string) {
	if c.ttl <= 0 {
		return
	}
	c.latestMu.Lock()
	defer c.latestMu.Unlock()

	c.latest = &latestEntry{url: csvURL, fetchedAt: c.now()}
}

// InvalidateLatestURL forgets the resolved latest-report URL
func (c *MemoryCache) InvalidateLatestURL() {
	c.latestMu.Lock()
	defer c.latestMu.Unlock()

	c.latest = nil
}
