package intake

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"confirm.durgadawaghar.com/internal/metrics"
	"confirm.durgadawaghar.com/internal/parser"
)

// reportCache remembers parse reports by message hash. Parsing is pure, so
// an entry only ages out to bound memory.
type reportCache struct {
	lru *expirable.LRU[string, parser.Report]
}

func newReportCache(size int, ttl time.Duration) *reportCache {
	return &reportCache{
		lru: expirable.NewLRU[string, parser.Report](size, nil, ttl),
	}
}

// Get returns a copy of the cached report for hash
func (c *reportCache) Get(hash string) (parser.Report, bool) {
	report, ok := c.lru.Get(hash)
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return parser.Report{}, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	if report.Confirmation != nil {
		conf := *report.Confirmation
		report.Confirmation = &conf
	}
	return report, true
}

func (c *reportCache) Add(hash string, report parser.Report) {
	c.lru.Add(hash, report)
}

func (c *reportCache) Len() int {
	return c.lru.Len()
}
