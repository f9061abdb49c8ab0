package stats

import (
	"time"

	"trade-producer/pkg/utils/syncutils"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/constraints"
)

const (
	DEFAULT_MIN_REPORT_SAMPLES = 200
	DEFAULT_COLLECT_DURATION   = time.Duration(10) * time.Second
)

// POf returns the percent-th percentile of an already sorted slice.
func POf[E constraints.Ordered](t []E, percent float64) E {
	idx := int(float64(len(t))*percent+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	return t[idx]
}

// StatsCollector keeps latency samples and periodically logs p50/p90/p99.
// Samples are only recorded when built with the stats tag.
type StatsCollector[E constraints.Ordered] struct {
	tag                string
	data               []E
	report_timer       ReportTimer
	min_report_samples uint32
}

func NewStatsCollector[E constraints.Ordered](tag string, reportInterval time.Duration) StatsCollector[E] {
	return StatsCollector[E]{
		data:               make([]E, 0, 128),
		report_timer:       NewReportTimer(reportInterval),
		tag:                tag,
		min_report_samples: DEFAULT_MIN_REPORT_SAMPLES,
	}
}

func (c *StatsCollector[E]) PrintRemainingStats() {
	if len(c.data) > 0 {
		log.Info().Str("tag", c.tag).Int("samples", len(c.data)).Msgf("remaining: %v", c.data)
	}
}

type ConcurrentStatsCollector[E constraints.Ordered] struct {
	mu syncutils.Mutex
	StatsCollector[E]
}

func NewConcurrentStatsCollector[E constraints.Ordered](tag string, duration time.Duration) *ConcurrentStatsCollector[E] {
	return &ConcurrentStatsCollector[E]{
		StatsCollector: NewStatsCollector[E](tag, duration),
	}
}

func (c *ConcurrentStatsCollector[E]) PrintRemainingStats() {
	c.mu.Lock()
	c.StatsCollector.PrintRemainingStats()
	c.mu.Unlock()
}
