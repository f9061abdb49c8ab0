//go:build stats
// +build stats

package stats

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

func (c *ConcurrentStatsCollector[E]) AddSample(sample E) {
	c.mu.Lock()
	c.StatsCollector.AddSample(sample)
	c.mu.Unlock()
}

func (c *StatsCollector[E]) AddSample(sample E) {
	c.data = append(c.data, sample)
	if uint32(len(c.data)) >= c.min_report_samples && c.report_timer.Check() {
		slices.Sort(c.data)
		p50 := POf(c.data, 0.5)
		p90 := POf(c.data, 0.9)
		p99 := POf(c.data, 0.99)
		duration := c.report_timer.Mark()
		log.Info().Str("tag", c.tag).Int("samples", len(c.data)).Dur("dur", duration).
			Msgf("p50=%v, p90=%v, p99=%v", p50, p90, p99)
		c.data = make([]E, 0, c.min_report_samples)
	}
}
