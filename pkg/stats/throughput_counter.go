package stats

import (
	"time"

	"trade-producer/pkg/utils/syncutils"

	"github.com/rs/zerolog/log"
)

// ThroughputCounter accumulates a count from any goroutine and logs the
// rate observed since the previous report whenever the report interval has
// passed.
type ThroughputCounter struct {
	mu           syncutils.Mutex
	tag          string
	count        uint64
	last_count   uint64
	report_timer ReportTimer
}

func NewThroughputCounter(tag string, interval time.Duration) *ThroughputCounter {
	return &ThroughputCounter{
		tag:          tag,
		report_timer: NewReportTimer(interval),
	}
}

func (c *ThroughputCounter) Tick(count uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count += count
	if c.count > c.last_count && c.report_timer.Check() {
		duration := c.report_timer.Mark()
		tp := float64(c.count-c.last_count) / duration.Seconds()
		c.last_count = c.count
		log.Info().Str("tag", c.tag).Dur("dur", duration).
			Uint64("value", c.count).Float64("rate", tp).Msg("throughput")
	}
}

func (c *ThroughputCounter) GetCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
