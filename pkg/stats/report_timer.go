package stats

import (
	"sync"
	"time"
)

// ReportTimer tells a periodic reporter when its interval has elapsed. The
// clock starts on the first Check.
type ReportTimer struct {
	once     sync.Once
	lastTs   time.Time
	duration time.Duration
}

func NewReportTimer(duration time.Duration) ReportTimer {
	return ReportTimer{
		duration: duration,
	}
}

func (r *ReportTimer) Check() bool {
	r.once.Do(func() {
		r.lastTs = time.Now()
	})
	return time.Since(r.lastTs) >= r.duration
}

// Mark resets the interval and returns how long the previous one lasted.
func (r *ReportTimer) Mark() time.Duration {
	now := time.Now()
	duration := now.Sub(r.lastTs)
	r.lastTs = now
	return duration
}
