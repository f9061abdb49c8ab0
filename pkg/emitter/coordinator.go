package emitter

import (
	"context"
	"sync/atomic"
	"time"

	"trade-producer/pkg/broker"
	"trade-producer/pkg/debug"
	"trade-producer/pkg/generator"
	"trade-producer/pkg/stats"
	"trade-producer/pkg/utils/syncutils"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Coordinator splits a message budget over a fixed set of workers and runs
// them to completion. A Coordinator runs one job at a time.
type Coordinator struct {
	cfg       JobConfig
	gen       generator.Generator
	client    broker.Client
	newPacer  PacerFactory
	ackPolicy AckPolicy

	mu       syncutils.Mutex
	counters []*atomic.Int64
	failed   atomic.Uint64
	sendLat  *stats.ConcurrentStatsCollector[int64]
}

type Option func(*Coordinator)

func WithPacerFactory(f PacerFactory) Option {
	return func(c *Coordinator) {
		c.newPacer = f
	}
}

func WithAckPolicy(p AckPolicy) Option {
	return func(c *Coordinator) {
		c.ackPolicy = p
	}
}

func NewCoordinator(cfg JobConfig, gen generator.Generator, client broker.Client, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Coordinator{
		cfg:       cfg,
		gen:       gen,
		client:    client,
		ackPolicy: FireAndForget,
		newPacer: func(int) Pacer {
			return FixedDelay{Delay: DEFAULT_DELAY}
		},
		sendLat: stats.NewConcurrentStatsCollector[int64]("send_us", stats.DEFAULT_COLLECT_DURATION),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Coordinator) Share() int {
	return c.cfg.Share()
}

func (c *Coordinator) Dropped() int {
	return c.cfg.Dropped()
}

// Failed counts submissions that returned an error under CountFailures.
func (c *Coordinator) Failed() uint64 {
	return c.failed.Load()
}

// Progress reports how many messages each worker of the current or last run
// has submitted. It is nil before the first run.
func (c *Coordinator) Progress() []int64 {
	c.mu.Lock()
	counters := c.counters
	c.mu.Unlock()
	if counters == nil {
		return nil
	}
	share := int64(c.Share())
	out := make([]int64, len(counters))
	for i, ctr := range counters {
		v := ctr.Load()
		if v > share {
			v = share
		}
		out[i] = v
	}
	return out
}

// Run blocks until every worker has sent its share, or until ctx ends. In
// the latter case all workers are joined first and ctx's error is
// returned. Sends already handed to the broker are left to it.
func (c *Coordinator) Run(ctx context.Context) error {
	share := c.Share()
	debug.Assert(share*c.cfg.Workers+c.Dropped() == c.cfg.TotalMessages, "share does not add up to the budget")

	counters := make([]*atomic.Int64, c.cfg.Workers)
	for i := range counters {
		counters[i] = new(atomic.Int64)
	}
	c.mu.Lock()
	c.counters = counters
	c.mu.Unlock()

	log.Info().Int("workers", c.cfg.Workers).Int("share", share).Int("dropped", c.Dropped()).
		Str("topic", c.cfg.Topic).Msg("Starting to send messages")
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i := 0; i < c.cfg.Workers; i++ {
		w := &Worker{
			id:             i,
			key:            WorkerKey(i),
			topic:          c.cfg.Topic,
			share:          int64(share),
			messagesPerSec: c.cfg.MessagesPerSec,
			counter:        counters[i],
			gen:            c.gen,
			client:         c.client,
			pacer:          c.newPacer(i),
			ackPolicy:      c.ackPolicy,
			failed:         &c.failed,
			sendLat:        c.sendLat,
		}
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	err := g.Wait()
	c.sendLat.PrintRemainingStats()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Int("sent", share*c.cfg.Workers).Msg("All message tasks finished")
	return nil
}
