package emitter

import (
	"context"
	"sync/atomic"

	"trade-producer/pkg/broker"
	"trade-producer/pkg/generator"
	"trade-producer/pkg/stats"

	"github.com/rs/zerolog/log"
)

// Worker sends its share of the budget under a key of its own, pausing on
// its pacer after every send.
type Worker struct {
	id             int
	key            string
	topic          string
	share          int64
	messagesPerSec int
	counter        *atomic.Int64
	gen            generator.Generator
	client         broker.Client
	pacer          Pacer
	ackPolicy      AckPolicy
	failed         *atomic.Uint64
	sendLat        *stats.ConcurrentStatsCollector[int64]
}

// Run returns nil once the share is sent, or the context's error if the
// context ends first. The counter is bumped before the bound check, so the
// worker sends for counter values 1..share.
func (w *Worker) Run(ctx context.Context) error {
	log.Info().Int("worker", w.id).Str("key", w.key).Int64("share", w.share).Msg("worker STARTED")
	sent := 0
	for {
		if err := ctx.Err(); err != nil {
			log.Info().Int("worker", w.id).Int("sent", sent).Err(err).Msg("worker cancelled")
			return err
		}
		if w.counter.Add(1) > w.share {
			break
		}
		payload := w.gen.Generate()
		start := stats.TimerBegin()
		err := w.client.Send(w.topic, w.key, payload)
		w.sendLat.AddSample(stats.Elapsed(start).Microseconds())
		if err != nil && w.ackPolicy == CountFailures {
			w.failed.Add(1)
			log.Debug().Int("worker", w.id).Err(err).Msg("send failed")
		}
		sent += 1
		if sent%w.messagesPerSec == 0 {
			log.Info().Int("worker", w.id).Int("sent", sent).Msg("progress")
		}
		if err := w.pacer.Wait(ctx); err != nil {
			log.Info().Int("worker", w.id).Int("sent", sent).Err(err).Msg("worker cancelled")
			return err
		}
	}
	log.Info().Int("worker", w.id).Int("sent", sent).Msg("worker finished sending messages")
	return nil
}
