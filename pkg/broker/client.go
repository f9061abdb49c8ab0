package broker

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"trade-producer/pkg/common_errors"
	"trade-producer/pkg/stats"

	"github.com/rs/zerolog/log"
)

const (
	DRIVER_CONFLUENT = "confluent"
	DRIVER_KAFKAGO   = "kafkago"
	DRIVER_MEMORY    = "memory"

	DEFAULT_REPORT_INTERVAL = 10 * time.Second
)

// Message is one submission: the payload goes to topic under key.
type Message struct {
	Topic   string
	Key     string
	Payload string
}

// Client enqueues messages for asynchronous delivery. Send returns once the
// message is queued; an error means it was never queued. Delivery results
// are only counted, never reported back to the sender.
type Client interface {
	Send(topic, key, payload string) error
	// Close flushes queued messages until ctx is done, then releases the
	// client. Sends after Close fail with ErrClientClosed.
	Close(ctx context.Context) error
	Stats() DeliveryStats
}

type DeliveryStats struct {
	Acked  uint64
	Failed uint64
}

type Config struct {
	Driver         string
	Brokers        []string
	Acks           string
	Linger         time.Duration
	BatchSize      int
	Partitions     int
	ReportInterval time.Duration
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func New(cfg Config) (Client, error) {
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = DEFAULT_REPORT_INTERVAL
	}
	switch cfg.Driver {
	case DRIVER_CONFLUENT:
		return NewConfluent(cfg)
	case DRIVER_KAFKAGO:
		return NewKafkaGo(cfg)
	case DRIVER_MEMORY:
		return NewMemory(cfg.Partitions), nil
	default:
		return nil, common_errors.ErrUnknownDriver
	}
}

type deliveryCounter struct {
	acked  atomic.Uint64
	failed atomic.Uint64
	tput   *stats.ThroughputCounter
}

func newDeliveryCounter(tag string, interval time.Duration) *deliveryCounter {
	return &deliveryCounter{tput: stats.NewThroughputCounter(tag, interval)}
}

func (d *deliveryCounter) ack(n uint64) {
	d.acked.Add(n)
	d.tput.Tick(n)
}

func (d *deliveryCounter) fail(n uint64, err error) {
	d.failed.Add(n)
	log.Error().Err(err).Uint64("count", n).Msg("Delivery failed")
}

func (d *deliveryCounter) snapshot() DeliveryStats {
	return DeliveryStats{Acked: d.acked.Load(), Failed: d.failed.Load()}
}
