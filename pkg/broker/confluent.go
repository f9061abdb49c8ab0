package broker

import (
	"context"
	"strings"

	"trade-producer/pkg/common_errors"
	"trade-producer/pkg/utils/syncutils"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

const FLUSH_STEP_MS = 1000

// Confluent submits through librdkafka's internal queue.
type Confluent struct {
	producer *kafka.Producer
	delivery *deliveryCounter
	closed   syncutils.Flag
}

var _ = Client(&Confluent{})

func CreateProducer(cfg Config) (*kafka.Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, common_errors.ErrNoBrokers
	}
	acks := cfg.Acks
	if acks == "" {
		acks = "all"
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 131072
	}
	return kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     strings.Join(cfg.Brokers, ","),
		"go.produce.channel.size":               100000,
		"go.events.channel.size":                100000,
		"acks":                                  acks,
		"batch.size":                            batchSize,
		"linger.ms":                             int(cfg.Linger.Milliseconds()),
		"max.in.flight.requests.per.connection": 5,
	})
}

func NewConfluent(cfg Config) (*Confluent, error) {
	p, err := CreateProducer(cfg)
	if err != nil {
		return nil, xerrors.Errorf("create producer: %w", err)
	}
	c := &Confluent{
		producer: p,
		delivery: newDeliveryCounter("confluent_acked", cfg.ReportInterval),
	}
	go c.processReturnEvents()
	return c, nil
}

func (c *Confluent) processReturnEvents() {
	for e := range c.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				c.delivery.fail(1, ev.TopicPartition.Error)
			} else {
				log.Debug().Msgf("Delivered message to %v, ts %v", ev.TopicPartition, ev.Timestamp)
				c.delivery.ack(1)
			}
		case kafka.Error:
			log.Error().Err(ev).Msg("producer error")
		default:
		}
	}
}

func (c *Confluent) Send(topic, key, payload string) error {
	if c.closed.IsRaised() {
		return common_errors.ErrClientClosed
	}
	t := topic
	return c.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &t, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          []byte(payload),
	}, nil)
}

func (c *Confluent) Close(ctx context.Context) error {
	if !c.closed.Raise() {
		return nil
	}
	var err error
	for {
		remaining := c.producer.Flush(FLUSH_STEP_MS)
		if remaining == 0 {
			break
		}
		if ctx.Err() != nil {
			err = xerrors.Errorf("%d messages left in queue: %w", remaining, common_errors.ErrFlushTimeout)
			break
		}
	}
	c.producer.Close()
	return err
}

func (c *Confluent) Stats() DeliveryStats {
	return c.delivery.snapshot()
}
