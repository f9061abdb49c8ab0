package broker

import (
	"context"

	"trade-producer/pkg/common_errors"
	"trade-producer/pkg/utils/syncutils"

	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/xerrors"
)

// KafkaGo submits through an asynchronous kafka-go Writer. The topic is
// carried per message so one writer serves every topic.
type KafkaGo struct {
	writer   *kafkago.Writer
	delivery *deliveryCounter
	closed   syncutils.Flag
}

var _ = Client(&KafkaGo{})

func requiredAcks(acks string) kafkago.RequiredAcks {
	switch acks {
	case "0":
		return kafkago.RequireNone
	case "1":
		return kafkago.RequireOne
	default:
		return kafkago.RequireAll
	}
}

func NewKafkaGo(cfg Config) (*KafkaGo, error) {
	if len(cfg.Brokers) == 0 {
		return nil, common_errors.ErrNoBrokers
	}
	k := &KafkaGo{
		delivery: newDeliveryCounter("kafkago_acked", cfg.ReportInterval),
	}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           requiredAcks(cfg.Acks),
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				k.delivery.fail(uint64(len(messages)), err)
				return
			}
			k.delivery.ack(uint64(len(messages)))
		},
	}
	if cfg.Linger > 0 {
		w.BatchTimeout = cfg.Linger
	}
	if cfg.BatchSize > 0 {
		w.BatchBytes = int64(cfg.BatchSize)
	}
	k.writer = w
	return k, nil
}

func (k *KafkaGo) Send(topic, key, payload string) error {
	if k.closed.IsRaised() {
		return common_errors.ErrClientClosed
	}
	// Async writers return without waiting for the batch.
	return k.writer.WriteMessages(context.Background(), kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: []byte(payload),
	})
}

func (k *KafkaGo) Close(ctx context.Context) error {
	if !k.closed.Raise() {
		return nil
	}
	done := make(chan error, 1)
	go func() {
		done <- k.writer.Close()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return xerrors.Errorf("close writer: %w", common_errors.ErrFlushTimeout)
	}
}

func (k *KafkaGo) Stats() DeliveryStats {
	return k.delivery.snapshot()
}
