package broker

import (
	"context"
	"strconv"

	"trade-producer/pkg/common_errors"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/xerrors"
)

type TopicSpec struct {
	Topic             string
	NumPartitions     int
	ReplicationFactor int
}

func CreateTopicSpecification(spec TopicSpec) []kafka.TopicSpecification {
	rf := spec.ReplicationFactor
	if rf <= 0 {
		rf = 1
	}
	return []kafka.TopicSpecification{
		{
			Topic:             spec.Topic,
			NumPartitions:     spec.NumPartitions,
			ReplicationFactor: rf,
			Config: map[string]string{
				"min.insync.replicas": strconv.Itoa(rf),
			},
		},
	}
}

// CreateTopic creates the topics through the admin API. A topic that
// already exists is not an error.
func CreateTopic(ctx context.Context, topics []kafka.TopicSpecification, bootstrapServer string) error {
	conf := kafka.ConfigMap{"bootstrap.servers": bootstrapServer}
	adminClient, err := kafka.NewAdminClient(&conf)
	if err != nil {
		return err
	}
	defer adminClient.Close()
	result, err := adminClient.CreateTopics(ctx, topics)
	if err != nil {
		return err
	}
	for _, res := range result {
		switch res.Error.Code() {
		case kafka.ErrTopicAlreadyExists:
			log.Warn().Msgf("topic %s already exists: %v", res.Topic, res.Error)
		case kafka.ErrNoError:
			log.Info().Msgf("Succeed to create topic %s", res.Topic)
		default:
			return xerrors.Errorf("failed to create topic %s: %v", res.Topic, res.Error)
		}
	}
	return nil
}

func createTopicKafkaGo(ctx context.Context, broker string, spec TopicSpec) error {
	conn, err := kafkago.DialContext(ctx, "tcp", broker)
	if err != nil {
		return xerrors.Errorf("dial %s: %w", broker, err)
	}
	defer conn.Close()
	rf := spec.ReplicationFactor
	if rf <= 0 {
		rf = 1
	}
	err = conn.CreateTopics(kafkago.TopicConfig{
		Topic:             spec.Topic,
		NumPartitions:     spec.NumPartitions,
		ReplicationFactor: rf,
	})
	if err != nil && !xerrors.Is(err, kafkago.TopicAlreadyExists) {
		return xerrors.Errorf("failed to create topic %s: %w", spec.Topic, err)
	}
	return nil
}

// EnsureTopic makes sure the topic exists with the driver the client was
// built from.
func EnsureTopic(ctx context.Context, cfg Config, client Client, spec TopicSpec) error {
	if spec.Topic == "" {
		return common_errors.ErrEmptyTopic
	}
	if spec.NumPartitions <= 0 {
		return common_errors.ErrInvalidPartitions
	}
	if mem, ok := client.(*Memory); ok {
		mem.CreateTopic(spec.Topic, spec.NumPartitions)
		return nil
	}
	if len(cfg.Brokers) == 0 {
		return common_errors.ErrNoBrokers
	}
	switch cfg.Driver {
	case DRIVER_CONFLUENT:
		return CreateTopic(ctx, CreateTopicSpecification(spec), cfg.Brokers[0])
	case DRIVER_KAFKAGO:
		return createTopicKafkaGo(ctx, cfg.Brokers[0], spec)
	default:
		return common_errors.ErrUnknownDriver
	}
}
