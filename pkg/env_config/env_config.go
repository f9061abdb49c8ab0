package env_config

import (
	"os"
	"strings"
	"time"

	"trade-producer/pkg/broker"
	"trade-producer/pkg/common_errors"
	"trade-producer/pkg/emitter"
	"trade-producer/pkg/tradetypes"

	"github.com/caarlos0/env/v10"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

const (
	ENV_PREFIX = "PRODUCER_"

	DEFAULT_TOTAL_MESSAGES   = 1000000
	DEFAULT_PARTITIONS       = 5
	DEFAULT_THREADS          = 5
	DEFAULT_MESSAGES_PER_SEC = 500
	DEFAULT_TOPIC            = "trade"
	DEFAULT_BROKERS          = "127.0.0.1:9092"
)

// ProducerConfig is everything the producer reads at start. Values are
// layered: defaults, then the yaml file, then PRODUCER_* variables.
type ProducerConfig struct {
	TotalMessages  int           `yaml:"totalMessages" env:"TOTAL_MESSAGES"`
	Partitions     int           `yaml:"partitions" env:"PARTITIONS"`
	Threads        int           `yaml:"threads" env:"THREADS"`
	MessagesPerSec int           `yaml:"messagesPerSec" env:"MESSAGES_PER_SEC"`
	Topic          string        `yaml:"topic" env:"TOPIC"`
	Brokers        string        `yaml:"brokers" env:"BROKERS"`
	Driver         string        `yaml:"driver" env:"DRIVER"`
	Acks           string        `yaml:"acks" env:"ACKS"`
	Linger         time.Duration `yaml:"linger" env:"LINGER"`
	Serde          string        `yaml:"serde" env:"SERDE"`
	Pacing         string        `yaml:"pacing" env:"PACING"`
	Delay          time.Duration `yaml:"delay" env:"DELAY"`
	AckPolicy      string        `yaml:"ackPolicy" env:"ACK_POLICY"`
	EnsureTopic    bool          `yaml:"ensureTopic" env:"ENSURE_TOPIC"`
	Replication    int           `yaml:"replication" env:"REPLICATION"`
	Records        string        `yaml:"records" env:"RECORDS"`
	Seed           uint64        `yaml:"seed" env:"SEED"`
}

type fileConfig struct {
	Producer *ProducerConfig `yaml:"producer"`
}

func Default() ProducerConfig {
	return ProducerConfig{
		TotalMessages:  DEFAULT_TOTAL_MESSAGES,
		Partitions:     DEFAULT_PARTITIONS,
		Threads:        DEFAULT_THREADS,
		MessagesPerSec: DEFAULT_MESSAGES_PER_SEC,
		Topic:          DEFAULT_TOPIC,
		Brokers:        DEFAULT_BROKERS,
		Driver:         broker.DRIVER_CONFLUENT,
		Acks:           "all",
		Serde:          tradetypes.JSON.String(),
		Pacing:         emitter.PacingFixed.String(),
		Delay:          emitter.DEFAULT_DELAY,
		AckPolicy:      emitter.FireAndForget.String(),
		Replication:    1,
	}
}

// Load builds the config. An empty path skips the file layer.
func Load(path string) (ProducerConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, xerrors.Errorf("read config %s: %w", path, err)
		}
		if err := cfg.applyYAML(data); err != nil {
			return cfg, xerrors.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: ENV_PREFIX}); err != nil {
		return cfg, xerrors.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *ProducerConfig) applyYAML(data []byte) error {
	f := fileConfig{Producer: c}
	return yaml.Unmarshal(data, &f)
}

func (c *ProducerConfig) Validate() error {
	if err := c.JobConfig().Validate(); err != nil {
		return err
	}
	if c.Partitions < 1 {
		return common_errors.ErrInvalidPartitions
	}
	switch strings.ToLower(c.Driver) {
	case broker.DRIVER_CONFLUENT, broker.DRIVER_KAFKAGO:
		if len(broker.ParseBrokers(c.Brokers)) == 0 {
			return common_errors.ErrNoBrokers
		}
	case broker.DRIVER_MEMORY:
	default:
		return xerrors.Errorf("%w: %s", common_errors.ErrUnknownDriver, c.Driver)
	}
	if _, err := c.SerdeFormat(); err != nil {
		return err
	}
	if _, err := c.PacerFactory(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

func (c *ProducerConfig) JobConfig() emitter.JobConfig {
	return emitter.JobConfig{
		TotalMessages:  c.TotalMessages,
		Workers:        c.Threads,
		MessagesPerSec: c.MessagesPerSec,
		Topic:          c.Topic,
	}
}

func (c *ProducerConfig) BrokerConfig() broker.Config {
	return broker.Config{
		Driver:     strings.ToLower(c.Driver),
		Brokers:    broker.ParseBrokers(c.Brokers),
		Acks:       c.Acks,
		Linger:     c.Linger,
		Partitions: c.Partitions,
	}
}

func (c *ProducerConfig) TopicSpec() broker.TopicSpec {
	return broker.TopicSpec{
		Topic:             c.Topic,
		NumPartitions:     c.Partitions,
		ReplicationFactor: c.Replication,
	}
}

func (c *ProducerConfig) SerdeFormat() (tradetypes.SerdeFormat, error) {
	return tradetypes.ParseSerdeFormat(c.Serde)
}

func (c *ProducerConfig) PacerFactory() (emitter.PacerFactory, error) {
	mode, err := emitter.ParsePacingMode(c.Pacing)
	if err != nil {
		return nil, err
	}
	return emitter.NewPacerFactory(mode, c.Delay, c.MessagesPerSec)
}

func (c *ProducerConfig) Policy() (emitter.AckPolicy, error) {
	return emitter.ParseAckPolicy(c.AckPolicy)
}
