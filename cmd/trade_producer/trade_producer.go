package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade-producer/pkg/broker"
	"trade-producer/pkg/emitter"
	"trade-producer/pkg/env_config"
	"trade-producer/pkg/generator"
	"trade-producer/pkg/recordloader"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

var (
	FLAGS_config        string
	FLAGS_records       string
	FLAGS_dry_run       bool
	FLAGS_ensure_topic  bool
	FLAGS_replay        bool
	FLAGS_flush_timeout time.Duration
)

func init() {
	logLevel := os.Getenv("LOG_LEVEL")
	if level, err := zerolog.ParseLevel(logLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func main() {
	flag.StringVar(&FLAGS_config, "config", "", "yaml config file with a producer section")
	flag.StringVar(&FLAGS_records, "records", "", "json lines record file, local path or s3://bucket/object")
	flag.BoolVar(&FLAGS_dry_run, "dry_run", false, "send to the in-memory broker")
	flag.BoolVar(&FLAGS_ensure_topic, "ensure_topic", false, "create the topic before sending")
	flag.BoolVar(&FLAGS_replay, "replay", false, "send loaded records instead of synthetic trades")
	flag.DurationVar(&FLAGS_flush_timeout, "flush_timeout", 30*time.Second, "how long to wait for queued messages on exit")
	flag.Parse()

	if err := run(); err != nil {
		if xerrors.Is(err, context.Canceled) {
			log.Warn().Msg("interrupted")
			os.Exit(130)
		}
		log.Fatal().Err(err).Msg("trade producer failed")
	}
}

func run() error {
	cfg, err := env_config.Load(FLAGS_config)
	if err != nil {
		return err
	}
	if FLAGS_dry_run {
		cfg.Driver = broker.DRIVER_MEMORY
	}
	if FLAGS_records != "" {
		cfg.Records = FLAGS_records
	}
	if FLAGS_ensure_topic {
		cfg.EnsureTopic = true
	}
	log.Info().Interface("config", cfg).Msg("producer config")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var idx recordloader.Index
	if cfg.Records != "" {
		idx, err = recordloader.Open(ctx, cfg.Records)
		if err != nil {
			return xerrors.Errorf("load records: %w", err)
		}
		log.Info().Int("ids", idx.Len()).Int("records", idx.NumRecords()).Str("from", cfg.Records).Msg("records loaded")
	}
	gen, err := buildGenerator(&cfg, idx)
	if err != nil {
		return err
	}

	bcfg := cfg.BrokerConfig()
	client, err := broker.New(bcfg)
	if err != nil {
		return xerrors.Errorf("create %s client: %w", bcfg.Driver, err)
	}
	if cfg.EnsureTopic {
		if err := broker.EnsureTopic(ctx, bcfg, client, cfg.TopicSpec()); err != nil {
			return err
		}
	}

	newPacer, err := cfg.PacerFactory()
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	coord, err := emitter.NewCoordinator(cfg.JobConfig(), gen, client,
		emitter.WithPacerFactory(newPacer), emitter.WithAckPolicy(policy))
	if err != nil {
		return err
	}

	start := time.Now()
	runErr := coord.Run(ctx)
	elapsed := time.Since(start)

	flushCtx, cancel := context.WithTimeout(context.Background(), FLAGS_flush_timeout)
	defer cancel()
	closeErr := client.Close(flushCtx)

	var sent int64
	for _, p := range coord.Progress() {
		sent += p
	}
	delivery := client.Stats()
	log.Warn().
		Int64("sent", sent).
		Int("dropped", coord.Dropped()).
		Uint64("send_failed", coord.Failed()).
		Uint64("acked", delivery.Acked).
		Uint64("delivery_failed", delivery.Failed).
		Dur("elapsed", elapsed).
		Float64("throughput", float64(sent)/elapsed.Seconds()).
		Msg("producer done")

	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return xerrors.Errorf("close %s client: %w", bcfg.Driver, closeErr)
	}
	return nil
}

func buildGenerator(cfg *env_config.ProducerConfig, idx recordloader.Index) (generator.Generator, error) {
	if FLAGS_replay {
		replay, err := generator.NewRecordReplay(idx)
		if err != nil {
			return nil, xerrors.Errorf("replay: %w", err)
		}
		return replay, nil
	}
	serde, err := cfg.SerdeFormat()
	if err != nil {
		return nil, err
	}
	tg, err := generator.NewTradeGenerator(serde, cfg.Seed)
	if err != nil {
		return nil, err
	}
	return tg, nil
}
