package workers

import (
	"context"
	"errors"
	"strings"
	"time"

	go_redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"geev-escrow/internal/events"
	"geev-escrow/internal/platform/redis"
)

const (
	DefaultBlock = 5 * time.Second
	batchSize    = 64
)

// Handler consumes one decoded contract event.
type Handler interface {
	HandleEvent(ctx context.Context, ev events.Event) error
}

type StreamConfig struct {
	Stream   string
	Group    string
	Consumer string
	// Block is how long one read waits for entries; negative means do not wait.
	Block time.Duration
}

// RedisStreamWorker feeds the contract event stream to a Handler through a
// consumer group.
type RedisStreamWorker struct {
	rdb     *redis.Client
	cfg     StreamConfig
	handler Handler
	logger  zerolog.Logger
}

func NewRedisStreamWorker(rdb *redis.Client, cfg StreamConfig, handler Handler, logger zerolog.Logger) *RedisStreamWorker {
	if cfg.Block == 0 {
		cfg.Block = DefaultBlock
	}
	return &RedisStreamWorker{
		rdb:     rdb,
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// EnsureGroup creates the consumer group, reading from the start of the stream.
func (w *RedisStreamWorker) EnsureGroup(ctx context.Context) error {
	err := w.rdb.XGroupCreateMkStream(ctx, w.cfg.Stream, w.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start listens to the stream until ctx is cancelled.
func (w *RedisStreamWorker) Start(ctx context.Context) {
	if err := w.EnsureGroup(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Error creating consumer group")
	}

	w.logger.Info().Str("stream", w.cfg.Stream).Str("group", w.cfg.Group).Msg("Starting Redis stream worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping Redis stream worker")
			return
		default:
			if _, err := w.ProcessOnce(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				w.logger.Error().Err(err).Msg("Error reading from stream")
				time.Sleep(time.Second) // backoff on error
			}
		}
	}
}

// ProcessOnce first retries this consumer's pending entries, then reads one
// batch of new ones. It returns how many entries it acknowledged. Entries the
// handler fails on stay pending for the next pass; malformed ones are dropped.
func (w *RedisStreamWorker) ProcessOnce(ctx context.Context) (int, error) {
	retried, err := w.read(ctx, "0", -1)
	if err != nil {
		return 0, err
	}
	fresh, err := w.read(ctx, ">", w.cfg.Block)
	if err != nil {
		return retried, err
	}
	return retried + fresh, nil
}

func (w *RedisStreamWorker) read(ctx context.Context, from string, block time.Duration) (int, error) {
	entries, err := w.rdb.XReadGroup(ctx, &go_redis.XReadGroupArgs{
		Group:    w.cfg.Group,
		Consumer: w.cfg.Consumer,
		Streams:  []string{w.cfg.Stream, from},
		Count:    batchSize,
		Block:    block,
	}).Result()
	if errors.Is(err, go_redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	acked := 0
	for _, stream := range entries {
		for _, msg := range stream.Messages {
			if !w.processMessage(ctx, msg) {
				continue
			}
			if err := w.rdb.XAck(ctx, w.cfg.Stream, w.cfg.Group, msg.ID).Err(); err != nil {
				w.logger.Warn().Err(err).Str("id", msg.ID).Msg("Failed to ack stream entry")
				continue
			}
			acked++
		}
	}
	return acked, nil
}

// processMessage reports whether msg is done with and can be acknowledged.
func (w *RedisStreamWorker) processMessage(ctx context.Context, msg go_redis.XMessage) bool {
	ev, err := events.Decode(msg.Values)
	if err != nil {
		w.logger.Warn().Err(err).Str("id", msg.ID).Msg("Skipping malformed stream entry")
		return true
	}

	if err := w.handler.HandleEvent(ctx, ev); err != nil {
		w.logger.Error().Err(err).Str("id", msg.ID).Str("topic", ev.Topic).Msg("Error handling event, leaving it pending")
		return false
	}
	w.logger.Debug().Str("id", msg.ID).Str("topic", ev.Topic).Msg("Event handled")
	return true
}
