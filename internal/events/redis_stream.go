package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	platformredis "geev-escrow/internal/platform/redis"
)

const (
	fieldTopic      = "topic"
	fieldLedgerTime = "ledger_time"
)

// RedisStream appends events to a redis stream, trimming it approximately
// to maxLen entries.
type RedisStream struct {
	client *platformredis.Client
	stream string
	maxLen int64
}

func NewRedisStream(client *platformredis.Client, stream string, maxLen int64) *RedisStream {
	return &RedisStream{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStream) Publish(ctx context.Context, evs ...Event) error {
	if len(evs) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, ev := range evs {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: s.stream,
			MaxLen: s.maxLen,
			Approx: true,
			Values: Encode(ev),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish %d events: %w", len(evs), err)
	}
	return nil
}

// Encode flattens an event into stream entry values.
func Encode(ev Event) map[string]interface{} {
	values := make(map[string]interface{}, len(ev.Fields)+2)
	for k, v := range ev.Fields {
		values[k] = v
	}
	values[fieldTopic] = ev.Topic
	values[fieldLedgerTime] = strconv.FormatUint(ev.LedgerTime, 10)
	return values
}

// Decode is the inverse of Encode.
func Decode(values map[string]interface{}) (Event, error) {
	topic, ok := values[fieldTopic].(string)
	if !ok || topic == "" {
		return Event{}, fmt.Errorf("stream entry has no topic")
	}
	ev := Event{Topic: topic, Fields: make(map[string]string, len(values))}
	if raw, ok := values[fieldLedgerTime].(string); ok {
		ts, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Event{}, fmt.Errorf("invalid ledger_time %q: %w", raw, err)
		}
		ev.LedgerTime = ts
	}
	for k, v := range values {
		if k == fieldTopic || k == fieldLedgerTime {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		ev.Fields[k] = s
	}
	return ev, nil
}
