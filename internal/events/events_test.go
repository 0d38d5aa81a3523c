package events

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformredis "geev-escrow/internal/platform/redis"
)

func sampleEvent() Event {
	return Event{
		Topic:      GiveawayCreated,
		LedgerTime: 1700000000,
		Fields:     map[string]string{"giveaway_id": "1", "creator": "EQabc", "amount": "500"},
	}
}

func TestEncodeDecode(t *testing.T) {
	ev := sampleEvent()

	decoded, err := Decode(Encode(ev))
	require.NoError(t, err)
	assert.Equal(t, ev, decoded)

	id, ok := decoded.Uint("giveaway_id")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), id)

	_, err = Decode(map[string]interface{}{"creator": "x"})
	assert.Error(t, err)
}

func TestRedisStreamPublish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := platformredis.New(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "")
	defer client.Close()

	sink := NewRedisStream(client, "escrow:events", 1000)
	ctx := context.Background()
	require.NoError(t, sink.Publish(ctx, sampleEvent(), Event{Topic: PauseChanged, Fields: map[string]string{"paused": "true"}}))
	require.NoError(t, sink.Publish(ctx))

	msgs, err := client.XRange(ctx, "escrow:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	first, err := Decode(msgs[0].Values)
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), first)

	second, err := Decode(msgs[1].Values)
	require.NoError(t, err)
	assert.Equal(t, PauseChanged, second.Topic)
}

func TestMemory(t *testing.T) {
	sink := NewMemory()
	require.NoError(t, sink.Publish(context.Background(), sampleEvent()))

	assert.Equal(t, []string{GiveawayCreated}, sink.Topics())
	assert.Len(t, sink.Events(), 1)
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLog(zerolog.New(&buf))

	require.NoError(t, sink.Publish(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), `"topic":"GiveawayCreated"`)
	assert.Contains(t, buf.String(), `"creator":"EQabc"`)
}
