package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"vehicle-escrow-service/internal/adapter/storage/redis"
	"vehicle-escrow-service/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	pub := redis.NewEventPublisher(client, "escrow.events")
	ctx := context.Background()

	sub := client.Subscribe(ctx, "escrow.events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	evt := ports.OutboundEvent{
		Type:          "DepositConfirmed",
		TransactionID: "ESC-001",
		Data:          map[string]any{"amount": float64(30_000_000)},
		OccurredAt:    time.Now().UTC(),
	}
	require.NoError(t, pub.Publish(ctx, evt))

	select {
	case msg := <-sub.Channel():
		var got ports.OutboundEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "DepositConfirmed", got.Type)
		assert.Equal(t, "ESC-001", got.TransactionID)
		assert.Equal(t, float64(30_000_000), got.Data["amount"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message received on escrow.events")
	}
}

func TestEventPublisher_DefaultChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	pub := redis.NewEventPublisher(client, "")
	ctx := context.Background()

	sub := client.Subscribe(ctx, "escrow.events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, ports.OutboundEvent{Type: "EscrowCreated", TransactionID: "ESC-002"}))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, "EscrowCreated")
	case <-time.After(2 * time.Second):
		t.Fatal("no message received on default channel")
	}
}
