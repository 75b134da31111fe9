package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "galaxy.events")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	event := Event{
		Type:      GalaxyGenerated,
		GalaxyID:  "g1",
		Name:      "Andromeda",
		BodyCount: 42,
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	publisher := NewRedisPublisher(client, "galaxy.events")
	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage returned error: %v", err)
	}
	if msg.Channel != "galaxy.events" {
		t.Errorf("Expected channel galaxy.events, got %q", msg.Channel)
	}
	var got Event
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("Invalid event JSON %q: %v", msg.Payload, err)
	}
	if got != event {
		t.Errorf("Expected %+v, got %+v", event, got)
	}
}

func TestRedisPublisher_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	err := NewRedisPublisher(client, "galaxy.events").Publish(context.Background(), Event{Type: GalaxyDeleted})
	if err == nil {
		t.Error("Expected error when redis is unreachable")
	}
}
