package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestHubPublishReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	a, ok := hub.join("a")
	if !ok {
		t.Fatalf("join failed")
	}
	b, _ := hub.join("b")

	hub.Publish(Event{Type: "change", Resource: "schedules", Action: "CREATE", ID: "4"})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			var ev Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if ev.Resource != "schedules" || ev.ID != "4" || ev.At.IsZero() {
				t.Fatalf("unexpected event %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive the event", c.username)
		}
	}

	hub.leave(a)
	if _, open := <-a.send; open {
		t.Fatalf("expected send channel closed after leave")
	}
	if n := hub.GetClientCount(); n != 1 {
		t.Fatalf("expected 1 client, got %d", n)
	}

	cancel()
	<-hub.done
	if _, ok := hub.join("late"); ok {
		t.Fatalf("join after shutdown should fail")
	}
	hub.leave(b)
}

func TestPublishOnNilHub(t *testing.T) {
	var hub *Hub
	hub.Publish(Event{Type: "noop"})
}
