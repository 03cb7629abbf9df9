//go:build integration

package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_Publish(t *testing.T) {
	natsURL := skipWithoutNATS(t)

	sub, err := nats.Connect(natsURL)
	if err != nil {
		t.Fatalf("failed to connect subscriber: %v", err)
	}
	defer sub.Close()

	received := make(chan Event, 1)
	if _, err := sub.Subscribe("hh.test.>", func(msg *nats.Msg) {
		var event Event
		_ = json.Unmarshal(msg.Data, &event)
		received <- event
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := sub.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	pub, err := NewNATS(natsURL, "hh.test", nil)
	if err != nil {
		t.Fatalf("failed to connect publisher: %v", err)
	}
	defer pub.Close()

	if err := pub.Publish(context.Background(), Event{Type: TypeInterviewStarted, InterviewID: "iv-1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case event := <-received:
		if event.InterviewID != "iv-1" || event.Type != TypeInterviewStarted {
			t.Errorf("unexpected event: %+v", event)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
