package mqtt_test

import (
	"errors"
	"testing"

	"github.com/superfeelapi/goEmojiRoom/foundation/mqtt"
	"go.uber.org/zap"
)

func TestTopicFor(t *testing.T) {
	e := mqtt.New(mqtt.Config{Topic: "emojiroom/updates/"}, zap.NewNop().Sugar())
	if got := e.TopicFor("cs-spark", "PA_123"); got != "emojiroom/updates/cs-spark/PA_123" {
		t.Fatalf("got %s", got)
	}
}

func TestPublishBeforeConnect(t *testing.T) {
	e := mqtt.New(mqtt.Config{Broker: "127.0.0.1:1883", Topic: "emojiroom"}, zap.NewNop().Sugar())

	err := e.Publish("cs-spark", "PA_123", map[string]string{"emoji": "😀"})
	if !errors.Is(err, mqtt.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if _, failed := e.Stats(); failed != 1 {
		t.Fatalf("got %d failures, want 1", failed)
	}
	e.Close()
}
