package state_test

import (
	"testing"

	"github.com/superfeelapi/goEmojiRoom/foundation/state"
)

func TestState(t *testing.T) {
	s := state.NewState()
	for _, svc := range []state.Service{state.Redis, state.MQTT} {
		if !s.Get(svc) {
			t.Fatalf("%s should start enabled", svc)
		}
	}

	s.Set(state.Redis, false)
	if s.Get(state.Redis) {
		t.Fatal("redis should be disabled")
	}
	if !s.Get(state.MQTT) {
		t.Fatal("mqtt should be untouched")
	}
	if s.Get(state.Service(42)) {
		t.Fatal("unknown service should report false")
	}
}
