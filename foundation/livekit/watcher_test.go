package livekit

import (
	"sort"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type recorder struct {
	sync.Mutex
	joins  []string
	leaves []string
}

func (r *recorder) events() Events {
	return Events{
		Join: func(sid, identity string) {
			r.Lock()
			r.joins = append(r.joins, sid+"/"+identity)
			r.Unlock()
		},
		Leave: func(sid string) {
			r.Lock()
			r.leaves = append(r.leaves, sid)
			r.Unlock()
		},
	}
}

func TestWatcherEvents(t *testing.T) {
	var rec recorder
	w := newWatcher(Config{Room: "cs-spark", Identity: "observer"}, rec.events(), zap.NewNop().Sugar())

	w.joined("PA_1", "alice")
	w.joined("PA_1", "alice")
	w.joined("PA_2", "bob")
	w.joined("PA_0", "observer")
	w.left("PA_1")
	w.left("PA_1")
	w.left("PA_9")

	if len(rec.joins) != 2 || rec.joins[0] != "PA_1/alice" || rec.joins[1] != "PA_2/bob" {
		t.Fatalf("unexpected joins %v", rec.joins)
	}
	if len(rec.leaves) != 1 || rec.leaves[0] != "PA_1" {
		t.Fatalf("unexpected leaves %v", rec.leaves)
	}
	if w.Present() != 1 {
		t.Fatalf("got %d present", w.Present())
	}
}

func TestWatcherCloseLeavesEveryone(t *testing.T) {
	var rec recorder
	w := newWatcher(Config{Identity: "observer"}, rec.events(), zap.NewNop().Sugar())

	w.joined("PA_1", "alice")
	w.joined("PA_2", "bob")
	w.Close()
	w.Close()
	w.joined("PA_3", "carol")

	sort.Strings(rec.leaves)
	if len(rec.leaves) != 2 || rec.leaves[0] != "PA_1" || rec.leaves[1] != "PA_2" {
		t.Fatalf("unexpected leaves %v", rec.leaves)
	}
	if len(rec.joins) != 2 {
		t.Fatalf("join after close should be ignored, got %v", rec.joins)
	}
}
