package session_test

import (
	"errors"
	"testing"

	"github.com/superfeelapi/goEmojiRoom/business/emotion"
	"github.com/superfeelapi/goEmojiRoom/business/session"
	"github.com/superfeelapi/goEmojiRoom/business/tiles"
)

func newRegistry(t *testing.T, capacity int, admitWithoutTile bool) *session.Registry {
	t.Helper()
	table, err := tiles.New(capacity)
	if err != nil {
		t.Fatal(err)
	}
	return session.NewRegistry("cs-spark", table, admitWithoutTile)
}

func TestJoinLeave(t *testing.T) {
	r := newRegistry(t, 2, false)

	a, err := r.Join("A", "alice")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Join("B", "")
	if err != nil {
		t.Fatal(err)
	}
	if a.Slot != 0 || b.Slot != 1 {
		t.Fatalf("got slots %d %d", a.Slot, b.Slot)
	}
	if b.Identity != "B" {
		t.Fatalf("identity should default to id, got %q", b.Identity)
	}

	if _, err := r.Join("C", "carol"); !errors.Is(err, tiles.ErrAllocationFailure) {
		t.Fatalf("expected ErrAllocationFailure, got %v", err)
	}

	r.Leave("A")
	r.Leave("A")
	r.Leave("ghost")

	c, err := r.Join("C", "carol")
	if err != nil {
		t.Fatal(err)
	}
	if c.Slot != 0 {
		t.Fatalf("C got slot %d, want 0", c.Slot)
	}

	if _, ok := r.Lookup("A"); ok {
		t.Fatal("A should be gone")
	}
}

func TestJoinTwiceReturnsSameParticipant(t *testing.T) {
	r := newRegistry(t, 2, false)
	first, _ := r.Join("A", "alice")
	second, err := r.Join("A", "someone else")
	if err != nil {
		t.Fatal(err)
	}
	if first.Slot != second.Slot || second.Identity != "alice" {
		t.Fatalf("got %+v after %+v", second, first)
	}
	if r.Stats().TilesInUse != 1 {
		t.Fatalf("got %d tiles in use", r.Stats().TilesInUse)
	}
}

func TestJoinEmptyID(t *testing.T) {
	r := newRegistry(t, 1, true)
	if _, err := r.Join("", "nobody"); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestAdmitWithoutTile(t *testing.T) {
	r := newRegistry(t, 1, true)
	r.Join("A", "alice")

	b, err := r.Join("B", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if b.Slot != session.NoTile || b.HasTile() {
		t.Fatalf("B should have no tile, got slot %d", b.Slot)
	}

	ps := r.Participants()
	if len(ps) != 2 || ps[0].ID != "A" || ps[1].ID != "B" {
		t.Fatalf("unexpected order %+v", ps)
	}

	// B keeps no tile even after A leaves; the tile goes to the next joiner.
	r.Leave("A")
	c, _ := r.Join("C", "carol")
	if c.Slot != 0 {
		t.Fatalf("C got slot %d, want 0", c.Slot)
	}
}

func TestFrames(t *testing.T) {
	r := newRegistry(t, 4, false)
	r.Join("A", "alice")
	r.Join("B", "bob")

	if err := r.PutFrame("ghost", []byte{1}, "image/png"); !errors.Is(err, session.ErrUnknownParticipant) {
		t.Fatalf("expected ErrUnknownParticipant, got %v", err)
	}
	if err := r.PutFrame("A", nil, "image/png"); !errors.Is(err, session.ErrEmptyFrame) {
		t.Fatalf("expected ErrEmptyFrame, got %v", err)
	}

	r.PutFrame("A", []byte{1}, "image/png")
	r.PutFrame("A", []byte{2}, "image/png")
	r.PutFrame("B", []byte{3}, "image/jpeg")

	st := r.Stats()
	if st.PendingFrames != 2 || st.DroppedFrames != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}

	frames := r.TakeFrames()
	if len(frames) != 2 {
		t.Fatalf("got %d frames", len(frames))
	}
	if frames[0].ParticipantID != "A" || frames[0].Image[0] != 2 {
		t.Fatalf("A should carry the latest frame, got %+v", frames[0])
	}
	if r.TakeFrames() != nil {
		t.Fatal("frames should be drained")
	}

	r.PutFrame("B", []byte{4}, "image/png")
	r.Leave("B")
	if r.TakeFrames() != nil {
		t.Fatal("leaving should drop the pending frame")
	}
}

func TestApply(t *testing.T) {
	r := newRegistry(t, 4, false)
	r.Join("A", "alice")
	r.PutFrame("A", []byte{1}, "image/png")
	frame := r.TakeFrames()[0]

	u, ok := r.Apply(frame, emotion.Happiness, 0.9, &session.Rect{Width: 10, Height: 10})
	if !ok {
		t.Fatal("result should be applied")
	}
	if u.Emoji != "😀" || u.Slot != 0 || u.Room != "cs-spark" || u.ID == "" {
		t.Fatalf("unexpected update %+v", u)
	}

	p, _ := r.Lookup("A")
	if p.Last == nil || p.Last.ID != u.ID {
		t.Fatalf("last update not recorded: %+v", p.Last)
	}
}

func TestApplyAfterLeaveIsDiscarded(t *testing.T) {
	r := newRegistry(t, 4, false)
	r.Join("A", "alice")
	r.PutFrame("A", []byte{1}, "image/png")
	frame := r.TakeFrames()[0]

	r.Leave("A")
	if _, ok := r.Apply(frame, emotion.Anger, 1, nil); ok {
		t.Fatal("result for a departed participant should be discarded")
	}

	r.Join("A", "alice")
	if _, ok := r.Apply(frame, emotion.Anger, 1, nil); ok {
		t.Fatal("result from a previous join should be discarded")
	}
	p, _ := r.Lookup("A")
	if p.Last != nil {
		t.Fatal("stale result leaked into the new join")
	}
}
