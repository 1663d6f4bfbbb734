package livekit_test

import (
	"testing"
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/superfeelapi/goEmojiRoom/foundation/livekit"
)

func TestSignToken(t *testing.T) {
	token, err := livekit.SignToken("APIkey", "a-secret-that-is-long-enough", "cs-spark", "alice", "Alice", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	v, err := auth.ParseAPIToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if v.APIKey() != "APIkey" || v.Identity() != "alice" {
		t.Fatalf("got key %s identity %s", v.APIKey(), v.Identity())
	}

	grants, err := v.Verify("a-secret-that-is-long-enough")
	if err != nil {
		t.Fatal(err)
	}
	if grants.Name != "Alice" || grants.Video == nil || !grants.Video.RoomJoin || grants.Video.Room != "cs-spark" {
		t.Fatalf("unexpected grants %+v", grants)
	}

	if _, err := v.Verify("wrong"); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestSignTokenRequiresCredentials(t *testing.T) {
	if _, err := livekit.SignToken("", "secret", "room", "alice", "", time.Hour); err == nil {
		t.Fatal("expected error without key")
	}
	if _, err := livekit.SignToken("key", "secret", "room", "", "", time.Hour); err == nil {
		t.Fatal("expected error without identity")
	}
}

func TestSignObserverToken(t *testing.T) {
	token, err := livekit.SignObserverToken("APIkey", "a-secret-that-is-long-enough", "cs-spark", "emojiroom-watcher", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	v, err := auth.ParseAPIToken(token)
	if err != nil {
		t.Fatal(err)
	}
	grants, err := v.Verify("a-secret-that-is-long-enough")
	if err != nil {
		t.Fatal(err)
	}

	video := grants.Video
	if video == nil || !video.RoomJoin || video.Room != "cs-spark" {
		t.Fatalf("unexpected grants %+v", grants)
	}
	if !video.Hidden {
		t.Fatal("observer must be hidden")
	}
	if video.GetCanPublish() || video.GetCanPublishData() {
		t.Fatal("observer must not publish")
	}
	if v.Identity() != "emojiroom-watcher" {
		t.Fatalf("got identity %s", v.Identity())
	}

	if _, err := livekit.SignObserverToken("APIkey", "", "cs-spark", "w", time.Hour); err == nil {
		t.Fatal("expected error without secret")
	}
}
