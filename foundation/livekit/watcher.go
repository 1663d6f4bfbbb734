// Package livekit connects to the LiveKit room the participants talk in. It
// signs their access tokens and reports who comes and goes.
package livekit

import (
	"context"
	"fmt"
	"sync"
	"time"

	lksdk "github.com/livekit/server-sdk-go"
	"go.uber.org/zap"
)

const observerTokenLifetime = 24 * time.Hour

type Config struct {
	URL       string
	APIKey    string
	APISecret string
	Room      string
	Identity  string
}

// Events receives participant changes. Both callbacks may run on LiveKit's
// goroutines.
type Events struct {
	Join  func(sid, identity string)
	Leave func(sid string)
}

type Watcher struct {
	cfg    Config
	events Events
	logger *zap.SugaredLogger

	room *lksdk.Room

	mu      sync.Mutex
	present map[string]string
	closed  bool
}

func newWatcher(cfg Config, events Events, logger *zap.SugaredLogger) *Watcher {
	return &Watcher{
		cfg:     cfg,
		events:  events,
		logger:  logger,
		present: make(map[string]string),
	}
}

// Watch joins the room as a hidden observer that subscribes to nothing. Everyone
// already in the room is reported as joined. When ctx ends the watcher
// disconnects and reports everyone as gone.
func Watch(ctx context.Context, cfg Config, events Events, logger *zap.SugaredLogger) (*Watcher, error) {
	w := newWatcher(cfg, events, logger)

	token, err := SignObserverToken(cfg.APIKey, cfg.APISecret, cfg.Room, cfg.Identity, observerTokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("livekit: token[%s]: %w", cfg.Room, err)
	}

	room, err := lksdk.ConnectToRoomWithToken(cfg.URL, token, &lksdk.RoomCallback{
		OnParticipantConnected: func(rp *lksdk.RemoteParticipant) {
			w.joined(rp.SID(), rp.Identity())
		},
		OnParticipantDisconnected: func(rp *lksdk.RemoteParticipant) {
			w.left(rp.SID())
		},
		OnDisconnected: func() {
			w.logger.Infow("livekit: disconnected", "room", cfg.Room)
			w.leaveAll()
		},
	}, func(cp *lksdk.ConnectParams) { cp.AutoSubscribe = false })
	if err != nil {
		return nil, fmt.Errorf("livekit: connect[%s]: %w", cfg.Room, err)
	}
	w.room = room

	for _, rp := range room.GetParticipants() {
		w.joined(rp.SID(), rp.Identity())
	}

	go func() {
		<-ctx.Done()
		w.Close()
	}()

	return w, nil
}

func (w *Watcher) joined(sid, identity string) {
	if identity == w.cfg.Identity {
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if _, exists := w.present[sid]; exists {
		w.mu.Unlock()
		return
	}
	w.present[sid] = identity
	w.mu.Unlock()

	w.logger.Infow("livekit: participant joined", "sid", sid, "identity", identity)
	if w.events.Join != nil {
		w.events.Join(sid, identity)
	}
}

func (w *Watcher) left(sid string) {
	w.mu.Lock()
	if _, exists := w.present[sid]; !exists {
		w.mu.Unlock()
		return
	}
	delete(w.present, sid)
	w.mu.Unlock()

	w.logger.Infow("livekit: participant left", "sid", sid)
	if w.events.Leave != nil {
		w.events.Leave(sid)
	}
}

func (w *Watcher) leaveAll() {
	w.mu.Lock()
	sids := make([]string, 0, len(w.present))
	for sid := range w.present {
		sids = append(sids, sid)
	}
	w.mu.Unlock()

	for _, sid := range sids {
		w.left(sid)
	}
}

// Present returns the number of participants the watcher currently reports.
func (w *Watcher) Present() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.present)
}

func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	if w.room != nil {
		w.room.Disconnect()
	}
	w.leaveAll()
}
