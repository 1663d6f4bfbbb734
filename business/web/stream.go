package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/superfeelapi/goEmojiRoom/business/worker"
	"github.com/superfeelapi/goEmojiRoom/foundation/pubsub"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Stream upgrades to a websocket and pushes every emotion update as a JSON
// text message until the client goes away.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("web: stream: upgrade", "ERROR", err)
		return
	}
	defer conn.Close()

	sub := pubsub.NewSubscriber(h.config.WSBuffer)
	h.broker.Subscribe(worker.UpdateTopic, sub)
	defer h.broker.UnSubscribe(worker.UpdateTopic, sub)

	h.logger.Infow("web: stream: G started", "remote", r.RemoteAddr)
	defer h.logger.Infow("web: stream: G completed", "remote", r.RemoteAddr)

	gone := make(chan struct{})
	go func(conn *websocket.Conn) {
		defer close(gone)

		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		// Clients only talk to close the stream.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}(conn)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return

		case update, open := <-sub.GetChannel():
			if !open {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(update); err != nil {
				h.logger.Infow("web: stream: write", "remote", r.RemoteAddr, "ERROR", err)
				return
			}

		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
