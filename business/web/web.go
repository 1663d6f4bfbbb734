// Package web exposes the room over HTTP: token issue, frame upload, one-shot
// analysis, room state and a websocket stream of emotion updates.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/superfeelapi/goEmojiRoom/business/session"
	"github.com/superfeelapi/goEmojiRoom/business/worker"
	"github.com/superfeelapi/goEmojiRoom/foundation/pubsub"
	"go.uber.org/zap"
)

const (
	presenterHeader = "X-Presenter-Key"
	maxFrameBytes   = 8 << 20
)

type LiveKit struct {
	URL           string
	APIKey        string
	APISecret     string
	TokenLifetime time.Duration
}

type Config struct {
	LiveKit      LiveKit
	PresenterKey string
	WSBuffer     int
}

type Settings struct {
	Config
	Logger   *zap.SugaredLogger
	Registry *session.Registry
	Analyzer worker.Analyzer
	Broker   *pubsub.Broker
}

type Handlers struct {
	config   Config
	logger   *zap.SugaredLogger
	registry *session.Registry
	analyzer worker.Analyzer
	broker   *pubsub.Broker
	upgrader websocket.Upgrader
}

func New(s Settings) *Handlers {
	if s.WSBuffer <= 0 {
		s.WSBuffer = 16
	}
	if s.LiveKit.TokenLifetime <= 0 {
		s.LiveKit.TokenLifetime = 2 * time.Hour
	}
	return &Handlers{
		config:   s.Config,
		logger:   s.Logger,
		registry: s.Registry,
		analyzer: s.Analyzer,
		broker:   s.Broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes builds the router.
func (h *Handlers) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/token", h.Token).Methods(http.MethodGet)
	r.HandleFunc("/room", h.Room).Methods(http.MethodGet)
	r.HandleFunc("/participants", h.Join).Methods(http.MethodPost)
	r.HandleFunc("/participants/{id}", h.Leave).Methods(http.MethodDelete)
	r.HandleFunc("/participants/{id}/frame", h.presenter(h.Frame)).Methods(http.MethodPost)
	r.HandleFunc("/analyze", h.presenter(h.Analyze)).Methods(http.MethodPost)
	r.HandleFunc("/ws", h.Stream).Methods(http.MethodGet)

	return r
}

// presenter rejects requests without the presenter key when one is configured.
func (h *Handlers) presenter(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.config.PresenterKey != "" && r.Header.Get(presenterHeader) != h.config.PresenterKey {
			http.Error(w, "presenter key required", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
