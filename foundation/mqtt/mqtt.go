// Package mqtt publishes emotion updates to an MQTT broker for displays that
// are not connected over websocket.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

var ErrNotConnected = errors.New("mqtt: not connected")

type Config struct {
	Broker         string
	ClientID       string
	Topic          string
	QoS            byte
	ConnectTimeout time.Duration
}

type Emitter struct {
	cfg    Config
	client paho.Client
	logger *zap.SugaredLogger

	mu        sync.RWMutex
	connected bool
	published uint64
	errors    uint64
}

func New(cfg Config, logger *zap.SugaredLogger) *Emitter {
	cfg.Topic = strings.TrimRight(cfg.Topic, "/")
	if cfg.QoS > 2 {
		cfg.QoS = 1
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = connectTimeout
	}
	return &Emitter{
		cfg:    cfg,
		logger: logger,
	}
}

func (e *Emitter) Connect() error {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", e.cfg.Broker))
	opts.SetClientID(e.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c paho.Client) {
		e.setConnected(true)
		e.logger.Infow("mqtt: connected", "broker", e.cfg.Broker, "clientID", e.cfg.ClientID)
	}
	opts.OnConnectionLost = func(c paho.Client, err error) {
		e.setConnected(false)
		e.logger.Warnw("mqtt: connection lost, reconnecting", "broker", e.cfg.Broker, "ERROR", err)
	}

	e.client = paho.NewClient(opts)

	// A failed connect leaves paho retrying in the background until
	// Disconnect.
	token := e.client.Connect()
	if !token.WaitTimeout(e.cfg.ConnectTimeout) {
		e.Close()
		return fmt.Errorf("mqtt: connect[%s]: timeout", e.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		e.Close()
		return fmt.Errorf("mqtt: connect[%s]: %w", e.cfg.Broker, err)
	}

	e.setConnected(true)
	return nil
}

// TopicFor returns the topic updates for a participant are published on.
func (e *Emitter) TopicFor(room, participantID string) string {
	return fmt.Sprintf("%s/%s/%s", e.cfg.Topic, room, participantID)
}

func (e *Emitter) Publish(room, participantID string, data interface{}) error {
	if !e.isConnected() {
		e.countError()
		return ErrNotConnected
	}

	payload, err := json.Marshal(data)
	if err != nil {
		e.countError()
		return fmt.Errorf("mqtt: marshal: %w", err)
	}

	topic := e.TopicFor(room, participantID)
	token := e.client.Publish(topic, e.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		e.countError()
		return fmt.Errorf("mqtt: publish[%s]: timeout", topic)
	}
	if err := token.Error(); err != nil {
		e.countError()
		return fmt.Errorf("mqtt: publish[%s]: %w", topic, err)
	}

	e.mu.Lock()
	e.published++
	e.mu.Unlock()
	return nil
}

func (e *Emitter) Stats() (published, failed uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.published, e.errors
}

func (e *Emitter) Close() {
	if e.client != nil {
		e.client.Disconnect(250)
	}
	e.setConnected(false)
}

func (e *Emitter) setConnected(b bool) {
	e.mu.Lock()
	e.connected = b
	e.mu.Unlock()
}

func (e *Emitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *Emitter) countError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}
