package worker

import (
	"context"
	"time"

	"github.com/superfeelapi/goEmojiRoom/business/session"
	"github.com/superfeelapi/goEmojiRoom/foundation/external/faceapi"
	"github.com/superfeelapi/goEmojiRoom/foundation/pubsub"
	"go.uber.org/zap"
)

// UpdateTopic is the broker topic every applied update is published on.
const UpdateTopic = "emotion"

// Analyzer finds the first face in an image. *faceapi.Client implements it.
type Analyzer interface {
	FirstFace(ctx context.Context, image []byte) (faceapi.Face, error)
}

// Producer publishes updates to Redis.
type Producer interface {
	Produce(data interface{}) error
}

// Emitter publishes updates to MQTT.
type Emitter interface {
	Publish(room, participantID string, data interface{}) error
}

type Settings struct {
	Config
	Context  context.Context
	Logger   *zap.SugaredLogger
	Registry *session.Registry
	Analyzer Analyzer
	Broker   *pubsub.Broker
	Redis    Producer
	MQTT     Emitter
}

type Config struct {
	Interval    time.Duration
	MaxInFlight int
}
