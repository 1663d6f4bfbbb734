package worker

import (
	"context"
	"sync"
	"time"

	"github.com/superfeelapi/goEmojiRoom/business/session"
	"github.com/superfeelapi/goEmojiRoom/foundation/pubsub"
	"github.com/superfeelapi/goEmojiRoom/foundation/state"
	"go.uber.org/zap"
)

const (
	defaultInterval    = time.Second
	defaultMaxInFlight = 8
)

type Worker struct {
	config Config
	state  *state.State
	logger *zap.SugaredLogger

	registry *session.Registry
	analyzer Analyzer
	broker   *pubsub.Broker
	redis    Producer
	mqtt     Emitter

	ctx    context.Context
	cancel context.CancelFunc

	wg       sync.WaitGroup
	shut     chan struct{}
	shutOnce sync.Once
	error    chan error

	inFlight chan struct{}
	updateCh chan session.Update
}

// Run starts the analysis operations. The returned channel yields the error
// that stopped the worker, or is closed when Settings.Context ends.
func Run(s Settings) <-chan error {
	w := newWorker(s)

	operations := []func(){
		w.snapshotOperation,
		w.publishOperation,
	}

	g := len(operations)
	w.wg.Add(g)

	hasStarted := make(chan bool)

	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	for i := 0; i < g; i++ {
		<-hasStarted
	}

	go func() {
		select {
		case <-w.ctx.Done():
			w.Shutdown(nil)
		case <-w.shut:
		}
	}()

	return w.error
}

func newWorker(s Settings) *Worker {
	if s.Interval <= 0 {
		s.Interval = defaultInterval
	}
	if s.MaxInFlight <= 0 {
		s.MaxInFlight = defaultMaxInFlight
	}
	if s.Context == nil {
		s.Context = context.Background()
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop().Sugar()
	}

	w := &Worker{
		config:   s.Config,
		state:    state.NewState(),
		logger:   s.Logger,
		registry: s.Registry,
		analyzer: s.Analyzer,
		broker:   s.Broker,
		redis:    s.Redis,
		mqtt:     s.MQTT,
		shut:     make(chan struct{}),
		error:    make(chan error, 1),
		inFlight: make(chan struct{}, s.MaxInFlight),
		updateCh: make(chan session.Update, s.MaxInFlight),
	}
	w.ctx, w.cancel = context.WithCancel(s.Context)

	if w.redis == nil {
		w.state.Set(state.Redis, false)
	}
	if w.mqtt == nil {
		w.state.Set(state.MQTT, false)
	}
	return w
}

// Shutdown stops every operation. It may be called from inside an
// operation, any number of times; only the first call counts.
func (w *Worker) Shutdown(err error) {
	w.shutOnce.Do(func() {
		w.logger.Infow("worker: shutdown: started")
		if err != nil {
			w.logger.Errorw("worker: shutdown", "ERROR", err)
		}

		w.logger.Infow("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.cancel()

		go func() {
			w.wg.Wait()
			if err != nil {
				w.error <- err
			}
			close(w.error)
			w.logger.Infow("worker: shutdown: completed")
		}()
	})
}
