package worker

import (
	"github.com/superfeelapi/goEmojiRoom/foundation/state"
)

func (w *Worker) publishOperation() {
	w.logger.Infow("worker: publishOperation: G started")
	defer w.logger.Infow("worker: publishOperation: G completed")

	w.logger.Infow("worker: publishOperation: G listening")
	for {
		select {
		case update := <-w.updateCh:
			n := w.broker.Publish(UpdateTopic, update)
			w.logger.Infow("worker: publishOperation:", "participant", update.ParticipantID, "slot", update.Slot, "emotion", update.Label, "subscribers", n)

			if w.state.Get(state.Redis) {
				if err := w.redis.Produce(update); err != nil {
					w.state.Set(state.Redis, false)
					w.logger.Errorw("worker: publishOperation: redis disabled", "ERROR", err)
				}
			}

			if w.state.Get(state.MQTT) {
				if err := w.mqtt.Publish(update.Room, update.ParticipantID, update); err != nil {
					w.state.Set(state.MQTT, false)
					w.logger.Errorw("worker: publishOperation: mqtt disabled", "ERROR", err)
				}
			}

		case <-w.shut:
			w.logger.Infow("worker: publishOperation: received shut signal")
			return
		}
	}
}
