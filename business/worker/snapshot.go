package worker

import (
	"errors"
	"time"

	"github.com/superfeelapi/goEmojiRoom/business/emotion"
	"github.com/superfeelapi/goEmojiRoom/business/session"
	"github.com/superfeelapi/goEmojiRoom/foundation/external/faceapi"
)

func (w *Worker) snapshotOperation() {
	w.logger.Infow("worker: snapshotOperation: G started")
	defer w.logger.Infow("worker: snapshotOperation: G completed")

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Infow("worker: snapshotOperation: G listening", "interval", w.config.Interval)
	for {
		select {
		case <-ticker.C:
			w.cycle()

		case <-w.shut:
			w.logger.Infow("worker: snapshotOperation: received shut signal")
			return
		}
	}
}

// cycle analyses every frame sampled since the previous tick. It waits for a
// free in-flight slot rather than skip a participant.
func (w *Worker) cycle() {
	for _, frame := range w.registry.TakeFrames() {
		select {
		case w.inFlight <- struct{}{}:
		case <-w.shut:
			return
		}

		w.wg.Add(1)
		go func(frame session.Frame) {
			defer w.wg.Done()
			defer func() { <-w.inFlight }()
			w.analyzeFrame(frame)
		}(frame)
	}
}

func (w *Worker) analyzeFrame(frame session.Frame) {
	result, err := Analyze(w.ctx, w.analyzer, frame.Image)
	switch {
	case errors.Is(err, faceapi.ErrNoFace):
		w.logger.Debugw("worker: analyzeFrame: no face", "participant", frame.ParticipantID)
		return

	case errors.Is(err, emotion.ErrInvalidScores):
		w.logger.Errorw("worker: analyzeFrame: invalid scores", "participant", frame.ParticipantID, "ERROR", err)
		return

	case err != nil:
		w.logger.Errorw("worker: analyzeFrame", "participant", frame.ParticipantID, "ERROR", err)
		return
	}

	update, ok := w.registry.Apply(frame, result.Label, result.Score, result.Face)
	if !ok {
		w.logger.Infow("worker: analyzeFrame: participant left, result discarded", "participant", frame.ParticipantID)
		return
	}

	select {
	case w.updateCh <- update:
	case <-w.shut:
	}
}
