package worker

import (
	"context"
	"fmt"

	"github.com/superfeelapi/goEmojiRoom/business/emotion"
	"github.com/superfeelapi/goEmojiRoom/business/session"
)

type Result struct {
	Label emotion.Label `json:"label"`
	Emoji string        `json:"emoji"`
	Score float64       `json:"score"`
	Face  *session.Rect `json:"face,omitempty"`
}

// Analyze sends image to the analyzer and picks the emotion of the first face.
// It returns faceapi.ErrNoFace when there is none.
func Analyze(ctx context.Context, a Analyzer, image []byte) (Result, error) {
	face, err := a.FirstFace(ctx, image)
	if err != nil {
		return Result{}, err
	}

	scores := make(emotion.Scores, len(face.Emotions()))
	for k, v := range face.Emotions() {
		scores[emotion.Label(k)] = v
	}

	label, err := emotion.Select(scores)
	if err != nil {
		return Result{}, fmt.Errorf("worker: analyze: %w", err)
	}

	r := face.Rectangle
	return Result{
		Label: label,
		Emoji: emotion.Emoji(label),
		Score: scores[label],
		Face: &session.Rect{
			Top:    r.Top,
			Left:   r.Left,
			Width:  r.Width,
			Height: r.Height,
		},
	}, nil
}
