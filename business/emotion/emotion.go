// Package emotion picks the single emotion to show for a face from the
// confidence scores returned by the face API.
package emotion

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

type Label string

const (
	Anger     Label = "anger"
	Contempt  Label = "contempt"
	Disgust   Label = "disgust"
	Fear      Label = "fear"
	Happiness Label = "happiness"
	Neutral   Label = "neutral"
	Sadness   Label = "sadness"
	Surprise  Label = "surprise"
)

// neutralThreshold is the score neutral needs to be shown when it ranks first.
const neutralThreshold = 0.8

// labels is the enumeration order used to break ties.
var labels = [...]Label{Anger, Contempt, Disgust, Fear, Happiness, Neutral, Sadness, Surprise}

var emojis = map[Label]string{
	Anger:     "😡",
	Contempt:  "😒",
	Disgust:   "🤢",
	Fear:      "😱",
	Happiness: "😀",
	Neutral:   "😐",
	Sadness:   "😥",
	Surprise:  "😲",
}

// Scores maps every label to a confidence in [0,1].
type Scores map[Label]float64

// ErrInvalidScores is matched by every *InvalidScoresError.
var ErrInvalidScores = errors.New("invalid emotion scores")

type InvalidScoresError struct {
	Label  Label
	Reason string
}

func (e *InvalidScoresError) Error() string {
	return fmt.Sprintf("emotion: scores[%s]: %s", e.Label, e.Reason)
}

func (e *InvalidScoresError) Is(target error) bool {
	return target == ErrInvalidScores
}

// Labels returns the eight recognized labels in enumeration order.
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels[:])
	return out
}

// Emoji returns the display symbol for l, or an empty string for an unknown label.
func Emoji(l Label) string {
	return emojis[l]
}

func (l Label) Valid() bool {
	_, ok := emojis[l]
	return ok
}

func (s Scores) validate() error {
	for _, l := range labels {
		v, ok := s[l]
		switch {
		case !ok:
			return &InvalidScoresError{Label: l, Reason: "missing"}
		case math.IsNaN(v) || math.IsInf(v, 0):
			return &InvalidScoresError{Label: l, Reason: "not a number"}
		case v < 0 || v > 1:
			return &InvalidScoresError{Label: l, Reason: fmt.Sprintf("%v out of range [0,1]", v)}
		}
	}
	return nil
}

// Ranked orders the eight labels by score, highest first.
//
// The sort is stable over the enumeration order. On equal scores a label
// other than neutral ranks ahead of neutral.
func Ranked(s Scores) ([]Label, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	ranked := Labels()
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := s[ranked[i]], s[ranked[j]]
		if a != b {
			return a > b
		}
		return ranked[j] == Neutral && ranked[i] != Neutral
	})
	return ranked, nil
}

// Select returns the label to display for s. A top ranked neutral below
// 0.8 gives way to the runner-up, whatever that is.
func Select(s Scores) (Label, error) {
	ranked, err := Ranked(s)
	if err != nil {
		return "", err
	}

	top := ranked[0]
	if top == Neutral && s[top] < neutralThreshold {
		return ranked[1], nil
	}
	return top, nil
}

// Pick selects the label for s and looks up its emoji.
func Pick(s Scores) (Label, string, error) {
	l, err := Select(s)
	if err != nil {
		return "", "", err
	}
	return l, Emoji(l), nil
}
