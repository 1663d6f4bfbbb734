package emotion_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/superfeelapi/goEmojiRoom/business/emotion"
)

func scores(anger, contempt, disgust, fear, happiness, neutral, sadness, surprise float64) emotion.Scores {
	return emotion.Scores{
		emotion.Anger:     anger,
		emotion.Contempt:  contempt,
		emotion.Disgust:   disgust,
		emotion.Fear:      fear,
		emotion.Happiness: happiness,
		emotion.Neutral:   neutral,
		emotion.Sadness:   sadness,
		emotion.Surprise:  surprise,
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		scores emotion.Scores
		want   emotion.Label
	}{
		{"unique maximum", scores(0.1, 0, 0, 0, 0.9, 0, 0, 0), emotion.Happiness},
		{"confident neutral", scores(0, 0, 0, 0, 0, 0.9, 0.05, 0.05), emotion.Neutral},
		{"neutral at threshold", scores(0, 0, 0, 0, 0.2, 0.8, 0, 0), emotion.Neutral},
		{"weak neutral falls back", scores(0, 0, 0, 0, 0.3, 0.5, 0.2, 0), emotion.Happiness},
		{"fallback does not cascade", scores(0, 0, 0, 0, 0, 0.7, 0, 0.3), emotion.Surprise},
		{"tie prefers non neutral", scores(0, 0, 0, 0, 0.5, 0.5, 0, 0), emotion.Happiness},
		{"tie keeps enumeration order", scores(0.4, 0, 0, 0, 0, 0.2, 0, 0.4), emotion.Anger},
		{"all zero", scores(0, 0, 0, 0, 0, 0, 0, 0), emotion.Anger},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := emotion.Select(tt.scores)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSelectNeutralTiedAtTop(t *testing.T) {
	// sadness ranks ahead of an equally scored neutral.
	s := scores(0, 0, 0, 0, 0, 0.6, 0.6, 0)
	got, err := emotion.Select(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != emotion.Sadness {
		t.Fatalf("got %s, want %s", got, emotion.Sadness)
	}
}

func TestSelectInvalid(t *testing.T) {
	missing := scores(0, 0, 0, 0, 1, 0, 0, 0)
	delete(missing, emotion.Fear)

	tests := []struct {
		name   string
		scores emotion.Scores
		label  emotion.Label
	}{
		{"missing label", missing, emotion.Fear},
		{"nil map", nil, emotion.Anger},
		{"not a number", scores(0, math.NaN(), 0, 0, 0, 0, 0, 0), emotion.Contempt},
		{"infinite", scores(0, 0, 0, 0, 0, 0, math.Inf(1), 0), emotion.Sadness},
		{"negative", scores(0, 0, -0.1, 0, 0, 0, 0, 0), emotion.Disgust},
		{"above one", scores(0, 0, 0, 0, 0, 0, 0, 1.5), emotion.Surprise},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := emotion.Select(tt.scores)
			if !errors.Is(err, emotion.ErrInvalidScores) {
				t.Fatalf("expected ErrInvalidScores, got %v", err)
			}
			var ise *emotion.InvalidScoresError
			if !errors.As(err, &ise) {
				t.Fatalf("expected *InvalidScoresError, got %T", err)
			}
			if ise.Label != tt.label {
				t.Fatalf("got label %s, want %s", ise.Label, tt.label)
			}
		})
	}
}

func TestSelectIgnoresUnknownLabels(t *testing.T) {
	s := scores(0, 0, 0, 0, 0.6, 0, 0, 0)
	s["joy"] = 1
	got, err := emotion.Select(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != emotion.Happiness {
		t.Fatalf("got %s, want %s", got, emotion.Happiness)
	}
}

func TestRanked(t *testing.T) {
	got, err := emotion.Ranked(scores(0.1, 0, 0, 0, 0.3, 0.3, 0.2, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := []emotion.Label{
		emotion.Happiness, emotion.Neutral, emotion.Sadness, emotion.Anger,
		emotion.Contempt, emotion.Disgust, emotion.Fear, emotion.Surprise,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestPick(t *testing.T) {
	l, e, err := emotion.Pick(scores(0.9, 0, 0, 0, 0.1, 0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if l != emotion.Anger || e != "😡" {
		t.Fatalf("got %s %s", l, e)
	}

	for _, l := range emotion.Labels() {
		if !l.Valid() || emotion.Emoji(l) == "" {
			t.Fatalf("label %s has no emoji", l)
		}
	}
	if emotion.Label("joy").Valid() {
		t.Fatal("joy should not be a valid label")
	}
}
