package session

import (
	"time"

	"github.com/superfeelapi/goEmojiRoom/business/emotion"
)

// NoTile is the slot of a participant admitted while every tile was taken.
const NoTile = -1

type Participant struct {
	ID       string    `json:"id"`
	Identity string    `json:"identity"`
	Slot     int       `json:"slot"`
	JoinedAt time.Time `json:"joined_at"`
	Last     *Update   `json:"last,omitempty"`

	binding string
}

func (p Participant) HasTile() bool {
	return p.Slot != NoTile
}

// Frame is one sampled video frame waiting for analysis.
type Frame struct {
	ParticipantID string
	Binding       string
	Image         []byte
	ContentType   string
	CapturedAt    time.Time
}

type Rect struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Update is what the presentation layer renders over a participant's tile.
type Update struct {
	ID            string        `json:"id"`
	Room          string        `json:"room"`
	ParticipantID string        `json:"participant_id"`
	Identity      string        `json:"identity"`
	Slot          int           `json:"slot"`
	Label         emotion.Label `json:"label"`
	Emoji         string        `json:"emoji"`
	Score         float64       `json:"score"`
	Face          *Rect         `json:"face,omitempty"`
	Time          time.Time     `json:"time"`
}

type Stats struct {
	Participants  int    `json:"participants"`
	TilesInUse    int    `json:"tiles_in_use"`
	Capacity      int    `json:"capacity"`
	PendingFrames int    `json:"pending_frames"`
	DroppedFrames uint64 `json:"dropped_frames"`
}
