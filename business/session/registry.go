// Package session keeps the participants of one room, the tile each one
// occupies and the latest frame each one is waiting to have analysed.
package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/superfeelapi/goEmojiRoom/business/emotion"
	"github.com/superfeelapi/goEmojiRoom/business/tiles"
)

var (
	ErrUnknownParticipant = errors.New("session: unknown participant")
	ErrEmptyFrame         = errors.New("session: empty frame")
)

type Registry struct {
	sync.RWMutex

	room             string
	table            *tiles.Table
	admitWithoutTile bool

	participants map[string]*Participant
	pending      map[string]Frame
	dropped      uint64

	now func() time.Time
}

func NewRegistry(room string, table *tiles.Table, admitWithoutTile bool) *Registry {
	return &Registry{
		room:             room,
		table:            table,
		admitWithoutTile: admitWithoutTile,
		participants:     make(map[string]*Participant),
		pending:          make(map[string]Frame),
		now:              time.Now,
	}
}

func (r *Registry) Room() string {
	return r.room
}

// Join admits a participant and binds it to the lowest free tile. When the
// table is full the participant is admitted with NoTile if the registry
// allows it, otherwise tiles.ErrAllocationFailure is returned.
func (r *Registry) Join(id, identity string) (Participant, error) {
	if id == "" {
		return Participant{}, errors.New("session: join: empty participant id")
	}

	r.Lock()
	defer r.Unlock()

	if p, exists := r.participants[id]; exists {
		return *p, nil
	}

	slot, err := r.table.Allocate(id)
	if err != nil {
		if !errors.Is(err, tiles.ErrAllocationFailure) || !r.admitWithoutTile {
			return Participant{}, fmt.Errorf("session: join[%s]: %w", id, err)
		}
		slot = NoTile
	}

	if identity == "" {
		identity = id
	}

	p := &Participant{
		ID:       id,
		Identity: identity,
		Slot:     slot,
		JoinedAt: r.now(),
		binding:  uuid.NewString(),
	}
	r.participants[id] = p
	return *p, nil
}

// Leave frees the participant's tile and forgets its pending frame. Unknown
// participants are ignored.
func (r *Registry) Leave(id string) {
	r.Lock()
	defer r.Unlock()

	if _, exists := r.participants[id]; !exists {
		return
	}
	r.table.Release(id)
	delete(r.participants, id)
	delete(r.pending, id)
}

func (r *Registry) Lookup(id string) (Participant, bool) {
	r.RLock()
	defer r.RUnlock()

	p, exists := r.participants[id]
	if !exists {
		return Participant{}, false
	}
	return *p, true
}

// Participants returns the participants with tiles first, in slot order.
func (r *Registry) Participants() []Participant {
	r.RLock()
	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	r.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasTile() != b.HasTile() {
			return a.HasTile()
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.ID < b.ID
	})
	return out
}

// PutFrame stores the latest frame of a participant. A frame that was not
// taken yet is overwritten and counted as dropped.
func (r *Registry) PutFrame(id string, image []byte, contentType string) error {
	if len(image) == 0 {
		return ErrEmptyFrame
	}

	r.Lock()
	defer r.Unlock()

	p, exists := r.participants[id]
	if !exists {
		return fmt.Errorf("session: frame[%s]: %w", id, ErrUnknownParticipant)
	}

	if _, waiting := r.pending[id]; waiting {
		r.dropped++
	}
	r.pending[id] = Frame{
		ParticipantID: id,
		Binding:       p.binding,
		Image:         image,
		ContentType:   contentType,
		CapturedAt:    r.now(),
	}
	return nil
}

// TakeFrames drains every pending frame.
func (r *Registry) TakeFrames() []Frame {
	r.Lock()
	defer r.Unlock()

	if len(r.pending) == 0 {
		return nil
	}

	out := make([]Frame, 0, len(r.pending))
	for id, f := range r.pending {
		out = append(out, f)
		delete(r.pending, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out
}

// Apply records the emotion picked for frame. It reports false when the
// participant left, or left and joined again, after the frame was taken.
func (r *Registry) Apply(frame Frame, label emotion.Label, score float64, face *Rect) (Update, bool) {
	r.Lock()
	defer r.Unlock()

	p, exists := r.participants[frame.ParticipantID]
	if !exists || p.binding != frame.Binding {
		return Update{}, false
	}

	u := Update{
		ID:            uuid.NewString(),
		Room:          r.room,
		ParticipantID: p.ID,
		Identity:      p.Identity,
		Slot:          p.Slot,
		Label:         label,
		Emoji:         emotion.Emoji(label),
		Score:         score,
		Face:          face,
		Time:          r.now(),
	}
	p.Last = &u
	return u, true
}

func (r *Registry) Stats() Stats {
	r.RLock()
	defer r.RUnlock()

	s := Stats{
		Participants:  len(r.participants),
		Capacity:      r.table.Capacity(),
		PendingFrames: len(r.pending),
		DroppedFrames: r.dropped,
	}
	for _, p := range r.participants {
		if p.HasTile() {
			s.TilesInUse++
		}
	}
	return s
}
