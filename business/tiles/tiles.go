// Package tiles hands out the fixed display positions of a room's video grid.
package tiles

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrAllocationFailure means every slot is occupied.
var ErrAllocationFailure = errors.New("tiles: no free slot")

type Binding struct {
	ParticipantID string `json:"participant_id"`
	Slot          int    `json:"slot"`
}

// Table is a first-fit slot table. It is safe for concurrent use.
type Table struct {
	sync.Mutex

	occupied []bool
	bindings map[string]int
}

func New(capacity int) (*Table, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("tiles: capacity[%d] must be at least 1", capacity)
	}
	return &Table{
		occupied: make([]bool, capacity),
		bindings: make(map[string]int, capacity),
	}, nil
}

// Allocate binds participantID to the lowest free slot. A participant that
// already holds a slot gets the same slot back.
func (t *Table) Allocate(participantID string) (int, error) {
	t.Lock()
	defer t.Unlock()
	{
		if slot, exists := t.bindings[participantID]; exists {
			return slot, nil
		}

		for i, taken := range t.occupied {
			if taken {
				continue
			}
			t.occupied[i] = true
			t.bindings[participantID] = i
			return i, nil
		}
	}
	return -1, ErrAllocationFailure
}

// Release frees the slot bound to participantID. Unknown participants are ignored.
func (t *Table) Release(participantID string) {
	t.Lock()
	defer t.Unlock()
	{
		slot, exists := t.bindings[participantID]
		if !exists {
			return
		}
		t.occupied[slot] = false
		delete(t.bindings, participantID)
	}
}

func (t *Table) Slot(participantID string) (int, bool) {
	t.Lock()
	defer t.Unlock()

	slot, exists := t.bindings[participantID]
	return slot, exists
}

func (t *Table) Capacity() int {
	return len(t.occupied)
}

func (t *Table) Free() int {
	t.Lock()
	defer t.Unlock()

	return len(t.occupied) - len(t.bindings)
}

// Bindings returns the live bindings ordered by slot.
func (t *Table) Bindings() []Binding {
	t.Lock()
	out := make([]Binding, 0, len(t.bindings))
	for id, slot := range t.bindings {
		out = append(out, Binding{ParticipantID: id, Slot: slot})
	}
	t.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}
