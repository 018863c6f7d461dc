package engine

import "errors"

// ErrEmptyHistory is returned when popping a history that only holds the initial snapshot
var ErrEmptyHistory = errors.New("history holds only the initial snapshot")

// History is a stack of complete moving-body snapshots. Element 0 is the level-load state
// and is never removed.
type History struct {
	snapshots [][]Spot
}

// NewHistory creates a history whose initial snapshot is initial
func NewHistory(initial []Spot) *History {
	return &History{snapshots: [][]Spot{copySpots(initial)}}
}

// Push appends a snapshot on top of the stack
func (h *History) Push(snapshot []Spot) {
	h.snapshots = append(h.snapshots, copySpots(snapshot))
}

// Pop removes the top snapshot and returns it
func (h *History) Pop() ([]Spot, error) {
	if len(h.snapshots) <= 1 {
		return nil, ErrEmptyHistory
	}
	top := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return top, nil
}

// ResetToInitial truncates the stack to the initial snapshot and returns a copy of it
func (h *History) ResetToInitial() []Spot {
	h.snapshots = h.snapshots[:1]
	return copySpots(h.snapshots[0])
}

// Top returns a copy of the top snapshot
func (h *History) Top() []Spot {
	return copySpots(h.snapshots[len(h.snapshots)-1])
}

// Initial returns a copy of the initial snapshot
func (h *History) Initial() []Spot {
	return copySpots(h.snapshots[0])
}

// Len returns the number of snapshots, always >= 1
func (h *History) Len() int {
	return len(h.snapshots)
}

// Snapshots returns copies of every snapshot, oldest first
func (h *History) Snapshots() [][]Spot {
	out := make([][]Spot, len(h.snapshots))
	for i, s := range h.snapshots {
		out[i] = copySpots(s)
	}
	return out
}

// RestoreHistory rebuilds a history from persisted snapshots
func RestoreHistory(snapshots [][]Spot) (*History, error) {
	if len(snapshots) == 0 {
		return nil, ErrEmptyHistory
	}
	h := &History{snapshots: make([][]Spot, len(snapshots))}
	for i, s := range snapshots {
		h.snapshots[i] = copySpots(s)
	}
	return h, nil
}
