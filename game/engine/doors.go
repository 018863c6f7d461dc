package engine

// DoorRouter applies the level's door links to candidate positions and records the
// entry-door clone of every body that transits.
type DoorRouter struct {
	collections *Collections
	clones      []Spot
}

// NewDoorRouter creates a router over the given collections with one clone slot per body
func NewDoorRouter(c *Collections) *DoorRouter {
	r := &DoorRouter{collections: c}
	r.Clear()
	return r
}

// Route resolves where a body whose step lands on candidate ends up.
// A door without a valid link refuses the transit and behaves like a plain cell.
func (r *DoorRouter) Route(candidate Spot, bodyIndex int) (Spot, bool) {
	r.ensureSlots()
	entry := r.collections.DoorAt(candidate)
	if entry >= 0 {
		if exit, ok := r.exitFor(entry); ok {
			r.clones[bodyIndex] = candidate
			return r.collections.Doors[exit].Spot(), true
		}
	}
	r.clones[bodyIndex] = DeadSpot
	return candidate, false
}

func (r *DoorRouter) exitFor(entry int) (int, bool) {
	link, ok := r.collections.Doors[entry].Target()
	if !ok || link < 0 || link >= len(r.collections.Doors) || link == entry {
		return -1, false
	}
	return link, true
}

// Clones returns a copy of the clone slots
func (r *DoorRouter) Clones() []Spot {
	r.ensureSlots()
	return copySpots(r.clones)
}

// Clear resets every clone slot to the dead spot
func (r *DoorRouter) Clear() {
	r.clones = make([]Spot, len(r.collections.Moving))
	for i := range r.clones {
		r.clones[i] = DeadSpot
	}
}

func (r *DoorRouter) ensureSlots() {
	if len(r.clones) != len(r.collections.Moving) {
		r.Clear()
	}
}

func (r *DoorRouter) restore(clones []Spot) {
	r.clones = copySpots(clones)
}
