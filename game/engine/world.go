package engine

import (
	"github.com/zyedidia/generic/mapset"
)

const (
	// DefaultAnimationLength is the duration of one turn's interpolation, in seconds
	DefaultAnimationLength float32 = 0.15

	// MaxDoorUniforms is the number of vec4 slots of the renderer's door uniform.
	// Slot 0 carries the door count, so at most MaxDoorUniforms-1 doors are fed.
	MaxDoorUniforms = 21
)

// Turn describes the outcome of one Resolve call
type Turn int

const (
	TurnNone Turn = iota
	TurnMove
	TurnRejected
	TurnBack
	TurnReset
	TurnEditor
)

func (t Turn) String() string {
	switch t {
	case TurnMove:
		return "move"
	case TurnRejected:
		return "rejected"
	case TurnBack:
		return "back"
	case TurnReset:
		return "reset"
	case TurnEditor:
		return "editor"
	}
	return "none"
}

// World is the puzzle state machine: entity collections, history, door routing and the
// two interpolations (bodies and their entry-door clones) fed to a renderer.
type World struct {
	collections *Collections
	history     *History
	router      *DoorRouter
	bodies      *Animation
	clones      *Animation

	throughDoor     []bool
	animationLength float32
	madeMove        bool
	anyThroughDoor  bool
	won             bool
	prepared        bool

	bodyPositions  []Vec3
	clonePositions []Vec3
	static         map[Category][]Vec3
}

// NewWorld creates a prepared and initialized world over c
func NewWorld(c *Collections, animationLength float32) *World {
	if c == nil {
		c = &Collections{}
	}
	w := &World{
		collections:     c,
		animationLength: animationLength,
	}
	w.Prepare()
	w.Init()
	return w
}

// Prepare performs the one-time setup that must precede the first Update
func (w *World) Prepare() {
	if w.prepared {
		return
	}
	w.bodies = NewAnimation()
	w.clones = NewAnimation()
	w.router = NewDoorRouter(w.collections)
	w.static = make(map[Category][]Vec3)
	w.prepared = true
}

// Init rebuilds the per-level derived state from the raw collections: history restarts at
// the current moving set, clones and through-door flags are cleared and every position
// buffer is recomputed. Called after load and after structural edits.
func (w *World) Init() {
	w.Prepare()
	w.history = NewHistory(w.collections.Moving)
	w.clearTransit()
	w.madeMove = false
	w.won = false
	w.bodies.Snap(w.collections.Moving)
	w.clones.Snap(w.router.Clones())
	w.refreshStatic()
	w.bodyPositions = w.bodies.Positions()
	w.clonePositions = w.clones.Positions()
}

// Resolve interprets one input-poll cycle. Reset beats back, back beats editor mode,
// editor mode beats a move intent.
func (w *World) Resolve(move Spot, editorMode, back, reset bool) Turn {
	w.madeMove = false
	switch {
	case reset && w.history.Len() > 1:
		w.executeReset()
		return TurnReset
	case back && w.history.Len() > 1:
		w.executeBack()
		return TurnBack
	case editorMode:
		if move.IsZero() || !IsMoveIntent(move) {
			return TurnNone
		}
		w.makeEditorMove(move)
		return TurnEditor
	case !move.IsZero() && IsMoveIntent(move):
		w.madeMove = true
		if w.maybeMakeMove(move) {
			return TurnMove
		}
		return TurnRejected
	}
	return TurnNone
}

// attempt routes move for every body without committing. On success the router holds
// the clones of the attempted turn; on failure it is left untouched.
func (w *World) attempt(move Spot) ([]Spot, []bool, bool) {
	n := len(w.collections.Moving)
	if n == 0 {
		return nil, nil, false
	}

	candidates := make([]Spot, n)
	for i, s := range w.collections.Moving {
		candidates[i] = Sum(s, move)
		if w.collections.IsStatic(candidates[i]) {
			return nil, nil, false
		}
	}

	prevClones := w.router.Clones()
	finals := make([]Spot, n)
	through := make([]bool, n)
	occupied := mapset.New[Spot]()
	for i, candidate := range candidates {
		final, transited := w.router.Route(candidate, i)
		if occupied.Has(final) || (transited && w.collections.IsStatic(final)) {
			w.router.restore(prevClones)
			return nil, nil, false
		}
		occupied.Put(final)
		finals[i] = final
		through[i] = transited
	}
	return finals, through, true
}

// CanMove reports whether move would be accepted, without changing anything
func (w *World) CanMove(move Spot) bool {
	if move.IsZero() || !IsMoveIntent(move) {
		return false
	}
	saved := w.router.Clones()
	_, _, ok := w.attempt(move)
	w.router.restore(saved)
	return ok
}

// maybeMakeMove applies move to every body or to none of them
func (w *World) maybeMakeMove(move Spot) bool {
	finals, through, ok := w.attempt(move)
	if !ok {
		return false
	}
	n := len(finals)

	prev := copySpots(w.collections.Moving)
	w.collections.Moving = finals
	w.history.Push(finals)
	w.throughDoor = through
	w.maybeDoors()

	bodyFrom := copySpots(prev)
	cloneFrom := make([]Spot, n)
	for i := range finals {
		cloneFrom[i] = DeadSpot
		if through[i] {
			bodyFrom[i] = Diff(finals[i], move)
			cloneFrom[i] = prev[i]
		}
	}
	w.bodies.Begin(bodyFrom, finals, w.animationLength)
	w.clones.Begin(cloneFrom, w.router.Clones(), w.animationLength)

	w.won = w.maybeWon()
	return true
}

// maybeDoors reduces the per-body flags into anyThroughDoor
func (w *World) maybeDoors() {
	w.anyThroughDoor = false
	for _, t := range w.throughDoor {
		if t {
			w.anyThroughDoor = true
			return
		}
	}
}

// maybeWon compares the moving set with the winning doors as unordered collections
func (w *World) maybeWon() bool {
	moving, winning := w.collections.Moving, w.collections.Winning
	if len(moving) == 0 || len(moving) != len(winning) {
		return false
	}
	goals := mapset.New[Spot]()
	for _, s := range winning {
		goals.Put(s)
	}
	if goals.Size() != len(moving) {
		return false
	}
	for _, s := range moving {
		if !goals.Has(s) {
			return false
		}
	}
	return true
}

func (w *World) executeBack() {
	before := copySpots(w.collections.Moving)
	if _, err := w.history.Pop(); err != nil {
		return
	}
	restored := w.history.Top()
	w.collections.Moving = restored
	w.clearTransit()
	w.won = false
	w.bodies.Begin(before, restored, w.animationLength)
	w.clones.Snap(w.router.Clones())
}

func (w *World) executeReset() {
	restored := w.history.ResetToInitial()
	w.collections.Moving = restored
	w.clearTransit()
	w.won = false
	w.bodies.Snap(restored)
	w.clones.Snap(w.router.Clones())
}

func (w *World) makeEditorMove(move Spot) {
	w.collections.Cursor = Sum(w.collections.Cursor, move)
}

func (w *World) clearTransit() {
	w.router.Clear()
	w.throughDoor = make([]bool, len(w.collections.Moving))
	w.anyThroughDoor = false
}

// Update advances the animation axis by dt and refreshes every position buffer
func (w *World) Update(now, dt float32) {
	w.bodyPositions, _ = w.bodies.Update(now, dt)
	w.clonePositions, _ = w.clones.Update(now, dt)
	w.static[Winning] = spotsToVec3(w.collections.Winning)
	w.static[editorCategory] = []Vec3{SpotToVec3(w.collections.Cursor)}
}

// Destroy drops the in-flight interpolations. Renderer resources belong to the host.
func (w *World) Destroy() {
	w.bodies.Snap(w.collections.Moving)
	w.clones.Snap(w.router.Clones())
}

const editorCategory Category = "editor"

func (w *World) refreshStatic() {
	for _, c := range []Category{Static, Doors, Winning, Tiles, Floor} {
		w.static[c] = spotsToVec3(w.collections.Spots(c))
	}
	w.static[editorCategory] = []Vec3{SpotToVec3(w.collections.Cursor)}
}

func spotsToVec3(spots []Spot) []Vec3 {
	out := make([]Vec3, len(spots))
	for i, s := range spots {
		out[i] = SpotToVec3(s)
	}
	return out
}

// Collections exposes the raw entity collections (mutated by the editor)
func (w *World) Collections() *Collections {
	return w.collections
}

// Moving returns a copy of the current moving-body set
func (w *World) Moving() []Spot {
	return copySpots(w.collections.Moving)
}

// Clones returns the entry-door shadow of every body for the current turn
func (w *World) Clones() []Spot {
	return w.router.Clones()
}

// ThroughDoor returns the per-body transit flags of the current turn
func (w *World) ThroughDoor() []bool {
	return append([]bool{}, w.throughDoor...)
}

// AnyThroughDoor reports whether any body transited a door this turn
func (w *World) AnyThroughDoor() bool {
	return w.anyThroughDoor
}

// Won reports whether the moving set matches the winning doors
func (w *World) Won() bool {
	return w.won
}

// MadeMove reports whether the last Resolve attempted a move
func (w *World) MadeMove() bool {
	return w.madeMove
}

// Travel reports whether an interpolation is in flight
func (w *World) Travel() bool {
	return w.bodies.Travel() || w.clones.Travel()
}

// AnimationLength returns the per-turn interpolation duration
func (w *World) AnimationLength() float32 {
	return w.animationLength
}

// Elapsed returns the accumulated time of the body interpolation
func (w *World) Elapsed() float32 {
	return w.bodies.Elapsed()
}

// History returns copies of every history snapshot
func (w *World) History() [][]Spot {
	return w.history.Snapshots()
}

// HistoryLen returns the number of history snapshots
func (w *World) HistoryLen() int {
	return w.history.Len()
}

// RestoreHistory replaces the history and sets the current moving set to its top
func (w *World) RestoreHistory(snapshots [][]Spot) error {
	h, err := RestoreHistory(snapshots)
	if err != nil {
		return err
	}
	w.history = h
	w.collections.Moving = h.Top()
	w.clearTransit()
	w.won = w.maybeWon()
	w.bodies.Snap(w.collections.Moving)
	w.clones.Snap(w.router.Clones())
	w.bodyPositions = w.bodies.Positions()
	w.clonePositions = w.clones.Positions()
	return nil
}

// BodyPositions returns the interpolated body positions as of the last Update
func (w *World) BodyPositions() []Vec3 {
	return append([]Vec3{}, w.bodyPositions...)
}

// ClonePositions returns the interpolated clone positions as of the last Update
func (w *World) ClonePositions() []Vec3 {
	return append([]Vec3{}, w.clonePositions...)
}

// Positions returns the renderer positions of a non-moving category
func (w *World) Positions(category Category) []Vec3 {
	if category == Moving {
		return w.BodyPositions()
	}
	return append([]Vec3{}, w.static[category]...)
}

// CursorPosition returns the editor cursor in renderer space
func (w *World) CursorPosition() Vec3 {
	return SpotToVec3(w.collections.Cursor)
}

// DoorsPositions returns every door in renderer space
func (w *World) DoorsPositions() []Vec3 {
	return spotsToVec3(w.collections.Spots(Doors))
}

// DoorUniforms packs the door feed for portal-wrap rendering: slot 0 X holds the door
// count while a body is transiting (0 otherwise), slot i+1 holds door i's X and Z.
func (w *World) DoorUniforms() [MaxDoorUniforms][4]float32 {
	var u [MaxDoorUniforms][4]float32
	doors := w.DoorsPositions()
	if len(doors) > MaxDoorUniforms-1 {
		doors = doors[:MaxDoorUniforms-1]
	}
	if w.anyThroughDoor {
		u[0][0] = float32(len(doors))
	}
	for i, d := range doors {
		u[i+1][0] = d.X
		u[i+1][2] = d.Z
	}
	return u
}
