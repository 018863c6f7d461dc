package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(c *Collections) *World {
	return NewWorld(c, DefaultAnimationLength)
}

func TestWorld_ObstacleRejectsMove(t *testing.T) {
	w := newTestWorld(&Collections{
		Moving: []Spot{{0, 0}},
		Static: []Entry{{X: 1, Y: 0}},
	})

	turn := w.Resolve(Right, false, false, false)

	assert.Equal(t, TurnRejected, turn)
	assert.True(t, w.MadeMove())
	assert.Equal(t, []Spot{{0, 0}}, w.Moving())
	assert.Equal(t, 1, w.HistoryLen())
	assert.False(t, w.Travel())
}

func TestWorld_AllOrNothing(t *testing.T) {
	w := newTestWorld(&Collections{
		Moving: []Spot{{0, 0}, {0, 1}},
		Static: []Entry{{X: 1, Y: 1}},
	})

	assert.Equal(t, TurnRejected, w.Resolve(Right, false, false, false))
	assert.Equal(t, []Spot{{0, 0}, {0, 1}}, w.Moving())

	// Moving down keeps both bodies clear of the obstacle
	assert.Equal(t, TurnMove, w.Resolve(Down, false, false, false))
	assert.Equal(t, []Spot{{0, -1}, {0, 0}}, w.Moving())
}

func TestWorld_BodyFollowsIntoVacatedCell(t *testing.T) {
	w := newTestWorld(&Collections{Moving: []Spot{{0, 0}, {1, 0}}})

	assert.Equal(t, TurnMove, w.Resolve(Right, false, false, false))
	assert.Equal(t, []Spot{{1, 0}, {2, 0}}, w.Moving())
}

func TestWorld_DoorTransit(t *testing.T) {
	w := newTestWorld(&Collections{
		Moving: []Spot{{0, 0}},
		Doors: []Door{
			{X: 1, Y: 0, Link: linkTo(1)},
			{X: 5, Y: 5, Link: linkTo(0)},
		},
	})

	require.Equal(t, TurnMove, w.Resolve(Right, false, false, false))
	assert.Equal(t, []Spot{{5, 5}}, w.Moving())
	assert.Equal(t, []Spot{{1, 0}}, w.Clones())
	assert.Equal(t, []bool{true}, w.ThroughDoor())
	assert.True(t, w.AnyThroughDoor())

	// The flags last for exactly one turn
	require.Equal(t, TurnMove, w.Resolve(Up, false, false, false))
	assert.Equal(t, []Spot{{5, 6}}, w.Moving())
	assert.Equal(t, []Spot{DeadSpot}, w.Clones())
	assert.Equal(t, []bool{false}, w.ThroughDoor())
	assert.False(t, w.AnyThroughDoor())
}

func TestWorld_UnlinkedDoorIsPlainCell(t *testing.T) {
	w := newTestWorld(&Collections{
		Moving: []Spot{{0, 0}},
		Doors:  []Door{{X: 1, Y: 0}},
	})

	require.Equal(t, TurnMove, w.Resolve(Right, false, false, false))
	assert.Equal(t, []Spot{{1, 0}}, w.Moving())
	assert.Equal(t, []Spot{DeadSpot}, w.Clones())
	assert.False(t, w.AnyThroughDoor())
}

func TestWorld_CollisionOnFinalSpots(t *testing.T) {
	w := newTestWorld(&Collections{
		Moving: []Spot{{0, 0}, {2, 0}},
		Doors: []Door{
			{X: 1, Y: 0, Link: linkTo(2)},
			{X: 3, Y: 0, Link: linkTo(2)},
			{X: 9, Y: 9, Link: linkTo(0)},
		},
	})

	assert.Equal(t, TurnRejected, w.Resolve(Right, false, false, false))
	assert.Equal(t, []Spot{{0, 0}, {2, 0}}, w.Moving())
	assert.Equal(t, []Spot{DeadSpot, DeadSpot}, w.Clones())
	assert.Equal(t, 1, w.HistoryLen())
}

func TestWorld_ArrivingWhileOtherDeparts(t *testing.T) {
	// Body 1 enters the door body 0 comes out of, and the other way round
	w := newTestWorld(&Collections{
		Moving: []Spot{{0, 0}, {4, 5}},
		Doors: []Door{
			{X: 1, Y: 0, Link: linkTo(1)},
			{X: 5, Y: 5, Link: linkTo(0)},
		},
	})

	require.Equal(t, TurnMove, w.Resolve(Right, false, false, false))
	assert.Equal(t, []Spot{{5, 5}, {1, 0}}, w.Moving())
	assert.Equal(t, []bool{true, true}, w.ThroughDoor())
}

func TestWorld_Win(t *testing.T) {
	tests := []struct {
		name    string
		winning []Spot
		want    bool
	}{
		{"same order", []Spot{{0, 1}, {1, 1}}, true},
		{"any order", []Spot{{1, 1}, {0, 1}}, true},
		{"elsewhere", []Spot{{0, 1}, {2, 1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(&Collections{
				Moving:  []Spot{{0, 0}, {1, 0}},
				Winning: tt.winning,
			})
			assert.False(t, w.Won())
			w.Resolve(Up, false, false, false)
			assert.Equal(t, tt.want, w.Won())
		})
	}
}

func TestWorld_ThreeMovesDoubleBack(t *testing.T) {
	w := newTestWorld(&Collections{Moving: []Spot{{0, 0}}})

	w.Resolve(Right, false, false, false)
	w.Resolve(Right, false, false, false)
	w.Resolve(Up, false, false, false)
	require.Equal(t, 4, w.HistoryLen())
	require.Equal(t, []Spot{{2, 1}}, w.Moving())

	assert.Equal(t, TurnBack, w.Resolve(Stay, false, true, false))
	assert.Equal(t, TurnBack, w.Resolve(Stay, false, true, false))
	assert.Equal(t, []Spot{{1, 0}}, w.Moving())
	assert.Equal(t, 2, w.HistoryLen())
}

func TestWorld_HistoryRoundTrip(t *testing.T) {
	w := newTestWorld(&Collections{Moving: []Spot{{0, 0}, {3, 3}}})
	moves := []Spot{Right, Up, Up, Left, Down}
	for _, m := range moves {
		require.Equal(t, TurnMove, w.Resolve(m, false, false, false))
	}
	require.Equal(t, len(moves)+1, w.HistoryLen())

	for range moves {
		assert.Equal(t, TurnBack, w.Resolve(Stay, false, true, false))
	}
	assert.Equal(t, 1, w.HistoryLen())
	assert.Equal(t, []Spot{{0, 0}, {3, 3}}, w.Moving())

	// Back at the initial snapshot is a no-op
	assert.Equal(t, TurnNone, w.Resolve(Stay, false, true, false))
}

func TestWorld_ResetIdempotent(t *testing.T) {
	w := newTestWorld(&Collections{
		Moving:  []Spot{{0, 0}},
		Winning: []Spot{{1, 0}},
	})
	w.Resolve(Right, false, false, false)
	require.True(t, w.Won())

	assert.Equal(t, TurnReset, w.Resolve(Stay, false, false, true))
	assert.Equal(t, []Spot{{0, 0}}, w.Moving())
	assert.Equal(t, 1, w.HistoryLen())
	assert.False(t, w.Won())
	assert.False(t, w.Travel())

	assert.Equal(t, TurnNone, w.Resolve(Stay, false, false, true))
	assert.Equal(t, []Spot{{0, 0}}, w.Moving())
	assert.Equal(t, 1, w.HistoryLen())
}

func TestWorld_Precedence(t *testing.T) {
	w := newTestWorld(&Collections{Moving: []Spot{{0, 0}}})
	w.Resolve(Right, false, false, false)
	w.Resolve(Right, false, false, false)

	// Reset wins over back and over the move intent
	assert.Equal(t, TurnReset, w.Resolve(Up, true, true, true))
	assert.Equal(t, []Spot{{0, 0}}, w.Moving())

	w.Resolve(Right, false, false, false)
	// Back wins over editor mode
	assert.Equal(t, TurnBack, w.Resolve(Up, true, true, false))
	assert.Equal(t, []Spot{{0, 0}}, w.Moving())
}

func TestWorld_EditorModeMovesCursor(t *testing.T) {
	w := newTestWorld(&Collections{Moving: []Spot{{0, 0}}})

	assert.Equal(t, TurnEditor, w.Resolve(Up, true, false, false))
	assert.Equal(t, Spot{0, 1}, w.Collections().Cursor)
	assert.Equal(t, []Spot{{0, 0}}, w.Moving())
	assert.Equal(t, 1, w.HistoryLen())
	assert.False(t, w.MadeMove())

	assert.Equal(t, TurnNone, w.Resolve(Stay, true, false, false))
}

func TestWorld_Determinism(t *testing.T) {
	build := func() *World {
		return newTestWorld(&Collections{
			Moving:  []Spot{{0, 0}, {2, 2}},
			Static:  []Entry{{X: 3, Y: 2}},
			Doors:   []Door{{X: 0, Y: 1, Link: linkTo(1)}, {X: 6, Y: 6, Link: linkTo(0)}},
			Winning: []Spot{{6, 7}, {2, 5}},
		})
	}
	script := []Spot{Right, Up, Left, Up, Down, Right, Up}

	a, b := build(), build()
	for _, m := range script {
		assert.Equal(t, a.Resolve(m, false, false, false), b.Resolve(m, false, false, false))
		assert.Equal(t, a.Moving(), b.Moving())
		assert.Equal(t, a.Clones(), b.Clones())
		assert.Equal(t, a.ThroughDoor(), b.ThroughDoor())
		assert.Equal(t, a.Won(), b.Won())
	}
	assert.Equal(t, a.History(), b.History())
}

func TestWorld_InterpolationCompletes(t *testing.T) {
	w := NewWorld(&Collections{Moving: []Spot{{0, 0}}}, 1.0)
	require.Equal(t, TurnMove, w.Resolve(Right, false, false, false))
	require.True(t, w.Travel())

	w.Update(0.5, 0.5)
	assert.InDelta(t, 0.5, w.BodyPositions()[0].X, 1e-4)
	assert.True(t, w.Travel())

	// A regressed clock does not move anything
	w.Update(0.4, -0.1)
	assert.InDelta(t, 0.5, w.BodyPositions()[0].X, 1e-4)

	w.Update(1.1, 0.6)
	assert.False(t, w.Travel())
	assert.Equal(t, []Vec3{{X: 1, Y: 0, Z: 0}}, w.BodyPositions())
}

func TestWorld_TransitAnimation(t *testing.T) {
	w := NewWorld(&Collections{
		Moving: []Spot{{0, 0}},
		Doors:  []Door{{X: 1, Y: 0, Link: linkTo(1)}, {X: 5, Y: 5, Link: linkTo(0)}},
	}, 1.0)
	require.Equal(t, TurnMove, w.Resolve(Right, false, false, false))

	w.Update(0, 0)
	// The body emerges from the exit door, the clone walks into the entry door
	assert.Equal(t, Vec3{X: 4, Z: 5}, w.BodyPositions()[0])
	assert.Equal(t, Vec3{X: 0, Z: 0}, w.ClonePositions()[0])

	w.Update(1, 1)
	assert.Equal(t, Vec3{X: 5, Z: 5}, w.BodyPositions()[0])
	assert.Equal(t, Vec3{X: 1, Z: 0}, w.ClonePositions()[0])
}

func TestWorld_BeginSupersedes(t *testing.T) {
	w := NewWorld(&Collections{Moving: []Spot{{0, 0}}}, 1.0)
	w.Resolve(Right, false, false, false)
	w.Update(0.5, 0.5)

	w.Resolve(Right, false, false, false)
	w.Update(0.5, 0)
	assert.Equal(t, Vec3{X: 1}, w.BodyPositions()[0])
	assert.InDelta(t, 0, w.Elapsed(), 1e-6)
}

func TestWorld_DoorUniforms(t *testing.T) {
	w := newTestWorld(&Collections{
		Moving: []Spot{{0, 0}},
		Doors:  []Door{{X: 1, Y: 0, Link: linkTo(1)}, {X: 5, Y: 7, Link: linkTo(0)}},
	})

	u := w.DoorUniforms()
	assert.Equal(t, float32(0), u[0][0])
	assert.Equal(t, [4]float32{5, 0, 7, 0}, u[2])

	w.Resolve(Right, false, false, false)
	u = w.DoorUniforms()
	assert.Equal(t, float32(2), u[0][0])
	assert.Equal(t, [4]float32{1, 0, 0, 0}, u[1])
}

func TestWorld_RestoreHistory(t *testing.T) {
	w := newTestWorld(&Collections{
		Moving:  []Spot{{0, 0}},
		Winning: []Spot{{2, 0}},
	})

	require.NoError(t, w.RestoreHistory([][]Spot{{{0, 0}}, {{1, 0}}, {{2, 0}}}))
	assert.Equal(t, []Spot{{2, 0}}, w.Moving())
	assert.Equal(t, 3, w.HistoryLen())
	assert.True(t, w.Won())

	assert.ErrorIs(t, w.RestoreHistory(nil), ErrEmptyHistory)
}
