package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve(t *testing.T) {
	tests := []struct {
		name string
		c    *Collections
		want []string
	}{
		{
			name: "already won",
			c:    &Collections{Moving: []Spot{{0, 0}}, Winning: []Spot{{0, 0}}},
			want: []string{},
		},
		{
			name: "straight line",
			c:    &Collections{Moving: []Spot{{0, 0}}, Winning: []Spot{{2, 0}}},
			want: []string{"right", "right"},
		},
		{
			name: "through a door",
			c: &Collections{
				Moving:  []Spot{{0, 0}},
				Doors:   []Door{{X: 1, Y: 0, Link: linkTo(1)}, {X: 8, Y: 8, Link: linkTo(0)}},
				Winning: []Spot{{8, 9}},
			},
			want: []string{"right", "up"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.c.Clone()
			solution, err := Solve(tt.c, tt.c.Moving, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, solution.Moves)
			assert.Equal(t, before, tt.c, "solver must not mutate the level")
		})
	}
}

func TestSolve_ReplaysOnWorld(t *testing.T) {
	c := &Collections{
		Moving:  []Spot{{0, 0}, {0, 2}},
		Static:  []Entry{{X: 1, Y: 2}},
		Winning: []Spot{{2, 1}, {2, 3}},
	}
	solution, err := Solve(c, c.Moving, 0)
	require.NoError(t, err)

	w := NewWorld(c.Clone(), 0)
	for _, dir := range solution.Moves {
		intent, ok := DirectionToIntent(dir)
		require.True(t, ok)
		w.Resolve(intent, false, false, false)
	}
	assert.True(t, w.Won())
}

func TestSolve_Limit(t *testing.T) {
	c := &Collections{
		Moving:  []Spot{{0, 0}},
		Static:  []Entry{{X: 5, Y: 4}, {X: 4, Y: 5}, {X: 6, Y: 5}, {X: 5, Y: 6}},
		Winning: []Spot{{5, 5}},
	}
	_, err := Solve(c, c.Moving, 500)
	assert.ErrorIs(t, err, ErrUnsolvable)
}
