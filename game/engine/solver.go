package engine

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultSolverLimit bounds the number of states Solve explores. Boards are unbounded,
// so an unsolvable level would otherwise never terminate.
const DefaultSolverLimit = 200000

// ErrUnsolvable is returned when no winning sequence exists within the explored states
var ErrUnsolvable = errors.New("no solution found")

// Solution is a shortest winning move sequence
type Solution struct {
	Moves    []string `json:"moves"`
	Explored int      `json:"explored"`
}

var solverDirections = []string{"up", "down", "left", "right"}

type solverNode struct {
	moving []Spot
	parent int
	move   string
}

// Solve searches breadth-first for the shortest sequence of direction moves that wins
// from the given moving set. The collections are not modified.
func Solve(c *Collections, start []Spot, limit int) (*Solution, error) {
	if limit <= 0 {
		limit = DefaultSolverLimit
	}
	scratch := c.Clone()
	scratch.Moving = copySpots(start)
	w := NewWorld(scratch, 0)
	if w.maybeWon() {
		return &Solution{Moves: []string{}, Explored: 1}, nil
	}

	nodes := []solverNode{{moving: copySpots(start), parent: -1}}
	visited := map[string]bool{stateKey(start): true}

	for head := 0; head < len(nodes); head++ {
		if len(visited) >= limit {
			break
		}
		for _, dir := range solverDirections {
			intent, _ := DirectionToIntent(dir)
			scratch.Moving = nodes[head].moving
			finals, _, ok := w.attempt(intent)
			if !ok {
				continue
			}
			key := stateKey(finals)
			if visited[key] {
				continue
			}
			visited[key] = true
			nodes = append(nodes, solverNode{moving: finals, parent: head, move: dir})

			scratch.Moving = finals
			if w.maybeWon() {
				return &Solution{Moves: pathTo(nodes, len(nodes)-1), Explored: len(visited)}, nil
			}
		}
	}
	return nil, ErrUnsolvable
}

func pathTo(nodes []solverNode, i int) []string {
	var moves []string
	for ; nodes[i].parent >= 0; i = nodes[i].parent {
		moves = append(moves, nodes[i].move)
	}
	for l, r := 0, len(moves)-1; l < r; l, r = l+1, r-1 {
		moves[l], moves[r] = moves[r], moves[l]
	}
	return moves
}

func stateKey(spots []Spot) string {
	var b strings.Builder
	for _, s := range spots {
		b.WriteString(strconv.Itoa(s.X))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(s.Y))
		b.WriteByte(';')
	}
	return b.String()
}
