package engine

import "fmt"

// Spot is an integer grid coordinate
type Spot struct {
	X int `json:"x" jsonschema:"required"`
	Y int `json:"y" jsonschema:"required"`
}

// DeadSpot marks an inactive entity slot (no clone, removed body)
var DeadSpot = Spot{X: -1000, Y: -1000}

// Direction vectors accepted as move intents
var (
	Left  = Spot{X: -1, Y: 0}
	Right = Spot{X: 1, Y: 0}
	Down  = Spot{X: 0, Y: -1}
	Up    = Spot{X: 0, Y: 1}
	Stay  = Spot{}
)

// Same reports whether two spots address the same cell
func Same(a, b Spot) bool {
	return a.X == b.X && a.Y == b.Y
}

// Sum returns a + b
func Sum(a, b Spot) Spot {
	return Spot{X: a.X + b.X, Y: a.Y + b.Y}
}

// Diff returns a - b
func Diff(a, b Spot) Spot {
	return Spot{X: a.X - b.X, Y: a.Y - b.Y}
}

// IsZero reports whether s is the zero vector
func (s Spot) IsZero() bool {
	return s.X == 0 && s.Y == 0
}

// IsDead reports whether s is the dead sentinel
func (s Spot) IsDead() bool {
	return Same(s, DeadSpot)
}

// String returns a string representation of the spot
func (s Spot) String() string {
	return fmt.Sprintf("(%d,%d)", s.X, s.Y)
}

// IsMoveIntent reports whether s is one of the four unit steps or the zero vector
func IsMoveIntent(s Spot) bool {
	switch s {
	case Left, Right, Up, Down, Stay:
		return true
	}
	return false
}

// DirectionToIntent maps a direction name to a move intent.
// Grid y grows "up" (towards the far side of the board).
func DirectionToIntent(direction string) (Spot, bool) {
	switch direction {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return Stay, false
}

// Vec3 is a renderer-facing position. Grid x maps to X, grid y maps to Z.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// SpotToVec3 converts a grid coordinate to renderer space
func SpotToVec3(s Spot) Vec3 {
	return Vec3{X: float32(s.X), Y: 0, Z: float32(s.Y)}
}

func copySpots(spots []Spot) []Spot {
	out := make([]Spot, len(spots))
	copy(out, spots)
	return out
}

func sameSpots(a, b []Spot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Same(a[i], b[i]) {
			return false
		}
	}
	return true
}
