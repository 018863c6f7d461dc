package engine

import (
	"fmt"
	"slices"
)

// Category names an entity collection
type Category string

const (
	Moving  Category = "moving"
	Static  Category = "static"
	Doors   Category = "doors"
	Winning Category = "winning"
	Tiles   Category = "tiles"
	Floor   Category = "floor"
)

// AllCategories lists every category in level-file order
var AllCategories = []Category{Moving, Static, Doors, Winning, Tiles, Floor}

// ParseCategory validates a category name
func ParseCategory(name string) (Category, error) {
	for _, c := range AllCategories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", name)
}

// HasMapping reports whether entries of the category carry a model/mapping id
func (c Category) HasMapping() bool {
	return c == Static || c == Tiles || c == Floor
}

// Entry is a cell of a category that selects one of several visual variants
type Entry struct {
	X       int `json:"x" jsonschema:"required"`
	Y       int `json:"y" jsonschema:"required"`
	Mapping int `json:"mapping" jsonschema:"minimum=0"`
}

// Spot returns the entry's cell
func (e Entry) Spot() Spot {
	return Spot{X: e.X, Y: e.Y}
}

// Door is a teleport cell. Link is the index of the door a body entering this one exits from.
type Door struct {
	X    int  `json:"x" jsonschema:"required"`
	Y    int  `json:"y" jsonschema:"required"`
	Link *int `json:"link,omitempty" jsonschema:"minimum=0"`
}

// Spot returns the door's cell
func (d Door) Spot() Spot {
	return Spot{X: d.X, Y: d.Y}
}

// Target returns the linked door index, if any
func (d Door) Target() (int, bool) {
	if d.Link == nil {
		return -1, false
	}
	return *d.Link, true
}

func linkTo(i int) *int {
	return &i
}

// Collections holds every entity sequence of a loaded level
type Collections struct {
	Moving  []Spot  `json:"moving"`
	Static  []Entry `json:"static"`
	Doors   []Door  `json:"doors"`
	Winning []Spot  `json:"winning"`
	Tiles   []Entry `json:"tiles"`
	Floor   []Entry `json:"floor"`
	Cursor  Spot    `json:"cursor"`
}

// Spots returns the cells of a category in index order
func (c *Collections) Spots(category Category) []Spot {
	switch category {
	case Moving:
		return copySpots(c.Moving)
	case Winning:
		return copySpots(c.Winning)
	case Static:
		return entrySpots(c.Static)
	case Tiles:
		return entrySpots(c.Tiles)
	case Floor:
		return entrySpots(c.Floor)
	case Doors:
		spots := make([]Spot, len(c.Doors))
		for i, d := range c.Doors {
			spots[i] = d.Spot()
		}
		return spots
	}
	return nil
}

// Mappings returns the mapping ids of a category, nil for categories without mapping
func (c *Collections) Mappings(category Category) []int {
	var entries []Entry
	switch category {
	case Static:
		entries = c.Static
	case Tiles:
		entries = c.Tiles
	case Floor:
		entries = c.Floor
	default:
		return nil
	}
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.Mapping
	}
	return ids
}

// IsStatic reports whether a static obstacle occupies s
func (c *Collections) IsStatic(s Spot) bool {
	for _, e := range c.Static {
		if Same(e.Spot(), s) {
			return true
		}
	}
	return false
}

// DoorAt returns the index of the door at s, or -1
func (c *Collections) DoorAt(s Spot) int {
	for i, d := range c.Doors {
		if Same(d.Spot(), s) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy
func (c *Collections) Clone() *Collections {
	out := &Collections{
		Moving:  slices.Clone(c.Moving),
		Static:  slices.Clone(c.Static),
		Doors:   slices.Clone(c.Doors),
		Winning: slices.Clone(c.Winning),
		Tiles:   slices.Clone(c.Tiles),
		Floor:   slices.Clone(c.Floor),
		Cursor:  c.Cursor,
	}
	for i, d := range c.Doors {
		out.Doors[i] = Door{X: d.X, Y: d.Y}
		if t, ok := d.Target(); ok {
			out.Doors[i].Link = linkTo(t)
		}
	}
	return out
}

// pairDoorsByOrder links doors two by two in order of appearance (0<->1, 2<->3, ...).
// Used for level data that predates explicit links; an odd trailing door stays unlinked.
func (c *Collections) pairDoorsByOrder() {
	for i := range c.Doors {
		if _, ok := c.Doors[i].Target(); ok {
			return
		}
	}
	for i := 0; i+1 < len(c.Doors); i += 2 {
		c.Doors[i].Link = linkTo(i + 1)
		c.Doors[i+1].Link = linkTo(i)
	}
}

func entrySpots(entries []Entry) []Spot {
	spots := make([]Spot, len(entries))
	for i, e := range entries {
		spots[i] = e.Spot()
	}
	return spots
}
