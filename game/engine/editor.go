package engine

import "fmt"

// Mapping defaults used when placing entries at the cursor
const (
	StaticMappingCount   = 5
	StaticDefaultMapping = 3
	TileMappingCount     = 4
	FloorMappingCount    = 1
)

// DefaultMapping returns the mapping id a freshly placed entry of category starts with
func DefaultMapping(category Category) int {
	if category == Static {
		return StaticDefaultMapping
	}
	return 0
}

// MappingCount returns the number of visual variants available for category
func MappingCount(category Category) int {
	switch category {
	case Static:
		return StaticMappingCount
	case Tiles:
		return TileMappingCount
	case Floor:
		return FloorMappingCount
	}
	return 0
}

// Editor mutates a world's collections while Enabled is set. Every operation is a
// no-op otherwise.
type Editor struct {
	Enabled bool
	world   *World
}

// NewEditor creates a disabled editor bound to w
func NewEditor(w *World) *Editor {
	return &Editor{world: w}
}

// World returns the world being edited
func (e *Editor) World() *World {
	return e.world
}

// FindIndex returns the index of the first entry of category at cell, or -1
func (e *Editor) FindIndex(category Category, cell Spot) int {
	for i, s := range e.world.collections.Spots(category) {
		if Same(s, cell) {
			return i
		}
	}
	return -1
}

// AddSpot appends cell to category unless an entry already sits there.
// Adding a moving body restarts the world's history.
func (e *Editor) AddSpot(category Category, cell Spot, mapping int) bool {
	if !e.Enabled || e.FindIndex(category, cell) >= 0 {
		return false
	}
	c := e.world.collections
	entry := Entry{X: cell.X, Y: cell.Y, Mapping: mapping}
	switch category {
	case Moving:
		c.Moving = append(c.Moving, cell)
		e.world.Init()
		return true
	case Winning:
		c.Winning = append(c.Winning, cell)
	case Doors:
		c.Doors = append(c.Doors, Door{X: cell.X, Y: cell.Y})
	case Static:
		c.Static = append(c.Static, entry)
	case Tiles:
		c.Tiles = append(c.Tiles, entry)
	case Floor:
		c.Floor = append(c.Floor, entry)
	default:
		return false
	}
	e.world.refreshStatic()
	return true
}

// CycleMapping advances the mapping of entry index to the next of mappingCount variants
func (e *Editor) CycleMapping(index int, category Category, mappingCount int) bool {
	if !e.Enabled || mappingCount <= 0 {
		return false
	}
	entries := e.entries(category)
	if entries == nil || index < 0 || index >= len(*entries) {
		return false
	}
	(*entries)[index].Mapping = ((*entries)[index].Mapping + 1) % mappingCount
	return true
}

func (e *Editor) entries(category Category) *[]Entry {
	c := e.world.collections
	switch category {
	case Static:
		return &c.Static
	case Tiles:
		return &c.Tiles
	case Floor:
		return &c.Floor
	}
	return nil
}

// Remove deletes every entry at cell from every category. Door links are remapped so
// they keep addressing the same doors; links to a removed door are dropped.
func (e *Editor) Remove(cell Spot) bool {
	if !e.Enabled {
		return false
	}
	c := e.world.collections
	removed := false

	moving := c.Moving[:0]
	for _, s := range c.Moving {
		if Same(s, cell) {
			removed = true
			continue
		}
		moving = append(moving, s)
	}
	bodiesChanged := len(moving) != len(c.Moving)
	c.Moving = moving

	winning := c.Winning[:0]
	for _, s := range c.Winning {
		if Same(s, cell) {
			removed = true
			continue
		}
		winning = append(winning, s)
	}
	c.Winning = winning

	for _, category := range []Category{Static, Tiles, Floor} {
		entries := e.entries(category)
		kept := (*entries)[:0]
		for _, entry := range *entries {
			if Same(entry.Spot(), cell) {
				removed = true
				continue
			}
			kept = append(kept, entry)
		}
		*entries = kept
	}

	for i := len(c.Doors) - 1; i >= 0; i-- {
		if Same(c.Doors[i].Spot(), cell) {
			removeDoor(c, i)
			removed = true
		}
	}

	if bodiesChanged {
		e.world.Init()
	} else if removed {
		e.world.refreshStatic()
	}
	return removed
}

func removeDoor(c *Collections, index int) {
	n := len(c.Doors)
	c.Doors = append(c.Doors[:index], c.Doors[index+1:]...)
	for i := range c.Doors {
		link, ok := c.Doors[i].Target()
		if !ok {
			continue
		}
		switch {
		case link < 0 || link >= n:
			panic(fmt.Sprintf("engine: door %d links to %d outside [0, %d)", i, link, n))
		case link == index:
			c.Doors[i].Link = nil
		case link > index:
			c.Doors[i].Link = linkTo(link - 1)
		}
	}
}

// MoveCursor places the editor cursor at cell
func (e *Editor) MoveCursor(cell Spot) bool {
	if !e.Enabled {
		return false
	}
	e.world.collections.Cursor = cell
	e.world.refreshStatic()
	return true
}

// Place adds an entry of category at the cursor, or cycles its mapping when the cell is
// already taken by a category that carries one.
func (e *Editor) Place(category Category, mappingCount int) bool {
	if !e.Enabled {
		return false
	}
	cursor := e.world.collections.Cursor
	if i := e.FindIndex(category, cursor); i >= 0 {
		if !category.HasMapping() {
			return false
		}
		return e.CycleMapping(i, category, mappingCount)
	}
	return e.AddSpot(category, cursor, DefaultMapping(category))
}

// LinkDoors makes doors a and b exit into each other
func (e *Editor) LinkDoors(a, b int) bool {
	c := e.world.collections
	if !e.Enabled || a == b || a < 0 || b < 0 || a >= len(c.Doors) || b >= len(c.Doors) {
		return false
	}
	for _, d := range []int{a, b} {
		if old, ok := c.Doors[d].Target(); ok && old >= 0 && old < len(c.Doors) {
			if back, ok := c.Doors[old].Target(); ok && back == d {
				c.Doors[old].Link = nil
			}
		}
	}
	c.Doors[a].Link = linkTo(b)
	c.Doors[b].Link = linkTo(a)
	return true
}
