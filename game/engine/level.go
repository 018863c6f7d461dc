package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	reflector "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zyedidia/generic/mapset"
)

// ErrInvalidLevel is returned when level data fails schema or semantic validation
var ErrInvalidLevel = errors.New("invalid level")

const levelSchemaURL = "level.schema.json"

// Level is the on-disk form of a puzzle
type Level struct {
	Name    string  `json:"name,omitempty" jsonschema:"title=Level name"`
	Note    string  `json:"note,omitempty"`
	Moving  []Spot  `json:"moving" jsonschema:"required"`
	Static  []Entry `json:"static" jsonschema:"required"`
	Doors   []Door  `json:"doors" jsonschema:"required"`
	Winning []Spot  `json:"winning" jsonschema:"required"`
	Tiles   []Entry `json:"tiles" jsonschema:"required"`
	Floor   []Entry `json:"floor" jsonschema:"required"`
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaDocument []byte
	schemaErr      error
)

// LevelSchema returns the JSON Schema document level files must satisfy
func LevelSchema() ([]byte, error) {
	schemaOnce.Do(buildLevelSchema)
	return schemaDocument, schemaErr
}

func buildLevelSchema() {
	r := reflector.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		Anonymous:                  true,
	}
	schema := r.Reflect(&Level{})
	schema.Title = "Doorway level"

	schemaDocument, schemaErr = json.MarshalIndent(schema, "", "  ")
	if schemaErr != nil {
		schemaErr = fmt.Errorf("marshal level schema: %w", schemaErr)
		return
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(levelSchemaURL, bytes.NewReader(schemaDocument)); err != nil {
		schemaErr = fmt.Errorf("add level schema: %w", err)
		return
	}
	compiledSchema, schemaErr = compiler.Compile(levelSchemaURL)
	if schemaErr != nil {
		schemaErr = fmt.Errorf("compile level schema: %w", schemaErr)
	}
}

// ValidateSchema checks level JSON against the level schema
func ValidateSchema(data []byte) error {
	if _, err := LevelSchema(); err != nil {
		return err
	}
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return nil
}

// ParseLevel decodes and validates level JSON
func ParseLevel(data []byte) (*Level, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var level Level
	if err := json.Unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	level.normalize()
	if err := level.Validate(); err != nil {
		return nil, err
	}
	return &level, nil
}

// Encode renders the level as indented JSON
func (l *Level) Encode() ([]byte, error) {
	l.normalize()
	return json.MarshalIndent(l, "", "  ")
}

// Validate checks the semantic rules the schema cannot express
func (l *Level) Validate() error {
	for i, d := range l.Doors {
		if link, ok := d.Target(); ok && (link < 0 || link >= len(l.Doors) || link == i) {
			return fmt.Errorf("%w: door %d has invalid link %d", ErrInvalidLevel, i, link)
		}
	}
	if len(l.Winning) != len(l.Moving) {
		return fmt.Errorf("%w: %d winning doors for %d moving bodies", ErrInvalidLevel, len(l.Winning), len(l.Moving))
	}

	static := mapset.New[Spot]()
	for _, e := range l.Static {
		static.Put(e.Spot())
	}
	bodies := mapset.New[Spot]()
	for i, s := range l.Moving {
		if static.Has(s) {
			return fmt.Errorf("%w: moving body %d starts on static cell %s", ErrInvalidLevel, i, s)
		}
		if bodies.Has(s) {
			return fmt.Errorf("%w: moving bodies share cell %s", ErrInvalidLevel, s)
		}
		bodies.Put(s)
	}
	return nil
}

// Collections builds the runtime collections of the level. Levels without any door
// link get their doors paired in order of appearance.
func (l *Level) Collections() *Collections {
	c := (&Collections{
		Moving:  l.Moving,
		Static:  l.Static,
		Doors:   l.Doors,
		Winning: l.Winning,
		Tiles:   l.Tiles,
		Floor:   l.Floor,
	}).Clone()
	c.pairDoorsByOrder()
	return c
}

// LevelFromCollections captures the collections as a level. The moving set is taken
// from initial when given, so saving mid-play stores the starting layout.
func LevelFromCollections(name, note string, c *Collections, initial []Spot) *Level {
	cp := c.Clone()
	if initial != nil {
		cp.Moving = copySpots(initial)
	}
	l := &Level{
		Name:    name,
		Note:    note,
		Moving:  cp.Moving,
		Static:  cp.Static,
		Doors:   cp.Doors,
		Winning: cp.Winning,
		Tiles:   cp.Tiles,
		Floor:   cp.Floor,
	}
	l.normalize()
	return l
}

// normalize replaces nil slices so encoded arrays are never null
func (l *Level) normalize() {
	if l.Moving == nil {
		l.Moving = []Spot{}
	}
	if l.Static == nil {
		l.Static = []Entry{}
	}
	if l.Doors == nil {
		l.Doors = []Door{}
	}
	if l.Winning == nil {
		l.Winning = []Spot{}
	}
	if l.Tiles == nil {
		l.Tiles = []Entry{}
	}
	if l.Floor == nil {
		l.Floor = []Entry{}
	}
}
