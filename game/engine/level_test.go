package engine

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLevelJSON = `{
  "name": "corridor",
  "note": "two bodies, one pair of doors",
  "moving": [{"x": 0, "y": 0}, {"x": 0, "y": 2}],
  "static": [{"x": 1, "y": 2, "mapping": 3}],
  "doors": [{"x": 1, "y": 0, "link": 1}, {"x": 6, "y": 6, "link": 0}],
  "winning": [{"x": 6, "y": 7}, {"x": 0, "y": 3}],
  "tiles": [],
  "floor": [{"x": 0, "y": 0, "mapping": 0}]
}`

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel([]byte(testLevelJSON))
	require.NoError(t, err)

	assert.Equal(t, "corridor", level.Name)
	assert.Len(t, level.Moving, 2)
	assert.Equal(t, Entry{X: 1, Y: 2, Mapping: 3}, level.Static[0])
	link, ok := level.Doors[0].Target()
	assert.True(t, ok)
	assert.Equal(t, 1, link)
	assert.NotNil(t, level.Tiles)
}

func TestParseLevel_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"moving": [`},
		{"missing category", `{"moving": [], "static": [], "doors": [], "winning": [], "tiles": []}`},
		{"wrong type", `{"moving": {}, "static": [], "doors": [], "winning": [], "tiles": [], "floor": []}`},
		{"null category", `{"moving": null, "static": [], "doors": [], "winning": [], "tiles": [], "floor": []}`},
		{"fractional coordinate", `{"moving": [{"x": 0.5, "y": 0}], "static": [], "doors": [], "winning": [{"x": 1, "y": 1}], "tiles": [], "floor": []}`},
		{"unknown field", `{"moving": [], "static": [], "doors": [], "winning": [], "tiles": [], "floor": [], "lava": []}`},
		{"negative link", `{"moving": [], "static": [], "doors": [{"x": 0, "y": 0, "link": -1}], "winning": [], "tiles": [], "floor": []}`},
		{"self link", `{"moving": [], "static": [], "doors": [{"x": 0, "y": 0, "link": 0}], "winning": [], "tiles": [], "floor": []}`},
		{"link out of range", `{"moving": [], "static": [], "doors": [{"x": 0, "y": 0, "link": 4}], "winning": [], "tiles": [], "floor": []}`},
		{"winning count", `{"moving": [{"x": 0, "y": 0}], "static": [], "doors": [], "winning": [], "tiles": [], "floor": []}`},
		{"body on static", `{"moving": [{"x": 0, "y": 0}], "static": [{"x": 0, "y": 0, "mapping": 0}], "doors": [], "winning": [{"x": 1, "y": 0}], "tiles": [], "floor": []}`},
		{"bodies overlap", `{"moving": [{"x": 0, "y": 0}, {"x": 0, "y": 0}], "static": [], "doors": [], "winning": [{"x": 1, "y": 0}, {"x": 2, "y": 0}], "tiles": [], "floor": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLevel([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidLevel)
		})
	}
}

func TestLevel_CollectionsPairsLegacyDoors(t *testing.T) {
	level := &Level{
		Doors: []Door{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}, {X: 4, Y: 0}},
	}
	c := level.Collections()

	want := []int{1, 0, 3, 2}
	for i, w := range want {
		link, ok := c.Doors[i].Target()
		require.True(t, ok)
		assert.Equal(t, w, link)
	}
	_, ok := c.Doors[4].Target()
	assert.False(t, ok, "odd trailing door stays unlinked")

	// The level itself is untouched
	_, ok = level.Doors[0].Target()
	assert.False(t, ok)
}

func TestLevel_CollectionsKeepsExplicitLinks(t *testing.T) {
	level := &Level{
		Doors: []Door{{X: 0, Y: 0, Link: linkTo(2)}, {X: 1, Y: 0}, {X: 2, Y: 0, Link: linkTo(0)}},
	}
	c := level.Collections()

	_, ok := c.Doors[1].Target()
	assert.False(t, ok)
	link, _ := c.Doors[0].Target()
	assert.Equal(t, 2, link)
}

func TestLevelFromCollections_UsesStartingLayout(t *testing.T) {
	level, err := ParseLevel([]byte(testLevelJSON))
	require.NoError(t, err)

	w := NewWorld(level.Collections(), 0)
	w.Resolve(Up, false, false, false)

	saved := LevelFromCollections(level.Name, level.Note, w.Collections(), w.History()[0])
	assert.Equal(t, level.Moving, saved.Moving)

	data, err := saved.Encode()
	require.NoError(t, err)
	reparsed, err := ParseLevel(data)
	require.NoError(t, err)
	assert.Equal(t, saved, reparsed)
}

func TestLevelCodec(t *testing.T) {
	level, err := ParseLevel([]byte(testLevelJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeLevel(&buf, level))

	decoded, header, err := DecodeLevel(&buf)
	require.NoError(t, err)
	assert.Equal(t, LevelCodecVersion, header.Version)
	assert.Equal(t, 2, header.Bodies)
	assert.Equal(t, level, decoded)

	// Link 0 survives the gob body
	link, ok := decoded.Doors[1].Target()
	assert.True(t, ok)
	assert.Equal(t, 0, link)
}

func TestLevelCodec_File(t *testing.T) {
	level, err := ParseLevel([]byte(testLevelJSON))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "levels", "corridor.bin")
	require.NoError(t, WriteLevelFile(path, level))

	loaded, err := ReadLevelFile(path)
	require.NoError(t, err)
	assert.Equal(t, level.Winning, loaded.Winning)
}

func TestLevelCodec_Garbage(t *testing.T) {
	_, _, err := DecodeLevel(bytes.NewReader([]byte("not zstd at all")))
	assert.Error(t, err)
}

func TestValidateSchema(t *testing.T) {
	level, err := ParseLevel([]byte(testLevelJSON))
	require.NoError(t, err)
	data, err := level.Encode()
	require.NoError(t, err)
	assert.NoError(t, ValidateSchema(data))

	// semantic validation passes, the schema does not
	level.Static[0].Mapping = -1
	require.NoError(t, level.Validate())
	data, err = level.Encode()
	require.NoError(t, err)
	assert.ErrorIs(t, ValidateSchema(data), ErrInvalidLevel)
}

func TestLevelSchema(t *testing.T) {
	doc, err := LevelSchema()
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"moving"`)
	assert.Contains(t, string(doc), `"required"`)
}
