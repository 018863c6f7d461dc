package engine

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// LevelCodecVersion is written in the header line of binary level files
const LevelCodecVersion = 1

// LevelHeader is the JSON line preceding the gob body of a binary level
type LevelHeader struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Bodies  int    `json:"bodies"`
	Doors   int    `json:"doors"`
}

// levelBody is the gob form of a Level. Gob drops pointers to zero values, so door
// links travel as index+1 with 0 meaning unlinked.
type levelBody struct {
	Name    string
	Note    string
	Moving  []Spot
	Static  []Entry
	Doors   []doorBody
	Winning []Spot
	Tiles   []Entry
	Floor   []Entry
}

type doorBody struct {
	X, Y int
	Link int
}

func toBody(l *Level) levelBody {
	b := levelBody{
		Name:    l.Name,
		Note:    l.Note,
		Moving:  l.Moving,
		Static:  l.Static,
		Doors:   make([]doorBody, len(l.Doors)),
		Winning: l.Winning,
		Tiles:   l.Tiles,
		Floor:   l.Floor,
	}
	for i, d := range l.Doors {
		b.Doors[i] = doorBody{X: d.X, Y: d.Y}
		if link, ok := d.Target(); ok {
			b.Doors[i].Link = link + 1
		}
	}
	return b
}

func (b levelBody) level() *Level {
	l := &Level{
		Name:    b.Name,
		Note:    b.Note,
		Moving:  b.Moving,
		Static:  b.Static,
		Doors:   make([]Door, len(b.Doors)),
		Winning: b.Winning,
		Tiles:   b.Tiles,
		Floor:   b.Floor,
	}
	for i, d := range b.Doors {
		l.Doors[i] = Door{X: d.X, Y: d.Y}
		if d.Link > 0 {
			l.Doors[i].Link = linkTo(d.Link - 1)
		}
	}
	l.normalize()
	return l
}

// EncodeLevel writes l as a zstd stream holding a JSON header line and a gob body
func EncodeLevel(w io.Writer, l *Level) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)

	l.normalize()
	hb, err := json.Marshal(LevelHeader{
		Version: LevelCodecVersion,
		Name:    l.Name,
		Bodies:  len(l.Moving),
		Doors:   len(l.Doors),
	})
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	body := toBody(l)
	if err := gob.NewEncoder(bw).Encode(&body); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// DecodeLevel reads a level written by EncodeLevel and validates it
func DecodeLevel(r io.Reader) (*Level, LevelHeader, error) {
	var header LevelHeader
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, header, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, header, fmt.Errorf("%w: read header: %v", ErrInvalidLevel, err)
	}
	if err := json.Unmarshal(line, &header); err != nil {
		return nil, header, fmt.Errorf("%w: header: %v", ErrInvalidLevel, err)
	}
	if header.Version != LevelCodecVersion {
		return nil, header, fmt.Errorf("%w: unsupported codec version %d", ErrInvalidLevel, header.Version)
	}

	var body levelBody
	if err := gob.NewDecoder(br).Decode(&body); err != nil {
		return nil, header, fmt.Errorf("gob decode: %w", err)
	}
	level := body.level()
	if err := level.Validate(); err != nil {
		return nil, header, err
	}
	return level, header, nil
}

// WriteLevelFile stores l in binary form at path
func WriteLevelFile(path string, l *Level) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := EncodeLevel(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadLevelFile loads a binary level from path
func ReadLevelFile(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	level, _, err := DecodeLevel(f)
	return level, err
}
