package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// IndexFile is the name of the ordered level list inside the levels directory
const IndexFile = "levels_list"

// IndexEntry is one slot of the level list
type IndexEntry struct {
	Filename string `json:"filename"`
	Note     string `json:"note"`
}

// Index is the ordered list of playable levels. Every mutation is written back to disk.
type Index struct {
	path    string
	entries []IndexEntry
	mu      sync.RWMutex
}

// LoadIndex reads the level list at path; a missing file is an empty list
func LoadIndex(path string) (*Index, error) {
	x := &Index{path: path, entries: []IndexEntry{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return x, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read level index: %w", err)
	}
	if err := json.Unmarshal(data, &x.entries); err != nil {
		return nil, fmt.Errorf("failed to parse level index: %w", err)
	}
	return x, nil
}

// Entries returns a copy of the list
func (x *Index) Entries() []IndexEntry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]IndexEntry{}, x.entries...)
}

// Len returns the number of levels in the list
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Find returns the position of filename, or -1
func (x *Index) Find(filename string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.find(filename)
}

func (x *Index) find(filename string) int {
	for i, e := range x.entries {
		if e.Filename == filename {
			return i
		}
	}
	return -1
}

// At returns the entry at position i
func (x *Index) At(i int) (IndexEntry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if i < 0 || i >= len(x.entries) {
		return IndexEntry{}, false
	}
	return x.entries[i], true
}

// Next returns the position after i, clamped to the last level
func (x *Index) Next(i int) int {
	return x.clamp(i + 1)
}

// Previous returns the position before i, clamped to the first level
func (x *Index) Previous(i int) int {
	return x.clamp(i - 1)
}

func (x *Index) clamp(i int) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return clampIndex(i, len(x.entries))
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Append adds e at the end unless its file is already listed
func (x *Index) Append(e IndexEntry) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if i := x.find(e.Filename); i >= 0 {
		return i, nil
	}
	x.entries = append(x.entries, e)
	return len(x.entries) - 1, x.save()
}

// Insert places e at position i
func (x *Index) Insert(i int, e IndexEntry) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	i = clampIndex(i, len(x.entries)+1)
	x.entries = append(x.entries, IndexEntry{})
	copy(x.entries[i+1:], x.entries[i:])
	x.entries[i] = e
	return i, x.save()
}

// Remove drops position i and returns the position of the level that takes its place
func (x *Index) Remove(i int) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if i < 0 || i >= len(x.entries) {
		return 0, fmt.Errorf("%w: position %d", ErrLevelNotFound, i)
	}
	x.entries = append(x.entries[:i], x.entries[i+1:]...)
	return clampIndex(i, len(x.entries)), x.save()
}

// MoveToEnd moves position i to the end of the list
func (x *Index) MoveToEnd(i int) (int, error) {
	return x.move(i, func(n int) int { return n - 1 })
}

// MoveBack swaps position i with its predecessor
func (x *Index) MoveBack(i int) (int, error) {
	return x.move(i, func(int) int { return i - 1 })
}

// MoveForward swaps position i with its successor
func (x *Index) MoveForward(i int) (int, error) {
	return x.move(i, func(int) int { return i + 1 })
}

func (x *Index) move(i int, target func(n int) int) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	n := len(x.entries)
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: position %d", ErrLevelNotFound, i)
	}
	to := clampIndex(target(n), n)
	if to == i {
		return i, nil
	}
	e := x.entries[i]
	x.entries = append(x.entries[:i], x.entries[i+1:]...)
	x.entries = append(x.entries, IndexEntry{})
	copy(x.entries[to+1:], x.entries[to:])
	x.entries[to] = e
	return to, x.save()
}

func (x *Index) save() error {
	data, err := json.MarshalIndent(x.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal level index: %w", err)
	}
	if err := os.WriteFile(x.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write level index: %w", err)
	}
	return nil
}
