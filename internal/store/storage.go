// Package store holds the two device-local records — health preferences and
// scan history — behind constructible store objects with pluggable
// persistence. Every mutation rewrites the whole persisted record
// synchronously; last writer wins.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Adapter persists a single record as plain JSON. Load reports false when
// no record has been saved yet, which callers treat as "use defaults".
type Adapter interface {
	Load(v any) (bool, error)
	Save(v any) error
	Delete() error
}

// FileAdapter persists the record in a JSON file. This is the production
// adapter; the record is owned by the device the server runs on.
type FileAdapter struct {
	path string
}

// NewFileAdapter creates the record's parent directory if necessary.
func NewFileAdapter(path string) (*FileAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &FileAdapter{path: path}, nil
}

func (a *FileAdapter) Load(v any) (bool, error) {
	data, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", a.path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", a.path, err)
	}
	return true, nil
}

func (a *FileAdapter) Save(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := os.WriteFile(a.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.path, err)
	}
	return nil
}

func (a *FileAdapter) Delete() error {
	err := os.Remove(a.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryAdapter is the test adapter. It round-trips the record through JSON
// so tests observe the same serialization behavior as the file adapter.
type MemoryAdapter struct {
	data []byte
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{}
}

func (a *MemoryAdapter) Load(v any) (bool, error) {
	if a.data == nil {
		return false, nil
	}
	if err := json.Unmarshal(a.data, v); err != nil {
		return false, err
	}
	return true, nil
}

func (a *MemoryAdapter) Save(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	a.data = data
	return nil
}

func (a *MemoryAdapter) Delete() error {
	a.data = nil
	return nil
}

// Seed primes the adapter with a raw JSON record, as if a previous process
// had saved it. Used by tests exercising the forward-compatible merge.
func (a *MemoryAdapter) Seed(raw []byte) {
	a.data = raw
}
