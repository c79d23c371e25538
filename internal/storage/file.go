package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorrupt is returned when the store file exists but cannot be parsed.
var ErrCorrupt = errors.New("corrupt store file")

// File is a Store backed by a single JSON object on disk. Every call reads
// the file afresh; writes replace it atomically.
type File struct {
	path string
}

// NewFile returns a File store at path. The file is created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", f.path, err)
	}

	kv := map[string]string{}
	if err := json.Unmarshal(data, &kv); err != nil {
		// Keep a copy but leave the file in place, so every run fails until
		// the user repairs or removes it.
		backupPath := f.path + ".corrupt"
		if _, statErr := os.Stat(backupPath); os.IsNotExist(statErr) {
			_ = os.WriteFile(backupPath, data, 0o600)
		}
		return nil, fmt.Errorf("%w: invalid JSON in %s (copy at %s; repair or remove the file to continue): %v",
			ErrCorrupt, f.path, backupPath, err)
	}
	return kv, nil
}

func (f *File) save(kv map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

func (f *File) Get(key string) (string, bool, error) {
	kv, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := kv[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	return f.Apply([]Change{{Key: key, Value: value}})
}

func (f *File) Remove(key string) error {
	return f.Apply([]Change{{Key: key, Remove: true}})
}

func (f *File) Apply(changes []Change) error {
	kv, err := f.load()
	if err != nil {
		return err
	}
	applyChanges(kv, changes)
	return f.save(kv)
}
