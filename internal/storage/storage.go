package storage

import (
	"sort"
	"sync"
)

// Store is a flat key-value string store. A missing key is reported through
// ok == false, never as an error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Change is a single write applied by Apply. Remove deletes the key and
// ignores Value.
type Change struct {
	Key    string
	Value  string
	Remove bool
}

// Batcher is implemented by stores that can apply several changes at once,
// either all or none.
type Batcher interface {
	Apply(changes []Change) error
}

// Apply writes changes to s, atomically when s implements Batcher and one
// by one otherwise.
func Apply(s Store, changes []Change) error {
	if b, ok := s.(Batcher); ok {
		return b.Apply(changes)
	}
	for _, c := range changes {
		var err error
		if c.Remove {
			err = s.Remove(c.Key)
		} else {
			err = s.Set(c.Key, c.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Memory is an in-process Store, used in tests and as a scratch backend.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Apply(changes []Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	applyChanges(m.data, changes)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func applyChanges(data map[string]string, changes []Change) {
	for _, c := range changes {
		if c.Remove {
			delete(data, c.Key)
			continue
		}
		data[c.Key] = c.Value
	}
}
